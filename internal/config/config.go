package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/pders01/schemasync/internal/management"
)

// Side names one end of a sync
type Side string

const (
	SideSource Side = "source"
	SideTarget Side = "target"
)

// ParseSide validates a --side value
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case SideSource, SideTarget:
		return Side(s), nil
	}
	return "", fmt.Errorf("invalid side: %s (valid: source, target)", s)
}

// Project is the connection settings for one side
type Project struct {
	Side          Side   `validate:"required,oneof=source target"`
	ManagementURL string `validate:"required,url"`
	Token         string `validate:"required"`
	ProjectID     string `validate:"required"`
	Environment   string `validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports every missing or malformed setting, naming the config key
func (p *Project) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s (%s)", p.key(fe.Field()), fe.Tag()))
	}
	return fmt.Errorf("invalid %s configuration: %s", p.Side, strings.Join(msgs, ", "))
}

func (p *Project) key(field string) string {
	switch field {
	case "ManagementURL":
		return "management.url"
	case "Token":
		return string(p.Side) + ".token"
	case "ProjectID":
		return string(p.Side) + ".project_id"
	case "Environment":
		return string(p.Side) + ".environment"
	}
	return strings.ToLower(field)
}

// SetDefaults registers the default value of every key
func SetDefaults() {
	viper.SetDefault("management.url", management.DefaultURL)
	viper.SetDefault("management.poll_interval", management.DefaultPollInterval)
	viper.SetDefault("management.timeout", management.DefaultTimeout)
	viper.SetDefault("source.environment", "master")
	viper.SetDefault("target.environment", "master")
	viper.SetDefault("artifacts.dir", "schemasync-runs")
	viper.SetDefault("artifacts.save", false)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
}

// GetProject returns the unvalidated settings for side
func GetProject(side Side) Project {
	return Project{
		Side:          side,
		ManagementURL: viper.GetString("management.url"),
		Token:         viper.GetString(string(side) + ".token"),
		ProjectID:     viper.GetString(string(side) + ".project_id"),
		Environment:   viper.GetString(string(side) + ".environment"),
	}
}

// Source returns the validated source project settings
func Source() (Project, error) {
	return load(SideSource)
}

// Target returns the validated target project settings
func Target() (Project, error) {
	return load(SideTarget)
}

func load(side Side) (Project, error) {
	p := GetProject(side)
	if err := p.Validate(); err != nil {
		return Project{}, err
	}
	return p, nil
}

// GetPollInterval returns how often migration status is polled
func GetPollInterval() time.Duration {
	return viper.GetDuration("management.poll_interval")
}

// GetTimeout returns the per-request HTTP timeout
func GetTimeout() time.Duration {
	return viper.GetDuration("management.timeout")
}

// GetArtifactsDir returns where run artifacts are written
func GetArtifactsDir() string {
	return viper.GetString("artifacts.dir")
}

// ShouldSaveArtifacts reports whether every run writes its artifacts
func ShouldSaveArtifacts() bool {
	return viper.GetBool("artifacts.save")
}

// GetLogLevel returns the configured log level, info when unrecognised
func GetLogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(viper.GetString("log.level"))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// GetLogFormat returns "json" or "text"
func GetLogFormat() string {
	if strings.EqualFold(viper.GetString("log.format"), "json") {
		return "json"
	}
	return "text"
}
