package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/pders01/schemasync/internal/management"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	SetDefaults()
	t.Cleanup(viper.Reset)
}

func TestDefaults(t *testing.T) {
	resetViper(t)

	if got := GetPollInterval(); got != management.DefaultPollInterval {
		t.Errorf("GetPollInterval() = %v, want %v", got, management.DefaultPollInterval)
	}
	if got := GetTimeout(); got != management.DefaultTimeout {
		t.Errorf("GetTimeout() = %v, want %v", got, management.DefaultTimeout)
	}
	if got := GetArtifactsDir(); got != "schemasync-runs" {
		t.Errorf("GetArtifactsDir() = %v", got)
	}
	if ShouldSaveArtifacts() {
		t.Error("ShouldSaveArtifacts() = true, want false")
	}
	if got := GetLogLevel(); got != slog.LevelInfo {
		t.Errorf("GetLogLevel() = %v, want info", got)
	}
	if got := GetLogFormat(); got != "text" {
		t.Errorf("GetLogFormat() = %v, want text", got)
	}

	p := GetProject(SideSource)
	if p.ManagementURL != management.DefaultURL || p.Environment != "master" {
		t.Errorf("GetProject(source) = %+v", p)
	}
}

func TestOverrides(t *testing.T) {
	resetViper(t)
	viper.Set("management.poll_interval", "250ms")
	viper.Set("log.level", "debug")
	viper.Set("log.format", "JSON")

	if got := GetPollInterval(); got != 250*time.Millisecond {
		t.Errorf("GetPollInterval() = %v, want 250ms", got)
	}
	if got := GetLogLevel(); got != slog.LevelDebug {
		t.Errorf("GetLogLevel() = %v, want debug", got)
	}
	if got := GetLogFormat(); got != "json" {
		t.Errorf("GetLogFormat() = %v, want json", got)
	}

	viper.Set("log.level", "loud")
	if got := GetLogLevel(); got != slog.LevelInfo {
		t.Errorf("GetLogLevel() = %v, want info for unknown level", got)
	}
}

func TestSourceAndTarget(t *testing.T) {
	resetViper(t)
	viper.Set("source.token", "src-token")
	viper.Set("source.project_id", "src-project")
	viper.Set("target.project_id", "dst-project")
	viper.Set("target.environment", "staging")

	src, err := Source()
	if err != nil {
		t.Fatalf("Source() error = %v", err)
	}
	if src.Token != "src-token" || src.ProjectID != "src-project" || src.Environment != "master" {
		t.Errorf("Source() = %+v", src)
	}

	_, err = Target()
	if err == nil {
		t.Fatal("Target() expected error without token")
	}
	if !strings.Contains(err.Error(), "target.token (required)") {
		t.Errorf("Target() error = %v, want it to name target.token", err)
	}
}

func TestProjectValidate(t *testing.T) {
	valid := Project{
		Side:          SideTarget,
		ManagementURL: "https://management.example.test/graphql",
		Token:         "t",
		ProjectID:     "p",
		Environment:   "master",
	}

	tests := []struct {
		name    string
		mutate  func(*Project)
		wantKey string
	}{
		{name: "valid", mutate: func(*Project) {}},
		{name: "bad url", mutate: func(p *Project) { p.ManagementURL = "not a url" }, wantKey: "management.url (url)"},
		{name: "no url", mutate: func(p *Project) { p.ManagementURL = "" }, wantKey: "management.url (required)"},
		{name: "no project", mutate: func(p *Project) { p.ProjectID = "" }, wantKey: "target.project_id (required)"},
		{name: "no environment", mutate: func(p *Project) { p.Environment = "" }, wantKey: "target.environment (required)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantKey == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantKey) {
				t.Errorf("Validate() error = %v, want %q", err, tt.wantKey)
			}
		})
	}
}

func TestParseSide(t *testing.T) {
	for _, s := range []string{"source", "target"} {
		if got, err := ParseSide(s); err != nil || string(got) != s {
			t.Errorf("ParseSide(%q) = %v, %v", s, got, err)
		}
	}
	if _, err := ParseSide("both"); err == nil {
		t.Error("ParseSide(both) expected error")
	}
}
