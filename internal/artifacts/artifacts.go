// Package artifacts reads and writes the files a run leaves behind:
// exported schemas, plans, dry-run change lists and run metadata.
package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pders01/schemasync/internal/models"
	"github.com/pders01/schemasync/internal/plan"
)

// File names inside a run directory
const (
	SourceSchemaFile    = "source_schema.json"
	TargetSchemaFile    = "target_schema.json"
	ProjectedSchemaFile = "projected_schema.json"
	PlanFile            = "plan.json"
	DryRunFile          = "dry_run.json"
	MetadataFile        = "meta.json"
)

// RunDirLayout is the timestamp layout of run directory names
const RunDirLayout = "2006-01-02T150405"

// RunDir creates and returns the directory for a run started at ts
func RunDir(base string, ts time.Time) (string, error) {
	if base == "" {
		return "", fmt.Errorf("artifacts directory cannot be empty")
	}
	dir := filepath.Join(base, ts.Format(RunDirLayout))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create run directory: %w", err)
	}
	return dir, nil
}

// Path joins a file name onto a run directory
func Path(runDir, name string) string {
	return filepath.Join(runDir, name)
}

// WriteJSON writes v as indented JSON, creating parent directories
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) == 0 {
		return fmt.Errorf("%s is empty", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// ReadWire loads an exported schema
func ReadWire(path string) (*models.WireSchema, error) {
	var w models.WireSchema
	if err := readJSON(path, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// ReadSnapshot loads an exported schema and classifies it
func ReadSnapshot(path string) (*models.Snapshot, error) {
	w, err := ReadWire(path)
	if err != nil {
		return nil, err
	}
	return models.FromWire(w), nil
}

// ReadPlan loads a plan and checks it is structurally sound
func ReadPlan(path string) (*plan.Plan, error) {
	p := plan.New()
	if err := readJSON(path, p); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan %s: %w", path, err)
	}
	return p, nil
}

// WriteMetadata writes meta.json into a run directory
func WriteMetadata(runDir string, meta *models.RunMetadata) error {
	return WriteJSON(Path(runDir, MetadataFile), meta)
}

// ReadMetadata reads meta.json from a run directory
func ReadMetadata(runDir string) (*models.RunMetadata, error) {
	var meta models.RunMetadata
	if err := readJSON(Path(runDir, MetadataFile), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}
