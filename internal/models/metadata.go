package models

import "time"

// ProjectRef names one side of a sync run
type ProjectRef struct {
	ProjectID   string `json:"project_id"`
	Environment string `json:"environment"`
}

// RunMetadata represents the meta.json written next to a run's artifacts
type RunMetadata struct {
	CreatedAt   time.Time  `json:"created_at"`
	Filter      string     `json:"filter"`
	Source      ProjectRef `json:"source"`
	Target      ProjectRef `json:"target"`
	Roots       []string   `json:"roots,omitempty"`
	Operations  int        `json:"operations"`
	Skipped     int        `json:"skipped,omitempty"`
	Conflicts   int        `json:"conflicts,omitempty"`
	MigrationID string     `json:"migration_id,omitempty"`
	Status      string     `json:"status,omitempty"`
}
