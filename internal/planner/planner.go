// Package planner computes the creation operations that bring a target
// schema up to a filtered subset of a source schema, including everything
// that subset transitively depends on.
package planner

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/pders01/schemasync/internal/models"
	"github.com/pders01/schemasync/internal/plan"
	"github.com/pders01/schemasync/internal/registry"
)

// ErrNoSource is returned when planning without a source snapshot
var ErrNoSource = errors.New("source snapshot is required")

// SkipReason says why a field produced no operation
type SkipReason string

const (
	ReasonUnclassified      SkipReason = "unclassified"
	ReasonMissingDependency SkipReason = "missing dependency"
	ReasonConflict          SkipReason = "conflict"
)

// Skip records a source field that was left out of the plan
type Skip struct {
	ParentAPIID string     `json:"parentApiId"`
	FieldAPIID  string     `json:"fieldApiId"`
	Reason      SkipReason `json:"reason"`
	Detail      string     `json:"detail,omitempty"`
}

func (s Skip) String() string {
	if s.Detail == "" {
		return fmt.Sprintf("%s.%s: %s", s.ParentAPIID, s.FieldAPIID, s.Reason)
	}
	return fmt.Sprintf("%s.%s: %s (%s)", s.ParentAPIID, s.FieldAPIID, s.Reason, s.Detail)
}

// Conflict is a relation whose two halves disagree between source and
// target: the target already relates back to the source field under a
// different reverse apiId. Conflicts are reported, never resolved.
type Conflict struct {
	ParentAPIID       string `json:"parentApiId"`
	FieldAPIID        string `json:"fieldApiId"`
	RelatedModelAPIID string `json:"relatedModelApiId"`
	WantReverseAPIID  string `json:"wantReverseApiId"`
	HaveReverseAPIID  string `json:"haveReverseApiId"`
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s.%s: target relates back as %s.%s, source expects %s.%s",
		c.ParentAPIID, c.FieldAPIID,
		c.RelatedModelAPIID, c.HaveReverseAPIID,
		c.RelatedModelAPIID, c.WantReverseAPIID)
}

// Result is the outcome of one planning run
type Result struct {
	Plan      *plan.Plan
	Roots     []string
	Skipped   []Skip
	Conflicts []Conflict
	// Projected is the target as it will look once Plan is applied.
	Projected *models.Snapshot
}

// Option configures a Planner
type Option func(*Planner)

// WithLogger sets the logger used for per-field diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Planner plans against one source/target snapshot pair. Snapshots are
// never mutated; every call to Plan starts from a fresh registry.
type Planner struct {
	source *models.Snapshot
	target *models.Snapshot
	logger *slog.Logger
}

// New creates a planner. A nil target is treated as an empty schema.
func New(source, target *models.Snapshot, opts ...Option) *Planner {
	if target == nil {
		target = &models.Snapshot{}
	}
	p := &Planner{
		source: source,
		target: target,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Build is shorthand for New(source, target, opts...).Plan(filter)
func Build(source, target *models.Snapshot, filter string, opts ...Option) (*Result, error) {
	return New(source, target, opts...).Plan(filter)
}

// Plan selects the source models and components whose display name
// contains filter and plans everything the target is missing for them. An
// empty or non-matching filter yields an empty plan.
func (p *Planner) Plan(filter string) (*Result, error) {
	if p.source == nil {
		return nil, ErrNoSource
	}

	r := &run{
		source: p.source,
		reg:    registry.New(),
		logger: p.logger,
		result: &Result{Plan: plan.New()},
	}
	r.reg.Seed(p.target)

	roots, components := p.source.Roots(filter)
	if len(roots)+len(components) == 0 {
		p.logger.Info("no models or components match filter", "filter", filter)
	}

	for _, m := range roots {
		r.result.Roots = append(r.result.Roots, m.APIID)
		r.addEntity(registry.KindModel, m)
	}
	for _, c := range components {
		r.result.Roots = append(r.result.Roots, c.APIID)
		r.addEntity(registry.KindComponent, c)
	}

	r.result.Projected = r.reg.Snapshot()
	r.result.Projected.Environment = p.target.Environment

	p.logger.Info("plan computed",
		"filter", filter,
		"roots", len(r.result.Roots),
		"operations", r.result.Plan.Len(),
		"skipped", len(r.result.Skipped),
		"conflicts", len(r.result.Conflicts))

	return r.result, nil
}
