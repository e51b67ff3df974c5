// Package registry tracks, for one planning run, which models, components
// and enumerations the target already has or will have once the plan is
// applied, plus the set of entities currently being expanded.
package registry

import (
	"fmt"

	"github.com/pders01/schemasync/internal/models"
)

// Kind selects the model or component namespace
type Kind int

const (
	KindModel Kind = iota
	KindComponent
)

func (k Kind) String() string {
	switch k {
	case KindModel:
		return "model"
	case KindComponent:
		return "component"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Record is the target-side view of a model or component
type Record struct {
	APIID       string
	APIIDPlural string
	DisplayName string
	Description string
	Fields      []models.Field
}

// Field returns the record's field with the given apiId
func (r *Record) Field(apiID string) (*models.Field, bool) {
	for i := range r.Fields {
		if r.Fields[i].APIID == apiID {
			return &r.Fields[i], true
		}
	}
	return nil, false
}

// HasField reports whether the record already carries a field with apiID
func (r *Record) HasField(apiID string) bool {
	_, ok := r.Field(apiID)
	return ok
}

type table struct {
	records map[string]*Record
	order   []string
}

func newTable() *table {
	return &table{records: make(map[string]*Record)}
}

func (t *table) add(r *Record) {
	t.records[r.APIID] = r
	t.order = append(t.order, r.APIID)
}

// Registry is owned by exactly one planning run and is not safe for
// concurrent use.
type Registry struct {
	tables       map[Kind]*table
	enumerations map[string]*models.Enumeration
	enumOrder    []string
	inFlight     map[string]struct{}
}

// New creates an empty registry
func New() *Registry {
	return &Registry{
		tables: map[Kind]*table{
			KindModel:     newTable(),
			KindComponent: newTable(),
		},
		enumerations: make(map[string]*models.Enumeration),
		inFlight:     make(map[string]struct{}),
	}
}

// Seed records everything the target snapshot already contains. Field
// slices are copied so the snapshot itself is never mutated.
func (r *Registry) Seed(target *models.Snapshot) {
	if target == nil {
		return
	}
	for _, m := range target.Models {
		r.seedEntity(KindModel, m)
	}
	for _, c := range target.Components {
		r.seedEntity(KindComponent, c)
	}
	for _, e := range target.Enumerations {
		r.RegisterEnumerationIfMissing(e)
	}
}

func (r *Registry) seedEntity(kind Kind, e models.Entity) {
	t := r.tables[kind]
	if _, ok := t.records[e.APIID]; ok {
		return
	}
	fields := make([]models.Field, len(e.Fields))
	copy(fields, e.Fields)
	t.add(&Record{
		APIID:       e.APIID,
		APIIDPlural: e.APIIDPlural,
		DisplayName: e.DisplayName,
		Description: e.Description,
		Fields:      fields,
	})
}

// Has reports whether an entity of the given kind is known
func (r *Registry) Has(kind Kind, apiID string) bool {
	_, ok := r.Lookup(kind, apiID)
	return ok
}

// Lookup returns the record for an entity of the given kind
func (r *Registry) Lookup(kind Kind, apiID string) (*Record, bool) {
	t, ok := r.tables[kind]
	if !ok {
		return nil, false
	}
	rec, ok := t.records[apiID]
	return rec, ok
}

// RegisterIfMissing returns the existing record for apiID, or registers
// seed (with its fields cleared) and reports wasNew. Callers emit a
// creation operation only when wasNew is true.
func (r *Registry) RegisterIfMissing(kind Kind, apiID string, seed Record) (*Record, bool) {
	if rec, ok := r.Lookup(kind, apiID); ok {
		return rec, false
	}
	seed.APIID = apiID
	seed.Fields = nil
	rec := &seed
	r.tables[kind].add(rec)
	return rec, true
}

// RecordField appends field to the entity's record unless a field with the
// same apiId is already there. It reports whether the field was added.
func (r *Registry) RecordField(kind Kind, apiID string, field models.Field) bool {
	rec, ok := r.Lookup(kind, apiID)
	if !ok || rec.HasField(field.APIID) {
		return false
	}
	rec.Fields = append(rec.Fields, field)
	return true
}

// HasEnumeration reports whether the enumeration is known
func (r *Registry) HasEnumeration(apiID string) bool {
	_, ok := r.enumerations[apiID]
	return ok
}

// Enumeration returns the known enumeration with apiID
func (r *Registry) Enumeration(apiID string) (*models.Enumeration, bool) {
	e, ok := r.enumerations[apiID]
	return e, ok
}

// RegisterEnumerationIfMissing records e and reports whether it was new
func (r *Registry) RegisterEnumerationIfMissing(e models.Enumeration) bool {
	if r.HasEnumeration(e.APIID) {
		return false
	}
	values := make([]models.EnumValue, len(e.Values))
	copy(values, e.Values)
	e.Values = values
	r.enumerations[e.APIID] = &e
	r.enumOrder = append(r.enumOrder, e.APIID)
	return true
}

// Acquire marks apiID as in flight. ok is false when it already was, in
// which case release is a no-op. Callers defer release so the mark is
// dropped on every return path.
func (r *Registry) Acquire(apiID string) (release func(), ok bool) {
	if r.InFlight(apiID) {
		return func() {}, false
	}
	r.inFlight[apiID] = struct{}{}
	released := false
	return func() {
		if released {
			return
		}
		released = true
		delete(r.inFlight, apiID)
	}, true
}

// InFlight reports whether apiID is currently being expanded
func (r *Registry) InFlight(apiID string) bool {
	_, ok := r.inFlight[apiID]
	return ok
}

// Snapshot projects the registry back into a snapshot: the target as it
// will look once everything registered so far exists.
func (r *Registry) Snapshot() *models.Snapshot {
	s := &models.Snapshot{
		Models:       r.project(KindModel),
		Components:   r.project(KindComponent),
		Enumerations: make([]models.Enumeration, 0, len(r.enumOrder)),
	}
	for _, id := range r.enumOrder {
		e := *r.enumerations[id]
		e.Values = append([]models.EnumValue(nil), e.Values...)
		s.Enumerations = append(s.Enumerations, e)
	}
	return s
}

func (r *Registry) project(kind Kind) []models.Entity {
	t := r.tables[kind]
	entities := make([]models.Entity, 0, len(t.order))
	for _, id := range t.order {
		rec := t.records[id]
		entities = append(entities, models.Entity{
			APIID:       rec.APIID,
			APIIDPlural: rec.APIIDPlural,
			DisplayName: rec.DisplayName,
			Description: rec.Description,
			Fields:      append([]models.Field(nil), rec.Fields...),
		})
	}
	return entities
}
