package planner

import (
	"log/slog"
	"slices"

	"github.com/pders01/schemasync/internal/models"
	"github.com/pders01/schemasync/internal/plan"
	"github.com/pders01/schemasync/internal/registry"
)

// outcome of handling one source field
type outcome int

const (
	// emitted: a creation operation was appended.
	emitted outcome = iota
	// satisfied: nothing to emit, the target has or will have the field.
	satisfied
	// skipped: nothing emitted and the field stays missing.
	skipped
)

// run is the state of a single planning pass. It is threaded through every
// recursive call and dropped when Plan returns.
type run struct {
	source *models.Snapshot
	reg    *registry.Registry
	logger *slog.Logger
	result *Result
}

func (r *run) emit(p plan.Payload) {
	r.result.Plan.Append(p)
}

func (r *run) skip(parent string, f *models.Field, reason SkipReason, detail string) {
	s := Skip{ParentAPIID: parent, FieldAPIID: f.APIID, Reason: reason, Detail: detail}
	r.result.Skipped = append(r.result.Skipped, s)
	r.logger.Warn("field skipped",
		"parent", parent,
		"field", f.APIID,
		"reason", string(reason),
		"detail", detail)
}

// addEntity makes sure the model or component exists on the target and
// expands every field it is missing. Re-entering an entity that is already
// being expanded higher up the stack is a no-op.
func (r *run) addEntity(kind registry.Kind, e *models.Entity) {
	release, ok := r.reg.Acquire(e.APIID)
	if !ok {
		r.logger.Debug("entity is being added, ignoring re-entry", "kind", kind.String(), "apiId", e.APIID)
		return
	}
	defer release()

	r.resolveEnumerations(kind, e)

	rec, wasNew := r.reg.RegisterIfMissing(kind, e.APIID, registry.Record{
		APIIDPlural: e.APIIDPlural,
		DisplayName: e.DisplayName,
		Description: e.Description,
	})
	if wasNew {
		r.logger.Debug("entity missing on target", "kind", kind.String(), "apiId", e.APIID)
		switch kind {
		case registry.KindModel:
			r.emit(plan.ModelInput{
				APIID:       e.APIID,
				APIIDPlural: e.APIIDPlural,
				DisplayName: e.DisplayName,
				Description: e.Description,
			})
		case registry.KindComponent:
			r.emit(plan.ComponentInput{
				APIID:       e.APIID,
				APIIDPlural: e.APIIDPlural,
				DisplayName: e.DisplayName,
				Description: e.Description,
			})
		}
	}

	r.addFields(kind, rec, e.Fields)
}

// resolveEnumerations creates the enumerations the entity's pending fields
// use before the entity itself, so they precede it in the plan.
func (r *run) resolveEnumerations(kind registry.Kind, e *models.Entity) {
	existing, _ := r.reg.Lookup(kind, e.APIID)
	for i := range e.Fields {
		f := &e.Fields[i]
		if f.IsSystem || (existing != nil && existing.HasField(f.APIID)) {
			continue
		}
		if s, ok := f.Shape.(models.EnumerableShape); ok {
			r.ensureEnumeration(s.EnumerationAPIID)
		}
	}
}

// addFields walks the source fields in declared order against the
// target-side record of their parent.
func (r *run) addFields(kind registry.Kind, rec *registry.Record, fields []models.Field) {
	for i := range fields {
		f := &fields[i]
		if f.IsSystem || rec.HasField(f.APIID) {
			continue
		}

		// Skipped fields stay missing so a later pass can retry them.
		if r.addField(rec, f) != skipped {
			r.reg.RecordField(kind, rec.APIID, *f)
		}
	}
}

func (r *run) addField(rec *registry.Record, f *models.Field) outcome {
	parent := rec.APIID

	switch s := f.Shape.(type) {
	case models.SimpleShape:
		r.emit(plan.SimpleFieldInput{
			APIID:       f.APIID,
			ParentAPIID: parent,
			Type:        s.Type,
			DisplayName: f.DisplayName,
			Description: f.Description,
			IsList:      f.IsList,
		})
		return emitted

	case models.EnumerableShape:
		if !r.ensureEnumeration(s.EnumerationAPIID) {
			r.skip(parent, f, ReasonMissingDependency, "enumeration "+s.EnumerationAPIID)
			return skipped
		}
		r.emit(plan.EnumerableFieldInput{
			APIID:            f.APIID,
			ParentAPIID:      parent,
			EnumerationAPIID: s.EnumerationAPIID,
			DisplayName:      f.DisplayName,
			Description:      f.Description,
			IsList:           f.IsList,
		})
		return emitted

	case models.ComponentShape:
		if !r.ensureComponent(s.ComponentAPIID) {
			r.skip(parent, f, ReasonMissingDependency, "component "+s.ComponentAPIID)
			return skipped
		}
		r.emit(plan.ComponentFieldInput{
			APIID:          f.APIID,
			ParentAPIID:    parent,
			ComponentAPIID: s.ComponentAPIID,
			DisplayName:    f.DisplayName,
			Description:    f.Description,
			IsList:         f.IsList,
		})
		return emitted

	case models.ComponentUnionShape:
		if missing := r.ensureAll(s.ComponentAPIIDs, r.ensureComponent); missing != "" {
			r.skip(parent, f, ReasonMissingDependency, "component "+missing)
			return skipped
		}
		r.emit(plan.ComponentUnionFieldInput{
			APIID:           f.APIID,
			ParentAPIID:     parent,
			ComponentAPIIDs: slices.Clone(s.ComponentAPIIDs),
			DisplayName:     f.DisplayName,
			Description:     f.Description,
			IsList:          f.IsList,
		})
		return emitted

	case models.RelationalShape:
		return r.addRelational(rec, f, s)

	case models.UniRelationalShape:
		if !r.ensureRelatedModel(s.RelatedModelAPIID) {
			r.skip(parent, f, ReasonMissingDependency, "model "+s.RelatedModelAPIID)
			return skipped
		}
		r.emit(plan.RelationalFieldInput{
			APIID:       f.APIID,
			ParentAPIID: parent,
			Type:        s.Type,
			DisplayName: f.DisplayName,
			Description: f.Description,
			IsList:      f.IsList,
			IsRequired:  f.IsRequired,
			Visibility:  f.Visibility,
			ReverseField: plan.ReverseFieldInput{
				ModelAPIID:       s.RelatedModelAPIID,
				APIID:            f.APIID,
				DisplayName:      f.DisplayName,
				IsUnidirectional: true,
			},
		})
		return emitted

	case models.UnionShape:
		return r.addUnion(rec, f, s)
	}

	detail := "no recognised shape"
	if f.Err != nil {
		detail = f.Err.Error()
	}
	r.skip(parent, f, ReasonUnclassified, detail)
	return skipped
}

func (r *run) addRelational(rec *registry.Record, f *models.Field, s models.RelationalShape) outcome {
	parent := rec.APIID
	related := s.RelatedModelAPIID

	if !r.ensureRelatedModel(related) {
		r.skip(parent, f, ReasonMissingDependency, "model "+related)
		return skipped
	}

	// Expanding the related model may have created this relation from the
	// other end already.
	if rec.HasField(f.APIID) {
		return satisfied
	}

	relatedRec, known := r.reg.Lookup(registry.KindModel, related)
	if known {
		if relatedRec.HasField(s.Reverse.APIID) {
			r.logger.Debug("reverse field already present, relation satisfied",
				"parent", parent, "field", f.APIID, "related", related, "reverse", s.Reverse.APIID)
			return satisfied
		}
		if have, ok := renamedReverse(relatedRec, parent, f.APIID, s.Reverse.APIID); ok {
			c := Conflict{
				ParentAPIID:       parent,
				FieldAPIID:        f.APIID,
				RelatedModelAPIID: related,
				WantReverseAPIID:  s.Reverse.APIID,
				HaveReverseAPIID:  have,
			}
			r.result.Conflicts = append(r.result.Conflicts, c)
			r.skip(parent, f, ReasonConflict, c.String())
			return skipped
		}
	}

	r.emit(plan.RelationalFieldInput{
		APIID:       f.APIID,
		ParentAPIID: parent,
		Type:        s.Type,
		DisplayName: f.DisplayName,
		Description: f.Description,
		IsList:      f.IsList,
		IsRequired:  f.IsRequired,
		Visibility:  f.Visibility,
		ReverseField: plan.ReverseFieldInput{
			ModelAPIID:  related,
			APIID:       s.Reverse.APIID,
			DisplayName: s.Reverse.DisplayName,
			Description: s.Reverse.Description,
			IsList:      s.Reverse.IsList,
			IsRequired:  s.Reverse.IsRequired,
			Visibility:  s.Reverse.Visibility,
		},
	})

	if known {
		r.reg.RecordField(registry.KindModel, related, models.Field{
			APIID:       s.Reverse.APIID,
			DisplayName: s.Reverse.DisplayName,
			Description: s.Reverse.Description,
			ParentAPIID: related,
			IsList:      s.Reverse.IsList,
			IsRequired:  s.Reverse.IsRequired,
			Visibility:  s.Reverse.Visibility,
			Shape: models.RelationalShape{
				Type:              s.Type,
				RelatedModelAPIID: parent,
				Reverse: models.ReverseRef{
					APIID:       f.APIID,
					DisplayName: f.DisplayName,
					Description: f.Description,
					IsList:      f.IsList,
					IsRequired:  f.IsRequired,
					Visibility:  f.Visibility,
				},
			},
		})
	}
	return emitted
}

// renamedReverse looks on the related model for a relation pointing back at
// parent.field under a reverse apiId other than want.
func renamedReverse(related *registry.Record, parent, field, want string) (string, bool) {
	for i := range related.Fields {
		rs, ok := related.Fields[i].Shape.(models.RelationalShape)
		if !ok {
			continue
		}
		if rs.RelatedModelAPIID == parent && rs.Reverse.APIID == field && related.Fields[i].APIID != want {
			return related.Fields[i].APIID, true
		}
	}
	return "", false
}

func (r *run) addUnion(rec *registry.Record, f *models.Field, s models.UnionShape) outcome {
	parent := rec.APIID

	deps := slices.Clone(s.MemberModelAPIIDs)
	if owner := s.Reverse.ParentAPIID; owner != "" && !slices.Contains(deps, owner) {
		deps = append(deps, owner)
	}
	if missing := r.ensureAll(deps, r.ensureModel); missing != "" {
		r.skip(parent, f, ReasonMissingDependency, "model "+missing)
		return skipped
	}

	if slices.Contains(s.MemberModelAPIIDs, parent) {
		r.logger.Debug("self-referential union, satisfied from the other side", "parent", parent, "field", f.APIID)
		return satisfied
	}
	if rec.HasField(f.APIID) {
		return satisfied
	}

	r.emit(plan.UnionFieldInput{
		APIID:       f.APIID,
		ParentAPIID: parent,
		DisplayName: f.DisplayName,
		Description: f.Description,
		IsList:      f.IsList,
		ReverseField: plan.UnionReverseFieldInput{
			APIID:       s.Reverse.APIID,
			ModelAPIIDs: slices.Clone(s.MemberModelAPIIDs),
			DisplayName: s.Reverse.DisplayName,
			Description: s.Reverse.Description,
			IsList:      s.Reverse.IsList,
			Visibility:  s.Reverse.Visibility,
		},
	})

	if s.Reverse.APIID != "" {
		for _, member := range s.MemberModelAPIIDs {
			r.reg.RecordField(registry.KindModel, member, models.Field{
				APIID:       s.Reverse.APIID,
				DisplayName: s.Reverse.DisplayName,
				Description: s.Reverse.Description,
				ParentAPIID: member,
				IsList:      s.Reverse.IsList,
				Visibility:  s.Reverse.Visibility,
				Shape: models.UnionShape{
					MemberModelAPIIDs: []string{parent},
					Reverse: models.UnionReverseRef{
						APIID:       f.APIID,
						DisplayName: f.DisplayName,
						Description: f.Description,
						IsList:      f.IsList,
						Visibility:  f.Visibility,
						ParentAPIID: parent,
					},
				},
			})
		}
	}
	return emitted
}

// ensureEnumeration reports whether the enumeration exists on the target,
// planning its creation from the source when it does not.
func (r *run) ensureEnumeration(apiID string) bool {
	if r.reg.HasEnumeration(apiID) {
		return true
	}
	src, ok := r.source.Enumeration(apiID)
	if !ok {
		return false
	}
	r.reg.RegisterEnumerationIfMissing(*src)
	r.emit(plan.EnumerationInput{
		APIID:       src.APIID,
		DisplayName: src.DisplayName,
		Description: src.Description,
		Values:      slices.Clone(src.Values),
	})
	return true
}

// ensureComponent expands the source component (creating it and any
// missing fields) and reports whether the target will have it.
func (r *run) ensureComponent(apiID string) bool {
	if src, ok := r.source.Component(apiID); ok {
		r.addEntity(registry.KindComponent, src)
		return true
	}
	return r.reg.Has(registry.KindComponent, apiID)
}

// ensureModel is ensureComponent for models.
func (r *run) ensureModel(apiID string) bool {
	if src, ok := r.source.Model(apiID); ok {
		r.addEntity(registry.KindModel, src)
		return true
	}
	return r.reg.Has(registry.KindModel, apiID)
}

// ensureRelatedModel treats the built-in asset model as always present.
func (r *run) ensureRelatedModel(apiID string) bool {
	if models.IsAsset(apiID) {
		return true
	}
	return r.ensureModel(apiID)
}

// ensureAll runs ensure over ids and returns the first id that could not be
// satisfied, or "".
func (r *run) ensureAll(ids []string, ensure func(string) bool) string {
	missing := ""
	for _, id := range ids {
		if !ensure(id) && missing == "" {
			missing = id
		}
	}
	return missing
}
