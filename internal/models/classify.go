package models

import (
	"errors"
	"fmt"
)

// ErrUnclassified is wrapped by every classification failure
var ErrUnclassified = errors.New("unclassified field")

// Classify turns a wire field into a Field with an explicit shape. It never
// fails outright: a record it cannot interpret comes back with a nil Shape
// and Err set, so one odd field does not poison the rest of the snapshot.
func Classify(w WireField) Field {
	f := Field{
		APIID:       w.APIID,
		DisplayName: w.DisplayName,
		Description: w.Description,
		IsSystem:    w.IsSystem,
		IsList:      w.IsList,
		IsRequired:  w.IsRequired,
		Visibility:  w.Visibility,
	}
	if w.Parent != nil {
		f.ParentAPIID = w.Parent.APIID
	}

	shape, err := classifyShape(w)
	if err != nil {
		f.Err = fmt.Errorf("field %q: %w", w.APIID, err)
		return f
	}
	f.Shape = shape
	return f
}

func classifyShape(w WireField) (Shape, error) {
	switch kindOf(w) {
	case KindSimple:
		return SimpleShape{Type: firstNonEmpty(w.SType, w.Type)}, nil

	case KindEnumerable:
		if w.Enumeration == nil || w.Enumeration.APIID == "" {
			return nil, fmt.Errorf("%w: enumerable field without enumeration", ErrUnclassified)
		}
		return EnumerableShape{EnumerationAPIID: w.Enumeration.APIID}, nil

	case KindComponent:
		if w.Component == nil || w.Component.APIID == "" {
			return nil, fmt.Errorf("%w: component field without component", ErrUnclassified)
		}
		return ComponentShape{ComponentAPIID: w.Component.APIID}, nil

	case KindComponentUnion:
		ids := make([]string, 0, len(w.Components))
		for _, c := range w.Components {
			if c.APIID != "" {
				ids = append(ids, c.APIID)
			}
		}
		if len(ids) == 0 {
			return nil, fmt.Errorf("%w: component union without members", ErrUnclassified)
		}
		return ComponentUnionShape{ComponentAPIIDs: ids}, nil

	case KindRelational:
		if w.RelatedModel == nil || w.RelatedModel.APIID == "" {
			return nil, fmt.Errorf("%w: relational field without related model", ErrUnclassified)
		}
		if w.RelatedField == nil || w.RelatedField.APIID == "" {
			return nil, fmt.Errorf("%w: relational field without reverse field", ErrUnclassified)
		}
		return RelationalShape{
			Type:              firstNonEmpty(w.RType, w.Type),
			RelatedModelAPIID: w.RelatedModel.APIID,
			Reverse: ReverseRef{
				APIID:       w.RelatedField.APIID,
				DisplayName: w.RelatedField.DisplayName,
				Description: w.RelatedField.Description,
				IsList:      w.RelatedField.IsList,
				IsRequired:  w.RelatedField.IsRequired,
				Visibility:  w.RelatedField.Visibility,
			},
		}, nil

	case KindUniRelational:
		if w.RelatedModel == nil || w.RelatedModel.APIID == "" {
			return nil, fmt.Errorf("%w: relational field without related model", ErrUnclassified)
		}
		return UniRelationalShape{
			Type:              firstNonEmpty(w.UDRType, w.Type),
			RelatedModelAPIID: w.RelatedModel.APIID,
		}, nil

	case KindUnion:
		if w.Union == nil || len(w.Union.MemberTypes) == 0 {
			return nil, fmt.Errorf("%w: union field without member types", ErrUnclassified)
		}
		members := make([]string, 0, len(w.Union.MemberTypes))
		for _, m := range w.Union.MemberTypes {
			members = append(members, m.Parent.APIID)
		}
		shape := UnionShape{MemberModelAPIIDs: members}
		if uf := w.Union.Field; uf != nil {
			shape.Reverse = UnionReverseRef{
				APIID:       uf.APIID,
				DisplayName: uf.DisplayName,
				Description: uf.Description,
				IsList:      uf.IsList,
				Visibility:  uf.Visibility,
			}
			if uf.Parent != nil {
				shape.Reverse.ParentAPIID = uf.Parent.APIID
			}
		}
		return shape, nil
	}

	if w.Typename != "" {
		return nil, fmt.Errorf("%w: unsupported type %q", ErrUnclassified, w.Typename)
	}
	return nil, fmt.Errorf("%w: no kind marker", ErrUnclassified)
}

var typenameKinds = map[string]FieldKind{
	"SimpleField":                   KindSimple,
	"EnumerableField":               KindEnumerable,
	"ComponentField":                KindComponent,
	"ComponentUnionField":           KindComponentUnion,
	"RelationalField":               KindRelational,
	"UniDirectionalRelationalField": KindUniRelational,
	"UnionField":                    KindUnion,
}

// kindOf prefers __typename and falls back to the aliased type markers.
func kindOf(w WireField) FieldKind {
	if w.Typename != "" {
		return typenameKinds[w.Typename]
	}
	switch {
	case w.SType != "":
		return KindSimple
	case w.EType != "":
		return KindEnumerable
	case w.CType != "":
		return KindComponent
	case w.CUType != "":
		return KindComponentUnion
	case w.UType != "":
		return KindUnion
	case w.RType != "":
		return KindRelational
	case w.UDRType != "":
		return KindUniRelational
	}
	return KindUnknown
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
