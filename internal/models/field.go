package models

// FieldKind classifies a field by the shape of the value it holds
type FieldKind int

const (
	KindUnknown FieldKind = iota
	KindSimple
	KindEnumerable
	KindComponent
	KindComponentUnion
	KindRelational
	KindUniRelational
	KindUnion
)

var kindNames = map[FieldKind]string{
	KindUnknown:        "unknown",
	KindSimple:         "simple",
	KindEnumerable:     "enumerable",
	KindComponent:      "component",
	KindComponentUnion: "component-union",
	KindRelational:     "relational",
	KindUniRelational:  "uni-relational",
	KindUnion:          "union",
}

func (k FieldKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Kinds lists every classifiable kind in a stable order
func Kinds() []FieldKind {
	return []FieldKind{
		KindSimple,
		KindEnumerable,
		KindComponent,
		KindComponentUnion,
		KindRelational,
		KindUniRelational,
		KindUnion,
	}
}

// Field is one field of a model or component. Shape carries the
// kind-specific part; it is nil when the field could not be classified, in
// which case Err explains why.
type Field struct {
	APIID       string
	DisplayName string
	Description string
	ParentAPIID string
	IsSystem    bool
	IsList      bool
	IsRequired  bool
	Visibility  string

	Shape Shape
	Err   error
}

// Kind returns the field's kind, KindUnknown when unclassified
func (f *Field) Kind() FieldKind {
	if f.Shape == nil {
		return KindUnknown
	}
	return f.Shape.Kind()
}

// Shape is the kind-specific part of a field. The set of implementations is
// closed: SimpleShape, EnumerableShape, ComponentShape, ComponentUnionShape,
// RelationalShape, UniRelationalShape and UnionShape.
type Shape interface {
	Kind() FieldKind
	shape()
}

// SimpleShape is a scalar field (string, int, date, ...)
type SimpleShape struct {
	Type string
}

// EnumerableShape is a field whose values come from an enumeration
type EnumerableShape struct {
	EnumerationAPIID string
}

// ComponentShape embeds a single component
type ComponentShape struct {
	ComponentAPIID string
}

// ComponentUnionShape embeds one of several components
type ComponentUnionShape struct {
	ComponentAPIIDs []string
}

// ReverseRef describes the field on the other side of a bidirectional
// relation
type ReverseRef struct {
	APIID       string
	DisplayName string
	Description string
	IsList      bool
	IsRequired  bool
	Visibility  string
}

// RelationalShape links to another model and has a reverse field there
type RelationalShape struct {
	Type              string
	RelatedModelAPIID string
	Reverse           ReverseRef
}

// UniRelationalShape links to another model without a reverse field
type UniRelationalShape struct {
	Type              string
	RelatedModelAPIID string
}

// UnionReverseRef is the union's reverse field, present on every member
// model
type UnionReverseRef struct {
	APIID       string
	DisplayName string
	Description string
	IsList      bool
	Visibility  string
	// ParentAPIID is the model owning the reverse field, when reported.
	ParentAPIID string
}

// UnionShape links to instances of any of several models
type UnionShape struct {
	MemberModelAPIIDs []string
	Reverse           UnionReverseRef
}

func (SimpleShape) Kind() FieldKind         { return KindSimple }
func (EnumerableShape) Kind() FieldKind     { return KindEnumerable }
func (ComponentShape) Kind() FieldKind      { return KindComponent }
func (ComponentUnionShape) Kind() FieldKind { return KindComponentUnion }
func (RelationalShape) Kind() FieldKind     { return KindRelational }
func (UniRelationalShape) Kind() FieldKind  { return KindUniRelational }
func (UnionShape) Kind() FieldKind          { return KindUnion }

func (SimpleShape) shape()         {}
func (EnumerableShape) shape()     {}
func (ComponentShape) shape()      {}
func (ComponentUnionShape) shape() {}
func (RelationalShape) shape()     {}
func (UniRelationalShape) shape()  {}
func (UnionShape) shape()          {}
