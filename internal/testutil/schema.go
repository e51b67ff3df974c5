package testutil

import "github.com/pders01/schemasync/internal/models"

// SchemaBuilder assembles snapshots for tests. Display names default to
// the apiId and plurals to apiId+"s".
type SchemaBuilder struct {
	s models.Snapshot
}

// NewSchema starts an empty snapshot
func NewSchema() *SchemaBuilder {
	return &SchemaBuilder{}
}

// Model adds a model with the given fields
func (b *SchemaBuilder) Model(apiID string, fields ...models.Field) *SchemaBuilder {
	b.s.Models = append(b.s.Models, entity(apiID, fields))
	return b
}

// NamedModel adds a model with an explicit display name
func (b *SchemaBuilder) NamedModel(apiID, displayName string, fields ...models.Field) *SchemaBuilder {
	e := entity(apiID, fields)
	e.DisplayName = displayName
	b.s.Models = append(b.s.Models, e)
	return b
}

// Component adds a component with the given fields
func (b *SchemaBuilder) Component(apiID string, fields ...models.Field) *SchemaBuilder {
	b.s.Components = append(b.s.Components, entity(apiID, fields))
	return b
}

// Enumeration adds an enumeration whose values use the same string as
// apiId and display name
func (b *SchemaBuilder) Enumeration(apiID string, values ...string) *SchemaBuilder {
	e := models.Enumeration{APIID: apiID, DisplayName: apiID}
	for _, v := range values {
		e.Values = append(e.Values, models.EnumValue{APIID: v, DisplayName: v})
	}
	b.s.Enumerations = append(b.s.Enumerations, e)
	return b
}

// Build returns the snapshot
func (b *SchemaBuilder) Build() *models.Snapshot {
	s := b.s
	return &s
}

func entity(apiID string, fields []models.Field) models.Entity {
	e := models.Entity{
		APIID:       apiID,
		APIIDPlural: apiID + "s",
		DisplayName: apiID,
	}
	for _, f := range fields {
		f.ParentAPIID = apiID
		e.Fields = append(e.Fields, f)
	}
	return e
}

// Simple returns a scalar field
func Simple(apiID, typ string) models.Field {
	return models.Field{APIID: apiID, DisplayName: apiID, Shape: models.SimpleShape{Type: typ}}
}

// System marks f as a system field
func System(f models.Field) models.Field {
	f.IsSystem = true
	return f
}

// Enumerable returns a field typed by an enumeration
func Enumerable(apiID, enumeration string) models.Field {
	return models.Field{APIID: apiID, DisplayName: apiID, Shape: models.EnumerableShape{EnumerationAPIID: enumeration}}
}

// ComponentRef returns a field embedding a component
func ComponentRef(apiID, component string) models.Field {
	return models.Field{APIID: apiID, DisplayName: apiID, Shape: models.ComponentShape{ComponentAPIID: component}}
}

// ComponentUnion returns a field embedding one of several components
func ComponentUnion(apiID string, components ...string) models.Field {
	return models.Field{APIID: apiID, DisplayName: apiID, Shape: models.ComponentUnionShape{ComponentAPIIDs: components}}
}

// Relation returns a bidirectional relation to related whose reverse field
// is reverse
func Relation(apiID, related, reverse string) models.Field {
	return models.Field{
		APIID:       apiID,
		DisplayName: apiID,
		Shape: models.RelationalShape{
			Type:              "RELATION",
			RelatedModelAPIID: related,
			Reverse:           models.ReverseRef{APIID: reverse, DisplayName: reverse},
		},
	}
}

// UniRelation returns a relation without reverse field
func UniRelation(apiID, related string) models.Field {
	return models.Field{
		APIID:       apiID,
		DisplayName: apiID,
		Shape:       models.UniRelationalShape{Type: "RELATION", RelatedModelAPIID: related},
	}
}

// Union returns a union field over members with the given reverse field
func Union(apiID, reverse string, members ...string) models.Field {
	return models.Field{
		APIID:       apiID,
		DisplayName: apiID,
		Shape: models.UnionShape{
			MemberModelAPIIDs: members,
			Reverse:           models.UnionReverseRef{APIID: reverse, DisplayName: reverse},
		},
	}
}

// Unclassified returns a field the classifier could not interpret
func Unclassified(apiID string) models.Field {
	return models.Classify(models.WireField{APIID: apiID})
}
