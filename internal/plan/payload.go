package plan

import "github.com/pders01/schemasync/internal/models"

// Name is the operation vocabulary accepted by the mutation client
type Name string

const (
	CreateModel               Name = "createModel"
	CreateComponent           Name = "createComponent"
	CreateEnumeration         Name = "createEnumeration"
	CreateSimpleField         Name = "createSimpleField"
	CreateEnumerableField     Name = "createEnumerableField"
	CreateComponentField      Name = "createComponentField"
	CreateComponentUnionField Name = "createComponentUnionField"
	CreateRelationalField     Name = "createRelationalField"
	CreateUnionField          Name = "createUnionField"
)

// Names lists the vocabulary in a stable order
func Names() []Name {
	return []Name{
		CreateModel,
		CreateComponent,
		CreateEnumeration,
		CreateSimpleField,
		CreateEnumerableField,
		CreateComponentField,
		CreateComponentUnionField,
		CreateRelationalField,
		CreateUnionField,
	}
}

// RefKind says what a Ref points at
type RefKind string

const (
	RefModel       RefKind = "model"
	RefComponent   RefKind = "component"
	RefEnumeration RefKind = "enumeration"
	// RefEntity is a field parent: a model or a component.
	RefEntity RefKind = "entity"
)

// Ref identifies a schema entity an operation creates or depends on
type Ref struct {
	Kind  RefKind
	APIID string
}

// Payload is the data of one operation
type Payload interface {
	OperationName() Name
	// Refs lists the entities that must exist before the operation runs.
	Refs() []Ref
}

// ModelInput creates a model
type ModelInput struct {
	APIID       string `json:"apiId" yaml:"apiId"`
	APIIDPlural string `json:"apiIdPlural" yaml:"apiIdPlural"`
	DisplayName string `json:"displayName" yaml:"displayName"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// ComponentInput creates a component
type ComponentInput struct {
	APIID       string `json:"apiId" yaml:"apiId"`
	APIIDPlural string `json:"apiIdPlural" yaml:"apiIdPlural"`
	DisplayName string `json:"displayName" yaml:"displayName"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// EnumerationInput creates an enumeration
type EnumerationInput struct {
	APIID       string             `json:"apiId" yaml:"apiId"`
	DisplayName string             `json:"displayName" yaml:"displayName"`
	Description string             `json:"description,omitempty" yaml:"description,omitempty"`
	Values      []models.EnumValue `json:"values" yaml:"values"`
}

// SimpleFieldInput creates a scalar field
type SimpleFieldInput struct {
	APIID       string `json:"apiId" yaml:"apiId"`
	ParentAPIID string `json:"parentApiId" yaml:"parentApiId"`
	Type        string `json:"type" yaml:"type"`
	DisplayName string `json:"displayName" yaml:"displayName"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	IsList      bool   `json:"isList,omitempty" yaml:"isList,omitempty"`
}

// EnumerableFieldInput creates a field typed by an enumeration
type EnumerableFieldInput struct {
	APIID            string `json:"apiId" yaml:"apiId"`
	ParentAPIID      string `json:"parentApiId" yaml:"parentApiId"`
	EnumerationAPIID string `json:"enumerationApiId" yaml:"enumerationApiId"`
	DisplayName      string `json:"displayName" yaml:"displayName"`
	Description      string `json:"description,omitempty" yaml:"description,omitempty"`
	IsList           bool   `json:"isList,omitempty" yaml:"isList,omitempty"`
}

// ComponentFieldInput creates a field embedding a component
type ComponentFieldInput struct {
	APIID          string `json:"apiId" yaml:"apiId"`
	ParentAPIID    string `json:"parentApiId" yaml:"parentApiId"`
	ComponentAPIID string `json:"componentApiId" yaml:"componentApiId"`
	DisplayName    string `json:"displayName" yaml:"displayName"`
	Description    string `json:"description,omitempty" yaml:"description,omitempty"`
	IsList         bool   `json:"isList,omitempty" yaml:"isList,omitempty"`
}

// ComponentUnionFieldInput creates a field embedding one of several
// components
type ComponentUnionFieldInput struct {
	APIID           string   `json:"apiId" yaml:"apiId"`
	ParentAPIID     string   `json:"parentApiId" yaml:"parentApiId"`
	ComponentAPIIDs []string `json:"componentApiIds" yaml:"componentApiIds"`
	DisplayName     string   `json:"displayName" yaml:"displayName"`
	Description     string   `json:"description,omitempty" yaml:"description,omitempty"`
	IsList          bool     `json:"isList,omitempty" yaml:"isList,omitempty"`
}

// ReverseFieldInput is the other side of a relational field
type ReverseFieldInput struct {
	ModelAPIID       string `json:"modelApiId" yaml:"modelApiId"`
	APIID            string `json:"apiId" yaml:"apiId"`
	DisplayName      string `json:"displayName" yaml:"displayName"`
	Description      string `json:"description,omitempty" yaml:"description,omitempty"`
	IsList           bool   `json:"isList,omitempty" yaml:"isList,omitempty"`
	IsRequired       bool   `json:"isRequired,omitempty" yaml:"isRequired,omitempty"`
	Visibility       string `json:"visibility,omitempty" yaml:"visibility,omitempty"`
	IsUnidirectional bool   `json:"isUnidirectional,omitempty" yaml:"isUnidirectional,omitempty"`
}

// RelationalFieldInput creates a relation to another model
type RelationalFieldInput struct {
	APIID        string            `json:"apiId" yaml:"apiId"`
	ParentAPIID  string            `json:"parentApiId" yaml:"parentApiId"`
	Type         string            `json:"type" yaml:"type"`
	DisplayName  string            `json:"displayName" yaml:"displayName"`
	Description  string            `json:"description,omitempty" yaml:"description,omitempty"`
	IsList       bool              `json:"isList,omitempty" yaml:"isList,omitempty"`
	IsRequired   bool              `json:"isRequired,omitempty" yaml:"isRequired,omitempty"`
	Visibility   string            `json:"visibility,omitempty" yaml:"visibility,omitempty"`
	ReverseField ReverseFieldInput `json:"reverseField" yaml:"reverseField"`
}

// UnionReverseFieldInput is the reverse side of a union field, created on
// every member model
type UnionReverseFieldInput struct {
	APIID       string   `json:"apiId" yaml:"apiId"`
	ModelAPIIDs []string `json:"modelApiIds" yaml:"modelApiIds"`
	DisplayName string   `json:"displayName" yaml:"displayName"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	IsList      bool     `json:"isList,omitempty" yaml:"isList,omitempty"`
	Visibility  string   `json:"visibility,omitempty" yaml:"visibility,omitempty"`
}

// UnionFieldInput creates a polymorphic relation
type UnionFieldInput struct {
	APIID        string                 `json:"apiId" yaml:"apiId"`
	ParentAPIID  string                 `json:"parentApiId" yaml:"parentApiId"`
	DisplayName  string                 `json:"displayName" yaml:"displayName"`
	Description  string                 `json:"description,omitempty" yaml:"description,omitempty"`
	IsList       bool                   `json:"isList,omitempty" yaml:"isList,omitempty"`
	ReverseField UnionReverseFieldInput `json:"reverseField" yaml:"reverseField"`
}

func (ModelInput) OperationName() Name               { return CreateModel }
func (ComponentInput) OperationName() Name           { return CreateComponent }
func (EnumerationInput) OperationName() Name         { return CreateEnumeration }
func (SimpleFieldInput) OperationName() Name         { return CreateSimpleField }
func (EnumerableFieldInput) OperationName() Name     { return CreateEnumerableField }
func (ComponentFieldInput) OperationName() Name      { return CreateComponentField }
func (ComponentUnionFieldInput) OperationName() Name { return CreateComponentUnionField }
func (RelationalFieldInput) OperationName() Name     { return CreateRelationalField }
func (UnionFieldInput) OperationName() Name          { return CreateUnionField }

func (ModelInput) Refs() []Ref       { return nil }
func (ComponentInput) Refs() []Ref   { return nil }
func (EnumerationInput) Refs() []Ref { return nil }

func (in SimpleFieldInput) Refs() []Ref {
	return []Ref{{RefEntity, in.ParentAPIID}}
}

func (in EnumerableFieldInput) Refs() []Ref {
	return []Ref{{RefEntity, in.ParentAPIID}, {RefEnumeration, in.EnumerationAPIID}}
}

func (in ComponentFieldInput) Refs() []Ref {
	return []Ref{{RefEntity, in.ParentAPIID}, {RefComponent, in.ComponentAPIID}}
}

func (in ComponentUnionFieldInput) Refs() []Ref {
	refs := []Ref{{RefEntity, in.ParentAPIID}}
	for _, id := range in.ComponentAPIIDs {
		refs = append(refs, Ref{RefComponent, id})
	}
	return refs
}

func (in RelationalFieldInput) Refs() []Ref {
	refs := []Ref{{RefEntity, in.ParentAPIID}}
	if !models.IsAsset(in.ReverseField.ModelAPIID) {
		refs = append(refs, Ref{RefModel, in.ReverseField.ModelAPIID})
	}
	return refs
}

func (in UnionFieldInput) Refs() []Ref {
	refs := []Ref{{RefEntity, in.ParentAPIID}}
	for _, id := range in.ReverseField.ModelAPIIDs {
		refs = append(refs, Ref{RefModel, id})
	}
	return refs
}

// Creates reports the entity an operation creates, if any
func Creates(p Payload) (Ref, bool) {
	switch in := p.(type) {
	case ModelInput:
		return Ref{RefModel, in.APIID}, true
	case ComponentInput:
		return Ref{RefComponent, in.APIID}, true
	case EnumerationInput:
		return Ref{RefEnumeration, in.APIID}, true
	}
	return Ref{}, false
}

func newPayload(name Name) (Payload, bool) {
	switch name {
	case CreateModel:
		return &ModelInput{}, true
	case CreateComponent:
		return &ComponentInput{}, true
	case CreateEnumeration:
		return &EnumerationInput{}, true
	case CreateSimpleField:
		return &SimpleFieldInput{}, true
	case CreateEnumerableField:
		return &EnumerableFieldInput{}, true
	case CreateComponentField:
		return &ComponentFieldInput{}, true
	case CreateComponentUnionField:
		return &ComponentUnionFieldInput{}, true
	case CreateRelationalField:
		return &RelationalFieldInput{}, true
	case CreateUnionField:
		return &UnionFieldInput{}, true
	}
	return nil, false
}
