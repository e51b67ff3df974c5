package models

import "strings"

// AssetModelAPIID is the built-in asset model every project carries.
const AssetModelAPIID = "Asset"

// Environment identifies the project environment a snapshot was read from
type Environment struct {
	Name     string `json:"name,omitempty"`
	ID       string `json:"id,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`
}

// Snapshot is the immutable content graph of one project environment
type Snapshot struct {
	Environment  Environment
	Models       []Entity
	Components   []Entity
	Enumerations []Enumeration
}

// Entity is a model or a component. Components are structurally identical
// to models but have no query surface of their own.
type Entity struct {
	APIID       string
	APIIDPlural string
	DisplayName string
	Description string
	IsSystem    bool
	Fields      []Field
}

// Enumeration is a named closed set of values
type Enumeration struct {
	APIID       string
	DisplayName string
	Description string
	Values      []EnumValue
}

// EnumValue is one member of an enumeration
type EnumValue struct {
	APIID       string `json:"apiId" yaml:"apiId"`
	DisplayName string `json:"displayName" yaml:"displayName"`
}

// Model returns the model with the given apiId
func (s *Snapshot) Model(apiID string) (*Entity, bool) {
	return findEntity(s.Models, apiID)
}

// Component returns the component with the given apiId
func (s *Snapshot) Component(apiID string) (*Entity, bool) {
	return findEntity(s.Components, apiID)
}

// Enumeration returns the enumeration with the given apiId
func (s *Snapshot) Enumeration(apiID string) (*Enumeration, bool) {
	for i := range s.Enumerations {
		if s.Enumerations[i].APIID == apiID {
			return &s.Enumerations[i], true
		}
	}
	return nil, false
}

// Roots returns the models and components whose display name contains
// filter. The match is a case-sensitive substring match; an empty filter
// selects nothing.
func (s *Snapshot) Roots(filter string) (models, components []*Entity) {
	if filter == "" {
		return nil, nil
	}
	for i := range s.Models {
		if strings.Contains(s.Models[i].DisplayName, filter) {
			models = append(models, &s.Models[i])
		}
	}
	for i := range s.Components {
		if strings.Contains(s.Components[i].DisplayName, filter) {
			components = append(components, &s.Components[i])
		}
	}
	return models, components
}

// Field returns the entity's field with the given apiId
func (e *Entity) Field(apiID string) (*Field, bool) {
	for i := range e.Fields {
		if e.Fields[i].APIID == apiID {
			return &e.Fields[i], true
		}
	}
	return nil, false
}

// IsAsset reports whether apiID names the built-in asset model
func IsAsset(apiID string) bool {
	return strings.EqualFold(apiID, AssetModelAPIID)
}

func findEntity(entities []Entity, apiID string) (*Entity, bool) {
	for i := range entities {
		if entities[i].APIID == apiID {
			return &entities[i], true
		}
	}
	return nil, false
}
