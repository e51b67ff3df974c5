package models

// The Wire* types mirror the JSON returned by the management API's content
// model query. They are what gets exported to disk; FromWire turns them into
// a Snapshot.

// WireSchema is one environment's content model as returned by the API
type WireSchema struct {
	Environment  Environment       `json:"environment"`
	Models       []WireEntity      `json:"models"`
	Components   []WireEntity      `json:"components"`
	Enumerations []WireEnumeration `json:"enumerations"`
}

// WireEntity is a model or component record
type WireEntity struct {
	APIID       string      `json:"apiId"`
	APIIDPlural string      `json:"apiIdPlural,omitempty"`
	DisplayName string      `json:"displayName"`
	Description string      `json:"description,omitempty"`
	IsSystem    bool        `json:"isSystem,omitempty"`
	Fields      []WireField `json:"fields"`
}

// WireEnumeration is an enumeration record
type WireEnumeration struct {
	APIID       string      `json:"apiId"`
	DisplayName string      `json:"displayName"`
	Description string      `json:"description,omitempty"`
	IsSystem    bool        `json:"isSystem,omitempty"`
	Values      []EnumValue `json:"values"`
}

// WireRef points at another schema element by apiId
type WireRef struct {
	APIID string `json:"apiId"`
}

// WireRelatedField is the reverse side of a relational field
type WireRelatedField struct {
	APIID       string `json:"apiId"`
	DisplayName string `json:"displayName,omitempty"`
	Description string `json:"description,omitempty"`
	IsList      bool   `json:"isList,omitempty"`
	IsRequired  bool   `json:"isRequired,omitempty"`
	Visibility  string `json:"visibility,omitempty"`
}

// WireUnionMember is one member type of a union
type WireUnionMember struct {
	Parent WireRef `json:"parent"`
}

// WireUnionField is the union's field on the member side
type WireUnionField struct {
	APIID       string   `json:"apiId"`
	DisplayName string   `json:"displayName,omitempty"`
	Description string   `json:"description,omitempty"`
	IsList      bool     `json:"isList,omitempty"`
	Visibility  string   `json:"visibility,omitempty"`
	Parent      *WireRef `json:"parent,omitempty"`
}

// WireUnion is the union descriptor of a union field
type WireUnion struct {
	MemberTypes []WireUnionMember `json:"memberTypes"`
	Field       *WireUnionField   `json:"field,omitempty"`
}

// WireField is a field record. Older queries tag the kind through aliased
// type properties (stype, etype, ...); newer ones send __typename and a
// plain type.
type WireField struct {
	Typename    string   `json:"__typename,omitempty"`
	APIID       string   `json:"apiId"`
	DisplayName string   `json:"displayName,omitempty"`
	Description string   `json:"description,omitempty"`
	IsSystem    bool     `json:"isSystem,omitempty"`
	IsList      bool     `json:"isList,omitempty"`
	IsRequired  bool     `json:"isRequired,omitempty"`
	Visibility  string   `json:"visibility,omitempty"`
	Parent      *WireRef `json:"parent,omitempty"`
	Type        string   `json:"type,omitempty"`

	SType   string `json:"stype,omitempty"`
	EType   string `json:"etype,omitempty"`
	CType   string `json:"ctype,omitempty"`
	CUType  string `json:"cutype,omitempty"`
	RType   string `json:"rtype,omitempty"`
	UDRType string `json:"udrtype,omitempty"`
	UType   string `json:"utype,omitempty"`

	Enumeration  *WireRef          `json:"enumeration,omitempty"`
	Component    *WireRef          `json:"component,omitempty"`
	Components   []WireRef         `json:"components,omitempty"`
	RelatedModel *WireRef          `json:"relatedModel,omitempty"`
	RelatedField *WireRelatedField `json:"relatedField,omitempty"`
	Union        *WireUnion        `json:"union,omitempty"`
}

// FromWire builds a Snapshot, classifying every field on the way
func FromWire(w *WireSchema) *Snapshot {
	s := &Snapshot{
		Environment:  w.Environment,
		Models:       make([]Entity, 0, len(w.Models)),
		Components:   make([]Entity, 0, len(w.Components)),
		Enumerations: make([]Enumeration, 0, len(w.Enumerations)),
	}
	for _, m := range w.Models {
		s.Models = append(s.Models, entityFromWire(m))
	}
	for _, c := range w.Components {
		s.Components = append(s.Components, entityFromWire(c))
	}
	for _, e := range w.Enumerations {
		values := make([]EnumValue, len(e.Values))
		copy(values, e.Values)
		s.Enumerations = append(s.Enumerations, Enumeration{
			APIID:       e.APIID,
			DisplayName: e.DisplayName,
			Description: e.Description,
			Values:      values,
		})
	}
	return s
}

func entityFromWire(w WireEntity) Entity {
	e := Entity{
		APIID:       w.APIID,
		APIIDPlural: w.APIIDPlural,
		DisplayName: w.DisplayName,
		Description: w.Description,
		IsSystem:    w.IsSystem,
		Fields:      make([]Field, 0, len(w.Fields)),
	}
	for _, f := range w.Fields {
		field := Classify(f)
		if field.ParentAPIID == "" {
			field.ParentAPIID = w.APIID
		}
		e.Fields = append(e.Fields, field)
	}
	return e
}

var kindTypenames = map[FieldKind]string{
	KindSimple:         "SimpleField",
	KindEnumerable:     "EnumerableField",
	KindComponent:      "ComponentField",
	KindComponentUnion: "ComponentUnionField",
	KindRelational:     "RelationalField",
	KindUniRelational:  "UniDirectionalRelationalField",
	KindUnion:          "UnionField",
}

// ToWire is the inverse of FromWire. Unclassified fields are written without
// a kind marker and classify as unclassified again when read back.
func ToWire(s *Snapshot) *WireSchema {
	w := &WireSchema{
		Environment:  s.Environment,
		Models:       make([]WireEntity, 0, len(s.Models)),
		Components:   make([]WireEntity, 0, len(s.Components)),
		Enumerations: make([]WireEnumeration, 0, len(s.Enumerations)),
	}
	for i := range s.Models {
		w.Models = append(w.Models, entityToWire(&s.Models[i]))
	}
	for i := range s.Components {
		w.Components = append(w.Components, entityToWire(&s.Components[i]))
	}
	for _, e := range s.Enumerations {
		values := make([]EnumValue, len(e.Values))
		copy(values, e.Values)
		w.Enumerations = append(w.Enumerations, WireEnumeration{
			APIID:       e.APIID,
			DisplayName: e.DisplayName,
			Description: e.Description,
			Values:      values,
		})
	}
	return w
}

func entityToWire(e *Entity) WireEntity {
	w := WireEntity{
		APIID:       e.APIID,
		APIIDPlural: e.APIIDPlural,
		DisplayName: e.DisplayName,
		Description: e.Description,
		IsSystem:    e.IsSystem,
		Fields:      make([]WireField, 0, len(e.Fields)),
	}
	for i := range e.Fields {
		w.Fields = append(w.Fields, fieldToWire(&e.Fields[i]))
	}
	return w
}

func fieldToWire(f *Field) WireField {
	w := WireField{
		Typename:    kindTypenames[f.Kind()],
		APIID:       f.APIID,
		DisplayName: f.DisplayName,
		Description: f.Description,
		IsSystem:    f.IsSystem,
		IsList:      f.IsList,
		IsRequired:  f.IsRequired,
		Visibility:  f.Visibility,
	}
	if f.ParentAPIID != "" {
		w.Parent = &WireRef{APIID: f.ParentAPIID}
	}

	switch s := f.Shape.(type) {
	case SimpleShape:
		w.Type = s.Type
	case EnumerableShape:
		w.Enumeration = &WireRef{APIID: s.EnumerationAPIID}
	case ComponentShape:
		w.Component = &WireRef{APIID: s.ComponentAPIID}
	case ComponentUnionShape:
		for _, id := range s.ComponentAPIIDs {
			w.Components = append(w.Components, WireRef{APIID: id})
		}
	case RelationalShape:
		w.Type = s.Type
		w.RelatedModel = &WireRef{APIID: s.RelatedModelAPIID}
		w.RelatedField = &WireRelatedField{
			APIID:       s.Reverse.APIID,
			DisplayName: s.Reverse.DisplayName,
			Description: s.Reverse.Description,
			IsList:      s.Reverse.IsList,
			IsRequired:  s.Reverse.IsRequired,
			Visibility:  s.Reverse.Visibility,
		}
	case UniRelationalShape:
		w.Type = s.Type
		w.RelatedModel = &WireRef{APIID: s.RelatedModelAPIID}
	case UnionShape:
		u := &WireUnion{}
		for _, id := range s.MemberModelAPIIDs {
			u.MemberTypes = append(u.MemberTypes, WireUnionMember{Parent: WireRef{APIID: id}})
		}
		if s.Reverse.APIID != "" {
			u.Field = &WireUnionField{
				APIID:       s.Reverse.APIID,
				DisplayName: s.Reverse.DisplayName,
				Description: s.Reverse.Description,
				IsList:      s.Reverse.IsList,
				Visibility:  s.Reverse.Visibility,
			}
			if s.Reverse.ParentAPIID != "" {
				u.Field.Parent = &WireRef{APIID: s.Reverse.ParentAPIID}
			}
		}
		w.Union = u
	}
	return w
}
