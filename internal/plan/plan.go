// Package plan holds the ordered list of creation operations produced by
// the planner and consumed by a mutation client.
package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

// ErrUnknownOperation is returned for operation names outside the vocabulary
var ErrUnknownOperation = errors.New("unknown operation")

// Operation is one entry of a plan
type Operation struct {
	Name Name    `json:"operationName" yaml:"operationName"`
	Data Payload `json:"data" yaml:"data"`
}

// UnmarshalJSON decodes the payload into the type matching the operation name
func (o *Operation) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name Name            `json:"operationName"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	ptr, ok := newPayload(raw.Name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOperation, raw.Name)
	}
	if len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, ptr); err != nil {
			return fmt.Errorf("failed to decode %s payload: %w", raw.Name, err)
		}
	}

	o.Name = raw.Name
	o.Data = reflect.ValueOf(ptr).Elem().Interface().(Payload)
	return nil
}

// Plan is an append-only, ordered sequence of operations
type Plan struct {
	ops []Operation
}

// New creates an empty plan
func New() *Plan {
	return &Plan{}
}

// Append adds an operation for payload at the end of the plan
func (p *Plan) Append(payload Payload) {
	p.ops = append(p.ops, Operation{Name: payload.OperationName(), Data: payload})
}

// Len returns the number of operations
func (p *Plan) Len() int {
	return len(p.ops)
}

// IsEmpty reports whether the plan has nothing to do
func (p *Plan) IsEmpty() bool {
	return len(p.ops) == 0
}

// Operations returns a copy of the operations in order
func (p *Plan) Operations() []Operation {
	out := make([]Operation, len(p.ops))
	copy(out, p.ops)
	return out
}

// Count returns how many operations carry the given name
func (p *Plan) Count(name Name) int {
	n := 0
	for _, op := range p.ops {
		if op.Name == name {
			n++
		}
	}
	return n
}

// Counts returns the number of operations per name
func (p *Plan) Counts() map[Name]int {
	counts := make(map[Name]int)
	for _, op := range p.ops {
		counts[op.Name]++
	}
	return counts
}

// MarshalJSON encodes the plan as a list of {operationName, data} records
func (p *Plan) MarshalJSON() ([]byte, error) {
	if p.ops == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p.ops)
}

// UnmarshalJSON decodes a list of {operationName, data} records
func (p *Plan) UnmarshalJSON(data []byte) error {
	var ops []Operation
	if err := json.Unmarshal(data, &ops); err != nil {
		return err
	}
	p.ops = ops
	return nil
}

// Validate checks a plan loaded from outside the planner: every operation
// names a subject, and no entity is created twice.
func (p *Plan) Validate() error {
	created := make(map[Ref]int)
	var errs []error
	for i, op := range p.ops {
		if op.Data == nil {
			errs = append(errs, fmt.Errorf("operation %d (%s): missing data", i, op.Name))
			continue
		}
		if op.Data.OperationName() != op.Name {
			errs = append(errs, fmt.Errorf("operation %d: name %s does not match payload %s", i, op.Name, op.Data.OperationName()))
		}
		if subject(op.Data) == "" {
			errs = append(errs, fmt.Errorf("operation %d (%s): missing apiId", i, op.Name))
		}
		for _, ref := range op.Data.Refs() {
			if ref.APIID == "" {
				errs = append(errs, fmt.Errorf("operation %d (%s): empty %s reference", i, op.Name, ref.Kind))
			}
		}
		if ref, ok := Creates(op.Data); ok {
			if prev, dup := created[ref]; dup {
				errs = append(errs, fmt.Errorf("operation %d: %s %q already created by operation %d", i, ref.Kind, ref.APIID, prev))
				continue
			}
			created[ref] = i
		}
	}
	return errors.Join(errs...)
}

func subject(p Payload) string {
	switch in := p.(type) {
	case ModelInput:
		return in.APIID
	case ComponentInput:
		return in.APIID
	case EnumerationInput:
		return in.APIID
	case SimpleFieldInput:
		return in.APIID
	case EnumerableFieldInput:
		return in.APIID
	case ComponentFieldInput:
		return in.APIID
	case ComponentUnionFieldInput:
		return in.APIID
	case RelationalFieldInput:
		return in.APIID
	case UnionFieldInput:
		return in.APIID
	}
	return ""
}
