package plan

import "fmt"

// Mutator accepts one creation operation per call. The management
// migration client implements it; it queues rather than executes.
type Mutator interface {
	CreateModel(ModelInput)
	CreateComponent(ComponentInput)
	CreateEnumeration(EnumerationInput)
	CreateSimpleField(SimpleFieldInput)
	CreateEnumerableField(EnumerableFieldInput)
	CreateComponentField(ComponentFieldInput)
	CreateComponentUnionField(ComponentUnionFieldInput)
	CreateRelationalField(RelationalFieldInput)
	CreateUnionField(UnionFieldInput)
}

// Apply hands every operation of p to m, in order
func Apply(m Mutator, p *Plan) error {
	for i, op := range p.ops {
		switch in := op.Data.(type) {
		case ModelInput:
			m.CreateModel(in)
		case ComponentInput:
			m.CreateComponent(in)
		case EnumerationInput:
			m.CreateEnumeration(in)
		case SimpleFieldInput:
			m.CreateSimpleField(in)
		case EnumerableFieldInput:
			m.CreateEnumerableField(in)
		case ComponentFieldInput:
			m.CreateComponentField(in)
		case ComponentUnionFieldInput:
			m.CreateComponentUnionField(in)
		case RelationalFieldInput:
			m.CreateRelationalField(in)
		case UnionFieldInput:
			m.CreateUnionField(in)
		default:
			return fmt.Errorf("operation %d: %w: %T", i, ErrUnknownOperation, op.Data)
		}
	}
	return nil
}
