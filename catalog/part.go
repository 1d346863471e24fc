package catalog

import (
	"reflect"
	"strconv"

	"github.com/sghaida/compbridge/compose"
	"github.com/sghaida/compbridge/contract"
	"github.com/sghaida/compbridge/di"
)

// ImportsSatisfied is implemented by part instances that want to know when
// every import has been assigned.
type ImportsSatisfied interface {
	OnImportsSatisfied() error
}

// Definition is a compose.PartDefinition built from a PartDescriptor.
type Definition struct {
	name     string
	factory  *Factory
	metadata contract.Metadata
	exports  []*compose.ExportDefinition
	members  map[*compose.ExportDefinition][]int
	imports  []compose.ImportDefinition
	fields   map[compose.ImportDefinition]fieldImport
}

type fieldImport struct {
	index       []int
	cardinality compose.Cardinality
	elem        reflect.Type
}

// Name returns the part name from the descriptor.
func (d *Definition) Name() string { return d.name }

// String implements fmt.Stringer.
func (d *Definition) String() string { return "part " + strconv.Quote(d.name) }

// Metadata implements compose.PartDefinition.
func (d *Definition) Metadata() contract.Metadata { return d.metadata }

// ExportDefinitions implements compose.PartDefinition.
func (d *Definition) ExportDefinitions() []*compose.ExportDefinition { return d.exports }

// ImportDefinitions implements compose.PartDefinition.
func (d *Definition) ImportDefinitions() []compose.ImportDefinition { return d.imports }

// CreatePart implements compose.PartDefinition.
func (d *Definition) CreatePart() (compose.Part, error) {
	if d.factory == nil {
		return nil, MissingFactoryError{Part: d.name}
	}
	v, err := d.factory.create()
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, contract.ArgumentError{Name: "factory", Reason: "part " + strconv.Quote(d.name) + " factory returned nil"}
	}
	return &Part{def: d, value: reflect.ValueOf(v)}, nil
}

// Part is a live instance of a Definition.
type Part struct {
	def   *Definition
	value reflect.Value
}

// Instance returns the underlying pointer.
func (p *Part) Instance() any { return p.value.Interface() }

// ImportDefinitions implements compose.Part.
func (p *Part) ImportDefinitions() []compose.ImportDefinition { return p.def.imports }

// SetImport implements compose.Part.
func (p *Part) SetImport(def compose.ImportDefinition, exports []*compose.Export) error {
	fi, ok := p.def.fields[def]
	if !ok {
		return contract.ArgumentError{Name: "import", Reason: def.String() + " is not declared by " + p.def.String()}
	}
	field, err := p.value.Elem().FieldByIndexErr(fi.index)
	if err != nil {
		return err
	}

	if fi.cardinality == compose.ZeroOrMore {
		out := reflect.MakeSlice(field.Type(), 0, len(exports))
		for _, exp := range exports {
			v, err := valueOf(exp, fi.elem)
			if err != nil {
				return err
			}
			out = reflect.Append(out, v)
		}
		field.Set(out)
		return nil
	}

	switch len(exports) {
	case 0:
		return nil
	case 1:
	default:
		return compose.CardinalityMismatchError{Import: def.String(), Count: len(exports)}
	}
	v, err := valueOf(exports[0], fi.elem)
	if err != nil {
		return err
	}
	field.Set(v)
	return nil
}

// GetExportedValue implements compose.Part.
func (p *Part) GetExportedValue(def *compose.ExportDefinition) (any, error) {
	member, ok := p.def.members[def]
	if !ok {
		return nil, contract.ArgumentError{Name: "export", Reason: def.String() + " is not declared by " + p.def.String()}
	}
	if member == nil {
		return p.value.Interface(), nil
	}
	field, err := p.value.Elem().FieldByIndexErr(member)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Activate implements compose.Part.
func (p *Part) Activate() error {
	if n, ok := p.value.Interface().(ImportsSatisfied); ok {
		return n.OnImportsSatisfied()
	}
	return nil
}

func valueOf(exp *compose.Export, t reflect.Type) (reflect.Value, error) {
	v, err := exp.Value()
	if err != nil {
		return reflect.Value{}, err
	}
	if v == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(t) {
		return reflect.Value{}, di.WrongTypeError{Want: t.String(), Got: rv.Type().String()}
	}
	return rv, nil
}
