package catalog

import (
	"reflect"

	"github.com/sghaida/compbridge/contract"
)

// Factory creates instances of one struct type.
type Factory struct {
	typ    reflect.Type
	create func() (any, error)
}

// Type returns the pointer type the factory creates.
func (f Factory) Type() reflect.Type { return f.typ }

// Registry holds the factories and type aliases a descriptor refers to.
type Registry struct {
	factories map[string]Factory
	types     map[string]reflect.Type
}

// NewRegistry returns a registry that knows the builtin metadata type names.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		types:     make(map[string]reflect.Type),
	}
}

// Register adds a factory for *T under name. Registering a name again
// replaces the factory.
func Register[T any](r *Registry, name string, ctor func() (*T, error)) error {
	switch {
	case name == "":
		return contract.ArgumentError{Name: "name", Reason: "must not be empty"}
	case ctor == nil:
		return contract.ArgumentError{Name: "ctor", Reason: "must not be nil"}
	case reflect.TypeFor[T]().Kind() != reflect.Struct:
		return contract.ArgumentError{Name: "T", Reason: reflect.TypeFor[T]().String() + " is not a struct"}
	}
	r.factories[name] = Factory{
		typ: reflect.TypeFor[*T](),
		create: func() (any, error) {
			v, err := ctor()
			if err != nil || v == nil {
				return nil, err
			}
			return v, nil
		},
	}
	return nil
}

// RegisterType adds alias for T. Descriptors use aliases in "type" entries
// and as required metadata types.
func RegisterType[T any](r *Registry, alias string) error {
	if alias == "" {
		return contract.ArgumentError{Name: "alias", Reason: "must not be empty"}
	}
	r.types[alias] = reflect.TypeFor[T]()
	return nil
}

// Factory returns the factory registered under name.
func (r *Registry) Factory(name string) (Factory, bool) {
	if r == nil {
		return Factory{}, false
	}
	f, ok := r.factories[name]
	return f, ok
}

// Type returns the type registered under alias.
func (r *Registry) Type(alias string) (reflect.Type, bool) {
	if r == nil {
		return nil, false
	}
	t, ok := r.types[alias]
	return t, ok
}

var builtinTypes = map[string]reflect.Type{
	"string":  reflect.TypeFor[string](),
	"int":     reflect.TypeFor[int](),
	"bool":    reflect.TypeFor[bool](),
	"float64": reflect.TypeFor[float64](),
	"any":     nil,
	"":        nil,
}

// metadataType maps a required-metadata type name to a type. A nil type only
// requires presence.
func (r *Registry) metadataType(name string) (reflect.Type, bool) {
	if t, ok := builtinTypes[name]; ok {
		return t, true
	}
	return r.Type(name)
}
