package bridge

import (
	"reflect"

	"github.com/sghaida/compbridge/compose"
	"github.com/sghaida/compbridge/contract"
	"github.com/sghaida/compbridge/di"
)

// ResolveExports returns every export of T's contract, in registration
// order. It returns an empty slice when there are none.
func ResolveExports[T any](ctx di.Context) ([]*compose.Export, error) {
	return ResolveExportsNamed[T](ctx, contract.ContractNameFor[T]())
}

// ResolveExportsNamed returns every export registered under name with the
// type identity of T.
func ResolveExportsNamed[T any](ctx di.Context, name string) ([]*compose.Export, error) {
	if ctx == nil {
		return nil, contract.ArgumentError{Name: "ctx", Reason: "must not be nil"}
	}
	identity, err := contract.NewIdentity(name, contract.TypeIdentityFor[T]())
	if err != nil {
		return nil, err
	}
	regs := ctx.RegistrationsFor(identity)
	out := make([]*compose.Export, 0, len(regs))
	for _, reg := range regs {
		exp, err := resolveExport(ctx, identity, reg)
		if err != nil {
			return nil, err
		}
		out = append(out, exp)
	}
	return out, nil
}

// ResolveExportValues is ResolveExports followed by reading each value as T.
func ResolveExportValues[T any](ctx di.Context) ([]T, error) {
	exports, err := ResolveExports[T](ctx)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(exports))
	for _, exp := range exports {
		v, err := exp.Value()
		if err != nil {
			return nil, err
		}
		t, ok := v.(T)
		if !ok && v != nil {
			return nil, di.WrongTypeError{Want: reflect.TypeFor[T]().String(), Got: reflect.TypeOf(v).String()}
		}
		out = append(out, t)
	}
	return out, nil
}
