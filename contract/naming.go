package contract

import (
	"reflect"
	"strconv"
	"strings"
)

var genericArgs = strings.NewReplacer("[", "(", "]", ")")

// TypeIdentity returns the structural identity string for t and records the
// pair in Identities.
//
// Named types are qualified with their package path, generic arguments use
// parentheses ("pkg.Box(pkg.Item)"), and composite types are spelled from
// their element identities ("*pkg.T", "[]pkg.T", "map[string]pkg.T"). The
// empty interface maps to ObjectTypeIdentity and a nil type to the same.
func TypeIdentity(t reflect.Type) string {
	if t == nil {
		return ObjectTypeIdentity
	}
	id := identityOf(t)
	Identities.record(id, t)
	return id
}

// ContractName returns the contract name the composition model uses for t.
// It matches TypeIdentity so a typed export and a typed import agree on both
// halves of their Identity.
func ContractName(t reflect.Type) string {
	return TypeIdentity(t)
}

// TypeIdentityFor is TypeIdentity for a type parameter.
func TypeIdentityFor[T any]() string { return TypeIdentity(reflect.TypeFor[T]()) }

// ContractNameFor is ContractName for a type parameter.
func ContractNameFor[T any]() string { return ContractName(reflect.TypeFor[T]()) }

func identityOf(t reflect.Type) string {
	if t.Name() != "" {
		name := genericArgs.Replace(t.Name())
		if t.PkgPath() == "" {
			return name
		}
		return t.PkgPath() + "." + name
	}

	switch t.Kind() {
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return ObjectTypeIdentity
		}
		return t.String()
	case reflect.Pointer:
		return "*" + identityOf(t.Elem())
	case reflect.Slice:
		return "[]" + identityOf(t.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + identityOf(t.Elem())
	case reflect.Map:
		return "map[" + identityOf(t.Key()) + "]" + identityOf(t.Elem())
	default:
		return t.String()
	}
}
