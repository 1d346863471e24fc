package contract

import (
	"reflect"
	"sort"
)

// Reserved metadata keys.
const (
	// TypeIdentityKey stores the type identity of an export.
	TypeIdentityKey = "ExportTypeIdentity"

	// CreationPolicyKey stores the creation policy of a part or export.
	CreationPolicyKey = "CreationPolicy"
)

// Metadata is an untyped metadata bag attached to exports and registrations.
type Metadata map[string]any

// Clone returns a shallow copy; a nil bag clones to an empty one.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Keys returns the keys in lexical order.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TypeIdentity returns the string stored under TypeIdentityKey, or "".
func (m Metadata) TypeIdentity() string {
	s, _ := m[TypeIdentityKey].(string)
	return s
}

// Requirement is a metadata key an import requires, with the type its value
// must have. A nil Type only requires presence.
type Requirement struct {
	Key  string
	Type reflect.Type
}

// RequireKey builds a Requirement for a value of type T.
func RequireKey[T any](key string) Requirement {
	return Requirement{Key: key, Type: reflect.TypeFor[T]()}
}

// Satisfies reports whether m covers every requirement: each key is present,
// non-nil, and holds a value that Fits the required type. This is the rule
// Project applies, so an export that passes the filter also projects.
func (m Metadata) Satisfies(reqs []Requirement) bool {
	for _, r := range reqs {
		v, ok := m[r.Key]
		if !ok || v == nil {
			return false
		}
		if r.Type != nil && !Fits(v, r.Type) {
			return false
		}
	}
	return true
}
