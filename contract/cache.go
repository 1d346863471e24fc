package contract

import (
	"reflect"
	"slices"
	"sort"

	"github.com/puzpuzpuz/xsync/v3"
)

// Identities is the process-wide reverse index filled by TypeIdentity and
// ContractName. It lives for the whole process; reads are safe from any
// goroutine and the only writer is the forward derivation.
var Identities = NewIdentityCache()

// Entry is a single identity in an IdentityCache snapshot.
type Entry struct {
	// Identity is the derived identity string.
	Identity string

	// Type is the first type that produced Identity.
	Type reflect.Type

	// Ambiguous is true when other types produced the same string.
	Ambiguous bool
}

// IdentityCache maps identity strings back to the types that produced them.
type IdentityCache struct {
	entries *xsync.MapOf[string, []reflect.Type]
}

// NewIdentityCache returns an empty cache.
func NewIdentityCache() *IdentityCache {
	return &IdentityCache{entries: xsync.NewMapOf[string, []reflect.Type]()}
}

// record appends t to the types seen for identity. The stored slice is never
// mutated in place, so readers always see a consistent snapshot.
func (c *IdentityCache) record(identity string, t reflect.Type) {
	if seen, ok := c.entries.Load(identity); ok && slices.Contains(seen, t) {
		return
	}
	c.entries.Compute(identity, func(old []reflect.Type, loaded bool) ([]reflect.Type, bool) {
		if !loaded {
			return []reflect.Type{t}, false
		}
		if slices.Contains(old, t) {
			return old, false
		}
		next := make([]reflect.Type, len(old), len(old)+1)
		copy(next, old)
		return append(next, t), false
	})
}

// Lookup returns the first type that produced identity.
//
// If several types produced the same string the first one recorded wins;
// use LookupStrict to detect that case.
func (c *IdentityCache) Lookup(identity string) (reflect.Type, bool) {
	types, ok := c.entries.Load(identity)
	if !ok || len(types) == 0 {
		return nil, false
	}
	return types[0], true
}

// LookupStrict is Lookup that fails with AmbiguousTypeIdentityError when
// more than one type produced identity. A miss returns (nil, nil).
func (c *IdentityCache) LookupStrict(identity string) (reflect.Type, error) {
	types, ok := c.entries.Load(identity)
	if !ok || len(types) == 0 {
		return nil, nil
	}
	if len(types) > 1 {
		names := make([]string, len(types))
		for i, t := range types {
			names[i] = t.String()
		}
		return nil, AmbiguousTypeIdentityError{Identity: identity, Types: names}
	}
	return types[0], nil
}

// Len returns the number of distinct identities.
func (c *IdentityCache) Len() int { return c.entries.Size() }

// Entries returns a snapshot sorted by identity.
func (c *IdentityCache) Entries() []Entry {
	out := make([]Entry, 0, c.entries.Size())
	c.entries.Range(func(identity string, types []reflect.Type) bool {
		out = append(out, Entry{Identity: identity, Type: types[0], Ambiguous: len(types) > 1})
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Identity < out[j].Identity })
	return out
}
