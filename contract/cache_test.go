package contract

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestIdentities_RecordedByDerivation verifies the forward derivation feeds
// the process-wide reverse index.
func TestIdentities_RecordedByDerivation(t *testing.T) {
	t.Parallel()

	id := TypeIdentityFor[*box[string]]()
	got, ok := Identities.Lookup(id)
	require.True(t, ok)
	assert.Equal(t, reflect.TypeFor[*box[string]](), got)
}

// TestIdentityCache_FirstWins verifies colliding identities resolve to the
// first type recorded and are reported by strict lookups.
func TestIdentityCache_FirstWins(t *testing.T) {
	t.Parallel()

	first := func() reflect.Type {
		type local struct{ A int }
		return reflect.TypeFor[local]()
	}()
	second := func() reflect.Type {
		type local struct{ B string }
		return reflect.TypeFor[local]()
	}()
	require.NotEqual(t, first, second)
	require.Equal(t, identityOf(first), identityOf(second))

	c := NewIdentityCache()
	c.record(identityOf(first), first)
	c.record(identityOf(second), second)
	c.record(identityOf(first), first)

	got, ok := c.Lookup(identityOf(first))
	require.True(t, ok)
	assert.Equal(t, first, got)

	_, err := c.LookupStrict(identityOf(first))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAmbiguousTypeIdentity))
	var ae AmbiguousTypeIdentityError
	require.True(t, errors.As(err, &ae))
	assert.Len(t, ae.Types, 2)

	entries := c.Entries()
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Ambiguous)
	assert.Equal(t, first, entries[0].Type)
}

// TestIdentityCache_Miss verifies lookups of unknown identities.
func TestIdentityCache_Miss(t *testing.T) {
	t.Parallel()

	c := NewIdentityCache()
	_, ok := c.Lookup("nope")
	assert.False(t, ok)

	got, err := c.LookupStrict("nope")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 0, c.Len())
}

// TestIdentityCache_EntriesSorted verifies snapshots are ordered by identity.
func TestIdentityCache_EntriesSorted(t *testing.T) {
	t.Parallel()

	c := NewIdentityCache()
	c.record("b", reflect.TypeFor[int]())
	c.record("a", reflect.TypeFor[string]())
	c.record("c", reflect.TypeFor[bool]())

	entries := c.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{entries[0].Identity, entries[1].Identity, entries[2].Identity})
	assert.Equal(t, 3, c.Len())
}

// TestIdentityCache_Concurrent verifies concurrent recording and lookups.
func TestIdentityCache_Concurrent(t *testing.T) {
	t.Parallel()

	c := NewIdentityCache()
	types := []reflect.Type{reflect.TypeFor[int](), reflect.TypeFor[string](), reflect.TypeFor[sample]()}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			typ := types[i%len(types)]
			c.record(identityOf(typ), typ)
			_, _ = c.Lookup(identityOf(typ))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, len(types), c.Len())
	for _, e := range c.Entries() {
		assert.False(t, e.Ambiguous, e.Identity)
	}
}
