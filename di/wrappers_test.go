package di

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clockMeta struct {
	Zone string `meta:"zone" default:"UTC"`
}

// TestLazy_MemoizesValue verifies the factory runs once.
func TestLazy_MemoizesValue(t *testing.T) {
	t.Parallel()

	calls := 0
	l := NewLazy(func() (*clock, error) {
		calls++
		return &clock{id: calls}, nil
	}, clockMeta{Zone: "CET"})

	assert.False(t, l.IsValueCreated())
	assert.Equal(t, "CET", l.Metadata().Zone)

	a, err := l.Value()
	require.NoError(t, err)
	b, err := l.Value()
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, calls)
	assert.True(t, l.IsValueCreated())
}

// TestLazy_FailingFactory verifies a failing factory only fails on Value and
// that the failure is memoized.
func TestLazy_FailingFactory(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	calls := 0
	w, ok := WrapperFor(reflect.TypeFor[*Lazy[*clock, clockMeta]]())
	require.True(t, ok)

	v, err := w.Wrap(func() (any, error) {
		calls++
		return nil, boom
	}, clockMeta{})
	require.NoError(t, err)
	assert.Equal(t, 0, calls)

	l := v.(*Lazy[*clock, clockMeta])
	_, err = l.Value()
	assert.ErrorIs(t, err, boom)
	_, err = l.Value()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

// TestMeta_WrapEvaluates verifies Meta evaluates the value immediately.
func TestMeta_WrapEvaluates(t *testing.T) {
	t.Parallel()

	w, ok := WrapperFor(reflect.TypeFor[*Meta[*clock, clockMeta]]())
	require.True(t, ok)
	assert.Equal(t, MetaWrapper, w.WrapperKind())
	assert.Equal(t, reflect.TypeFor[*clock](), w.WrappedType())
	assert.Equal(t, reflect.TypeFor[clockMeta](), w.MetadataType())

	v, err := w.Wrap(func() (any, error) { return &clock{id: 7}, nil }, clockMeta{Zone: "UTC"})
	require.NoError(t, err)
	m := v.(*Meta[*clock, clockMeta])
	assert.Equal(t, 7, m.Value.id)
	assert.Equal(t, "UTC", m.Metadata.Zone)

	_, err = w.Wrap(func() (any, error) { return nil, errors.New("nope") }, nil)
	assert.EqualError(t, err, "nope")
}

// TestWrap_WrongTypes verifies wrappers check the value and metadata types.
func TestWrap_WrongTypes(t *testing.T) {
	t.Parallel()

	w, _ := WrapperFor(reflect.TypeFor[*Meta[*clock, clockMeta]]())

	_, err := w.Wrap(func() (any, error) { return &clock{}, nil }, "not metadata")
	var we WrongTypeError
	require.True(t, errors.As(err, &we))
	assert.Equal(t, "string", we.Got)

	_, err = w.Wrap(func() (any, error) { return 5, nil }, nil)
	require.True(t, errors.As(err, &we))
	assert.Equal(t, "int", we.Got)
}

// TestWrapperFor verifies only the pointer wrapper types are recognized.
func TestWrapperFor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		typ  reflect.Type
		want bool
	}{
		{"nil", nil, false},
		{"lazy pointer", reflect.TypeFor[*Lazy[int, struct{}]](), true},
		{"meta pointer", reflect.TypeFor[*Meta[int, struct{}]](), true},
		{"meta value", reflect.TypeFor[Meta[int, struct{}]](), false},
		{"slice", reflect.TypeFor[[]*Lazy[int, struct{}]](), false},
		{"plain", reflect.TypeFor[*clock](), false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, ok := WrapperFor(tc.typ)
			assert.Equal(t, tc.want, ok)
		})
	}
}
