package di

import (
	"errors"
	"reflect"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sghaida/compbridge/contract"
)

type clock struct{ id int }

type speaker interface{ Speak() string }

type english struct{}

func (english) Speak() string { return "hello" }

type french struct{}

func (french) Speak() string { return "bonjour" }

type nodeA struct{ b *nodeB }

type nodeB struct{ a *nodeA }

//
// -----------------------------------------------------------------------------
// Register
// -----------------------------------------------------------------------------

// TestRegister_Validation verifies invalid registrations are rejected.
func TestRegister_Validation(t *testing.T) {
	t.Parallel()

	activator := func(Context) (any, error) { return 1, nil }
	cases := []struct {
		name string
		reg  *Registration
		arg  string
	}{
		{"nil registration", nil, "registration"},
		{"nil activator", NewRegistration(nil).As(TypeOf[int]()), "registration.Activator"},
		{"no services", NewRegistration(activator), "registration.Services"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := New()
			_, err := c.Register(tc.reg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, contract.ErrInvalidArgument))
			var ae contract.ArgumentError
			require.True(t, errors.As(err, &ae))
			assert.Equal(t, tc.arg, ae.Name)
			assert.Equal(t, 0, c.Len())
		})
	}
}

// TestProvide_NilCtor verifies Provide rejects a nil constructor.
func TestProvide_NilCtor(t *testing.T) {
	t.Parallel()

	_, err := Provide[*clock](New(), nil)
	assert.True(t, errors.Is(err, contract.ErrInvalidArgument))
}

//
// -----------------------------------------------------------------------------
// Resolve
// -----------------------------------------------------------------------------

// TestResolve_NotRegistered verifies the error for unknown services.
func TestResolve_NotRegistered(t *testing.T) {
	t.Parallel()

	_, err := Resolve[*clock](New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrComponentNotRegistered))
	var ne ComponentNotRegisteredError
	require.True(t, errors.As(err, &ne))
	assert.Equal(t, TypeOf[*clock](), ne.Service)
}

// TestResolve_Sharing verifies PerRequest and Shared instances.
func TestResolve_Sharing(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		sharing Sharing
		same    bool
	}{
		{"per request", PerRequest, false},
		{"shared", Shared, true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := New()
			var n int32
			reg, err := Provide(c, func(Context) (*clock, error) {
				return &clock{id: int(atomic.AddInt32(&n, 1))}, nil
			})
			require.NoError(t, err)
			reg.WithSharing(tc.sharing)

			a := MustResolve[*clock](c)
			b := MustResolve[*clock](c)
			if tc.same {
				assert.Same(t, a, b)
				assert.EqualValues(t, 1, atomic.LoadInt32(&n))
			} else {
				assert.NotSame(t, a, b)
				assert.EqualValues(t, 2, atomic.LoadInt32(&n))
			}
		})
	}
}

// TestResolve_LastWinsAndCollection verifies singular and collection
// resolution over several registrations.
func TestResolve_LastWinsAndCollection(t *testing.T) {
	t.Parallel()

	c := New()
	_, err := c.RegisterInstance(english{}, TypeOf[speaker]())
	require.NoError(t, err)
	_, err = c.RegisterInstance(french{}, TypeOf[speaker]())
	require.NoError(t, err)

	s, err := Resolve[speaker](c)
	require.NoError(t, err)
	assert.Equal(t, "bonjour", s.Speak())

	all, err := ResolveAll[speaker](c)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "hello", all[0].Speak())
	assert.Equal(t, "bonjour", all[1].Speak())

	none, err := ResolveAll[*clock](c)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

// TestResolve_Keyed verifies keyed services are distinct from typed ones.
func TestResolve_Keyed(t *testing.T) {
	t.Parallel()

	c := New()
	_, err := c.RegisterInstance(french{}, Keyed[speaker]("fr"))
	require.NoError(t, err)

	s, err := ResolveKeyed[speaker](c, "fr")
	require.NoError(t, err)
	assert.Equal(t, "bonjour", s.Speak())

	_, err = Resolve[speaker](c)
	assert.True(t, errors.Is(err, ErrComponentNotRegistered))
	assert.Equal(t, `di.speaker keyed "fr"`, Keyed[speaker]("fr").Description())
}

// TestResolve_WrongType verifies the typed helpers check the result type.
func TestResolve_WrongType(t *testing.T) {
	t.Parallel()

	c := New()
	_, err := c.RegisterInstance("not a clock", TypeOf[*clock]())
	require.NoError(t, err)

	_, err = Resolve[*clock](c)
	var we WrongTypeError
	require.True(t, errors.As(err, &we))
	assert.Equal(t, "string", we.Got)
}

// TestResolve_NilContext verifies the typed helpers reject a nil context.
func TestResolve_NilContext(t *testing.T) {
	t.Parallel()

	_, err := Resolve[*clock](nil)
	assert.True(t, errors.Is(err, contract.ErrInvalidArgument))
	assert.Panics(t, func() { MustResolve[*clock](New()) })
}

//
// -----------------------------------------------------------------------------
// Activation order, cycles and failures
// -----------------------------------------------------------------------------

// TestResolve_CircularActivators verifies a cycle through activators fails.
func TestResolve_CircularActivators(t *testing.T) {
	t.Parallel()

	c := New()
	_, err := Provide(c, func(ctx Context) (*nodeA, error) {
		b, err := Resolve[*nodeB](ctx)
		return &nodeA{b: b}, err
	})
	require.NoError(t, err)
	_, err = Provide(c, func(ctx Context) (*nodeB, error) {
		a, err := Resolve[*nodeA](ctx)
		return &nodeB{a: a}, err
	})
	require.NoError(t, err)

	_, err = Resolve[*nodeA](c)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCircularDependency))
	var ce CircularDependencyError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, []string{"*di.nodeA", "*di.nodeB", "*di.nodeA"}, ce.Chain)
}

// TestResolve_OnActivatedClosesCycle verifies shared components can
// reference each other when one side wires the reference after activation.
func TestResolve_OnActivatedClosesCycle(t *testing.T) {
	t.Parallel()

	c := New()
	regA, err := Provide(c, func(Context) (*nodeA, error) { return &nodeA{}, nil })
	require.NoError(t, err)
	regA.SingleInstance().OnActivated(func(ctx Context, inst any) error {
		b, err := Resolve[*nodeB](ctx)
		inst.(*nodeA).b = b
		return err
	})
	regB, err := Provide(c, func(ctx Context) (*nodeB, error) {
		a, err := Resolve[*nodeA](ctx)
		return &nodeB{a: a}, err
	})
	require.NoError(t, err)
	regB.SingleInstance()

	a, err := Resolve[*nodeA](c)
	require.NoError(t, err)
	require.NotNil(t, a.b)
	assert.Same(t, a, a.b.a)
	assert.Same(t, a.b, MustResolve[*nodeB](c))
}

// TestResolve_HookOrder verifies OnActivating runs before OnActivated and
// that OnActivated waits for the outermost resolve.
func TestResolve_HookOrder(t *testing.T) {
	t.Parallel()

	c := New()
	var order []string
	_, err := c.Register(NewRegistration(func(Context) (any, error) {
		order = append(order, "inner activator")
		return &clock{}, nil
	}).As(TypeOf[*clock]()).
		OnActivating(func(Context, any) error { order = append(order, "inner activating"); return nil }).
		OnActivated(func(Context, any) error { order = append(order, "inner activated"); return nil }))
	require.NoError(t, err)
	_, err = c.Register(NewRegistration(func(ctx Context) (any, error) {
		_, err := ctx.Resolve(TypeOf[*clock]())
		order = append(order, "outer activator")
		return &nodeA{}, err
	}).As(TypeOf[*nodeA]()).
		OnActivated(func(Context, any) error { order = append(order, "outer activated"); return nil }))
	require.NoError(t, err)

	_, err = c.Resolve(TypeOf[*nodeA]())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"inner activator",
		"inner activating",
		"outer activator",
		"inner activated",
		"outer activated",
	}, order)
}

// TestResolve_FailureUnpublishes verifies a failed operation leaves no shared
// instance behind.
func TestResolve_FailureUnpublishes(t *testing.T) {
	t.Parallel()

	c := New()
	var created, hookCalls int
	reg, err := Provide(c, func(Context) (*clock, error) {
		created++
		return &clock{id: created}, nil
	})
	require.NoError(t, err)
	reg.SingleInstance().OnActivated(func(Context, any) error {
		hookCalls++
		if hookCalls == 1 {
			return errors.New("boom")
		}
		return nil
	})

	_, err = Resolve[*clock](c)
	require.EqualError(t, err, "boom")

	got, err := Resolve[*clock](c)
	require.NoError(t, err)
	assert.Equal(t, 2, got.id)
	assert.Same(t, got, MustResolve[*clock](c))
}

// TestResolve_Panics verifies activator and hook panics become errors.
func TestResolve_Panics(t *testing.T) {
	t.Parallel()

	c := New()
	_, err := c.Register(NewRegistration(func(Context) (any, error) { panic("kaboom") }).As(TypeOf[*clock]()))
	require.NoError(t, err)
	_, err = c.Register(NewRegistration(func(Context) (any, error) { return &nodeA{}, nil }).
		As(TypeOf[*nodeA]()).
		OnActivating(func(Context, any) error { panic("hook") }))
	require.NoError(t, err)

	_, err = c.Resolve(TypeOf[*clock]())
	assert.True(t, errors.Is(err, ErrActivatorPanic))
	assert.Contains(t, err.Error(), "kaboom")

	_, err = c.Resolve(TypeOf[*nodeA]())
	assert.True(t, errors.Is(err, ErrActivatorPanic))
}

//
// -----------------------------------------------------------------------------
// Sources
// -----------------------------------------------------------------------------

type countingSource struct {
	calls int
}

func (s *countingSource) RegistrationsFor(svc Service, _ func(Service) []*Registration) []*Registration {
	ks, ok := svc.(KeyedService)
	if !ok || ks.Type != reflect.TypeFor[string]() {
		return nil
	}
	s.calls++
	return []*Registration{NewRegistration(func(Context) (any, error) { return "synth:" + ks.Key, nil }).As(svc)}
}

// TestSources_SynthesizeAndCache verifies sources are consulted on a miss and
// their answers cached until the next registration.
func TestSources_SynthesizeAndCache(t *testing.T) {
	t.Parallel()

	c := New()
	src := &countingSource{}
	c.AddSource(src)
	c.AddSource(nil)
	require.Len(t, c.Sources(), 1)

	v, err := ResolveKeyed[string](c, "x")
	require.NoError(t, err)
	assert.Equal(t, "synth:x", v)
	_, _ = ResolveKeyed[string](c, "x")
	assert.Equal(t, 1, src.calls)
	assert.True(t, c.IsRegistered(Keyed[string]("x")))

	_, err = c.RegisterInstance(1, TypeOf[int]())
	require.NoError(t, err)
	_, _ = ResolveKeyed[string](c, "x")
	assert.Equal(t, 2, src.calls)

	_, err = c.RegisterInstance("direct", Keyed[string]("x"))
	require.NoError(t, err)
	v, err = ResolveKeyed[string](c, "x")
	require.NoError(t, err)
	assert.Equal(t, "direct", v)
	assert.Equal(t, 2, src.calls)
}

// registeringSource registers a component the first time it is consulted,
// standing in for a Register that lands while synthesis is in progress.
type registeringSource struct {
	c     *Container
	calls int
}

func (s *registeringSource) RegistrationsFor(svc Service, _ func(Service) []*Registration) []*Registration {
	ks, ok := svc.(KeyedService)
	if !ok || ks.Type != reflect.TypeFor[string]() {
		return nil
	}
	s.calls++
	if s.calls == 1 {
		_, _ = s.c.RegisterInstance(1, TypeOf[int]())
	}
	n := s.calls
	return []*Registration{NewRegistration(func(Context) (any, error) { return "gen" + strconv.Itoa(n), nil }).As(svc)}
}

// TestSources_RegisterDuringSynthesis verifies a list built while the
// container changed is not cached.
func TestSources_RegisterDuringSynthesis(t *testing.T) {
	t.Parallel()

	c := New()
	src := &registeringSource{c: c}
	c.AddSource(src)

	v, err := ResolveKeyed[string](c, "x")
	require.NoError(t, err)
	assert.Equal(t, "gen1", v)
	assert.Equal(t, 1, c.Len())

	v, err = ResolveKeyed[string](c, "x")
	require.NoError(t, err)
	assert.Equal(t, "gen2", v)

	_, _ = ResolveKeyed[string](c, "x")
	assert.Equal(t, 2, src.calls)
}

// TestRegistration_Origin verifies Target links are followed.
func TestRegistration_Origin(t *testing.T) {
	t.Parallel()

	root := NewRegistration(func(Context) (any, error) { return nil, nil })
	mid := NewRegistration(func(Context) (any, error) { return nil, nil }).Targeting(root)
	leaf := NewRegistration(func(Context) (any, error) { return nil, nil }).Targeting(mid)

	assert.Same(t, root, leaf.Origin())
	assert.Same(t, root, root.Origin())
	assert.Equal(t, "Shared", Shared.String())
	assert.Equal(t, "PerRequest", PerRequest.String())
}
