package di

// Provide registers ctor as the PerRequest component for T. Chain
// SingleInstance on the returned registration before the first resolve to
// share it.
func Provide[T any](c *Container, ctor func(Context) (T, error)) (*Registration, error) {
	if ctor == nil {
		return nil, nilArgument("ctor")
	}
	return c.Register(NewRegistration(func(ctx Context) (any, error) { return ctor(ctx) }).As(TypeOf[T]()))
}

// Resolve returns the default T.
//
// It returns:
//   - ComponentNotRegisteredError if nothing satisfies T
//   - WrongTypeError if the registration produced something else
func Resolve[T any](ctx Context) (T, error) {
	return resolveAs[T](ctx, TypeOf[T]())
}

// ResolveKeyed returns the T registered under key.
func ResolveKeyed[T any](ctx Context, key string) (T, error) {
	return resolveAs[T](ctx, Keyed[T](key))
}

// ResolveAll returns every T, in registration order. It returns an empty
// slice when nothing satisfies T.
func ResolveAll[T any](ctx Context) ([]T, error) {
	return resolveAs[[]T](ctx, TypeOf[[]T]())
}

// MustResolve returns the default T or panics.
// Useful in examples/tests where a missing component should fail fast.
func MustResolve[T any](ctx Context) T {
	v, err := Resolve[T](ctx)
	if err != nil {
		panic(err)
	}
	return v
}

func resolveAs[T any](ctx Context, svc Service) (T, error) {
	var zero T
	if ctx == nil {
		return zero, nilArgument("ctx")
	}
	return castValue[T](ctx.Resolve(svc))
}
