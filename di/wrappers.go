package di

import "reflect"

// WrapperKind tells the two wrapper shapes apart.
type WrapperKind int

const (
	// LazyWrapper defers creation of the wrapped value until first access.
	LazyWrapper WrapperKind = iota + 1

	// MetaWrapper creates the wrapped value together with the wrapper.
	MetaWrapper
)

// Wrapper is implemented by the pointer types *Lazy[V, M] and *Meta[V, M].
// The methods work on nil receivers so a wrapper shape can be inspected from
// its reflect.Type alone (see WrapperFor).
type Wrapper interface {
	// WrapperKind reports the shape.
	WrapperKind() WrapperKind

	// WrappedType is V.
	WrappedType() reflect.Type

	// MetadataType is M.
	MetadataType() reflect.Type

	// Wrap builds a new wrapper of the same type around value and metadata.
	// metadata must be an M (or nil for the zero M).
	Wrap(value func() (any, error), metadata any) (any, error)
}

var wrapperIface = reflect.TypeFor[Wrapper]()

// WrapperFor returns the Wrapper behind t when t is a *Lazy[V, M] or a
// *Meta[V, M].
func WrapperFor(t reflect.Type) (Wrapper, bool) {
	if t == nil || t.Kind() != reflect.Pointer || !t.Implements(wrapperIface) {
		return nil, false
	}
	w, ok := reflect.Zero(t).Interface().(Wrapper)
	return w, ok
}

// Lazy carries metadata and a value that is created on first access.
//
// The value is memoized per Lazy instance, errors included. Lazy does not
// lock: it is meant to be read from one resolution path, and two goroutines
// racing on the first Value call may both run the factory.
type Lazy[V, M any] struct {
	factory  func() (any, error)
	metadata M
	created  bool
	value    V
	err      error
}

// NewLazy returns a Lazy over factory.
func NewLazy[V, M any](factory func() (V, error), metadata M) *Lazy[V, M] {
	return &Lazy[V, M]{
		factory:  func() (any, error) { return factory() },
		metadata: metadata,
	}
}

// Metadata returns the metadata view.
func (l *Lazy[V, M]) Metadata() M { return l.metadata }

// IsValueCreated reports whether Value has run.
func (l *Lazy[V, M]) IsValueCreated() bool { return l.created }

// Value creates the value on first call and returns the same result on every
// later call.
func (l *Lazy[V, M]) Value() (V, error) {
	if !l.created {
		l.value, l.err = castValue[V](l.factory())
		l.created = true
		l.factory = nil
	}
	return l.value, l.err
}

// WrapperKind implements Wrapper.
func (*Lazy[V, M]) WrapperKind() WrapperKind { return LazyWrapper }

// WrappedType implements Wrapper.
func (*Lazy[V, M]) WrappedType() reflect.Type { return reflect.TypeFor[V]() }

// MetadataType implements Wrapper.
func (*Lazy[V, M]) MetadataType() reflect.Type { return reflect.TypeFor[M]() }

// Wrap implements Wrapper. value is captured, not called.
func (*Lazy[V, M]) Wrap(value func() (any, error), metadata any) (any, error) {
	m, err := castValue[M](metadata, nil)
	if err != nil {
		return nil, err
	}
	return &Lazy[V, M]{factory: value, metadata: m}, nil
}

// Meta carries a value and its metadata view.
type Meta[V, M any] struct {
	Value    V
	Metadata M
}

// WrapperKind implements Wrapper.
func (*Meta[V, M]) WrapperKind() WrapperKind { return MetaWrapper }

// WrappedType implements Wrapper.
func (*Meta[V, M]) WrappedType() reflect.Type { return reflect.TypeFor[V]() }

// MetadataType implements Wrapper.
func (*Meta[V, M]) MetadataType() reflect.Type { return reflect.TypeFor[M]() }

// Wrap implements Wrapper. value is called immediately.
func (*Meta[V, M]) Wrap(value func() (any, error), metadata any) (any, error) {
	m, err := castValue[M](metadata, nil)
	if err != nil {
		return nil, err
	}
	v, err := castValue[V](value())
	if err != nil {
		return nil, err
	}
	return &Meta[V, M]{Value: v, Metadata: m}, nil
}

func castValue[T any](v any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, WrongTypeError{Want: reflect.TypeFor[T]().String(), Got: reflect.TypeOf(v).String()}
	}
	return t, nil
}
