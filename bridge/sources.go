package bridge

import (
	"reflect"

	"github.com/sghaida/compbridge/contract"
	"github.com/sghaida/compbridge/di"
)

// LazySource synthesizes *di.Lazy[V, M] (and []*di.Lazy[V, M]) components
// from the registrations of V. The value is resolved on first Value call;
// a failing factory therefore only fails there.
type LazySource struct{}

// RegistrationsFor implements di.Source.
func (LazySource) RegistrationsFor(svc di.Service, accessor func(di.Service) []*di.Registration) []*di.Registration {
	return synthesize(di.LazyWrapper, svc, accessor)
}

// CanSynthesize reports whether t is a shape LazySource serves.
func (LazySource) CanSynthesize(t reflect.Type) bool { return canSynthesize(di.LazyWrapper, t) }

// MetaSource synthesizes *di.Meta[V, M] (and []*di.Meta[V, M]) components
// from the registrations of V. The value is resolved with the wrapper.
type MetaSource struct{}

// RegistrationsFor implements di.Source.
func (MetaSource) RegistrationsFor(svc di.Service, accessor func(di.Service) []*di.Registration) []*di.Registration {
	return synthesize(di.MetaWrapper, svc, accessor)
}

// CanSynthesize reports whether t is a shape MetaSource serves.
func (MetaSource) CanSynthesize(t reflect.Type) bool { return canSynthesize(di.MetaWrapper, t) }

// synthesize builds one registration per registration of the wrapped value
// service. A singular wrapper takes only the first match; a slice of
// wrappers takes all of them, in order.
func synthesize(kind di.WrapperKind, svc di.Service, accessor func(di.Service) []*di.Registration) []*di.Registration {
	swt, ok := svc.(di.ServiceWithType)
	if !ok {
		return nil
	}
	w, many, ok := wrapperShape(swt.ServiceType())
	if !ok || w.WrapperKind() != kind {
		return nil
	}

	valueSvc := swt.ChangeType(w.WrappedType())
	matches := accessor(valueSvc)
	if !many && len(matches) > 1 {
		matches = matches[:1]
	}

	out := make([]*di.Registration, 0, len(matches))
	for _, target := range matches {
		elemSvc := svc
		if many {
			elemSvc = swt.ChangeType(swt.ServiceType().Elem())
		}
		reg := di.NewRegistration(func(ctx di.Context) (any, error) {
			resolver := resolverFor(ctx, w)
			return wrap(w, target.Metadata, func() (any, error) {
				return resolver.ResolveRegistration(valueSvc, target)
			})
		}).
			As(elemSvc).
			WithMetadataMap(target.Metadata).
			Targeting(target)
		out = append(out, reg)
	}
	return out
}

// wrap projects md onto the wrapper's metadata view and builds the wrapper.
func wrap(w di.Wrapper, md contract.Metadata, value func() (any, error)) (any, error) {
	view, err := contract.Project(md, w.MetadataType())
	if err != nil {
		return nil, err
	}
	return w.Wrap(value, view)
}

// resolverFor picks the context a wrapper's value is resolved in. Meta
// resolves immediately, inside the current operation; Lazy may be read long
// after it has finished.
func resolverFor(ctx di.Context, w di.Wrapper) di.Context {
	if w.WrapperKind() == di.MetaWrapper {
		return ctx
	}
	return ctx.Lifetime()
}

// wrapperShape reports whether t is a wrapper type or a slice of them.
func wrapperShape(t reflect.Type) (w di.Wrapper, many, ok bool) {
	if t == nil {
		return nil, false, false
	}
	if w, ok := di.WrapperFor(t); ok {
		return w, false, true
	}
	if t.Kind() == reflect.Slice {
		if w, ok := di.WrapperFor(t.Elem()); ok {
			return w, true, true
		}
	}
	return nil, false, false
}

func canSynthesize(kind di.WrapperKind, t reflect.Type) bool {
	w, _, ok := wrapperShape(t)
	return ok && w.WrapperKind() == kind
}
