package di

import (
	"github.com/google/uuid"

	"github.com/sghaida/compbridge/contract"
)

// Sharing decides how many instances a registration produces.
type Sharing int

const (
	// PerRequest activates a new instance on every resolve.
	PerRequest Sharing = iota

	// Shared activates one instance per container.
	Shared
)

// String returns "PerRequest" or "Shared".
func (s Sharing) String() string {
	if s == Shared {
		return "Shared"
	}
	return "PerRequest"
}

// Activator builds a component instance.
type Activator func(ctx Context) (any, error)

// Hook observes an activated instance.
type Hook func(ctx Context, instance any) error

// Registration describes one component.
//
// Registrations are configured with the chaining methods below and then
// handed to Container.Register; they must not be changed afterwards.
type Registration struct {
	ID        uuid.UUID
	Services  []Service
	Activator Activator
	Sharing   Sharing
	Metadata  contract.Metadata

	// Target is the registration this one was synthesized from, if any.
	Target *Registration

	activating []Hook
	activated  []Hook
}

// NewRegistration returns a PerRequest registration for activator.
func NewRegistration(activator Activator) *Registration {
	return &Registration{
		ID:        uuid.New(),
		Activator: activator,
		Metadata:  contract.Metadata{},
	}
}

// As adds services the registration satisfies.
func (r *Registration) As(services ...Service) *Registration {
	r.Services = append(r.Services, services...)
	return r
}

// SingleInstance makes the registration Shared.
func (r *Registration) SingleInstance() *Registration {
	r.Sharing = Shared
	return r
}

// WithSharing sets the sharing policy.
func (r *Registration) WithSharing(s Sharing) *Registration {
	r.Sharing = s
	return r
}

// WithMetadata stores one metadata entry, replacing any previous value.
func (r *Registration) WithMetadata(key string, value any) *Registration {
	if r.Metadata == nil {
		r.Metadata = contract.Metadata{}
	}
	r.Metadata[key] = value
	return r
}

// WithMetadataMap stores every entry of md.
func (r *Registration) WithMetadataMap(md contract.Metadata) *Registration {
	for k, v := range md {
		r.WithMetadata(k, v)
	}
	return r
}

// Targeting records the registration this one adapts.
func (r *Registration) Targeting(target *Registration) *Registration {
	r.Target = target
	return r
}

// OnActivating adds a hook that runs right after the activator, before a
// shared instance becomes visible to other resolves.
func (r *Registration) OnActivating(h Hook) *Registration {
	r.activating = append(r.activating, h)
	return r
}

// OnActivated adds a hook that runs once the outermost resolve operation
// that created the instance has finished.
func (r *Registration) OnActivated(h Hook) *Registration {
	r.activated = append(r.activated, h)
	return r
}

// Origin follows Target links back to the registration that was not
// synthesized from another one.
func (r *Registration) Origin() *Registration {
	for r.Target != nil {
		r = r.Target
	}
	return r
}
