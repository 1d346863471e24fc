package bridge

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sghaida/compbridge/contract"
	"github.com/sghaida/compbridge/di"
)

// Bridge registers composition parts and exports in a container.
type Bridge struct {
	container *di.Container
	log       *logrus.Logger
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger. The container's logger is used by default.
func WithLogger(l *logrus.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.log = l
		}
	}
}

// New returns a Bridge over c.
func New(c *di.Container, opts ...Option) (*Bridge, error) {
	if c == nil {
		return nil, contract.ArgumentError{Name: "container", Reason: "must not be nil"}
	}
	b := &Bridge{container: c, log: c.Logger()}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Container returns the container the bridge registers into.
func (b *Bridge) Container() *di.Container { return b.container }

// RegisterWrapperSources adds LazySource and MetaSource to the container.
// Calling it again is a no-op.
func (b *Bridge) RegisterWrapperSources() {
	var haveLazy, haveMeta bool
	for _, src := range b.container.Sources() {
		switch src.(type) {
		case LazySource, *LazySource:
			haveLazy = true
		case MetaSource, *MetaSource:
			haveMeta = true
		}
	}
	if !haveLazy {
		b.container.AddSource(LazySource{})
	}
	if !haveMeta {
		b.container.AddSource(MetaSource{})
	}
	b.log.WithFields(logrus.Fields{"lazy": !haveLazy, "meta": !haveMeta}).Debug("bridge: wrapper sources registered")
}

func (b *Bridge) register(reg *di.Registration) error {
	if _, err := b.container.Register(reg); err != nil {
		return fmt.Errorf("bridge: register %s: %w", reg.ID, err)
	}
	return nil
}
