package di

import (
	"fmt"
	"io"
	"reflect"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sghaida/compbridge/contract"
)

// Context resolves services. Activators and hooks receive the context of the
// resolve operation they run in.
type Context interface {
	// Resolve returns the default instance of svc.
	Resolve(svc Service) (any, error)

	// ResolveRegistration activates reg (or returns its shared instance) as
	// if it had been requested through svc.
	ResolveRegistration(svc Service, reg *Registration) (any, error)

	// RegistrationsFor lists the registrations satisfying svc, consulting
	// sources when none were registered directly.
	RegistrationsFor(svc Service) []*Registration

	// IsRegistered reports whether svc can be resolved.
	IsRegistered(svc Service) bool

	// Lifetime returns a context that stays usable after the current resolve
	// operation has finished. Deferred values must capture this one.
	Lifetime() Context
}

// Source synthesizes registrations for services nobody registered.
//
// accessor returns the registrations of another service and may itself
// consult sources. A source that does not recognize svc returns nil.
type Source interface {
	RegistrationsFor(svc Service, accessor func(Service) []*Registration) []*Registration
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger used for debug output.
func WithLogger(l *logrus.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.log = l
		}
	}
}

// Container stores registrations and resolves services.
//
// Registration and resolution are safe for concurrent use. Two goroutines
// racing to create the same shared instance may both run its activator; the
// first published instance wins and the other is discarded.
type Container struct {
	mu          sync.RWMutex
	byService   map[Service][]*Registration
	count       int
	sources     []Source
	synthesized map[Service][]*Registration
	generation  uint64

	sharedMu sync.Mutex
	shared   map[uuid.UUID]any

	log *logrus.Logger
}

// New returns an empty container.
func New(opts ...Option) *Container {
	c := &Container{
		byService:   make(map[Service][]*Registration),
		synthesized: make(map[Service][]*Registration),
		shared:      make(map[uuid.UUID]any),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logrus.New()
		c.log.SetOutput(io.Discard)
	}
	return c
}

// Logger returns the container's logger.
func (c *Container) Logger() *logrus.Logger { return c.log }

// Register adds reg. It fails if reg is nil, has no activator or satisfies
// no service.
func (c *Container) Register(reg *Registration) (*Registration, error) {
	switch {
	case reg == nil:
		return nil, contract.ArgumentError{Name: "registration", Reason: "must not be nil"}
	case reg.Activator == nil:
		return nil, contract.ArgumentError{Name: "registration.Activator", Reason: "must not be nil"}
	case len(reg.Services) == 0:
		return nil, contract.ArgumentError{Name: "registration.Services", Reason: "must not be empty"}
	}
	if reg.ID == uuid.Nil {
		reg.ID = uuid.New()
	}

	c.mu.Lock()
	for _, svc := range reg.Services {
		c.byService[svc] = append(c.byService[svc], reg)
	}
	c.count++
	c.generation++
	clear(c.synthesized)
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{
		"registration": reg.ID.String(),
		"services":     len(reg.Services),
		"sharing":      reg.Sharing.String(),
	}).Debug("di: registered component")
	return reg, nil
}

// RegisterInstance registers an existing value as a shared component.
func (c *Container) RegisterInstance(value any, services ...Service) (*Registration, error) {
	reg := NewRegistration(func(Context) (any, error) { return value, nil }).
		As(services...).
		SingleInstance()
	return c.Register(reg)
}

// AddSource appends a source to the fallback list.
func (c *Container) AddSource(src Source) {
	if src == nil {
		return
	}
	c.mu.Lock()
	c.sources = append(c.sources, src)
	c.generation++
	clear(c.synthesized)
	c.mu.Unlock()
}

// Sources returns the fallback list in consultation order.
func (c *Container) Sources() []Source {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.sources)
}

// Len returns the number of registrations added with Register.
func (c *Container) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.count
}

// RegistrationsFor implements Context.
//
// Synthesized registrations are cached per service until the next Register
// or AddSource. A list built while either ran is returned but not cached.
func (c *Container) RegistrationsFor(svc Service) []*Registration {
	c.mu.RLock()
	regs := c.byService[svc]
	cached, hit := c.synthesized[svc]
	sources := c.sources
	gen := c.generation
	c.mu.RUnlock()

	if len(regs) > 0 {
		return slices.Clone(regs)
	}
	if hit {
		return slices.Clone(cached)
	}

	var out []*Registration
	for _, src := range sources {
		out = append(out, src.RegistrationsFor(svc, c.RegistrationsFor)...)
	}
	if len(sources) > 0 {
		c.log.WithFields(logrus.Fields{
			"service":     svc.Description(),
			"synthesized": len(out),
		}).Debug("di: consulted sources")
	}

	c.mu.Lock()
	if c.generation == gen {
		c.synthesized[svc] = out
	}
	c.mu.Unlock()
	return slices.Clone(out)
}

// IsRegistered implements Context.
func (c *Container) IsRegistered(svc Service) bool {
	if len(c.RegistrationsFor(svc)) > 0 {
		return true
	}
	_, ok := collectionElement(svc)
	return ok
}

// Resolve implements Context.
func (c *Container) Resolve(svc Service) (any, error) {
	return c.begin().Resolve(svc)
}

// ResolveRegistration implements Context.
func (c *Container) ResolveRegistration(svc Service, reg *Registration) (any, error) {
	return c.begin().ResolveRegistration(svc, reg)
}

// Lifetime implements Context.
func (c *Container) Lifetime() Context { return c }

func (c *Container) begin() *operation {
	return &operation{c: c, activating: make(map[*Registration]bool)}
}

func (c *Container) sharedInstance(id uuid.UUID) (any, bool) {
	c.sharedMu.Lock()
	defer c.sharedMu.Unlock()
	v, ok := c.shared[id]
	return v, ok
}

// publish stores v unless another instance got there first. It returns the
// instance that is now visible and whether it is v.
func (c *Container) publish(id uuid.UUID, v any) (any, bool) {
	c.sharedMu.Lock()
	defer c.sharedMu.Unlock()
	if existing, ok := c.shared[id]; ok {
		return existing, false
	}
	c.shared[id] = v
	return v, true
}

func (c *Container) unpublish(ids []uuid.UUID) {
	c.sharedMu.Lock()
	defer c.sharedMu.Unlock()
	for _, id := range ids {
		delete(c.shared, id)
	}
}

// operation is one top-level resolve together with everything it triggers.
type operation struct {
	c          *Container
	depth      int
	draining   bool
	activating map[*Registration]bool
	chain      []string
	pending    []func() error
	published  []uuid.UUID
}

func (op *operation) Resolve(svc Service) (any, error) {
	return op.run(func() (any, error) { return op.resolveService(svc) })
}

func (op *operation) ResolveRegistration(svc Service, reg *Registration) (any, error) {
	if reg == nil {
		return nil, contract.ArgumentError{Name: "registration", Reason: "must not be nil"}
	}
	return op.run(func() (any, error) { return op.resolveRegistration(svc, reg) })
}

func (op *operation) RegistrationsFor(svc Service) []*Registration {
	return op.c.RegistrationsFor(svc)
}

func (op *operation) IsRegistered(svc Service) bool { return op.c.IsRegistered(svc) }

func (op *operation) Lifetime() Context { return op.c }

// run executes fn and, when it is the outermost call, drains the queued
// OnActivated hooks. A failed operation withdraws the shared instances it
// published so a later resolve starts from scratch.
func (op *operation) run(fn func() (any, error)) (any, error) {
	op.depth++
	v, err := fn()
	op.depth--

	if op.depth == 0 && !op.draining {
		if err == nil {
			err = op.drain()
		}
		if err != nil {
			op.c.unpublish(op.published)
			op.pending = nil
		}
		op.published = nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (op *operation) drain() error {
	op.draining = true
	defer func() { op.draining = false }()

	for len(op.pending) > 0 {
		next := op.pending[0]
		op.pending = op.pending[1:]
		if err := next(); err != nil {
			return err
		}
	}
	return nil
}

func (op *operation) resolveService(svc Service) (any, error) {
	if svc == nil {
		return nil, contract.ArgumentError{Name: "service", Reason: "must not be nil"}
	}

	regs := op.c.RegistrationsFor(svc)
	if elem, ok := collectionElement(svc); ok {
		if len(regs) == 0 {
			return op.resolveCollection(svc, elem, op.c.RegistrationsFor(elem))
		}
		return op.resolveCollection(svc, svc, regs)
	}
	if len(regs) == 0 {
		return nil, ComponentNotRegisteredError{Service: svc}
	}
	return op.resolveRegistration(svc, regs[len(regs)-1])
}

func (op *operation) resolveCollection(svc, elemSvc Service, regs []*Registration) (any, error) {
	sliceType := svc.(ServiceWithType).ServiceType()
	elemType := sliceType.Elem()

	out := reflect.MakeSlice(sliceType, 0, len(regs))
	for _, reg := range regs {
		v, err := op.resolveRegistration(elemSvc, reg)
		if err != nil {
			return nil, err
		}
		if v == nil {
			out = reflect.Append(out, reflect.Zero(elemType))
			continue
		}
		rv := reflect.ValueOf(v)
		if !rv.Type().AssignableTo(elemType) {
			return nil, WrongTypeError{Want: elemType.String(), Got: rv.Type().String()}
		}
		out = reflect.Append(out, rv)
	}
	return out.Interface(), nil
}

func (op *operation) resolveRegistration(svc Service, reg *Registration) (any, error) {
	if reg.Sharing == Shared {
		if v, ok := op.c.sharedInstance(reg.ID); ok {
			return v, nil
		}
	}
	if op.activating[reg] {
		chain := append(slices.Clone(op.chain), svc.Description())
		return nil, CircularDependencyError{Chain: chain}
	}

	op.activating[reg] = true
	op.chain = append(op.chain, svc.Description())
	defer func() {
		delete(op.activating, reg)
		op.chain = op.chain[:len(op.chain)-1]
	}()

	v, err := op.activate(reg)
	if err != nil {
		return nil, err
	}
	for _, h := range reg.activating {
		if err := op.call(h, v); err != nil {
			return nil, err
		}
	}

	if reg.Sharing == Shared {
		visible, mine := op.c.publish(reg.ID, v)
		if !mine {
			return visible, nil
		}
		op.published = append(op.published, reg.ID)
	}

	for _, h := range reg.activated {
		h, inst := h, v
		op.pending = append(op.pending, func() error { return op.call(h, inst) })
	}
	return v, nil
}

// activate runs the activator and converts panics into errors.
func (op *operation) activate(reg *Registration) (v any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			v = nil
			err = fmt.Errorf("%w: %v", ErrActivatorPanic, rec)
		}
	}()
	return reg.Activator(op)
}

func (op *operation) call(h Hook, instance any) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrActivatorPanic, rec)
		}
	}()
	return h(op, instance)
}
