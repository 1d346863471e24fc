package di

import (
	"errors"
	"strings"

	"github.com/sghaida/compbridge/contract"
)

var (
	// ErrComponentNotRegistered classifies lookups that found no registration.
	ErrComponentNotRegistered = errors.New("di: component not registered")

	// ErrCircularDependency classifies a registration re-entered while it is
	// still activating.
	ErrCircularDependency = errors.New("di: circular dependency")

	// ErrActivatorPanic is returned when an activator or hook panics.
	ErrActivatorPanic = errors.New("di: panic during activation")
)

// ComponentNotRegisteredError is returned when a service has no registration
// and no source could supply one.
type ComponentNotRegisteredError struct{ Service Service }

// Error implements the error interface.
func (e ComponentNotRegisteredError) Error() string {
	// Example: di: component not registered: contract "greeter"
	return "di: component not registered: " + e.Service.Description()
}

// Is reports whether target is ErrComponentNotRegistered.
func (e ComponentNotRegisteredError) Is(target error) bool {
	return target == ErrComponentNotRegistered
}

// CircularDependencyError lists the services being activated, outermost
// first, when a registration was requested again.
type CircularDependencyError struct{ Chain []string }

// Error implements the error interface.
func (e CircularDependencyError) Error() string {
	return "di: circular dependency: " + strings.Join(e.Chain, " -> ")
}

// Is reports whether target is ErrCircularDependency.
func (e CircularDependencyError) Is(target error) bool { return target == ErrCircularDependency }

// WrongTypeError is returned when a resolved value does not have the
// requested type.
type WrongTypeError struct {
	// Want is the requested type.
	Want string

	// Got is reflect.TypeOf(value).String() of the resolved value.
	Got string
}

// Error implements the error interface.
func (e WrongTypeError) Error() string {
	// Example: di: resolved value has wrong type (*app.Clock, want *app.Greeter)
	return "di: resolved value has wrong type (" + e.Got + ", want " + e.Want + ")"
}

func nilArgument(name string) error {
	return contract.ArgumentError{Name: name, Reason: "must not be nil"}
}
