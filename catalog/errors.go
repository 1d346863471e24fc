package catalog

import (
	"errors"
	"strconv"
)

var (
	// ErrInvalidDescriptor classifies descriptors that cannot be built.
	ErrInvalidDescriptor = errors.New("catalog: invalid descriptor")

	// ErrMissingFactory is returned when a declaration-only part is created.
	ErrMissingFactory = errors.New("catalog: part has no factory")
)

// DescriptorError points at the offending entry of a descriptor.
type DescriptorError struct {
	// Part is the part name, or its index when the name is missing.
	Part string

	// Path locates the entry inside the part, e.g. "imports[1].field".
	Path string

	Reason string
}

// Error implements the error interface.
func (e DescriptorError) Error() string {
	// Example: catalog: part "console" exports[0].type: unknown type alias "Logger"
	msg := "catalog: part " + strconv.Quote(e.Part)
	if e.Path != "" {
		msg += " " + e.Path
	}
	return msg + ": " + e.Reason
}

// Is reports whether target is ErrInvalidDescriptor.
func (e DescriptorError) Is(target error) bool { return target == ErrInvalidDescriptor }

// MissingFactoryError is returned by CreatePart on declaration-only parts.
type MissingFactoryError struct{ Part string }

// Error implements the error interface.
func (e MissingFactoryError) Error() string {
	return "catalog: part " + strconv.Quote(e.Part) + " was built without a factory"
}

// Is reports whether target is ErrMissingFactory.
func (e MissingFactoryError) Is(target error) bool { return target == ErrMissingFactory }
