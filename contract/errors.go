package contract

import (
	"errors"
	"strconv"
	"strings"
)

var (
	// ErrInvalidArgument classifies nil or empty required inputs. It is
	// returned before any side effect takes place.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDuplicateKey classifies a metadata key added twice to the same bag.
	ErrDuplicateKey = errors.New("duplicate metadata key")

	// ErrMetadataMismatch classifies a metadata view that cannot be populated.
	ErrMetadataMismatch = errors.New("metadata mismatch")

	// ErrAmbiguousTypeIdentity classifies an identity string produced by more
	// than one type.
	ErrAmbiguousTypeIdentity = errors.New("ambiguous type identity")
)

// ArgumentError reports an invalid argument by name.
type ArgumentError struct {
	Name   string
	Reason string
}

// Error implements the error interface.
func (e ArgumentError) Error() string {
	// Example: invalid argument "catalog": must not be nil
	msg := "invalid argument " + strconv.Quote(e.Name)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Is reports whether target is ErrInvalidArgument.
func (e ArgumentError) Is(target error) bool { return target == ErrInvalidArgument }

// DuplicateKeyError is returned when a metadata key is added twice.
type DuplicateKeyError struct{ Key string }

// Error implements the error interface.
func (e DuplicateKeyError) Error() string {
	return "contract: duplicate metadata key " + strconv.Quote(e.Key)
}

// Is reports whether target is ErrDuplicateKey.
func (e DuplicateKeyError) Is(target error) bool { return target == ErrDuplicateKey }

// MetadataMismatchError is returned when a field of a metadata view has no
// usable value: the key is absent and the field declares no default, or the
// stored value cannot be assigned to the field.
type MetadataMismatchError struct {
	// View is the metadata view type, e.g. "app.PluginMeta".
	View string

	// Field is the Go field name inside the view.
	Field string

	// Key is the metadata key the field reads.
	Key string

	// Reason is a short description of the failure.
	Reason string
}

// Error implements the error interface.
func (e MetadataMismatchError) Error() string {
	// Example: contract: metadata view app.Meta field Priority (key "priority"): no value and no default
	return "contract: metadata view " + e.View + " field " + e.Field +
		" (key " + strconv.Quote(e.Key) + "): " + e.Reason
}

// Is reports whether target is ErrMetadataMismatch.
func (e MetadataMismatchError) Is(target error) bool { return target == ErrMetadataMismatch }

// AmbiguousTypeIdentityError is returned by strict reverse lookups when more
// than one type produced the same identity string.
type AmbiguousTypeIdentityError struct {
	Identity string
	Types    []string
}

// Error implements the error interface.
func (e AmbiguousTypeIdentityError) Error() string {
	return "contract: type identity " + strconv.Quote(e.Identity) +
		" is produced by " + strconv.Itoa(len(e.Types)) + " types (" + strings.Join(e.Types, ", ") + ")"
}

// Is reports whether target is ErrAmbiguousTypeIdentity.
func (e AmbiguousTypeIdentityError) Is(target error) bool {
	return target == ErrAmbiguousTypeIdentity
}
