package compose

import (
	"errors"
	"strconv"
)

// ErrCardinalityMismatch classifies an import given more exports than its
// cardinality allows.
var ErrCardinalityMismatch = errors.New("compose: cardinality mismatch")

// CardinalityMismatchError is returned by SetImport when a single-valued
// import receives several exports.
type CardinalityMismatchError struct {
	Import string
	Count  int
}

// Error implements the error interface.
func (e CardinalityMismatchError) Error() string {
	// Example: compose: import "clock" (ExactlyOne) received 2 exports
	return "compose: " + e.Import + " received " + strconv.Itoa(e.Count) + " exports"
}

// Is reports whether target is ErrCardinalityMismatch.
func (e CardinalityMismatchError) Is(target error) bool { return target == ErrCardinalityMismatch }

func itoa(i int) string { return strconv.Itoa(i) }
