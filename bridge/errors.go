package bridge

import (
	"errors"
	"strconv"
)

// ErrUnsupportedImportKind classifies imports that are not contract based.
var ErrUnsupportedImportKind = errors.New("bridge: unsupported import kind")

// UnsupportedImportKindError is returned while composing a part that declares
// an import other than *compose.ContractImport.
type UnsupportedImportKindError struct {
	Part   string
	Import string
}

// Error implements the error interface.
func (e UnsupportedImportKindError) Error() string {
	// Example: bridge: part "part *app.Report" declares unsupported constraint import "x"
	return "bridge: part " + strconv.Quote(e.Part) + " declares unsupported " + e.Import +
		"; only contract based imports can be satisfied"
}

// Is reports whether target is ErrUnsupportedImportKind.
func (e UnsupportedImportKindError) Is(target error) bool { return target == ErrUnsupportedImportKind }

// PartStateError is returned when a part instance is driven out of order
// through its activation phases.
type PartStateError struct {
	Want PartState
	Got  PartState
}

// Error implements the error interface.
func (e PartStateError) Error() string {
	return "bridge: part is " + e.Got.String() + ", expected " + e.Want.String()
}
