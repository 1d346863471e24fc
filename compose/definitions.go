package compose

import (
	"reflect"
	"strconv"
	"sync"

	"github.com/sghaida/compbridge/contract"
)

// ExportDefinition is a capability a part offers. Definitions are compared
// by pointer.
type ExportDefinition struct {
	ContractName string
	Metadata     contract.Metadata
}

// TypeIdentity returns the identity stored in the metadata, or "".
func (d *ExportDefinition) TypeIdentity() string { return d.Metadata.TypeIdentity() }

// CreationPolicy returns the policy stored in the metadata.
func (d *ExportDefinition) CreationPolicy() CreationPolicy { return CreationPolicyOf(d.Metadata) }

// Identity returns the contract identity the export satisfies.
func (d *ExportDefinition) Identity() (contract.Identity, error) {
	return contract.NewIdentity(d.ContractName, d.TypeIdentity())
}

// String returns the contract name.
func (d *ExportDefinition) String() string { return "export " + strconv.Quote(d.ContractName) }

// ImportDefinition is a dependency a part declares. The bridge only
// understands *ContractImport; other kinds are rejected at composition time.
type ImportDefinition interface {
	ImportCardinality() Cardinality
	Prerequisite() bool
	String() string
}

// ContractImport is an import matched by contract identity.
type ContractImport struct {
	ContractName         string
	RequiredTypeIdentity string
	RequiredMetadata     []contract.Requirement
	Cardinality          Cardinality

	// IsPrerequisite imports are assigned before the part counts as
	// activated; the others afterwards, which is what lets two parts import
	// each other.
	IsPrerequisite bool

	// TargetType is the Go type the part stores the import in. *di.Lazy and
	// *di.Meta targets (or slices of them) are served by wrapper synthesis.
	TargetType reflect.Type

	// Deferred imports receive exports whose values are only resolved when
	// read, outside the operation that assigned them.
	Deferred bool
}

// ImportCardinality implements ImportDefinition.
func (i *ContractImport) ImportCardinality() Cardinality { return i.Cardinality }

// Prerequisite implements ImportDefinition.
func (i *ContractImport) Prerequisite() bool { return i.IsPrerequisite }

// String implements ImportDefinition.
func (i *ContractImport) String() string {
	return "import " + strconv.Quote(i.ContractName) + " (" + i.Cardinality.String() + ")"
}

// Identity returns the contract identity the import asks for.
func (i *ContractImport) Identity() (contract.Identity, error) {
	return contract.NewIdentity(i.ContractName, i.RequiredTypeIdentity)
}

// IsMatch reports whether exp satisfies the import's identity and metadata
// requirements.
func (i *ContractImport) IsMatch(exp *ExportDefinition) bool {
	want, err := i.Identity()
	if err != nil {
		return false
	}
	got, err := exp.Identity()
	if err != nil {
		return false
	}
	return want == got && exp.Metadata.Satisfies(i.RequiredMetadata)
}

// ConstraintImport is an import matched by an arbitrary predicate.
type ConstraintImport struct {
	Description    string
	Constraint     func(*ExportDefinition) bool
	Cardinality    Cardinality
	IsPrerequisite bool
}

// ImportCardinality implements ImportDefinition.
func (i *ConstraintImport) ImportCardinality() Cardinality { return i.Cardinality }

// Prerequisite implements ImportDefinition.
func (i *ConstraintImport) Prerequisite() bool { return i.IsPrerequisite }

// String implements ImportDefinition.
func (i *ConstraintImport) String() string { return "constraint import " + strconv.Quote(i.Description) }

// Export is an export definition paired with a deferred value.
//
// The value is fetched once; later calls return the memoized result.
type Export struct {
	Definition *ExportDefinition

	mu    sync.Mutex
	get   func() (any, error)
	done  bool
	value any
	err   error
}

// NewExport returns an Export whose value comes from get.
func NewExport(def *ExportDefinition, get func() (any, error)) *Export {
	return &Export{Definition: def, get: get}
}

// Metadata returns the definition's metadata.
func (e *Export) Metadata() contract.Metadata { return e.Definition.Metadata }

// Value returns the exported value, fetching it on first call. The getter
// runs without holding the lock so it may resolve other exports.
func (e *Export) Value() (any, error) {
	e.mu.Lock()
	if e.done {
		defer e.mu.Unlock()
		return e.value, e.err
	}
	get := e.get
	e.mu.Unlock()

	if get == nil {
		return nil, nil
	}
	v, err := get()

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.done {
		e.value, e.err, e.done = v, err, true
		e.get = nil
	}
	return e.value, e.err
}

// PartDefinition describes a part.
type PartDefinition interface {
	Metadata() contract.Metadata
	ExportDefinitions() []*ExportDefinition
	ImportDefinitions() []ImportDefinition
	CreatePart() (Part, error)
}

// Part is a live part instance.
type Part interface {
	ImportDefinitions() []ImportDefinition

	// SetImport assigns the exports chosen for def.
	SetImport(def ImportDefinition, exports []*Export) error

	// GetExportedValue returns the value for one of the definition's exports.
	GetExportedValue(def *ExportDefinition) (any, error)

	// Activate is called once every import has been assigned.
	Activate() error
}

// Catalog is an ordered source of part definitions.
type Catalog interface {
	Parts() []PartDefinition
}

// PartList is a Catalog over a fixed slice.
type PartList []PartDefinition

// Parts implements Catalog.
func (l PartList) Parts() []PartDefinition { return l }

// NewCatalog returns a Catalog over parts.
func NewCatalog(parts ...PartDefinition) PartList { return PartList(parts) }
