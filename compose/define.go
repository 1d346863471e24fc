package compose

import (
	"reflect"

	"github.com/sghaida/compbridge/contract"
	"github.com/sghaida/compbridge/di"
)

// Definition is a PartDefinition declared in code around a constructor for
// *T. Build one with Define.
type Definition[T any] struct {
	ctor     func() (*T, error)
	policy   CreationPolicy
	metadata contract.Metadata
	exports  []*ExportDefinition
	getters  map[*ExportDefinition]func(*T) any
	imports  []ImportDefinition
	binders  map[ImportDefinition]func(*T, []*Export) error
	activate []func(*T) error
	err      error
}

// PartOption configures a Definition.
type PartOption[T any] func(*Definition[T])

// Define declares a part whose instances come from ctor.
func Define[T any](ctor func() (*T, error), opts ...PartOption[T]) (*Definition[T], error) {
	if ctor == nil {
		return nil, contract.ArgumentError{Name: "ctor", Reason: "must not be nil"}
	}
	d := &Definition[T]{
		ctor:     ctor,
		metadata: contract.Metadata{},
		getters:  make(map[*ExportDefinition]func(*T) any),
		binders:  make(map[ImportDefinition]func(*T, []*Export) error),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
		if d.err != nil {
			return nil, d.err
		}
	}

	if d.policy != Any {
		d.metadata[contract.CreationPolicyKey] = d.policy
		for _, exp := range d.exports {
			if _, ok := exp.Metadata[contract.CreationPolicyKey]; !ok {
				exp.Metadata[contract.CreationPolicyKey] = d.policy
			}
		}
	}
	return d, nil
}

// MustDefine is Define for known-good declarations. It panics on error.
func MustDefine[T any](ctor func() (*T, error), opts ...PartOption[T]) *Definition[T] {
	d, err := Define(ctor, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// Metadata implements PartDefinition.
func (d *Definition[T]) Metadata() contract.Metadata { return d.metadata }

// ExportDefinitions implements PartDefinition.
func (d *Definition[T]) ExportDefinitions() []*ExportDefinition { return d.exports }

// ImportDefinitions implements PartDefinition.
func (d *Definition[T]) ImportDefinitions() []ImportDefinition { return d.imports }

// CreatePart implements PartDefinition.
func (d *Definition[T]) CreatePart() (Part, error) {
	inst, err := d.ctor()
	if err != nil {
		return nil, err
	}
	if inst == nil {
		return nil, contract.ArgumentError{Name: "ctor", Reason: "returned nil " + reflect.TypeFor[*T]().String()}
	}
	return &DefinedPart[T]{def: d, instance: inst}, nil
}

// String names the part by its type.
func (d *Definition[T]) String() string { return "part " + reflect.TypeFor[*T]().String() }

// DefinedPart is the Part created by a Definition.
type DefinedPart[T any] struct {
	def      *Definition[T]
	instance *T
}

// Instance returns the underlying value.
func (p *DefinedPart[T]) Instance() *T { return p.instance }

// ImportDefinitions implements Part.
func (p *DefinedPart[T]) ImportDefinitions() []ImportDefinition { return p.def.imports }

// SetImport implements Part.
func (p *DefinedPart[T]) SetImport(def ImportDefinition, exports []*Export) error {
	bind, ok := p.def.binders[def]
	if !ok {
		return contract.ArgumentError{Name: "import", Reason: def.String() + " is not declared by " + p.def.String()}
	}
	return bind(p.instance, exports)
}

// GetExportedValue implements Part.
func (p *DefinedPart[T]) GetExportedValue(def *ExportDefinition) (any, error) {
	get, ok := p.def.getters[def]
	if !ok {
		return nil, contract.ArgumentError{Name: "export", Reason: def.String() + " is not declared by " + p.def.String()}
	}
	return get(p.instance), nil
}

// Activate implements Part.
func (p *DefinedPart[T]) Activate() error {
	for _, fn := range p.def.activate {
		if err := fn(p.instance); err != nil {
			return err
		}
	}
	return nil
}

// WithCreationPolicy sets the part's creation policy. Exports inherit it
// unless they carry their own.
func WithCreationPolicy[T any](p CreationPolicy) PartOption[T] {
	return func(d *Definition[T]) { d.policy = p }
}

// WithPartMetadata adds part-level metadata.
func WithPartMetadata[T any](key string, value any) PartOption[T] {
	return func(d *Definition[T]) { d.metadata[key] = value }
}

// OnActivate adds a callback run by Activate.
func OnActivate[T any](fn func(*T) error) PartOption[T] {
	return func(d *Definition[T]) {
		if fn != nil {
			d.activate = append(d.activate, fn)
		}
	}
}

// ExportOption configures one export.
type ExportOption func(*ExportDefinition)

// ExportName replaces the contract name derived from the exported type.
func ExportName(name string) ExportOption {
	return func(e *ExportDefinition) { e.ContractName = name }
}

// ExportMetadata adds an export metadata entry.
func ExportMetadata(key string, value any) ExportOption {
	return func(e *ExportDefinition) { e.Metadata[key] = value }
}

// Exports exports the part instance under the contract of E. *T must be
// assignable to E.
func Exports[T, E any](opts ...ExportOption) PartOption[T] {
	return func(d *Definition[T]) {
		et := reflect.TypeFor[E]()
		if !reflect.TypeFor[*T]().AssignableTo(et) {
			d.err = contract.ArgumentError{Name: "export", Reason: reflect.TypeFor[*T]().String() + " does not implement " + et.String()}
			return
		}
		d.addExport(et, func(inst *T) any { return inst }, opts)
	}
}

// ExportsMember exports a value computed from the instance under the
// contract of E.
func ExportsMember[T, E any](get func(*T) E, opts ...ExportOption) PartOption[T] {
	return func(d *Definition[T]) {
		if get == nil {
			d.err = contract.ArgumentError{Name: "get", Reason: "must not be nil"}
			return
		}
		d.addExport(reflect.TypeFor[E](), func(inst *T) any { return get(inst) }, opts)
	}
}

func (d *Definition[T]) addExport(et reflect.Type, get func(*T) any, opts []ExportOption) {
	exp := &ExportDefinition{
		ContractName: contract.ContractName(et),
		Metadata:     contract.Metadata{contract.TypeIdentityKey: contract.TypeIdentity(et)},
	}
	for _, opt := range opts {
		opt(exp)
	}
	if exp.ContractName == "" {
		d.err = contract.ArgumentError{Name: "export", Reason: "contract name must not be empty"}
		return
	}
	d.exports = append(d.exports, exp)
	d.getters[exp] = get
}

// ImportOption configures one import.
type ImportOption func(*ContractImport)

// ImportName replaces the contract name derived from the imported type.
func ImportName(name string) ImportOption {
	return func(i *ContractImport) { i.ContractName = name }
}

// Optional turns an ExactlyOne import into ZeroOrOne.
func Optional() ImportOption {
	return func(i *ContractImport) {
		if i.Cardinality == ExactlyOne {
			i.Cardinality = ZeroOrOne
		}
	}
}

// Prerequisite marks the import as needed before the part is activated.
func Prerequisite() ImportOption {
	return func(i *ContractImport) { i.IsPrerequisite = true }
}

// RequireMetadata adds metadata requirements.
func RequireMetadata(reqs ...contract.Requirement) ImportOption {
	return func(i *ContractImport) { i.RequiredMetadata = append(i.RequiredMetadata, reqs...) }
}

// Imports declares a single-valued import stored with set. When D is a
// *di.Lazy[V, M] or *di.Meta[V, M] the contract is V's and the metadata
// view's required keys become metadata requirements.
func Imports[T, D any](set func(*T, D), opts ...ImportOption) PartOption[T] {
	return func(d *Definition[T]) {
		if set == nil {
			d.err = contract.ArgumentError{Name: "set", Reason: "must not be nil"}
			return
		}
		dt := reflect.TypeFor[D]()
		imp := newContractImport(dt, dt, ExactlyOne, opts)
		d.addImport(imp, func(inst *T, exports []*Export) error {
			switch len(exports) {
			case 0:
				return nil
			case 1:
			default:
				return CardinalityMismatchError{Import: imp.String(), Count: len(exports)}
			}
			v, err := valueAs[D](exports[0])
			if err != nil {
				return err
			}
			set(inst, v)
			return nil
		})
	}
}

// ImportsMany declares a ZeroOrMore import stored with set.
func ImportsMany[T, D any](set func(*T, []D), opts ...ImportOption) PartOption[T] {
	return func(d *Definition[T]) {
		if set == nil {
			d.err = contract.ArgumentError{Name: "set", Reason: "must not be nil"}
			return
		}
		dt := reflect.TypeFor[D]()
		imp := newContractImport(dt, reflect.SliceOf(dt), ZeroOrMore, opts)
		d.addImport(imp, func(inst *T, exports []*Export) error {
			values := make([]D, 0, len(exports))
			for _, exp := range exports {
				v, err := valueAs[D](exp)
				if err != nil {
					return err
				}
				values = append(values, v)
			}
			set(inst, values)
			return nil
		})
	}
}

// ImportsDeferred declares a single-valued import whose value is fetched
// only when the stored getter is called. Deferred imports let two parts hold
// each other even when one side imports as a prerequisite.
func ImportsDeferred[T, D any](set func(*T, func() (D, error)), opts ...ImportOption) PartOption[T] {
	return func(d *Definition[T]) {
		if set == nil {
			d.err = contract.ArgumentError{Name: "set", Reason: "must not be nil"}
			return
		}
		dt := reflect.TypeFor[D]()
		imp := newContractImport(dt, reflect.TypeFor[func() (D, error)](), ExactlyOne, opts)
		imp.Deferred = true
		d.addImport(imp, func(inst *T, exports []*Export) error {
			if len(exports) > 1 {
				return CardinalityMismatchError{Import: imp.String(), Count: len(exports)}
			}
			set(inst, func() (D, error) {
				if len(exports) == 0 {
					var zero D
					return zero, nil
				}
				return valueAs[D](exports[0])
			})
			return nil
		})
	}
}

func (d *Definition[T]) addImport(imp *ContractImport, bind func(*T, []*Export) error) {
	if imp.ContractName == "" {
		d.err = contract.ArgumentError{Name: "import", Reason: "contract name must not be empty"}
		return
	}
	d.imports = append(d.imports, imp)
	d.binders[imp] = bind
}

// newContractImport derives the contract of an import whose element type is
// elem and whose storage type is target.
func newContractImport(elem, target reflect.Type, card Cardinality, opts []ImportOption) *ContractImport {
	contractType := elem
	var reqs []contract.Requirement
	if w, ok := di.WrapperFor(elem); ok {
		contractType = w.WrappedType()
		reqs = contract.RequiredMetadata(w.MetadataType())
	}

	imp := &ContractImport{
		ContractName:         contract.ContractName(contractType),
		RequiredTypeIdentity: contract.TypeIdentity(contractType),
		RequiredMetadata:     reqs,
		Cardinality:          card,
		TargetType:           target,
	}
	for _, opt := range opts {
		opt(imp)
	}
	return imp
}

func valueAs[D any](exp *Export) (D, error) {
	var zero D
	v, err := exp.Value()
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	out, ok := v.(D)
	if !ok {
		return zero, di.WrongTypeError{Want: reflect.TypeFor[D]().String(), Got: reflect.TypeOf(v).String()}
	}
	return out, nil
}
