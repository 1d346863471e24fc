package bridge

import (
	"reflect"

	"github.com/sirupsen/logrus"

	"github.com/sghaida/compbridge/compose"
	"github.com/sghaida/compbridge/contract"
	"github.com/sghaida/compbridge/di"
)

// ExportConfiguration describes how a host component is exported: the
// contract it satisfies and the metadata that goes with it. Methods chain;
// the first error is kept and returned by Bridge.Export.
type ExportConfiguration struct {
	contractName string
	typeIdentity string
	metadata     contract.Metadata
	err          error
}

// NewExportConfiguration returns an empty configuration.
func NewExportConfiguration() *ExportConfiguration {
	return &ExportConfiguration{metadata: contract.Metadata{}}
}

// AsType exports under the contract and type identity of t.
func (e *ExportConfiguration) AsType(t reflect.Type) *ExportConfiguration {
	if t == nil {
		e.fail(contract.ArgumentError{Name: "type", Reason: "must not be nil"})
		return e
	}
	return e.AsNamedType(contract.ContractName(t), t)
}

// AsNamedType exports under name with the type identity of t.
func (e *ExportConfiguration) AsNamedType(name string, t reflect.Type) *ExportConfiguration {
	if name == "" {
		e.fail(contract.ArgumentError{Name: "contractName", Reason: "must not be empty"})
		return e
	}
	e.WithMetadata(contract.TypeIdentityKey, contract.TypeIdentity(t))
	e.contractName = name
	return e
}

// As exports e under the contract of T.
func As[T any](e *ExportConfiguration) *ExportConfiguration {
	return e.AsType(reflect.TypeFor[T]())
}

// AsNamed exports e under name with the type identity of T.
func AsNamed[T any](e *ExportConfiguration, name string) *ExportConfiguration {
	return e.AsNamedType(name, reflect.TypeFor[T]())
}

// WithMetadata adds one metadata entry. Adding a key twice is a
// DuplicateKeyError. The type identity key may also be set directly; its
// value must then be a non-empty string.
func (e *ExportConfiguration) WithMetadata(key string, value any) *ExportConfiguration {
	if key == "" {
		e.fail(contract.ArgumentError{Name: "key", Reason: "must not be empty"})
		return e
	}
	if _, dup := e.metadata[key]; dup {
		e.fail(contract.DuplicateKeyError{Key: key})
		return e
	}
	if key == contract.TypeIdentityKey {
		s, ok := value.(string)
		if !ok || s == "" {
			e.fail(contract.ArgumentError{Name: contract.TypeIdentityKey, Reason: "must be a non-empty string"})
			return e
		}
		e.typeIdentity = s
	}
	e.metadata[key] = value
	return e
}

// WithMetadataMap adds every entry of md, in key order.
func (e *ExportConfiguration) WithMetadataMap(md contract.Metadata) *ExportConfiguration {
	for _, k := range md.Keys() {
		e.WithMetadata(k, md[k])
	}
	return e
}

// ContractName returns the configured contract name.
func (e *ExportConfiguration) ContractName() string { return e.contractName }

// Metadata returns a copy of the accumulated metadata.
func (e *ExportConfiguration) Metadata() contract.Metadata { return e.metadata.Clone() }

// Err returns the first configuration error.
func (e *ExportConfiguration) Err() error { return e.err }

// Identity returns the identity the export will be registered under.
func (e *ExportConfiguration) Identity() (contract.Identity, error) {
	if e.err != nil {
		return contract.Identity{}, e.err
	}
	if e.contractName == "" {
		return contract.Identity{}, contract.ArgumentError{Name: "contractName", Reason: "not configured; call As or AsNamed"}
	}
	return contract.NewIdentity(e.contractName, e.typeIdentity)
}

func (e *ExportConfiguration) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

// Export makes the host component reg available to parts. configure fills
// in the contract; the resulting registration resolves to a *compose.Export
// whose value is reg's instance, resolved when the value is first read.
//
// reg is not registered by Export; register it with the container first.
func (b *Bridge) Export(reg *di.Registration, configure func(*ExportConfiguration)) (*di.Registration, error) {
	switch {
	case reg == nil:
		return nil, contract.ArgumentError{Name: "registration", Reason: "must not be nil"}
	case configure == nil:
		return nil, contract.ArgumentError{Name: "configure", Reason: "must not be nil"}
	}

	cfg := NewExportConfiguration()
	configure(cfg)
	identity, err := cfg.Identity()
	if err != nil {
		return nil, err
	}

	md := cfg.Metadata()
	def := &compose.ExportDefinition{ContractName: identity.ContractName, Metadata: md}
	exportReg := di.NewRegistration(func(ctx di.Context) (any, error) {
		lifetime := ctx.Lifetime()
		return compose.NewExport(def, func() (any, error) {
			return lifetime.ResolveRegistration(identity, reg)
		}), nil
	}).As(identity).WithMetadataMap(md).Targeting(reg)

	if err := b.register(exportReg); err != nil {
		return nil, err
	}
	b.log.WithFields(logrus.Fields{
		"registration": reg.ID.String(),
		"contract":     identity.String(),
	}).Debug("bridge: exported host component")
	return exportReg, nil
}
