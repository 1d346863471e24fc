package bridge

import (
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/sghaida/compbridge/compose"
	"github.com/sghaida/compbridge/contract"
	"github.com/sghaida/compbridge/di"
)

// PartRegistration records what RegisterPart added to the container.
type PartRegistration struct {
	// Service is the unique service the part instance is registered under.
	Service      di.UniqueService
	Definition   compose.PartDefinition
	Registration *di.Registration
	Exports      []ExportRegistration
}

// ExportRegistration records the registrations added for one export.
type ExportRegistration struct {
	Record     ExportRecord
	Definition *compose.ExportDefinition

	// Registration resolves to a *compose.Export and is registered under the
	// export's contract identity.
	Registration *di.Registration

	// Mapped resolves to the exported value and is registered under the
	// services the mapper chose. Nil when the mapper chose none.
	Mapped *di.Registration
}

// RegisterCatalog registers every part of cat. mapper decides which host
// services each export is additionally offered as; pass DefaultServices or
// NoServices when in doubt.
//
// Arguments are validated before anything is registered.
func (b *Bridge) RegisterCatalog(cat compose.Catalog, mapper ExportMapper) ([]*PartRegistration, error) {
	switch {
	case cat == nil:
		return nil, contract.ArgumentError{Name: "catalog", Reason: "must not be nil"}
	case mapper == nil:
		return nil, contract.ArgumentError{Name: "mapper", Reason: "must not be nil"}
	}
	parts := cat.Parts()
	for i, def := range parts {
		if def == nil {
			return nil, contract.ArgumentError{Name: "catalog.Parts()[" + strconv.Itoa(i) + "]", Reason: "must not be nil"}
		}
	}

	out := make([]*PartRegistration, 0, len(parts))
	for _, def := range parts {
		pr, err := b.registerPart(def, mapper)
		if err != nil {
			return out, err
		}
		out = append(out, pr)
	}
	b.log.WithField("parts", len(parts)).Info("bridge: registered catalog")
	return out, nil
}

// RegisterCatalogServices registers cat, offering each export as whichever
// of services matches its contract.
func (b *Bridge) RegisterCatalogServices(cat compose.Catalog, services ...di.Service) ([]*PartRegistration, error) {
	return b.RegisterCatalog(cat, MapToServices(services...))
}

// RegisterPart registers a single part definition.
func (b *Bridge) RegisterPart(def compose.PartDefinition, mapper ExportMapper) (*PartRegistration, error) {
	switch {
	case def == nil:
		return nil, contract.ArgumentError{Name: "part", Reason: "must not be nil"}
	case mapper == nil:
		return nil, contract.ArgumentError{Name: "mapper", Reason: "must not be nil"}
	}
	return b.registerPart(def, mapper)
}

func (b *Bridge) registerPart(def compose.PartDefinition, mapper ExportMapper) (*PartRegistration, error) {
	// Validate every export before registering anything for the part.
	exports := def.ExportDefinitions()
	identities := make([]contract.Identity, len(exports))
	for i, exp := range exports {
		if exp == nil {
			return nil, contract.ArgumentError{Name: "exports[" + strconv.Itoa(i) + "]", Reason: "must not be nil"}
		}
		id, err := exp.Identity()
		if err != nil {
			return nil, fmt.Errorf("bridge: %s: %w", partName(def), err)
		}
		identities[i] = id
	}

	partSvc := di.NewUniqueService()
	sharing := sharingFor(compose.CreationPolicyOf(def.Metadata()), di.Shared)
	partReg := di.NewRegistration(func(di.Context) (any, error) {
		part, err := def.CreatePart()
		if err != nil {
			return nil, err
		}
		return newPartInstance(def, part), nil
	}).
		As(partSvc).
		WithSharing(sharing).
		WithMetadataMap(def.Metadata()).
		OnActivating(func(ctx di.Context, inst any) error {
			return b.assignPrerequisites(ctx, inst.(*PartInstance))
		}).
		OnActivated(func(ctx di.Context, inst any) error {
			return b.completePart(ctx, inst.(*PartInstance))
		})
	if err := b.register(partReg); err != nil {
		return nil, err
	}

	pr := &PartRegistration{Service: partSvc, Definition: def, Registration: partReg}
	for i, exp := range exports {
		er, err := b.registerExport(partSvc, sharing, exp, identities[i], mapper)
		if err != nil {
			return nil, err
		}
		pr.Exports = append(pr.Exports, er)
	}

	entry := b.log.WithFields(logrus.Fields{
		"part":    partName(def),
		"sharing": sharing.String(),
		"exports": len(exports),
		"imports": len(def.ImportDefinitions()),
	})
	if len(exports) == 0 {
		entry.Warn("bridge: part has no exports and can never be resolved")
	} else {
		entry.Debug("bridge: registered part")
	}
	return pr, nil
}

func (b *Bridge) registerExport(
	partSvc di.UniqueService,
	partSharing di.Sharing,
	exp *compose.ExportDefinition,
	identity contract.Identity,
	mapper ExportMapper,
) (ExportRegistration, error) {
	sharing := sharingFor(exp.CreationPolicy(), partSharing)
	rec := ExportRecord{
		ContractName: identity.ContractName,
		TypeIdentity: identity.TypeIdentity,
		Metadata:     exp.Metadata.Clone(),
		Sharing:      sharing,
	}

	exportSvc := di.NewUniqueService()
	exportReg := di.NewRegistration(func(ctx di.Context) (any, error) {
		v, err := ctx.Resolve(partSvc)
		if err != nil {
			return nil, err
		}
		inst, ok := v.(*PartInstance)
		if !ok {
			return nil, di.WrongTypeError{Want: "*bridge.PartInstance", Got: fmt.Sprintf("%T", v)}
		}
		return compose.NewExport(exp, func() (any, error) {
			return inst.part.GetExportedValue(exp)
		}), nil
	}).
		As(exportSvc, identity).
		WithSharing(sharing).
		WithMetadataMap(exp.Metadata)
	if err := b.register(exportReg); err != nil {
		return ExportRegistration{}, err
	}
	er := ExportRegistration{Record: rec, Definition: exp, Registration: exportReg}

	services := mapper(rec)
	if len(services) == 0 {
		return er, nil
	}
	mapped := di.NewRegistration(func(ctx di.Context) (any, error) {
		v, err := ctx.Resolve(exportSvc)
		if err != nil {
			return nil, err
		}
		return v.(*compose.Export).Value()
	}).
		As(services...).
		WithSharing(sharing).
		WithMetadataMap(exp.Metadata).
		Targeting(exportReg)
	if err := b.register(mapped); err != nil {
		return ExportRegistration{}, err
	}
	er.Mapped = mapped
	return er, nil
}

// sharingFor turns a creation policy into a host sharing mode; Any keeps
// inherited.
func sharingFor(p compose.CreationPolicy, inherited di.Sharing) di.Sharing {
	switch p {
	case compose.NonShared:
		return di.PerRequest
	case compose.Shared:
		return di.Shared
	default:
		return inherited
	}
}

func partName(def compose.PartDefinition) string {
	if s, ok := def.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", def)
}
