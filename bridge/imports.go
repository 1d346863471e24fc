package bridge

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sghaida/compbridge/compose"
	"github.com/sghaida/compbridge/contract"
	"github.com/sghaida/compbridge/di"
)

// assignPrerequisites runs before the part instance is published.
func (b *Bridge) assignPrerequisites(ctx di.Context, inst *PartInstance) error {
	if err := b.satisfyImports(ctx, inst, true); err != nil {
		return err
	}
	return inst.advance(PartCreated, PartPrerequisitesAssigned)
}

// completePart runs once the resolve operation that created the instance
// has finished, so the instance is visible to the parts it imports.
func (b *Bridge) completePart(ctx di.Context, inst *PartInstance) error {
	if err := inst.advance(PartPrerequisitesAssigned, PartActivated); err != nil {
		return err
	}
	if err := b.satisfyImports(ctx, inst, false); err != nil {
		return err
	}
	if err := inst.advance(PartActivated, PartNonPrerequisitesAssigned); err != nil {
		return err
	}
	if err := inst.part.Activate(); err != nil {
		return fmt.Errorf("bridge: activate %s: %w", partName(inst.def), err)
	}
	return inst.advance(PartNonPrerequisitesAssigned, PartComposed)
}

func (b *Bridge) satisfyImports(ctx di.Context, inst *PartInstance, prerequisite bool) error {
	for _, imp := range inst.part.ImportDefinitions() {
		if imp.Prerequisite() != prerequisite {
			continue
		}
		ci, ok := imp.(*compose.ContractImport)
		if !ok {
			return UnsupportedImportKindError{Part: partName(inst.def), Import: imp.String()}
		}
		exports, err := b.exportsFor(ctx, ci)
		if err != nil {
			return fmt.Errorf("bridge: %s %s: %w", partName(inst.def), ci, err)
		}
		if err := inst.part.SetImport(imp, exports); err != nil {
			return err
		}
		b.log.WithFields(logrus.Fields{
			"part":         partName(inst.def),
			"import":       ci.String(),
			"exports":      len(exports),
			"prerequisite": prerequisite,
		}).Debug("bridge: import assigned")
	}
	return nil
}

// exportsFor collects the exports matching ci, in registration order.
func (b *Bridge) exportsFor(ctx di.Context, ci *compose.ContractImport) ([]*compose.Export, error) {
	identity, err := ci.Identity()
	if err != nil {
		return nil, err
	}

	var candidates []*di.Registration
	for _, reg := range ctx.RegistrationsFor(identity) {
		if reg.Metadata.Satisfies(ci.RequiredMetadata) {
			candidates = append(candidates, reg)
		}
	}
	if len(candidates) == 0 && ci.Cardinality == compose.ExactlyOne {
		return nil, di.ComponentNotRegisteredError{Service: identity}
	}

	if ci.Deferred {
		return deferredExports(ctx, identity, candidates), nil
	}
	if w, many, ok := wrapperShape(ci.TargetType); ok {
		if !many && len(candidates) > 1 {
			candidates = candidates[:1]
		}
		return wrappedExports(ctx, identity, w, candidates)
	}

	out := make([]*compose.Export, 0, len(candidates))
	for _, reg := range candidates {
		exp, err := resolveExport(ctx, identity, reg)
		if err != nil {
			return nil, err
		}
		out = append(out, exp)
	}
	return out, nil
}

// wrappedExports hands each candidate to the part as an export whose value
// is a wrapper around the candidate's exported value.
func wrappedExports(ctx di.Context, identity contract.Identity, w di.Wrapper, candidates []*di.Registration) ([]*compose.Export, error) {
	out := make([]*compose.Export, 0, len(candidates))
	for _, reg := range candidates {
		resolver := resolverFor(ctx, w)
		wrapped, err := wrap(w, reg.Metadata, func() (any, error) {
			exp, err := resolveExport(resolver, identity, reg)
			if err != nil {
				return nil, err
			}
			return exp.Value()
		})
		if err != nil {
			return nil, err
		}
		def := &compose.ExportDefinition{ContractName: identity.ContractName, Metadata: reg.Metadata}
		out = append(out, compose.NewExport(def, func() (any, error) { return wrapped, nil }))
	}
	return out, nil
}

// deferredExports hands each candidate to the part unresolved. The value is
// resolved through the lifetime on first read, so the exporting part is not
// built while the importing part is still being activated.
func deferredExports(ctx di.Context, identity contract.Identity, candidates []*di.Registration) []*compose.Export {
	lifetime := ctx.Lifetime()
	out := make([]*compose.Export, 0, len(candidates))
	for _, reg := range candidates {
		def := &compose.ExportDefinition{ContractName: identity.ContractName, Metadata: reg.Metadata}
		out = append(out, compose.NewExport(def, func() (any, error) {
			exp, err := resolveExport(lifetime, identity, reg)
			if err != nil {
				return nil, err
			}
			return exp.Value()
		}))
	}
	return out
}

func resolveExport(ctx di.Context, identity contract.Identity, reg *di.Registration) (*compose.Export, error) {
	v, err := ctx.ResolveRegistration(identity, reg)
	if err != nil {
		return nil, err
	}
	exp, ok := v.(*compose.Export)
	if !ok {
		return nil, di.WrongTypeError{Want: "*compose.Export", Got: fmt.Sprintf("%T", v)}
	}
	return exp, nil
}
