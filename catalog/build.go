package catalog

import (
	"reflect"
	"sort"
	"strconv"

	"github.com/sghaida/compbridge/compose"
	"github.com/sghaida/compbridge/contract"
	"github.com/sghaida/compbridge/di"
)

// Build turns desc into a catalog. With a nil registry the parts are
// declaration-only (see the package documentation).
func Build(desc *Descriptor, reg *Registry) (compose.PartList, error) {
	if desc == nil {
		return nil, contract.ArgumentError{Name: "descriptor", Reason: "must not be nil"}
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	out := make(compose.PartList, 0, len(desc.Parts))
	for _, pd := range desc.Parts {
		def, err := buildPart(pd, reg)
		if err != nil {
			return nil, err
		}
		out = append(out, def)
	}
	return out, nil
}

func buildPart(pd PartDescriptor, reg *Registry) (*Definition, error) {
	b := partBuilder{pd: pd, reg: reg}
	def := &Definition{
		name:     pd.Name,
		metadata: contract.Metadata(pd.Metadata).Clone(),
		members:  make(map[*compose.ExportDefinition][]int),
		fields:   make(map[compose.ImportDefinition]fieldImport),
	}
	if pd.CreationPolicy != compose.Any {
		def.metadata[contract.CreationPolicyKey] = pd.CreationPolicy
	}

	if reg != nil {
		f, ok := reg.Factory(pd.Factory)
		if !ok {
			return nil, b.fail("factory", "unknown factory "+strconv.Quote(pd.Factory))
		}
		def.factory = &f
		b.instance = f.typ
	}

	for i, ed := range pd.Exports {
		exp, member, err := b.export(i, ed)
		if err != nil {
			return nil, err
		}
		def.exports = append(def.exports, exp)
		def.members[exp] = member
	}
	for i, id := range pd.Imports {
		imp, fi, err := b.importDef(i, id)
		if err != nil {
			return nil, err
		}
		def.imports = append(def.imports, imp)
		def.fields[imp] = fi
	}
	return def, nil
}

type partBuilder struct {
	pd       PartDescriptor
	reg      *Registry
	instance reflect.Type
}

func (b partBuilder) fail(path, reason string) error {
	return DescriptorError{Part: b.pd.Name, Path: path, Reason: reason}
}

// alias resolves a type alias. Without a registry the alias is returned as
// its own contract name and type identity.
func (b partBuilder) alias(path, name string) (reflect.Type, string, error) {
	if b.reg == nil {
		return nil, name, nil
	}
	t, ok := b.reg.Type(name)
	if !ok {
		return nil, "", b.fail(path, "unknown type alias "+strconv.Quote(name))
	}
	return t, "", nil
}

func (b partBuilder) field(path, name string) (reflect.StructField, error) {
	if b.instance == nil {
		return reflect.StructField{}, nil
	}
	sf, ok := b.instance.Elem().FieldByName(name)
	if !ok || !sf.IsExported() {
		return reflect.StructField{}, b.fail(path, "no exported field "+strconv.Quote(name)+" on "+b.instance.String())
	}
	return sf, nil
}

func (b partBuilder) export(i int, ed ExportDescriptor) (*compose.ExportDefinition, []int, error) {
	path := "exports[" + strconv.Itoa(i) + "]"

	var t reflect.Type
	name, ti := ed.Contract, ed.TypeIdentity
	if ed.Type != "" {
		at, self, err := b.alias(path+".type", ed.Type)
		if err != nil {
			return nil, nil, err
		}
		t = at
		name, ti = orDefault(name, self), orDefault(ti, self)
	}

	var member []int
	if ed.Member != "" {
		sf, err := b.field(path+".member", ed.Member)
		if err != nil {
			return nil, nil, err
		}
		member = sf.Index
		if t == nil && sf.Type != nil {
			t = sf.Type
		}
		if t != nil && sf.Type != nil && !sf.Type.AssignableTo(t) {
			return nil, nil, b.fail(path+".member", sf.Type.String()+" does not implement "+t.String())
		}
	} else if b.instance != nil {
		if t == nil {
			t = b.instance
		} else if !b.instance.AssignableTo(t) {
			return nil, nil, b.fail(path+".type", b.instance.String()+" does not implement "+t.String())
		}
	}

	if t != nil {
		name = orDefault(name, contract.ContractName(t))
		ti = orDefault(ti, contract.TypeIdentity(t))
	}
	if name == "" {
		return nil, nil, b.fail(path, "cannot derive a contract name")
	}

	md := contract.Metadata(ed.Metadata).Clone()
	if ti != "" {
		md[contract.TypeIdentityKey] = ti
	}
	if _, ok := md[contract.CreationPolicyKey]; !ok && b.pd.CreationPolicy != compose.Any {
		md[contract.CreationPolicyKey] = b.pd.CreationPolicy
	}
	return &compose.ExportDefinition{ContractName: name, Metadata: md}, member, nil
}

func (b partBuilder) importDef(i int, id ImportDescriptor) (*compose.ContractImport, fieldImport, error) {
	path := "imports[" + strconv.Itoa(i) + "]"

	var fi fieldImport
	var target reflect.Type
	if id.Field != "" {
		sf, err := b.field(path+".field", id.Field)
		if err != nil {
			return nil, fi, err
		}
		fi.index, target = sf.Index, sf.Type
	} else if b.instance != nil {
		return nil, fi, b.fail(path+".field", "must be set when the part has a factory")
	}

	card := compose.ExactlyOne
	switch {
	case id.Cardinality != nil:
		card = *id.Cardinality
	case target != nil && target.Kind() == reflect.Slice:
		card = compose.ZeroOrMore
	}

	elem := target
	if card == compose.ZeroOrMore && target != nil {
		if target.Kind() != reflect.Slice {
			return nil, fi, b.fail(path+".field", "ZeroOrMore needs a slice field, got "+target.String())
		}
		elem = target.Elem()
	}
	fi.cardinality, fi.elem = card, elem

	contractType := elem
	var reqs []contract.Requirement
	if w, ok := di.WrapperFor(elem); ok {
		contractType = w.WrappedType()
		reqs = contract.RequiredMetadata(w.MetadataType())
	}

	name, ti := id.Contract, id.TypeIdentity
	if id.Type != "" {
		at, self, err := b.alias(path+".type", id.Type)
		if err != nil {
			return nil, fi, err
		}
		if at != nil {
			contractType = at
		}
		name, ti = orDefault(name, self), orDefault(ti, self)
	}
	if contractType != nil {
		name = orDefault(name, contract.ContractName(contractType))
		ti = orDefault(ti, contract.TypeIdentity(contractType))
	}
	if name == "" {
		return nil, fi, b.fail(path, "cannot derive a contract name")
	}

	keys := make([]string, 0, len(id.RequiredMetadata))
	for k := range id.RequiredMetadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		rt, ok := b.reg.metadataType(id.RequiredMetadata[k])
		if !ok {
			if b.reg != nil {
				return nil, fi, b.fail(path+".requiredMetadata."+k, "unknown type "+strconv.Quote(id.RequiredMetadata[k]))
			}
			rt = nil
		}
		reqs = append(reqs, contract.Requirement{Key: k, Type: rt})
	}

	return &compose.ContractImport{
		ContractName:         name,
		RequiredTypeIdentity: ti,
		RequiredMetadata:     reqs,
		Cardinality:          card,
		IsPrerequisite:       id.Prerequisite,
		TargetType:           target,
	}, fi, nil
}

func orDefault(s, def string) string {
	if s != "" {
		return s
	}
	return def
}
