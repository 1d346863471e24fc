package bridge

import (
	"github.com/sghaida/compbridge/contract"
	"github.com/sghaida/compbridge/di"
)

// ExportRecord is what a mapper sees of a catalog export.
type ExportRecord struct {
	ContractName string
	TypeIdentity string
	Metadata     contract.Metadata
	Sharing      di.Sharing
}

// Identity returns the contract identity of the export.
func (r ExportRecord) Identity() contract.Identity {
	return contract.MustIdentity(r.ContractName, r.TypeIdentity)
}

// ExportMapper picks the host services a catalog export should also be
// registered as, so host components can depend on it directly.
type ExportMapper func(ExportRecord) []di.Service

// DefaultServices maps an export through the reverse type-identity index:
// when the contract name is the identity of a known type T the export is
// offered as T; otherwise, when its type identity is known, it is offered as
// T keyed by the contract name. Unknown identities map to nothing.
func DefaultServices(rec ExportRecord) []di.Service {
	if t, ok := contract.Identities.Lookup(rec.ContractName); ok {
		return []di.Service{di.TypedService{Type: t}}
	}
	if t, ok := contract.Identities.Lookup(rec.TypeIdentity); ok {
		return []di.Service{di.KeyedService{Key: rec.ContractName, Type: t}}
	}
	return nil
}

// NoServices maps every export to nothing; exports are then reachable only
// through their contract identity.
func NoServices(ExportRecord) []di.Service { return nil }

// MapToServices returns a mapper that offers an export as each of services
// whose contract matches: typed services by the contract name of their type,
// keyed services by their key.
func MapToServices(services ...di.Service) ExportMapper {
	return func(rec ExportRecord) []di.Service {
		var out []di.Service
		for _, svc := range services {
			switch s := svc.(type) {
			case di.TypedService:
				if contract.ContractName(s.Type) == rec.ContractName {
					out = append(out, s)
				}
			case di.KeyedService:
				if s.Key == rec.ContractName {
					out = append(out, s)
				}
			}
		}
		return out
	}
}
