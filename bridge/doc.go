// Package bridge lets components of the host model (package di) and parts of
// the composition model (package compose) satisfy each other's dependencies.
//
// Catalog parts become container registrations:
//
//	c := di.New()
//	b, _ := bridge.New(c)
//	_, _ = b.RegisterCatalog(catalog, bridge.DefaultServices)
//
// Each part is registered once under a unique service with the sharing
// policy its creation policy implies, and each of its exports is registered
// under the export's contract.Identity (plus any host services the mapper
// returns). Imports are assigned in two phases: prerequisite imports before
// the part instance is published, the rest once the resolve operation that
// created it has finished. Parts that import each other non-prerequisitely
// therefore resolve without a cycle error.
//
// Host components are offered to parts with Export:
//
//	reg, _ := di.Provide(c, newClock)
//	_, _ = b.Export(reg, func(e *bridge.ExportConfiguration) {
//	    bridge.As[Clock](e).WithMetadata("zone", "UTC")
//	})
//
// RegisterWrapperSources adds LazySource and MetaSource, which synthesize
// *di.Lazy[V, M] and *di.Meta[V, M] components (and slices of them) from the
// registrations of V, projecting registration metadata onto M.
package bridge
