// Package compbridge connects a type-keyed dependency injection container
// with a contract-keyed composition model, so components written for either
// side can depend on the other.
//
// The repository is organised bottom-up:
//
//   - contract: contract identities, the type identity derivation and its
//     reverse index, metadata and strongly-typed metadata views
//   - di: the host container (typed, keyed and unique services, sharing,
//     activation hooks, fallback sources, Lazy and Meta wrappers)
//   - compose: the composition model (parts, exports, imports, catalogs) and
//     Define for building parts from Go types
//   - bridge: registers catalog parts with a container, exports host
//     components to parts and synthesizes wrapper components
//   - catalog: YAML/JSON catalog descriptors built into reflection parts
//   - cmd/partscan: inspects a descriptor for unsatisfied imports
//   - examples/plugins: a runnable end-to-end example
//
// Start with the bridge package documentation for the wiring style.
package compbridge
