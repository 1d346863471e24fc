// Package contract holds the naming layer shared by the host (type-keyed) and
// the composition (contract-keyed) component models.
//
// A contract is identified by a human-readable name plus a structural type
// identity string:
//
//	id, err := contract.NewIdentity("greeter", contract.TypeIdentityFor[Greeter]())
//
// Names and identities for Go types are derived with ContractName and
// TypeIdentity. Every derivation is recorded in the process-wide reverse index
// (Identities) so a type can be recovered later from nothing but its identity
// string:
//
//	t, ok := contract.Identities.Lookup("github.com/acme/app.Greeter")
//
// The package also carries the metadata helpers used on both sides of the
// bridge: untyped Metadata bags, metadata requirements for imports, and
// strongly-typed metadata views projected from a bag with Project.
package contract
