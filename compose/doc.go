// Package compose is the contract-keyed composition model of compbridge.
//
// Units of composition are parts. A PartDefinition declares the exports a part
// offers (ExportDefinition: contract name plus metadata) and the imports it
// needs (ImportDefinition, usually a ContractImport with cardinality, required
// metadata and a prerequisite flag). CreatePart returns a Part that accepts
// import values through SetImport, hands out export values through
// GetExportedValue and is finalized with Activate.
//
// Parts can be declared in code with Define:
//
//	def, err := compose.Define(func() (*Greeter, error) { return &Greeter{}, nil },
//	    compose.Exports[Greeter, Speaker](compose.ExportMetadata("lang", "en")),
//	    compose.Imports(func(g *Greeter, c *Clock) { g.Clock = c }),
//	)
//
// or loaded from YAML with package catalog. Package bridge registers either
// kind in a di.Container.
package compose
