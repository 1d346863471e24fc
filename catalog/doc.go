// Package catalog builds composition catalogs from YAML (or JSON)
// descriptors.
//
// A descriptor names each part's factory and lists its exports and imports:
//
//	parts:
//	  - name: console
//	    factory: console
//	    creationPolicy: Shared
//	    exports:
//	      - type: Logger
//	        metadata: {level: debug}
//	  - name: reporter
//	    factory: reporter
//	    exports:
//	      - type: Reporter
//	    imports:
//	      - field: Loggers
//	        requiredMetadata: {level: string}
//
// Factories and type aliases come from a Registry. Imports are assigned to
// exported struct fields of the part instance; a slice field makes the import
// ZeroOrMore unless a cardinality is given, and *di.Lazy / *di.Meta fields
// receive wrappers. Instances implementing ImportsSatisfied are notified once
// every import is set.
//
// Building with a nil Registry gives declaration-only parts: aliases then
// stand for themselves as contract names, and creating a part fails. That is
// enough for Analyze, which reports imports no export can satisfy.
package catalog
