// Command partscan inspects a catalog descriptor without building the
// program that uses it.
//
// It parses the YAML or JSON descriptor, builds declaration-only parts (type
// aliases stand for themselves as contract names) and prints each part's
// exports and imports together with the number of exports in the catalog
// that match every import.
//
// Usage
//
//	partscan -catalog parts.yaml [-format text|json] [-strict] [-v]
//
// Flags
//
//   - -catalog: descriptor path; the extension picks the decoder
//   - -format: "text" (default) or "json"
//   - -strict: exit non-zero when an ExactlyOne import has no match or a
//     single-valued import has several
//   - -v: log progress to stderr
//
// Exports registered by host components are outside the descriptor, so an
// import they satisfy is still reported as unsatisfied here.
package main
