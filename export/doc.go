// Package export renders values in formats meant for people and other tools.
//
// ToPlain converts a value graph into plain Go data (nil, bool, int64,
// float64, string, []any and *Map) that preserves key order. JSON, YAML and
// CBOR serialize that form; Diag prints CBOR diagnostic notation; Dump
// produces a var_dump style listing that marks references and recursion.
// FromYAML goes the other way and builds a value from a YAML or JSON
// document.
//
// None of these formats can carry aliasing, so shared composites are
// written once per occurrence and cycles are cut with a marker.
package export
