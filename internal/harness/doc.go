// Package harness runs conformance scenarios against the citation
// engine.
//
// A scenario is a YAML document naming a style, an entry library, and a
// sequence of citation steps. The harness drives a fresh engine through
// the steps with a fixed session token, checks each step's immediate
// render against its expect clause, and captures the final document
// state: the citation history after all retroactive re-renders, and the
// sorted bibliography.
//
// The final state serializes to a deterministic JSON snapshot compared
// against golden files under testdata/golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
