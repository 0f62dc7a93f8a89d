// Package render implements the style interpreter and its formatters.
//
// Rendering is a pure function of its arguments: the entry, the style
// subtree, and a Context carrying locale, citation position, locator,
// and the entry's disambiguation level. No ambient state is consulted,
// so re-rendering the same inputs is byte-identical and the driver can
// recompute earlier citations at any time.
//
// The interpreter walks the style tree by type switch over the sealed
// csl.Node variants. Evaluation rules:
//
//   - Missing or unsupported variables render as empty text, never as an
//     error. Conditional branches are the style's mechanism for skipping
//     absent data.
//   - A group is suppressed entirely, affixes included, when every
//     variable referenced within it rendered empty.
//   - Affixes and delimiters attach only to non-empty output.
//   - Case transforms never alter verbatim spans or punctuation.
package render
