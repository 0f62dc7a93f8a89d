// Package bibliography orders the entries cited in a session into their
// final bibliography sequence.
//
// Ordering follows the style's sort-key list, applied left to right: the
// first key producing inequality decides, and full ties fall back to
// first-citation order so the result is deterministic. Name and text
// keys compare under the locale's collation; date keys compare by
// granularity (year, then month, then day). A key whose variable holds a
// different kind on the two sides falls back to literal string
// comparison rather than failing.
package bibliography
