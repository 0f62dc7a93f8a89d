// Package styleload compiles CUE style documents into immutable style
// trees.
//
// This is the structural validation boundary: every constraint on the
// tree (known node kinds, exactly one text source, known entry types,
// known disambiguation rules) is enforced here, with CUE source
// positions on every error. The interpreter downstream assumes a valid
// tree and never re-validates.
package styleload
