// Package testutil provides shared deterministic fixtures for engine
// tests: a small entry library with a built-in disambiguation collision
// and canned styles exercising the common layout shapes.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bibkit/bibkit/internal/csl"
)

// BookEntry builds a single-author book entry.
func BookEntry(id, given, family, title string, year int) csl.Entry {
	return csl.Entry{
		ID:   id,
		Type: csl.TypeBook,
		Vars: map[string]csl.Value{
			"author": csl.Names{{Given: given, Family: family}},
			"title":  csl.NewText(title),
			"issued": csl.Date{Year: year},
		},
	}
}

// SmithLibrary returns four entries: three by the same author in the
// same year (a guaranteed author-year collision) plus one distinct
// author.
func SmithLibrary(t *testing.T) *csl.Library {
	t.Helper()
	lib, err := csl.NewLibrary([]csl.Entry{
		BookEntry("alpha", "Ada", "Smith", "Alpha", 2020),
		BookEntry("beta", "Ada", "Smith", "Beta", 2020),
		BookEntry("gamma", "Ada", "Smith", "Gamma", 2020),
		BookEntry("jones", "Max", "Jones", "Delta", 2021),
	})
	require.NoError(t, err)
	return lib
}

// AuthorYearStyle returns an in-text style with year-suffix
// disambiguation: citations render as "(Smith, 2020)", bibliography
// entries as "Smith (2020). Alpha.", sorted by author then title.
func AuthorYearStyle() *csl.Style {
	return &csl.Style{
		Name:  "author-year-test",
		Class: csl.ClassInText,
		Citation: csl.Layout{
			Formatting: csl.Formatting{Prefix: "(", Suffix: ")"},
			Children: []csl.Node{
				csl.NamesNode{
					Variables:  []string{"author"},
					Form:       csl.NameShort,
					Formatting: csl.Formatting{Tag: csl.TagAuthor},
				},
				csl.DateNode{
					Variable:   "issued",
					Form:       csl.DateYearOnly,
					Formatting: csl.Formatting{Prefix: ", ", Tag: csl.TagYear},
				},
			},
		},
		Bibliography: csl.Layout{Children: []csl.Node{
			csl.NamesNode{Variables: []string{"author"}, Form: csl.NameShort},
			csl.DateNode{
				Variable:   "issued",
				Form:       csl.DateYearOnly,
				Formatting: csl.Formatting{Prefix: " (", Suffix: ")."},
			},
			csl.TextNode{Variable: "title", Formatting: csl.Formatting{Prefix: " ", Suffix: "."}},
		}},
		Sort:            []csl.SortKey{{Variable: "author"}, {Variable: "title"}},
		Disambiguation:  []csl.DisambRule{csl.DisambYearSuffix},
		MissingSortLast: true,
	}
}

// NoteStyle returns a note style whose citation layout branches on the
// ibid position: repeats render as the ibid term, everything else as
// "Smith, Alpha, p. 12".
func NoteStyle() *csl.Style {
	full := []csl.Node{
		csl.NamesNode{Variables: []string{"author"}, Form: csl.NameShort},
		csl.TextNode{Variable: "title", Formatting: csl.Formatting{Prefix: ", "}},
		csl.TextNode{Variable: "locator", Formatting: csl.Formatting{Prefix: ", p. "}},
	}
	return &csl.Style{
		Name:  "note-test",
		Class: csl.ClassNote,
		Citation: csl.Layout{Children: []csl.Node{
			csl.Choose{
				Branches: []csl.Branch{{
					Cond:     csl.Condition{Positions: []csl.Position{csl.PositionIbid}},
					Children: []csl.Node{csl.TextNode{Term: "ibid"}},
				}},
				Else: full,
			},
		}},
		Bibliography: csl.Layout{Children: full},
	}
}
