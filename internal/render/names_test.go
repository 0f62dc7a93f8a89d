package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bibkit/bibkit/internal/csl"
)

func testContext() *Context {
	return &Context{
		Locale:   csl.EnglishLocale(),
		Position: csl.PositionFirst,
	}
}

func threeAuthors() csl.Names {
	return csl.Names{
		{Given: "Ada", Family: "Smith"},
		{Given: "Ben", Family: "Jones"},
		{Given: "Cem", Family: "Young"},
	}
}

func TestFormatNames_LongForm(t *testing.T) {
	node := csl.NamesNode{Variables: []string{"author"}, And: "text"}
	got := FormatNames(threeAuthors(), node, testContext())
	assert.Equal(t, "Ada Smith, Ben Jones, and Cem Young", got)
}

func TestFormatNames_TwoNamesNoCommaBeforeAnd(t *testing.T) {
	node := csl.NamesNode{Variables: []string{"author"}, And: "text"}
	got := FormatNames(threeAuthors()[:2], node, testContext())
	assert.Equal(t, "Ada Smith and Ben Jones", got)
}

func TestFormatNames_Ampersand(t *testing.T) {
	node := csl.NamesNode{Variables: []string{"author"}, And: "symbol"}
	got := FormatNames(threeAuthors()[:2], node, testContext())
	assert.Equal(t, "Ada Smith & Ben Jones", got)
}

func TestFormatNames_ShortForm(t *testing.T) {
	node := csl.NamesNode{Variables: []string{"author"}, Form: csl.NameShort}
	got := FormatNames(threeAuthors()[:1], node, testContext())
	assert.Equal(t, "Smith", got)
}

func TestFormatNames_EtAlTruncation(t *testing.T) {
	node := csl.NamesNode{
		Variables:    []string{"author"},
		Form:         csl.NameShort,
		EtAlMin:      3,
		EtAlUseFirst: 1,
	}
	got := FormatNames(threeAuthors(), node, testContext())
	assert.Equal(t, "Smith et al.", got)
}

func TestFormatNames_BelowEtAlThreshold(t *testing.T) {
	node := csl.NamesNode{
		Variables:    []string{"author"},
		Form:         csl.NameShort,
		EtAlMin:      4,
		EtAlUseFirst: 1,
	}
	got := FormatNames(threeAuthors(), node, testContext())
	assert.Equal(t, "Smith, Jones, Young", got)
}

func TestFormatNames_AddNamesRaisesCutoff(t *testing.T) {
	node := csl.NamesNode{
		Variables:    []string{"author"},
		Form:         csl.NameShort,
		EtAlMin:      3,
		EtAlUseFirst: 1,
	}
	ctx := testContext()
	ctx.Level.AddNames = 2

	got := FormatNames(threeAuthors(), node, ctx)
	assert.Equal(t, "Smith, Jones et al.", got)

	// Raising past the list length removes the truncation entirely.
	ctx.Level.AddNames = 3
	got = FormatNames(threeAuthors(), node, ctx)
	assert.Equal(t, "Smith, Jones, Young", got)
}

func TestFormatNames_GivenNameDisambiguation(t *testing.T) {
	node := csl.NamesNode{Variables: []string{"author"}, Form: csl.NameShort}
	names := csl.Names{{Given: "Ada", Family: "Smith"}}

	ctx := testContext()
	ctx.Level.GivenNames = csl.GivenInitials
	assert.Equal(t, "A. Smith", FormatNames(names, node, ctx))

	ctx.Level.GivenNames = csl.GivenFull
	assert.Equal(t, "Ada Smith", FormatNames(names, node, ctx))
}

func TestFormatNames_SortOrder(t *testing.T) {
	node := csl.NamesNode{
		Variables: []string{"author"},
		Form:      csl.NameInitials,
		SortOrder: true,
	}
	names := csl.Names{{Given: "Ludwig", Family: "Beethoven", NonDropping: "van", Suffix: "Jr."}}

	got := FormatNames(names, node, testContext())
	assert.Equal(t, "van Beethoven, L., Jr.", got)
}

func TestFormatNames_Empty(t *testing.T) {
	node := csl.NamesNode{Variables: []string{"author"}}
	assert.Empty(t, FormatNames(nil, node, testContext()))
}
