package cite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibkit/bibkit/internal/csl"
	"github.com/bibkit/bibkit/internal/testutil"
)

func newDriver(t *testing.T, style *csl.Style) *Driver {
	t.Helper()
	d, err := New(testutil.SmithLibrary(t), style, csl.EnglishLocale(),
		WithTokenGenerator(NewFixedGenerator("session-1")))
	require.NoError(t, err)
	return d
}

func TestCite_UnknownEntryFailsWithoutStateChange(t *testing.T) {
	d := newDriver(t, testutil.AuthorYearStyle())

	_, err := d.Cite(csl.CiteItem{EntryID: "missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
	assert.Equal(t, int64(0), d.Clock().Current())
	assert.Empty(t, d.History())
}

func TestCite_FirstCitation(t *testing.T) {
	d := newDriver(t, testutil.AuthorYearStyle())

	res, err := d.Cite(csl.CiteItem{EntryID: "alpha"})
	require.NoError(t, err)

	assert.Equal(t, "(Smith, 2020)", res.Citation.Plain())
	assert.Equal(t, csl.PositionFirst, res.Citation.Position)
	assert.Equal(t, int64(1), res.Citation.Seq)
	assert.Empty(t, res.Reissued)
}

func TestCite_CollisionReissuesEarlierRender(t *testing.T) {
	// Scenario: Smith 2020 "Alpha" then Smith 2020 "Beta" under an
	// author-year style must become (Smith, 2020a) and (Smith, 2020b),
	// with the first render retroactively refreshed.
	d := newDriver(t, testutil.AuthorYearStyle())

	first, err := d.Cite(csl.CiteItem{EntryID: "alpha"})
	require.NoError(t, err)
	assert.Equal(t, "(Smith, 2020)", first.Citation.Plain())

	second, err := d.Cite(csl.CiteItem{EntryID: "beta"})
	require.NoError(t, err)
	assert.Equal(t, "(Smith, 2020b)", second.Citation.Plain())

	require.Len(t, second.Reissued, 1)
	assert.Equal(t, int64(1), second.Reissued[0].Seq)
	assert.Equal(t, "(Smith, 2020a)", second.Reissued[0].Plain())

	history := d.History()
	assert.Equal(t, "(Smith, 2020a)", history[0].Plain(), "history reflects the re-render")
}

func TestCite_NewcomerKeepsEarlierSuffixes(t *testing.T) {
	d := newDriver(t, testutil.AuthorYearStyle())

	_, err := d.Cite(csl.CiteItem{EntryID: "alpha"})
	require.NoError(t, err)
	_, err = d.Cite(csl.CiteItem{EntryID: "beta"})
	require.NoError(t, err)

	third, err := d.Cite(csl.CiteItem{EntryID: "gamma"})
	require.NoError(t, err)

	assert.Equal(t, "(Smith, 2020c)", third.Citation.Plain())
	assert.Empty(t, third.Reissued, "alpha and beta keep their letters untouched")

	history := d.History()
	assert.Equal(t, "(Smith, 2020a)", history[0].Plain())
	assert.Equal(t, "(Smith, 2020b)", history[1].Plain())
}

func TestCite_IbidRendersTerm(t *testing.T) {
	// Scenario: citing the same entry twice in a row with the same
	// locator under a note style yields the ibid term.
	d := newDriver(t, testutil.NoteStyle())

	first, err := d.Cite(csl.CiteItem{EntryID: "alpha", Locator: "12", LocatorLabel: "page"})
	require.NoError(t, err)
	assert.Equal(t, "Smith, Alpha, p. 12", first.Citation.Plain())

	second, err := d.Cite(csl.CiteItem{EntryID: "alpha", Locator: "12", LocatorLabel: "page"})
	require.NoError(t, err)
	assert.Equal(t, "Ibid.", second.Citation.Plain())
	assert.Equal(t, csl.PositionIbid, second.Citation.Position)
}

func TestCite_IbidWithChangedLocator(t *testing.T) {
	d := newDriver(t, testutil.NoteStyle())

	_, err := d.Cite(csl.CiteItem{EntryID: "alpha", Locator: "12", LocatorLabel: "page"})
	require.NoError(t, err)

	second, err := d.Cite(csl.CiteItem{EntryID: "alpha", Locator: "40", LocatorLabel: "page"})
	require.NoError(t, err)

	assert.Equal(t, csl.PositionIbidLocator, second.Citation.Position)
	// The ibid position condition still matches the locator variant.
	assert.Equal(t, "Ibid.", second.Citation.Plain())
}

func TestCite_NearNoteAndSubsequent(t *testing.T) {
	style := testutil.AuthorYearStyle()
	style.NearNoteDistance = 2
	d := newDriver(t, style)

	_, err := d.Cite(csl.CiteItem{EntryID: "alpha"})
	require.NoError(t, err)
	_, err = d.Cite(csl.CiteItem{EntryID: "jones"})
	require.NoError(t, err)

	// Distance 2 from the first alpha citation: within the near-note
	// window, not adjacent.
	near, err := d.Cite(csl.CiteItem{EntryID: "alpha"})
	require.NoError(t, err)
	assert.Equal(t, csl.PositionNearNote, near.Citation.Position)

	_, err = d.Cite(csl.CiteItem{EntryID: "jones"})
	require.NoError(t, err)
	_, err = d.Cite(csl.CiteItem{EntryID: "jones"})
	require.NoError(t, err)

	// Distance 3 now exceeds the window.
	far, err := d.Cite(csl.CiteItem{EntryID: "alpha"})
	require.NoError(t, err)
	assert.Equal(t, csl.PositionSubsequent, far.Citation.Position)
}

func TestCite_EmptyEventDoesNotBreakIbid(t *testing.T) {
	d := newDriver(t, testutil.NoteStyle())

	_, err := d.Cite(csl.CiteItem{EntryID: "alpha"})
	require.NoError(t, err)

	empty, err := d.Cite()
	require.NoError(t, err)
	assert.True(t, empty.Citation.Runs.Empty())

	second, err := d.Cite(csl.CiteItem{EntryID: "alpha"})
	require.NoError(t, err)
	assert.Equal(t, csl.PositionIbid, second.Citation.Position,
		"empty events do not count as the preceding citation")
}

func TestCite_ClusterJoinsItems(t *testing.T) {
	d := newDriver(t, testutil.AuthorYearStyle())

	res, err := d.Cite(
		csl.CiteItem{EntryID: "alpha"},
		csl.CiteItem{EntryID: "jones"},
	)
	require.NoError(t, err)
	assert.Equal(t, "(Smith, 2020; Jones, 2021)", res.Citation.Plain())
	assert.Equal(t, []string{"alpha", "jones"}, res.Citation.EntryIDs)
}

func TestCite_ItemAffixes(t *testing.T) {
	d := newDriver(t, testutil.AuthorYearStyle())

	res, err := d.Cite(csl.CiteItem{EntryID: "alpha", Prefix: "see ", Suffix: " for details"})
	require.NoError(t, err)
	assert.Equal(t, "(see Smith, 2020 for details)", res.Citation.Plain())
}

func TestCite_NumericStyleReusesFirstSeenNumber(t *testing.T) {
	style := &csl.Style{
		Name:    "numeric-test",
		Class:   csl.ClassInText,
		Numeric: true,
		Citation: csl.Layout{
			Formatting: csl.Formatting{Prefix: "[", Suffix: "]"},
			Children: []csl.Node{
				csl.TextNode{Variable: "citation-number", Formatting: csl.Formatting{Tag: csl.TagNumber}},
			},
		},
		Bibliography: csl.Layout{Children: []csl.Node{
			csl.TextNode{Variable: "title"},
		}},
	}
	d := newDriver(t, style)

	first, err := d.Cite(csl.CiteItem{EntryID: "alpha"})
	require.NoError(t, err)
	assert.Equal(t, "[1]", first.Citation.Plain())
	assert.Equal(t, 1, first.Citation.Number)

	second, err := d.Cite(csl.CiteItem{EntryID: "jones"})
	require.NoError(t, err)
	assert.Equal(t, "[2]", second.Citation.Plain())

	repeat, err := d.Cite(csl.CiteItem{EntryID: "alpha"})
	require.NoError(t, err)
	assert.Equal(t, "[1]", repeat.Citation.Plain(), "numbers are never reassigned")
}

func TestBibliography_SortedWithSuffixes(t *testing.T) {
	// Scenario: after (Smith, 2020a)/(Smith, 2020b), the bibliography
	// sorts by author then title and carries the assigned letters.
	d := newDriver(t, testutil.AuthorYearStyle())

	_, err := d.Cite(csl.CiteItem{EntryID: "beta"})
	require.NoError(t, err)
	_, err = d.Cite(csl.CiteItem{EntryID: "jones"})
	require.NoError(t, err)
	_, err = d.Cite(csl.CiteItem{EntryID: "alpha"})
	require.NoError(t, err)

	bib := d.Bibliography()
	require.Len(t, bib, 3)

	var lines []string
	for _, rc := range bib {
		lines = append(lines, rc.Plain())
	}
	assert.Equal(t, []string{
		"Jones (2021). Delta.",
		"Smith (2020b). Alpha.", // beta was cited first, so alpha holds "b"
		"Smith (2020a). Beta.",
	}, lines)
}

func TestEvents_RecordsDocumentOrder(t *testing.T) {
	d := newDriver(t, testutil.AuthorYearStyle())

	_, err := d.Cite(csl.CiteItem{EntryID: "alpha", Locator: "3", LocatorLabel: "page"})
	require.NoError(t, err)
	_, err = d.Cite(csl.CiteItem{EntryID: "jones"})
	require.NoError(t, err)

	events := d.Events()
	require.Len(t, events, 2)
	assert.Equal(t, int64(1), events[0].Seq)
	assert.Equal(t, "alpha", events[0].Items[0].EntryID)
	assert.Equal(t, "3", events[0].Items[0].Locator)
	assert.Equal(t, int64(2), events[1].Seq)
}

func TestDriver_FixedTokenGenerator(t *testing.T) {
	d := newDriver(t, testutil.AuthorYearStyle())
	assert.Equal(t, "session-1", d.Token())
}

func TestDriver_ReplayReproducesSession(t *testing.T) {
	d := newDriver(t, testutil.AuthorYearStyle())
	_, err := d.Cite(csl.CiteItem{EntryID: "alpha"})
	require.NoError(t, err)
	_, err = d.Cite(csl.CiteItem{EntryID: "beta"})
	require.NoError(t, err)

	fresh := newDriver(t, testutil.AuthorYearStyle())
	for _, ev := range d.Events() {
		_, err := fresh.Cite(ev.Items...)
		require.NoError(t, err)
	}

	assert.Equal(t, d.History(), fresh.History())
}
