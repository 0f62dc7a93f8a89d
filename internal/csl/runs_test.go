package csl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuns_AppendMergesSameTag(t *testing.T) {
	var rs Runs
	rs = rs.Append("Smith", TagAuthor)
	rs = rs.Append(", ", TagPunctuation)
	rs = rs.Append("20", TagYear)
	rs = rs.Append("20", TagYear)

	require.Len(t, rs, 3)
	assert.Equal(t, "2020", rs[2].Text)
	assert.Equal(t, "Smith, 2020", rs.String())
}

func TestRuns_AppendSkipsEmptyText(t *testing.T) {
	var rs Runs
	rs = rs.Append("", TagAuthor)
	assert.Empty(t, rs)
	assert.True(t, rs.Empty())
}

func TestRuns_Retag(t *testing.T) {
	rs := Runs{{Text: "12", Tag: TagPlain}, {Text: "p.", Tag: TagPunctuation}}
	out := rs.Retag(TagLocator)

	assert.Equal(t, TagLocator, out[0].Tag)
	assert.Equal(t, TagPunctuation, out[1].Tag, "specific tags are kept")
	assert.Equal(t, TagPlain, rs[0].Tag, "input is not mutated")
}

func TestFingerprint_IgnoresTags(t *testing.T) {
	a := Runs{{Text: "Smith 2020", Tag: TagAuthor}}
	b := Runs{{Text: "Smith ", Tag: TagAuthor}, {Text: "2020", Tag: TagYear}}

	assert.Equal(t, Fingerprint(a), Fingerprint(b),
		"fingerprints compare visible text only")
}

func TestFingerprint_NormalizesNFC(t *testing.T) {
	decomposed := Runs{{Text: "Müller"}} // u + combining diaeresis
	precomposed := Runs{{Text: "Müller"}}

	assert.Equal(t, Fingerprint(precomposed), Fingerprint(decomposed))
}

func TestEventID_Deterministic(t *testing.T) {
	ev := CitationEvent{Seq: 3, Items: []CiteItem{{EntryID: "e1", Locator: "12"}}}

	assert.Equal(t, EventID(ev), EventID(ev))

	other := CitationEvent{Seq: 3, Items: []CiteItem{{EntryID: "e1", Locator: "13"}}}
	assert.NotEqual(t, EventID(ev), EventID(other))
}

func TestCitationEvent_SameEntriesAndLocators(t *testing.T) {
	a := CitationEvent{Items: []CiteItem{{EntryID: "e1", Locator: "12"}}}
	b := CitationEvent{Items: []CiteItem{{EntryID: "e1", Locator: "12"}}}
	c := CitationEvent{Items: []CiteItem{{EntryID: "e1", Locator: "99"}}}
	d := CitationEvent{Items: []CiteItem{{EntryID: "e2", Locator: "12"}}}

	assert.True(t, a.SameEntries(b))
	assert.True(t, a.SameLocators(b))
	assert.True(t, a.SameEntries(c))
	assert.False(t, a.SameLocators(c))
	assert.False(t, a.SameEntries(d))
}
