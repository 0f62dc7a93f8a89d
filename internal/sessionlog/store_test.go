package sessionlog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibkit/bibkit/internal/csl"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	assert.NoError(t, second.Close())
}

func TestAppendEvent_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateSession(ctx, "tok", "author-year", "en-US"))

	ev1 := csl.CitationEvent{Seq: 1, Items: []csl.CiteItem{
		{EntryID: "alpha", Locator: "12", LocatorLabel: "page"},
	}}
	ev2 := csl.CitationEvent{Seq: 2, Items: []csl.CiteItem{
		{EntryID: "alpha"},
		{EntryID: "beta", Prefix: "cf. "},
	}}
	require.NoError(t, s.AppendEvent(ctx, "tok", ev1))
	require.NoError(t, s.AppendEvent(ctx, "tok", ev2))

	events, err := s.ReadEvents(ctx, "tok")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, ev1, events[0])
	assert.Equal(t, ev2, events[1])
}

func TestAppendEvent_DuplicateIsNoop(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateSession(ctx, "tok", "s", "en-US"))
	ev := csl.CitationEvent{Seq: 1, Items: []csl.CiteItem{{EntryID: "alpha"}}}

	require.NoError(t, s.AppendEvent(ctx, "tok", ev))
	require.NoError(t, s.AppendEvent(ctx, "tok", ev), "same event twice is idempotent")

	events, err := s.ReadEvents(ctx, "tok")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestAppendEvent_ConflictingSeqFails(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateSession(ctx, "tok", "s", "en-US"))
	require.NoError(t, s.AppendEvent(ctx, "tok",
		csl.CitationEvent{Seq: 1, Items: []csl.CiteItem{{EntryID: "alpha"}}}))

	err := s.AppendEvent(ctx, "tok",
		csl.CitationEvent{Seq: 1, Items: []csl.CiteItem{{EntryID: "beta"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "different event")
}

func TestReadSession_UnknownToken(t *testing.T) {
	s := openTestStore(t)

	_, err := s.ReadSession(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrNoSession)
}

func TestReadSession_LastSeq(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateSession(ctx, "tok", "author-year", "en-US"))

	info, err := s.ReadSession(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.LastSeq)
	assert.Equal(t, "author-year", info.StyleName)

	require.NoError(t, s.AppendEvent(ctx, "tok",
		csl.CitationEvent{Seq: 1, Items: []csl.CiteItem{{EntryID: "alpha"}}}))
	require.NoError(t, s.AppendEvent(ctx, "tok",
		csl.CitationEvent{Seq: 2, Items: []csl.CiteItem{{EntryID: "beta"}}}))

	info, err = s.ReadSession(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, int64(2), info.LastSeq)
}

func TestUpsertRender_ReplacesStaleText(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateSession(ctx, "tok", "s", "en-US"))

	var runs csl.Runs
	runs = runs.Append("(Smith, 2020)", csl.TagPlain)
	rc := csl.RenderedCitation{
		EntryIDs: []string{"alpha"},
		Seq:      1,
		Position: csl.PositionFirst,
		Runs:     runs,
	}
	require.NoError(t, s.UpsertRender(ctx, "tok", rc))

	var refreshed csl.Runs
	refreshed = refreshed.Append("(Smith, 2020a)", csl.TagPlain)
	rc.Runs = refreshed
	require.NoError(t, s.UpsertRender(ctx, "tok", rc))

	rows, err := s.Trace(ctx, TraceFilter{Session: "tok"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "(Smith, 2020a)", rows[0].Text)
}

func TestTrace_Filters(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateSession(ctx, "tok", "s", "en-US"))
	for seq, id := range map[int64]string{1: "alpha", 2: "beta", 3: "alpha"} {
		var runs csl.Runs
		runs = runs.Append(id, csl.TagPlain)
		require.NoError(t, s.UpsertRender(ctx, "tok", csl.RenderedCitation{
			EntryIDs: []string{id},
			Seq:      seq,
			Position: csl.PositionFirst,
			Runs:     runs,
		}))
	}

	byEntry, err := s.Trace(ctx, TraceFilter{Session: "tok", EntryID: "alpha"})
	require.NoError(t, err)
	require.Len(t, byEntry, 2)
	assert.Equal(t, int64(1), byEntry[0].Seq)
	assert.Equal(t, int64(3), byEntry[1].Seq)

	ranged, err := s.Trace(ctx, TraceFilter{Session: "tok", FromSeq: 2, ToSeq: 3})
	require.NoError(t, err)
	require.Len(t, ranged, 2)
	assert.Equal(t, int64(2), ranged[0].Seq)

	_, err = s.Trace(ctx, TraceFilter{})
	require.Error(t, err, "session is required")
}
