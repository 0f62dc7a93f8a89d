package sessionlog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibkit/bibkit/internal/cite"
	"github.com/bibkit/bibkit/internal/csl"
	"github.com/bibkit/bibkit/internal/testutil"
)

func replayFixtures(t *testing.T) (*csl.Library, *csl.Style, *csl.Locale) {
	t.Helper()
	return testutil.SmithLibrary(t), testutil.AuthorYearStyle(), csl.EnglishLocale()
}

func TestReplay_ReproducesHistory(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	lib, style, locale := replayFixtures(t)

	// Record a live session including a retroactive re-render.
	live, err := cite.New(lib, style, locale,
		cite.WithTokenGenerator(cite.NewFixedGenerator("tok")))
	require.NoError(t, err)

	require.NoError(t, s.CreateSession(ctx, live.Token(), style.Name, locale.Code))
	for _, items := range [][]csl.CiteItem{
		{{EntryID: "alpha"}},
		{{EntryID: "beta"}},
		{{EntryID: "alpha", Locator: "4", LocatorLabel: "page"}},
	} {
		res, err := live.Cite(items...)
		require.NoError(t, err)
		require.NoError(t, s.AppendEvent(ctx, live.Token(), csl.CitationEvent{Seq: res.Citation.Seq, Items: items}))
		require.NoError(t, s.UpsertRender(ctx, live.Token(), res.Citation))
		for _, rc := range res.Reissued {
			require.NoError(t, s.UpsertRender(ctx, live.Token(), rc))
		}
	}

	replayed, err := Replay(ctx, s, "tok", lib, style, locale)
	require.NoError(t, err)

	assert.Equal(t, live.History(), replayed.History())
	assert.Equal(t, live.Bibliography(), replayed.Bibliography())

	// The persisted render text matches the replayed history after the
	// retroactive refresh.
	rows, err := s.Trace(ctx, TraceFilter{Session: "tok"})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "(Smith, 2020a)", rows[0].Text)
	assert.Equal(t, "(Smith, 2020b)", rows[1].Text)
}

func TestReplay_UnknownSession(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	defer s.Close()

	lib, style, locale := replayFixtures(t)
	_, err = Replay(context.Background(), s, "ghost", lib, style, locale)
	require.ErrorIs(t, err, ErrNoSession)
}
