package sessionlog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bibkit/bibkit/internal/cite"
	"github.com/bibkit/bibkit/internal/csl"
)

// Replay feeds a session's persisted events through a fresh driver and
// returns it, with history, disambiguation state, and numbering
// reconstructed exactly as the original run produced them.
//
// Replay verifies that the fresh driver stamps each event at its
// recorded seq; a mismatch means the log is not a contiguous session
// and replay stops rather than diverge silently.
func Replay(ctx context.Context, s *Store, token string, lib *csl.Library, style *csl.Style, locale *csl.Locale) (*cite.Driver, error) {
	if _, err := s.ReadSession(ctx, token); err != nil {
		return nil, err
	}

	events, err := s.ReadEvents(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", token, err)
	}

	driver, err := cite.New(lib, style, locale,
		cite.WithTokenGenerator(cite.NewFixedGenerator(token)))
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", token, err)
	}

	for _, ev := range events {
		res, err := driver.Cite(ev.Items...)
		if err != nil {
			return nil, fmt.Errorf("replay %s: seq %d: %w", token, ev.Seq, err)
		}
		if res.Citation.Seq != ev.Seq {
			return nil, fmt.Errorf("replay %s: event gap: replayed seq %d, log holds %d", token, res.Citation.Seq, ev.Seq)
		}
	}

	slog.Info("session replayed",
		"session", token,
		"events", len(events),
	)
	return driver, nil
}
