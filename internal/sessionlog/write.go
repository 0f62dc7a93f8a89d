package sessionlog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bibkit/bibkit/internal/csl"
)

// CreateSession registers a session token with the style and locale it
// was opened under. Idempotent for the same token.
func (s *Store) CreateSession(ctx context.Context, token, styleName, locale string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, style_name, locale)
		VALUES (?, ?, ?)
		ON CONFLICT(token) DO NOTHING
	`, token, styleName, locale)
	if err != nil {
		return fmt.Errorf("create session %s: %w", token, err)
	}
	return nil
}

// AppendEvent appends one citation event under (session, seq).
// Re-appending the same event is a no-op; appending a different event at
// an occupied seq is a corruption error, not an overwrite.
func (s *Store) AppendEvent(ctx context.Context, session string, ev csl.CitationEvent) error {
	items, err := json.Marshal(ev.Items)
	if err != nil {
		return fmt.Errorf("append event: marshal items: %w", err)
	}
	id := csl.EventID(ev)

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO events (session, seq, id, items)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session, seq) DO NOTHING
	`, session, ev.Seq, id, string(items))
	if err != nil {
		return fmt.Errorf("append event seq %d: %w", ev.Seq, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var existing string
		err := s.db.QueryRowContext(ctx,
			`SELECT id FROM events WHERE session = ? AND seq = ?`,
			session, ev.Seq,
		).Scan(&existing)
		if err != nil {
			return fmt.Errorf("append event seq %d: verify existing: %w", ev.Seq, err)
		}
		if existing != id {
			return fmt.Errorf("append event seq %d: log already holds a different event (%s != %s)", ev.Seq, existing, id)
		}
	}
	return nil
}

// UpsertRender stores the current text of one rendered citation. Called
// again after a retroactive re-render, replacing the stale text.
func (s *Store) UpsertRender(ctx context.Context, session string, rc csl.RenderedCitation) error {
	ids, err := json.Marshal(rc.EntryIDs)
	if err != nil {
		return fmt.Errorf("upsert render: marshal entry ids: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO renders (session, seq, position, entry_ids, text)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session, seq) DO UPDATE SET
			position = excluded.position,
			entry_ids = excluded.entry_ids,
			text = excluded.text
	`, session, rc.Seq, string(rc.Position), string(ids), rc.Plain())
	if err != nil {
		return fmt.Errorf("upsert render seq %d: %w", rc.Seq, err)
	}
	return nil
}
