package sessionlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bibkit/bibkit/internal/csl"
)

// ErrNoSession reports an unknown session token.
var ErrNoSession = errors.New("session not found")

// SessionInfo describes one persisted session.
type SessionInfo struct {
	Token     string
	StyleName string
	Locale    string
	LastSeq   int64
}

// ReadSession returns a session's metadata and its last event position.
func (s *Store) ReadSession(ctx context.Context, token string) (SessionInfo, error) {
	info := SessionInfo{Token: token}
	err := s.db.QueryRowContext(ctx,
		`SELECT style_name, locale FROM sessions WHERE token = ?`, token,
	).Scan(&info.StyleName, &info.Locale)
	if errors.Is(err, sql.ErrNoRows) {
		return info, fmt.Errorf("%w: %s", ErrNoSession, token)
	}
	if err != nil {
		return info, fmt.Errorf("read session %s: %w", token, err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) FROM events WHERE session = ?`, token,
	).Scan(&info.LastSeq)
	if err != nil {
		return info, fmt.Errorf("read session %s: last seq: %w", token, err)
	}
	return info, nil
}

// Sessions lists all persisted sessions, oldest first.
func (s *Store) Sessions(ctx context.Context) ([]SessionInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT token, style_name, locale FROM sessions ORDER BY created_at ASC, token ASC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionInfo
	for rows.Next() {
		var info SessionInfo
		if err := rows.Scan(&info.Token, &info.StyleName, &info.Locale); err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// ReadEvents returns a session's citation events in seq order.
func (s *Store) ReadEvents(ctx context.Context, session string) ([]csl.CitationEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, items FROM events WHERE session = ? ORDER BY seq ASC`, session)
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	defer rows.Close()

	var out []csl.CitationEvent
	for rows.Next() {
		var ev csl.CitationEvent
		var items string
		if err := rows.Scan(&ev.Seq, &items); err != nil {
			return nil, fmt.Errorf("read events: %w", err)
		}
		if err := json.Unmarshal([]byte(items), &ev.Items); err != nil {
			return nil, fmt.Errorf("read events: seq %d: %w", ev.Seq, err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
