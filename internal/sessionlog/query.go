package sessionlog

import (
	"context"
	"fmt"
	"strings"
)

// TraceFilter selects render rows for the trace command. Zero fields are
// unconstrained; Session is required.
type TraceFilter struct {
	Session string
	EntryID string // match renders citing this entry
	FromSeq int64  // inclusive, 0 = open
	ToSeq   int64  // inclusive, 0 = open
}

// TraceRow is one rendered citation as persisted.
type TraceRow struct {
	Seq      int64
	Position string
	EntryIDs string // JSON array as stored
	Text     string
}

// compile turns a filter into parameterized SQL. Values are always
// bound, never interpolated, and every query orders by seq so trace
// output is deterministic.
func (f TraceFilter) compile() (string, []any, error) {
	if f.Session == "" {
		return "", nil, fmt.Errorf("trace filter: session is required")
	}

	clauses := []string{"session = ?"}
	params := []any{f.Session}

	if f.EntryID != "" {
		// entry_ids is a JSON array of strings; match the quoted id.
		clauses = append(clauses, "instr(entry_ids, ?) > 0")
		params = append(params, `"`+f.EntryID+`"`)
	}
	if f.FromSeq > 0 {
		clauses = append(clauses, "seq >= ?")
		params = append(params, f.FromSeq)
	}
	if f.ToSeq > 0 {
		clauses = append(clauses, "seq <= ?")
		params = append(params, f.ToSeq)
	}

	query := "SELECT seq, position, entry_ids, text FROM renders WHERE " +
		strings.Join(clauses, " AND ") +
		" ORDER BY seq ASC"
	return query, params, nil
}

// Trace returns the persisted renders matching the filter, in seq order.
func (s *Store) Trace(ctx context.Context, f TraceFilter) ([]TraceRow, error) {
	query, params, err := f.compile()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("trace query: %w", err)
	}
	defer rows.Close()

	var out []TraceRow
	for rows.Next() {
		var row TraceRow
		if err := rows.Scan(&row.Seq, &row.Position, &row.EntryIDs, &row.Text); err != nil {
			return nil, fmt.Errorf("trace query: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
