package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/rally/internal/ir"
)

// EventQuery selects journaled events. Zero fields do not filter.
type EventQuery struct {
	MatchID  string
	Kinds    []string
	Accepted *bool
	Reason   string
	AfterSeq int64 // only events with seq > AfterSeq
	Limit    int
}

// eventColumns is the column list scanEvent expects.
const eventColumns = "id, match_id, seq, kind, payload, accepted, reason, state, state_hash"

// compile renders q as parameterized SQL. Values are always bound, never
// interpolated, and every query carries the journal order
// (seq, then id by byte order) so results are deterministic.
func (q EventQuery) compile() (string, []any) {
	var (
		where  []string
		params []any
	)

	if q.MatchID != "" {
		where = append(where, "match_id = ?")
		params = append(params, q.MatchID)
	}
	if len(q.Kinds) > 0 {
		marks := strings.TrimSuffix(strings.Repeat("?, ", len(q.Kinds)), ", ")
		where = append(where, "kind IN ("+marks+")")
		for _, k := range q.Kinds {
			params = append(params, k)
		}
	}
	if q.Accepted != nil {
		where = append(where, "accepted = ?")
		params = append(params, *q.Accepted)
	}
	if q.Reason != "" {
		where = append(where, "reason = ?")
		params = append(params, q.Reason)
	}
	if q.AfterSeq > 0 {
		where = append(where, "seq > ?")
		params = append(params, q.AfterSeq)
	}

	var b strings.Builder
	b.WriteString("SELECT " + eventColumns + " FROM events")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY seq ASC, id COLLATE BINARY ASC")
	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		params = append(params, q.Limit)
	}
	return b.String(), params
}

// QueryEvents returns the events matching q in journal order.
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) QueryEvents(ctx context.Context, q EventQuery) ([]ir.EventRecord, error) {
	query, params := q.compile()

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []ir.EventRecord{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}
