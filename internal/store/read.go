package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/rally/internal/ir"
)

// ErrMatchNotFound is returned when a match ID has no record.
var ErrMatchNotFound = errors.New("match not found")

// ListMatches returns every match in the journal, oldest first.
// Returns an empty slice (not nil) for an empty journal.
func (s *Store) ListMatches(ctx context.Context) ([]ir.MatchRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, rules, name_a, name_b
		FROM matches
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	matches := []ir.MatchRecord{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return matches, nil
}

// ReadMatch returns one match record, or ErrMatchNotFound.
func (s *Store) ReadMatch(ctx context.Context, id string) (ir.MatchRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, rules, name_a, name_b
		FROM matches
		WHERE id = ?
	`, id)

	m, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.MatchRecord{}, fmt.Errorf("%w: %s", ErrMatchNotFound, id)
	}
	return m, err
}

// ReadEvents returns a match's events in journal order:
// ORDER BY seq ASC, id ASC COLLATE BINARY.
// Returns an empty slice (not nil) if the match has no events.
func (s *Store) ReadEvents(ctx context.Context, matchID string) ([]ir.EventRecord, error) {
	return s.QueryEvents(ctx, EventQuery{MatchID: matchID})
}

// LastSeq returns the highest seq in the journal, or 0 when it is empty.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM events`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanMatch(sc scanner) (ir.MatchRecord, error) {
	var (
		m         ir.MatchRecord
		rulesJSON string
	)
	if err := sc.Scan(&m.ID, &m.Seq, &rulesJSON, &m.NameA, &m.NameB); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return m, err
		}
		return m, fmt.Errorf("scan match: %w", err)
	}

	r, err := unmarshalRules(rulesJSON)
	if err != nil {
		return m, fmt.Errorf("match %s: %w", m.ID, err)
	}
	m.Rules = r
	return m, nil
}

func scanEvent(sc scanner) (ir.EventRecord, error) {
	var (
		e           ir.EventRecord
		payloadJSON string
		stateJSON   string
	)
	err := sc.Scan(
		&e.ID,
		&e.MatchID,
		&e.Seq,
		&e.Kind,
		&payloadJSON,
		&e.Accepted,
		&e.Reason,
		&stateJSON,
		&e.StateHash,
	)
	if err != nil {
		return e, fmt.Errorf("scan event: %w", err)
	}

	if e.Payload, err = unmarshalPayload(payloadJSON); err != nil {
		return e, fmt.Errorf("event %s: %w", e.ID, err)
	}
	if e.State, err = unmarshalState(stateJSON); err != nil {
		return e, fmt.Errorf("event %s: %w", e.ID, err)
	}
	return e, nil
}
