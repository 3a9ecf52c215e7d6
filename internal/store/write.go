package store

import (
	"context"
	"fmt"

	"github.com/roach88/rally/internal/ir"
)

// WriteMatch inserts a match record.
// Uses ON CONFLICT(id) DO NOTHING: a session that reuses a match ID keeps
// the first record, which holds the rules the match started under.
func (s *Store) WriteMatch(ctx context.Context, m ir.MatchRecord) error {
	rulesJSON, err := marshalRules(m.Rules)
	if err != nil {
		return fmt.Errorf("write match: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO matches (id, seq, rules, name_a, name_b)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, m.ID, m.Seq, rulesJSON, m.NameA, m.NameB)
	if err != nil {
		return fmt.Errorf("write match: %w", err)
	}
	return nil
}

// WriteEvent inserts an event record. Duplicate IDs are ignored.
//
// The match referenced by MatchID must already exist (foreign key).
func (s *Store) WriteEvent(ctx context.Context, e ir.EventRecord) error {
	payloadJSON, err := marshalPayload(e.Payload)
	if err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	stateJSON, err := marshalState(e.State)
	if err != nil {
		return fmt.Errorf("write event: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO events
		(id, match_id, seq, kind, payload, accepted, reason, state, state_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		e.ID,
		e.MatchID,
		e.Seq,
		e.Kind,
		payloadJSON,
		e.Accepted,
		e.Reason,
		stateJSON,
		e.StateHash,
	)
	if err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}
