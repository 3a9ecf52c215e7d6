package store

import (
	"context"
	"fmt"

	"github.com/roach88/rally/internal/engine"
	"github.com/roach88/rally/internal/ir"
)

// Divergence is a journaled event whose replay did not reproduce the
// recorded result.
type Divergence struct {
	Seq          int64  `json:"seq"`
	Kind         string `json:"kind"`
	ExpectedHash string `json:"expected_hash"`
	ActualHash   string `json:"actual_hash"`
	Accepted     bool   `json:"accepted"`          // recorded
	Replayed     bool   `json:"replayed_accepted"` // recomputed
}

// ReplayResult is the outcome of replaying one match from its journal.
type ReplayResult struct {
	MatchID     string        `json:"match_id"`
	Events      int           `json:"events"`
	Final       ir.MatchState `json:"final_state"`
	Rules       ir.RuleSet    `json:"rules"`
	Divergences []Divergence  `json:"divergences"`
}

// OK reports whether every event replayed to its recorded state.
func (r ReplayResult) OK() bool {
	return len(r.Divergences) == 0
}

// ReplayMatch re-applies a match's journaled events through the engine,
// starting from a fresh match under the rules the match was recorded with,
// and compares each recomputed state hash and accepted flag with the
// journal.
func (s *Store) ReplayMatch(ctx context.Context, matchID string) (ReplayResult, error) {
	rec, err := s.ReadMatch(ctx, matchID)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay: %w", err)
	}

	events, err := s.ReadEvents(ctx, matchID)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay %s: %w", matchID, err)
	}

	res := ReplayResult{
		MatchID:     matchID,
		Events:      len(events),
		Divergences: []Divergence{},
	}

	m := engine.Reset()
	r := rec.Rules
	for _, e := range events {
		ev, err := engine.ParseEvent(e.Kind, e.Payload)
		if err != nil {
			return ReplayResult{}, fmt.Errorf("replay %s seq %d: %w", matchID, e.Seq, err)
		}

		var out engine.Outcome
		m, r, out = engine.Dispatch(m, ev, r)

		hash, err := ir.StateHash(m.State)
		if err != nil {
			return ReplayResult{}, fmt.Errorf("replay %s seq %d: %w", matchID, e.Seq, err)
		}

		if hash != e.StateHash || out.Accepted != e.Accepted {
			res.Divergences = append(res.Divergences, Divergence{
				Seq:          e.Seq,
				Kind:         e.Kind,
				ExpectedHash: e.StateHash,
				ActualHash:   hash,
				Accepted:     e.Accepted,
				Replayed:     out.Accepted,
			})
		}
	}

	res.Final = m.State
	res.Rules = r
	return res, nil
}

// ReplayAll replays every match in the journal, oldest first.
func (s *Store) ReplayAll(ctx context.Context) ([]ReplayResult, error) {
	matches, err := s.ListMatches(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]ReplayResult, 0, len(matches))
	for _, m := range matches {
		res, err := s.ReplayMatch(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}
