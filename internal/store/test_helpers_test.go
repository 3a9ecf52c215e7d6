package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/rally/internal/engine"
	"github.com/roach88/rally/internal/ir"
	"github.com/roach88/rally/internal/session"
	"github.com/roach88/rally/internal/testutil"
)

// createTestStore opens a file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// newJournaledSession returns a session writing to s with fixed IDs.
func newJournaledSession(s *Store, ids ...string) *session.Session {
	return session.New(
		session.WithRecorder(s),
		session.WithClock(testutil.NewDeterministicClock()),
		session.WithMatchIDGenerator(engine.NewFixedGenerator(ids...)),
	)
}

func testMatch(id string, seq int64) ir.MatchRecord {
	return ir.MatchRecord{
		ID:    id,
		Seq:   seq,
		Rules: ir.RuleSet{TargetScore: 21, MaxScore: 30, WinBy: 2},
		NameA: "HOME",
		NameB: "GUEST",
	}
}

func testEvent(t *testing.T, matchID string, seq int64, ev engine.Event, st ir.MatchState) ir.EventRecord {
	t.Helper()
	id, err := ir.EventID(matchID, seq, string(ev.Kind), ev.Payload())
	require.NoError(t, err)
	return ir.EventRecord{
		ID:        id,
		MatchID:   matchID,
		Seq:       seq,
		Kind:      string(ev.Kind),
		Payload:   ev.Payload(),
		Accepted:  true,
		State:     st,
		StateHash: ir.MustStateHash(st),
	}
}
