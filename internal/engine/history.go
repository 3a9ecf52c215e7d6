package engine

import "github.com/roach88/rally/internal/ir"

// Reset returns a fresh match with empty history.
//
// The rule set is not part of the match; callers keep whichever rules are
// in force across a reset.
func Reset() ir.Match {
	return ir.Match{
		State:   NewState(),
		History: []ir.MatchState{},
	}
}

// Undo restores the most recent snapshot. An empty history is a no-op.
func Undo(m ir.Match) ir.Match {
	if !m.CanUndo() {
		return m
	}
	last := len(m.History) - 1
	return ir.Match{
		State:   m.History[last].Clone(),
		History: cloneHistory(m.History[:last]),
	}
}

// push returns a copy of m.History with m.State appended.
// The input history is never aliased by the result.
func push(m ir.Match) []ir.MatchState {
	h := make([]ir.MatchState, len(m.History), len(m.History)+1)
	copy(h, m.History)
	return append(h, m.State.Clone())
}

func cloneHistory(h []ir.MatchState) []ir.MatchState {
	out := make([]ir.MatchState, len(h))
	copy(out, h)
	return out
}
