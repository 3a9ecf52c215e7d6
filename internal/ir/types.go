package ir

import (
	"fmt"
	"strings"
)

// Side identifies one of the two competing parties in a match.
// The zero value is not a valid side; it is used to mean "absent"
// (e.g. no match winner yet).
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// ParseSide converts user input ("a", "B", ...) to a Side.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToUpper(strings.TrimSpace(s))) {
	case SideA:
		return SideA, nil
	case SideB:
		return SideB, nil
	}
	return "", fmt.Errorf("invalid side %q: must be A or B", s)
}

// Valid reports whether s is SideA or SideB.
func (s Side) Valid() bool {
	return s == SideA || s == SideB
}

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

// RuleSet is the scoring configuration of a match. Immutable per match.
type RuleSet struct {
	TargetScore int `json:"target_score"` // points needed to win a set (with margin)
	MaxScore    int `json:"max_score"`    // hard cap: reaching it wins the set outright
	WinBy       int `json:"win_by"`       // required margin at or above TargetScore
}

// SetResult records a completed set. Never mutated after creation.
type SetResult struct {
	ScoreA int  `json:"score_a"`
	ScoreB int  `json:"score_b"`
	Winner Side `json:"winner"`
}

// MatchState is the full scoring state of a match.
//
// INVARIANTS (hold after every engine transition):
//   - SetsA + SetsB == len(CompletedSets)
//   - Winner present => exactly one of SetsA, SetsB equals 2
//   - CurrentSet == len(CompletedSets)+1 while Winner is absent
//   - scores are never negative
type MatchState struct {
	ScoreA        int         `json:"score_a"`
	ScoreB        int         `json:"score_b"`
	SetsA         int         `json:"sets_a"`
	SetsB         int         `json:"sets_b"`
	CurrentSet    int         `json:"current_set"`
	CompletedSets []SetResult `json:"completed_sets"`
	Serving       Side        `json:"serving"`
	Winner        Side        `json:"winner,omitempty"` // empty until a side wins 2 sets
}

// Score returns the live score of side in the current set.
func (s MatchState) Score(side Side) int {
	if side == SideA {
		return s.ScoreA
	}
	return s.ScoreB
}

// SetsWon returns how many sets side has won.
func (s MatchState) SetsWon(side Side) int {
	if side == SideA {
		return s.SetsA
	}
	return s.SetsB
}

// Finished reports whether a match winner has been decided.
func (s MatchState) Finished() bool {
	return s.Winner != ""
}

// Clone returns a deep copy; the copy shares no memory with s.
func (s MatchState) Clone() MatchState {
	c := s
	c.CompletedSets = make([]SetResult, len(s.CompletedSets))
	copy(c.CompletedSets, s.CompletedSets)
	return c
}

// Equal compares two states by content. A nil and an empty
// CompletedSets sequence are equal.
func (s MatchState) Equal(o MatchState) bool {
	if s.ScoreA != o.ScoreA || s.ScoreB != o.ScoreB ||
		s.SetsA != o.SetsA || s.SetsB != o.SetsB ||
		s.CurrentSet != o.CurrentSet ||
		s.Serving != o.Serving || s.Winner != o.Winner {
		return false
	}
	if len(s.CompletedSets) != len(o.CompletedSets) {
		return false
	}
	for i := range s.CompletedSets {
		if s.CompletedSets[i] != o.CompletedSets[i] {
			return false
		}
	}
	return true
}

// Match pairs the current state with its undo history.
// History holds value snapshots taken immediately before each accepted
// score-changing event, oldest first. Snapshots never carry history.
type Match struct {
	State   MatchState   `json:"state"`
	History []MatchState `json:"history"`
}

// CanUndo reports whether at least one snapshot is available.
func (m Match) CanUndo() bool {
	return len(m.History) > 0
}

// Clone returns a deep copy of the match, including every snapshot.
func (m Match) Clone() Match {
	c := Match{
		State:   m.State.Clone(),
		History: make([]MatchState, len(m.History)),
	}
	for i, snap := range m.History {
		c.History[i] = snap.Clone()
	}
	return c
}
