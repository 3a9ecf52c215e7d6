package engine

import "github.com/roach88/rally/internal/ir"

// SetsToWin is the number of sets a side needs to take the match.
const SetsToWin = 2

// DefaultServer serves the first rally of a fresh match.
const DefaultServer = ir.SideA

// NewState returns the initial match state: 0-0 in set 1, side A serving.
func NewState() ir.MatchState {
	return ir.MatchState{
		CurrentSet:    1,
		CompletedSets: []ir.SetResult{},
		Serving:       DefaultServer,
	}
}

// ApplyPoint awards one rally to side and returns the resulting state.
//
// A finished match or an invalid side leaves the state untouched. The set
// check runs after the increment: target plus margin first, then the hard
// cap by exact equality.
func ApplyPoint(s ir.MatchState, side ir.Side, r ir.RuleSet) ir.MatchState {
	if s.Finished() || !side.Valid() {
		return s
	}

	next := s.Clone()
	if side == ir.SideA {
		next.ScoreA++
	} else {
		next.ScoreB++
	}
	next.Serving = side

	if !wonSet(next, side, r) {
		return next
	}

	next.CompletedSets = append(next.CompletedSets, ir.SetResult{
		ScoreA: next.ScoreA,
		ScoreB: next.ScoreB,
		Winner: side,
	})
	if side == ir.SideA {
		next.SetsA++
	} else {
		next.SetsB++
	}

	if next.SetsWon(side) >= SetsToWin {
		// Final scores stay on the board and CurrentSet stays put.
		next.Winner = side
		return next
	}

	next.ScoreA, next.ScoreB = 0, 0
	next.CurrentSet++
	return next
}

// ApplyDecrement takes one point back from side in the current set.
// It never reverses a completed set: a finished match or a zero score
// leaves the state untouched.
func ApplyDecrement(s ir.MatchState, side ir.Side) ir.MatchState {
	if !CanDecrement(s, side) {
		return s
	}

	next := s.Clone()
	if side == ir.SideA {
		next.ScoreA--
	} else {
		next.ScoreB--
	}
	return next
}

// CanDecrement reports whether ApplyDecrement would change s.
func CanDecrement(s ir.MatchState, side ir.Side) bool {
	return !s.Finished() && side.Valid() && s.Score(side) > 0
}

func wonSet(s ir.MatchState, side ir.Side, r ir.RuleSet) bool {
	score := s.Score(side)
	if score >= r.TargetScore && abs(s.ScoreA-s.ScoreB) >= r.WinBy {
		return true
	}
	return score == r.MaxScore
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
