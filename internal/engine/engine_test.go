package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rally/internal/ir"
	"github.com/roach88/rally/internal/rules"
	"github.com/roach88/rally/internal/testutil"
)

var std = rules.MustForTarget(21)

// play applies every rally through ApplyPoint and checks the set counter
// invariant after each one.
func play(t *testing.T, s ir.MatchState, r ir.RuleSet, sides []ir.Side) ir.MatchState {
	t.Helper()
	for i, side := range sides {
		s = ApplyPoint(s, side, r)
		require.Equal(t, s.SetsA+s.SetsB, len(s.CompletedSets), "rally %d", i)
	}
	return s
}

func TestNewState(t *testing.T) {
	s := NewState()
	assert.Equal(t, 0, s.ScoreA)
	assert.Equal(t, 0, s.ScoreB)
	assert.Equal(t, 1, s.CurrentSet)
	assert.Equal(t, ir.SideA, s.Serving)
	assert.Empty(t, s.CompletedSets)
	assert.False(t, s.Finished())
}

func TestApplyPoint_ServeFollowsPointWinner(t *testing.T) {
	s := ApplyPoint(NewState(), ir.SideB, std)
	assert.Equal(t, 1, s.ScoreB)
	assert.Equal(t, ir.SideB, s.Serving)

	s = ApplyPoint(s, ir.SideA, std)
	assert.Equal(t, ir.SideA, s.Serving)
}

func TestApplyPoint_DoesNotMutateInput(t *testing.T) {
	before := play(t, NewState(), std, testutil.Points(ir.SideA, 20))
	snapshot := before.Clone()

	after := ApplyPoint(before, ir.SideA, std)
	require.Len(t, after.CompletedSets, 1)

	assert.True(t, before.Equal(snapshot), "input state changed")
}

func TestApplyPoint_StraightSet(t *testing.T) {
	s := play(t, NewState(), std, testutil.Points(ir.SideA, 21))

	require.Len(t, s.CompletedSets, 1)
	assert.Equal(t, ir.SetResult{ScoreA: 21, ScoreB: 0, Winner: ir.SideA}, s.CompletedSets[0])
	assert.Equal(t, 1, s.SetsA)
	assert.Equal(t, 0, s.ScoreA)
	assert.Equal(t, 0, s.ScoreB)
	assert.Equal(t, 2, s.CurrentSet)
	assert.Equal(t, ir.SideA, s.Serving)
	assert.False(t, s.Finished())
}

func TestApplyPoint_TargetWithoutMarginContinues(t *testing.T) {
	s := play(t, NewState(), std, testutil.Deuce(20))
	s = ApplyPoint(s, ir.SideA, std)

	assert.Equal(t, 21, s.ScoreA)
	assert.Equal(t, 20, s.ScoreB)
	assert.Empty(t, s.CompletedSets)
}

func TestApplyPoint_DeuceWonByTwo(t *testing.T) {
	s := play(t, NewState(), std, testutil.Concat(testutil.Deuce(20), testutil.Rallies("AA")))

	require.Len(t, s.CompletedSets, 1)
	assert.Equal(t, ir.SetResult{ScoreA: 22, ScoreB: 20, Winner: ir.SideA}, s.CompletedSets[0])
	assert.Equal(t, 2, s.CurrentSet)
}

func TestApplyPoint_HardCapWinsByOne(t *testing.T) {
	s := play(t, NewState(), std, testutil.Concat(testutil.Deuce(29), testutil.Rallies("B")))

	require.Len(t, s.CompletedSets, 1)
	assert.Equal(t, ir.SetResult{ScoreA: 29, ScoreB: 30, Winner: ir.SideB}, s.CompletedSets[0])
	assert.Equal(t, 1, s.SetsB)
}

func TestApplyPoint_ShortGameCap(t *testing.T) {
	short := rules.MustForTarget(11)
	s := play(t, NewState(), short, testutil.Concat(testutil.Deuce(14), testutil.Rallies("A")))

	require.Len(t, s.CompletedSets, 1)
	assert.Equal(t, ir.SetResult{ScoreA: 15, ScoreB: 14, Winner: ir.SideA}, s.CompletedSets[0])
}

func TestApplyPoint_CapUsesExactEquality(t *testing.T) {
	// A score already past the cap can only come from a hand-built state,
	// but it pins down that the cap check is == and not >=.
	s := NewState()
	s.ScoreA = 3
	r := ir.RuleSet{TargetScore: 10, MaxScore: 3, WinBy: 2}

	next := ApplyPoint(s, ir.SideA, r)
	assert.Equal(t, 4, next.ScoreA)
	assert.Empty(t, next.CompletedSets)

	s.ScoreA = 2
	next = ApplyPoint(s, ir.SideA, r)
	assert.Len(t, next.CompletedSets, 1, "reaching the cap exactly wins")
}

func TestApplyPoint_MatchWonInThreeSets(t *testing.T) {
	s := play(t, NewState(), std, testutil.Concat(
		testutil.Points(ir.SideA, 21),
		testutil.Points(ir.SideB, 21),
		testutil.Points(ir.SideA, 21),
	))

	assert.Equal(t, ir.SideA, s.Winner)
	assert.Equal(t, 2, s.SetsA)
	assert.Equal(t, 1, s.SetsB)
	assert.Len(t, s.CompletedSets, 3)
	assert.Equal(t, 3, s.CurrentSet, "no fourth set is started")
	assert.Equal(t, 21, s.ScoreA, "final scores stay visible")
	assert.Equal(t, 0, s.ScoreB)
}

func TestApplyPoint_MatchWonInStraightSets(t *testing.T) {
	s := play(t, NewState(), std, testutil.Points(ir.SideB, 42))

	assert.Equal(t, ir.SideB, s.Winner)
	assert.Equal(t, 2, s.SetsB)
	assert.Equal(t, 2, s.CurrentSet)
	assert.Len(t, s.CompletedSets, 2)
}

func TestApplyPoint_FrozenAfterMatch(t *testing.T) {
	s := play(t, NewState(), std, testutil.Points(ir.SideA, 42))
	require.True(t, s.Finished())

	for _, side := range []ir.Side{ir.SideA, ir.SideB} {
		next := ApplyPoint(s, side, std)
		assert.True(t, next.Equal(s), "point for %s changed a finished match", side)
	}
}

func TestApplyPoint_InvalidSideIsNoOp(t *testing.T) {
	s := NewState()
	assert.True(t, ApplyPoint(s, ir.Side("C"), std).Equal(s))
	assert.True(t, ApplyPoint(s, "", std).Equal(s))
}

func TestApplyDecrement(t *testing.T) {
	s := play(t, NewState(), std, testutil.Rallies("AAB"))

	s = ApplyDecrement(s, ir.SideA)
	assert.Equal(t, 1, s.ScoreA)
	assert.Equal(t, 1, s.ScoreB)
	assert.Equal(t, ir.SideB, s.Serving, "decrement leaves the server alone")
}

func TestApplyDecrement_ZeroIsNoOp(t *testing.T) {
	s := NewState()
	assert.True(t, ApplyDecrement(s, ir.SideA).Equal(s))
	assert.True(t, ApplyDecrement(s, ir.SideB).Equal(s))
}

func TestApplyDecrement_NeverReversesCompletedSet(t *testing.T) {
	s := play(t, NewState(), std, testutil.Points(ir.SideA, 21))
	next := ApplyDecrement(s, ir.SideA)

	assert.True(t, next.Equal(s))
	assert.Equal(t, 1, next.SetsA)
}

func TestApplyDecrement_FinishedMatchIsNoOp(t *testing.T) {
	s := play(t, NewState(), std, testutil.Points(ir.SideA, 42))
	require.Equal(t, 21, s.ScoreA)

	assert.True(t, ApplyDecrement(s, ir.SideA).Equal(s))
}
