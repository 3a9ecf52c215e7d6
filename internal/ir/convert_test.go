package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchStateIRRoundTripThroughJSON(t *testing.T) {
	s := MatchState{
		ScoreA:     30,
		ScoreB:     29,
		SetsA:      2,
		SetsB:      1,
		CurrentSet: 3,
		CompletedSets: []SetResult{
			{ScoreA: 21, ScoreB: 10, Winner: SideA},
			{ScoreA: 15, ScoreB: 21, Winner: SideB},
			{ScoreA: 30, ScoreB: 29, Winner: SideA},
		},
		Serving: SideA,
		Winner:  SideA,
	}

	data, err := MarshalCanonical(s.IR())
	require.NoError(t, err)

	var obj IRObject
	require.NoError(t, json.Unmarshal(data, &obj))

	got, err := ParseMatchState(obj)
	require.NoError(t, err)
	assert.True(t, s.Equal(got), "got %+v", got)
}

func TestMatchStateIROmitsAbsentWinner(t *testing.T) {
	obj := MatchState{CurrentSet: 1, Serving: SideA}.IR()
	_, ok := obj["winner"]
	assert.False(t, ok)

	got, err := ParseMatchState(obj)
	require.NoError(t, err)
	assert.Equal(t, Side(""), got.Winner)
	assert.Empty(t, got.CompletedSets)
}

func TestParseMatchStateErrors(t *testing.T) {
	good := MatchState{CurrentSet: 1, Serving: SideA}.IR()

	missing := IRObject{}
	for k, v := range good {
		missing[k] = v
	}
	delete(missing, "score_a")
	_, err := ParseMatchState(missing)
	assert.ErrorContains(t, err, "score_a")

	badSide := IRObject{}
	for k, v := range good {
		badSide[k] = v
	}
	badSide["serving"] = IRString("C")
	_, err = ParseMatchState(badSide)
	assert.ErrorContains(t, err, "invalid side")
}

func TestRuleSetIRRoundTrip(t *testing.T) {
	r := RuleSet{TargetScore: 11, MaxScore: 15, WinBy: 2}
	got, err := ParseRuleSet(r.IR())
	require.NoError(t, err)
	assert.Equal(t, r, got)
}

func TestIRObjectUnmarshalRejectsFloats(t *testing.T) {
	var obj IRObject
	err := json.Unmarshal([]byte(`{"x":1.5}`), &obj)
	assert.Error(t, err)

	err = json.Unmarshal([]byte(`{"x":null}`), &obj)
	assert.Error(t, err)
}
