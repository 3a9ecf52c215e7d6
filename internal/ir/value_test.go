package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIRObjectUnmarshalJSON(t *testing.T) {
	var obj IRObject
	err := json.Unmarshal([]byte(`{"side":"A","seq":9007199254740993,"ok":true,"sets":[{"winner":"B"}]}`), &obj)
	require.NoError(t, err)

	assert.Equal(t, IRObject{
		"side": IRString("A"),
		"seq":  IRInt(9007199254740993),
		"ok":   IRBool(true),
		"sets": IRArray{IRObject{"winner": IRString("B")}},
	}, obj)
}

func TestIRObjectUnmarshalJSONRejects(t *testing.T) {
	for _, in := range []string{
		`{"x":null}`,
		`{"x":1.5}`,
		`{"x":[1e3]}`,
		`{"x":99999999999999999999}`,
	} {
		var obj IRObject
		assert.Error(t, json.Unmarshal([]byte(in), &obj), in)
	}
}

func TestIRObjectRoundTrip(t *testing.T) {
	s := MatchState{
		ScoreA:        4,
		CurrentSet:    2,
		SetsB:         1,
		CompletedSets: []SetResult{{ScoreA: 29, ScoreB: 30, Winner: SideB}},
		Serving:       SideA,
	}
	data, err := MarshalCanonical(s.IR())
	require.NoError(t, err)

	var obj IRObject
	require.NoError(t, json.Unmarshal(data, &obj))
	assert.Equal(t, s.IR(), obj)
}
