package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rally/internal/ir"
)

// Regenerate with: go test ./internal/harness -run TestGolden -update
func TestGolden_ShortMatch(t *testing.T) {
	sc, err := LoadScenario(filepath.Join("testdata", "scenarios", "short_match.yaml"))
	require.NoError(t, err)

	result, err := RunWithGolden(t, sc)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Equal(t, ir.SideA, result.State.Winner)
}

func TestGolden_RuleSwitch(t *testing.T) {
	sc, err := LoadScenario(filepath.Join("testdata", "scenarios", "rule_switch.yaml"))
	require.NoError(t, err)

	result, err := RunWithGolden(t, sc)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Equal(t, 5, result.Rules.TargetScore)
}

func TestTraceSnapshot_Deterministic(t *testing.T) {
	sc, err := LoadScenario(filepath.Join("testdata", "scenarios", "undo_roundtrip.yaml"))
	require.NoError(t, err)

	first, err := Run(sc)
	require.NoError(t, err)
	second, err := Run(sc)
	require.NoError(t, err)

	start, err := sc.RuleSet()
	require.NoError(t, err)

	snap := func(r *Result) []byte {
		s := TraceSnapshot{ScenarioName: sc.Name, MatchID: r.MatchID, Rules: start, Trace: r.Trace}
		data, err := s.MarshalCanonical()
		require.NoError(t, err)
		return data
	}
	assert.Equal(t, snap(first), snap(second))
}

func TestTraceSnapshot_OmitsQuietFields(t *testing.T) {
	snap := TraceSnapshot{
		ScenarioName: "quiet",
		MatchID:      "m",
		Rules:        ir.RuleSet{TargetScore: 3, MaxScore: 7, WinBy: 2},
		Trace:        traceOf(),
	}
	data, err := snap.MarshalCanonical()
	require.NoError(t, err)
	assert.Equal(t,
		`{"match_id":"m","rules":{"max_score":7,"target_score":3,"win_by":2},"scenario_name":"quiet","trace":[]}`,
		string(data))
}
