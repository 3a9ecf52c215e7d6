package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rally/internal/store"
)

func TestPlay_TextSession(t *testing.T) {
	input := "a\na\nb\n-a\nu\nzz\nrules 0\nrules x\nh\nq\nb\n"

	out, _, err := execute(t, input, "play")
	require.NoError(t, err)

	assert.Contains(t, out, "HOME   [0]   0 *", "initial board shows A serving")
	assert.Contains(t, out, `Error [E_UNKNOWN_INPUT]: unknown command "zz"`)
	assert.Contains(t, out, "ignored rule_set_changed(0): invalid_target")
	assert.Contains(t, out, `target "x" is not a number`)
	assert.Contains(t, out, "rules <n>")

	final := out[strings.LastIndex(out, "final:"):]
	assert.Contains(t, final, "HOME   [0]   2")
	assert.Contains(t, final, "GUEST  [0]   1 *")
	assert.Contains(t, final, "set 1 | to 21, cap 30")
}

func TestPlay_SetAndMatchAnnouncements(t *testing.T) {
	input := repeat("a", 11) + repeat("b", 11) + repeat("a", 11) + "b\n"

	out, _, err := execute(t, input, "play", "--target", "11", "--name-a", "Lin", "--name-b", "Lee")
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(out, "set to Lin"), "the deciding set is announced as the match")
	assert.Equal(t, 1, strings.Count(out, "set to Lee"))
	assert.Contains(t, out, "game, set and match: Lin")
	assert.Contains(t, out, "ignored point_awarded(B): match_finished")
	assert.Contains(t, out, "sets: 11-0 0-11 11-0")
	assert.Contains(t, out, "Lin wins 2-1")
}

func TestPlay_RetractAtZeroIgnored(t *testing.T) {
	out, _, err := execute(t, "-b\nu\n", "play")
	require.NoError(t, err)
	assert.Contains(t, out, "ignored point_retracted(B): score_zero")
	assert.Contains(t, out, "ignored undo_requested: history_empty")
}

func TestPlay_StopwatchToggle(t *testing.T) {
	out, _, err := execute(t, "t\nt\n", "play")
	require.NoError(t, err)
	assert.Contains(t, out, "stopwatch running at 00:00")
	assert.Contains(t, out, "stopwatch stopped at 00:00")
}

func TestPlay_JSONSteps(t *testing.T) {
	out, _, err := execute(t, "a\n-b\nrules 15\nq\n", "play", "--format", "json")
	require.NoError(t, err)

	dec := json.NewDecoder(strings.NewReader(out))
	var steps []map[string]any
	for {
		var resp map[string]any
		err := dec.Decode(&resp)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		assert.Equal(t, "ok", resp["status"])
		steps = append(steps, resp)
	}
	require.Len(t, steps, 4, "three events plus the final board")

	first := steps[0]["data"].(map[string]any)
	assert.Equal(t, "point_awarded(A)", first["event"])
	assert.Equal(t, true, first["outcome"].(map[string]any)["accepted"])
	assert.Equal(t, float64(1), first["board"].(map[string]any)["score_a"])

	second := steps[1]["data"].(map[string]any)
	assert.Equal(t, "score_zero", second["outcome"].(map[string]any)["reason"])

	third := steps[2]["data"].(map[string]any)
	board := third["board"].(map[string]any)
	assert.Equal(t, float64(15), board["rules"].(map[string]any)["target_score"])
	assert.Equal(t, float64(0), board["score_a"])

	final := steps[3]
	assert.Equal(t, final["trace_id"], final["data"].(map[string]any)["match_id"])
	assert.NotEqual(t, first["board"].(map[string]any)["match_id"], final["trace_id"],
		"a rule change starts a new match")
}

func TestPlay_Preset(t *testing.T) {
	out, _, err := execute(t, "s\n", "play", "--preset", "casual")
	require.NoError(t, err)
	assert.Contains(t, out, "to 11, cap 15")

	presets := filepath.Join(t.TempDir(), "presets.cue")
	require.NoError(t, os.WriteFile(presets, []byte(`presets: short: { target: 5, max: 7, win_by: 1 }`), 0644))

	input := repeat("a", 4) + repeat("b", 4) + "a\n"
	out, _, err = execute(t, input, "play", "--preset", "short", "--rules-file", presets)
	require.NoError(t, err)
	assert.Contains(t, out, "set to HOME", "win_by 1 closes the set at 5-4")
	assert.Contains(t, out, "sets: 5-4")
}

func TestPlay_InvalidRules(t *testing.T) {
	_, _, err := execute(t, "", "play", "--target", "0")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, _, err = execute(t, "", "play", "--preset", "tournament")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNKNOWN_PRESET")
}

func TestPlay_JournalContinuesSeq(t *testing.T) {
	db := filepath.Join(t.TempDir(), "court.db")

	_, _, err := execute(t, "a\nb\n", "play", "--db", db)
	require.NoError(t, err)
	_, _, err = execute(t, "b\n", "play", "--db", db)
	require.NoError(t, err)

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()

	matches, err := st.ListMatches(context.Background())
	require.NoError(t, err)
	require.Len(t, matches, 2, "each play session starts its own match")
	assert.Equal(t, int64(1), matches[0].Seq)
	assert.Equal(t, int64(3), matches[1].Seq)

	last, err := st.LastSeq(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), last)
}
