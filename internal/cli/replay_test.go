package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rally/internal/store"
)

// recordJournal plays input into a fresh journal file and returns its path.
func recordJournal(t *testing.T, input string, args ...string) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "court.db")
	_, _, err := execute(t, input, append([]string{"play", "--db", db}, args...)...)
	require.NoError(t, err)
	return db
}

func TestReplayCommandRequiresDB(t *testing.T) {
	_, _, err := execute(t, "", "replay")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "db" not set`)
}

func TestReplayCommandMissingJournal(t *testing.T) {
	_, _, err := execute(t, "", "replay", "--db", filepath.Join(t.TempDir(), "nope.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "journal not found")
}

func TestReplayCommandEmptyJournal(t *testing.T) {
	db := filepath.Join(t.TempDir(), "empty.db")
	st, err := store.Open(db)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, _, err := execute(t, "", "replay", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No matches found in journal.")
}

func TestReplayCommandDeterministic(t *testing.T) {
	input := repeat("a", 21) + "b\n-b\nu\nrules 11\n" + repeat("b", 11) + "r\na\n"
	db := recordJournal(t, input)

	out, _, err := execute(t, "", "replay", "--db", db)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Replayed 3 matches")
	assert.Contains(t, out, "✓ Journal replays identically")
}

func TestReplayCommandJSON(t *testing.T) {
	db := recordJournal(t, "a\nb\n")

	out, _, err := execute(t, "", "replay", "--db", db, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   ReplaySummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Deterministic)
	assert.Equal(t, 1, resp.Data.TotalMatches)
	assert.Equal(t, 2, resp.Data.TotalEvents)
}

func TestReplayCommandDetectsTampering(t *testing.T) {
	db := recordJournal(t, "a\na\nb\n")

	st, err := store.Open(db)
	require.NoError(t, err)
	_, err = st.DB().Exec(`UPDATE events SET payload = '{"side":"B"}' WHERE seq = 1`)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, _, err := execute(t, "", "replay", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "divergences")
	assert.Contains(t, out, "seq 1 point_awarded")
}

func TestReplayCommandUnknownMatch(t *testing.T) {
	db := recordJournal(t, "a\n")

	out, _, err := execute(t, "", "replay", "--db", db, "--match", "no-such-match")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E_MATCH_NOT_FOUND")
}
