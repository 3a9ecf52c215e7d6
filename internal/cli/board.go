package cli

import (
	"fmt"
	"strings"

	"github.com/roach88/rally/internal/ir"
	"github.com/roach88/rally/internal/session"
)

// Board is the scoreboard view of a session.
type Board struct {
	MatchID    string         `json:"match_id"`
	NameA      string         `json:"name_a"`
	NameB      string         `json:"name_b"`
	ScoreA     int            `json:"score_a"`
	ScoreB     int            `json:"score_b"`
	SetsA      int            `json:"sets_a"`
	SetsB      int            `json:"sets_b"`
	CurrentSet int            `json:"current_set"`
	Serving    string         `json:"serving"`
	Winner     string         `json:"winner,omitempty"`
	Sets       []ir.SetResult `json:"completed_sets"`
	Rules      ir.RuleSet     `json:"rules"`
	Elapsed    string         `json:"elapsed"`
	CanUndo    bool           `json:"can_undo"`
}

func boardOf(s *session.Session) Board {
	st := s.State()
	names := s.Names()

	b := Board{
		MatchID:    s.MatchID(),
		NameA:      names.A,
		NameB:      names.B,
		ScoreA:     st.ScoreA,
		ScoreB:     st.ScoreB,
		SetsA:      st.SetsA,
		SetsB:      st.SetsB,
		CurrentSet: st.CurrentSet,
		Serving:    string(st.Serving),
		Sets:       st.CompletedSets,
		Rules:      s.Rules(),
		Elapsed:    s.Stopwatch().String(),
		CanUndo:    s.CanUndo(),
	}
	if st.Finished() {
		b.Winner = names.Of(st.Winner)
	}
	return b
}

// String renders the board for a terminal:
//
//	HOME   [1]  12 *
//	GUEST  [0]   9
//	set 2 | to 21, cap 30 | 03:12
func (b Board) String() string {
	width := len(b.NameA)
	if len(b.NameB) > width {
		width = len(b.NameB)
	}

	var buf strings.Builder
	line := func(name string, sets, score int, side ir.Side) {
		marker := ""
		if b.Winner == "" && b.Serving == string(side) {
			marker = " *"
		}
		fmt.Fprintf(&buf, "%-*s  [%d] %3d%s\n", width, name, sets, score, marker)
	}
	line(b.NameA, b.SetsA, b.ScoreA, ir.SideA)
	line(b.NameB, b.SetsB, b.ScoreB, ir.SideB)

	if len(b.Sets) > 0 {
		scores := make([]string, len(b.Sets))
		for i, s := range b.Sets {
			scores[i] = fmt.Sprintf("%d-%d", s.ScoreA, s.ScoreB)
		}
		fmt.Fprintf(&buf, "sets: %s\n", strings.Join(scores, " "))
	}

	if b.Winner != "" {
		fmt.Fprintf(&buf, "%s wins %d-%d | %s", b.Winner, max(b.SetsA, b.SetsB), min(b.SetsA, b.SetsB), b.Elapsed)
		return buf.String()
	}
	fmt.Fprintf(&buf, "set %d | to %d, cap %d | %s", b.CurrentSet, b.Rules.TargetScore, b.Rules.MaxScore, b.Elapsed)
	return buf.String()
}
