package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/rally/internal/engine"
	"github.com/roach88/rally/internal/ir"
	"github.com/roach88/rally/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	MatchID  string
	Rejected bool     // include only rejected events
	Kinds    []string // include only these event kinds
}

// MatchTrace is one match and its journaled events.
type MatchTrace struct {
	Match  ir.MatchRecord   `json:"match"`
	Events []ir.EventRecord `json:"events"`
	Stats  TraceStats       `json:"stats"`
}

// TraceStats holds summary statistics for one match.
type TraceStats struct {
	TotalEvents int  `json:"total_events"`
	Accepted    int  `json:"accepted"`
	Rejected    int  `json:"rejected"`
	Finished    bool `json:"finished"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show journaled events",
		Long: `Show the journaled events of one match or of every match.

Each line shows the event seq, the event and its payload, whether the
scorekeeper accepted it and the score after it.

Examples:
  rally trace --db ./court1.db
  rally trace --db ./court1.db --match 0190f3a2-...
  rally trace --db ./court1.db --rejected --format json
  rally trace --db ./court1.db --kind point_retracted --kind undo_requested`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.MatchID, "match", "", "match ID to trace (default: all matches)")
	cmd.Flags().BoolVar(&opts.Rejected, "rejected", false, "show only rejected events")
	cmd.Flags().StringSliceVar(&opts.Kinds, "kind", nil, "show only events of this kind (repeatable)")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := newFormatter(opts.RootOptions, cmd)

	for _, k := range opts.Kinds {
		if _, err := engine.ParseEventKind(k); err != nil {
			_ = f.Error(ErrCodeUnknownInput, err.Error(), nil)
			return WrapExitError(ExitCommandError, "invalid --kind", err)
		}
	}

	st, err := openJournal(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	var matches []ir.MatchRecord
	if opts.MatchID != "" {
		m, err := st.ReadMatch(ctx, opts.MatchID)
		if errors.Is(err, store.ErrMatchNotFound) {
			_ = f.Error(ErrCodeMatchNotFound, fmt.Sprintf("no match %q in journal", opts.MatchID), nil)
			return WrapExitError(ExitCommandError, "match not found", err)
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read match", err)
		}
		matches = []ir.MatchRecord{m}
	} else {
		matches, err = st.ListMatches(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list matches", err)
		}
	}

	traces := make([]MatchTrace, 0, len(matches))
	for _, m := range matches {
		events, err := st.ReadEvents(ctx, m.ID)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to read events of %s", m.ID), err)
		}
		t := buildTrace(m, events)
		if q, ok := opts.query(m.ID); ok {
			if t.Events, err = st.QueryEvents(ctx, q); err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("failed to query events of %s", m.ID), err)
			}
		}
		traces = append(traces, t)
	}

	if f.JSON() {
		resp := CLIResponse{Status: "ok", Data: traces}
		if opts.MatchID != "" {
			resp.TraceID = opts.MatchID
		}
		return f.Envelope(resp)
	}

	outputTraceText(f, traces)
	return nil
}

// query returns the event filter for matchID, or false when every event
// is shown.
func (o *TraceOptions) query(matchID string) (store.EventQuery, bool) {
	if !o.Rejected && len(o.Kinds) == 0 {
		return store.EventQuery{}, false
	}
	q := store.EventQuery{MatchID: matchID, Kinds: o.Kinds}
	if o.Rejected {
		accepted := false
		q.Accepted = &accepted
	}
	return q, true
}

// buildTrace summarizes a match. Stats always cover every event.
func buildTrace(m ir.MatchRecord, events []ir.EventRecord) MatchTrace {
	t := MatchTrace{Match: m, Events: events}
	for _, e := range events {
		t.Stats.TotalEvents++
		if e.Accepted {
			t.Stats.Accepted++
		} else {
			t.Stats.Rejected++
		}
		t.Stats.Finished = e.State.Finished()
	}
	return t
}

func outputTraceText(f *OutputFormatter, traces []MatchTrace) {
	w := f.Writer
	if len(traces) == 0 {
		fmt.Fprintln(w, "No matches found in journal.")
		return
	}

	for i, t := range traces {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "Match %s  %s vs %s  to %d (cap %d)\n",
			t.Match.ID, t.Match.NameA, t.Match.NameB, t.Match.Rules.TargetScore, t.Match.Rules.MaxScore)

		for _, e := range t.Events {
			status := "ok"
			if !e.Accepted {
				status = "ignored: " + e.Reason
			}
			fmt.Fprintf(w, "  [%d] %-16s %-22s %-26s %2d-%-2d sets %d-%d\n",
				e.Seq, e.Kind, formatPayload(e.Payload), status,
				e.State.ScoreA, e.State.ScoreB, e.State.SetsA, e.State.SetsB)
		}

		fmt.Fprintf(w, "  %d events, %d accepted, %d rejected", t.Stats.TotalEvents, t.Stats.Accepted, t.Stats.Rejected)
		if t.Stats.Finished {
			fmt.Fprint(w, ", finished")
		}
		fmt.Fprintln(w)
	}
}

func formatPayload(p ir.IRObject) string {
	if len(p) == 0 {
		return "{}"
	}
	data, err := ir.MarshalCanonical(p)
	if err != nil {
		return fmt.Sprintf("%v", map[string]ir.IRValue(p))
	}
	return string(data)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
