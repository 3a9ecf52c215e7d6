package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/rally/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	MatchID  string // optional - specific match only
}

// ReplaySummary holds the overall replay result.
type ReplaySummary struct {
	Matches       []store.ReplayResult `json:"matches"`
	TotalMatches  int                  `json:"total_matches"`
	TotalEvents   int                  `json:"total_events"`
	Deterministic bool                 `json:"deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay the journal and verify every match",
		Long: `Replay journaled matches through the scoring engine.

Each match is rebuilt from a fresh state under the rules it started with.
Every event must reproduce its recorded state hash and accepted flag.

Exit codes:
  0 - Every match replays identically
  1 - At least one event diverged
  2 - Command error (journal not found, unknown match, etc.)

Examples:
  rally replay --db ./court1.db
  rally replay --db ./court1.db --match 0190f3a2-...
  rally replay --db ./court1.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.MatchID, "match", "", "replay one match only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := newFormatter(opts.RootOptions, cmd)

	st, err := openJournal(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	var results []store.ReplayResult
	if opts.MatchID != "" {
		res, err := st.ReplayMatch(ctx, opts.MatchID)
		if errors.Is(err, store.ErrMatchNotFound) {
			_ = f.Error(ErrCodeMatchNotFound, fmt.Sprintf("no match %q in journal", opts.MatchID), nil)
			return WrapExitError(ExitCommandError, "match not found", err)
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to replay match", err)
		}
		results = []store.ReplayResult{res}
	} else {
		results, err = st.ReplayAll(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to replay journal", err)
		}
	}

	summary := ReplaySummary{
		Matches:       results,
		TotalMatches:  len(results),
		Deterministic: true,
	}
	for _, res := range results {
		summary.TotalEvents += res.Events
		if !res.OK() {
			summary.Deterministic = false
		}
		f.VerboseLog("replayed %s: %d events, %d divergences", res.MatchID, res.Events, len(res.Divergences))
	}

	if f.JSON() {
		resp := CLIResponse{Status: "ok", Data: summary}
		if !summary.Deterministic {
			resp.Status = "error"
			resp.Error = &CLIError{Code: ErrCodeDivergence, Message: "journal replay diverged"}
		}
		if err := f.Envelope(resp); err != nil {
			return err
		}
	} else {
		outputReplayText(f, summary)
	}

	if !summary.Deterministic {
		return NewExitError(ExitFailure, "journal replay diverged")
	}
	return nil
}

func outputReplayText(f *OutputFormatter, summary ReplaySummary) {
	w := f.Writer
	if summary.TotalMatches == 0 {
		fmt.Fprintln(w, "No matches found in journal.")
		return
	}

	for _, res := range summary.Matches {
		if res.OK() {
			fmt.Fprintf(w, "✓ %s  %d events  final %d-%d sets %d-%d\n",
				res.MatchID, res.Events, res.Final.ScoreA, res.Final.ScoreB, res.Final.SetsA, res.Final.SetsB)
			continue
		}
		fmt.Fprintf(w, "✗ %s  %d events  %d divergences\n", res.MatchID, res.Events, len(res.Divergences))
		for _, d := range res.Divergences {
			fmt.Fprintf(w, "  seq %d %s: recorded %s (accepted=%t), replayed %s (accepted=%t)\n",
				d.Seq, d.Kind, d.ExpectedHash, d.Accepted, d.ActualHash, d.Replayed)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Replayed %d matches, %d events\n", summary.TotalMatches, summary.TotalEvents)
	if summary.Deterministic {
		fmt.Fprintln(w, "✓ Journal replays identically")
	}
}

// openJournal opens an existing journal file. Unlike store.Open it does
// not create a missing file.
func openJournal(path string) (*store.Store, error) {
	if path == "" || path == store.MemoryPath {
		return nil, NewExitError(ExitCommandError, "a journal file is required (--db)")
	}
	if !fileExists(path) {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("journal not found: %s", path))
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	return st, nil
}
