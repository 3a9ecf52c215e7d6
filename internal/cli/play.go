package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/rally/internal/engine"
	"github.com/roach88/rally/internal/ir"
	"github.com/roach88/rally/internal/rules"
	"github.com/roach88/rally/internal/session"
	"github.com/roach88/rally/internal/store"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	Database  string
	Target    int
	NameA     string
	NameB     string
	Preset    string
	RulesFile string

	// Tick is the stopwatch resolution. Zero means one second.
	Tick time.Duration
}

const playHelp = `commands:
  a, b        point to side A or B
  -a, -b      take a point back from A or B
  u           undo the last change
  r           reset the match
  rules <n>   switch to an n-point game (starts a new match)
  t           start or stop the stopwatch
  s           show the board
  q           quit`

// PlayStep is the JSON record printed for each input line.
type PlayStep struct {
	Input   string          `json:"input"`
	Event   string          `json:"event,omitempty"`
	Outcome *engine.Outcome `json:"outcome,omitempty"`
	Board   Board           `json:"board"`
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Keep score interactively",
		Long: `Keep score of a match from standard input, one command per line.

` + playHelp + `

Every event is journaled. With --db the journal is kept on disk and can
be inspected with "rally trace" and verified with "rally replay".

Examples:
  rally play
  rally play --target 11 --name-a Lin --name-b Lee
  rally play --db ./court1.db --preset casual
  rally play --rules-file presets.cue --preset short`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (default $RALLY_JOURNAL or in-memory)")
	cmd.Flags().IntVar(&opts.Target, "target", 0, "target score (default $RALLY_TARGET_SCORE or 21)")
	cmd.Flags().StringVar(&opts.NameA, "name-a", "", "display name for side A")
	cmd.Flags().StringVar(&opts.NameB, "name-b", "", "display name for side B")
	cmd.Flags().StringVar(&opts.Preset, "preset", "", "start with a named preset instead of --target")
	cmd.Flags().StringVar(&opts.RulesFile, "rules-file", "", "CUE file with extra presets (default $RALLY_RULES_FILE)")

	return cmd
}

func runPlay(opts *PlayOptions, cmd *cobra.Command) error {
	cfg := opts.settings()
	f := newFormatter(opts.RootOptions, cmd)

	r, err := opts.startingRules(cmd)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid rules", err)
	}

	dbPath := flagOr(cmd, "db", opts.Database, cfg.Journal)
	st, err := store.Open(dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	last, err := st.LastSeq(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}

	sess := session.New(
		session.WithRules(r),
		session.WithRecorder(st),
		session.WithLogger(opts.Logger),
		session.WithClock(engine.NewClockAt(last)),
		session.WithNames(
			flagOr(cmd, "name-a", opts.NameA, cfg.NameA),
			flagOr(cmd, "name-b", opts.NameB, cfg.NameB),
		),
	)

	opts.Logger.Debug().
		Str("journal", dbPath).
		Int64("last_seq", last).
		Int("target", r.TargetScore).
		Msg("session started")

	tick := opts.Tick
	if tick <= 0 {
		tick = time.Second
	}

	g, gctx := errgroup.WithContext(ctx)
	loopCtx, endLoop := context.WithCancel(gctx)
	defer endLoop()

	g.Go(func() error {
		err := sess.Stopwatch().Run(loopCtx, tick)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		defer endLoop()
		p := &player{sess: sess, f: f}
		return p.loop(loopCtx, cmd.InOrStdin())
	})

	if err := g.Wait(); err != nil {
		return err
	}

	board := boardOf(sess)
	if f.JSON() {
		return f.Envelope(CLIResponse{Status: "ok", Data: board, TraceID: board.MatchID})
	}
	fmt.Fprintf(f.Writer, "\nfinal:\n%s\n", board)
	return nil
}

// startingRules picks the preset when one is named, else the target.
func (o *PlayOptions) startingRules(cmd *cobra.Command) (ir.RuleSet, error) {
	cfg := o.settings()

	if o.Preset != "" {
		presets := rules.Presets()
		if file := flagOr(cmd, "rules-file", o.RulesFile, cfg.RulesFile); file != "" {
			extra, err := rules.LoadFile(file)
			if err != nil {
				return ir.RuleSet{}, err
			}
			presets = presets.Merge(extra)
		}
		return presets.Lookup(o.Preset)
	}

	target := cfg.TargetScore
	if cmd.Flags().Changed("target") {
		target = o.Target
	}
	return rules.ForTarget(target)
}

// flagOr returns the flag value when the user set it, else fallback.
func flagOr(cmd *cobra.Command, name, value, fallback string) string {
	if cmd.Flags().Changed(name) {
		return value
	}
	return fallback
}

// player reads commands and applies them to the session.
type player struct {
	sess *session.Session
	f    *OutputFormatter
}

func (p *player) loop(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	var scanErr error

	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr = sc.Err()
	}()

	if !p.f.JSON() {
		fmt.Fprintln(p.f.Writer, boardOf(p.sess))
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				if scanErr != nil {
					return WrapExitError(ExitCommandError, "failed to read input", scanErr)
				}
				return nil
			}
			quit, err := p.handle(ctx, line)
			if err != nil || quit {
				return err
			}
		}
	}
}

// handle applies one input line. It reports whether the user quit.
func (p *player) handle(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return false, nil
	}

	var ev engine.Event
	switch fields[0] {
	case "a", "b":
		ev = engine.PointAwarded(ir.Side(strings.ToUpper(fields[0])))
	case "-a", "-b":
		ev = engine.PointRetracted(ir.Side(strings.ToUpper(fields[0][1:])))
	case "u", "undo":
		ev = engine.UndoRequested()
	case "r", "reset":
		ev = engine.MatchReset()
	case "rules":
		if len(fields) != 2 {
			return false, p.f.Error(ErrCodeUnknownInput, "usage: rules <target>", nil)
		}
		target, err := strconv.Atoi(fields[1])
		if err != nil {
			return false, p.f.Error(ErrCodeUnknownInput, fmt.Sprintf("target %q is not a number", fields[1]), nil)
		}
		ev = engine.RuleSetChanged(target)
	case "t":
		running := p.sess.Stopwatch().Toggle()
		if !p.f.JSON() {
			state := "stopped"
			if running {
				state = "running"
			}
			fmt.Fprintf(p.f.Writer, "stopwatch %s at %s\n", state, p.sess.Stopwatch())
			return false, nil
		}
		return false, p.f.Success(PlayStep{Input: line, Board: boardOf(p.sess)})
	case "s", "show":
		return false, p.show(line, nil, nil)
	case "h", "help", "?":
		if !p.f.JSON() {
			fmt.Fprintln(p.f.Writer, playHelp)
		}
		return false, nil
	case "q", "quit", "exit":
		return true, nil
	default:
		return false, p.f.Error(ErrCodeUnknownInput, fmt.Sprintf("unknown command %q (h for help)", fields[0]), nil)
	}

	out, err := p.sess.Dispatch(ctx, ev)
	if err != nil {
		return true, WrapExitError(ExitCommandError, "journal write failed", err)
	}
	return false, p.show(line, &ev, &out)
}

func (p *player) show(input string, ev *engine.Event, out *engine.Outcome) error {
	board := boardOf(p.sess)
	if p.f.JSON() {
		step := PlayStep{Input: input, Outcome: out, Board: board}
		if ev != nil {
			step.Event = ev.String()
		}
		return p.f.Success(step)
	}

	w := p.f.Writer
	if out != nil && !out.Accepted {
		fmt.Fprintf(w, "ignored %s: %s\n", ev, out.Reason)
		return nil
	}
	if out != nil && out.MatchCompleted {
		fmt.Fprintf(w, "game, set and match: %s\n", board.Winner)
	} else if out != nil && out.SetCompleted {
		fmt.Fprintf(w, "set to %s\n", p.sess.Names().Of(ev.Side))
	}
	fmt.Fprintln(w, board)
	return nil
}
