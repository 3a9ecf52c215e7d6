package harness

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/roach88/rally/internal/engine"
	"github.com/roach88/rally/internal/ir"
	"github.com/roach88/rally/internal/session"
	"github.com/roach88/rally/internal/store"
	"github.com/roach88/rally/internal/testutil"
)

// Harness executes one scenario.
type Harness struct {
	store   *store.Store
	session *session.Session
	clock   *testutil.DeterministicClock
	logger  zerolog.Logger
}

// Option configures a scenario run.
type Option func(*Harness)

// WithLogger sets the logger passed to the session. Defaults to zerolog.Nop().
func WithLogger(l zerolog.Logger) Option {
	return func(h *Harness) {
		h.logger = l
	}
}

// Run executes a scenario and returns the result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	return RunContext(context.Background(), scenario, opts...)
}

// RunContext executes a scenario and returns the result.
//
// Each scenario runs in a fresh session journaling to its own in-memory
// database. A non-nil error means the scenario could not be executed;
// failed expectations are reported through Result.Pass and Result.Errors.
//
// Execution flow:
//  1. Open an in-memory journal
//  2. Build a session with a deterministic clock and fixed match ID
//  3. Dispatch every step's events, checking step expectations
//  4. Evaluate assertions against the result
func RunContext(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	r, err := scenario.RuleSet()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	st, err := store.Open(store.MemoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		clock:  testutil.NewDeterministicClock(),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}

	matchID := scenario.FixedMatchID()
	h.session = session.New(
		session.WithRules(r),
		session.WithRecorder(st),
		session.WithClock(h.clock),
		session.WithMatchIDGenerator(testutil.NewFixedMatchIDGenerator(matchID)),
		session.WithLogger(h.logger.With().Str("scenario", scenario.Name).Logger()),
	)

	result := NewResult()
	result.MatchID = matchID

	if err := h.executeSteps(ctx, scenario.Steps, result); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	m := h.session.Match()
	result.State = m.State
	result.Rules = h.session.Rules()
	result.HistoryDepth = len(m.History)

	actx := &AssertionContext{
		Store:   st,
		Ctx:     ctx,
		MatchID: matchID,
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	h.logger.Debug().
		Str("scenario", scenario.Name).
		Bool("pass", result.Pass).
		Int("events", len(result.Trace)).
		Msg("scenario finished")

	return result, nil
}

// executeSteps dispatches every step's events in order.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) error {
	for i, step := range steps {
		var last engine.Outcome
		for _, ev := range step.Events() {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := h.session.Dispatch(ctx, ev)
			if err != nil {
				return fmt.Errorf("step %d: %w", i, err)
			}
			last = out
			result.AddTrace(i, h.clock.Current(), ev, out, h.session.State())
		}

		if len(step.Expect) > 0 {
			for _, msg := range checkExpect(step.Expect, last, h.session.State(), h.session.Rules()) {
				result.AddError(fmt.Sprintf("steps[%d]: %s", i, msg))
			}
		}
	}
	return nil
}

// stateFields flattens a state into the keys scenarios may name.
func stateFields(st ir.MatchState, r ir.RuleSet) map[string]any {
	return map[string]any{
		"score_a":     st.ScoreA,
		"score_b":     st.ScoreB,
		"sets_a":      st.SetsA,
		"sets_b":      st.SetsB,
		"current_set": st.CurrentSet,
		"serving":     string(st.Serving),
		"winner":      string(st.Winner),
		"set_count":   len(st.CompletedSets),
		"target":      r.TargetScore,
	}
}

func outcomeFields(out engine.Outcome) map[string]any {
	return map[string]any{
		"accepted":        out.Accepted,
		"set_completed":   out.SetCompleted,
		"match_completed": out.MatchCompleted,
		"history_depth":   out.HistoryDepth,
		"reason":          string(out.Reason),
	}
}

// checkExpect compares a step expectation with the last outcome and the
// resulting state. It returns one message per mismatching key.
func checkExpect(expect map[string]any, out engine.Outcome, st ir.MatchState, r ir.RuleSet) []string {
	actual := stateFields(st, r)
	for k, v := range outcomeFields(out) {
		actual[k] = v
	}

	var msgs []string
	for _, key := range sortedKeys(expect) {
		if !fieldEqual(expect[key], actual[key]) {
			msgs = append(msgs, fmt.Sprintf("expected %s = %v, got %v", key, expect[key], actual[key]))
		}
	}
	return msgs
}
