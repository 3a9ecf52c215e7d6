package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/rally/internal/ir"
	"github.com/roach88/rally/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// maxTraceLines bounds the trace printed with an assertion failure.
const maxTraceLines = 20

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) == 0 {
		return buf.String()
	}

	start := 0
	if len(e.Trace) > maxTraceLines {
		start = len(e.Trace) - maxTraceLines
		fmt.Fprintf(&buf, "\nLast %d of %d trace events:\n", maxTraceLines, len(e.Trace))
	} else {
		fmt.Fprintf(&buf, "\nFull trace:\n")
	}
	for _, ev := range e.Trace[start:] {
		fmt.Fprintf(&buf, "  [%d] %s accepted=%t %d-%d sets %d-%d\n",
			ev.Seq, ev.Event, ev.Outcome.Accepted,
			ev.State.ScoreA, ev.State.ScoreB, ev.State.SetsA, ev.State.SetsB)
	}

	return buf.String()
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Store   *store.Store
	Ctx     context.Context
	MatchID string
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides journal access for journal_replay.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertFinalState:
			err = assertFinalState(result, assertion)
		case AssertCompletedSets:
			err = assertCompletedSets(result, assertion)
		case AssertHistoryDepth:
			err = assertHistoryDepth(result, assertion)
		case AssertInvariants:
			err = assertInvariants(result)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertJournalReplay:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: journal_replay requires a journal", i)
			} else {
				err = assertJournalReplay(actx, result)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

// assertFinalState checks the final state against expected fields
// (subset match: fields not named are not checked).
func assertFinalState(result *Result, assertion Assertion) error {
	actual := stateFields(result.State, result.Rules)

	var mismatches []string
	for _, key := range sortedKeys(assertion.Expect) {
		if !fieldEqual(assertion.Expect[key], actual[key]) {
			mismatches = append(mismatches, fmt.Sprintf("%s: want %v, got %v", key, assertion.Expect[key], actual[key]))
		}
	}
	if len(mismatches) == 0 {
		return nil
	}

	return &AssertionError{
		Type:     AssertFinalState,
		Expected: formatFields(assertion.Expect),
		Actual:   strings.Join(mismatches, "; "),
		Trace:    result.Trace,
	}
}

// assertCompletedSets checks the exact list of completed sets.
func assertCompletedSets(result *Result, assertion Assertion) error {
	got := result.State.CompletedSets
	match := len(got) == len(assertion.Sets)
	for i := 0; match && i < len(got); i++ {
		want := assertion.Sets[i]
		match = got[i].ScoreA == want.ScoreA &&
			got[i].ScoreB == want.ScoreB &&
			string(got[i].Winner) == strings.ToUpper(want.Winner)
	}
	if match {
		return nil
	}

	return &AssertionError{
		Type:     AssertCompletedSets,
		Expected: formatSetExpects(assertion.Sets),
		Actual:   formatSets(got),
		Trace:    result.Trace,
	}
}

func assertHistoryDepth(result *Result, assertion Assertion) error {
	if result.HistoryDepth == *assertion.Depth {
		return nil
	}
	return &AssertionError{
		Type:     AssertHistoryDepth,
		Expected: fmt.Sprintf("%d snapshots", *assertion.Depth),
		Actual:   fmt.Sprintf("%d snapshots", result.HistoryDepth),
		Trace:    result.Trace,
	}
}

// assertInvariants checks the structural invariants on every state in the
// trace and on the final state.
func assertInvariants(result *Result) error {
	for _, ev := range result.Trace {
		if err := CheckInvariants(ev.State); err != nil {
			return &AssertionError{
				Type:     AssertInvariants,
				Expected: "invariants hold after every event",
				Actual:   fmt.Sprintf("seq %d (%s): %v", ev.Seq, ev.Event, err),
				Trace:    result.Trace,
			}
		}
	}
	if err := CheckInvariants(result.State); err != nil {
		return &AssertionError{
			Type:     AssertInvariants,
			Expected: "invariants hold for the final state",
			Actual:   err.Error(),
			Trace:    result.Trace,
		}
	}
	return nil
}

// CheckInvariants reports the first structural invariant st violates.
func CheckInvariants(st ir.MatchState) error {
	if st.ScoreA < 0 || st.ScoreB < 0 {
		return fmt.Errorf("negative score %d-%d", st.ScoreA, st.ScoreB)
	}
	if st.SetsA+st.SetsB != len(st.CompletedSets) {
		return fmt.Errorf("sets %d+%d != %d completed sets", st.SetsA, st.SetsB, len(st.CompletedSets))
	}
	if !st.Serving.Valid() {
		return fmt.Errorf("invalid server %q", st.Serving)
	}

	wonA, wonB := 0, 0
	for i, set := range st.CompletedSets {
		switch set.Winner {
		case ir.SideA:
			wonA++
		case ir.SideB:
			wonB++
		default:
			return fmt.Errorf("completed set %d has invalid winner %q", i+1, set.Winner)
		}
	}
	if wonA != st.SetsA || wonB != st.SetsB {
		return fmt.Errorf("set counters %d-%d disagree with completed sets %d-%d", st.SetsA, st.SetsB, wonA, wonB)
	}

	if st.Finished() {
		if st.SetsWon(st.Winner) != 2 || st.SetsWon(st.Winner.Other()) > 1 {
			return fmt.Errorf("winner %s with sets %d-%d", st.Winner, st.SetsA, st.SetsB)
		}
		if st.CurrentSet != len(st.CompletedSets) {
			return fmt.Errorf("finished match in set %d after %d sets", st.CurrentSet, len(st.CompletedSets))
		}
		return nil
	}

	if st.SetsA > 1 || st.SetsB > 1 {
		return fmt.Errorf("no winner with sets %d-%d", st.SetsA, st.SetsB)
	}
	if st.CurrentSet != len(st.CompletedSets)+1 {
		return fmt.Errorf("current set %d after %d completed sets", st.CurrentSet, len(st.CompletedSets))
	}
	return nil
}

// assertTraceCount checks how many trace events match the kind and
// accepted filters.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, ev := range trace {
		if assertion.Kind != "" && string(ev.Event.Kind) != assertion.Kind {
			continue
		}
		if assertion.Accepted != nil && ev.Outcome.Accepted != *assertion.Accepted {
			continue
		}
		count++
	}

	if count == *assertion.Count {
		return nil
	}

	filter := "events"
	if assertion.Kind != "" {
		filter = assertion.Kind + " events"
	}
	if assertion.Accepted != nil {
		filter = fmt.Sprintf("%s with accepted=%t", filter, *assertion.Accepted)
	}
	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("%d %s", *assertion.Count, filter),
		Actual:   fmt.Sprintf("%d %s", count, filter),
		Trace:    trace,
	}
}

// assertJournalReplay replays the scenario's journal and checks that every
// event reproduces its recorded state hash.
func assertJournalReplay(actx *AssertionContext, result *Result) error {
	ctx := actx.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	res, err := actx.Store.ReplayMatch(ctx, actx.MatchID)
	if err != nil {
		return fmt.Errorf("journal_replay: %w", err)
	}

	if res.Events != len(result.Trace) {
		return &AssertionError{
			Type:     AssertJournalReplay,
			Expected: fmt.Sprintf("%d journaled events", len(result.Trace)),
			Actual:   fmt.Sprintf("%d journaled events", res.Events),
			Trace:    result.Trace,
		}
	}
	if !res.OK() {
		d := res.Divergences[0]
		return &AssertionError{
			Type:     AssertJournalReplay,
			Expected: fmt.Sprintf("seq %d replays to %s", d.Seq, d.ExpectedHash),
			Actual:   fmt.Sprintf("%s (%d divergences)", d.ActualHash, len(res.Divergences)),
			Trace:    result.Trace,
		}
	}
	if !res.Final.Equal(result.State) {
		return &AssertionError{
			Type:     AssertJournalReplay,
			Expected: "replayed final state equals session state",
			Actual:   fmt.Sprintf("%+v", res.Final),
			Trace:    result.Trace,
		}
	}
	return nil
}

// fieldEqual compares a YAML-decoded expectation with an actual field.
// A missing or null expectation matches the empty string, so
// `winner: ""` and `winner: ~` both mean "no winner". Sides compare
// case-insensitively.
func fieldEqual(expected, actual any) bool {
	if expected == nil {
		expected = ""
	}
	switch exp := expected.(type) {
	case int:
		act, ok := actual.(int)
		return ok && exp == act
	case bool:
		act, ok := actual.(bool)
		return ok && exp == act
	case string:
		act, ok := actual.(string)
		return ok && strings.EqualFold(exp, act)
	}
	return false
}

func formatFields(m map[string]any) string {
	parts := make([]string, 0, len(m))
	for _, k := range sortedKeys(m) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, m[k]))
	}
	return strings.Join(parts, " ")
}

func formatSets(sets []ir.SetResult) string {
	parts := make([]string, len(sets))
	for i, s := range sets {
		parts[i] = fmt.Sprintf("%d-%d %s", s.ScoreA, s.ScoreB, s.Winner)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatSetExpects(sets []SetExpect) string {
	parts := make([]string, len(sets))
	for i, s := range sets {
		parts[i] = fmt.Sprintf("%d-%d %s", s.ScoreA, s.ScoreB, strings.ToUpper(s.Winner))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
