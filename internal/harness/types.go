package harness

import (
	"github.com/roach88/rally/internal/engine"
	"github.com/roach88/rally/internal/ir"
)

// TraceEvent is one dispatched event and what it did.
type TraceEvent struct {
	Seq     int64          `json:"seq"`
	Step    int            `json:"step"` // index of the scenario step
	Event   engine.Event   `json:"event"`
	Outcome engine.Outcome `json:"outcome"`
	State   ir.MatchState  `json:"state"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace contains every dispatched event in seq order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State is the final match state.
	State ir.MatchState `json:"state"`

	// Rules is the rule set in force at the end.
	Rules ir.RuleSet `json:"rules"`

	// HistoryDepth is the number of undo snapshots at the end.
	HistoryDepth int `json:"history_depth"`

	// MatchID is the fixed ID the scenario journaled under.
	MatchID string `json:"match_id"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a dispatched event to the trace.
func (r *Result) AddTrace(step int, seq int64, ev engine.Event, out engine.Outcome, st ir.MatchState) {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:     seq,
		Event:   ev,
		Outcome: out,
		State:   st,
		Step:    step,
	})
}
