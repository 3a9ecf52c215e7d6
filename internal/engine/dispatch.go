package engine

import (
	"github.com/roach88/rally/internal/ir"
	"github.com/roach88/rally/internal/rules"
)

// Reason explains why Dispatch rejected an event.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonMatchFinished Reason = "match_finished"
	ReasonScoreZero     Reason = "score_zero"
	ReasonHistoryEmpty  Reason = "history_empty"
	ReasonInvalidSide   Reason = "invalid_side"
	ReasonInvalidTarget Reason = "invalid_target"
	ReasonUnknownEvent  Reason = "unknown_event"
)

// Outcome reports what Dispatch did with an event.
type Outcome struct {
	// Accepted is false when the event was a no-op.
	Accepted bool `json:"accepted"`

	// SetCompleted is true when this event closed a set.
	SetCompleted bool `json:"set_completed"`

	// MatchCompleted is true exactly when this event decided the match.
	MatchCompleted bool `json:"match_completed"`

	// HistoryDepth is the number of undo snapshots after the event.
	HistoryDepth int `json:"history_depth"`

	// Reason is set when Accepted is false.
	Reason Reason `json:"reason,omitempty"`
}

// Dispatch applies ev to m under rule set r.
//
// Accepted point and retraction events push a snapshot of the pre-event
// state. A valid rule change replaces the rule set and resets the match.
// Rejected events return m and r unchanged.
func Dispatch(m ir.Match, ev Event, r ir.RuleSet) (ir.Match, ir.RuleSet, Outcome) {
	switch ev.Kind {
	case KindPointAwarded:
		if !ev.Side.Valid() {
			return reject(m, r, ReasonInvalidSide)
		}
		if m.State.Finished() {
			return reject(m, r, ReasonMatchFinished)
		}
		next := ir.Match{
			State:   ApplyPoint(m.State, ev.Side, r),
			History: push(m),
		}
		return next, r, Outcome{
			Accepted:       true,
			SetCompleted:   len(next.State.CompletedSets) > len(m.State.CompletedSets),
			MatchCompleted: next.State.Finished(),
			HistoryDepth:   len(next.History),
		}

	case KindPointRetracted:
		if !ev.Side.Valid() {
			return reject(m, r, ReasonInvalidSide)
		}
		if m.State.Finished() {
			return reject(m, r, ReasonMatchFinished)
		}
		if !CanDecrement(m.State, ev.Side) {
			return reject(m, r, ReasonScoreZero)
		}
		next := ir.Match{
			State:   ApplyDecrement(m.State, ev.Side),
			History: push(m),
		}
		return next, r, accepted(next)

	case KindUndoRequested:
		if !m.CanUndo() {
			return reject(m, r, ReasonHistoryEmpty)
		}
		next := Undo(m)
		return next, r, accepted(next)

	case KindMatchReset:
		next := Reset()
		return next, r, accepted(next)

	case KindRuleSetChanged:
		nr, err := rules.ForTarget(ev.TargetScore)
		if err != nil {
			return reject(m, r, ReasonInvalidTarget)
		}
		next := Reset()
		return next, nr, accepted(next)

	default:
		return reject(m, r, ReasonUnknownEvent)
	}
}

// Replay folds events over a fresh match, starting from rule set r.
// It returns the final match and rules plus one Outcome per event.
func Replay(r ir.RuleSet, events []Event) (ir.Match, ir.RuleSet, []Outcome) {
	m := Reset()
	outcomes := make([]Outcome, 0, len(events))
	for _, ev := range events {
		var out Outcome
		m, r, out = Dispatch(m, ev, r)
		outcomes = append(outcomes, out)
	}
	return m, r, outcomes
}

func accepted(m ir.Match) Outcome {
	return Outcome{Accepted: true, HistoryDepth: len(m.History)}
}

func reject(m ir.Match, r ir.RuleSet, reason Reason) (ir.Match, ir.RuleSet, Outcome) {
	return m, r, Outcome{HistoryDepth: len(m.History), Reason: reason}
}
