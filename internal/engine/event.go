package engine

import (
	"fmt"

	"github.com/roach88/rally/internal/ir"
)

// EventKind names a match event. The string values are stored in the
// journal and used in scenario traces, so they must never change.
type EventKind string

const (
	KindPointAwarded   EventKind = "point_awarded"
	KindPointRetracted EventKind = "point_retracted"
	KindUndoRequested  EventKind = "undo_requested"
	KindMatchReset     EventKind = "match_reset"
	KindRuleSetChanged EventKind = "rule_set_changed"
)

// Event is one input to Dispatch.
//
// Side is set for point events; TargetScore is set for RuleSetChanged.
// Use the constructors rather than building Events by hand.
type Event struct {
	Kind        EventKind `json:"kind"`
	Side        ir.Side   `json:"side,omitempty"`
	TargetScore int       `json:"target_score,omitempty"`
}

func PointAwarded(side ir.Side) Event {
	return Event{Kind: KindPointAwarded, Side: side}
}

func PointRetracted(side ir.Side) Event {
	return Event{Kind: KindPointRetracted, Side: side}
}

func UndoRequested() Event {
	return Event{Kind: KindUndoRequested}
}

func MatchReset() Event {
	return Event{Kind: KindMatchReset}
}

func RuleSetChanged(target int) Event {
	return Event{Kind: KindRuleSetChanged, TargetScore: target}
}

// String renders the event for logs and text output.
func (e Event) String() string {
	switch e.Kind {
	case KindPointAwarded, KindPointRetracted:
		return fmt.Sprintf("%s(%s)", e.Kind, e.Side)
	case KindRuleSetChanged:
		return fmt.Sprintf("%s(%d)", e.Kind, e.TargetScore)
	default:
		return string(e.Kind)
	}
}

// Payload returns the event's arguments as an IR object, omitting the
// fields the kind does not use.
func (e Event) Payload() ir.IRObject {
	p := ir.IRObject{}
	switch e.Kind {
	case KindPointAwarded, KindPointRetracted:
		p["side"] = ir.IRString(e.Side)
	case KindRuleSetChanged:
		p["target_score"] = ir.IRInt(e.TargetScore)
	}
	return p
}

// ParseEventKind validates a stored kind string.
func ParseEventKind(s string) (EventKind, error) {
	switch k := EventKind(s); k {
	case KindPointAwarded, KindPointRetracted, KindUndoRequested,
		KindMatchReset, KindRuleSetChanged:
		return k, nil
	}
	return "", fmt.Errorf("unknown event kind %q", s)
}

// ParseEvent rebuilds an Event from a journaled kind and payload.
// Only the shape of the payload is checked.
func ParseEvent(kind string, payload ir.IRObject) (Event, error) {
	k, err := ParseEventKind(kind)
	if err != nil {
		return Event{}, err
	}

	ev := Event{Kind: k}
	switch k {
	case KindPointAwarded, KindPointRetracted:
		raw, ok := payload["side"].(ir.IRString)
		if !ok {
			return Event{}, fmt.Errorf("%s: payload missing side", k)
		}
		// Not validated: a rejected event with a bad side must replay as
		// the same rejected event.
		ev.Side = ir.Side(raw)
	case KindRuleSetChanged:
		raw, ok := payload["target_score"].(ir.IRInt)
		if !ok {
			return Event{}, fmt.Errorf("%s: payload missing target_score", k)
		}
		ev.TargetScore = int(raw)
	}
	return ev, nil
}
