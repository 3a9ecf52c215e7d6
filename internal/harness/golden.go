package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/rally/internal/ir"
)

// TraceSnapshot captures the complete trace for a scenario execution.
// It is serialized with canonical JSON so golden files compare byte for
// byte across runs and platforms.
type TraceSnapshot struct {
	ScenarioName string
	MatchID      string
	Rules        ir.RuleSet
	Trace        []TraceEvent
}

// IR converts the snapshot to its canonical object form.
//
// Outcome flags that are false and empty reasons are omitted to keep
// golden files readable.
func (s *TraceSnapshot) IR() ir.IRObject {
	trace := make(ir.IRArray, len(s.Trace))
	for i, ev := range s.Trace {
		obj := ir.IRObject{
			"seq":           ir.IRInt(ev.Seq),
			"step":          ir.IRInt(ev.Step),
			"kind":          ir.IRString(ev.Event.Kind),
			"payload":       ev.Event.Payload(),
			"accepted":      ir.IRBool(ev.Outcome.Accepted),
			"history_depth": ir.IRInt(ev.Outcome.HistoryDepth),
			"state":         ev.State.IR(),
		}
		if ev.Outcome.Reason != "" {
			obj["reason"] = ir.IRString(ev.Outcome.Reason)
		}
		if ev.Outcome.SetCompleted {
			obj["set_completed"] = ir.IRBool(true)
		}
		if ev.Outcome.MatchCompleted {
			obj["match_completed"] = ir.IRBool(true)
		}
		trace[i] = obj
	}

	return ir.IRObject{
		"scenario_name": ir.IRString(s.ScenarioName),
		"match_id":      ir.IRString(s.MatchID),
		"rules":         s.Rules.IR(),
		"trace":         trace,
	}
}

// MarshalCanonical renders the snapshot as canonical JSON.
func (s *TraceSnapshot) MarshalCanonical() ([]byte, error) {
	return ir.MarshalCanonical(s.IR())
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if the scenario cannot be executed. A trace that does
// not match the golden file fails t through goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	start, err := scenario.RuleSet()
	if err != nil {
		return nil, err
	}

	snapshot := TraceSnapshot{
		ScenarioName: scenario.Name,
		MatchID:      result.MatchID,
		Rules:        start,
		Trace:        result.Trace,
	}
	if err := AssertGolden(t, scenario.Name, &snapshot); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares a snapshot against testdata/golden/{name}.golden.
func AssertGolden(t *testing.T, name string, snapshot *TraceSnapshot) error {
	t.Helper()

	traceJSON, err := snapshot.MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, traceJSON)

	return nil
}
