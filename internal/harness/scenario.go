package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/rally/internal/engine"
	"github.com/roach88/rally/internal/ir"
	"github.com/roach88/rally/internal/rules"
	"github.com/roach88/rally/internal/testutil"
)

// Scenario is a scripted match: a rule set, a list of steps and the
// assertions that must hold afterwards.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Target is the starting target score. Zero means rules.DefaultTarget.
	Target int `yaml:"target,omitempty"`

	// MatchID is the fixed match ID to journal under.
	// Defaults to "match-<name>".
	MatchID string `yaml:"match_id,omitempty"`

	// Steps are executed in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final result.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one scripted action. Exactly one of Point, Retract, Rally,
// Undo, Reset and Rules must be set.
type Step struct {
	Point   string `yaml:"point,omitempty"`
	Retract string `yaml:"retract,omitempty"`
	Rally   string `yaml:"rally,omitempty"`
	Undo    bool   `yaml:"undo,omitempty"`
	Reset   bool   `yaml:"reset,omitempty"`
	Rules   *int   `yaml:"rules,omitempty"`

	// Times repeats the step. Zero means once.
	Times int `yaml:"times,omitempty"`

	// Expect is checked after the step's last event. Keys are outcome
	// fields (see outcomeKeys) or state fields (see stateKeys).
	Expect map[string]any `yaml:"expect,omitempty"`
}

// SetExpect is an expected completed set.
type SetExpect struct {
	ScoreA int    `yaml:"score_a"`
	ScoreB int    `yaml:"score_b"`
	Winner string `yaml:"winner"`
}

// Assertion validates the final result.
type Assertion struct {
	// Type selects the assertion, see the Assert* constants.
	Type string `yaml:"type"`

	// Expect holds state fields for final_state (subset match).
	Expect map[string]any `yaml:"expect,omitempty"`

	// Sets is the exact completed-set list for completed_sets.
	Sets []SetExpect `yaml:"sets,omitempty"`

	// Depth is the expected history depth for history_depth.
	Depth *int `yaml:"depth,omitempty"`

	// Kind and Accepted filter trace events for trace_count.
	Kind     string `yaml:"kind,omitempty"`
	Accepted *bool  `yaml:"accepted,omitempty"`

	// Count is the expected number of matching events for trace_count.
	Count *int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalState    = "final_state"
	AssertCompletedSets = "completed_sets"
	AssertHistoryDepth  = "history_depth"
	AssertInvariants    = "invariants"
	AssertTraceCount    = "trace_count"
	AssertJournalReplay = "journal_replay"
)

// stateKeys are the state fields that expect maps may name.
var stateKeys = map[string]bool{
	"score_a":     true,
	"score_b":     true,
	"sets_a":      true,
	"sets_b":      true,
	"current_set": true,
	"serving":     true,
	"winner":      true,
	"set_count":   true,
	"target":      true,
}

// outcomeKeys are the outcome fields a step expect may name.
var outcomeKeys = map[string]bool{
	"accepted":        true,
	"set_completed":   true,
	"match_completed": true,
	"history_depth":   true,
	"reason":          true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadDir loads every *.yaml and *.yml file in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		sc, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, sc)
	}
	return scenarios, nil
}

// RuleSet returns the scenario's starting rules.
func (s *Scenario) RuleSet() (ir.RuleSet, error) {
	target := s.Target
	if target == 0 {
		target = rules.DefaultTarget
	}
	return rules.ForTarget(target)
}

// FixedMatchID returns the match ID the scenario journals under.
func (s *Scenario) FixedMatchID() string {
	if s.MatchID != "" {
		return s.MatchID
	}
	return testutil.ScenarioMatchID(s.Name)
}

// Events expands the step into the engine events it dispatches.
func (st Step) Events() []engine.Event {
	var once []engine.Event
	switch {
	case st.Point != "":
		once = []engine.Event{engine.PointAwarded(stepSide(st.Point))}
	case st.Retract != "":
		once = []engine.Event{engine.PointRetracted(stepSide(st.Retract))}
	case st.Rally != "":
		for _, side := range testutil.Rallies(st.Rally) {
			once = append(once, engine.PointAwarded(side))
		}
	case st.Undo:
		once = []engine.Event{engine.UndoRequested()}
	case st.Reset:
		once = []engine.Event{engine.MatchReset()}
	case st.Rules != nil:
		once = []engine.Event{engine.RuleSetChanged(*st.Rules)}
	}

	times := st.Times
	if times == 0 {
		times = 1
	}
	events := make([]engine.Event, 0, len(once)*times)
	for i := 0; i < times; i++ {
		events = append(events, once...)
	}
	return events
}

// stepSide normalizes a side from YAML. Unknown sides pass through so
// scenarios can check that the engine rejects them.
func stepSide(s string) ir.Side {
	if side, err := ir.ParseSide(s); err == nil {
		return side
	}
	return ir.Side(s)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if _, err := s.RuleSet(); err != nil {
		return fmt.Errorf("target: %w", err)
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, st Step) error {
	actions := 0
	for _, set := range []bool{
		st.Point != "", st.Retract != "", st.Rally != "",
		st.Undo, st.Reset, st.Rules != nil,
	} {
		if set {
			actions++
		}
	}
	if actions != 1 {
		return fmt.Errorf("steps[%d]: exactly one of point, retract, rally, undo, reset, rules is required (got %d)", index, actions)
	}

	if st.Times < 0 {
		return fmt.Errorf("steps[%d]: times must be non-negative", index)
	}

	if st.Rally != "" {
		if r := strings.Trim(st.Rally, "AaBb \t"); r != "" {
			return fmt.Errorf("steps[%d]: rally may only contain A and B, got %q", index, st.Rally)
		}
	}

	for _, key := range sortedKeys(st.Expect) {
		if !stateKeys[key] && !outcomeKeys[key] {
			return fmt.Errorf("steps[%d].expect: unknown field %q", index, key)
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertFinalState:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
		for _, key := range sortedKeys(a.Expect) {
			if !stateKeys[key] {
				return fmt.Errorf("assertions[%d].expect: unknown field %q", index, key)
			}
		}
	case AssertCompletedSets:
		// An empty list is a valid expectation: no set completed.
	case AssertHistoryDepth:
		if a.Depth == nil || *a.Depth < 0 {
			return fmt.Errorf("assertions[%d]: non-negative depth is required for history_depth", index)
		}
	case AssertTraceCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for trace_count", index)
		}
		if a.Kind != "" {
			if _, err := engine.ParseEventKind(a.Kind); err != nil {
				return fmt.Errorf("assertions[%d]: %w", index, err)
			}
		}
	case AssertInvariants, AssertJournalReplay:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
