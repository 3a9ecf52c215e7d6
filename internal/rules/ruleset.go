package rules

import (
	"fmt"
	"sort"

	"github.com/roach88/rally/internal/ir"
)

const (
	// MinTarget and MaxTarget bound the selectable target score.
	MinTarget = 1
	MaxTarget = 99

	// DefaultWinBy is the margin used by every built-in rule set.
	DefaultWinBy = 2

	// DefaultTarget is the standard badminton target.
	DefaultTarget = 21
)

// Preset names for the built-in rule sets.
const (
	PresetStandard = "standard"
	PresetCasual   = "casual"
)

// knownCaps pins the caps of the two games players actually pick.
var knownCaps = map[int]int{
	11: 15,
	21: 30,
}

// ForTarget maps a target-score selection to a full rule set.
//
// 11 and 21 use their conventional caps (15 and 30). Any other target in
// [MinTarget, MaxTarget] derives its cap: target+4 up to 11, target+9 above.
func ForTarget(target int) (ir.RuleSet, error) {
	if target < MinTarget || target > MaxTarget {
		return ir.RuleSet{}, &ValidationError{
			Code:    CodeInvalidTarget,
			Field:   "target_score",
			Message: fmt.Sprintf("target %d out of range [%d, %d]", target, MinTarget, MaxTarget),
		}
	}

	maxScore, ok := knownCaps[target]
	if !ok {
		if target <= 11 {
			maxScore = target + 4
		} else {
			maxScore = target + 9
		}
	}

	return ir.RuleSet{TargetScore: target, MaxScore: maxScore, WinBy: DefaultWinBy}, nil
}

// MustForTarget is like ForTarget but panics on error.
// Use only in tests or with constant targets.
func MustForTarget(target int) ir.RuleSet {
	r, err := ForTarget(target)
	if err != nil {
		panic(err)
	}
	return r
}

// Default returns the standard 21-point rule set.
func Default() ir.RuleSet {
	return MustForTarget(DefaultTarget)
}

// Validate checks the structural invariants of a rule set.
func Validate(r ir.RuleSet) error {
	if r.TargetScore < MinTarget || r.TargetScore > MaxTarget {
		return &ValidationError{
			Code:    CodeInvalidTarget,
			Field:   "target_score",
			Message: fmt.Sprintf("target %d out of range [%d, %d]", r.TargetScore, MinTarget, MaxTarget),
		}
	}
	if r.WinBy < 1 {
		return &ValidationError{
			Code:    CodeInvalidMargin,
			Field:   "win_by",
			Message: fmt.Sprintf("win_by must be at least 1, got %d", r.WinBy),
		}
	}
	if r.MaxScore < r.TargetScore {
		return &ValidationError{
			Code:    CodeInvalidCap,
			Field:   "max_score",
			Message: fmt.Sprintf("max_score %d is below target_score %d", r.MaxScore, r.TargetScore),
		}
	}
	return nil
}

// PresetSet is a named collection of rule sets.
type PresetSet map[string]ir.RuleSet

// Presets returns the built-in presets. The returned map is a fresh copy.
func Presets() PresetSet {
	return PresetSet{
		PresetStandard: MustForTarget(21),
		PresetCasual:   MustForTarget(11),
	}
}

// Names returns preset names in sorted order.
func (p PresetSet) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the preset with the given name.
func (p PresetSet) Lookup(name string) (ir.RuleSet, error) {
	r, ok := p[name]
	if !ok {
		return ir.RuleSet{}, &ValidationError{
			Code:    CodeUnknownPreset,
			Field:   "preset",
			Message: fmt.Sprintf("no preset named %q (have %v)", name, p.Names()),
		}
	}
	return r, nil
}

// Merge returns a new set containing p overlaid with other.
func (p PresetSet) Merge(other PresetSet) PresetSet {
	out := make(PresetSet, len(p)+len(other))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}
