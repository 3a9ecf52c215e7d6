package ir

import "fmt"

// IR converts the rule set to its canonical object form.
func (r RuleSet) IR() IRObject {
	return IRObject{
		"target_score": IRInt(r.TargetScore),
		"max_score":    IRInt(r.MaxScore),
		"win_by":       IRInt(r.WinBy),
	}
}

// IR converts the set result to its canonical object form.
func (r SetResult) IR() IRObject {
	return IRObject{
		"score_a": IRInt(r.ScoreA),
		"score_b": IRInt(r.ScoreB),
		"winner":  IRString(r.Winner),
	}
}

// IR converts the state to its canonical object form.
// The "winner" key is omitted while no winner is decided (null is not
// representable in canonical JSON).
func (s MatchState) IR() IRObject {
	sets := make(IRArray, len(s.CompletedSets))
	for i, r := range s.CompletedSets {
		sets[i] = r.IR()
	}

	obj := IRObject{
		"score_a":        IRInt(s.ScoreA),
		"score_b":        IRInt(s.ScoreB),
		"sets_a":         IRInt(s.SetsA),
		"sets_b":         IRInt(s.SetsB),
		"current_set":    IRInt(s.CurrentSet),
		"completed_sets": sets,
		"serving":        IRString(s.Serving),
	}
	if s.Winner != "" {
		obj["winner"] = IRString(s.Winner)
	}
	return obj
}

// ParseRuleSet is the inverse of RuleSet.IR.
func ParseRuleSet(obj IRObject) (RuleSet, error) {
	var r RuleSet
	var err error
	if r.TargetScore, err = intField(obj, "target_score"); err != nil {
		return RuleSet{}, err
	}
	if r.MaxScore, err = intField(obj, "max_score"); err != nil {
		return RuleSet{}, err
	}
	if r.WinBy, err = intField(obj, "win_by"); err != nil {
		return RuleSet{}, err
	}
	return r, nil
}

// ParseMatchState is the inverse of MatchState.IR.
func ParseMatchState(obj IRObject) (MatchState, error) {
	var s MatchState
	var err error

	ints := []struct {
		key string
		dst *int
	}{
		{"score_a", &s.ScoreA},
		{"score_b", &s.ScoreB},
		{"sets_a", &s.SetsA},
		{"sets_b", &s.SetsB},
		{"current_set", &s.CurrentSet},
	}
	for _, f := range ints {
		if *f.dst, err = intField(obj, f.key); err != nil {
			return MatchState{}, err
		}
	}

	if s.Serving, err = sideField(obj, "serving"); err != nil {
		return MatchState{}, err
	}
	if _, ok := obj["winner"]; ok {
		if s.Winner, err = sideField(obj, "winner"); err != nil {
			return MatchState{}, err
		}
	}

	raw, ok := obj["completed_sets"]
	if !ok {
		return MatchState{}, fmt.Errorf("missing field %q", "completed_sets")
	}
	arr, ok := raw.(IRArray)
	if !ok {
		return MatchState{}, fmt.Errorf("field %q: expected array, got %T", "completed_sets", raw)
	}
	s.CompletedSets = make([]SetResult, len(arr))
	for i, elem := range arr {
		setObj, ok := elem.(IRObject)
		if !ok {
			return MatchState{}, fmt.Errorf("completed_sets[%d]: expected object, got %T", i, elem)
		}
		r := &s.CompletedSets[i]
		if r.ScoreA, err = intField(setObj, "score_a"); err != nil {
			return MatchState{}, fmt.Errorf("completed_sets[%d]: %w", i, err)
		}
		if r.ScoreB, err = intField(setObj, "score_b"); err != nil {
			return MatchState{}, fmt.Errorf("completed_sets[%d]: %w", i, err)
		}
		if r.Winner, err = sideField(setObj, "winner"); err != nil {
			return MatchState{}, fmt.Errorf("completed_sets[%d]: %w", i, err)
		}
	}

	return s, nil
}

func intField(obj IRObject, key string) (int, error) {
	raw, ok := obj[key]
	if !ok {
		return 0, fmt.Errorf("missing field %q", key)
	}
	n, ok := raw.(IRInt)
	if !ok {
		return 0, fmt.Errorf("field %q: expected int, got %T", key, raw)
	}
	return int(n), nil
}

func sideField(obj IRObject, key string) (Side, error) {
	raw, ok := obj[key]
	if !ok {
		return "", fmt.Errorf("missing field %q", key)
	}
	str, ok := raw.(IRString)
	if !ok {
		return "", fmt.Errorf("field %q: expected string, got %T", key, raw)
	}
	side := Side(str)
	if !side.Valid() {
		return "", fmt.Errorf("field %q: invalid side %q", key, str)
	}
	return side, nil
}
