package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/rally/internal/ir"
)

// marshalIR converts an IR object to canonical JSON TEXT for storage.
// The same bytes feed the state hash, so journals compare byte for byte.
func marshalIR(obj ir.IRObject) (string, error) {
	data, err := ir.MarshalCanonical(obj)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// unmarshalIR parses canonical JSON TEXT to an IRObject.
// Numbers go through json.Number so nothing is lost to float64.
func unmarshalIR(data string) (ir.IRObject, error) {
	if data == "" || data == "{}" {
		return ir.IRObject{}, nil
	}
	var obj ir.IRObject
	if err := json.Unmarshal([]byte(data), &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func marshalRules(r ir.RuleSet) (string, error) {
	s, err := marshalIR(r.IR())
	if err != nil {
		return "", fmt.Errorf("marshal rules: %w", err)
	}
	return s, nil
}

func unmarshalRules(data string) (ir.RuleSet, error) {
	obj, err := unmarshalIR(data)
	if err != nil {
		return ir.RuleSet{}, fmt.Errorf("unmarshal rules: %w", err)
	}
	r, err := ir.ParseRuleSet(obj)
	if err != nil {
		return ir.RuleSet{}, fmt.Errorf("unmarshal rules: %w", err)
	}
	return r, nil
}

func marshalState(st ir.MatchState) (string, error) {
	s, err := marshalIR(st.IR())
	if err != nil {
		return "", fmt.Errorf("marshal state: %w", err)
	}
	return s, nil
}

func unmarshalState(data string) (ir.MatchState, error) {
	obj, err := unmarshalIR(data)
	if err != nil {
		return ir.MatchState{}, fmt.Errorf("unmarshal state: %w", err)
	}
	st, err := ir.ParseMatchState(obj)
	if err != nil {
		return ir.MatchState{}, fmt.Errorf("unmarshal state: %w", err)
	}
	return st, nil
}

func marshalPayload(p ir.IRObject) (string, error) {
	if p == nil {
		p = ir.IRObject{}
	}
	s, err := marshalIR(p)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return s, nil
}

func unmarshalPayload(data string) (ir.IRObject, error) {
	obj, err := unmarshalIR(data)
	if err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return obj, nil
}
