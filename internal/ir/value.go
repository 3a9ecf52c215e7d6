package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"unicode/utf16"
)

// IRValue is the closed set of values that may appear in canonical
// objects: IRString, IRInt, IRBool, IRArray and IRObject. There is no
// null and no float.
type IRValue interface {
	irValue()
}

type IRString string

// IRInt is always 64-bit; scores and seqs never go through float64.
type IRInt int64

type IRBool bool

type IRArray []IRValue

type IRObject map[string]IRValue

func (IRString) irValue() {}
func (IRInt) irValue()    {}
func (IRBool) irValue()   {}
func (IRArray) irValue()  {}
func (IRObject) irValue() {}

// SortedKeys returns the keys ordered by UTF-16 code units, the order
// canonical JSON requires.
func (obj IRObject) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
	})
	return keys
}

// UnmarshalJSON decodes a JSON object, rejecting null and non-integer
// numbers.
func (obj *IRObject) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("null is forbidden in IR")
	}

	v, err := fromJSON(raw)
	if err != nil {
		return err
	}
	*obj = v.(IRObject)
	return nil
}

// fromJSON converts a value produced by a json.Decoder with UseNumber.
func fromJSON(v any) (IRValue, error) {
	switch val := v.(type) {
	case string:
		return IRString(val), nil
	case bool:
		return IRBool(val), nil
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return nil, fmt.Errorf("number %s is not an int64", val)
		}
		return IRInt(n), nil
	case []any:
		arr := make(IRArray, 0, len(val))
		for i, elem := range val {
			iv, err := fromJSON(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr = append(arr, iv)
		}
		return arr, nil
	case map[string]any:
		obj := make(IRObject, len(val))
		for k, elem := range val {
			iv, err := fromJSON(elem)
			if err != nil {
				return nil, fmt.Errorf("%q: %w", k, err)
			}
			obj[k] = iv
		}
		return obj, nil
	case nil:
		return nil, fmt.Errorf("null is forbidden in IR")
	default:
		return nil, fmt.Errorf("unsupported JSON value %T", v)
	}
}
