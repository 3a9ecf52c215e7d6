package rules

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/rally/internal/ir"
)

//go:embed schema.cue
var schemaCUE string

// presetFields mirrors #RuleSet for decoding.
type presetFields struct {
	Target int `json:"target"`
	Max    int `json:"max"`
	WinBy  int `json:"win_by"`
}

// LoadFile reads CUE presets from path.
func LoadFile(path string) (PresetSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets file: %w", err)
	}
	return load(string(data), path)
}

// LoadString compiles CUE presets from src.
func LoadString(src string) (PresetSet, error) {
	return load(src, "presets.cue")
}

func load(src, filename string) (PresetSet, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile embedded schema: %w", err)
	}

	doc := ctx.CompileString(src, cue.Filename(filename))
	if err := doc.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v := schema.Unify(doc)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	presetsVal := v.LookupPath(cue.ParsePath("presets"))
	if !presetsVal.Exists() {
		return PresetSet{}, nil
	}

	iter, err := presetsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	out := PresetSet{}
	for iter.Next() {
		name := iter.Label()

		var f presetFields
		if err := iter.Value().Decode(&f); err != nil {
			return nil, formatCUEError(err)
		}

		r := ir.RuleSet{TargetScore: f.Target, MaxScore: f.Max, WinBy: f.WinBy}
		if err := Validate(r); err != nil {
			if ve, ok := err.(*ValidationError); ok {
				ve.Pos = iter.Value().Pos()
				ve.Message = fmt.Sprintf("preset %q: %s", name, ve.Message)
			}
			return nil, err
		}
		out[name] = r
	}

	return out, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &ValidationError{Code: CodeInvalidPreset, Message: err.Error()}
	}

	first := errs[0]
	ve := &ValidationError{
		Code:    CodeInvalidPreset,
		Message: first.Error(),
	}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		ve.Pos = positions[0]
	}
	return ve
}
