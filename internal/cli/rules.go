package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/rally/internal/rules"
)

// RulesOptions holds flags for the rules command.
type RulesOptions struct {
	*RootOptions
	File string
}

// PresetInfo is one preset in the rules listing.
type PresetInfo struct {
	Name        string `json:"name"`
	TargetScore int    `json:"target_score"`
	MaxScore    int    `json:"max_score"`
	WinBy       int    `json:"win_by"`
	BuiltIn     bool   `json:"built_in"`
}

// RulesError is the JSON detail for an invalid preset file.
type RulesError struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// NewRulesCommand creates the rules command.
func NewRulesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RulesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List rule presets and validate preset files",
		Long: `List the built-in rule presets, optionally merged with presets from a
CUE file. The file is validated against the preset schema:

  presets: {
  	short: { target: 7, max: 11, win_by: 1 }
  }

win_by defaults to 2. A file preset with a built-in name replaces it.

Exit codes:
  0 - Presets listed
  1 - The preset file is invalid
  2 - Command error

Examples:
  rally rules
  rally rules --file presets.cue
  rally rules --file presets.cue --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRules(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.File, "file", "", "CUE preset file (default $RALLY_RULES_FILE)")

	return cmd
}

func runRules(opts *RulesOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	builtIn := rules.Presets()
	presets := builtIn

	file := flagOr(cmd, "file", opts.File, opts.settings().RulesFile)
	if file != "" {
		if !fileExists(file) {
			return NewExitError(ExitCommandError, fmt.Sprintf("preset file not found: %s", file))
		}
		extra, err := rules.LoadFile(file)
		if err != nil {
			detail := rulesErrorDetail(err)
			_ = f.Error(ErrCodeInvalidRules, err.Error(), detail)
			return WrapExitError(ExitFailure, "invalid preset file", err)
		}
		f.VerboseLog("loaded %d preset(s) from %s", len(extra), file)
		presets = presets.Merge(extra)
	}

	infos := make([]PresetInfo, 0, len(presets))
	for _, name := range presets.Names() {
		r := presets[name]
		_, isBuiltIn := builtIn[name]
		infos = append(infos, PresetInfo{
			Name:        name,
			TargetScore: r.TargetScore,
			MaxScore:    r.MaxScore,
			WinBy:       r.WinBy,
			BuiltIn:     isBuiltIn && builtIn[name] == r,
		})
	}

	if f.JSON() {
		return f.Success(infos)
	}

	w := f.Writer
	fmt.Fprintf(w, "%-16s %6s %4s %6s\n", "PRESET", "TARGET", "CAP", "WIN BY")
	for _, p := range infos {
		fmt.Fprintf(w, "%-16s %6d %4d %6d\n", p.Name, p.TargetScore, p.MaxScore, p.WinBy)
	}
	return nil
}

// rulesErrorDetail returns a *RulesError for validation errors, else nil.
func rulesErrorDetail(err error) any {
	var ve *rules.ValidationError
	if !errors.As(err, &ve) {
		return nil
	}
	d := &RulesError{Code: string(ve.Code), Field: ve.Field, Message: ve.Message}
	if ve.Pos.IsValid() {
		d.File = ve.Pos.Filename()
		d.Line = ve.Pos.Line()
		d.Column = ve.Pos.Column()
	}
	return d
}
