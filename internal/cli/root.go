package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/roach88/rally/internal/config"
	"github.com/roach88/rally/internal/logger"
)

// RootOptions holds global flags for all commands, plus the settings
// resolved before any subcommand runs.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// EnvFiles are the dotenv files read by config.Load. Empty means ".env".
	EnvFiles []string

	Config *config.Config
	Logger zerolog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the rally CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{Logger: zerolog.Nop()}

	cmd := &cobra.Command{
		Use:   "rally",
		Short: "rally - badminton scorekeeper",
		Long: `A rally-scoring scorekeeper for best-of-three badminton matches.

Keeps score from the terminal, journals every event to SQLite and
verifies that journaled matches replay to the same result.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return opts.resolve(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (debug logging to stderr)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringSliceVar(&opts.EnvFiles, "env-file", nil, "dotenv file(s) to load (default .env)")

	cmd.AddCommand(NewPlayCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewRulesCommand(opts))

	return cmd
}

// resolve loads the configuration and builds the stderr logger.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load(zerolog.Nop(), o.EnvFiles...)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	o.Config = cfg

	level := cfg.Level()
	if o.Verbose {
		level = zerolog.DebugLevel
	}
	if o.Format == "json" {
		o.Logger = logger.New(cmd.ErrOrStderr(), level)
	} else {
		o.Logger = logger.NewConsole(cmd.ErrOrStderr(), level)
	}
	return nil
}

// settings returns the resolved configuration, falling back to the
// environment defaults when a subcommand runs without the root command.
func (o *RootOptions) settings() *config.Config {
	if o.Config != nil {
		return o.Config
	}
	return config.Default()
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
