// Package config loads rally settings from the environment.
//
// An optional .env file is read first; variables already set in the
// environment win over the file. Command-line flags override both.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/roach88/rally/internal/ir"
	"github.com/roach88/rally/internal/logger"
	"github.com/roach88/rally/internal/rules"
)

// Config holds the settings shared by all commands.
type Config struct {
	TargetScore int    `env:"RALLY_TARGET_SCORE" envDefault:"21"`
	Journal     string `env:"RALLY_JOURNAL" envDefault:":memory:"`
	LogLevel    string `env:"RALLY_LOG_LEVEL" envDefault:"info"`
	NameA       string `env:"RALLY_NAME_A" envDefault:"HOME"`
	NameB       string `env:"RALLY_NAME_B" envDefault:"GUEST"`
	RulesFile   string `env:"RALLY_RULES_FILE"`
}

// Load reads the given dotenv files (".env" when none are named) and
// parses the environment into a validated Config. Missing dotenv files
// are not an error.
func Load(log zerolog.Logger, files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil {
		log.Debug().Err(err).Msg(".env file not loaded, using environment variables or defaults")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Debug().
		Int("target_score", cfg.TargetScore).
		Str("journal", cfg.Journal).
		Str("log_level", cfg.LogLevel).
		Str("rules_file", cfg.RulesFile).
		Msg("configuration loaded")

	return &cfg, nil
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		TargetScore: rules.DefaultTarget,
		Journal:     ":memory:",
		LogLevel:    "info",
		NameA:       "HOME",
		NameB:       "GUEST",
	}
}

// Validate checks the target score and log level.
func (c *Config) Validate() error {
	if c.TargetScore <= 0 {
		return fmt.Errorf("RALLY_TARGET_SCORE must be positive, got %d", c.TargetScore)
	}
	if _, err := rules.ForTarget(c.TargetScore); err != nil {
		return fmt.Errorf("RALLY_TARGET_SCORE: %w", err)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("RALLY_LOG_LEVEL: %w", err)
	}
	return nil
}

// Rules returns the rule set for the configured target score.
func (c *Config) Rules() (ir.RuleSet, error) {
	return rules.ForTarget(c.TargetScore)
}

// Level returns the parsed log level.
func (c *Config) Level() zerolog.Level {
	level, err := logger.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
