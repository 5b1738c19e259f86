// Package logging configures the zerolog logger every layer above
// pkg/graph writes through: pkg/server and pkg/watch log through
// Component loggers derived from the global github.com/rs/zerolog/log
// logger, and cmd/metro calls Init at startup to point that global
// logger at the level/format/output a user's config or
// --verbose/--quiet flags ask for.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config controls how Init builds the global logger.
type Config struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // "console" (human) or "json"
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or a file path
	Caller bool   `yaml:"caller" mapstructure:"caller"` // include file:line of the log call
}

// DefaultConfig returns the logger settings cmd/metro starts with
// before a config file or flags override them.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "console",
		Output: "stderr",
		Caller: false,
	}
}

// Init sets the global level and replaces the global zerolog logger
// (log.Logger) with one built from cfg. Loggers already derived from
// the previous log.Logger, such as package-level Component loggers,
// keep their old output and format; only the global level change
// reaches them.
func Init(cfg Config) error {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return fmt.Errorf("logging: parse level %q: %w", cfg.Level, err)
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var output io.Writer
	switch strings.ToLower(cfg.Output) {
	case "", "stderr":
		output = os.Stderr
	case "stdout":
		output = os.Stdout
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("logging: open log file %s: %w", cfg.Output, err)
		}
		output = f
	}

	if strings.ToLower(cfg.Format) == "console" {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: "15:04:05"}
	}

	ctx := zerolog.New(output).With().Timestamp()
	if cfg.Caller {
		ctx = ctx.Caller()
	}

	log.Logger = ctx.Logger()
	return nil
}

// Component returns a child logger tagged with which layer emitted
// the event, e.g. logging.Component("watch") inside pkg/watch. Every
// consumer of this package scopes its logging through one of these
// rather than writing to the bare global logger directly, so a
// `metro build --verbose` trace reads as a sequence of named stages
// instead of undifferentiated lines.
func Component(name string) zerolog.Logger {
	return log.Logger.With().Str("component", name).Logger()
}

// ForModule scopes a component logger further to a single module
// path, the unit traversal reasons about (pkg/graph's Module.Path),
// by adding a "module" field to every event it logs.
func ForModule(component, path string) zerolog.Logger {
	return Component(component).With().Str("module", path).Logger()
}
