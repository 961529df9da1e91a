// Package logging builds the zerolog loggers used by the MCP packages.
//
// Components take a *zerolog.Logger in their configuration. New builds one
// without touching package state; Setup additionally installs it as the
// process-wide default that NewLogger derives from when nothing is injected.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel is a level name as it appears in configuration.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

var zerologLevels = map[LogLevel]zerolog.Level{
	LevelDebug: zerolog.DebugLevel,
	LevelInfo:  zerolog.InfoLevel,
	LevelWarn:  zerolog.WarnLevel,
	"warning":  zerolog.WarnLevel,
	LevelError: zerolog.ErrorLevel,
}

// Config holds logger configuration.
type Config struct {
	// Level is the minimum level written. Unknown names mean info.
	Level LogLevel

	// Pretty switches from JSON lines to zerolog's console format.
	Pretty bool

	// Output defaults to os.Stderr. stdout stays free for MCP stdio
	// transports.
	Output io.Writer

	// App and Version are reported once by Setup.
	App     string
	Version string
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:   LevelInfo,
		Output:  os.Stderr,
		App:     "swiss-mcp",
		Version: "1.0.0",
	}
}

// ParseLevel validates a level name, case-insensitively.
func ParseLevel(name string) (LogLevel, error) {
	level := LogLevel(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := zerologLevels[level]; !ok {
		return "", fmt.Errorf("unknown log level %q", name)
	}
	return level, nil
}

// New builds a logger from cfg. It has its own level and does not modify
// zerolog's global state.
func New(cfg Config) zerolog.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	return zerolog.New(output).Level(parseLevel(cfg.Level)).With().Timestamp().Logger()
}

// Setup builds a logger with New, installs it as the process-wide default
// and logs a "logging initialized" event.
func Setup(cfg Config) zerolog.Logger {
	logger := New(cfg)

	zerolog.SetGlobalLevel(logger.GetLevel())
	log.Logger = logger

	logger.Info().
		Str("app", cfg.App).
		Str("version", cfg.Version).
		Bool("pretty", cfg.Pretty).
		Str("level", logger.GetLevel().String()).
		Msg("logging initialized")

	return logger
}

// NewLogger derives a component logger from the process-wide default.
func NewLogger(component string) zerolog.Logger {
	return Component(log.Logger, component)
}

// Component derives a child of parent tagged with a component field.
func Component(parent zerolog.Logger, component string) zerolog.Logger {
	return parent.With().Str("component", component).Logger()
}

func parseLevel(level LogLevel) zerolog.Level {
	if l, ok := zerologLevels[LogLevel(strings.ToLower(string(level)))]; ok {
		return l
	}
	return zerolog.InfoLevel
}

// Levels in use:
//
//	debug  client open/close, batch progress
//	info   outbound requests, cache hit/set/clear, gateway requests, startup
//	warn   retries, upstream error responses, cache store errors
//	error  requests that failed for good, serialization failures
//
// Common fields: component, method, url, attempt, max_retries, status,
// error_class, retry_after, cache_key (first 8 hex chars), items, request_id.
