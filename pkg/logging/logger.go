// Package logging configures the zerolog stack shared by the client,
// poller, pagination and runner components.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel names the minimum severity for emitted log events.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// Config controls global logger setup.
type Config struct {
	// Level is the minimum severity to emit. Unknown values fall
	// back to info.
	Level LogLevel

	// Pretty switches from JSON lines to the console writer.
	Pretty bool

	// Output receives all log events.
	Output io.Writer
}

// DefaultConfig returns JSON logging at info level on stderr.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger and returns it. Component
// loggers created afterwards with NewLogger inherit its level and
// output.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	output := cfg.Output
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: cfg.Output}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger derives a logger tagged with the given component name.
// The components in this module are dune-client, poller, pagination
// and runner.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Outgoing request flow (operation, path, request id)
//   - Poll ticks while an execution is still running
//
// Info: Normal operation events
//   - Query submissions and their execution ids
//   - Executions reaching a terminal success status
//   - Pagination progress and completion
//
// Warn: Warning conditions that don't prevent operation
//   - Non-2xx API responses
//   - Executions ending in a failure status
//   - Pagination attempted against an unfinished execution
//
// Error: Error conditions requiring attention
//   - Transport failures
//   - Undecodable API responses
//   - Configuration errors
//
// Context Fields:
//   - operation: API operation (execute, status, results, matview)
//   - execution_id: Execution identifier
//   - query_id: Stored query identifier
//   - request_id: Per-request correlation id
//   - state: Execution status wire token
//   - kind: Error classification (request, parse, encoding, ...)
//   - pages / rows: Pagination progress counters
