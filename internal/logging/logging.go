// Package logging provides JSON-lines structured logging.
//
// While the TUI is running the terminal belongs to Bubble Tea, so the
// default destination is a log file under the data directory rather than
// stderr.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Config configures the structured logger.
type Config struct {
	// Output is the writer for log output (default: os.Stderr)
	Output io.Writer

	// Level is the minimum log level (default: LevelInfo)
	Level slog.Level

	// Debug enables debug level logging (overrides Level)
	Debug bool
}

// New creates a JSON-lines structured logger. Entries look like:
//
//	{"ts":"2026-02-03T10:30:00Z","level":"INFO","msg":"search done","results":18}
func New(cfg *Config) *slog.Logger {
	if cfg == nil {
		cfg = &Config{}
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	level := cfg.Level
	if cfg.Debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Rename "time" to "ts" to keep lines compact
			if a.Key == slog.TimeKey {
				a.Key = "ts"
			}
			return a
		},
	}

	return slog.New(slog.NewJSONHandler(output, opts))
}

// NewFileLogger creates a logger appending to the given path, creating
// parent directories as needed. The returned closer owns the file handle.
// SEEK_DEBUG=1 enables debug logging regardless of level.
func NewFileLogger(path string, level slog.Level) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := New(&Config{
		Output: f,
		Level:  level,
		Debug:  os.Getenv("SEEK_DEBUG") == "1",
	})
	return logger, f, nil
}

// ParseLevel maps a config level string to a slog.Level.
// Unknown strings map to LevelInfo.
func ParseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops everything. Used where a component
// requires a logger but the caller has nowhere to send it.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
