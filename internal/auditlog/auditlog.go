// Package auditlog appends opened results to a CSV click log.
//
// The log is append-only: one row per open with a header row written when
// the file is first created. It exists for the user, not the program;
// nothing here reads it back.
package auditlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

var header = []string{"timestamp", "query", "title", "url"}

// Logger appends click records to a CSV file.
type Logger struct {
	path string
}

// New creates a click logger writing to path. The file is created lazily on
// the first append.
func New(path string) *Logger {
	return &Logger{path: path}
}

// Path returns the CSV file location.
func (l *Logger) Path() string {
	return l.path
}

// Append writes one click row. The header row is written first if the file
// is new or empty. The timestamp is recorded in RFC 3339 local time.
func (l *Logger) Append(ts time.Time, query, title, url string) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create click log directory: %w", err)
	}

	needHeader := true
	if info, err := os.Stat(l.path); err == nil && info.Size() > 0 {
		needHeader = false
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open click log: %w", err)
	}

	w := csv.NewWriter(f)
	if needHeader {
		if err := w.Write(header); err != nil {
			f.Close()
			return fmt.Errorf("failed to write click log header: %w", err)
		}
	}
	if err := w.Write([]string{ts.Format(time.RFC3339), query, title, url}); err != nil {
		f.Close()
		return fmt.Errorf("failed to write click log row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush click log: %w", err)
	}

	return f.Close()
}
