// Package eventlog appends one-line compliance events of the form
// "<RFC3339 timestamp> | <message>" to a plain text file. Files are opened in
// append mode for each event and never rotated.
package eventlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/docuflow-cli/internal/clock"
)

// Log is an append-only event log. A nil *Log discards every event.
type Log struct {
	path  string
	clock clock.Clock
}

// New returns a Log writing to path. An empty path yields a nil Log.
func New(path string, c clock.Clock) *Log {
	if path == "" {
		return nil
	}
	if c == nil {
		c = clock.Real{}
	}
	return &Log{path: path, clock: c}
}

// Append writes a single event line.
func (l *Log) Append(message string) error {
	if l == nil {
		return nil
	}
	if dir := filepath.Dir(l.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open event log: %w", err)
	}
	defer f.Close()
	// keep one event per line
	message = strings.ReplaceAll(message, "\n", " ")
	if _, err := fmt.Fprintf(f, "%s | %s\n", l.clock.Now().Format(time.RFC3339), message); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// Appendf formats and appends an event.
func (l *Log) Appendf(format string, args ...any) error {
	return l.Append(fmt.Sprintf(format, args...))
}
