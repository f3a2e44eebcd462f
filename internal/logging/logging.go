// Package logging provides the per-run log: every entry is appended to a
// timestamped file in the output directory, and entries at Info or above are
// mirrored to the console (Debug too, in verbose mode). The file keeps the
// full trail for audits; the console stays readable during a large batch.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Level ranks log severities
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the level tag written to the run log file
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// RunLog is a leveled logger scoped to one validation run. Safe for
// concurrent use by the worker pool.
type RunLog struct {
	mu      sync.Mutex
	file    *os.File
	console io.Writer
	verbose bool
}

// New creates the output directory if needed and opens a timestamped run log
// inside it, returning the logger and the log file path
func New(outputDir string, console io.Writer, verbose bool) (*RunLog, string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, "", fmt.Errorf("create output dir: %w", err)
	}

	name := fmt.Sprintf("validation_log_%s.log", time.Now().Format("20060102_150405"))
	path := filepath.Join(outputDir, name)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, "", fmt.Errorf("open run log: %w", err)
	}

	return &RunLog{file: file, console: console, verbose: verbose}, path, nil
}

// Discard returns a logger that drops everything; used in tests
func Discard() *RunLog {
	return &RunLog{}
}

// Debugf records detail useful when tracing a single order's decision
func (l *RunLog) Debugf(format string, args ...any) {
	l.write(LevelDebug, format, args...)
}

// Infof records run milestones and per-order results
func (l *RunLog) Infof(format string, args ...any) {
	l.write(LevelInfo, format, args...)
}

// Warnf records recoverable problems (bad input rows, failed resends)
func (l *RunLog) Warnf(format string, args ...any) {
	l.write(LevelWarn, format, args...)
}

// Errorf records failures that end the run or drop an order
func (l *RunLog) Errorf(format string, args ...any) {
	l.write(LevelError, format, args...)
}

// Close flushes and closes the run log file
func (l *RunLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}

	err := l.file.Close()
	l.file = nil
	return err
}

func (l *RunLog) write(level Level, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		fmt.Fprintf(l.file, "%s %-5s %s\n", time.Now().Format(time.RFC3339), level, msg)
	}

	if l.console != nil && (level >= LevelInfo || l.verbose) {
		fmt.Fprintln(l.console, msg)
	}
}
