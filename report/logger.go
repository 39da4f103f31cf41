// Package report implements the process-wide log sink and the per-file
// reporter that the engine invokes on reaping a completed slot.
package report

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// Logger is a process-wide, mutex-guarded log sink gated by an integer
// verbosity level incremented once per -l flag. It satisfies pattern.Logger.
type Logger struct {
	mu    sync.Mutex
	out   *log.Logger
	Level int
}

// NewLogger returns a Logger writing to w at the given verbosity level.
func NewLogger(w io.Writer, level int) *Logger {
	return &Logger{
		out:   log.New(w, "", log.LstdFlags),
		Level: level,
	}
}

// Logf emits a formatted line if importance is within the configured
// verbosity level (importance 0 always logs; higher importance values are
// progressively more verbose and require a correspondingly higher Level).
func (l *Logger) Logf(importance int, format string, args ...any) {
	if importance > l.Level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.Printf(format, args...)
}

// Fatalf logs a final message to standard error and exits the process with
// code. It is the bifurcated counterpart of cobra.CheckErr: this tool's
// error taxonomy needs exit codes 1, 2, and 3, not just cobra's fixed 1.
func Fatalf(code int, format string, args ...any) {
	fmt.Fprintln(os.Stderr, fmt.Sprintf(format, args...))
	os.Exit(code)
}
