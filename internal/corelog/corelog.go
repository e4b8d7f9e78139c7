// Package corelog is the operational logger used by cmd/logfilectl and internal/logstore:
// leveled, prefixed messages written to stderr by default as "Warning: ...\n"/"Info: ...\n"
// lines, with an optional rotating file sink for long-running watch invocations.
package corelog

import (
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Level orders message severity; the zero value is Debug, the most verbose level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "Debug"
	case LevelInfo:
		return "Info"
	case LevelWarn:
		return "Warning"
	case LevelError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Logger writes leveled messages to an underlying io.Writer, filtering out anything below
// its configured minimum level.
type Logger struct {
	mu  sync.Mutex
	out io.Writer
	min Level
}

// New creates a Logger writing to w, showing messages at min level and above.
func New(w io.Writer, min Level) *Logger {
	return &Logger{out: w, min: min}
}

// NewStderr creates a Logger writing to os.Stderr, showing Info and above.
func NewStderr() *Logger {
	return New(os.Stderr, LevelInfo)
}

// NewRotatingFile creates a Logger backed by a lumberjack-managed rotating file at path,
// for daemon-style invocations of cmd/logfilectl (e.g. `logfilectl watch`) that run
// unattended for long stretches.
func NewRotatingFile(path string, maxSizeMB, maxBackups, maxAgeDays int, min Level) *Logger {
	return New(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}, min)
}

func (l *Logger) log(level Level, format string, args ...any) {
	if level < l.min {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "%s: %s\n", level, fmt.Sprintf(format, args...))
}

func (l *Logger) Debugf(format string, args ...any) { l.log(LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.log(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.log(LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.log(LevelError, format, args...) }
