// Package sessionlock provides an advisory, cross-process exclusion point for CLI
// invocations against the same log file. It does not replace SQLite's own exclusive lock;
// it only keeps two "logfilectl" invocations from racing each other into a confusing
// busy-timeout error against that lock.
package sessionlock

import (
	"fmt"

	"github.com/gofrs/flock"
)

// Lock wraps a gofrs/flock advisory file lock sitting alongside a log file.
type Lock struct {
	f *flock.Flock
}

// pathFor derives the sidecar lock file path for a log file path.
func pathFor(logFilePath string) string {
	return logFilePath + ".lock"
}

// TryAcquire attempts to take the advisory lock for logFilePath without blocking. It
// returns a nil Lock and no error if another process already holds it.
func TryAcquire(logFilePath string) (*Lock, error) {
	f := flock.New(pathFor(logFilePath))
	locked, err := f.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring session lock for %s: %w", logFilePath, err)
	}
	if !locked {
		return nil, nil
	}
	return &Lock{f: f}, nil
}

// Release drops the advisory lock. Safe to call on a nil *Lock.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	return l.f.Unlock()
}
