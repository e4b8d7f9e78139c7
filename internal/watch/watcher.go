// Package watch notifies callers when a log file on disk changes, so a long-running
// consumer (e.g. "logfilectl watch") can re-read new messages as they're appended.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FallbackEnv, when set to "false" or "0", disables the polling fallback and makes a
// failure to set up fsnotify a hard error instead.
const FallbackEnv = "LOGFILECTL_WATCH_FALLBACK"

// Watcher monitors a single log file path for external modification, debouncing bursts of
// filesystem events into one callback invocation.
type Watcher struct {
	path      string
	parentDir string
	onChanged func()
	debouncer *debouncer

	fsWatcher *fsnotify.Watcher
	pollMode  bool
	pollEvery time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Watcher for path. onChanged is invoked (after debouncing) whenever the
// file is created, written to, or replaced. It falls back to polling if fsnotify cannot be
// set up, unless FallbackEnv disables that.
func New(path string, onChanged func()) (*Watcher, error) {
	w := &Watcher{
		path:      path,
		parentDir: filepath.Dir(path),
		onChanged: onChanged,
		debouncer: newDebouncer(500*time.Millisecond, onChanged),
		pollEvery: 2 * time.Second,
	}

	fallbackDisabled := os.Getenv(FallbackEnv) == "false" || os.Getenv(FallbackEnv) == "0"

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		if fallbackDisabled {
			return nil, fmt.Errorf("fsnotify unavailable and %s disables the polling fallback: %w", FallbackEnv, err)
		}
		w.pollMode = true
		return w, nil
	}

	if err := fsw.Add(w.parentDir); err != nil {
		_ = fsw.Close()
		if fallbackDisabled {
			return nil, fmt.Errorf("watch parent directory %s and %s disables the polling fallback: %w", w.parentDir, FallbackEnv, err)
		}
		w.pollMode = true
		return w, nil
	}

	w.fsWatcher = fsw
	return w, nil
}

// Start begins monitoring in a background goroutine until ctx is cancelled or Close is
// called. Must be called at most once.
func (w *Watcher) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(1)
	if w.pollMode {
		go w.runPoll(ctx)
	} else {
		go w.runFsnotify(ctx)
	}
}

// Close stops the watcher and releases the underlying fsnotify handle, if any.
func (w *Watcher) Close() error {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.debouncer.stop()
	if w.fsWatcher != nil {
		return w.fsWatcher.Close()
	}
	return nil
}

func (w *Watcher) runFsnotify(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) == filepath.Clean(w.path) {
				w.debouncer.trigger()
			}
		case _, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) runPoll(ctx context.Context) {
	defer w.wg.Done()
	var lastMod time.Time
	var lastSize int64
	if fi, err := os.Stat(w.path); err == nil {
		lastMod, lastSize = fi.ModTime(), fi.Size()
	}

	ticker := time.NewTicker(w.pollEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fi, err := os.Stat(w.path)
			if err != nil {
				continue
			}
			if !fi.ModTime().Equal(lastMod) || fi.Size() != lastSize {
				lastMod, lastSize = fi.ModTime(), fi.Size()
				w.debouncer.trigger()
			}
		}
	}
}
