package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatcherPollModeDetectsChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.glog")
	if err := os.WriteFile(path, []byte("v1"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var calls int32
	w := &Watcher{
		path:      path,
		parentDir: dir,
		onChanged: func() { atomic.AddInt32(&calls, 1) },
		pollMode:  true,
		pollEvery: 10 * time.Millisecond,
	}
	w.debouncer = newDebouncer(10*time.Millisecond, w.onChanged)

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	defer func() {
		cancel()
		_ = w.Close()
	}()

	time.Sleep(30 * time.Millisecond)
	if err := os.WriteFile(path, []byte("v2-longer"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if atomic.LoadInt32(&calls) > 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("onChanged was not called after file modification")
}

func TestDebouncerCoalescesBursts(t *testing.T) {
	var calls int32
	d := newDebouncer(20*time.Millisecond, func() { atomic.AddInt32(&calls, 1) })

	for i := 0; i < 10; i++ {
		d.trigger()
	}

	time.Sleep(100 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("debouncer fired %d times, want 1", got)
	}
	d.stop()
}
