package watch

import (
	"sync"
	"time"
)

// debouncer coalesces bursts of trigger calls into a single fire after the quiet period
// has elapsed, so a flurry of filesystem events for one append only wakes the callback once.
type debouncer struct {
	mu       sync.Mutex
	delay    time.Duration
	fn       func()
	timer    *time.Timer
	stopped  bool
}

func newDebouncer(delay time.Duration, fn func()) *debouncer {
	return &debouncer{delay: delay, fn: fn}
}

func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fn)
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
