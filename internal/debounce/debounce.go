// Package debounce collapses bursts of calls into a single trailing one.
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs a function once a quiet period has elapsed with no further
// calls. Each call supersedes the previous pending one.
type Debouncer struct {
	mu    sync.Mutex
	timer *time.Timer
	quiet time.Duration
}

func New(quiet time.Duration) *Debouncer {
	return &Debouncer{quiet: quiet}
}

// Debounce schedules fn after the quiet period, resetting the timer if a
// call is already pending.
func (d *Debouncer) Debounce(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, fn)
}

// Cancel drops any pending call.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
