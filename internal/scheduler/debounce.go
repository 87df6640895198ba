package scheduler

import (
	"sync"
	"time"
)

// DefaultDebounce is the window used when a Debouncer is created with a zero wait.
const DefaultDebounce = 50 * time.Millisecond

// Debouncer coalesces bursts of visible-set changes. Each Update replaces the
// pending set and restarts the window; fn runs once with the latest set after the
// window passes without further updates.
type Debouncer struct {
	wait time.Duration
	fn   func(ids []uint)

	mu      sync.Mutex
	timer   *time.Timer
	pending []uint
	stopped bool
}

// NewDebouncer returns a Debouncer calling fn after wait of quiet.
func NewDebouncer(wait time.Duration, fn func(ids []uint)) *Debouncer {
	if wait <= 0 {
		wait = DefaultDebounce
	}
	return &Debouncer{wait: wait, fn: fn}
}

// Update records ids as the current visible set. A nil set is an empty one.
func (d *Debouncer) Update(ids []uint) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.pending = append(make([]uint, 0, len(ids)), ids...)
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.wait, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	ids := d.pending
	d.pending = nil
	d.timer = nil
	stopped := d.stopped
	d.mu.Unlock()

	if stopped || ids == nil {
		return
	}
	d.fn(ids)
}

// Flush runs fn immediately with the pending set, if any.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()
	d.fire()
}

// Stop discards the pending set. Later updates are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
