package editor

import (
	"sync"
	"time"
)

// Timer is a pending callback that can be stopped.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. The standard implementation is
// time.AfterFunc; tests substitute a manual clock.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// debouncer owns a single pending timer. Every Trigger stops and replaces
// the previous timer, so fn runs only after delay has passed with no
// further Trigger. A timer that already fired but lost the race with a
// newer Trigger or Stop is ignored through the sequence number.
type debouncer struct {
	mu    sync.Mutex
	sched Scheduler
	delay time.Duration
	fn    func()
	timer Timer
	seq   uint64
}

func newDebouncer(sched Scheduler, delay time.Duration, fn func()) *debouncer {
	if sched == nil {
		sched = realScheduler{}
	}
	return &debouncer{sched: sched, delay: delay, fn: fn}
}

// Trigger (re)starts the quiet period.
func (d *debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.timer = d.sched.AfterFunc(d.delay, func() { d.fire(seq) })
}

// Stop cancels the pending timer, if any.
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
}

// Pending reports whether a timer is waiting to fire.
func (d *debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

func (d *debouncer) fire(seq uint64) {
	d.mu.Lock()
	if seq != d.seq || d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	d.fn()
}
