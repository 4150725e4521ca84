package search

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a query change is applied
const DefaultDebounce = 300 * time.Millisecond

// Debouncer delivers only the last value submitted within a quiet period.
// With a zero period every value is delivered synchronously.
type Debouncer struct {
	period time.Duration
	fire   func(string)

	mu      sync.Mutex
	timer   *time.Timer
	pending string
	waiting bool
}

// NewDebouncer creates a debouncer calling fire after period of quiet
func NewDebouncer(period time.Duration, fire func(string)) *Debouncer {
	return &Debouncer{period: period, fire: fire}
}

// Submit schedules value, replacing any value still waiting
func (d *Debouncer) Submit(value string) {
	if d.period <= 0 {
		d.fire(value)
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = value
	d.waiting = true
	d.timer = time.AfterFunc(d.period, d.deliver)
}

// Flush delivers the pending value now instead of after the quiet period
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	d.deliver()
}

// Stop drops any pending value
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.waiting = false
}

// deliver fires the pending value at most once
func (d *Debouncer) deliver() {
	d.mu.Lock()
	if !d.waiting {
		d.mu.Unlock()
		return
	}
	value := d.pending
	d.waiting = false
	d.mu.Unlock()

	d.fire(value)
}
