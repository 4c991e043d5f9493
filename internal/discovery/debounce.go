package discovery

import (
	"sync"
	"time"
)

// DefaultDebounceDelay is the quiet period before a location search fires.
const DefaultDebounceDelay = 300 * time.Millisecond

// Debouncer runs only the most recently scheduled function, after its delay.
// Scheduling again cancels whatever was pending.
type Debouncer struct {
	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
	wg    sync.WaitGroup
}

// Handle cancels one scheduled call.
type Handle struct {
	d   *Debouncer
	gen uint64
}

// Schedule arranges for fn to run after delay unless superseded.
func (d *Debouncer) Schedule(delay time.Duration, fn func()) Handle {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.gen++
	gen := d.gen

	d.wg.Add(1)
	d.timer = time.AfterFunc(delay, func() {
		defer d.wg.Done()

		d.mu.Lock()
		current := d.gen == gen
		if current {
			d.timer = nil
		}
		d.mu.Unlock()

		if current {
			fn()
		}
	})

	return Handle{d: d, gen: gen}
}

// Cancel drops the call if it has not started. It reports whether it did.
func (h Handle) Cancel() bool {
	if h.d == nil {
		return false
	}
	h.d.mu.Lock()
	defer h.d.mu.Unlock()

	if h.d.gen != h.gen || h.d.timer == nil {
		return false
	}
	stopped := h.d.stopLocked()
	h.d.gen++
	return stopped
}

// Stop cancels any pending call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.gen++
}

// Wait blocks until no scheduled call is pending or running.
func (d *Debouncer) Wait() {
	d.wg.Wait()
}

func (d *Debouncer) stopLocked() bool {
	if d.timer == nil {
		return false
	}
	stopped := d.timer.Stop()
	if stopped {
		// the callback will never run, so it cannot release its slot
		d.wg.Done()
	}
	d.timer = nil
	return stopped
}
