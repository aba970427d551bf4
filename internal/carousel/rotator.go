// Package carousel implements a ring rotator over a bounded item list with a
// fixed-interval auto-advance timer, pause/resume, and manual position
// controls.
package carousel

import (
	"sync"
	"time"
)

// DefaultInterval matches the storefront's four second auto-advance.
const DefaultInterval = 4 * time.Second

// Rotator cycles through n positions. The timer advances the current
// position once per interval unless paused. Manual controls change the
// position without disturbing the timer: it keeps firing from whatever
// position is current. At most one timer is live at a time; the timer is
// torn down and recreated whenever the pause flag changes.
type Rotator struct {
	interval time.Duration

	mu      sync.Mutex
	size    int
	current int
	paused  bool
	stopped bool
	ticker  *time.Ticker
	done    chan struct{}
}

// New creates a started Rotator over size positions. A non-positive interval
// falls back to DefaultInterval. A size below 1 is treated as 1.
func New(size int, interval time.Duration) *Rotator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if size < 1 {
		size = 1
	}
	r := &Rotator{interval: interval, size: size}
	r.startTimerLocked()
	return r
}

// Current returns the current position.
func (r *Rotator) Current() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Size returns the number of positions in the ring.
func (r *Rotator) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// Resize changes the ring size, clamping the current position into range.
func (r *Rotator) Resize(size int) {
	if size < 1 {
		size = 1
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.size = size
	if r.current >= size {
		r.current = 0
	}
}

// Next advances one position with wraparound.
func (r *Rotator) Next() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = (r.current + 1) % r.size
	return r.current
}

// Prev retreats one position with wraparound.
func (r *Rotator) Prev() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = (r.current - 1 + r.size) % r.size
	return r.current
}

// JumpTo moves directly to the given position. Out-of-range indexes are a
// no-op.
func (r *Rotator) JumpTo(index int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if index >= 0 && index < r.size {
		r.current = index
	}
	return r.current
}

// Pause stops the auto-advance timer. Manual controls still work.
func (r *Rotator) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.paused || r.stopped {
		return
	}
	r.paused = true
	r.stopTimerLocked()
}

// Resume restarts the auto-advance timer after Pause.
func (r *Rotator) Resume() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.paused || r.stopped {
		return
	}
	r.paused = false
	r.startTimerLocked()
}

// Paused reports whether auto-advance is currently suspended.
func (r *Rotator) Paused() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paused
}

// Stop tears the rotator down. It is safe to call more than once; a stopped
// rotator never advances again.
func (r *Rotator) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	r.stopped = true
	r.stopTimerLocked()
}

// startTimerLocked must be called with r.mu held (or before the Rotator is
// shared). It creates the single live timer goroutine.
func (r *Rotator) startTimerLocked() {
	ticker := time.NewTicker(r.interval)
	done := make(chan struct{})
	r.ticker = ticker
	r.done = done

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				r.Next()
			}
		}
	}()
}

func (r *Rotator) stopTimerLocked() {
	if r.ticker != nil {
		r.ticker.Stop()
		r.ticker = nil
	}
	if r.done != nil {
		close(r.done)
		r.done = nil
	}
}
