// Package schedule is the timing port shared by the renderer and the filter
// widget: delayed callbacks (debounce, animation cleanup) and next-frame
// callbacks (style-then-transition sequencing).
//
// [Manual] is the only implementation. Tests step it explicitly; the
// terminal UIs and the page server drive it from their own clocks, which
// keeps every widget mutation on the goroutine that steps the scheduler.
package schedule

import (
	"sort"
	"sync"
	"time"
)

// Scheduler defers work.
type Scheduler interface {
	// After runs fn once d has elapsed.
	After(d time.Duration, fn func()) Timer

	// NextFrame runs fn on the next display frame.
	NextFrame(fn func())
}

// Timer is a pending After callback.
type Timer interface {
	// Stop cancels the callback. It reports false if the callback already
	// ran or was already stopped.
	Stop() bool
}

// Manual is a virtual-time scheduler. It is safe for concurrent use;
// callbacks run outside the lock on the goroutine that steps it.
type Manual struct {
	mu     sync.Mutex
	now    time.Duration
	seq    uint64
	timers []*manualTimer
	frame  []func()
}

type manualTimer struct {
	m    *Manual
	due  time.Duration
	seq  uint64
	fn   func()
	done bool
}

// NewManual creates a scheduler at virtual time zero.
func NewManual() *Manual {
	return &Manual{}
}

// Now returns the virtual time elapsed since creation.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// After implements Scheduler.
func (m *Manual) After(d time.Duration, fn func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{m: m, due: m.now + max(d, 0), seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// NextFrame implements Scheduler.
func (m *Manual) NextFrame(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frame = append(m.frame, fn)
}

// Stop implements Timer.
func (t *manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	t.m.removeLocked(t)
	return true
}

func (m *Manual) removeLocked(t *manualTimer) {
	for i, p := range m.timers {
		if p == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return
		}
	}
}

// Frame runs the callbacks queued before the call. Callbacks queued while
// the frame runs wait for the next one. It returns how many ran.
func (m *Manual) Frame() int {
	m.mu.Lock()
	batch := m.frame
	m.frame = nil
	m.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

// Advance moves virtual time forward by d, firing due timers in due order.
// Timers scheduled by callbacks fire too when they fall inside the window.
func (m *Manual) Advance(d time.Duration) int {
	m.mu.Lock()
	target := m.now + max(d, 0)
	m.mu.Unlock()

	fired := 0
	for {
		m.mu.Lock()
		t := m.nextDueLocked(target)
		if t == nil {
			m.now = target
			m.mu.Unlock()
			return fired
		}
		t.done = true
		m.removeLocked(t)
		m.now = t.due
		m.mu.Unlock()

		t.fn()
		fired++
	}
}

func (m *Manual) nextDueLocked(limit time.Duration) *manualTimer {
	if len(m.timers) == 0 {
		return nil
	}
	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].due != m.timers[j].due {
			return m.timers[i].due < m.timers[j].due
		}
		return m.timers[i].seq < m.timers[j].seq
	})
	if m.timers[0].due > limit {
		return nil
	}
	return m.timers[0]
}

// Pending reports the number of waiting timers and frame callbacks.
func (m *Manual) Pending() (timers, frames int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers), len(m.frame)
}

// Settle steps frames of length frame until nothing is pending or
// maxFrames is reached. It returns the number of frames stepped.
func (m *Manual) Settle(frame time.Duration, maxFrames int) int {
	steps := 0
	for ; steps < maxFrames; steps++ {
		timers, frames := m.Pending()
		if timers == 0 && frames == 0 {
			return steps
		}
		m.Frame()
		m.Advance(frame)
	}
	return steps
}

// FrameInterval is the display refresh interval used by the terminal UIs.
const FrameInterval = 16 * time.Millisecond
