package loop

import (
	"sort"
	"sync"
	"time"
)

// Manual is a deterministic Scheduler driven by a virtual clock.
// Nothing runs until Drain or Advance is called.
type Manual struct {
	mu            sync.Mutex
	now           time.Time
	frameInterval time.Duration
	seq           int
	timers        []*manualTimer
	queue         []func()
}

type manualTimer struct {
	at        time.Time
	seq       int
	every     time.Duration
	fn        func()
	cancelled bool
	frame     bool
}

var _ Scheduler = (*Manual)(nil)

// NewManual creates a manual scheduler starting at start.
func NewManual(start time.Time, frameInterval time.Duration) *Manual {
	if frameInterval <= 0 {
		frameInterval = DefaultFrameInterval
	}
	return &Manual{now: start, frameInterval: frameInterval}
}

// Now returns the virtual time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Post queues fn until the next Drain or Advance.
func (m *Manual) Post(fn func()) bool {
	m.mu.Lock()
	m.queue = append(m.queue, fn)
	m.mu.Unlock()
	return true
}

// After registers a one-shot timer.
func (m *Manual) After(d time.Duration, fn func()) (cancel func()) {
	return m.add(d, 0, fn, false)
}

// Every registers a periodic timer.
func (m *Manual) Every(d time.Duration, fn func()) (cancel func()) {
	return m.add(d, d, fn, false)
}

// RequestFrame registers a one-shot frame callback one frame interval ahead.
func (m *Manual) RequestFrame(fn func(now time.Time)) (cancel func()) {
	var cb func()
	cb = func() { fn(m.Now()) }
	return m.add(m.frameInterval, 0, cb, true)
}

// Drain runs posted callbacks until the queue is empty.
func (m *Manual) Drain() {
	for {
		m.mu.Lock()
		q := m.queue
		m.queue = nil
		m.mu.Unlock()
		if len(q) == 0 {
			return
		}
		for _, fn := range q {
			fn()
		}
	}
}

// Advance moves the virtual clock forward by d, firing due timers in order.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.Drain()

		m.mu.Lock()
		t := m.nextDue(target)
		if t == nil {
			m.now = target
			m.mu.Unlock()
			break
		}
		m.now = t.at
		if t.every > 0 {
			t.at = t.at.Add(t.every)
			m.seq++
			t.seq = m.seq
		} else {
			m.remove(t)
		}
		fn := t.fn
		m.mu.Unlock()

		fn()
	}
	m.Drain()
}

// Pending returns the number of live timers, frames included.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// PendingFrames returns the number of live frame callbacks.
func (m *Manual) PendingFrames() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		if t.frame {
			n++
		}
	}
	return n
}

func (m *Manual) add(delay, every time.Duration, fn func(), frame bool) func() {
	m.mu.Lock()
	m.seq++
	t := &manualTimer{at: m.now.Add(delay), seq: m.seq, every: every, fn: fn, frame: frame}
	m.timers = append(m.timers, t)
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if !t.cancelled {
			t.cancelled = true
			m.remove(t)
		}
	}
}

// nextDue returns the earliest timer due at or before target. Callers hold mu.
func (m *Manual) nextDue(target time.Time) *manualTimer {
	if len(m.timers) == 0 {
		return nil
	}
	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].at.Equal(m.timers[j].at) {
			return m.timers[i].seq < m.timers[j].seq
		}
		return m.timers[i].at.Before(m.timers[j].at)
	})
	if m.timers[0].at.After(target) {
		return nil
	}
	return m.timers[0]
}

// remove drops t from the live set. Callers hold mu.
func (m *Manual) remove(t *manualTimer) {
	for i, other := range m.timers {
		if other == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return
		}
	}
}
