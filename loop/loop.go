// Package loop provides the single-threaded cooperative scheduler the engine
// runs on: every callback (timers, animation frames, posted fetch results)
// executes serially on the goroutine that calls Run.
package loop

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// DefaultFrameInterval approximates a 60 Hz display refresh
const DefaultFrameInterval = 16 * time.Millisecond

// Scheduler is the set of registration points the engine depends on.
// Every registration returns a cancel func; a cancelled callback never runs,
// even when its timer already fired and the callback is queued.
type Scheduler interface {
	Now() time.Time
	Post(fn func()) bool
	After(d time.Duration, fn func()) (cancel func())
	Every(d time.Duration, fn func()) (cancel func())
	RequestFrame(fn func(now time.Time)) (cancel func())
}

// Loop is the real-time Scheduler
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	notify chan struct{}

	stop     chan struct{}
	stopOnce sync.Once
	running  atomic.Bool

	frameInterval time.Duration
	logger        *zap.Logger
}

// Option configures a Loop
type Option func(*Loop)

// WithFrameInterval overrides the animation frame cadence.
func WithFrameInterval(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.frameInterval = d
		}
	}
}

// WithLogger sets the logger used to report recovered callback panics.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

var _ Scheduler = (*Loop)(nil)

// New creates a loop. Callbacks queue up until Run is called.
func New(opts ...Option) *Loop {
	l := &Loop{
		notify:        make(chan struct{}, 1),
		stop:          make(chan struct{}),
		frameInterval: DefaultFrameInterval,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run executes queued callbacks until ctx is done or Stop is called.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return nil
	}
	defer l.running.Store(false)

	for {
		for _, fn := range l.takeQueue() {
			l.safeRun(fn)
		}
		select {
		case <-ctx.Done():
			l.Stop()
			return ctx.Err()
		case <-l.stop:
			return nil
		case <-l.notify:
		}
	}
}

// Stop ends Run and makes later registrations inert.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.stop)
	})
}

// Now returns the wall clock.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// Post queues fn to run on the loop goroutine. Returns false once stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.stop:
		return false
	default:
	}

	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.notify <- struct{}{}:
	default:
	}
	return true
}

// After runs fn once on the loop after d.
func (l *Loop) After(d time.Duration, fn func()) (cancel func()) {
	h := &handle{}
	t := time.AfterFunc(d, func() {
		l.Post(func() {
			if h.cancelled.Load() {
				return
			}
			fn()
		})
	})
	h.stop = func() { t.Stop() }
	return h.cancel
}

// Every runs fn on the loop every d until cancelled or the loop stops.
func (l *Loop) Every(d time.Duration, fn func()) (cancel func()) {
	h := &handle{}
	ticker := time.NewTicker(d)
	done := make(chan struct{})
	h.stop = func() { close(done) }

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.Post(func() {
					if h.cancelled.Load() {
						return
					}
					fn()
				})
			case <-done:
				return
			case <-l.stop:
				return
			}
		}
	}()
	return h.cancel
}

// RequestFrame runs fn once at the next frame boundary with the frame time.
func (l *Loop) RequestFrame(fn func(now time.Time)) (cancel func()) {
	return l.After(l.frameInterval, func() {
		fn(time.Now())
	})
}

func (l *Loop) takeQueue() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	q := l.queue
	l.queue = nil
	return q
}

// safeRun keeps one faulty callback from stopping the loop
func (l *Loop) safeRun(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("loop callback panicked", zap.Any("panic", r))
		}
	}()
	fn()
}

// handle is a cancellable registration
type handle struct {
	cancelled atomic.Bool
	once      sync.Once
	stop      func()
}

func (h *handle) cancel() {
	h.once.Do(func() {
		h.cancelled.Store(true)
		if h.stop != nil {
			h.stop()
		}
	})
}
