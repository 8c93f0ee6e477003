// Package animation drives the displayed lamp color toward its target with a
// fixed-duration linear blend, one frame callback at a time.
package animation

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"layerlight-storefront/palette"
)

// Duration is the fixed length of every color transition
const Duration = time.Second

// FrameScheduler is the part of the event loop the animator needs.
// loop.Loop and loop.Manual both satisfy it.
type FrameScheduler interface {
	RequestFrame(fn func(now time.Time)) (cancel func())
}

// Sink receives every displayed color, typically the render surface
type Sink func(c palette.RGB)

// State is one in-flight transition
type State struct {
	From     palette.RGB
	To       palette.RGB
	Start    time.Time
	Duration time.Duration
}

// Progress returns the elapsed fraction of the transition clamped to [0, 1].
func (s State) Progress(now time.Time) float64 {
	if s.Duration <= 0 {
		return 1
	}
	p := float64(now.Sub(s.Start)) / float64(s.Duration)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Animator owns the displayed color. At most one frame callback is pending
// at any time and none is pending once the displayed color reaches the target.
type Animator struct {
	mu          sync.Mutex
	frames      FrameScheduler
	clock       Clock
	duration    time.Duration
	sink        Sink
	logger      *zap.Logger
	displayed   palette.RGB
	state       *State
	cancelFrame func()
	closed      bool
}

// Option configures an Animator
type Option func(*Animator)

// WithDuration overrides the transition length.
func WithDuration(d time.Duration) Option {
	return func(a *Animator) {
		a.duration = d
	}
}

// WithClock sets the time source used to stamp transition starts.
func WithClock(clock Clock) Option {
	return func(a *Animator) {
		if clock != nil {
			a.clock = clock
		}
	}
}

// WithSink registers the consumer of displayed colors.
func WithSink(sink Sink) Option {
	return func(a *Animator) {
		a.sink = sink
	}
}

// WithLogger sets the logger for recovered sink panics.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Animator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates an animator showing initial with no transition running.
// When frames also tells time it doubles as the clock.
func New(initial palette.RGB, frames FrameScheduler, opts ...Option) *Animator {
	var clock Clock = SystemClock{}
	if c, ok := frames.(Clock); ok {
		clock = c
	}
	a := &Animator{
		frames:    frames,
		clock:     clock,
		duration:  Duration,
		logger:    zap.NewNop(),
		displayed: initial,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetSink replaces the color consumer. Used when the surface is created after the animator.
func (a *Animator) SetSink(sink Sink) {
	a.mu.Lock()
	a.sink = sink
	a.mu.Unlock()
}

// OnTargetChange starts a transition from the currently displayed color to target.
// Re-announcing the live target, or a target equal to what is displayed while
// idle, changes nothing.
func (a *Animator) OnTargetChange(target palette.RGB) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return
	}
	if a.state != nil && a.state.To == target {
		return
	}
	if a.displayed == target {
		a.state = nil
		a.cancelPendingLocked()
		return
	}

	a.state = &State{
		From:     a.displayed,
		To:       target,
		Start:    a.clock.Now(),
		Duration: a.duration,
	}
	if a.cancelFrame == nil {
		a.cancelFrame = a.frames.RequestFrame(a.frame)
	}
}

// Displayed returns the color most recently emitted.
func (a *Animator) Displayed() palette.RGB {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.displayed
}

// State returns the in-flight transition, if any.
func (a *Animator) State() (State, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == nil {
		return State{}, false
	}
	return *a.state, true
}

// Pending reports whether a frame callback is pending.
func (a *Animator) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cancelFrame != nil
}

// Close cancels the pending frame. Later target changes are ignored.
func (a *Animator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	a.state = nil
	a.cancelPendingLocked()
}

func (a *Animator) frame(time.Time) {
	a.mu.Lock()
	a.cancelFrame = nil
	if a.closed || a.state == nil {
		a.mu.Unlock()
		return
	}

	p := a.state.Progress(a.clock.Now())
	c := palette.Lerp(a.state.From, a.state.To, p)
	a.displayed = c
	if p >= 1 {
		a.state = nil
	} else {
		a.cancelFrame = a.frames.RequestFrame(a.frame)
	}
	sink := a.sink
	a.mu.Unlock()

	a.emit(sink, c)
}

func (a *Animator) emit(sink Sink, c palette.RGB) {
	if sink == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			a.logger.Warn("color sink panicked", zap.Any("panic", r), zap.String("color", c.Hex()))
		}
	}()
	sink(c)
}

func (a *Animator) cancelPendingLocked() {
	if a.cancelFrame != nil {
		a.cancelFrame()
		a.cancelFrame = nil
	}
}
