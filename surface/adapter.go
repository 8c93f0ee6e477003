package surface

import (
	"math"
	"time"

	"go.uber.org/zap"

	"layerlight-storefront/loop"
	"layerlight-storefront/palette"
)

// Mode selects how much the user may interact with the surface
type Mode int

const (
	// ModePresentation only rotates slowly on its own
	ModePresentation Mode = iota
	// ModeFullInteraction enables rotate, zoom and pan
	ModeFullInteraction
)

func (m Mode) String() string {
	if m == ModeFullInteraction {
		return "full"
	}
	return "presentation"
}

// State is the lifecycle state of an Adapter
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateRecovering
	StatePlaceholder
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateRecovering:
		return "recovering"
	case StatePlaceholder:
		return "placeholder"
	case StateClosed:
		return "closed"
	default:
		return "idle"
	}
}

// Options tune the adapter
type Options struct {
	Mode       Mode
	AutoRotate bool
	// AutoRotateSpeed 1.0 is one full turn every 30 seconds
	AutoRotateSpeed float64
	InitialDelay    time.Duration
	RetryBackoff    time.Duration
	MaxRetries      int
	FrameInterval   time.Duration
}

// DefaultOptions returns the viewer defaults for mode.
func DefaultOptions(mode Mode) Options {
	return Options{
		Mode:            mode,
		AutoRotate:      true,
		AutoRotateSpeed: 1.0,
		InitialDelay:    300 * time.Millisecond,
		RetryBackoff:    time.Second,
		MaxRetries:      5,
		FrameInterval:   loop.DefaultFrameInterval,
	}
}

const (
	rotateStep = 0.05
	panStep    = 0.02
	zoomFactor = 1.1
	minZoom    = 0.5
	maxZoom    = 4.0
)

// Adapter owns the rendering context and draws the mesh in the current color.
// All methods must be called on the loop goroutine.
type Adapter struct {
	sched   loop.Scheduler
	backend Backend
	opts    Options
	logger  *zap.Logger

	mesh    *Mesh
	color   palette.RGB
	camera  Camera
	overlay Overlay
	fb      *Framebuffer
	onInput func(Input)

	ctx      Context
	state    State
	failures int
	frames   int
	lastTick time.Time

	cancelDelay func()
	cancelRetry func()
	cancelTick  func()
}

// NewAdapter creates an idle adapter. Nothing is opened before Start.
func NewAdapter(sched loop.Scheduler, backend Backend, opts Options, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = loop.DefaultFrameInterval
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 1
	}
	return &Adapter{
		sched:   sched,
		backend: backend,
		opts:    opts,
		logger:  logger,
		camera:  DefaultCamera(),
		fb:      NewFramebuffer(0, 0),
	}
}

// Start waits InitialDelay, then opens a context and renders every frame.
func (a *Adapter) Start(mesh *Mesh) {
	if a.state != StateIdle {
		return
	}
	a.mesh = mesh
	a.state = StateLoading
	a.cancelDelay = a.sched.After(a.opts.InitialDelay, func() {
		a.cancelDelay = nil
		a.open()
	})
	a.cancelTick = a.sched.Every(a.opts.FrameInterval, a.tick)
}

// SetColor updates the material color only. Accepted in every state.
func (a *Adapter) SetColor(c palette.RGB) {
	a.color = c
}

// Color returns the material color.
func (a *Adapter) Color() palette.RGB {
	return a.color
}

// SetOverlay replaces the strip drawn under the image.
func (a *Adapter) SetOverlay(o Overlay) {
	a.overlay = o
}

// OnInput registers the consumer of key inputs.
func (a *Adapter) OnInput(fn func(Input)) {
	a.onInput = fn
}

// State returns the lifecycle state.
func (a *Adapter) State() State {
	return a.state
}

// Camera returns the current orbit.
func (a *Adapter) Camera() Camera {
	return a.camera
}

// Frames returns how many frames were presented.
func (a *Adapter) Frames() int {
	return a.frames
}

// HandleInput applies camera gestures and forwards keys. Pointer input is
// dropped in presentation mode.
func (a *Adapter) HandleInput(in Input) {
	if a.state == StateClosed {
		return
	}
	if !in.Pointer() {
		if a.onInput != nil {
			a.onInput(in)
		}
		return
	}
	if a.opts.Mode != ModeFullInteraction {
		return
	}

	switch in.Kind {
	case InputRotate:
		a.camera.Yaw += in.DX * rotateStep
		a.camera.Pitch = math.Max(-math.Pi/2, math.Min(math.Pi/2, a.camera.Pitch+in.DY*rotateStep))
	case InputZoom:
		a.camera.Zoom = math.Max(minZoom, math.Min(maxZoom, a.camera.Zoom*math.Pow(zoomFactor, in.DY)))
	case InputPan:
		a.camera.PanX += in.DX * panStep
		a.camera.PanY -= in.DY * panStep
	}
}

// Close releases the context and cancels every pending callback.
func (a *Adapter) Close() {
	if a.state == StateClosed {
		return
	}
	for _, cancel := range []func(){a.cancelDelay, a.cancelRetry, a.cancelTick} {
		if cancel != nil {
			cancel()
		}
	}
	a.cancelDelay, a.cancelRetry, a.cancelTick = nil, nil, nil
	a.releaseContext()
	a.state = StateClosed
}

func (a *Adapter) open() {
	a.cancelRetry = nil
	if a.state == StateClosed || a.state == StatePlaceholder {
		return
	}

	ctx, err := a.backend.Open()
	if err != nil {
		a.failures++
		a.logger.Warn("failed to open render context",
			zap.Error(err),
			zap.Int("attempt", a.failures),
			zap.Int("maxRetries", a.opts.MaxRetries),
		)
		if a.failures >= a.opts.MaxRetries {
			a.state = StatePlaceholder
			a.logger.Error("render context unavailable, showing placeholder")
			return
		}
		a.state = StateRecovering
		a.cancelRetry = a.sched.After(a.opts.RetryBackoff, a.open)
		return
	}

	a.ctx = ctx
	a.failures = 0
	a.state = StateReady
	a.lastTick = a.sched.Now()
	a.logger.Info("render context ready", zap.String("mode", a.opts.Mode.String()))
	a.render()
}

func (a *Adapter) tick() {
	if a.ctx == nil {
		return
	}

	select {
	case <-a.ctx.Lost():
		a.handleLoss()
		return
	default:
	}

	a.drainInputs()
	if a.ctx == nil {
		return
	}

	now := a.sched.Now()
	if a.opts.AutoRotate && !a.lastTick.IsZero() {
		dt := now.Sub(a.lastTick).Seconds()
		a.camera.Yaw += a.opts.AutoRotateSpeed * (2 * math.Pi / 30) * dt
	}
	a.lastTick = now
	a.render()
}

func (a *Adapter) drainInputs() {
	inputs := a.ctx.Inputs()
	for {
		select {
		case in, ok := <-inputs:
			if !ok {
				return
			}
			a.HandleInput(in)
			if a.ctx == nil {
				return
			}
		default:
			return
		}
	}
}

func (a *Adapter) render() {
	w, h := a.ctx.Size()
	a.fb.Resize(w, h)
	Rasterize(a.fb, a.mesh, a.camera, a.color)
	if err := a.ctx.Present(a.fb, a.overlay); err != nil {
		a.logger.Warn("failed to present frame", zap.Error(err))
		return
	}
	a.frames++
}

func (a *Adapter) handleLoss() {
	a.logger.Warn("render context lost, reinitializing", zap.Duration("backoff", a.opts.RetryBackoff))
	a.releaseContext()
	a.failures = 0
	a.state = StateRecovering
	a.cancelRetry = a.sched.After(a.opts.RetryBackoff, a.open)
}

func (a *Adapter) releaseContext() {
	if a.ctx == nil {
		return
	}
	if err := a.ctx.Close(); err != nil {
		a.logger.Debug("error closing render context", zap.Error(err))
	}
	a.ctx = nil
}
