package surface

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"layerlight-storefront/palette"
)

// DefaultOverlayRows is the status line plus the swatch strip
const DefaultOverlayRows = 2

// halfBlock draws two vertically stacked pixels per cell
const halfBlock = '▀'

// TerminalBackend renders into a tcell screen. Every Open creates a fresh screen.
type TerminalBackend struct {
	NewScreen   func() (tcell.Screen, error)
	OverlayRows int
}

// NewTerminalBackend returns a backend over the real terminal.
func NewTerminalBackend() *TerminalBackend {
	return &TerminalBackend{
		NewScreen:   tcell.NewScreen,
		OverlayRows: DefaultOverlayRows,
	}
}

// Open initializes a screen and starts translating its events.
func (b *TerminalBackend) Open() (Context, error) {
	if b.NewScreen == nil {
		return nil, errors.New("terminal backend has no screen factory")
	}
	screen, err := b.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize screen: %w", err)
	}
	screen.EnableMouse()
	screen.HideCursor()
	screen.Clear()

	tc := &terminalContext{
		screen:      screen,
		overlayRows: b.OverlayRows,
		inputs:      make(chan Input, 64),
		lost:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	go tc.pollEvents()
	return tc, nil
}

type terminalContext struct {
	screen      tcell.Screen
	overlayRows int
	inputs      chan Input
	lost        chan struct{}
	done        chan struct{}
	closeOnce   sync.Once
	lostOnce    sync.Once

	dragging       bool
	lastX, lastY   int
	dragButtonMask tcell.ButtonMask
}

func (tc *terminalContext) Size() (int, int) {
	w, h := tc.screen.Size()
	rows := h - tc.overlayRows
	if rows < 0 {
		rows = 0
	}
	return w, rows * 2
}

func (tc *terminalContext) Lost() <-chan struct{} {
	return tc.lost
}

func (tc *terminalContext) Inputs() <-chan Input {
	return tc.inputs
}

func (tc *terminalContext) Present(fb *Framebuffer, overlay Overlay) error {
	select {
	case <-tc.done:
		return errors.New("context closed")
	default:
	}

	w, h := tc.screen.Size()
	rows := h - tc.overlayRows
	if rows < 0 {
		rows = 0
	}
	for cy := 0; cy < rows; cy++ {
		for x := 0; x < w; x++ {
			top := fb.At(x, cy*2)
			bottom := fb.At(x, cy*2+1)
			style := tcell.StyleDefault.Foreground(toTcell(top)).Background(toTcell(bottom))
			tc.screen.SetContent(x, cy, halfBlock, nil, style)
		}
	}
	if tc.overlayRows > 0 {
		tc.drawOverlay(overlay, rows, w, h)
	}
	tc.screen.Show()
	return nil
}

func (tc *terminalContext) drawOverlay(o Overlay, top, w, h int) {
	base := tcell.StyleDefault.Foreground(tcell.NewRGBColor(0x21, 0x21, 0x21)).Background(toTcell(Background))
	for y := top; y < h; y++ {
		for x := 0; x < w; x++ {
			tc.screen.SetContent(x, y, ' ', nil, base)
		}
	}

	x := 0
	for _, r := range o.Status {
		if x >= w {
			break
		}
		tc.screen.SetContent(x, top, r, nil, base)
		x++
	}

	if top+1 >= h {
		return
	}
	x = 0
	for _, s := range o.Swatches {
		if x+5 > w {
			break
		}
		left, right := ' ', ' '
		if s.Cursor {
			left, right = '[', ']'
		}
		glyph := '█'
		if s.Selected {
			glyph = '▓'
		}
		swatch := tcell.StyleDefault.Foreground(toTcell(s.Color)).Background(toTcell(Background))
		tc.screen.SetContent(x, top+1, left, nil, base)
		for i := 1; i <= 3; i++ {
			tc.screen.SetContent(x+i, top+1, glyph, nil, swatch)
		}
		tc.screen.SetContent(x+4, top+1, right, nil, base)
		x += 5
	}
}

func (tc *terminalContext) Close() error {
	tc.closeOnce.Do(func() {
		close(tc.done)
		tc.screen.Fini()
	})
	return nil
}

// pollEvents runs until the screen is finalized. A nil event that was not
// caused by Close means the terminal went away.
func (tc *terminalContext) pollEvents() {
	for {
		ev := tc.screen.PollEvent()
		if ev == nil {
			select {
			case <-tc.done:
			default:
				tc.lostOnce.Do(func() { close(tc.lost) })
			}
			return
		}

		switch ev := ev.(type) {
		case *tcell.EventResize:
			tc.screen.Sync()
		case *tcell.EventKey:
			tc.push(Input{Kind: InputKey, Key: keyName(ev)})
		case *tcell.EventMouse:
			if in, ok := tc.mouseInput(ev); ok {
				tc.push(in)
			}
		}
	}
}

func (tc *terminalContext) push(in Input) {
	select {
	case tc.inputs <- in:
	case <-tc.done:
	default:
		// full buffer: drop, the next frame drains
	}
}

func (tc *terminalContext) mouseInput(ev *tcell.EventMouse) (Input, bool) {
	btn := ev.Buttons()
	x, y := ev.Position()

	switch {
	case btn&tcell.WheelUp != 0:
		return Input{Kind: InputZoom, DY: 1}, true
	case btn&tcell.WheelDown != 0:
		return Input{Kind: InputZoom, DY: -1}, true
	case btn&(tcell.Button1|tcell.Button2) != 0:
		if !tc.dragging || tc.dragButtonMask != btn {
			tc.dragging = true
			tc.dragButtonMask = btn
			tc.lastX, tc.lastY = x, y
			return Input{}, false
		}
		dx, dy := float64(x-tc.lastX), float64(y-tc.lastY)
		tc.lastX, tc.lastY = x, y
		if dx == 0 && dy == 0 {
			return Input{}, false
		}
		kind := InputRotate
		if btn&tcell.Button2 != 0 {
			kind = InputPan
		}
		return Input{Kind: kind, DX: dx, DY: dy}, true
	default:
		tc.dragging = false
		return Input{}, false
	}
}

func keyName(ev *tcell.EventKey) string {
	switch ev.Key() {
	case tcell.KeyRune:
		return string(ev.Rune())
	case tcell.KeyLeft:
		return "Left"
	case tcell.KeyRight:
		return "Right"
	case tcell.KeyUp:
		return "Up"
	case tcell.KeyDown:
		return "Down"
	case tcell.KeyEnter:
		return "Enter"
	case tcell.KeyEscape:
		return "Esc"
	case tcell.KeyCtrlC:
		return "Ctrl-C"
	default:
		return ev.Name()
	}
}

func toTcell(c palette.RGB) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
