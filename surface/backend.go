package surface

import "layerlight-storefront/palette"

// InputKind classifies user input delivered by a context
type InputKind int

const (
	InputKey InputKind = iota
	InputRotate
	InputZoom
	InputPan
)

// Input is one user gesture. Pointer kinds carry deltas in cells.
type Input struct {
	Kind InputKind
	DX   float64
	DY   float64
	// Key names special keys ("Left", "Enter", "Esc", ...) or holds the typed rune
	Key string
}

// Pointer reports whether the input manipulates the camera.
func (in Input) Pointer() bool {
	return in.Kind != InputKey
}

// Swatch is one gallery tile drawn in the overlay strip
type Swatch struct {
	Label    string
	Color    palette.RGB
	Selected bool
	Cursor   bool
}

// Overlay is drawn below the rendered image
type Overlay struct {
	Status   string
	Swatches []Swatch
}

// Context is a live rendering target. Lost is closed when the target goes
// away on its own; a context is never reused after that.
type Context interface {
	// Size returns the framebuffer size in pixels
	Size() (w, h int)
	Present(fb *Framebuffer, overlay Overlay) error
	Lost() <-chan struct{}
	Inputs() <-chan Input
	Close() error
}

// Backend creates rendering contexts
type Backend interface {
	Open() (Context, error)
}
