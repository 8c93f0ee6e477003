package surface

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"layerlight-storefront/palette"
)

func newSimBackend(t *testing.T) (*TerminalBackend, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	b := &TerminalBackend{
		NewScreen:   func() (tcell.Screen, error) { return sim, nil },
		OverlayRows: DefaultOverlayRows,
	}
	return b, sim
}

func TestTerminalContextSize(t *testing.T) {
	b, sim := newSimBackend(t)
	ctx, err := b.Open()
	require.NoError(t, err)
	defer ctx.Close()

	sim.SetSize(20, 12)
	w, h := ctx.Size()
	assert.Equal(t, 20, w)
	assert.Equal(t, 20, h) // (12 - 2) rows * 2 pixels
}

func TestTerminalPresentDrawsHalfBlocks(t *testing.T) {
	b, sim := newSimBackend(t)
	ctx, err := b.Open()
	require.NoError(t, err)
	defer ctx.Close()
	sim.SetSize(6, 4)

	fb := NewFramebuffer(6, 4)
	fb.Clear(Background)
	fb.Pix[0] = palette.RGB{R: 255} // (0,0)
	fb.Pix[6] = palette.RGB{G: 255} // (0,1)
	overlay := Overlay{
		Status:   "Gold",
		Swatches: []Swatch{{Label: "Gold", Color: palette.ParseHex("#FFD700"), Cursor: true}},
	}
	require.NoError(t, ctx.Present(fb, overlay))

	cells, w, _ := sim.GetContents()
	cell := cells[0]
	require.NotEmpty(t, cell.Runes)
	assert.Equal(t, halfBlock, cell.Runes[0])
	fg, bg, _ := cell.Style.Decompose()
	assert.NotEqual(t, fg, bg)

	// status row starts at row 2
	assert.Equal(t, 'G', cells[2*w].Runes[0])
	// swatch row: cursor brackets around the color
	assert.Equal(t, '[', cells[3*w].Runes[0])
	assert.Equal(t, '█', cells[3*w+1].Runes[0])
	assert.Equal(t, ']', cells[3*w+4].Runes[0])
}

func TestTerminalTranslatesKeys(t *testing.T) {
	b, sim := newSimBackend(t)
	ctx, err := b.Open()
	require.NoError(t, err)
	defer ctx.Close()

	sim.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	sim.InjectKey(tcell.KeyLeft, 0, tcell.ModNone)

	var got []string
	timeout := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case in := <-ctx.Inputs():
			assert.Equal(t, InputKey, in.Kind)
			got = append(got, in.Key)
		case <-timeout:
			t.Fatalf("inputs not delivered, got %v", got)
		}
	}
	assert.Equal(t, []string{"q", "Left"}, got)
}

func TestTerminalMouseDragRotates(t *testing.T) {
	b, sim := newSimBackend(t)
	ctx, err := b.Open()
	require.NoError(t, err)
	defer ctx.Close()

	sim.InjectMouse(5, 5, tcell.Button1, tcell.ModNone)
	sim.InjectMouse(8, 4, tcell.Button1, tcell.ModNone)

	select {
	case in := <-ctx.Inputs():
		assert.Equal(t, Input{Kind: InputRotate, DX: 3, DY: -1}, in)
	case <-time.After(2 * time.Second):
		t.Fatal("drag not delivered")
	}
}

func TestTerminalLossIsReported(t *testing.T) {
	b, sim := newSimBackend(t)
	ctx, err := b.Open()
	require.NoError(t, err)

	sim.Fini()
	select {
	case <-ctx.Lost():
	case <-time.After(2 * time.Second):
		t.Fatal("loss not reported")
	}
}

func TestTerminalCloseIsNotLoss(t *testing.T) {
	b, _ := newSimBackend(t)
	ctx, err := b.Open()
	require.NoError(t, err)

	require.NoError(t, ctx.Close())
	require.NoError(t, ctx.Close())

	select {
	case <-ctx.Lost():
		t.Fatal("close reported as loss")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Error(t, ctx.Present(NewFramebuffer(1, 1), Overlay{}))
}
