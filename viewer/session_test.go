package viewer

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"layerlight-storefront/animation"
	"layerlight-storefront/loop"
	"layerlight-storefront/models"
	"layerlight-storefront/options"
	"layerlight-storefront/palette"
	"layerlight-storefront/selection"
	"layerlight-storefront/storefront"
	"layerlight-storefront/surface"
)

type fakeSurface struct {
	colors  []palette.RGB
	overlay surface.Overlay
	started bool
	closed  bool
	onInput func(surface.Input)
	inputs  []surface.Input
}

func (f *fakeSurface) Start(*surface.Mesh) { f.started = true }
func (f *fakeSurface) SetColor(c palette.RGB) { f.colors = append(f.colors, c) }
func (f *fakeSurface) SetOverlay(o surface.Overlay) { f.overlay = o }
func (f *fakeSurface) OnInput(fn func(surface.Input)) { f.onInput = fn }
func (f *fakeSurface) HandleInput(in surface.Input) { f.inputs = append(f.inputs, in) }
func (f *fakeSurface) Close() { f.closed = true }
func (f *fakeSurface) last() palette.RGB { return f.colors[len(f.colors)-1] }
func (f *fakeSurface) press(key string) { f.onInput(surface.Input{Kind: surface.InputKey, Key: key}) }

type fetchFunc func(ctx context.Context, q storefront.Query) ([]models.Product, error)

func (f fetchFunc) Fetch(ctx context.Context, q storefront.Query) ([]models.Product, error) {
	return f(ctx, q)
}

func lamp() models.Product {
	return models.Product{
		Handle: "lamp",
		Title:  "Lamp",
		Options: []models.ProductOption{
			{Name: "Color", Values: []string{"White", "Black", "Gold"}},
		},
		Variants: []models.Variant{
			{ID: "w", SelectedOptions: []models.SelectedOption{{Name: "Color", Value: "White"}}, Price: models.Money{Amount: "129", CurrencyCode: "EUR"}},
			{ID: "g", SelectedOptions: []models.SelectedOption{{Name: "Color", Value: "Gold"}}, Price: models.Money{Amount: "149", CurrencyCode: "EUR"}},
		},
	}
}

func returning(products []models.Product, err error) Fetcher {
	return fetchFunc(func(context.Context, storefront.Query) ([]models.Product, error) {
		return products, err
	})
}

var start = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func mount(t *testing.T, fetcher Fetcher, cfg Config) (*Session, *fakeSurface, *loop.Manual) {
	t.Helper()
	m := loop.NewManual(start, 10*time.Millisecond)
	surf := &fakeSurface{}
	s := NewSession(m, surf, fetcher, cfg, nil)
	s.Mount(nil)
	t.Cleanup(s.Unmount)
	return s, surf, m
}

// settle drains posted fetch results until the gallery leaves the loading state
func settle(t *testing.T, s *Session, m *loop.Manual) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		m.Drain()
		if st, _ := s.GalleryState(); st != GalleryLoading {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("gallery fetch never completed")
}

func TestLampHoverAnimatesToGold(t *testing.T) {
	s, surf, m := mount(t, returning([]models.Product{lamp()}, nil), Config{})
	settle(t, s, m)

	st, err := s.GalleryState()
	require.NoError(t, err)
	require.Equal(t, GalleryReady, st)
	require.Len(t, s.Tiles(), 6)
	require.Len(t, surf.overlay.Swatches, 6)

	s.Hover(1)
	assert.Equal(t, selection.SourceExplicit, s.Store().ActiveSource())

	m.Advance(animation.Duration + 10*time.Millisecond)
	assert.Equal(t, palette.ParseHex("#FFD700"), surf.last())
	assert.True(t, surf.overlay.Swatches[1].Cursor)
	assert.True(t, surf.overlay.Swatches[1].Selected)
	assert.Contains(t, surf.overlay.Status, "/product/lamp?color=Gold")
}

func TestBoundViewFollowsHoveredTileWithOtherSynonym(t *testing.T) {
	page := lamp()
	page.Handle = "wandlampe"
	page.Options[0].Name = "Farbe"
	for i := range page.Variants {
		page.Variants[i].SelectedOptions[0].Name = "Farbe"
	}

	s, surf, m := mount(t, returning([]models.Product{lamp()}, nil), Config{Product: &page})
	settle(t, s, m)
	require.Len(t, s.Tiles(), 6)
	assert.Equal(t, options.DefaultColor, surf.colors[0])

	s.Hover(1)
	assert.Equal(t, selection.SourceExplicit, s.Store().ActiveSource())

	m.Advance(animation.Duration + 10*time.Millisecond)
	assert.Equal(t, palette.ParseHex("#FFD700"), surf.last())
}

func TestHoverSameColorMovesCursor(t *testing.T) {
	s, surf, m := mount(t, returning([]models.Product{lamp()}, nil), Config{})
	settle(t, s, m)

	s.Hover(1)
	require.True(t, surf.overlay.Swatches[1].Cursor)

	s.Hover(3)
	assert.Equal(t, "Gold", s.Store().CurrentConfiguration()["color"])
	assert.False(t, surf.overlay.Swatches[1].Cursor)
	assert.True(t, surf.overlay.Swatches[3].Cursor)
}

func TestStandaloneTimerCycles(t *testing.T) {
	s, surf, m := mount(t, nil, Config{})
	assert.Equal(t, options.ColorValueToRGB("White"), surf.colors[0])

	m.Advance(DefaultCycleInterval)
	assert.Equal(t, selection.SourceTimer, s.Store().ActiveSource())
	assert.Equal(t, "Gold", s.Store().CurrentConfiguration()["color"])

	m.Advance(animation.Duration)
	assert.Equal(t, palette.ParseHex("#FFD700"), surf.last())
}

func TestBoundViewFollowsURLAndIgnoresTimer(t *testing.T) {
	p := lamp()
	s, surf, m := mount(t, nil, Config{
		Product:  &p,
		URLQuery: url.Values{"color": {"Gold"}},
	})

	assert.Equal(t, palette.ParseHex("#FFD700"), surf.colors[0])
	assert.Equal(t, selection.SourceURL, s.Store().ActiveSource())
	assert.Equal(t, 0, m.Pending())

	m.Advance(10 * time.Second)
	assert.Equal(t, selection.SourceURL, s.Store().ActiveSource())
}

func TestFetchFailureKeepsColor(t *testing.T) {
	s, surf, m := mount(t, returning(nil, errors.New("proxy down")), Config{})
	settle(t, s, m)

	st, err := s.GalleryState()
	assert.Equal(t, GalleryError, st)
	assert.EqualError(t, err, "proxy down")
	assert.Len(t, surf.colors, 1)
	assert.Equal(t, "Error loading products", surf.overlay.Status)
	assert.Empty(t, surf.overlay.Swatches)
}

func TestEmptyResult(t *testing.T) {
	s, surf, m := mount(t, returning(nil, storefront.ErrNotFound), Config{})
	settle(t, s, m)

	st, err := s.GalleryState()
	assert.Equal(t, GalleryEmpty, st)
	assert.NoError(t, err)
	assert.Equal(t, "No products found", surf.overlay.Status)
}

func TestKeyNavigationAndLeave(t *testing.T) {
	s, surf, m := mount(t, returning([]models.Product{lamp()}, nil), Config{})
	settle(t, s, m)

	surf.press("Right")
	assert.Equal(t, "White", s.Store().CurrentConfiguration()["color"])
	surf.press("Right")
	assert.Equal(t, "Gold", s.Store().CurrentConfiguration()["color"])
	surf.press("Left")
	surf.press("Left")
	assert.Equal(t, "Gold", s.Store().CurrentConfiguration()["color"]) // wrapped to the last tile

	surf.press("Esc")
	assert.Equal(t, selection.SourceTimer, s.Store().ActiveSource())

	surf.press("+")
	require.Len(t, surf.inputs, 1)
	assert.Equal(t, surface.InputZoom, surf.inputs[0].Kind)
}

func TestChooseNavigates(t *testing.T) {
	var links []string
	quit := false
	s, surf, m := mount(t, returning([]models.Product{lamp()}, nil), Config{
		OnNavigate: func(link string) { links = append(links, link) },
		OnQuit:     func() { quit = true },
	})
	settle(t, s, m)

	surf.press("Enter")
	assert.Empty(t, links)

	s.Hover(3)
	surf.press("Enter")
	assert.Equal(t, []string{"/product/lamp?color=Gold"}, links)

	surf.press("q")
	assert.True(t, quit)
}

func TestUnmountCancelsEverything(t *testing.T) {
	release := make(chan struct{})
	fetcher := fetchFunc(func(ctx context.Context, q storefront.Query) ([]models.Product, error) {
		<-release
		return []models.Product{lamp()}, nil
	})
	s, surf, m := mount(t, fetcher, Config{})
	s.Hover(0)

	s.Unmount()
	s.Unmount()
	assert.True(t, surf.closed)
	assert.Equal(t, 0, m.Pending())

	close(release)
	time.Sleep(20 * time.Millisecond)
	m.Advance(10 * time.Second)

	st, _ := s.GalleryState()
	assert.Equal(t, GalleryLoading, st)
	assert.Empty(t, s.Tiles())
	assert.Len(t, surf.colors, 1)
}
