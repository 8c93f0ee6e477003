// Package viewer composes the selection store, the color animator, the render
// surface and the gallery into one mounted product view.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"layerlight-storefront/animation"
	"layerlight-storefront/gallery"
	"layerlight-storefront/loop"
	"layerlight-storefront/models"
	"layerlight-storefront/palette"
	"layerlight-storefront/selection"
	"layerlight-storefront/storefront"
	"layerlight-storefront/surface"
)

// DefaultCycleInterval is the demo timer period of standalone views
const DefaultCycleInterval = 3 * time.Second

// GalleryState is the lifecycle of the gallery strip
type GalleryState int

const (
	GalleryIdle GalleryState = iota
	GalleryLoading
	GalleryError
	GalleryEmpty
	GalleryReady
)

func (g GalleryState) String() string {
	switch g {
	case GalleryLoading:
		return "loading"
	case GalleryError:
		return "error"
	case GalleryEmpty:
		return "empty"
	case GalleryReady:
		return "ready"
	default:
		return "idle"
	}
}

// Fetcher loads the products shown in the gallery
type Fetcher interface {
	Fetch(ctx context.Context, q storefront.Query) ([]models.Product, error)
}

// Surface is the part of surface.Adapter the session drives
type Surface interface {
	Start(mesh *surface.Mesh)
	SetColor(c palette.RGB)
	SetOverlay(o surface.Overlay)
	OnInput(fn func(surface.Input))
	HandleInput(in surface.Input)
	Close()
}

var _ Surface = (*surface.Adapter)(nil)

// Config describes one mounted view
type Config struct {
	// Product binds the view to a product page; nil runs the standalone hero with the demo timer
	Product       *models.Product
	URLQuery      url.Values
	Gallery       storefront.Query
	CycleInterval time.Duration
	Cycle         []string
	// OnNavigate receives the deep link of a chosen tile
	OnNavigate func(link string)
	// OnQuit is called when the user asks to leave
	OnQuit func()
}

// Session is one mounted view. All methods run on the loop goroutine.
type Session struct {
	sched   loop.Scheduler
	surface Surface
	fetcher Fetcher
	cfg     Config
	logger  *zap.Logger

	store    *selection.Store
	animator *animation.Animator

	galleryState GalleryState
	galleryErr   error
	tiles        []models.GalleryTile
	cursor       int
	hovered      bool

	unsubscribe func()
	cancelCycle func()
	cancelFetch context.CancelFunc
	mounted     bool
	unmounted   bool
}

// NewSession prepares a view; nothing runs before Mount.
func NewSession(sched loop.Scheduler, surf Surface, fetcher Fetcher, cfg Config, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CycleInterval <= 0 {
		cfg.CycleInterval = DefaultCycleInterval
	}

	var binding *selection.Binding
	if cfg.Product != nil {
		binding = &selection.Binding{Product: *cfg.Product}
	}
	var opts []selection.Option
	if cfg.Cycle != nil {
		opts = append(opts, selection.WithCycle(cfg.Cycle))
	}

	return &Session{
		sched:   sched,
		surface: surf,
		fetcher: fetcher,
		cfg:     cfg,
		logger:  logger,
		store:   selection.NewStore(binding, opts...),
	}
}

// Mount starts rendering, the demo timer and the gallery fetch.
func (s *Session) Mount(mesh *surface.Mesh) {
	if s.mounted || s.unmounted {
		return
	}
	s.mounted = true

	if len(s.cfg.URLQuery) > 0 {
		s.store.ApplyFromURL(s.cfg.URLQuery)
	}

	initial := s.store.ResolvedRenderColor()
	s.animator = animation.New(initial, s.sched,
		animation.WithSink(s.surface.SetColor),
		animation.WithLogger(s.logger),
	)
	s.surface.SetColor(initial)
	s.surface.OnInput(s.handleKey)
	s.surface.Start(mesh)

	s.unsubscribe = s.store.Subscribe(func() {
		s.animator.OnTargetChange(s.store.ResolvedRenderColor())
		s.refreshOverlay()
	})

	if !s.store.Bound() {
		s.cancelCycle = s.sched.Every(s.cfg.CycleInterval, func() {
			s.store.Tick()
		})
	}

	s.startFetch()
	s.refreshOverlay()
}

// Unmount cancels every registration. Safe to call more than once.
func (s *Session) Unmount() {
	if s.unmounted {
		return
	}
	s.unmounted = true
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	if s.cancelCycle != nil {
		s.cancelCycle()
	}
	if s.cancelFetch != nil {
		s.cancelFetch()
	}
	if s.animator != nil {
		s.animator.Close()
	}
	s.surface.Close()
}

// Store exposes the selection state.
func (s *Session) Store() *selection.Store {
	return s.store
}

// Animator exposes the color animator, nil before Mount.
func (s *Session) Animator() *animation.Animator {
	return s.animator
}

// GalleryState returns the gallery lifecycle state and the last fetch error.
func (s *Session) GalleryState() (GalleryState, error) {
	return s.galleryState, s.galleryErr
}

// Tiles returns the current tiles with the selected color flagged.
func (s *Session) Tiles() []models.GalleryTile {
	return gallery.MarkSelected(s.tiles, s.store.CurrentConfiguration())
}

// Hover makes tile i the explicit selection.
func (s *Session) Hover(i int) {
	if s.unmounted || i < 0 || i >= len(s.tiles) {
		return
	}
	tile := s.tiles[i]
	_, cfg, err := gallery.ParseDeepLink(tile.DeepLink)
	if err != nil {
		s.logger.Warn("tile has an invalid deep link", zap.String("url", tile.DeepLink), zap.Error(err))
		return
	}
	s.cursor = i
	s.hovered = true
	s.store.ApplyExplicit(cfg)
	// the store stays silent when another copy of the same color is hovered
	s.refreshOverlay()
}

// Leave drops the hover selection.
func (s *Session) Leave() {
	if s.unmounted || !s.hovered {
		return
	}
	s.hovered = false
	s.store.Release()
}

// Choose navigates to the deep link of the tile under the cursor.
func (s *Session) Choose() {
	if !s.hovered || s.cursor >= len(s.tiles) {
		return
	}
	link := s.tiles[s.cursor].DeepLink
	s.logger.Info("navigating to variant", zap.String("url", link))
	if s.cfg.OnNavigate != nil {
		s.cfg.OnNavigate(link)
	}
}

func (s *Session) move(delta int) {
	n := len(s.tiles)
	if n == 0 {
		return
	}
	next := 0
	if s.hovered {
		next = ((s.cursor+delta)%n + n) % n
	}
	s.Hover(next)
}

func (s *Session) handleKey(in surface.Input) {
	switch in.Key {
	case "Right", "l":
		s.move(1)
	case "Left", "h":
		s.move(-1)
	case "Esc":
		s.Leave()
	case "Enter":
		s.Choose()
	case "+", "=":
		s.surface.HandleInput(surface.Input{Kind: surface.InputZoom, DY: 1})
	case "-":
		s.surface.HandleInput(surface.Input{Kind: surface.InputZoom, DY: -1})
	case "q", "Ctrl-C":
		if s.cfg.OnQuit != nil {
			s.cfg.OnQuit()
		}
	}
}

func (s *Session) startFetch() {
	if s.fetcher == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelFetch = cancel
	s.galleryState = GalleryLoading

	q := s.cfg.Gallery
	go func() {
		products, err := s.fetcher.Fetch(ctx, q)
		s.sched.Post(func() {
			s.onFetched(ctx, products, err)
		})
	}()
}

// onFetched never touches the surface color; failures only affect the gallery
func (s *Session) onFetched(ctx context.Context, products []models.Product, err error) {
	if ctx.Err() != nil || s.unmounted {
		return
	}

	switch {
	case errors.Is(err, storefront.ErrNotFound):
		s.galleryState = GalleryEmpty
		s.galleryErr = nil
	case err != nil:
		s.galleryState = GalleryError
		s.galleryErr = err
		s.logger.Warn("gallery fetch failed", zap.Error(err))
	default:
		s.tiles = gallery.BuildTiles(products)
		if len(s.tiles) == 0 {
			s.galleryState = GalleryEmpty
		} else {
			s.galleryState = GalleryReady
		}
		s.logger.Info("gallery loaded", zap.Int("products", len(products)), zap.Int("tiles", len(s.tiles)))
	}
	s.refreshOverlay()
}

func (s *Session) refreshOverlay() {
	if s.unmounted {
		return
	}
	o := surface.Overlay{Status: s.status()}
	if s.galleryState == GalleryReady {
		for i, t := range s.Tiles() {
			o.Swatches = append(o.Swatches, surface.Swatch{
				Label:    t.DisplayColorValue,
				Color:    t.RenderColor,
				Selected: t.Selected,
				Cursor:   s.hovered && i == s.cursor,
			})
		}
	}
	s.surface.SetOverlay(o)
}

func (s *Session) status() string {
	switch s.galleryState {
	case GalleryLoading:
		return "Loading products"
	case GalleryError:
		return "Error loading products"
	case GalleryEmpty:
		return "No products found"
	}

	if s.hovered && s.cursor < len(s.tiles) {
		t := s.tiles[s.cursor]
		parts := []string{t.ProductTitle, t.DisplayColorValue, t.PriceLabel, t.DeepLink}
		return strings.Join(parts, "  ")
	}
	cfg := s.store.CurrentConfiguration()
	color, ok := cfg.ColorValue()
	if !ok {
		color = "default"
	}
	return fmt.Sprintf("%s  %s", s.store.ActiveSource(), color)
}
