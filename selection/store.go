// Package selection holds the single source of truth for the current product
// configuration and arbitrates between its three writers.
package selection

import (
	"net/url"
	"sync"

	"layerlight-storefront/models"
	"layerlight-storefront/options"
	"layerlight-storefront/palette"
	"layerlight-storefront/utils"
)

// Source identifies which writer the current configuration comes from
type Source int

const (
	SourceNone Source = iota
	SourceTimer
	SourceURL
	SourceExplicit
)

func (s Source) String() string {
	switch s {
	case SourceTimer:
		return "timer"
	case SourceURL:
		return "url"
	case SourceExplicit:
		return "explicit"
	default:
		return "none"
	}
}

// DefaultCycle is the ordered palette walked by the demo timer
var DefaultCycle = []string{"White", "Gold", "Black", "Copper", "Silver"}

// timerOptionName is the key written by the demo timer
const timerOptionName = "color"

// Binding is the product context of a product-bound view. A nil binding means
// the store runs standalone (e.g. the landing hero) and the demo timer applies.
type Binding struct {
	Product models.Product
}

// Option configures a Store
type Option func(*Store)

// WithCycle replaces the demo palette. An empty cycle disables the timer source.
func WithCycle(values []string) Option {
	return func(s *Store) {
		s.cycle = append([]string(nil), values...)
	}
}

// Store is the selection state shared by reference between the 3D surface,
// the gallery and the URL. Writers replace whole configurations; readers always
// see exactly one source per read.
type Store struct {
	mu sync.RWMutex

	binding         *Binding
	colorOptionName string // resolved from binding, empty when standalone or no color option
	hasColorOption  bool

	explicit Configuration
	url      Configuration
	timer    Configuration

	cycle    []string
	cycleIdx int

	listeners map[int]func()
	nextID    int
}

// NewStore creates a store. binding may be nil for standalone views.
func NewStore(binding *Binding, opts ...Option) *Store {
	s := &Store{
		binding:   binding,
		cycle:     append([]string(nil), DefaultCycle...),
		listeners: make(map[int]func()),
	}
	for _, opt := range opts {
		opt(s)
	}

	if binding != nil {
		if opt, ok := options.ResolveColorOption(binding.Product.Options); ok {
			s.colorOptionName = utils.NormalizeOptionName(opt.Name)
			s.hasColorOption = true
		}
	} else if len(s.cycle) > 0 {
		s.timer = Configuration{timerOptionName: s.cycle[0]}
	}
	return s
}

// Bound reports whether a product context exists.
func (s *Store) Bound() bool {
	return s.binding != nil
}

// ApplyExplicit replaces the explicit configuration (gallery hover, variant pages).
func (s *Store) ApplyExplicit(cfg Configuration) {
	s.write(func() {
		s.explicit = normalize(cfg)
	})
}

// ApplyFromURL replaces the URL-derived configuration. Called once per navigation.
func (s *Store) ApplyFromURL(q url.Values) {
	s.write(func() {
		s.url = FromQuery(q)
	})
}

// Release drops the explicit configuration, e.g. when the pointer leaves a tile.
func (s *Store) Release() {
	s.write(func() {
		s.explicit = nil
	})
}

// Tick advances the demo cycle and returns the new color value.
// Bound stores ignore the timer and return "".
func (s *Store) Tick() string {
	if s.binding != nil || len(s.cycle) == 0 {
		return ""
	}
	var next string
	s.write(func() {
		s.cycleIdx = (s.cycleIdx + 1) % len(s.cycle)
		next = s.cycle[s.cycleIdx]
		s.timer = Configuration{timerOptionName: next}
	})
	return next
}

// ActiveSource reports which writer currently owns the configuration.
func (s *Store) ActiveSource() Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src, _ := s.active()
	return src
}

// CurrentConfiguration returns a copy of the winning configuration.
func (s *Store) CurrentConfiguration() Configuration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, cfg := s.active()
	return cfg.Clone()
}

// ResolvedRenderColor maps the current color option value to a render color.
func (s *Store) ResolvedRenderColor() palette.RGB {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, cfg := s.active()
	if s.binding != nil {
		if !s.hasColorOption {
			return options.DefaultColor
		}
		if v, ok := cfg.Get(s.colorOptionName); ok {
			return options.ColorValueToRGB(v)
		}
		// hovered tiles and links may name the option with another synonym
		if v, ok := cfg.ColorValue(); ok {
			return options.ColorValueToRGB(v)
		}
		return options.DefaultColor
	}
	if v, ok := cfg.ColorValue(); ok {
		return options.ColorValueToRGB(v)
	}
	return options.DefaultColor
}

// Subscribe registers fn to run after every effective write. The returned func unregisters it.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// active picks exactly one source: explicit > url > timer. Callers hold mu.
func (s *Store) active() (Source, Configuration) {
	if len(s.explicit) > 0 {
		return SourceExplicit, s.explicit
	}
	if len(s.url) > 0 {
		return SourceURL, s.url
	}
	if s.binding == nil && len(s.timer) > 0 {
		return SourceTimer, s.timer
	}
	return SourceNone, nil
}

// write applies mutate under the lock and notifies listeners outside of it.
// Listeners only run when the winning source or its configuration changed.
func (s *Store) write(mutate func()) {
	s.mu.Lock()
	beforeSrc, beforeCfg := s.active()
	beforeCfg = beforeCfg.Clone()
	mutate()
	afterSrc, afterCfg := s.active()
	if beforeSrc == afterSrc && beforeCfg.Equal(afterCfg) {
		s.mu.Unlock()
		return
	}
	listeners := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// normalize lower-cases keys and copies the map so callers cannot mutate store state
func normalize(cfg Configuration) Configuration {
	if len(cfg) == 0 {
		return nil
	}
	out := make(Configuration, len(cfg))
	for k, v := range cfg {
		out[utils.NormalizeOptionName(k)] = v
	}
	return out
}
