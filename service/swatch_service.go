package service

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"layerlight-storefront/palette"
)

const (
	// SwatchThumb and SwatchMedium are the supported swatch sizes
	SwatchThumb  = "thumb"
	SwatchMedium = "medium"

	maxSizeThumb  = 300
	maxSizeMedium = 800

	// shade strip along the bottom edge, as a fraction of the side
	shadeFraction = 6
	shadeFactor   = 0.8
)

// SwatchServiceInterface renders color swatch images
type SwatchServiceInterface interface {
	Render(c palette.RGB, size string) ([]byte, error)
}

// SwatchService renders square PNG swatches for render colors and caches them on disk
type SwatchService struct {
	cacheDir string
	logger   *zap.Logger
}

// NewSwatchService creates a new SwatchService caching into cacheDir
func NewSwatchService(cacheDir string, logger *zap.Logger) *SwatchService {
	return &SwatchService{cacheDir: cacheDir, logger: logger}
}

// Ensure SwatchService implements SwatchServiceInterface
var _ SwatchServiceInterface = (*SwatchService)(nil)

// EnsureCacheDir ensures the cache directory exists, creates it if it doesn't
func (s *SwatchService) EnsureCacheDir() error {
	if err := os.MkdirAll(s.cacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	return nil
}

// CachePath returns the cache file path for a color and size
func (s *SwatchService) CachePath(c palette.RGB, size string) string {
	filename := fmt.Sprintf("swatch_%s_%s.png", strings.ToLower(strings.TrimPrefix(c.Hex(), "#")), size)
	return filepath.Join(s.cacheDir, filename)
}

// NormalizeSwatchSize maps a requested size to a supported one; unknown sizes become medium
func NormalizeSwatchSize(size string) (string, int) {
	switch strings.ToLower(strings.TrimSpace(size)) {
	case SwatchThumb:
		return SwatchThumb, maxSizeThumb
	default:
		return SwatchMedium, maxSizeMedium
	}
}

// Render returns the PNG swatch for c, from cache when available
func (s *SwatchService) Render(c palette.RGB, size string) ([]byte, error) {
	requested := size
	size, dim := NormalizeSwatchSize(size)
	if requested != "" && !strings.EqualFold(strings.TrimSpace(requested), size) {
		s.logger.Warn("unknown swatch size, defaulting to medium", zap.String("size", requested))
	}

	cachePath := s.CachePath(c, size)
	if data, err := os.ReadFile(cachePath); err == nil {
		return data, nil
	}

	data, err := RenderSwatch(c, dim)
	if err != nil {
		return nil, err
	}

	// a failed cache write still serves the swatch
	if err := s.saveToCache(cachePath, data); err != nil {
		s.logger.Warn("failed to cache swatch", zap.String("path", cachePath), zap.Error(err))
	}
	return data, nil
}

func (s *SwatchService) saveToCache(cachePath string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(cachePath), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(cachePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	s.logger.Debug("swatch cached", zap.String("path", cachePath))
	return nil
}

// RenderSwatch draws a dim x dim swatch of c with a darker strip along the bottom edge
func RenderSwatch(c palette.RGB, dim int) ([]byte, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("invalid swatch size %d", dim)
	}

	img := imaging.New(dim, dim, c.RGBA())
	if strip := dim / shadeFraction; strip > 0 {
		shade := imaging.New(dim, strip, c.Scale(shadeFactor).RGBA())
		img = imaging.Paste(img, shade, image.Pt(0, dim-strip))
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode swatch: %w", err)
	}
	return buf.Bytes(), nil
}
