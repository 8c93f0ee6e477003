package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"layerlight-storefront/gallery"
	"layerlight-storefront/models"
	"layerlight-storefront/options"
	"layerlight-storefront/palette"
	"layerlight-storefront/selection"
	"layerlight-storefront/utils"
)

const (
	galleryTemplate  = "gallery.html"
	snapshotTimeout  = 30 * time.Second
	snapshotWidth    = 1280
	snapshotHeight   = 720
	defaultHeading   = "All variants"
	swatchTileSize   = "thumb"
	renderPathSuffix = "/api/gallery/render"
)

// GalleryService projects catalog products into gallery tiles, HTML pages and PNG snapshots
type GalleryService struct {
	products     ProductServiceInterface
	templatesDir string
	baseURL      string
	chromePath   string
	policy       gallery.Policy
	sanitizer    *bluemonday.Policy
	logger       *zap.Logger
}

// NewGalleryService creates a new GalleryService
func NewGalleryService(
	products ProductServiceInterface,
	templatesDir string,
	baseURL string,
	chromePath string,
	policy gallery.Policy,
	logger *zap.Logger,
) *GalleryService {
	return &GalleryService{
		products:     products,
		templatesDir: templatesDir,
		baseURL:      strings.TrimRight(baseURL, "/"),
		chromePath:   chromePath,
		policy:       policy,
		sanitizer:    bluemonday.UGCPolicy(),
		logger:       logger,
	}
}

// detectChromePath returns the configured Chrome binary if it exists, otherwise
// the first common installation path found
func detectChromePath(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
	}

	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Tiles returns the tripled gallery for a query, with tiles matching selected marked.
// Missing variants are always listed; under PolicyReportMissing they are also logged as an error.
func (s *GalleryService) Tiles(ctx context.Context, q ProductQuery, selected selection.Configuration) (models.GalleryResponse, error) {
	products, err := s.products.Query(ctx, q)
	if err != nil {
		return models.GalleryResponse{}, err
	}

	res, err := gallery.Build(products, s.policy)
	if err != nil {
		s.logger.Error("gallery has declared colors without variants", zap.Error(err))
	}
	s.warnUnmappedColors(res.Tiles)

	tiles := gallery.MarkSelected(res.Tiles, selected)
	if tiles == nil {
		tiles = []models.GalleryTile{}
	}
	return models.GalleryResponse{Tiles: tiles, Missing: res.Missing}, nil
}

// warnUnmappedColors logs each color value that renders with the default color
func (s *GalleryService) warnUnmappedColors(tiles []models.GalleryTile) {
	seen := make(map[string]bool)
	for _, tile := range tiles {
		value := tile.DisplayColorValue
		if seen[value] || options.KnownColor(value) {
			continue
		}
		seen[value] = true
		s.logger.Warn("color value has no render color, using default",
			zap.String("product", tile.ProductHandle),
			zap.String("value", value))
	}
}

// PageData groups one copy of each product's tiles for the HTML gallery
func (s *GalleryService) PageData(ctx context.Context, q ProductQuery, selected selection.Configuration) (models.GalleryPageData, error) {
	products, err := s.products.Query(ctx, q)
	if err != nil {
		return models.GalleryPageData{}, err
	}

	data := models.GalleryPageData{Heading: heading(q), BaseURL: s.baseURL}
	for _, p := range products {
		res, _ := gallery.Build([]models.Product{p}, gallery.PolicySkipMissing)
		data.Missing += len(res.Missing)
		if len(res.Tiles) == 0 {
			continue
		}
		single := res.Tiles[:len(res.Tiles)/gallery.Repeats]
		data.Products = append(data.Products, models.GalleryProductSection{
			Title:           p.Title,
			Handle:          p.Handle,
			DescriptionHTML: template.HTML(s.sanitizer.Sanitize(p.DescriptionHTML)),
			Tiles:           gallery.MarkSelected(single, selected),
		})
	}
	return data, nil
}

// RenderHTML renders the gallery page template for a query
func (s *GalleryService) RenderHTML(ctx context.Context, q ProductQuery, selected selection.Configuration) (string, error) {
	data, err := s.PageData(ctx, q, selected)
	if err != nil {
		return "", err
	}

	templatePath := filepath.Join(s.templatesDir, galleryTemplate)
	tmpl, err := template.New(galleryTemplate).Funcs(template.FuncMap{
		"swatchURL": SwatchURL,
	}).ParseFiles(templatePath)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// Snapshot loads the rendered gallery in headless Chrome and returns a full-page PNG.
// rawQuery is forwarded unchanged to the render route.
func (s *GalleryService) Snapshot(ctx context.Context, rawQuery string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.NoSandbox)
	if chromePath := detectChromePath(s.chromePath); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	chromedpCtx, chromedpCancel := chromedp.NewContext(allocCtx)
	defer chromedpCancel()

	renderURL := s.baseURL + renderPathSuffix
	if rawQuery != "" {
		renderURL += "?" + rawQuery
	}
	s.logger.Info("capturing gallery snapshot", zap.String("url", renderURL))

	var buf []byte
	err := chromedp.Run(chromedpCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			return page.Enable().Do(ctx)
		}),
		chromedp.EmulateViewport(snapshotWidth, snapshotHeight),
		chromedp.Navigate(renderURL),
		chromedp.WaitReady("body"),
		chromedp.Evaluate(`
			Promise.all(Array.from(document.images).map(img => img.complete ? null :
				new Promise(resolve => { img.onload = img.onerror = resolve; })));
		`, nil, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}),
		// quality 100 selects PNG output
		chromedp.FullScreenshot(&buf, 100),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to capture gallery snapshot: %w", err)
	}
	if len(buf) == 0 {
		return nil, fmt.Errorf("failed to capture gallery snapshot: empty image")
	}
	return buf, nil
}

// SwatchURL returns the swatch image route for a render color
func SwatchURL(c palette.RGB) string {
	return "/api/swatches/" + url.PathEscape(strings.TrimPrefix(c.Hex(), "#")) + ".png?size=" + swatchTileSize
}

func heading(q ProductQuery) string {
	switch {
	case q.Collection != "":
		return "Collection " + utils.CapitalizeWords(q.Collection)
	case q.Handle != "":
		return q.Handle
	case q.Search != "":
		return fmt.Sprintf("Search: %s", q.Search)
	default:
		return defaultHeading
	}
}
