package controller

import (
	"context"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"layerlight-storefront/models"
	"layerlight-storefront/selection"
	"layerlight-storefront/service"
)

// GalleryServiceInterface is the part of the gallery service the controller uses
type GalleryServiceInterface interface {
	Tiles(ctx context.Context, q service.ProductQuery, selected selection.Configuration) (models.GalleryResponse, error)
	RenderHTML(ctx context.Context, q service.ProductQuery, selected selection.Configuration) (string, error)
	Snapshot(ctx context.Context, rawQuery string) ([]byte, error)
}

// Ensure GalleryService implements GalleryServiceInterface
var _ GalleryServiceInterface = (*service.GalleryService)(nil)

// GalleryController handles HTTP requests for the variant gallery
type GalleryController struct {
	service GalleryServiceInterface
	logger  *zap.Logger
}

// NewGalleryController creates a new GalleryController
func NewGalleryController(svc GalleryServiceInterface, logger *zap.Logger) *GalleryController {
	return &GalleryController{service: svc, logger: logger}
}

// queryKeys select products; every other parameter is part of the current configuration
var queryKeys = []string{"collection", "handle", "search"}

// parseGalleryQuery splits the request query into the product query and the selection
func parseGalleryQuery(values url.Values) (service.ProductQuery, selection.Configuration) {
	q := service.ProductQuery{
		Collection: values.Get("collection"),
		Handle:     values.Get("handle"),
		Search:     values.Get("search"),
	}
	rest := url.Values{}
	for k, v := range values {
		rest[k] = v
	}
	for _, k := range queryKeys {
		rest.Del(k)
	}
	return q, selection.FromQuery(rest)
}

// Tiles handles GET /api/gallery?collection=|handle=|search=
func (c *GalleryController) Tiles(w http.ResponseWriter, r *http.Request) {
	q, selected := parseGalleryQuery(r.URL.Query())

	res, err := c.service.Tiles(r.Context(), q, selected)
	if err != nil {
		c.logger.Error("error building gallery", zap.Error(err))
		writeError(w, c.logger, http.StatusInternalServerError, "Error building gallery")
		return
	}

	writeJSON(w, c.logger, http.StatusOK, res)
}

// Render handles GET /api/gallery/render and returns the gallery page
func (c *GalleryController) Render(w http.ResponseWriter, r *http.Request) {
	q, selected := parseGalleryQuery(r.URL.Query())

	html, err := c.service.RenderHTML(r.Context(), q, selected)
	if err != nil {
		c.logger.Error("error rendering gallery", zap.Error(err))
		http.Error(w, "Failed to render gallery", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

// Snapshot handles GET /api/gallery/snapshot.png
func (c *GalleryController) Snapshot(w http.ResponseWriter, r *http.Request) {
	png, err := c.service.Snapshot(r.Context(), r.URL.RawQuery)
	if err != nil {
		c.logger.Error("error capturing gallery snapshot", zap.Error(err))
		writeError(w, c.logger, http.StatusInternalServerError, "Error capturing gallery snapshot")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `inline; filename="gallery.png"`)
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
