package controller

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"layerlight-storefront/palette"
	"layerlight-storefront/service"
)

var swatchHexRegex = regexp.MustCompile(`(?i)^[0-9a-f]{6}$`)

// SwatchController serves color swatch images
type SwatchController struct {
	service service.SwatchServiceInterface
	logger  *zap.Logger
}

// NewSwatchController creates a new SwatchController
func NewSwatchController(svc service.SwatchServiceInterface, logger *zap.Logger) *SwatchController {
	return &SwatchController{service: svc, logger: logger}
}

// Get handles GET /api/swatches/{hex}.png?size=thumb|medium
func (c *SwatchController) Get(w http.ResponseWriter, r *http.Request) {
	hex := strings.TrimSuffix(chi.URLParam(r, "file"), ".png")
	if !swatchHexRegex.MatchString(hex) {
		writeError(w, c.logger, http.StatusBadRequest, "Invalid color, expected RRGGBB")
		return
	}

	data, err := c.service.Render(palette.ParseHex(hex), r.URL.Query().Get("size"))
	if err != nil {
		c.logger.Error("error rendering swatch", zap.String("color", hex), zap.Error(err))
		writeError(w, c.logger, http.StatusInternalServerError, "Error rendering swatch")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
