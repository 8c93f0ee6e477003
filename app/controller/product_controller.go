package controller

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"layerlight-storefront/repository"
	"layerlight-storefront/service"
)

// ProductController handles HTTP requests for catalog products
type ProductController struct {
	service service.ProductServiceInterface
	logger  *zap.Logger
}

// NewProductController creates a new ProductController
func NewProductController(svc service.ProductServiceInterface, logger *zap.Logger) *ProductController {
	return &ProductController{service: svc, logger: logger}
}

// Search handles GET /api/products?search=<term>
func (c *ProductController) Search(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("search"))

	products, err := c.service.Search(r.Context(), term)
	if err != nil {
		c.logger.Error("error searching products", zap.String("term", term), zap.Error(err))
		writeError(w, c.logger, http.StatusInternalServerError, "Error searching products")
		return
	}

	writeJSON(w, c.logger, http.StatusOK, products)
}

// GetByHandle handles GET /api/products/{handle}
func (c *ProductController) GetByHandle(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")

	product, err := c.service.GetByHandle(r.Context(), handle)
	if err != nil {
		if repository.IsNotFound(err) {
			writeError(w, c.logger, http.StatusNotFound, "Product not found")
			return
		}
		c.logger.Error("error fetching product", zap.String("handle", handle), zap.Error(err))
		writeError(w, c.logger, http.StatusInternalServerError, "Error fetching product")
		return
	}

	writeJSON(w, c.logger, http.StatusOK, product)
}

// ListByCollection handles GET /api/collections/{handle}/products
func (c *ProductController) ListByCollection(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")

	products, err := c.service.ListByCollection(r.Context(), handle)
	if err != nil {
		c.logger.Error("error fetching collection", zap.String("collection", handle), zap.Error(err))
		writeError(w, c.logger, http.StatusInternalServerError, "Error fetching collection products")
		return
	}

	writeJSON(w, c.logger, http.StatusOK, products)
}
