package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"layerlight-storefront/app/controller"
)

// requestTimeout leaves room for the headless Chrome snapshot
const requestTimeout = 60 * time.Second

// Controllers groups every HTTP controller the router mounts
type Controllers struct {
	Product *controller.ProductController
	Gallery *controller.GalleryController
	Swatch  *controller.SwatchController
	Mesh    *controller.MeshController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// SetupRoutes builds the storefront router. modelsDir is published under /models/.
func SetupRoutes(controllers *Controllers, modelsDir string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/ping", pingHandler)

	r.Route("/api", func(r chi.Router) {
		// Backend proxy operations
		r.Get("/products", controllers.Product.Search)
		r.Get("/products/{handle}", controllers.Product.GetByHandle)
		r.Get("/collections/{handle}/products", controllers.Product.ListByCollection)

		// Gallery projections
		r.Get("/gallery", controllers.Gallery.Tiles)
		r.Get("/gallery/render", controllers.Gallery.Render)
		r.Get("/gallery/snapshot.png", controllers.Gallery.Snapshot)
		r.Get("/swatches/{file}", controllers.Swatch.Get)
	})

	// Mesh files synced from Drive
	models := http.StripPrefix("/models/", http.FileServer(http.Dir(modelsDir)))
	r.Handle("/models/*", models)

	r.Get("/admin/models", controllers.Mesh.List)
	r.Post("/admin/models/sync", controllers.Mesh.Sync)

	return r
}
