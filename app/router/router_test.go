package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"layerlight-storefront/app/controller"
	"layerlight-storefront/models"
	"layerlight-storefront/palette"
	"layerlight-storefront/repository"
	"layerlight-storefront/selection"
	"layerlight-storefront/service"
)

type fakeProducts struct {
	product   *models.Product
	err       error
	lastQuery string
}

func (f *fakeProducts) GetByHandle(_ context.Context, handle string) (*models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.product == nil || f.product.Handle != handle {
		return nil, repository.ErrProductNotFound
	}
	return f.product, nil
}

func (f *fakeProducts) Search(_ context.Context, term string) ([]models.Product, error) {
	f.lastQuery = term
	if f.err != nil {
		return nil, f.err
	}
	return []models.Product{*f.product}, nil
}

func (f *fakeProducts) ListByCollection(_ context.Context, handle string) ([]models.Product, error) {
	f.lastQuery = handle
	if f.err != nil {
		return nil, f.err
	}
	return []models.Product{}, nil
}

func (f *fakeProducts) Query(ctx context.Context, q service.ProductQuery) ([]models.Product, error) {
	return f.Search(ctx, q.Search)
}

type fakeGallery struct {
	query    service.ProductQuery
	selected selection.Configuration
}

func (f *fakeGallery) Tiles(_ context.Context, q service.ProductQuery, selected selection.Configuration) (models.GalleryResponse, error) {
	f.query, f.selected = q, selected
	return models.GalleryResponse{Tiles: []models.GalleryTile{{VariantID: "v-gold", DisplayColorValue: "Gold"}}}, nil
}

func (f *fakeGallery) RenderHTML(_ context.Context, q service.ProductQuery, selected selection.Configuration) (string, error) {
	f.query, f.selected = q, selected
	return "<html>gallery</html>", nil
}

func (f *fakeGallery) Snapshot(context.Context, string) ([]byte, error) {
	return nil, errors.New("chrome not installed")
}

type fakeSwatches struct{ last palette.RGB }

func (f *fakeSwatches) Render(c palette.RGB, _ string) ([]byte, error) {
	f.last = c
	return []byte("png"), nil
}

type fakeSync struct{ folder string }

func (f *fakeSync) Sync(_ context.Context, folderID string) (models.MeshSyncResult, error) {
	f.folder = folderID
	return models.MeshSyncResult{Total: 2, Downloaded: 1, Skipped: 1, Errors: []string{}}, nil
}

func (f *fakeSync) List(context.Context) ([]models.MeshAsset, error) {
	return []models.MeshAsset{{Collection: "creme", Name: "together", URLPath: "/models/creme/together.stl"}}, nil
}

type fixture struct {
	handler  http.Handler
	products *fakeProducts
	gallery  *fakeGallery
	swatches *fakeSwatches
	sync     *fakeSync
	dir      string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zap.NewNop()
	f := &fixture{
		products: &fakeProducts{product: &models.Product{Handle: "lamp", Title: "Lamp"}},
		gallery:  &fakeGallery{},
		swatches: &fakeSwatches{},
		sync:     &fakeSync{},
		dir:      t.TempDir(),
	}
	f.handler = SetupRoutes(&Controllers{
		Product: controller.NewProductController(f.products, logger),
		Gallery: controller.NewGalleryController(f.gallery, logger),
		Swatch:  controller.NewSwatchController(f.swatches, logger),
		Mesh:    controller.NewMeshController(f.sync, "folder-1", logger),
	}, f.dir)
	return f
}

func (f *fixture) do(method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestPing(t *testing.T) {
	rec := newFixture(t).do(http.MethodGet, "/ping")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestProductByHandle(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/products/lamp")
	require.Equal(t, http.StatusOK, rec.Code)
	var p models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "Lamp", p.Title)

	rec = f.do(http.MethodGet, "/api/products/sofa")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", decodeError(t, rec))
}

func TestProductByHandleServerError(t *testing.T) {
	f := newFixture(t)
	f.products.err = errors.New("db down")

	rec := f.do(http.MethodGet, "/api/products/lamp")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Error fetching product", decodeError(t, rec))
}

func TestSearchProducts(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/products?search=lam")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "lam", f.products.lastQuery)

	f.products.err = errors.New("db down")
	rec = f.do(http.MethodGet, "/api/products?search=lam")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Error searching products", decodeError(t, rec))
}

func TestCollectionProducts(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/collections/creme/products")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	assert.Equal(t, "creme", f.products.lastQuery)
}

func TestGallerySplitsQueryAndSelection(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/gallery?collection=creme&Color=Gold&size=S")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "creme", f.gallery.query.Collection)
	assert.Equal(t, selection.Configuration{"color": "Gold", "size": "S"}, f.gallery.selected)

	var res models.GalleryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Tiles, 1)
	assert.Equal(t, "v-gold", res.Tiles[0].VariantID)
}

func TestGalleryRender(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/gallery/render?search=lamp")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "lamp", f.gallery.query.Search)
}

func TestGallerySnapshotFailure(t *testing.T) {
	rec := newFixture(t).do(http.MethodGet, "/api/gallery/snapshot.png")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Error capturing gallery snapshot", decodeError(t, rec))
}

func TestSwatches(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/swatches/ffd700.png?size=thumb")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, palette.ParseHex("#FFD700"), f.swatches.last)

	rec = f.do(http.MethodGet, "/api/swatches/gold.png")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestModelsAreServed(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.MkdirAll(filepath.Join(f.dir, "creme"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "creme", "together.stl"), []byte("solid together"), 0644))

	rec := f.do(http.MethodGet, "/models/creme/together.stl")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "solid together", rec.Body.String())

	rec = f.do(http.MethodGet, "/models/creme/missing.stl")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestModelSync(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/admin/models/sync")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "folder-1", f.sync.folder)
	assert.JSONEq(t, `{"status":"success","total":2,"downloaded":1,"skipped":1,"failed":0,"errors":[]}`, rec.Body.String())

	rec = f.do(http.MethodGet, "/admin/models/sync")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestModelList(t *testing.T) {
	rec := newFixture(t).do(http.MethodGet, "/admin/models")
	require.Equal(t, http.StatusOK, rec.Code)

	var assets []models.MeshAsset
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &assets))
	require.Len(t, assets, 1)
	assert.Equal(t, "/models/creme/together.stl", assets[0].URLPath)
}
