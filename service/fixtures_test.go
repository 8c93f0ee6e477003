package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"layerlight-storefront/models"
	"layerlight-storefront/repository"
)

func lampProduct() models.Product {
	return models.Product{
		ID:              "gid://shopify/Product/1",
		Handle:          "lamp",
		Title:           "Lamp",
		DescriptionHTML: `<p>Printed <b>layer</b> by layer.</p><script>alert("x")</script>`,
		Options: []models.ProductOption{
			{Name: "Size", Values: []string{"S"}},
			{Name: "Color", Values: []string{"White", "Black", "Gold"}},
		},
		Variants: []models.Variant{
			{
				ID:              "v-white",
				SelectedOptions: []models.SelectedOption{{Name: "Size", Value: "S"}, {Name: "Color", Value: "White"}},
				Price:           models.Money{Amount: "129.0", CurrencyCode: "EUR"},
			},
			{
				ID:              "v-gold",
				SelectedOptions: []models.SelectedOption{{Name: "Size", Value: "S"}, {Name: "Color", Value: "Gold"}},
				Price:           models.Money{Amount: "149.0", CurrencyCode: "EUR"},
			},
		},
	}
}

// fakeProductRepo serves products from memory
type fakeProductRepo struct {
	products    []models.Product
	collections map[string][]models.Product
	err         error
	lastTerm    string
}

func (f *fakeProductRepo) GetByHandle(_ context.Context, handle string) (*models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.products {
		if p.Handle == handle {
			p := p
			return &p, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (f *fakeProductRepo) Search(_ context.Context, term string) ([]models.Product, error) {
	f.lastTerm = term
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Product
	for _, p := range f.products {
		if strings.Contains(strings.ToLower(p.Title), strings.ToLower(term)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) ListByCollection(_ context.Context, handle string) ([]models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.collections[handle], nil
}

// fakeDrive serves mesh files from memory
type fakeDrive struct {
	assets    []models.MeshAsset
	files     map[string][]byte
	listErr   error
	downloads []string
}

func (f *fakeDrive) ListMeshFiles(context.Context, string) ([]models.MeshAsset, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.assets, nil
}

func (f *fakeDrive) DownloadFile(_ context.Context, fileID string) (io.ReadCloser, error) {
	f.downloads = append(f.downloads, fileID)
	data, ok := f.files[fileID]
	if !ok {
		return nil, errors.New("file not found")
	}
	return io.NopCloser(strings.NewReader(string(data))), nil
}

// fakeMeshRepo records inserted assets
type fakeMeshRepo struct {
	existing map[string]bool
	inserted []models.MeshAsset
}

func (f *fakeMeshRepo) ExistsByDriveFileID(_ context.Context, id string) (bool, error) {
	return f.existing[id], nil
}

func (f *fakeMeshRepo) Insert(_ context.Context, asset *models.MeshAsset) error {
	f.inserted = append(f.inserted, *asset)
	return nil
}

func (f *fakeMeshRepo) List(context.Context) ([]models.MeshAsset, error) {
	return f.inserted, nil
}
