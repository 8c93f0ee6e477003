package repository

import (
	"context"
	"errors"

	"layerlight-storefront/models"
)

// ErrProductNotFound is returned when no product matches a handle
var ErrProductNotFound = errors.New("product not found")

// ProductRepositoryInterface defines the contract for catalog reads
type ProductRepositoryInterface interface {
	GetByHandle(ctx context.Context, handle string) (*models.Product, error)
	// Search matches titles case-insensitively; results are ordered by title
	Search(ctx context.Context, term string) ([]models.Product, error)
	ListByCollection(ctx context.Context, collectionHandle string) ([]models.Product, error)
}

// MeshAssetRepositoryInterface defines the contract for synced mesh bookkeeping
type MeshAssetRepositoryInterface interface {
	ExistsByDriveFileID(ctx context.Context, driveFileID string) (bool, error)
	Insert(ctx context.Context, asset *models.MeshAsset) error
	List(ctx context.Context) ([]models.MeshAsset, error)
}
