package service

import (
	"context"
	"io"

	"layerlight-storefront/models"
)

// DriveServiceInterface defines the Drive operations the mesh sync needs
type DriveServiceInterface interface {
	ListMeshFiles(ctx context.Context, folderID string) ([]models.MeshAsset, error)
	DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, error)
}
