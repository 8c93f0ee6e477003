package app

import (
	"context"
	"errors"
	"io"

	"layerlight-storefront/models"
)

var errDriveUnavailable = errors.New("google drive credentials are not configured")

// unavailableDrive stands in for Drive when no credentials are configured
type unavailableDrive struct{}

func (unavailableDrive) ListMeshFiles(context.Context, string) ([]models.MeshAsset, error) {
	return nil, errDriveUnavailable
}

func (unavailableDrive) DownloadFile(context.Context, string) (io.ReadCloser, error) {
	return nil, errDriveUnavailable
}
