package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"layerlight-storefront/models"
	"layerlight-storefront/utils"
)

// meshMimeTypes are the MIME types Drive reports for STL uploads
var meshMimeTypes = map[string]bool{
	"model/stl":                  true,
	"model/x.stl-binary":         true,
	"model/x.stl-ascii":          true,
	"application/sla":            true,
	"application/vnd.ms-pki.stl": true,
	"application/octet-stream":   true,
}

// DriveService handles Google Drive API operations
type DriveService struct {
	client *drive.Service
	logger *zap.Logger
}

// NewDriveService creates a new DriveService from a Service Account JSON file
func NewDriveService(ctx context.Context, credentialsPath string, logger *zap.Logger) (*DriveService, error) {
	client, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsPath),
		option.WithScopes(drive.DriveReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &DriveService{client: client, logger: logger}, nil
}

// Ensure DriveService implements DriveServiceInterface
var _ DriveServiceInterface = (*DriveService)(nil)

// ListMeshFiles lists the STL files of a Drive folder whose names follow COLLECTION-NAME.stl
func (ds *DriveService) ListMeshFiles(ctx context.Context, folderID string) ([]models.MeshAsset, error) {
	query := fmt.Sprintf("'%s' in parents and trashed=false", folderID)

	var allFiles []*drive.File
	pageToken := ""
	for {
		call := ds.client.Files.List().
			Context(ctx).
			Q(query).
			Fields("nextPageToken, files(id, name, mimeType)")
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		r, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list files: %w", err)
		}
		allFiles = append(allFiles, r.Files...)

		pageToken = r.NextPageToken
		if pageToken == "" {
			break
		}
	}

	var assets []models.MeshAsset
	for _, file := range allFiles {
		if !isMeshFile(file) {
			continue
		}
		parsed, err := utils.ParseMeshFileName(file.Name)
		if err != nil {
			ds.logger.Warn("skipping drive file", zap.String("name", file.Name), zap.Error(err))
			continue
		}
		parsed.DriveFileID = file.Id
		assets = append(assets, *parsed)
	}
	return assets, nil
}

// DownloadFile streams the content of a Drive file. The caller closes the body.
func (ds *DriveService) DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, error) {
	resp, err := ds.client.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to download file %s: %w", fileID, err)
	}
	return resp.Body, nil
}

// isMeshFile accepts STL names regardless of the MIME type Drive guessed
func isMeshFile(file *drive.File) bool {
	if strings.HasSuffix(strings.ToLower(file.Name), ".stl") {
		return true
	}
	return meshMimeTypes[strings.ToLower(file.MimeType)]
}
