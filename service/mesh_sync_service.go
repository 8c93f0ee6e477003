package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"layerlight-storefront/models"
	"layerlight-storefront/repository"
	"layerlight-storefront/surface"
)

// maxMeshBytes bounds a single downloaded mesh
const maxMeshBytes = 64 << 20

// MeshSyncServiceInterface defines the contract for Drive to models-directory synchronization
type MeshSyncServiceInterface interface {
	Sync(ctx context.Context, folderID string) (models.MeshSyncResult, error)
	List(ctx context.Context) ([]models.MeshAsset, error)
}

// MeshSyncService downloads STL files from Drive into the served models directory
// and records them in mesh_assets
type MeshSyncService struct {
	driveService DriveServiceInterface
	repository   repository.MeshAssetRepositoryInterface
	modelsDir    string
	logger       *zap.Logger
}

// NewMeshSyncService creates a new MeshSyncService
func NewMeshSyncService(
	driveService DriveServiceInterface,
	repo repository.MeshAssetRepositoryInterface,
	modelsDir string,
	logger *zap.Logger,
) *MeshSyncService {
	return &MeshSyncService{
		driveService: driveService,
		repository:   repo,
		modelsDir:    modelsDir,
		logger:       logger,
	}
}

// Ensure MeshSyncService implements MeshSyncServiceInterface
var _ MeshSyncServiceInterface = (*MeshSyncService)(nil)

// Sync publishes every new mesh of a Drive folder. Files already recorded or already
// on disk are skipped; per-file failures are collected and do not stop the run.
func (s *MeshSyncService) Sync(ctx context.Context, folderID string) (models.MeshSyncResult, error) {
	result := models.MeshSyncResult{Errors: []string{}}
	if folderID == "" {
		return result, fmt.Errorf("drive folder id is not configured")
	}

	s.logger.Info("starting mesh sync", zap.String("folder_id", folderID), zap.String("models_dir", s.modelsDir))

	assets, err := s.driveService.ListMeshFiles(ctx, folderID)
	if err != nil {
		return result, fmt.Errorf("failed to list mesh files from Drive: %w", err)
	}
	result.Total = len(assets)

	seen := make(map[string]bool)
	for i := range assets {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		asset := &assets[i]

		// two Drive files may map to the same published path
		if seen[asset.URLPath] {
			s.logger.Info("skipping duplicate mesh name", zap.String("file", asset.FileName))
			result.Skipped++
			continue
		}
		seen[asset.URLPath] = true

		exists, err := s.repository.ExistsByDriveFileID(ctx, asset.DriveFileID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to check %s (%s): %v", asset.FileName, asset.DriveFileID, err))
			continue
		}
		target := s.localPath(asset)
		if exists {
			result.Skipped++
			continue
		}
		if _, err := os.Stat(target); err == nil {
			// on disk from an earlier run that never reached the database
			if err := s.repository.Insert(ctx, asset); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Failed to record %s: %v", asset.FileName, err))
				continue
			}
			result.Skipped++
			continue
		}

		if err := s.download(ctx, asset, target); err != nil {
			s.logger.Error("mesh download failed", zap.String("file", asset.FileName), zap.Error(err))
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to download %s (%s): %v", asset.FileName, asset.DriveFileID, err))
			continue
		}
		if err := s.repository.Insert(ctx, asset); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to record %s: %v", asset.FileName, err))
			continue
		}

		s.logger.Info("mesh published", zap.String("path", asset.URLPath))
		result.Downloaded++
	}

	s.logger.Info("mesh sync completed",
		zap.Int("downloaded", result.Downloaded),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", len(result.Errors)),
		zap.Int("total", result.Total),
	)
	return result, nil
}

// List returns the published meshes
func (s *MeshSyncService) List(ctx context.Context) ([]models.MeshAsset, error) {
	assets, err := s.repository.List(ctx)
	if err != nil {
		return nil, err
	}
	if assets == nil {
		assets = []models.MeshAsset{}
	}
	return assets, nil
}

// localPath maps a mesh to MODELS_DIR/<collection>/<name>.stl
func (s *MeshSyncService) localPath(asset *models.MeshAsset) string {
	return filepath.Join(s.modelsDir, asset.Collection, asset.Name+".stl")
}

// download fetches a mesh, checks it parses and writes it atomically to target
func (s *MeshSyncService) download(ctx context.Context, asset *models.MeshAsset, target string) error {
	body, err := s.driveService.DownloadFile(ctx, asset.DriveFileID)
	if err != nil {
		return err
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxMeshBytes+1))
	if err != nil {
		return fmt.Errorf("failed to read mesh: %w", err)
	}
	if len(data) > maxMeshBytes {
		return fmt.Errorf("mesh exceeds %d bytes", maxMeshBytes)
	}
	if _, err := surface.ParseSTL(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("invalid mesh: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create models directory: %w", err)
	}
	tmp := target + ".part"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write mesh: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to publish mesh: %w", err)
	}
	return nil
}
