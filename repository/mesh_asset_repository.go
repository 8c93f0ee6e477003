package repository

import (
	"context"
	"database/sql"
	"fmt"

	"layerlight-storefront/models"
)

// MeshAssetRepository records which Drive files were synced to the models directory
type MeshAssetRepository struct {
	conn *sql.DB
}

// NewMeshAssetRepository creates a new MeshAssetRepository
func NewMeshAssetRepository(conn *sql.DB) *MeshAssetRepository {
	return &MeshAssetRepository{conn: conn}
}

// Ensure MeshAssetRepository implements MeshAssetRepositoryInterface
var _ MeshAssetRepositoryInterface = (*MeshAssetRepository)(nil)

// ExistsByDriveFileID checks whether a Drive file was already synced
func (r *MeshAssetRepository) ExistsByDriveFileID(ctx context.Context, driveFileID string) (bool, error) {
	var exists bool
	err := r.conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM mesh_assets WHERE drive_file_id = $1)`, driveFileID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check mesh asset existence: %w", err)
	}
	return exists, nil
}

// Insert stores a synced mesh asset
func (r *MeshAssetRepository) Insert(ctx context.Context, asset *models.MeshAsset) error {
	_, err := r.conn.ExecContext(ctx, `
		INSERT INTO mesh_assets (drive_file_id, file_name, collection, name, url_path)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (drive_file_id) DO NOTHING`,
		asset.DriveFileID, asset.FileName, asset.Collection, asset.Name, asset.URLPath)
	if err != nil {
		return fmt.Errorf("failed to insert mesh asset: %w", err)
	}
	return nil
}

// List returns all synced mesh assets ordered by collection and name
func (r *MeshAssetRepository) List(ctx context.Context) ([]models.MeshAsset, error) {
	rows, err := r.conn.QueryContext(ctx, `
		SELECT drive_file_id, file_name, collection, name, url_path
		FROM mesh_assets
		ORDER BY collection, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query mesh assets: %w", err)
	}
	defer rows.Close()

	var assets []models.MeshAsset
	for rows.Next() {
		var a models.MeshAsset
		if err := rows.Scan(&a.DriveFileID, &a.FileName, &a.Collection, &a.Name, &a.URLPath); err != nil {
			return nil, fmt.Errorf("failed to scan mesh asset: %w", err)
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mesh assets: %w", err)
	}
	return assets, nil
}
