package controller

import (
	"net/http"

	"go.uber.org/zap"

	"layerlight-storefront/service"
)

// MeshController handles the mesh asset admin routes
type MeshController struct {
	syncService service.MeshSyncServiceInterface
	folderID    string
	logger      *zap.Logger
}

// NewMeshController creates a new MeshController syncing from folderID
func NewMeshController(syncService service.MeshSyncServiceInterface, folderID string, logger *zap.Logger) *MeshController {
	return &MeshController{syncService: syncService, folderID: folderID, logger: logger}
}

// Sync handles POST /admin/models/sync
// Downloads new STL files from the configured Drive folder into the models directory
func (c *MeshController) Sync(w http.ResponseWriter, r *http.Request) {
	if c.folderID == "" {
		writeError(w, c.logger, http.StatusInternalServerError, "MODELS_DRIVE_FOLDER_ID is not set")
		return
	}

	c.logger.Info("mesh sync requested", zap.String("folder_id", c.folderID))

	result, err := c.syncService.Sync(r.Context(), c.folderID)
	if err != nil {
		c.logger.Error("mesh sync failed", zap.Error(err))
		writeError(w, c.logger, http.StatusInternalServerError, "Failed to sync models")
		return
	}

	writeJSON(w, c.logger, http.StatusOK, map[string]interface{}{
		"status":     "success",
		"total":      result.Total,
		"downloaded": result.Downloaded,
		"skipped":    result.Skipped,
		"failed":     len(result.Errors),
		"errors":     result.Errors,
	})
}

// List handles GET /admin/models
func (c *MeshController) List(w http.ResponseWriter, r *http.Request) {
	assets, err := c.syncService.List(r.Context())
	if err != nil {
		c.logger.Error("error listing models", zap.Error(err))
		writeError(w, c.logger, http.StatusInternalServerError, "Error listing models")
		return
	}
	writeJSON(w, c.logger, http.StatusOK, assets)
}
