package controller

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"layerlight-storefront/models"
)

// writeJSON encodes payload with the given status
func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

// writeError sends {"error": message}
func writeError(w http.ResponseWriter, logger *zap.Logger, status int, message string) {
	writeJSON(w, logger, status, models.ErrorResponse{Error: message})
}
