package models

// MeshAsset represents a 3D mesh file synced from Google Drive
type MeshAsset struct {
	DriveFileID string `json:"driveFileId"`
	FileName    string `json:"fileName"`
	Collection  string `json:"collection"` // e.g. "creme"
	Name        string `json:"name"`       // e.g. "together"
	URLPath     string `json:"urlPath"`    // e.g. "/models/creme/together.stl"
}

// MeshSyncResult summarizes one Drive synchronization run
type MeshSyncResult struct {
	Total      int      `json:"total"`
	Downloaded int      `json:"downloaded"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors"`
}
