package utils

import (
	"fmt"
	"regexp"
	"strings"

	"layerlight-storefront/models"
)

var (
	meshExtRegex  = regexp.MustCompile(`(?i)\.stl$`)
	meshPartRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_]*$`)
)

// ParseMeshFileName parses a mesh filename following the pattern:
// COLLECTION-NAME.STL
// Example: creme-together.stl -> collection "creme", name "together"
func ParseMeshFileName(filename string) (*models.MeshAsset, error) {
	if !meshExtRegex.MatchString(filename) {
		return nil, fmt.Errorf("invalid mesh filename %q: expected .stl extension", filename)
	}
	nameWithoutExt := meshExtRegex.ReplaceAllString(strings.ToLower(strings.TrimSpace(filename)), "")

	// Split by the first hyphen only, names may contain more
	parts := strings.SplitN(nameWithoutExt, "-", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid mesh filename %q: expected COLLECTION-NAME.stl", filename)
	}

	collection := parts[0]
	name := strings.ReplaceAll(parts[1], "-", "_")
	if !meshPartRegex.MatchString(collection) || !meshPartRegex.MatchString(name) {
		return nil, fmt.Errorf("invalid mesh filename %q: only letters, digits and underscores are allowed", filename)
	}

	return &models.MeshAsset{
		FileName:   filename,
		Collection: collection,
		Name:       name,
		URLPath:    fmt.Sprintf("/models/%s/%s.stl", collection, name),
	}, nil
}
