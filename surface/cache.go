package surface

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Loader opens the raw bytes of a mesh by URL or path
type Loader interface {
	Open(ctx context.Context, url string) (io.ReadCloser, error)
}

// LoaderFunc adapts a function to Loader
type LoaderFunc func(ctx context.Context, url string) (io.ReadCloser, error)

// Open calls f.
func (f LoaderFunc) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	return f(ctx, url)
}

// DirLoader serves "/models/..." style URLs from a local directory
type DirLoader struct {
	Root string
}

// Open resolves url below Root, refusing paths that escape it.
func (d DirLoader) Open(_ context.Context, url string) (io.ReadCloser, error) {
	rel := strings.TrimPrefix(url, "/models/")
	clean := filepath.Clean("/" + rel)
	f, err := os.Open(filepath.Join(d.Root, clean))
	if err != nil {
		return nil, fmt.Errorf("failed to open mesh %s: %w", url, err)
	}
	return f, nil
}

// MeshCache loads each distinct URL once. Concurrent requests for the
// same URL share one load; failures are not cached.
type MeshCache struct {
	loader Loader
	group  singleflight.Group

	mu     sync.RWMutex
	meshes map[string]*Mesh
}

// NewMeshCache creates an empty cache over loader.
func NewMeshCache(loader Loader) *MeshCache {
	return &MeshCache{
		loader: loader,
		meshes: make(map[string]*Mesh),
	}
}

// Get returns the parsed mesh for url.
func (c *MeshCache) Get(ctx context.Context, url string) (*Mesh, error) {
	c.mu.RLock()
	m, ok := c.meshes[url]
	c.mu.RUnlock()
	if ok {
		return m, nil
	}

	v, err, _ := c.group.Do(url, func() (interface{}, error) {
		c.mu.RLock()
		cached, ok := c.meshes[url]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		rc, err := c.loader.Open(ctx, url)
		if err != nil {
			return nil, err
		}
		defer rc.Close()

		mesh, err := ParseSTL(rc)
		if err != nil {
			return nil, fmt.Errorf("failed to parse mesh %s: %w", url, err)
		}

		c.mu.Lock()
		c.meshes[url] = mesh
		c.mu.Unlock()
		return mesh, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Mesh), nil
}

// Len returns the number of cached meshes.
func (c *MeshCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.meshes)
}
