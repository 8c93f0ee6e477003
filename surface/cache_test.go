package surface

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeshCacheLoadsOncePerURL(t *testing.T) {
	var loads atomic.Int32
	release := make(chan struct{})
	loader := LoaderFunc(func(ctx context.Context, url string) (io.ReadCloser, error) {
		loads.Add(1)
		<-release
		return io.NopCloser(strings.NewReader(asciiTetra)), nil
	})
	cache := NewMeshCache(loader)

	var wg sync.WaitGroup
	results := make([]*Mesh, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := cache.Get(context.Background(), "/models/creme/together.stl")
			assert.NoError(t, err)
			results[i] = m
		}(i)
	}
	close(release)
	wg.Wait()

	m, err := cache.Get(context.Background(), "/models/creme/together.stl")
	require.NoError(t, err)
	assert.Equal(t, int32(1), loads.Load())
	for _, r := range results {
		assert.Same(t, m, r)
	}
	assert.Equal(t, 1, cache.Len())

	before := loads.Load()
	_, err = cache.Get(context.Background(), "/models/creme/together.stl")
	require.NoError(t, err)
	assert.Equal(t, before, loads.Load())
}

func TestMeshCacheDoesNotCacheFailures(t *testing.T) {
	calls := 0
	loader := LoaderFunc(func(ctx context.Context, url string) (io.ReadCloser, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("network down")
		}
		return io.NopCloser(strings.NewReader(asciiTetra)), nil
	})
	cache := NewMeshCache(loader)

	_, err := cache.Get(context.Background(), "/models/a.stl")
	require.Error(t, err)

	m, err := cache.Get(context.Background(), "/models/a.stl")
	require.NoError(t, err)
	assert.NotNil(t, m)
	assert.Equal(t, 2, calls)
}

func TestDirLoaderStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "creme"), 0o755))

	var buf bytes.Buffer
	require.NoError(t, EncodeBinarySTL(&buf, cubeTriangles(0, 1)))
	require.NoError(t, os.WriteFile(filepath.Join(root, "creme", "together.stl"), buf.Bytes(), 0o644))

	cache := NewMeshCache(DirLoader{Root: root})
	m, err := cache.Get(context.Background(), "/models/creme/together.stl")
	require.NoError(t, err)
	assert.Len(t, m.Triangles, 12)

	_, err = DirLoader{Root: root}.Open(context.Background(), "/models/../../etc/passwd")
	assert.Error(t, err)
}
