package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tristendillon/carve/core/models"
)

func TestFileCacheHitAndInvalidate(t *testing.T) {
	fc, err := NewFileCache(DefaultCacheConfig())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "chart.ts")
	require.NoError(t, os.WriteFile(path, []byte("import 'd3';"), 0644))
	refs := []models.RawReference{{File: "chart.ts", Module: "d3", Offset: 8}}

	_, ok := fc.ValidateAndGet(path)
	assert.False(t, ok)

	require.NoError(t, fc.Set(path, refs))
	got, ok := fc.ValidateAndGet(path)
	require.True(t, ok)
	assert.Equal(t, refs, got)

	require.NoError(t, os.WriteFile(path, []byte("import 'lodash-es';"), 0644))
	_, ok = fc.ValidateAndGet(path)
	assert.False(t, ok)

	metrics := fc.GetMetrics()
	assert.Equal(t, int64(1), metrics.Hits)
	assert.Equal(t, int64(2), metrics.Misses)
	assert.Equal(t, int64(1), metrics.Invalidations)
	assert.Equal(t, 0, metrics.TotalEntries)
}

func TestFileCacheEvictsLeastRecentlyUsed(t *testing.T) {
	fc, err := NewFileCache(&CacheConfig{MaxEntries: 1})
	require.NoError(t, err)

	dir := t.TempDir()
	a := filepath.Join(dir, "a.ts")
	b := filepath.Join(dir, "b.ts")
	require.NoError(t, os.WriteFile(a, []byte("a"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("b"), 0644))

	require.NoError(t, fc.Set(a, nil))
	require.NoError(t, fc.Set(b, nil))

	_, ok := fc.ValidateAndGet(a)
	assert.False(t, ok)
	_, ok = fc.ValidateAndGet(b)
	assert.True(t, ok)
}

func TestGetCacheIsShared(t *testing.T) {
	assert.Same(t, GetCache(), GetCache())
}
