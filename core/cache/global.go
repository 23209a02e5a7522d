package cache

import (
	"sync"

	"github.com/tristendillon/carve/core/logger"
)

var (
	globalCache *FileCache
	cacheOnce   sync.Once
)

// GetCache returns the process-wide reference cache shared by analyze and watch.
func GetCache() *FileCache {
	cacheOnce.Do(func() {
		fc, err := NewFileCache(DefaultCacheConfig())
		if err != nil {
			logger.Debug("Failed to create global cache: %v", err)
			return
		}
		globalCache = fc
		logger.Debug("Initialized global file cache")
	})
	return globalCache
}
