package cache

import (
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/tristendillon/carve/core/logger"
	"github.com/tristendillon/carve/core/models"
)

// FileCache keeps the references extracted from each scanned file, keyed by
// absolute path. Entries are dropped once the file content changes.
type FileCache struct {
	entries *lru.Cache[string, *models.CacheEntry]
	config  *CacheConfig
	metrics *CacheMetrics
	mutex   sync.Mutex
}

func NewFileCache(config *CacheConfig) (*FileCache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	fc := &FileCache{
		config:  config,
		metrics: &CacheMetrics{},
	}

	entries, err := lru.NewWithEvict[string, *models.CacheEntry](config.MaxEntries, func(path string, _ *models.CacheEntry) {
		fc.mutex.Lock()
		fc.metrics.Invalidations++
		fc.mutex.Unlock()
		logger.Debug("Evicted cache entry: %s", path)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create lru cache: %w", err)
	}
	fc.entries = entries

	logger.Debug("Created new file cache with config: MaxEntries=%d, TTL=%v",
		config.MaxEntries, config.DefaultTTL)

	return fc, nil
}

func (fc *FileCache) ValidateAndGet(filePath string) ([]models.RawReference, bool) {
	entry, exists := fc.entries.Get(filePath)
	if !exists {
		fc.incrementMisses()
		logger.Debug("Cache miss for %s - entry not found", filePath)
		return nil, false
	}

	valid, err := entry.IsValid()
	if err != nil {
		logger.Debug("Cache validation error for %s: %v", filePath, err)
		fc.InvalidateFile(filePath)
		fc.incrementMisses()
		return nil, false
	}

	if !valid {
		logger.Debug("Cache miss for %s - file modified", filePath)
		fc.InvalidateFile(filePath)
		fc.incrementMisses()
		return nil, false
	}

	if fc.isExpired(entry) {
		logger.Debug("Cache miss for %s - entry expired", filePath)
		fc.InvalidateFile(filePath)
		fc.incrementMisses()
		return nil, false
	}

	fc.incrementHits()
	return entry.References, true
}

func (fc *FileCache) Set(filePath string, refs []models.RawReference) error {
	entry, err := models.NewCacheEntry(filePath, refs)
	if err != nil {
		return fmt.Errorf("failed to create cache entry: %w", err)
	}
	fc.entries.Add(filePath, entry)
	return nil
}

func (fc *FileCache) InvalidateFile(filePath string) {
	if fc.entries.Remove(filePath) {
		logger.Debug("Invalidated cache entry for %s", filePath)
	}
}

func (fc *FileCache) Clear() {
	entriesCount := fc.entries.Len()
	fc.entries.Purge()
	logger.Debug("Cleared file cache, invalidated %d entries", entriesCount)
}

func (fc *FileCache) GetMetrics() *CacheMetrics {
	fc.mutex.Lock()
	defer fc.mutex.Unlock()

	metrics := *fc.metrics
	metrics.TotalEntries = fc.entries.Len()
	metrics.CalculateHitRate()
	return &metrics
}

func (fc *FileCache) LogStats() {
	metrics := fc.GetMetrics()
	logger.Debug("Cache stats: Hits=%d, Misses=%d, Hit Rate=%.1f%%, Total Entries=%d, Invalidations=%d",
		metrics.Hits, metrics.Misses, metrics.HitRate, metrics.TotalEntries, metrics.Invalidations)
}

func (fc *FileCache) isExpired(entry *models.CacheEntry) bool {
	return fc.config.DefaultTTL > 0 && time.Since(entry.CreatedAt) > fc.config.DefaultTTL
}

func (fc *FileCache) incrementHits() {
	fc.mutex.Lock()
	defer fc.mutex.Unlock()
	fc.metrics.Hits++
}

func (fc *FileCache) incrementMisses() {
	fc.mutex.Lock()
	defer fc.mutex.Unlock()
	fc.metrics.Misses++
}
