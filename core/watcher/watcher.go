package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tristendillon/carve/core/cache"
	"github.com/tristendillon/carve/core/logger"
	"github.com/tristendillon/carve/core/models"
	"github.com/tristendillon/carve/core/scanner"
)

// FileWatcherImpl re-runs OnChange after a quiet period following changes to
// source files under the root. Changed files are dropped from the reference
// cache before OnChange runs.
type FileWatcherImpl struct {
	FileWatcher *models.FileWatcher
	Extensions  []string
	cache       *cache.FileCache
}

func NewFileWatcher(rootDir string, excludePaths, extensions []string) (*FileWatcherImpl, error) {
	fw, err := models.NewFileWatcher(rootDir, excludePaths)
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &FileWatcherImpl{
		FileWatcher: fw,
		Extensions:  extensions,
		cache:       cache.GetCache(),
	}, nil
}

// Watch blocks until ctx is done or the underlying watcher fails.
func (fw *FileWatcherImpl) Watch(ctx context.Context) error {
	if err := fw.addWatchersRecursively(fw.FileWatcher.RootDir); err != nil {
		return fmt.Errorf("failed to add watchers: %w", err)
	}

	if err := fw.FileWatcher.OnStart(); err != nil {
		logger.Error("Watcher.OnStart failed: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.FileWatcher.Watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if fw.shouldExcludePath(event.Name) {
				continue
			}
			logger.Debug("File event: %s %s", event.Op, event.Name)

			if event.Has(fsnotify.Create) {
				if stat, err := os.Stat(event.Name); err == nil && stat.IsDir() {
					logger.Debug("Adding watcher for new directory: %s", event.Name)
					if err := fw.addWatchersRecursively(event.Name); err != nil {
						logger.Warn("Failed to watch %s: %v", event.Name, err)
					}
					continue
				}
			}
			if !scanner.HasExtension(event.Name, fw.Extensions) {
				continue
			}

			fw.cache.InvalidateFile(event.Name)
			fw.debounceChange(event.Name)

		case err, ok := <-fw.FileWatcher.Watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			logger.Error("Watcher error: %v", err)
		}
	}
}

func (fw *FileWatcherImpl) debounceChange(path string) {
	fw.FileWatcher.Mutex.Lock()
	defer fw.FileWatcher.Mutex.Unlock()

	fw.FileWatcher.MarkChanged(path)
	if fw.FileWatcher.DebounceTimer != nil {
		fw.FileWatcher.DebounceTimer.Stop()
	}

	fw.FileWatcher.DebounceTimer = time.AfterFunc(fw.FileWatcher.Debounce, func() {
		fw.FileWatcher.Mutex.Lock()
		changed := fw.FileWatcher.TakeChanged()
		fw.FileWatcher.Mutex.Unlock()
		if len(changed) == 0 {
			return
		}

		logger.Debug("%d file(s) changed, re-running", len(changed))
		if err := fw.FileWatcher.OnChange(changed); err != nil {
			logger.Error("Watcher.OnChange failed: %v", err)
		}
	})
}

func (fw *FileWatcherImpl) Close() error {
	fw.FileWatcher.Mutex.Lock()
	defer fw.FileWatcher.Mutex.Unlock()

	if fw.FileWatcher.DebounceTimer != nil {
		fw.FileWatcher.DebounceTimer.Stop()
	}

	if err := fw.FileWatcher.OnClose(); err != nil {
		logger.Error("Watcher.OnClose failed: %v", err)
	}

	return fw.FileWatcher.Watcher.Close()
}

func (fw *FileWatcherImpl) shouldExcludePath(path string) bool {
	relPath, err := filepath.Rel(fw.FileWatcher.RootDir, path)
	if err != nil {
		return false
	}
	relPath = filepath.Clean(relPath)

	for _, excludePath := range fw.FileWatcher.ExcludePaths {
		excludePath = filepath.Clean(excludePath)
		if relPath == excludePath || strings.HasPrefix(relPath, excludePath+string(filepath.Separator)) {
			return true
		}
		// bare directory names match at any depth
		if !strings.ContainsRune(excludePath, filepath.Separator) &&
			strings.Contains(string(filepath.Separator)+relPath+string(filepath.Separator), string(filepath.Separator)+excludePath+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (fw *FileWatcherImpl) addWatchersRecursively(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != fw.FileWatcher.RootDir && fw.shouldExcludePath(path) {
			logger.Debug("Excluding directory: %s", path)
			return filepath.SkipDir
		}

		logger.Debug("Adding watcher for: %s", path)
		if err := fw.FileWatcher.Watcher.Add(path); err != nil {
			return fmt.Errorf("failed to add watcher for %s: %w", path, err)
		}
		return nil
	})
}
