package models

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tristendillon/carve/core/logger"
)

var defaultWatchExcludes = []string{".git", "node_modules", "dist", ".angular"}

type FileWatcher struct {
	Watcher       *fsnotify.Watcher
	RootDir       string
	ExcludePaths  []string
	DebounceTimer *time.Timer
	Debounce      time.Duration
	Mutex         sync.Mutex
	OnStart       func() error
	OnChange      func(changed []string) error
	OnClose       func() error

	pending []string
}

func NewFileWatcher(rootDir string, excludePaths []string) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	fw := &FileWatcher{
		Watcher:      watcher,
		RootDir:      rootDir,
		Debounce:     500 * time.Millisecond,
		OnStart:      func() error { return nil },
		OnChange:     func([]string) error { return fmt.Errorf("OnChange not set") },
		OnClose:      func() error { return nil },
		ExcludePaths: excludePaths,
	}

	for _, p := range defaultWatchExcludes {
		if !slices.Contains(fw.ExcludePaths, p) {
			fw.ExcludePaths = append(fw.ExcludePaths, p)
		}
	}
	logger.Debug("Excluding paths: %v", fw.ExcludePaths)

	return fw, nil
}

func (fw *FileWatcher) AddOnStartFunc(onStart func() error) {
	fw.OnStart = onStart
}

func (fw *FileWatcher) AddOnChangeFunc(onChange func(changed []string) error) {
	fw.OnChange = onChange
}

func (fw *FileWatcher) AddOnCloseFunc(onClose func() error) {
	fw.OnClose = onClose
}

// MarkChanged queues path for the next OnChange call. Callers hold Mutex.
func (fw *FileWatcher) MarkChanged(path string) {
	if !slices.Contains(fw.pending, path) {
		fw.pending = append(fw.pending, path)
	}
}

// TakeChanged drains the queued paths. Callers hold Mutex.
func (fw *FileWatcher) TakeChanged() []string {
	out := fw.pending
	fw.pending = nil
	return out
}
