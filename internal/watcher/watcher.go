// Package watcher reports debounced changes to individual files.
package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/chazu/collide/internal/logging"
	"github.com/fsnotify/fsnotify"
)

// FileWatcher watches files for changes and triggers callbacks.
//
// The parent directory of each file is watched rather than the file, so
// editors that save by renaming a temporary file over the original are
// still seen.
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	mu        sync.Mutex
	callbacks map[string]func(string)
	dirs      map[string]int
	debounce  time.Duration
	debounced map[string]func(func())
	done      chan struct{}
	closeOnce sync.Once
}

// NewFileWatcher creates a new file watcher.
func NewFileWatcher(delay time.Duration) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &FileWatcher{
		watcher:   w,
		callbacks: make(map[string]func(string)),
		dirs:      make(map[string]int),
		debounce:  delay,
		debounced: make(map[string]func(func())),
		done:      make(chan struct{}),
	}, nil
}

// Watch registers files; callback is called with the absolute path of a
// file after it changes and stays quiet for the debounce interval.
func (fw *FileWatcher) Watch(files []string, callback func(string)) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	for _, file := range files {
		absPath, err := filepath.Abs(file)
		if err != nil {
			return fmt.Errorf("failed to resolve path %s: %w", file, err)
		}

		dir := filepath.Dir(absPath)
		if fw.dirs[dir] == 0 {
			if err := fw.watcher.Add(dir); err != nil {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
		}
		if _, seen := fw.callbacks[absPath]; !seen {
			fw.dirs[dir]++
		}
		fw.callbacks[absPath] = callback
	}

	return nil
}

// Start begins watching for file changes.
func (fw *FileWatcher) Start() {
	go func() {
		for {
			select {
			case event, ok := <-fw.watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
					fw.handleFileChange(filepath.Clean(event.Name))
				}

			case err, ok := <-fw.watcher.Errors:
				if !ok {
					return
				}
				logging.Warn("watcher error", "err", err)

			case <-fw.done:
				return
			}
		}
	}()
}

// handleFileChange handles a file change event with debouncing.
func (fw *FileWatcher) handleFileChange(filePath string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	callback, exists := fw.callbacks[filePath]
	if !exists {
		return
	}

	debounced, exists := fw.debounced[filePath]
	if !exists {
		debounced = debounce.New(fw.debounce)
		fw.debounced[filePath] = debounced
	}
	debounced(func() {
		select {
		case <-fw.done:
			return
		default:
		}
		callback(filePath)
	})
}

// Close stops the watcher and any pending callbacks.
func (fw *FileWatcher) Close() error {
	var err error
	fw.closeOnce.Do(func() {
		close(fw.done)
		err = fw.watcher.Close()
	})
	return err
}

// RemoveAll removes all watched files.
func (fw *FileWatcher) RemoveAll() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	for dir := range fw.dirs {
		if err := fw.watcher.Remove(dir); err != nil {
			return err
		}
	}
	fw.callbacks = make(map[string]func(string))
	fw.dirs = make(map[string]int)
	fw.debounced = make(map[string]func(func()))
	return nil
}
