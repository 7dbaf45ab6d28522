package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/LegacyCodeHQ/quire/internal/buildlog"
	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 300 * time.Millisecond

// rebuildFunc runs one rebuild and returns the files to watch next. A nil
// result keeps the current set.
type rebuildFunc func(ctx context.Context) []string

// dirWatcher is the part of fsnotify.Watcher the watch set drives.
type dirWatcher interface {
	Add(name string) error
	Remove(name string) error
}

// watchSet is the set of watched files and the directories holding them.
// fsnotify watches directories so editors that replace files on save are
// still seen.
type watchSet struct {
	files map[string]bool
	dirs  map[string]bool
}

func newWatchSet() *watchSet {
	return &watchSet{files: map[string]bool{}, dirs: map[string]bool{}}
}

// update replaces the watched files, adding and removing directories as
// needed. Directories that cannot be watched are skipped.
func (s *watchSet) update(ctx context.Context, w dirWatcher, files []string) {
	logger := buildlog.FromContext(ctx)

	nextFiles := make(map[string]bool, len(files))
	nextDirs := make(map[string]bool)
	for _, file := range files {
		nextFiles[file] = true
		nextDirs[filepath.Dir(file)] = true
	}

	for dir := range s.dirs {
		if !nextDirs[dir] {
			_ = w.Remove(dir)
			delete(s.dirs, dir)
		}
	}
	for dir := range nextDirs {
		if s.dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			logger.Debug("skipping directory", "dir", dir, "error", err)
			continue
		}
		s.dirs[dir] = true
	}
	s.files = nextFiles
}

func (s *watchSet) isRelevantChange(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	return s.files[filepath.Clean(event.Name)]
}

func watchAndRebuild(ctx context.Context, files []string, debounce time.Duration, rebuild rebuildFunc) error {
	logger := buildlog.FromContext(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	set := newWatchSet()
	set.update(ctx, watcher, files)

	trigger := make(chan struct{}, 1)
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !set.isRelevantChange(event) {
				continue
			}
			logger.Debug("change detected", "file", event.Name, "op", event.Op.String())

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounce, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)

		case <-trigger:
			if next := rebuild(ctx); next != nil {
				set.update(ctx, watcher, next)
			}
		}
	}
}
