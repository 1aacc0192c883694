// Package watch observes a drop folder for freshly written FITS frames so
// uploads can be assembled from an acquisition directory as files land.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// fitsExtensions are the suffixes treated as FITS frames, matched
// case-insensitively.
var fitsExtensions = []string{".fits", ".fit", ".fts"}

// IsFITS reports whether path looks like a FITS file by extension.
func IsFITS(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, known := range fitsExtensions {
		if ext == known {
			return true
		}
	}
	return false
}

// Existing walks dir and returns the FITS files already present, sorted by
// modification time so older frames come first.
func Existing(dir string) ([]string, error) {
	type entry struct {
		path  string
		mtime time.Time
	}
	var found []entry
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if d.IsDir() || !IsFITS(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		found = append(found, entry{path: path, mtime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := 1; i < len(found); i++ {
		for j := i; j > 0 && found[j].mtime.Before(found[j-1].mtime); j-- {
			found[j], found[j-1] = found[j-1], found[j]
		}
	}
	paths := make([]string, len(found))
	for i, e := range found {
		paths[i] = e.path
	}
	return paths, nil
}

// Watch starts a recursive fsnotify watcher on dir and calls onFile for each
// FITS file written or created until ctx is cancelled. A file is reported at
// most once per Watch call even when the writer emits several Write events.
func Watch(ctx context.Context, dir string, onFile func(path string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Walk the directory tree and add a watcher for every subdirectory.
	if err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	}); err != nil {
		return err
	}

	seen := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if IsFITS(event.Name) && !seen[event.Name] {
					seen[event.Name] = true
					onFile(event.Name)
				}

				// If a new directory was created, watch it too.
				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						_ = watcher.Add(event.Name)
					}
				}
			}

		case _, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			// Watcher errors are non-fatal; continue watching.
		}
	}
}
