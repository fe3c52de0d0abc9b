package bend

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchSettings reloads the settings file at path whenever it is written or
// replaced and passes the new settings to fn. Files that fail to load or
// validate are logged and skipped, keeping whatever fn last received.
//
// WatchSettings blocks until ctx is done and then returns ctx.Err(). The
// directory of path is watched rather than the file itself, so editors that
// save by renaming a temporary file are picked up too.
func WatchSettings(ctx context.Context, path string, fn func(Settings)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watching settings %s: %w", path, err)
	}
	defer watcher.Close()

	name := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(name)); err != nil {
		return fmt.Errorf("watching settings %s: %w", path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			st, err := LoadSettings(name)
			if err != nil {
				Logger().Warn("ignoring settings update", "path", name, "err", err)
				continue
			}
			Logger().Debug("reloaded settings", "path", name)
			fn(st)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			Logger().Warn("settings watcher error", "path", name, "err", err)
		}
	}
}
