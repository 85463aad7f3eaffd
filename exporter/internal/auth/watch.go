package auth

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the key file at path into keys whenever it changes, until ctx
// is cancelled. The parent directory is watched so atomic saves (write to a
// temp file, rename over) and a file created after startup are both seen.
//
// A malformed file is logged and the previous set stays active. Removing the
// file swaps in an empty set.
func Watch(ctx context.Context, path string, keys *Keys) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("auth: create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("auth: watch %q: %w", dir, err)
	}
	target := filepath.Clean(path)

	slog.Info("auth: watching key file", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}

			set, err := LoadKeySet(path)
			if err != nil {
				slog.Error("auth: reload failed, keeping previous keys", "path", path, "err", err)
				continue
			}
			keys.Store(set)
			slog.Info("auth: keys reloaded", "path", path, "keys", set.Len())

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("auth: watcher error", "err", err)
		}
	}
}
