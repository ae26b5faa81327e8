package offline

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watch evicts cached assets whose source file under dir changes, so edits
// show up without bumping the cache name. urlPrefix is the path dir is
// served under, e.g. "/static". It blocks until ctx is done.
func (w *Worker) Watch(ctx context.Context, dir, urlPrefix string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create asset watcher: %w", err)
	}
	defer watcher.Close()

	// fsnotify does not recurse, so every directory is added on its own
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(p)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	slog.InfoContext(ctx, "watching static assets", "event", "offline_watch_started", "dir", dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Create) {
				continue
			}
			keys, err := assetKeys(dir, urlPrefix, ev.Name)
			if err != nil {
				continue
			}
			for _, key := range keys {
				if err := w.Evict(key); err != nil {
					slog.WarnContext(ctx, "failed to evict asset", "event", "offline_evict_failed", "path", key, "error", err)
					continue
				}
				slog.DebugContext(ctx, "evicted changed asset", "event", "offline_evicted", "path", key)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.WarnContext(ctx, "asset watcher error", "event", "offline_watch_error", "error", err)
		}
	}
}

// assetKeys maps a file below dir to the request paths it is served at.
// Files at the top of dir are also served from the site root.
func assetKeys(dir, urlPrefix, file string) ([]string, error) {
	rel, err := filepath.Rel(dir, file)
	if err != nil {
		return nil, err
	}
	rel = filepath.ToSlash(rel)
	keys := []string{path.Join("/", urlPrefix, rel)}
	if !strings.Contains(rel, "/") {
		keys = append(keys, "/"+rel)
	}
	return keys, nil
}
