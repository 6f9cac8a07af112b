package session

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
)

// Watch reloads m whenever its session file changes on disk, so a logout
// in another process invalidates this one. It blocks until ctx is done.
// The directory is watched because saves replace the file by rename.
func Watch(ctx context.Context, m *Manager, log logr.Logger) error {
	path := m.store.Path()
	dir := filepath.Dir(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create session watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	name := filepath.Base(path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			log.V(1).Info("session file changed", "op", ev.Op.String())
			m.Reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error(err, "session watcher")
		}
	}
}
