package catalog

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reloads the catalog whenever the file at path is written or
// replaced, until ctx is cancelled. A file that fails to parse leaves the
// current content in place.
func (c *Catalog) Watch(ctx context.Context, path string, logger *zap.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// editors usually write a temp file and rename it over the original,
	// so the directory is watched rather than the file
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return err
	}

	target := filepath.Clean(path)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				c.reload(path, logger)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("catalog watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}

func (c *Catalog) reload(path string, logger *zap.Logger) {
	next, err := LoadFile(path)
	if err != nil {
		logger.Warn("catalog reload failed", zap.String("path", path), zap.Error(err))
		return
	}
	c.Replace(next)
	logger.Info("catalog reloaded", zap.String("path", path), zap.Int("users", len(next.Users())))
}
