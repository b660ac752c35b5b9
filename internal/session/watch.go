package session

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long Watch waits after the last change before rebuilding.
const DefaultDebounce = 500 * time.Millisecond

// ReloadFunc receives the outcome of every rebuild triggered by Watch.
type ReloadFunc func(summary *Summary, err error)

// Watch rebuilds the index from paths whenever one of them changes, until ctx
// is cancelled. Parent directories are watched so editors that replace files
// on save are still seen. A failed rebuild keeps the previous index.
func (s *Session) Watch(ctx context.Context, paths []string, debounce time.Duration, logger *zap.Logger, onReload ReloadFunc) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	targets := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", p, err)
		}
		targets[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	logger.Debug("watching documents", zap.Strings("paths", paths), zap.Int("dirs", len(dirs)))

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !targets[filepath.Clean(ev.Name)] {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove) {
				logger.Debug("document changed", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
				timer.Reset(debounce)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))

		case <-timer.C:
			summary, err := s.Process(ctx, paths)
			if err != nil {
				logger.Warn("rebuild failed, keeping previous index", zap.Error(err))
			} else {
				logger.Info("index rebuilt",
					zap.Int("segments", summary.Segments),
					zap.Duration("took", summary.Duration))
			}
			if onReload != nil {
				onReload(summary, err)
			}
		}
	}
}
