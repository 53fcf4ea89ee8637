package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const watchDebounce = 200 * time.Millisecond

// Watch calls onChange with the freshly loaded catalog whenever the file at
// path is written or replaced. It blocks until ctx is done. The parent
// directory is watched because editors usually save by rename.
func Watch(ctx context.Context, path string, log *zap.Logger, onChange func(context.Context, Catalog) error) error {
	if log == nil {
		log = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			pending = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("catalog watcher error", zap.Error(err))
		case <-pending:
			pending = nil
			c, err := Load(abs)
			if err != nil {
				log.Warn("catalog reload failed", zap.String("path", abs), zap.Error(err))
				continue
			}
			if err := onChange(ctx, c); err != nil {
				log.Warn("catalog apply failed", zap.String("path", abs), zap.Error(err))
				continue
			}
			log.Info("catalog reloaded", zap.String("path", abs), zap.Int("patterns", len(c.Patterns)))
		}
	}
}
