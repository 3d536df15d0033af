package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups bursts of file events (an editor saving, a copy
// in progress) into one reload.
const DefaultDebounce = 200 * time.Millisecond

// Watch reloads the catalog whenever an image file in its directory is
// created, written, removed or renamed. It blocks until ctx is done.
func (c *Catalog) Watch(ctx context.Context, debounce time.Duration) error {
	if c.dir == "" {
		<-ctx.Done()
		return nil
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch catalog: %w", err)
	}
	defer w.Close()
	if err := w.Add(c.dir); err != nil {
		return fmt.Errorf("watch catalog %s: %w", c.dir, err)
	}

	var (
		timer  *time.Timer
		timerC <-chan time.Time
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

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !Decodable(filepath.Base(event.Name)) || event.Op == fsnotify.Chmod {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			} else {
				timer.Reset(debounce)
			}

		case <-timerC:
			timer, timerC = nil, nil
			if err := c.Reload(); err != nil {
				c.logger.Warn("catalog reload failed", "error", err)
				continue
			}
			c.logger.Info("catalog reloaded", "images", len(c.Names()))

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.logger.Warn("catalog watcher error", "error", err)
		}
	}
}
