package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the burst of events editors emit per save.
const watchDebounce = 200 * time.Millisecond

// Watch regenerates the bindings whenever one of the input files changes.
// Each change triggers a full run of the pipeline; a failing run is
// reported and watching continues.
func (c *Controller) Watch(ctx context.Context, flags GenerateFlags, files []string) error {
	if len(files) == 0 {
		return fmt.Errorf("no input files")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// watch the containing directories; watching the files directly
	// breaks with editors that replace them on save
	watched := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, path := range files {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", path, err)
		}
		watched[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	run := func() {
		if err := c.Generate(ctx, flags, files); err != nil {
			c.Logger.Error().Err(err).Msg("generation failed")
			return
		}
		c.Logger.Info().Msg("bindings regenerated")
	}
	run()

	var timer *time.Timer
	pending := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher channel closed")
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !watched[abs] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			c.Logger.Debug().Str("path", event.Name).Str("op", event.Op.String()).
				Msg("input changed")
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case <-pending:
			run()
		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			c.Logger.Error().Err(err).Msg("watcher error")
		}
	}
}
