package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jbodctl/jbodctl/internal/util"
)

// Watch reloads path on every write or create event, debounced by debounce,
// pushing the newly parsed PlanOptions on the returned channel. Ported
// from the teacher's config-reload pattern (cobra.OnInitialize +
// viper.ReadInConfig on SIGHUP), adapted to fsnotify since the web
// verb has no terminal to signal. The channel is closed when ctx is
// canceled.
func Watch(ctx context.Context, path string, debounce time.Duration) (<-chan PlanOptions, error) {
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	out := make(chan PlanOptions)

	go func() {
		defer close(out)
		defer watcher.Close()

		var timer *time.Timer
		reload := func() {
			opts, err := Load(path)
			if err != nil {
				util.WarnLog("plan options reload failed: %v (keeping previous options)", err)
				return
			}
			select {
			case out <- opts:
			case <-ctx.Done():
			}
		}

		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				util.WarnLog("plan options watcher error: %v", err)

			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(path) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounce, reload)
			}
		}
	}()

	return out, nil
}
