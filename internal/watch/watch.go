// Package watch re-runs an action when watched files change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last change before the action runs.
const DefaultDebounce = 200 * time.Millisecond

// Options configures Run.
type Options struct {
	// Files are the files to watch. Their directories are watched so that
	// editors replacing a file by rename are still noticed.
	Files []string

	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Run calls action each time one of the watched files changes, after
// changes settle for the debounce period. Action errors are logged and do
// not stop the watch. Run blocks until ctx is done and returns ctx.Err().
func Run(ctx context.Context, opts Options, action func(context.Context) error) error {
	if len(opts.Files) == 0 {
		return errors.New("watch: no files")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create watcher: %w", err)
	}
	defer watcher.Close()

	files := make(map[string]bool, len(opts.Files))
	dirs := make(map[string]bool)
	for _, f := range opts.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("watch: %w", err)
		}
		files[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch: add %q: %w", dir, err)
		}
		dirs[dir] = true
	}

	timer := time.NewTimer(opts.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return ctx.Err()
			}
			if !relevant(ev) {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil || !files[abs] {
				continue
			}
			logger.Debug("change detected", "file", ev.Name, "op", ev.Op.String())
			timer.Reset(opts.Debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return ctx.Err()
			}
			logger.Warn("watch error", "error", err)
		case <-timer.C:
			if err := action(ctx); err != nil {
				logger.Error("action failed", "error", err)
			}
		}
	}
}

func relevant(ev fsnotify.Event) bool {
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}
