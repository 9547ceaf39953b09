// Package watcher reloads the events calendar when its document changes on
// disk, so calendar edits take effect without a restart.
package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bibleclock/bibleclock-server/internal/errors"
	"github.com/bibleclock/bibleclock-server/internal/logger"
)

// debounceWindow absorbs the burst of write events an editor emits while
// saving, so one save triggers one reload.
const debounceWindow = 500 * time.Millisecond

// Reloader is what the watcher drives; the calendar selector implements it.
type Reloader interface {
	Path() string
	Reload() error
}

// Watcher watches one document and triggers reloads. It watches the parent
// directory rather than the file itself: editors that replace-on-save break
// a direct file watch.
type Watcher struct {
	target  Reloader
	watcher *fsnotify.Watcher
	logger  *logger.Logger

	mu    sync.Mutex
	timer *time.Timer
}

// New creates a watcher for the reloader's document.
func New(target Reloader, log *logger.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "create fsnotify watcher")
	}

	dir := filepath.Dir(target.Path())
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, errors.Wrapf(err, errors.CodeInternal, "watch directory %s", dir)
	}

	log.Info("watching calendar document", "path", target.Path())
	return &Watcher{target: target, watcher: fsw, logger: log}, nil
}

// Start consumes events until the context is cancelled. Blocks; run it in
// its own goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	defer w.cancelPending()

	watched := filepath.Clean(w.target.Path())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != watched {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.WithError(err).Warn("calendar watch error")
		}
	}
}

// Stop releases the underlying watcher.
func (w *Watcher) Stop() error {
	w.cancelPending()
	return w.watcher.Close()
}

// scheduleReload (re)arms the debounce timer.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(debounceWindow, func() {
		if err := w.target.Reload(); err != nil {
			w.logger.WithError(err).Warn("calendar reload after change failed")
		}
	})
}

func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}
