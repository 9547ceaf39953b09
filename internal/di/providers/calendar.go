package providers

import (
	"context"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/bibleclock/bibleclock-server/internal/calendar"
	"github.com/bibleclock/bibleclock-server/internal/config"
	"github.com/bibleclock/bibleclock-server/internal/logger"
	"github.com/bibleclock/bibleclock-server/internal/validation"
	"github.com/bibleclock/bibleclock-server/internal/watcher"
)

// ProvideCalendarSelector provides the date event selector. Without a
// calendar document date mode serves fallback blessings, so a missing file
// only warns.
func ProvideCalendarSelector(i do.Injector) (*calendar.Selector, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	v := do.MustInvoke[*validation.Validator](i)

	path := filepath.Join(cfg.Data.BasePath, "biblical_events_calendar.json")
	selector, err := calendar.NewSelector(path, v, log)
	if err != nil {
		log.WithError(err).Warn("events calendar unavailable, date mode will use fallback verses", "path", path)
		return calendar.NewSelectorFromDocument(&calendar.Document{}, log), nil
	}
	return selector, nil
}

// CalendarWatcherHandle wraps the calendar watcher with shutdown capability.
// The watcher is nil when no calendar document exists.
type CalendarWatcherHandle struct {
	*watcher.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *CalendarWatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	h.cancel()
	return h.Stop()
}

// ProvideCalendarWatcher provides the hot-reload watcher over the calendar
// document.
func ProvideCalendarWatcher(i do.Injector) (*CalendarWatcherHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)
	selector := do.MustInvoke[*calendar.Selector](i)

	// An in-memory selector has no document to watch.
	if selector.Path() == "" {
		return &CalendarWatcherHandle{}, nil
	}

	w, err := watcher.New(selector, log)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := w.Start(ctx); err != nil && ctx.Err() == nil {
			log.WithError(err).Error("calendar watcher stopped")
		}
	}()

	return &CalendarWatcherHandle{Watcher: w, cancel: cancel}, nil
}
