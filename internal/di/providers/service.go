package providers

import (
	"github.com/samber/do/v2"

	"github.com/bibleclock/bibleclock-server/internal/calendar"
	"github.com/bibleclock/bibleclock-server/internal/canon"
	"github.com/bibleclock/bibleclock-server/internal/config"
	"github.com/bibleclock/bibleclock-server/internal/logger"
	"github.com/bibleclock/bibleclock-server/internal/resolver"
	"github.com/bibleclock/bibleclock-server/internal/service"
)

// ProvideVerseService provides the verse resolution service.
func ProvideVerseService(i do.Injector) (*service.VerseResolutionService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	index := do.MustInvoke[*canon.Index](i)
	summaries := do.MustInvoke[*canon.Summaries](i)
	res := do.MustInvoke[*resolver.Resolver](i)
	cal := do.MustInvoke[*calendar.Selector](i)
	fallback := do.MustInvoke[*resolver.FallbackSet](i)
	stats := do.MustInvoke[*StoreHandle](i)

	svc := service.New(service.Config{
		Mode:                 cfg.Display.Mode,
		TimeFormat:           cfg.Display.TimeFormat,
		Translation:          cfg.Display.Translation,
		Parallel:             cfg.Display.Parallel,
		SecondaryTranslation: cfg.Display.SecondaryTranslation,
	}, index, summaries, res, cal, fallback, stats.Store, log)

	log.Info("verse resolution service ready",
		"mode", cfg.Display.Mode,
		"time_format", cfg.Display.TimeFormat,
		"translation", cfg.Display.Translation,
		"parallel", cfg.Display.Parallel,
	)

	return svc, nil
}
