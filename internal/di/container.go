// Package di provides dependency injection configuration for the verse
// clock server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/bibleclock/bibleclock-server/internal/calendar"
	"github.com/bibleclock/bibleclock-server/internal/canon"
	"github.com/bibleclock/bibleclock-server/internal/config"
	"github.com/bibleclock/bibleclock-server/internal/di/providers"
	"github.com/bibleclock/bibleclock-server/internal/logger"
	"github.com/bibleclock/bibleclock-server/internal/resolver"
	"github.com/bibleclock/bibleclock-server/internal/service"
	"github.com/bibleclock/bibleclock-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Canonical data
	do.Provide(injector, providers.ProvideIndex)
	do.Provide(injector, providers.ProvideSummaries)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideCaches)

	// Verse sources and resolution
	do.Provide(injector, providers.ProvideFetchers)
	do.Provide(injector, providers.ProvideFallbackSet)
	do.Provide(injector, providers.ProvideResolver)

	// Calendar
	do.Provide(injector, providers.ProvideCalendarSelector)
	do.Provide(injector, providers.ProvideCalendarWatcher)

	// Service
	do.Provide(injector, providers.ProvideVerseService)

	// Workers
	do.Provide(injector, providers.ProvidePublisher)

	return injector
}

// Bootstrap initializes all services and returns nil once every provider
// has been invoked. This triggers lazy initialization of the whole graph.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*canon.Index](injector)
	_ = do.MustInvoke[*canon.Summaries](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[providers.CacheSet](injector)
	_ = do.MustInvoke[*providers.FetcherSet](injector)
	_ = do.MustInvoke[*resolver.FallbackSet](injector)
	_ = do.MustInvoke[*resolver.Resolver](injector)
	_ = do.MustInvoke[*calendar.Selector](injector)
	_ = do.MustInvoke[*providers.CalendarWatcherHandle](injector)
	_ = do.MustInvoke[*service.VerseResolutionService](injector)
	_ = do.MustInvoke[*providers.PublisherHandle](injector)

	return nil
}
