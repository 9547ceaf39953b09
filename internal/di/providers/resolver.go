package providers

import (
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/bibleclock/bibleclock-server/internal/cache"
	"github.com/bibleclock/bibleclock-server/internal/config"
	"github.com/bibleclock/bibleclock-server/internal/logger"
	"github.com/bibleclock/bibleclock-server/internal/resolver"
)

// ProvideFallbackSet provides the offline fallback verse collection. A
// missing or malformed document falls back to the built-in verses.
func ProvideFallbackSet(i do.Injector) (*resolver.FallbackSet, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	path := filepath.Join(cfg.Data.BasePath, "fallback_verses.json")
	set, err := resolver.LoadFallbackSet(path)
	if err != nil {
		log.WithError(err).Warn("fallback verses document unavailable, using built-in collection", "path", path)
	} else {
		log.Info("fallback verses loaded", "path", path, "verses", set.Len())
	}
	return set, nil
}

// ProvideResolver provides the verse resolver over the translation caches
// and remote sources.
func ProvideResolver(i do.Injector) (*resolver.Resolver, error) {
	log := do.MustInvoke[*logger.Logger](i)
	caches := do.MustInvoke[CacheSet](i)
	fetchers := do.MustInvoke[*FetcherSet](i)
	fallback := do.MustInvoke[*resolver.FallbackSet](i)

	return resolver.New(map[string]*cache.TranslationCache(caches), fetchers.Fetchers, fallback, log), nil
}
