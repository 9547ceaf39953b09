package providers

import (
	"os"

	"github.com/samber/do/v2"

	"github.com/bibleclock/bibleclock-server/internal/cache"
	"github.com/bibleclock/bibleclock-server/internal/canon"
	"github.com/bibleclock/bibleclock-server/internal/config"
	"github.com/bibleclock/bibleclock-server/internal/errors"
	"github.com/bibleclock/bibleclock-server/internal/logger"
	"github.com/bibleclock/bibleclock-server/internal/resolver"
	"github.com/bibleclock/bibleclock-server/internal/store"
)

// StoreHandle wraps the statistics store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the badger-backed statistics store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	path := cfg.StorePath()
	if err := os.MkdirAll(path, 0o750); err != nil {
		return nil, errors.Wrapf(err, errors.CodeInternal, "create store directory %s", path)
	}

	db, err := store.Open(path, log)
	if err != nil {
		return nil, err
	}

	log.Info("statistics store opened", "path", path)
	return &StoreHandle{Store: db}, nil
}

// CacheSet holds one translation cache per supported translation, keyed by
// translation code.
type CacheSet map[string]*cache.TranslationCache

// ProvideCaches opens the per-translation verse caches. Missing cache files
// start empty and fill as verses are fetched.
func ProvideCaches(i do.Injector) (CacheSet, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	index := do.MustInvoke[*canon.Index](i)

	dir := cfg.TranslationsPath()
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, errors.Wrapf(err, errors.CodeInternal, "create translations directory %s", dir)
	}

	caches := make(CacheSet)
	for _, tr := range resolver.Supported() {
		c, err := cache.Open(dir, tr.Code, index, log)
		if err != nil {
			return nil, err
		}
		caches[tr.Code] = c
	}

	log.Info("translation caches opened", "dir", dir, "translations", len(caches))
	return caches, nil
}
