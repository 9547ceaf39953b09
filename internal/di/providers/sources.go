package providers

import (
	"github.com/samber/do/v2"

	"github.com/bibleclock/bibleclock-server/internal/config"
	"github.com/bibleclock/bibleclock-server/internal/logger"
	"github.com/bibleclock/bibleclock-server/internal/sources"
	"github.com/bibleclock/bibleclock-server/internal/sources/apibible"
	"github.com/bibleclock/bibleclock-server/internal/sources/bibleapi"
	"github.com/bibleclock/bibleclock-server/internal/sources/esv"
	"github.com/bibleclock/bibleclock-server/internal/sources/gateway"
	"github.com/bibleclock/bibleclock-server/internal/sources/wldeh"
)

// FetcherSet holds every remote verse source the resolver can reach.
// Keyless sources always work; keyed ones report unavailable without
// credentials and the chain moves past them.
type FetcherSet struct {
	Fetchers []sources.Fetcher
}

// ProvideFetchers provides the remote verse sources.
func ProvideFetchers(i do.Injector) (*FetcherSet, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	timeout := cfg.Sources.RequestTimeout

	fetchers := []sources.Fetcher{
		bibleapi.New(bibleapi.Config{
			BaseURL: cfg.Sources.BibleAPIURL,
			Timeout: timeout,
		}, log.Logger),
		wldeh.New(wldeh.Config{
			Timeout: timeout,
		}, log.Logger),
		gateway.NewScraper(gateway.ScraperConfig{
			Timeout: timeout,
		}, log.Logger),
		gateway.NewClient(gateway.ClientConfig{
			Timeout:  timeout,
			Username: cfg.Sources.BibleGatewayUsername,
			Password: cfg.Sources.BibleGatewayPassword,
		}, log.Logger),
		esv.New(esv.Config{
			Timeout: timeout,
			APIKey:  cfg.Sources.ESVAPIKey,
		}, log.Logger),
		apibible.New(apibible.Config{
			Timeout: timeout,
			APIKey:  cfg.Sources.ScriptureAPIKey,
		}, log.Logger),
	}

	log.Info("verse sources initialized",
		"count", len(fetchers),
		"esv_key", cfg.Sources.ESVAPIKey != "",
		"scripture_key", cfg.Sources.ScriptureAPIKey != "",
		"gateway_credentials", cfg.Sources.BibleGatewayUsername != "",
	)

	return &FetcherSet{Fetchers: fetchers}, nil
}
