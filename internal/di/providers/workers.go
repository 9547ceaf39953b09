package providers

import (
	"context"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/bibleclock/bibleclock-server/internal/config"
	"github.com/bibleclock/bibleclock-server/internal/logger"
	"github.com/bibleclock/bibleclock-server/internal/publisher"
	"github.com/bibleclock/bibleclock-server/internal/service"
)

// PublisherHandle wraps the verse publisher with shutdown capability.
type PublisherHandle struct {
	*publisher.Publisher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *PublisherHandle) Shutdown() error {
	h.cancel()
	return nil
}

// ProvidePublisher provides the minute-tick verse publisher, already
// running.
func ProvidePublisher(i do.Injector) (*PublisherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	svc := do.MustInvoke[*service.VerseResolutionService](i)

	path := filepath.Join(cfg.Data.BasePath, "current_verse.json")
	pub := publisher.New(svc, path, log)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := pub.Run(ctx); err != nil && ctx.Err() == nil {
			log.WithError(err).Error("verse publisher stopped")
		}
	}()

	log.Info("verse publisher started", "path", path)
	return &PublisherHandle{Publisher: pub, cancel: cancel}, nil
}
