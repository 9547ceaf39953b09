// Package publisher writes the current verse record to disk once a minute
// so the rendering side always finds a complete document.
package publisher

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/bibleclock/bibleclock-server/internal/domain"
	"github.com/bibleclock/bibleclock-server/internal/errors"
	"github.com/bibleclock/bibleclock-server/internal/logger"
)

// VerseSource produces the record for the current moment.
type VerseSource interface {
	CurrentVerse(ctx context.Context) (*domain.VerseRecord, error)
}

// Publisher resolves a verse on every minute boundary and atomically
// rewrites the output document.
type Publisher struct {
	source VerseSource
	path   string
	logger *logger.Logger
	now    func() time.Time
}

// New creates a publisher writing to path.
func New(source VerseSource, path string, log *logger.Logger) *Publisher {
	return &Publisher{source: source, path: path, logger: log, now: time.Now}
}

// Path returns the output document path.
func (p *Publisher) Path() string {
	return p.path
}

// Run publishes immediately, then on every minute boundary until the
// context is cancelled. Blocks; run it in its own goroutine.
func (p *Publisher) Run(ctx context.Context) error {
	if err := p.Publish(ctx); err != nil {
		p.logger.WithError(err).Warn("initial verse publish failed")
	}

	for {
		// Fire on the boundary, not a fixed interval, so the displayed
		// verse matches the wall clock.
		wait := time.Until(p.now().Truncate(time.Minute).Add(time.Minute))
		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			if err := p.Publish(ctx); err != nil {
				p.logger.WithError(err).Warn("verse publish failed")
			}
		}
	}
}

// Publish resolves the current verse and atomically rewrites the output
// document. Readers never observe a partially written file.
func (p *Publisher) Publish(ctx context.Context) error {
	rec, err := p.source.CurrentVerse(ctx)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "marshal verse record")
	}

	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil { //#nosec G306 -- document is read by the display process
		return errors.Wrapf(err, errors.CodeInternal, "write %s", tmp)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		return errors.Wrapf(err, errors.CodeInternal, "replace %s", p.path)
	}

	p.logger.Debug("verse published",
		"reference", rec.Reference,
		"kind", rec.Kind,
		"source", rec.Source,
	)
	return nil
}
