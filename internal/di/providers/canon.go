package providers

import (
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/bibleclock/bibleclock-server/internal/canon"
	"github.com/bibleclock/bibleclock-server/internal/config"
	"github.com/bibleclock/bibleclock-server/internal/logger"
)

// ProvideIndex provides the canonical structure index. The structure
// document ships with the deployment; a missing or malformed one is fatal.
func ProvideIndex(i do.Injector) (*canon.Index, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	path := filepath.Join(cfg.Data.BasePath, "bible_structure.json")
	index, err := canon.LoadIndex(path)
	if err != nil {
		return nil, err
	}

	log.Info("structure index loaded",
		"path", path,
		"books", index.BookCount(),
		"total_verses", index.TotalVerses(),
	)
	return index, nil
}

// ProvideSummaries provides the per-book summary texts. A missing document
// is tolerated; summaries are then synthesized per book.
func ProvideSummaries(i do.Injector) (*canon.Summaries, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	path := filepath.Join(cfg.Data.BasePath, "book_summaries.json")
	summaries, err := canon.LoadSummaries(path)
	if err != nil {
		log.WithError(err).Warn("book summaries unavailable, synthesizing per book", "path", path)
		return canon.NewSummaries(nil), nil
	}

	log.Info("book summaries loaded", "path", path, "books", summaries.Len())
	return summaries, nil
}
