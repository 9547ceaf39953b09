package resolver

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/bibleclock/bibleclock-server/internal/cache"
	"github.com/bibleclock/bibleclock-server/internal/domain"
	"github.com/bibleclock/bibleclock-server/internal/logger"
	"github.com/bibleclock/bibleclock-server/internal/sources"
)

// absoluteFallbackText is displayed when even the fallback collection is
// gone. Jeremiah 29:11.
const absoluteFallbackText = "'For I know the plans I have for you,' declares the LORD, 'plans to prosper you and not to harm you, to give you hope and a future.' - Jeremiah 29:11"

// Result is a resolved verse. Text is never empty.
type Result struct {
	Reference   string
	Book        string
	Chapter     int
	Verse       int
	Text        string
	Translation string // display label, e.g. "AMP" or "AMP (fallback: KJV)"
	Source      sources.Kind
}

// Resolver walks per-translation fallback chains across the local caches
// and the remote sources.
type Resolver struct {
	caches   map[string]*cache.TranslationCache
	fetchers map[sources.Kind]sources.Fetcher
	fallback *FallbackSet
	logger   *logger.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New creates a resolver. caches is keyed by canonical translation code;
// fetchers may omit sources (a missing source is skipped, not an error), so
// a keyless deployment simply has shorter effective chains.
func New(caches map[string]*cache.TranslationCache, fetchers []sources.Fetcher, fallback *FallbackSet, log *logger.Logger) *Resolver {
	byKind := make(map[sources.Kind]sources.Fetcher, len(fetchers))
	for _, f := range fetchers {
		byKind[f.Kind()] = f
	}
	return &Resolver{
		caches:   caches,
		fetchers: byKind,
		fallback: fallback,
		logger:   log,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Resolve returns verse text for the coordinate in the requested
// translation, substituting down the chain when sources fail. It always
// returns a displayable result; when a substitute translation is shown the
// text carries a bracketed notice and the label names both translations.
func (r *Resolver) Resolve(ctx context.Context, book string, chapter, verse int, translation string) Result {
	requested := strings.ToLower(strings.TrimSpace(translation))
	normalized := Normalize(requested)
	if normalized != requested {
		r.logger.Warn("unsupported translation, using KJV", "translation", translation)
	}

	for _, ln := range chainFor(normalized) {
		text, ok := r.lookup(ctx, ln, book, chapter, verse)
		if !ok {
			continue
		}

		if ln.kind != sources.KindCache {
			r.writeBack(ln.code, book, chapter, verse, text)
		}

		r.logger.Info("verse resolved",
			"reference", domain.FormatReference(book, chapter, verse),
			"translation", normalized,
			"source", string(ln.kind),
		)
		return r.labeled(normalized, ln.code, ln.kind, book, chapter, verse, text)
	}

	r.logger.Warn("all sources exhausted",
		"reference", domain.FormatReference(book, chapter, verse),
		"translation", normalized,
	)
	return r.fallbackResult(book, chapter, verse, normalized)
}

// lookup asks one chain link for text. Source errors are logged at debug
// and swallowed; the chain is the error handling.
func (r *Resolver) lookup(ctx context.Context, ln link, book string, chapter, verse int) (string, bool) {
	if ln.kind == sources.KindCache {
		c := r.caches[cacheCode(ln.code)]
		if c == nil {
			return "", false
		}
		return c.Get(book, chapter, verse)
	}

	f := r.fetchers[ln.kind]
	if f == nil {
		return "", false
	}

	text, err := f.Fetch(ctx, book, chapter, verse, ln.code)
	if err != nil {
		r.logger.Debug("source failed",
			"source", string(ln.kind),
			"code", ln.code,
			"error", err.Error(),
		)
		return "", false
	}
	return text, strings.TrimSpace(text) != ""
}

// writeBack stores remotely fetched text in the cache of the translation it
// was fetched as, growing the cache toward full offline coverage.
func (r *Resolver) writeBack(code, book string, chapter, verse int, text string) {
	c := r.caches[cacheCode(code)]
	if c == nil {
		return
	}
	if _, err := c.Put(book, chapter, verse, text); err != nil {
		r.logger.WithError(err).Debug("cache write-back failed",
			"translation", cacheCode(code),
			"reference", domain.FormatReference(book, chapter, verse),
		)
	}
}

// labeled builds the result, prefixing a substitution notice when the
// serving translation differs from the requested one.
func (r *Resolver) labeled(requested, sourceCode string, kind sources.Kind, book string, chapter, verse int, text string) Result {
	res := Result{
		Reference: domain.FormatReference(book, chapter, verse),
		Book:      book,
		Chapter:   chapter,
		Verse:     verse,
		Text:      text,
		Source:    kind,
	}

	if sourceCode != "" && !strings.EqualFold(sourceCode, requested) && !nasbEquivalent(requested, sourceCode) {
		res.Text = "[" + strings.ToUpper(requested) + " unavailable - showing " + strings.ToUpper(sourceCode) + "] " + text
		res.Translation = strings.ToUpper(requested) + " (fallback: " + strings.ToUpper(sourceCode) + ")"
	} else {
		res.Translation = strings.ToUpper(requested)
	}
	return res
}

// fallbackResult serves a verse from the offline collection, or the
// built-in absolute fallback when no collection is loaded.
func (r *Resolver) fallbackResult(book string, chapter, verse int, translation string) Result {
	upper := strings.ToUpper(translation)

	if r.fallback == nil || r.fallback.Len() == 0 {
		return Result{
			Reference:   domain.FormatReference(book, chapter, verse),
			Book:        book,
			Chapter:     chapter,
			Verse:       verse,
			Text:        "[" + upper + " unavailable] " + absoluteFallbackText,
			Translation: upper + " (fallback)",
			Source:      sources.KindFallback,
		}
	}

	r.rngMu.Lock()
	fb := r.fallback.Pick(r.rng)
	r.rngMu.Unlock()

	return Result{
		Reference:   fb.Reference,
		Book:        fb.Book,
		Chapter:     fb.Chapter,
		Verse:       fb.Verse,
		Text:        "[" + upper + " API unavailable] " + fb.Text,
		Translation: upper + " (fallback)",
		Source:      sources.KindFallback,
	}
}

// cacheCode maps a chain source code to the cache registry key.
func cacheCode(code string) string {
	code = strings.ToLower(code)
	if code == "nasb1995" {
		return "nasb"
	}
	return code
}
