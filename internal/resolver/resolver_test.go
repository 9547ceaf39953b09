package resolver

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibleclock/bibleclock-server/internal/cache"
	"github.com/bibleclock/bibleclock-server/internal/canon"
	"github.com/bibleclock/bibleclock-server/internal/errors"
	"github.com/bibleclock/bibleclock-server/internal/logger"
	"github.com/bibleclock/bibleclock-server/internal/sources"
)

type stubFetcher struct {
	kind sources.Kind
	fn   func(book string, chapter, verse int, code string) (string, error)
}

func (s *stubFetcher) Kind() sources.Kind {
	return s.kind
}

func (s *stubFetcher) Fetch(_ context.Context, book string, chapter, verse int, code string) (string, error) {
	return s.fn(book, chapter, verse, code)
}

func failing(kind sources.Kind) *stubFetcher {
	return &stubFetcher{kind: kind, fn: func(string, int, int, string) (string, error) {
		return "", errors.Unavailable("stub failure")
	}}
}

func serving(kind sources.Kind, text string) *stubFetcher {
	return &stubFetcher{kind: kind, fn: func(string, int, int, string) (string, error) {
		return text, nil
	}}
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Writer: io.Discard, Format: "json"})
}

func testIndex() *canon.Index {
	return canon.NewIndex(map[string]map[int]int{
		"John":   {3: 36},
		"Psalms": {23: 6},
	})
}

func openCache(t *testing.T, translation string) *cache.TranslationCache {
	t.Helper()
	c, err := cache.Open(t.TempDir(), translation, testIndex(), testLogger())
	require.NoError(t, err)
	return c
}

func TestResolveCacheHitVerbatim(t *testing.T) {
	kjv := openCache(t, "kjv")
	_, err := kjv.Put("John", 3, 16, "For God so loved the world...")
	require.NoError(t, err)

	// Any remote call would prove the cache was skipped.
	exploding := &stubFetcher{kind: sources.KindBibleAPI, fn: func(string, int, int, string) (string, error) {
		t.Fatal("remote source consulted despite cache hit")
		return "", nil
	}}

	r := New(map[string]*cache.TranslationCache{"kjv": kjv},
		[]sources.Fetcher{exploding}, NewFallbackSet(nil), testLogger())

	res := r.Resolve(context.Background(), "John", 3, 16, "kjv")

	assert.Equal(t, "For God so loved the world...", res.Text)
	assert.Equal(t, "KJV", res.Translation)
	assert.Equal(t, "John 03:16", res.Reference)
	assert.Equal(t, sources.KindCache, res.Source)
}

func TestResolveFetchesAndWritesBack(t *testing.T) {
	kjv := openCache(t, "kjv")

	r := New(map[string]*cache.TranslationCache{"kjv": kjv},
		[]sources.Fetcher{serving(sources.KindBibleAPI, "remote verse text")},
		NewFallbackSet(nil), testLogger())

	res := r.Resolve(context.Background(), "John", 3, 16, "kjv")

	assert.Equal(t, "remote verse text", res.Text)
	assert.Equal(t, "KJV", res.Translation)
	assert.Equal(t, sources.KindBibleAPI, res.Source)

	// The fetched verse is now cached.
	cached, ok := kjv.Get("John", 3, 16)
	require.True(t, ok)
	assert.Equal(t, "remote verse text", cached)
}

func TestResolveSubstitutionNotice(t *testing.T) {
	r := New(map[string]*cache.TranslationCache{},
		[]sources.Fetcher{
			failing(sources.KindGateway),
			failing(sources.KindAPIBible),
			failing(sources.KindGatewayAPI),
			serving(sources.KindBibleAPI, "kjv rendering of the verse"),
		},
		NewFallbackSet(nil), testLogger())

	res := r.Resolve(context.Background(), "John", 3, 16, "amp")

	assert.Equal(t, "[AMP unavailable - showing KJV] kjv rendering of the verse", res.Text)
	assert.Equal(t, "AMP (fallback: KJV)", res.Translation)
	assert.Equal(t, sources.KindBibleAPI, res.Source)
}

func TestResolveNASBEditionIsNotAFallback(t *testing.T) {
	r := New(map[string]*cache.TranslationCache{},
		[]sources.Fetcher{serving(sources.KindGateway, "nasb 1995 text")},
		NewFallbackSet(nil), testLogger())

	res := r.Resolve(context.Background(), "John", 3, 16, "nasb")

	assert.Equal(t, "nasb 1995 text", res.Text, "no bracketed notice for the same edition")
	assert.Equal(t, "NASB", res.Translation)
}

func TestResolveExhaustionUsesFallbackCollection(t *testing.T) {
	set := NewFallbackSet([]FallbackVerse{{
		Reference: "Psalm 23:1",
		Text:      "The LORD is my shepherd; I shall not want.",
		Book:      "Psalms", Chapter: 23, Verse: 1,
	}})

	r := New(map[string]*cache.TranslationCache{}, nil, set, testLogger())

	res := r.Resolve(context.Background(), "John", 3, 16, "amp")

	assert.Equal(t, "[AMP API unavailable] The LORD is my shepherd; I shall not want.", res.Text)
	assert.Equal(t, "AMP (fallback)", res.Translation)
	assert.Equal(t, "Psalm 23:1", res.Reference)
	assert.Equal(t, sources.KindFallback, res.Source)
}

func TestResolveAbsoluteFallback(t *testing.T) {
	r := New(map[string]*cache.TranslationCache{}, nil, nil, testLogger())

	res := r.Resolve(context.Background(), "John", 3, 16, "esv")

	assert.Contains(t, res.Text, "[ESV unavailable]")
	assert.Contains(t, res.Text, "Jeremiah 29:11")
	assert.Equal(t, "ESV (fallback)", res.Translation)
	assert.Equal(t, "John 03:16", res.Reference)
}

func TestResolveNeverReturnsEmptyText(t *testing.T) {
	r := New(map[string]*cache.TranslationCache{}, nil, NewFallbackSet(nil), testLogger())

	for _, tr := range Supported() {
		res := r.Resolve(context.Background(), "John", 3, 16, tr.Code)
		assert.NotEmpty(t, res.Text, "translation %s", tr.Code)
		assert.NotEmpty(t, res.Translation, "translation %s", tr.Code)
	}
}

func TestResolveUnsupportedTranslationUsesKJV(t *testing.T) {
	r := New(map[string]*cache.TranslationCache{},
		[]sources.Fetcher{serving(sources.KindBibleAPI, "kjv text")},
		NewFallbackSet(nil), testLogger())

	res := r.Resolve(context.Background(), "John", 3, 16, "klingon")

	assert.Equal(t, "kjv text", res.Text)
	assert.Equal(t, "KJV", res.Translation)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "kjv", Normalize("KJV"))
	assert.Equal(t, "nasb", Normalize(" nasb "))
	assert.Equal(t, "kjv", Normalize("unknown"))
	assert.Equal(t, "kjv", Normalize(""))
}

func TestEveryChainEndsWithoutCredentials(t *testing.T) {
	// The last link of every chain must be a keyless source so a bare
	// deployment still resolves text.
	keyless := map[sources.Kind]bool{
		sources.KindBibleAPI: true,
		sources.KindWldeh:    true,
	}
	for code, chain := range chains {
		require.NotEmpty(t, chain, "chain for %s", code)
		last := chain[len(chain)-1]
		assert.True(t, keyless[last.kind], "chain for %s ends at %s", code, last.kind)
	}
}

func TestChainsStartAtCache(t *testing.T) {
	for code, chain := range chains {
		assert.Equal(t, sources.KindCache, chain[0].kind, "chain for %s", code)
	}
}
