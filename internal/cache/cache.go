// Package cache implements the per-translation verse cache: a three-level
// book -> chapter -> verse map persisted as one JSON document per
// translation. Entries are only ever added; every insert rewrites the whole
// document so a crash never leaves a partially written store.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/bibleclock/bibleclock-server/internal/canon"
	"github.com/bibleclock/bibleclock-server/internal/errors"
	"github.com/bibleclock/bibleclock-server/internal/logger"
)

// TranslationCache holds previously resolved verse text for one translation.
// A mutex guards every read-modify-write: the scheduler thread and
// on-demand administrative calls may interleave.
type TranslationCache struct {
	mu          sync.Mutex
	translation string
	path        string
	data        map[string]map[string]map[string]string
	count       int
	index       *canon.Index
	logger      *logger.Logger
}

// fileAlias maps a translation code to its document name. NASB is stored
// under its 1995 edition name, matching the provider code it is fetched as.
func fileAlias(translation string) string {
	if translation == "nasb" {
		return "nasb1995"
	}
	return translation
}

// Path returns the cache document path for a translation under dir.
func Path(dir, translation string) string {
	return filepath.Join(dir, fmt.Sprintf("bible_%s.json", fileAlias(strings.ToLower(translation))))
}

// Open loads the cache document for a translation, creating an empty cache
// when the document does not exist yet.
func Open(dir, translation string, index *canon.Index, log *logger.Logger) (*TranslationCache, error) {
	translation = strings.ToLower(translation)
	c := &TranslationCache{
		translation: translation,
		path:        Path(dir, translation),
		data:        make(map[string]map[string]map[string]string),
		index:       index,
		logger:      log,
	}

	raw, err := os.ReadFile(c.path) //#nosec G304 -- path derives from config
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeInternal, "read cache document %s", c.path)
	}

	if err := json.Unmarshal(raw, &c.data); err != nil {
		return nil, errors.Wrapf(err, errors.CodeValidation, "parse cache document %s", c.path)
	}
	c.count = countVerses(c.data)

	log.Debug("translation cache loaded",
		"translation", translation,
		"verses", c.count,
	)
	return c, nil
}

// Translation returns the lowercase translation code this cache serves.
func (c *TranslationCache) Translation() string {
	return c.translation
}

// Get returns the cached text for a coordinate, if present.
func (c *TranslationCache) Get(book string, chapter, verse int) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	text := c.data[book][strconv.Itoa(chapter)][strconv.Itoa(verse)]
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	return strings.TrimSpace(text), true
}

// Put stores text for a coordinate and flushes the document to disk.
// Write-once: if the coordinate is already cached the call is a no-op, so
// a flaky later source can never overwrite a good earlier lookup. Returns
// true when a new entry was added.
func (c *TranslationCache) Put(book string, chapter, verse int, text string) (bool, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return false, errors.Validation("refusing to cache empty verse text")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	chapterKey, verseKey := strconv.Itoa(chapter), strconv.Itoa(verse)

	if c.data[book] == nil {
		c.data[book] = make(map[string]map[string]string)
	}
	if c.data[book][chapterKey] == nil {
		c.data[book][chapterKey] = make(map[string]string)
	}
	if _, exists := c.data[book][chapterKey][verseKey]; exists {
		return false, nil
	}

	c.data[book][chapterKey][verseKey] = text
	c.count++

	if err := c.flushLocked(); err != nil {
		return true, err
	}

	c.logger.Info("translation cache updated",
		"translation", c.translation,
		"reference", fmt.Sprintf("%s %d:%d", book, chapter, verse),
		"completion_pct", fmt.Sprintf("%.1f", c.completionLocked()),
	)
	return true, nil
}

// Count returns the number of cached verses.
func (c *TranslationCache) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// CompletionPercent returns how much of the canon this cache holds, in
// percent. Monotonically non-decreasing and never above 100.
func (c *TranslationCache) CompletionPercent() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completionLocked()
}

func (c *TranslationCache) completionLocked() float64 {
	total := c.index.TotalVerses()
	if total == 0 {
		return 0
	}
	pct := float64(c.count) / float64(total) * 100.0
	if pct > 100 {
		pct = 100
	}
	return pct
}

// flushLocked rewrites the whole cache document atomically: write to a
// temp file in the same directory, then rename over the old document.
// Caller must hold the mutex.
func (c *TranslationCache) flushLocked() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "create translations directory")
	}

	raw, err := json.MarshalIndent(c.data, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "marshal cache document")
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), filepath.Base(c.path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "create temp cache document")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, errors.CodeInternal, "write temp cache document")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, errors.CodeInternal, "close temp cache document")
	}

	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, errors.CodeInternal, "replace cache document %s", c.path)
	}
	return nil
}

// countVerses walks a loaded document and counts non-empty entries.
func countVerses(data map[string]map[string]map[string]string) int {
	n := 0
	for _, chapters := range data {
		for _, verses := range chapters {
			for _, text := range verses {
				if strings.TrimSpace(text) != "" {
					n++
				}
			}
		}
	}
	return n
}
