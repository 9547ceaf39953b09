// Package apibible fetches verses from scripture.api.bible. Requires an API
// key; without one the source reports itself unavailable.
package apibible

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/bibleclock/bibleclock-server/internal/errors"
	"github.com/bibleclock/bibleclock-server/internal/sources"
)

const (
	defaultBaseURL = "https://api.scripture.api.bible"
	defaultTimeout = 30 * time.Second
)

// Config holds client settings. APIKey comes from the SCRIPTURE_API_KEY
// environment variable. BibleIDs maps translation codes to the service's
// bible identifiers; unmapped codes are passed through as-is.
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	APIKey   string
	BibleIDs map[string]string
}

// Client fetches verses from the scripture.api.bible service.
type Client struct {
	http     *http.Client
	logger   *slog.Logger
	baseURL  string
	apiKey   string
	bibleIDs map[string]string
}

// New creates a scripture.api.bible client.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		http:     &http.Client{Timeout: cfg.Timeout},
		logger:   logger,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		bibleIDs: cfg.BibleIDs,
	}
}

// Kind identifies this source in fallback chains.
func (c *Client) Kind() sources.Kind {
	return sources.KindAPIBible
}

type verseResponse struct {
	Data struct {
		Content string `json:"content"`
	} `json:"data"`
}

var markupTags = regexp.MustCompile(`<[^>]+>`)

// bookCodeOverrides holds the identifiers where this service departs from
// the shared USFM table.
var bookCodeOverrides = map[string]string{
	"Ezekiel": "EZK",
	"Nahum":   "NAM",
}

func bookCode(book string) string {
	if code, ok := bookCodeOverrides[book]; ok {
		return code
	}
	return sources.USFMCode(book)
}

// Fetch retrieves one verse. Verses are addressed as BOOK.CHAPTER.VERSE
// with USFM book codes.
func (c *Client) Fetch(ctx context.Context, book string, chapter, verse int, code string) (string, error) {
	if c.apiKey == "" {
		return "", errors.Unavailable("scripture api key not configured")
	}

	bibleID := code
	if id, ok := c.bibleIDs[strings.ToLower(code)]; ok {
		bibleID = id
	}

	verseID := fmt.Sprintf("%s.%d.%d", bookCode(book), chapter, verse)
	query := url.Values{}
	query.Set("content-type", "text")
	query.Set("include-notes", "false")
	query.Set("include-titles", "false")
	query.Set("include-chapter-numbers", "false")
	query.Set("include-verse-numbers", "false")
	fetchURL := fmt.Sprintf("%s/v1/bibles/%s/verses/%s?%s",
		c.baseURL, url.PathEscape(bibleID), verseID, query.Encode())

	c.logger.Debug("scripture api request", "verse_id", verseID, "bible_id", bibleID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "create request")
	}
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeUnavailable, "execute request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Unavailablef("scripture api returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeUnavailable, "read response")
	}

	var vr verseResponse
	if err := json.Unmarshal(body, &vr); err != nil {
		return "", errors.Wrap(err, errors.CodeUnavailable, "parse response")
	}

	text := strings.TrimSpace(markupTags.ReplaceAllString(vr.Data.Content, " "))
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return "", errors.Unavailablef("scripture api returned no text for %s", verseID)
	}
	return text, nil
}
