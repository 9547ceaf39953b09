// Package wldeh fetches verses from the wldeh/bible-api dataset served
// through the jsDelivr CDN. No key, no rate limit, public-domain
// translations only.
package wldeh

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bibleclock/bibleclock-server/internal/errors"
	"github.com/bibleclock/bibleclock-server/internal/sources"
)

const (
	defaultBaseURL = "https://cdn.jsdelivr.net/gh/wldeh/bible-api"
	defaultTimeout = 30 * time.Second
)

// versionCodes maps translation codes to the dataset's version identifiers.
// Anything unmapped falls back to the World English Bible, the dataset's
// broadest public-domain edition.
var versionCodes = map[string]string{
	"kjv": "engKJV1611",
	"web": "engWEB2019eb",
	"asv": "engASV1901",
}

const fallbackVersion = "engWEB2019eb"

// Config holds client settings. Zero values select the defaults.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client fetches verses from the CDN-hosted dataset.
type Client struct {
	http    *http.Client
	logger  *slog.Logger
	baseURL string
}

// New creates a CDN dataset client.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// Kind identifies this source in fallback chains.
func (c *Client) Kind() sources.Kind {
	return sources.KindWldeh
}

type verseDocument struct {
	Text string `json:"text"`
}

// Fetch retrieves one verse. Books are addressed by USFM code, one JSON
// document per verse.
func (c *Client) Fetch(ctx context.Context, book string, chapter, verse int, code string) (string, error) {
	version, ok := versionCodes[strings.ToLower(code)]
	if !ok {
		version = fallbackVersion
	}

	fetchURL := fmt.Sprintf("%s/bibles/%s/books/%s/chapters/%d/verses/%d.json",
		c.baseURL, version, sources.USFMCode(book), chapter, verse)

	c.logger.Debug("wldeh request", "url", fetchURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeUnavailable, "execute request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Unavailablef("wldeh CDN returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeUnavailable, "read response")
	}

	var doc verseDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", errors.Wrap(err, errors.CodeUnavailable, "parse response")
	}

	text := strings.TrimSpace(doc.Text)
	if text == "" {
		return "", errors.Unavailablef("wldeh CDN returned no text for %s %d:%d", book, chapter, verse)
	}
	return text, nil
}
