// Package esv fetches verses from the official ESV API at api.esv.org.
// Requires an API key; without one the source reports itself unavailable.
package esv

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bibleclock/bibleclock-server/internal/errors"
	"github.com/bibleclock/bibleclock-server/internal/sources"
)

const (
	defaultBaseURL = "https://api.esv.org"
	defaultTimeout = 30 * time.Second
)

// Config holds client settings. APIKey comes from the ESV_API_KEY
// environment variable.
type Config struct {
	BaseURL string
	Timeout time.Duration
	APIKey  string
}

// Client fetches plain-text passages from the ESV API.
type Client struct {
	http    *http.Client
	logger  *slog.Logger
	baseURL string
	apiKey  string
}

// New creates an ESV API client.
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
		apiKey:  cfg.APIKey,
	}
}

// Kind identifies this source in fallback chains.
func (c *Client) Kind() sources.Kind {
	return sources.KindESV
}

type passageResponse struct {
	Passages []string `json:"passages"`
}

// Fetch retrieves one verse as plain text with all decorations disabled.
// The code parameter is ignored; this source only serves the ESV.
func (c *Client) Fetch(ctx context.Context, book string, chapter, verse int, _ string) (string, error) {
	if c.apiKey == "" {
		return "", errors.Unavailable("ESV API key not configured")
	}

	reference := fmt.Sprintf("%s %d:%d", book, chapter, verse)
	query := url.Values{}
	query.Set("q", reference)
	query.Set("format", "json")
	query.Set("include-headings", "false")
	query.Set("include-footnotes", "false")
	query.Set("include-verse-numbers", "false")
	query.Set("include-short-copyright", "false")
	query.Set("include-passage-references", "false")
	fetchURL := c.baseURL + "/v3/passage/text/?" + query.Encode()

	c.logger.Debug("esv api request", "reference", reference)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "create request")
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeUnavailable, "execute request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Unavailablef("esv api returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeUnavailable, "read response")
	}

	var pr passageResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return "", errors.Wrap(err, errors.CodeUnavailable, "parse response")
	}
	if len(pr.Passages) == 0 {
		return "", errors.Unavailablef("esv api returned no passages for %s", reference)
	}

	text := strings.TrimSpace(pr.Passages[0])
	if text == "" {
		return "", errors.Unavailablef("esv api returned empty passage for %s", reference)
	}
	return text, nil
}
