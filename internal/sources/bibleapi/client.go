// Package bibleapi fetches verses from bible-api.com, the primary remote
// source for public-domain translations.
package bibleapi

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

	"golang.org/x/time/rate"

	"github.com/bibleclock/bibleclock-server/internal/errors"
	"github.com/bibleclock/bibleclock-server/internal/sources"
)

const (
	defaultBaseURL = "https://bible-api.com"
	defaultTimeout = 30 * time.Second
)

// Config holds client settings. Zero values select the defaults.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is a rate-limited bible-api.com client.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
	baseURL string
}

// New creates a bible-api.com client. Rate limited to 1 request per second
// with a burst of 3; the free service throttles aggressively beyond that.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Every(time.Second), 3),
		logger:  logger,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// Kind identifies this source in fallback chains.
func (c *Client) Kind() sources.Kind {
	return sources.KindBibleAPI
}

type verseResponse struct {
	Reference string `json:"reference"`
	Text      string `json:"text"`
}

// Fetch retrieves one verse. The translation parameter is always sent; the
// service's default translation is not KJV.
func (c *Client) Fetch(ctx context.Context, book string, chapter, verse int, code string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", errors.Wrap(err, errors.CodeUnavailable, "rate limit wait")
	}

	reference := fmt.Sprintf("%s %d:%d", book, chapter, verse)
	fetchURL := fmt.Sprintf("%s/%s?translation=%s",
		c.baseURL, url.PathEscape(reference), url.QueryEscape(strings.ToLower(code)))

	c.logger.Debug("bible-api request", "reference", reference, "translation", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeUnavailable, "execute request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Unavailablef("bible-api returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeUnavailable, "read response")
	}

	var vr verseResponse
	if err := json.Unmarshal(body, &vr); err != nil {
		return "", errors.Wrap(err, errors.CodeUnavailable, "parse response")
	}

	text := strings.TrimSpace(vr.Text)
	if text == "" {
		return "", errors.Unavailablef("bible-api returned no text for %s", reference)
	}
	return text, nil
}
