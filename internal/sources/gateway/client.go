package gateway

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
	"sync"
	"time"

	"github.com/bibleclock/bibleclock-server/internal/errors"
	"github.com/bibleclock/bibleclock-server/internal/sources"
)

const defaultAPIBaseURL = "https://api.biblegateway.com"

// ClientConfig holds authenticated API settings. Username and password are
// required; without them Fetch reports the source unavailable so the chain
// moves on.
type ClientConfig struct {
	BaseURL  string
	Timeout  time.Duration
	Username string
	Password string
}

// Client is the authenticated Bible Gateway API client. It lazily obtains
// an access token on first use and refreshes it when the API rejects it.
type Client struct {
	http     *http.Client
	logger   *slog.Logger
	baseURL  string
	username string
	password string

	mu    sync.Mutex
	token string
}

// NewClient creates an authenticated API client.
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultAPIBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		http:     &http.Client{Timeout: cfg.Timeout},
		logger:   logger,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		username: cfg.Username,
		password: cfg.Password,
	}
}

// Kind identifies this source in fallback chains.
func (c *Client) Kind() sources.Kind {
	return sources.KindGatewayAPI
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

type passageResponse struct {
	Content string `json:"content"`
}

var xmlTags = regexp.MustCompile(`<[^>]+>`)

// Fetch retrieves one verse through the OSIS passage endpoint. The response
// content carries XML markup that is stripped to plain text.
func (c *Client) Fetch(ctx context.Context, book string, chapter, verse int, code string) (string, error) {
	if c.username == "" || c.password == "" {
		return "", errors.Unavailable("gateway credentials not configured")
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return "", err
	}

	reference := fmt.Sprintf("%s %d:%d", book, chapter, verse)
	query := url.Values{}
	query.Set("access_token", token)
	query.Set("translation-list", strings.ToUpper(code))
	fetchURL := c.baseURL + "/2/bible/osis/" + url.PathEscape(reference) + "?" + query.Encode()

	c.logger.Debug("gateway api request", "reference", reference, "translation", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeUnavailable, "execute request")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// Token expired; drop it so the next call re-authenticates.
		c.mu.Lock()
		c.token = ""
		c.mu.Unlock()
		return "", errors.Unavailable("gateway access token rejected")
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.Unavailablef("gateway api returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeUnavailable, "read response")
	}

	var pr passageResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return "", errors.Wrap(err, errors.CodeUnavailable, "parse response")
	}

	text := strings.TrimSpace(xmlTags.ReplaceAllString(pr.Content, ""))
	if text == "" {
		return "", errors.Unavailablef("gateway api returned no text for %s", reference)
	}
	return text, nil
}

// accessToken returns the cached token, requesting a fresh one when absent.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" {
		return c.token, nil
	}

	query := url.Values{}
	query.Set("username", c.username)
	query.Set("password", c.password)
	tokenURL := c.baseURL + "/2/request_access_token?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tokenURL, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "create token request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeUnavailable, "request access token")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Unavailablef("token endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeUnavailable, "read token response")
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", errors.Wrap(err, errors.CodeUnavailable, "parse token response")
	}
	if tr.AccessToken == "" {
		return "", errors.Unavailable("no access token in response")
	}

	c.token = tr.AccessToken
	c.logger.Info("gateway access token obtained")
	return c.token, nil
}
