// Package gateway fetches verses from Bible Gateway two ways: scraping the
// public passage pages (no credentials) and the authenticated JSON API.
// Both cover the modern copyrighted translations the free APIs cannot serve.
package gateway

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/bibleclock/bibleclock-server/internal/errors"
	"github.com/bibleclock/bibleclock-server/internal/sources"
)

const (
	defaultScrapeBaseURL = "https://www.biblegateway.com"
	defaultTimeout       = 30 * time.Second

	// Scraped text shorter than this is navigation junk, not a verse.
	minVerseLength = 10

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// ScraperConfig holds scraper settings. Zero values select the defaults.
type ScraperConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Scraper extracts single verses from public passage pages.
type Scraper struct {
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
	baseURL string
}

// NewScraper creates a passage-page scraper. One request every two seconds;
// anything faster gets the client blocked.
func NewScraper(cfg ScraperConfig, logger *slog.Logger) *Scraper {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultScrapeBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Scraper{
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 2),
		logger:  logger,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// Kind identifies this source in fallback chains.
func (s *Scraper) Kind() sources.Kind {
	return sources.KindGateway
}

// Fetch retrieves one verse by scraping its passage page. code is the
// site's version identifier, for example "AMP" or "NASB1995".
func (s *Scraper) Fetch(ctx context.Context, book string, chapter, verse int, code string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", errors.Wrap(err, errors.CodeUnavailable, "rate limit wait")
	}

	reference := fmt.Sprintf("%s %d:%d", book, chapter, verse)
	query := url.Values{}
	query.Set("search", reference)
	query.Set("version", strings.ToUpper(code))
	fetchURL := s.baseURL + "/passage/?" + query.Encode()

	s.logger.Debug("gateway scrape", "reference", reference, "version", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "create request")
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := s.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeUnavailable, "execute request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Unavailablef("gateway returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeUnavailable, "read response")
	}

	text, err := extractVerse(body, verse)
	if err != nil {
		return "", err
	}

	s.logger.Debug("gateway scrape ok", "reference", reference, "length", len(text))
	return text, nil
}

// passageClasses are tried in order when locating the passage container.
var passageClasses = []string{"passage-content", "passage-text", "passage"}

// extractVerse parses a passage page and pulls out the verse text.
func extractVerse(page []byte, verse int) (string, error) {
	doc, err := html.Parse(strings.NewReader(string(page)))
	if err != nil {
		return "", errors.Wrap(err, errors.CodeUnavailable, "parse passage page")
	}

	var container *html.Node
	for _, class := range passageClasses {
		if container = findDivByClass(doc, class); container != nil {
			break
		}
	}
	if container == nil {
		return "", errors.Unavailable("no passage content on page")
	}

	var buf strings.Builder
	collectText(container, &buf)

	text := pickVerseLine(buf.String(), verse)
	if text == "" {
		return "", errors.Unavailable("could not extract verse text from passage")
	}
	return text, nil
}

// findDivByClass walks the tree for the first div whose class attribute
// contains the given class name.
func findDivByClass(n *html.Node, class string) *html.Node {
	if n.Type == html.ElementNode && n.Data == "div" {
		for _, attr := range n.Attr {
			if attr.Key == "class" && strings.Contains(attr.Val, class) {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findDivByClass(c, class); found != nil {
			return found
		}
	}
	return nil
}

// collectText accumulates text content, inserting newlines after block
// elements so pickVerseLine can split on real line boundaries.
func collectText(n *html.Node, buf *strings.Builder) {
	if n.Type == html.TextNode {
		buf.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, buf)
	}
	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "div", "br", "h1", "h2", "h3", "h4", "li":
			buf.WriteString("\n")
		}
	}
}

var (
	leadingVerseNumber = regexp.MustCompile(`^\d+\s*`)
	innerWhitespace    = regexp.MustCompile(`\s+`)
)

// suffixMarkers cut site chrome that trails the verse on the page.
var suffixMarkers = []string{"Read full chapter", "in all English"}

// isChromeLine reports whether a line is site navigation rather than verse
// text.
func isChromeLine(line string) bool {
	return strings.HasPrefix(line, "Read full") ||
		strings.HasPrefix(line, "Chapter") ||
		strings.HasPrefix(line, "in all")
}

// pickVerseLine finds the line of extracted text that carries the verse:
// a line starting with the verse number, or failing that the first
// substantial line that is not navigation text.
func pickVerseLine(extracted string, verse int) string {
	lines := strings.Split(extracted, "\n")

	var picked string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || isChromeLine(line) {
			continue
		}
		if strings.HasPrefix(line, fmt.Sprintf("%d", verse)) || len(line) > 20 {
			cleaned := strings.TrimSpace(leadingVerseNumber.ReplaceAllString(line, ""))
			if len(cleaned) > minVerseLength {
				picked = cleaned
				break
			}
		}
	}
	if picked == "" {
		for _, line := range lines {
			line = strings.TrimSpace(line)
			if len(line) > 20 && !isChromeLine(line) {
				picked = line
				break
			}
		}
	}
	if picked == "" {
		return ""
	}

	picked = innerWhitespace.ReplaceAllString(picked, " ")
	for _, marker := range suffixMarkers {
		if i := strings.Index(picked, " "+marker); i >= 0 {
			picked = picked[:i]
		}
	}
	picked = strings.TrimSpace(picked)

	if len(picked) < minVerseLength {
		return ""
	}
	return picked
}
