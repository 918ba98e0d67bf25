// Package fetcher downloads a job posting page and reduces it to plain text.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/utils"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "Mozilla/5.0"
	DefaultMaxChars  = 15000
	DefaultMinChars  = 100

	maxBodyBytes = 8 << 20
)

// noise is removed before text extraction.
const noise = "script, style, nav, footer, header, aside"

// ErrEmptyContent is wrapped by FetchError when too little text is left after cleaning.
var ErrEmptyContent = errors.New("empty content")

// FetchError is returned for any failure to obtain usable posting text.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

type Config struct {
	Timeout   time.Duration
	UserAgent string
	MaxChars  int
	MinChars  int
}

// Fetcher fetches posting pages. It is safe for concurrent use.
type Fetcher struct {
	client *http.Client
	cfg    Config
	logger *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if strings.TrimSpace(cfg.UserAgent) == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = DefaultMaxChars
	}
	if cfg.MinChars <= 0 {
		cfg.MinChars = DefaultMinChars
	}

	return &Fetcher{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		logger: logger,
	}
}

// Fetch returns the visible text of the page at rawURL, at most MaxChars runes long.
// A URL without a scheme is treated as https.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	target := normalizeURL(rawURL)

	text, err := f.fetch(ctx, target)
	if err != nil {
		f.logger.Debug("fetch failed", zap.String("url", target), zap.Error(err))
		return "", &FetchError{URL: target, Err: err}
	}

	f.logger.Debug("fetched posting",
		zap.String("url", target),
		zap.Int("chars", len([]rune(text))),
	)

	return text, nil
}

func (f *Fetcher) fetch(ctx context.Context, target string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bad status: %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	text := utils.Cut(Text(doc), f.cfg.MaxChars)
	if len([]rune(text)) < f.cfg.MinChars {
		return "", ErrEmptyContent
	}

	return text, nil
}

// Text strips page chrome from doc and joins the remaining text nodes with single spaces.
func Text(doc *goquery.Document) string {
	doc.Find(noise).Remove()

	var parts []string
	collectText(doc.Selection, &parts)

	return strings.Join(parts, " ")
}

func collectText(s *goquery.Selection, parts *[]string) {
	s.Contents().Each(func(_ int, node *goquery.Selection) {
		if goquery.NodeName(node) == "#text" {
			if text := strings.Join(strings.Fields(node.Text()), " "); text != "" {
				*parts = append(*parts, text)
			}
			return
		}
		collectText(node, parts)
	})
}

func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return "https://" + strings.TrimPrefix(raw, "//")
}
