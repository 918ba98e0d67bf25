package jobs

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const (
	DefaultTimeout   = 8 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	acceptHTML      = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
	acceptJSON      = "application/json"
	acceptLanguage  = "tr-TR,tr;q=0.9,en-US;q=0.8,en;q=0.7"
	contentEncoding = "gzip"
	maxBodyBytes    = 8 << 20
)

// Client is the HTTP plumbing shared by all sources. Every request gets its own
// Timeout and is never retried.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	Timeout    time.Duration
	logger     *zap.Logger
}

func NewClient(logger *zap.Logger, userAgent string, timeout time.Duration) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		HTTPClient: &http.Client{Timeout: timeout},
		UserAgent:  userAgent,
		Timeout:    timeout,
		logger:     logger,
	}
}

func (c *Client) getJSON(ctx context.Context, rawURL string, q url.Values, target any) error {
	data, err := c.do(ctx, http.MethodGet, rawURL, q, nil, map[string]string{"Accept": acceptJSON})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}

	return nil
}

// getItems decodes the array under key of a JSON object. Listings are loosely
// typed, so each one goes through a weakly typed mapstructure pass; a listing
// that still does not fit T is skipped.
func getItems[T any](ctx context.Context, c *Client, rawURL string, q url.Values, key string) ([]T, error) {
	var payload map[string]any
	if err := c.getJSON(ctx, rawURL, q, &payload); err != nil {
		return nil, err
	}

	items, ok := payload[key].([]any)
	if !ok {
		return nil, fmt.Errorf("response has no %q array", key)
	}

	listings := make([]T, 0, len(items))
	for i, item := range items {
		var listing T
		if err := decodeListing(item, &listing); err != nil {
			c.logger.Debug("skipping malformed listing", zap.String("url", rawURL), zap.Int("index", i), zap.Error(err))
			continue
		}
		listings = append(listings, listing)
	}

	return listings, nil
}

func decodeListing(item any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(item)
}

func (c *Client) getDocument(ctx context.Context, rawURL string, q url.Values) (*goquery.Document, error) {
	data, err := c.do(ctx, http.MethodGet, rawURL, q, nil, map[string]string{"Accept": acceptHTML})
	if err != nil {
		return nil, err
	}

	return parseDocument(data)
}

func (c *Client) postForm(ctx context.Context, rawURL string, form url.Values, headers map[string]string) (*goquery.Document, error) {
	all := map[string]string{
		"Accept":       acceptHTML,
		"Content-Type": "application/x-www-form-urlencoded",
	}
	for k, v := range headers {
		all[k] = v
	}

	data, err := c.do(ctx, http.MethodPost, rawURL, nil, strings.NewReader(form.Encode()), all)
	if err != nil {
		return nil, err
	}

	return parseDocument(data)
}

func (c *Client) do(ctx context.Context, method, rawURL string, q url.Values, body io.Reader, headers map[string]string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}

	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	c.setHeaders(req)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	c.logger.Debug("make request", zap.String("method", method), zap.String("url", req.URL.String()))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	}

	return io.ReadAll(io.LimitReader(reader, maxBodyBytes))
}

// StatusError is returned for any response other than 200 OK.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status: %s", e.Status)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept-Language", acceptLanguage)
	req.Header.Set("Accept-Encoding", contentEncoding)
}

func parseDocument(data []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}
