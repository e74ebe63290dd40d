// Package datasource fetches the raw per-fund inputs: holdings, NAV,
// performance and profile scraped from MoneyDJ, and closing-price history
// from the Yahoo Finance chart API.
package datasource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/patrickmn/go-cache"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"

	"github.com/seenimoa/etftracker/pkg/models"
)

// --- Collaborator interfaces ---

// HoldingsSource returns the top constituents of a fund by weight.
type HoldingsSource interface {
	Holdings(ctx context.Context, ticker string) ([]models.HoldingEntry, error)
}

// NAVSource returns the latest net asset value of a fund.
type NAVSource interface {
	LatestNAV(ctx context.Context, ticker string) (float64, error)
}

// MetricsSource returns the weekly and year-to-date returns of a fund.
type MetricsSource interface {
	Performance(ctx context.Context, ticker string) (models.Metrics, error)
}

// ProfileSource returns descriptive fund facts.
type ProfileSource interface {
	Profile(ctx context.Context, ticker string) (models.Profile, error)
}

// SeriesSource returns closing-price history covering lookback, sampled at tf.
type SeriesSource interface {
	History(ctx context.Context, ticker string, lookback time.Duration, tf models.Timeframe) ([]models.OHLCV, error)
}

// --- Sentinel errors ---

// ErrNotFound is returned when the upstream has no page for the fund.
var ErrNotFound = errors.New("fund not found")

// ErrTableNotFound is returned when a page lacks the expected table.
var ErrTableNotFound = errors.New("expected table not found")

// ErrNoData is returned when a page was parsed but held no usable value.
var ErrNoData = errors.New("no usable data")

// ErrHTTP wraps an HTTP error with status code.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// --- Shared HTTP client ---

// DefaultUserAgent is the user agent string used for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// ClientOptions configures a Client.
type ClientOptions struct {
	Timeout        time.Duration
	RequestsPerSec float64 // <= 0 disables rate limiting
	CacheTTL       time.Duration
	Headers        map[string]string
}

// Client performs rate-limited GETs and caches response bodies.
// It is safe for concurrent use.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	pages   *cache.Cache
	headers map[string]string
}

// NewClient creates a Client.
func NewClient(opts ClientOptions) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	limit := rate.Inf
	if opts.RequestsPerSec > 0 {
		limit = rate.Limit(opts.RequestsPerSec)
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, 1),
		pages:   cache.New(ttl, 2*ttl),
		headers: opts.Headers,
	}
}

// Get returns the body at url decoded to UTF-8, serving repeated requests
// for the same url from the cache.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	if cached, ok := c.pages.Get(url); ok {
		return cached.([]byte), nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := c.doGet(ctx, url, headers)
	if err != nil {
		return nil, err
	}

	c.pages.Set(url, body, cache.DefaultExpiration)
	return body, nil
}

// doGet performs a GET request with the given URL and headers and returns
// the body transcoded to UTF-8 according to its declared charset.
func (c *Client) doGet(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	// Set default headers.
	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "text/html, application/json, */*")
	req.Header.Set("Accept-Language", "zh-TW,zh;q=0.9,en;q=0.8")

	// Override/add custom headers.
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &ErrHTTP{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return decodeBody(raw, resp.Header.Get("Content-Type")), nil
}

// decodeBody transcodes raw to UTF-8. A charset declared in the
// Content-Type header or a BOM is authoritative; otherwise bodies that are
// already valid UTF-8 pass through and anything else goes by the
// document's <meta> charset.
func decodeBody(raw []byte, contentType string) []byte {
	_, name, certain := charset.DetermineEncoding(raw, contentType)
	if name == "utf-8" || (!certain && utf8.Valid(raw)) {
		return raw
	}
	r, err := charset.NewReaderLabel(name, bytes.NewReader(raw))
	if err != nil {
		return raw
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return raw
	}
	return decoded
}
