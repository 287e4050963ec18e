package unsplash

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/yourorg/photofeed/internal/canon"
)

const (
	DefaultBaseURL = "https://api.unsplash.com"

	// PerPage is the default page size, matching what the admin grid
	// renders per fetch. The API caps page size at maxPerPage.
	PerPage    = 30
	maxPerPage = 30

	acceptVersion = "v1"
)

// Cache stores successful result pages keyed by request URL. Satisfied by
// internal/redisx; nil disables caching.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, val string, ttl time.Duration) error
}

type Client struct {
	// mu guards key and perPage, both updatable at runtime when settings
	// are saved.
	mu      sync.RWMutex
	key     string
	perPage int

	baseURL  string
	http     *retryablehttp.Client
	limiter  *rate.Limiter
	cache    Cache
	cacheTTL time.Duration
	log      *log.Logger
}

type Option func(*Client)

// WithBaseURL points the client at a different API host (tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithCache enables read-through caching of successful pages.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// WithRateLimit overrides the client-side request pacing.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(limit, burst) }
}

// WithPerPage overrides the page size used by the URL builders.
func WithPerPage(n int) Option {
	return func(c *Client) { c.perPage = clampPerPage(n) }
}

func NewClient(accessKey string, opts ...Option) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 900 * time.Millisecond
	rc.RetryMax = 2
	rc.HTTPClient.Timeout = 10 * time.Second
	rc.Logger = nil
	// Only transport failures are retried. Non-2xx statuses feed the error
	// classification below, including 403 quota responses.
	rc.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return err != nil, nil
	}

	c := &Client{
		key:     accessKey,
		perPage: PerPage,
		baseURL: DefaultBaseURL,
		http:    rc,
		// Demo keys get 50 requests/hour upstream; pace well under that burst.
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
		log:     log.New(os.Stderr, "(unsplash) ", log.LstdFlags),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetAccessKey swaps the credential used for subsequent requests. Called when
// a newly saved key should take effect without a restart.
func (c *Client) SetAccessKey(key string) {
	c.mu.Lock()
	c.key = key
	c.mu.Unlock()
}

// SetPerPage swaps the page size used by subsequent URL builds. Out-of-range
// values fall back to the default.
func (c *Client) SetPerPage(n int) {
	n = clampPerPage(n)
	c.mu.Lock()
	c.perPage = n
	c.mu.Unlock()
}

func clampPerPage(n int) int {
	if n < 1 || n > maxPerPage {
		return PerPage
	}
	return n
}

func (c *Client) accessKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.key
}

func (c *Client) pageSize() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.perPage
}

// PhotosURL builds the default (non-search) listing URL for a page.
func (c *Client) PhotosURL(page int) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(c.pageSize()))
	return c.baseURL + "/photos?" + q.Encode()
}

// SearchURL builds the search URL for a query and page.
func (c *Client) SearchURL(query string, page int) string {
	q := url.Values{}
	q.Set("query", query)
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(c.pageSize()))
	return c.baseURL + "/search/photos?" + q.Encode()
}

// ListPhotos fetches one page of the default listing.
func (c *Client) ListPhotos(ctx context.Context, page int) (*Page, error) {
	return c.Fetch(ctx, c.PhotosURL(page))
}

// SearchPhotos fetches one page of search results.
func (c *Client) SearchPhotos(ctx context.Context, query string, page int) (*Page, error) {
	return c.Fetch(ctx, c.SearchURL(query, page))
}

// Fetch issues a GET against a fully built URL. Pagination follow-ups pass
// the Link header URL through verbatim.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	body, links, err := c.do(ctx, rawURL, c.accessKey(), true)
	if err != nil {
		return nil, err
	}
	photos, err := decodePhotos(body)
	if err != nil {
		return nil, err
	}
	return &Page{Photos: photos, Links: links, URL: rawURL}, nil
}

// TestAccess validates a caller-supplied access key without touching the
// configured one or the page cache. Uses the cheapest listing available.
func (c *Client) TestAccess(ctx context.Context, accessKey string) error {
	q := url.Values{}
	q.Set("per_page", "1")
	_, _, err := c.do(ctx, c.baseURL+"/photos?"+q.Encode(), accessKey, false)
	return err
}

func (c *Client) do(ctx context.Context, rawURL, key string, cacheable bool) ([]byte, map[string]string, error) {
	cacheKey := canon.CacheKey(rawURL)
	if cacheable && c.cache != nil {
		if val, err := c.cache.Get(ctx, cacheKey); err == nil && val != "" {
			var cp cachedPage
			if err := json.Unmarshal([]byte(val), &cp); err == nil {
				return cp.Body, cp.Links, nil
			}
			c.log.Println("dropping undecodable cached page for", rawURL)
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, nil, &ConnectivityError{Err: err}
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nil, &ConnectivityError{Err: err}
	}
	req.Header.Set("Authorization", "Client-ID "+key)
	req.Header.Set("Accept-Version", acceptVersion)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, &ConnectivityError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, classify(resp)
	}

	links := ParseLinkHeader(resp.Header.Get("Link"))
	body, err := readAllLimit(resp.Body, 4<<20)
	if err != nil {
		return nil, nil, &ConnectivityError{Err: err}
	}

	if cacheable && c.cache != nil {
		if b, err := json.Marshal(cachedPage{Body: body, Links: links}); err == nil {
			if err := c.cache.Set(ctx, cacheKey, string(b), c.cacheTTL); err != nil {
				c.log.Println("page cache write failed:", err)
			}
		}
	}
	return body, links, nil
}

type cachedPage struct {
	Body  json.RawMessage   `json:"body"`
	Links map[string]string `json:"links"`
}

// classify maps a non-2xx response to a typed error. Order matters: an
// exhausted quota overrides whatever the body says.
func classify(resp *http.Response) error {
	body, _ := readAllLimit(resp.Body, 1<<20)

	if resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0" {
		return &RateLimitError{}
	}

	ct := resp.Header.Get("Content-Type")
	switch {
	case strings.Contains(ct, "json"):
		var payload struct {
			Errors []string `json:"errors"`
		}
		if err := json.Unmarshal(body, &payload); err == nil && len(payload.Errors) > 0 {
			return &APIError{Code: resp.StatusCode, Message: payload.Errors[0]}
		}
	case strings.Contains(ct, "xml"), strings.Contains(ct, "text"):
		if txt := strings.TrimSpace(string(body)); txt != "" {
			return &APITextError{Code: resp.StatusCode, Body: txt}
		}
	}
	return &StatusError{Code: resp.StatusCode}
}

// decodePhotos accepts either a bare photo array (/photos) or the search
// envelope with a nested results field (/search/photos).
func decodePhotos(body []byte) ([]Photo, error) {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var photos []Photo
		if err := json.Unmarshal(trimmed, &photos); err != nil {
			return nil, fmt.Errorf("decode photo list: %w", err)
		}
		return photos, nil
	}
	var sr searchResponse
	if err := json.Unmarshal(trimmed, &sr); err != nil {
		return nil, fmt.Errorf("decode search results: %w", err)
	}
	return sr.Results, nil
}

func readAllLimit(r io.Reader, limit int64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, errors.New("payload too large")
	}
	return b, nil
}
