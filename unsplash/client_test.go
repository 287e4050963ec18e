package unsplash

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func testClient(baseURL string, opts ...Option) *Client {
	opts = append([]Option{WithBaseURL(baseURL), WithRateLimit(rate.Inf, 0)}, opts...)
	return NewClient("test-key", opts...)
}

func TestListPhotos(t *testing.T) {
	var gotAuth, gotVersion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotVersion = r.Header.Get("Accept-Version")
		assert.Equal(t, "/photos", r.URL.Path)
		assert.Equal(t, "30", r.URL.Query().Get("per_page"))
		w.Header().Set("Link", `<https://api.example/photos?page=2>; rel="next"`)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"id":"a","width":400,"height":300},{"id":"b","width":100,"height":200}]`)
	}))
	defer srv.Close()

	page, err := testClient(srv.URL).ListPhotos(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Client-ID test-key", gotAuth)
	assert.Equal(t, "v1", gotVersion)
	require.Equal(t, 2, len(page.Photos))
	assert.Equal(t, "a", page.Photos[0].ID)
	assert.InDelta(t, 0.75, page.Photos[0].Ratio(), 1e-9)
	assert.Equal(t, "https://api.example/photos?page=2", page.Links["next"])
}

func TestSearchPhotosEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/photos", r.URL.Path)
		assert.Equal(t, "mountain lake", r.URL.Query().Get("query"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"total":1,"total_pages":1,"results":[{"id":"s1","width":300,"height":300}]}`)
	}))
	defer srv.Close()

	page, err := testClient(srv.URL).SearchPhotos(context.Background(), "mountain lake", 1)
	require.NoError(t, err)
	require.Equal(t, 1, len(page.Photos))
	assert.Equal(t, "s1", page.Photos[0].ID)
}

func TestRateLimitOverridesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"errors":["something else entirely"]}`)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).ListPhotos(context.Background(), 1)
	var rl *RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, msgRateLimited, err.Error())
}

func TestForbiddenWithQuotaLeftIsNotRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-RateLimit-Remaining", "17")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"errors":["invalid scope"]}`)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).ListPhotos(context.Background(), 1)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "invalid scope", apiErr.Message)
}

func TestJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"errors":["OAuth error: The access token is invalid","second"]}`)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).ListPhotos(context.Background(), 1)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "OAuth error: The access token is invalid", err.Error())
	assert.Equal(t, http.StatusUnauthorized, apiErr.Code)
}

func TestTextError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "upstream maintenance")
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).ListPhotos(context.Background(), 1)
	var txtErr *APITextError
	require.ErrorAs(t, err, &txtErr)
	assert.Equal(t, "upstream maintenance", err.Error())
}

func TestStatusFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).ListPhotos(context.Background(), 1)
	var stErr *StatusError
	require.ErrorAs(t, err, &stErr)
	assert.Equal(t, "unexpected status code 404", err.Error())
}

func TestConnectivityError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening

	_, err := testClient(srv.URL).ListPhotos(context.Background(), 1)
	var connErr *ConnectivityError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, msgConnectivity, err.Error())
	assert.Error(t, errors.Unwrap(connErr))
}

func TestTestAccessUsesSuppliedKey(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "1", r.URL.Query().Get("per_page"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	err := testClient(srv.URL).TestAccess(context.Background(), "candidate-key")
	require.NoError(t, err)
	assert.Equal(t, "Client-ID candidate-key", gotAuth)
}

type mapCache struct {
	mu   sync.Mutex
	data map[string]string
	gets int
	sets int
}

func newMapCache() *mapCache { return &mapCache{data: map[string]string{}} }

func (c *mapCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	return c.data[key], nil
}

func (c *mapCache) Set(_ context.Context, key string, val string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.data[key] = val
	return nil
}

func TestFetchReadsThroughCache(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Link", `<https://api.example/photos?page=2>; rel="next"`)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"id":"a","width":400,"height":300}]`)
	}))
	defer srv.Close()

	cache := newMapCache()
	c := testClient(srv.URL, WithCache(cache, time.Hour))

	first, err := c.ListPhotos(context.Background(), 1)
	require.NoError(t, err)
	second, err := c.ListPhotos(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, hits, "second fetch must be served from cache")
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, first.Photos, second.Photos)
	assert.Equal(t, first.Links, second.Links)
}

func TestTestAccessBypassesCache(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	cache := newMapCache()
	c := testClient(srv.URL, WithCache(cache, time.Hour))

	require.NoError(t, c.TestAccess(context.Background(), "k1"))
	require.NoError(t, c.TestAccess(context.Background(), "k2"))

	assert.Equal(t, 2, hits)
	assert.Equal(t, 0, cache.sets)
}

func TestErrorsAreNotCached(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	cache := newMapCache()
	_, err := testClient(srv.URL, WithCache(cache, time.Hour)).ListPhotos(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, 0, cache.sets)
}

func TestPerPageAppliedToURLBuilders(t *testing.T) {
	c := testClient("https://api.example", WithPerPage(12))
	assert.Contains(t, c.PhotosURL(1), "per_page=12")
	assert.Contains(t, c.SearchURL("cats", 2), "per_page=12")

	c.SetPerPage(7)
	assert.Contains(t, c.PhotosURL(1), "per_page=7")

	// Out-of-range sizes fall back to the default.
	c.SetPerPage(0)
	assert.Contains(t, c.PhotosURL(1), "per_page=30")
	c.SetPerPage(999)
	assert.Contains(t, c.PhotosURL(1), "per_page=30")
}

func TestSetAccessKeyTakesEffect(t *testing.T) {
	var mu sync.Mutex
	var auths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		auths = append(auths, r.Header.Get("Authorization"))
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.ListPhotos(context.Background(), 1)
	require.NoError(t, err)

	c.SetAccessKey("rotated-key")
	_, err = c.ListPhotos(context.Background(), 1)
	require.NoError(t, err)

	require.Equal(t, 2, len(auths))
	assert.Equal(t, "Client-ID test-key", auths[0])
	assert.Equal(t, "Client-ID rotated-key", auths[1])
}
