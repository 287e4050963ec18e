// Package feed owns the photo-search state the admin frontend renders:
// the flat result list, the balanced column layout, pagination follow-ups,
// and the single user-visible error string.
package feed

import (
	"context"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yourorg/photofeed/internal/debounce"
	"github.com/yourorg/photofeed/internal/events"
	"github.com/yourorg/photofeed/unsplash"
)

const (
	DefaultColumnCount = 3

	// defaultQuiet is the debounce window for keystroke-level search calls.
	defaultQuiet = 400 * time.Millisecond

	msgExhausted = "No more photos to load."
)

// Fetcher is the slice of the unsplash client the feed needs.
type Fetcher interface {
	PhotosURL(page int) string
	SearchURL(query string, page int) string
	Fetch(ctx context.Context, rawURL string) (*unsplash.Page, error)
}

type Config struct {
	ColumnCount int
	Quiet       time.Duration
}

// Service serializes all feed mutations. LoadNew, LoadNextPage and Retry
// share one loading slot and are dropped while a request of that family is
// outstanding. Search runs in its own slot: each UpdateSearch call supersedes
// any pending debounce wait or in-flight search request.
type Service struct {
	client Fetcher
	bus    *events.Bus
	deb    *debounce.Debouncer
	log    *log.Logger

	loading atomic.Bool

	mu       sync.Mutex
	term     string
	colCount int
	photos   []unsplash.Photo
	columns  *ColumnSet
	links    map[string]string
	lastErr  string
	lastURL  string

	searchMu     sync.Mutex
	searchGen    uint64
	searchActive bool
	searchCancel context.CancelFunc
}

func New(client Fetcher, bus *events.Bus, cfg Config) *Service {
	if cfg.ColumnCount < 1 {
		cfg.ColumnCount = DefaultColumnCount
	}
	if cfg.Quiet <= 0 {
		cfg.Quiet = defaultQuiet
	}
	return &Service{
		client:   client,
		bus:      bus,
		deb:      debounce.New(cfg.Quiet),
		log:      log.New(os.Stderr, "(feed) ", log.LstdFlags),
		colCount: cfg.ColumnCount,
		columns:  NewColumnSet(cfg.ColumnCount),
		links:    map[string]string{},
	}
}

// LoadNew discards all photo, column and pagination state and fetches the
// first page of the default listing.
func (s *Service) LoadNew(ctx context.Context) {
	if !s.loading.CompareAndSwap(false, true) {
		return
	}
	defer s.loading.Store(false)

	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()
	s.notify()

	s.request(ctx, s.client.PhotosURL(1))
}

// LoadNextPage follows the "next" pagination URL. Dropped while a search owns
// the feed (a scroll trigger racing a reset would fetch into stale state).
// An empty list degrades to LoadNew; no "next" entry records exhaustion
// without issuing a request.
func (s *Service) LoadNextPage(ctx context.Context) {
	if s.searchBusy() {
		return
	}

	s.mu.Lock()
	empty := len(s.photos) == 0
	next, ok := s.links["next"]
	s.mu.Unlock()

	if empty {
		s.LoadNew(ctx)
		return
	}
	if !s.loading.CompareAndSwap(false, true) {
		return
	}
	defer s.loading.Store(false)

	if !ok {
		s.mu.Lock()
		s.lastErr = msgExhausted
		s.mu.Unlock()
		s.notify()
		return
	}
	s.request(ctx, next)
}

// Retry re-issues the last attempted URL unchanged.
func (s *Service) Retry(ctx context.Context) {
	s.mu.Lock()
	last := s.lastURL
	s.mu.Unlock()
	if last == "" {
		return
	}
	if !s.loading.CompareAndSwap(false, true) {
		return
	}
	defer s.loading.Store(false)
	s.request(ctx, last)
}

// UpdateSearch sets a new search term. Equal terms are a no-op. All state is
// reset; an empty term falls back to the default listing, a non-empty one
// schedules a debounced search where only the latest call's request is ever
// sent.
func (s *Service) UpdateSearch(term string) {
	s.mu.Lock()
	if term == s.term {
		s.mu.Unlock()
		return
	}
	s.term = term
	s.mu.Unlock()

	s.supersedeSearch(term)
	s.notify()

	if term == "" {
		s.LoadNew(context.Background())
	}
}

// ChangeColumnCount redistributes all existing photos into a fresh column
// set. Full recompute, not incremental.
func (s *Service) ChangeColumnCount(n int) {
	if n < 1 {
		return
	}
	s.mu.Lock()
	if n == s.colCount {
		s.mu.Unlock()
		return
	}
	s.colCount = n
	s.columns = Rebuild(s.photos, n)
	s.mu.Unlock()
	s.notify()
}

// Snapshot is the observable state exposed to the frontend.
type Snapshot struct {
	Loading     bool                 `json:"loading"`
	Error       string               `json:"error,omitempty"`
	Query       string               `json:"query"`
	ColumnCount int                  `json:"column_count"`
	Photos      []unsplash.Photo     `json:"photos"`
	Columns     [][]unsplash.Photo   `json:"columns"`
}

func (s *Service) Snapshot() Snapshot {
	loading := s.loading.Load() || s.searchBusy()
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Loading:     loading,
		Error:       s.lastErr,
		Query:       s.term,
		ColumnCount: s.colCount,
		Photos:      append([]unsplash.Photo(nil), s.photos...),
		Columns:     s.columns.Columns(),
	}
}

// LastURL reports the most recently attempted request URL.
func (s *Service) LastURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastURL
}

// resetLocked clears photos, columns and pagination together; the three are
// never reset partially. Caller holds s.mu.
func (s *Service) resetLocked() {
	s.photos = nil
	s.columns = NewColumnSet(s.colCount)
	s.links = map[string]string{}
	s.lastErr = ""
}

// request issues one fetch and folds the outcome into feed state. Failures
// are recorded as the user-visible error string, never returned.
func (s *Service) request(ctx context.Context, rawURL string) {
	s.mu.Lock()
	s.lastURL = rawURL
	s.lastErr = ""
	s.mu.Unlock()

	page, err := s.client.Fetch(ctx, rawURL)

	s.mu.Lock()
	if ctx.Err() != nil {
		// Superseded search; the response is discarded with no side effects.
		// Checked under s.mu: the superseding cancel happens before the new
		// term's reset, so a stale response can never apply after it.
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.lastErr = err.Error()
		s.log.Printf("fetch %s failed: %v", rawURL, err)
	} else {
		s.links = page.Links
		for _, p := range page.Photos {
			s.photos = append(s.photos, p)
			s.columns.Add(p)
		}
	}
	s.mu.Unlock()
	s.notify()
}

// supersedeSearch retires any pending or in-flight search and, for a
// non-empty term, schedules its replacement. Generation bump, context cancel,
// state reset and timer registration all happen under searchMu so timer
// registration order always matches generation order: a concurrent caller
// cannot slip an older generation's timer in after a newer one's. The cancel
// precedes the reset, so a superseded fetch that already returned can never
// fold its photos into the freshly reset state (request rechecks its context
// under s.mu before applying).
func (s *Service) supersedeSearch(term string) {
	s.searchMu.Lock()
	defer s.searchMu.Unlock()
	s.searchGen++
	gen := s.searchGen
	s.searchActive = term != ""
	if s.searchCancel != nil {
		s.searchCancel()
		s.searchCancel = nil
	}
	if term == "" {
		s.deb.Cancel()
	}

	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()

	if term != "" {
		s.deb.Debounce(func() { s.runSearch(term, gen) })
	}
}

func (s *Service) runSearch(term string, gen uint64) {
	s.searchMu.Lock()
	if gen != s.searchGen {
		// Superseded while waiting out the quiet period.
		s.searchMu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.searchCancel = cancel
	s.searchMu.Unlock()

	s.request(ctx, s.client.SearchURL(term, 1))

	s.searchMu.Lock()
	if gen == s.searchGen {
		s.searchActive = false
		s.searchCancel = nil
	}
	s.searchMu.Unlock()
	s.notify()
}

func (s *Service) searchBusy() bool {
	s.searchMu.Lock()
	defer s.searchMu.Unlock()
	return s.searchActive
}

func (s *Service) notify() {
	if s.bus != nil {
		s.bus.Publish()
	}
}
