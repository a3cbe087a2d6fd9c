package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/moviehub/catalog-client/internal/core/domain"
	"github.com/moviehub/catalog-client/internal/core/ports"
	"github.com/moviehub/catalog-client/internal/metrics"
)

// ErrSuperseded is returned by FetchPage when a newer request was issued
// before this one resolved. The response is dropped, never applied; callers
// treat it as a no-op, not a failure.
var ErrSuperseded = errors.New("catalog fetch superseded by a newer request")

// jumpDistance is how far the page-jump operation moves in either direction.
const jumpDistance = 5

// CatalogQuery is the page/filter/search tuple driving the catalog display.
type CatalogQuery struct {
	Page       int
	PageSize   int
	CategoryID int // 0 = all categories
	SearchTerm string
}

// CatalogService translates the current CatalogQuery into backend fetches and
// holds the last applied page. Ordering guarantee: a fetch issued after
// another supersedes it: a stale response is never applied over a newer one
// (enforced with a monotonically increasing sequence number, since in-flight
// calls are not aborted).
type CatalogService struct {
	mu      sync.Mutex
	backend ports.BackendGateway
	log     zerolog.Logger

	query   CatalogQuery
	page    domain.CatalogPage
	lastErr error
	seq     uint64
}

func NewCatalogService(backend ports.BackendGateway, pageSize int, log zerolog.Logger) *CatalogService {
	if pageSize <= 0 {
		pageSize = 4
	}
	return &CatalogService{
		backend: backend,
		log:     log,
		query:   CatalogQuery{Page: 1, PageSize: pageSize},
		page:    domain.CatalogPage{TotalPages: 1},
	}
}

// FetchPage fetches the page selected by the current query. The backend owns
// the totalPages computation; SearchTerm plays no part in the request. On
// failure the previously applied page is left untouched and the error is
// recorded as the transient LastError.
func (s *CatalogService) FetchPage(ctx context.Context) (*domain.CatalogPage, error) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	q := s.query
	s.mu.Unlock()

	start := time.Now()
	page, err := s.backend.ListMovies(ctx, ports.ListMoviesInput{
		Page:       q.Page,
		Limit:      q.PageSize,
		CategoryID: q.CategoryID,
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		metrics.CatalogStaleDropsTotal.Inc()
		s.log.Debug().Int("page", q.Page).Msg("stale catalog response dropped")
		return nil, ErrSuperseded
	}

	if err != nil {
		s.lastErr = err
		metrics.CatalogFetchesTotal.WithLabelValues("error").Inc()
		metrics.CatalogFetchDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		s.log.Error().Err(err).Int("page", q.Page).Msg("catalog fetch failed")
		return nil, fmt.Errorf("fetch catalog page: %w", err)
	}

	if page.TotalPages < 1 {
		page.TotalPages = 1
	}
	s.page = *page
	s.lastErr = nil
	// A response that shrinks totalPages can leave the query pointing past
	// the end; re-clamp so the next fetch targets a real page.
	s.query.Page = clampPage(s.query.Page, page.TotalPages)

	metrics.CatalogFetchesTotal.WithLabelValues("success").Inc()
	metrics.CatalogFetchDuration.WithLabelValues("success").Observe(time.Since(start).Seconds())
	s.log.Debug().Int("page", q.Page).Int("total_pages", page.TotalPages).Int("items", len(page.Items)).Msg("catalog page applied")

	applied := s.page
	return &applied, nil
}

// SetCategory changes the category filter. Any actual change resets the page
// to 1.
func (s *CatalogService) SetCategory(categoryID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.query.CategoryID == categoryID {
		return
	}
	s.query.CategoryID = categoryID
	s.query.Page = 1
}

// SetSearch changes the free-text filter. Any actual change resets the page
// to 1. The term itself is applied client-side only (see VisibleItems).
func (s *CatalogService) SetSearch(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.query.SearchTerm == term {
		return
	}
	s.query.SearchTerm = term
	s.query.Page = 1
}

// GoToPage moves to the given page, clamped into [1, totalPages].
func (s *CatalogService) GoToPage(page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query.Page = clampPage(page, s.page.TotalPages)
}

// JumpForward moves the page forward by the jump distance, clamped.
func (s *CatalogService) JumpForward() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query.Page = clampPage(s.query.Page+jumpDistance, s.page.TotalPages)
}

// JumpBackward moves the page backward by the jump distance, clamped.
func (s *CatalogService) JumpBackward() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query.Page = clampPage(s.query.Page-jumpDistance, s.page.TotalPages)
}

// Query returns the current query tuple.
func (s *CatalogService) Query() CatalogQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// CurrentPage returns the last applied page.
func (s *CatalogService) CurrentPage() domain.CatalogPage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// LastError returns the transient error of the most recent fetch, cleared by
// the next successful one.
func (s *CatalogService) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// VisibleItems applies the search term to the already-fetched page's items.
// Search narrows the visible page only: it never issues a request and never
// changes totalPages.
func (s *CatalogService) VisibleItems() []domain.Movie {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.query.SearchTerm == "" {
		items := make([]domain.Movie, len(s.page.Items))
		copy(items, s.page.Items)
		return items
	}

	visible := make([]domain.Movie, 0, len(s.page.Items))
	for _, m := range s.page.Items {
		if m.MatchesSearch(s.query.SearchTerm) {
			visible = append(visible, m)
		}
	}
	return visible
}

// Categories lists the catalog categories for filter and form population.
func (s *CatalogService) Categories(ctx context.Context) ([]domain.Category, error) {
	cats, err := s.backend.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

func clampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}
