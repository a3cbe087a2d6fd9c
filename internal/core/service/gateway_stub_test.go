package service

import (
	"context"
	"sync"

	"github.com/moviehub/catalog-client/internal/core/domain"
	"github.com/moviehub/catalog-client/internal/core/ports"
)

// stubGateway is a controllable ports.BackendGateway. Each operation counts
// its calls and delegates to an optional function field.
type stubGateway struct {
	mu    sync.Mutex
	calls map[string]int

	loginFn        func(ctx context.Context, email, password string) (*ports.AuthResult, error)
	registerFn     func(ctx context.Context, input ports.RegisterInput) error
	listMoviesFn   func(ctx context.Context, input ports.ListMoviesInput) (*domain.CatalogPage, error)
	getMovieFn     func(ctx context.Context, id int) (*domain.Movie, error)
	categoriesFn   func(ctx context.Context) ([]domain.Category, error)
	submitReviewFn func(ctx context.Context, input ports.ReviewInput) (*domain.Review, error)
	reviewsFn      func(ctx context.Context, movieID int) ([]domain.Review, error)
	createMovieFn  func(ctx context.Context, input ports.MovieInput) (*domain.Movie, error)
	updateMovieFn  func(ctx context.Context, id int, input ports.MovieInput) (*domain.Movie, error)
	deleteMovieFn  func(ctx context.Context, id int) error
	listUsersFn    func(ctx context.Context) ([]domain.User, error)
	promoteFn      func(ctx context.Context, id int) error
	demoteFn       func(ctx context.Context, id int) error
	deleteUserFn   func(ctx context.Context, id int) error
	statsFn        func(ctx context.Context) (*ports.AdminStats, error)
}

func newStubGateway() *stubGateway {
	return &stubGateway{calls: make(map[string]int)}
}

func (g *stubGateway) record(op string) {
	g.mu.Lock()
	g.calls[op]++
	g.mu.Unlock()
}

func (g *stubGateway) count(op string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[op]
}

func (g *stubGateway) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	g.record("Login")
	if g.loginFn != nil {
		return g.loginFn(ctx, email, password)
	}
	return &ports.AuthResult{}, nil
}

func (g *stubGateway) Register(ctx context.Context, input ports.RegisterInput) error {
	g.record("Register")
	if g.registerFn != nil {
		return g.registerFn(ctx, input)
	}
	return nil
}

func (g *stubGateway) ListMovies(ctx context.Context, input ports.ListMoviesInput) (*domain.CatalogPage, error) {
	g.record("ListMovies")
	if g.listMoviesFn != nil {
		return g.listMoviesFn(ctx, input)
	}
	return &domain.CatalogPage{TotalPages: 1}, nil
}

func (g *stubGateway) GetMovie(ctx context.Context, id int) (*domain.Movie, error) {
	g.record("GetMovie")
	if g.getMovieFn != nil {
		return g.getMovieFn(ctx, id)
	}
	return &domain.Movie{ID: id}, nil
}

func (g *stubGateway) ListCategories(ctx context.Context) ([]domain.Category, error) {
	g.record("ListCategories")
	if g.categoriesFn != nil {
		return g.categoriesFn(ctx)
	}
	return nil, nil
}

func (g *stubGateway) SubmitReview(ctx context.Context, input ports.ReviewInput) (*domain.Review, error) {
	g.record("SubmitReview")
	if g.submitReviewFn != nil {
		return g.submitReviewFn(ctx, input)
	}
	return &domain.Review{}, nil
}

func (g *stubGateway) ReviewsForMovie(ctx context.Context, movieID int) ([]domain.Review, error) {
	g.record("ReviewsForMovie")
	if g.reviewsFn != nil {
		return g.reviewsFn(ctx, movieID)
	}
	return nil, nil
}

func (g *stubGateway) CreateMovie(ctx context.Context, input ports.MovieInput) (*domain.Movie, error) {
	g.record("CreateMovie")
	if g.createMovieFn != nil {
		return g.createMovieFn(ctx, input)
	}
	return &domain.Movie{}, nil
}

func (g *stubGateway) UpdateMovie(ctx context.Context, id int, input ports.MovieInput) (*domain.Movie, error) {
	g.record("UpdateMovie")
	if g.updateMovieFn != nil {
		return g.updateMovieFn(ctx, id, input)
	}
	return &domain.Movie{ID: id}, nil
}

func (g *stubGateway) DeleteMovie(ctx context.Context, id int) error {
	g.record("DeleteMovie")
	if g.deleteMovieFn != nil {
		return g.deleteMovieFn(ctx, id)
	}
	return nil
}

func (g *stubGateway) ListUsers(ctx context.Context) ([]domain.User, error) {
	g.record("ListUsers")
	if g.listUsersFn != nil {
		return g.listUsersFn(ctx)
	}
	return nil, nil
}

func (g *stubGateway) PromoteUser(ctx context.Context, id int) error {
	g.record("PromoteUser")
	if g.promoteFn != nil {
		return g.promoteFn(ctx, id)
	}
	return nil
}

func (g *stubGateway) DemoteUser(ctx context.Context, id int) error {
	g.record("DemoteUser")
	if g.demoteFn != nil {
		return g.demoteFn(ctx, id)
	}
	return nil
}

func (g *stubGateway) DeleteUser(ctx context.Context, id int) error {
	g.record("DeleteUser")
	if g.deleteUserFn != nil {
		return g.deleteUserFn(ctx, id)
	}
	return nil
}

func (g *stubGateway) AdminStats(ctx context.Context) (*ports.AdminStats, error) {
	g.record("AdminStats")
	if g.statsFn != nil {
		return g.statsFn(ctx)
	}
	return &ports.AdminStats{}, nil
}

// staticIdentity satisfies IdentitySource with a fixed identity.
type staticIdentity struct {
	identity *domain.Identity
}

func (s staticIdentity) CurrentIdentity() *domain.Identity {
	if s.identity == nil {
		return nil
	}
	clone := *s.identity
	return &clone
}
