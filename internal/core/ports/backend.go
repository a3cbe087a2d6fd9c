package ports

import (
	"context"

	"github.com/moviehub/catalog-client/internal/core/domain"
)

// AuthResult is returned by a successful login.
type AuthResult struct {
	Token string
	User  domain.User
}

// RegisterInput carries a new account registration.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// ListMoviesInput carries the server-side portion of a catalog query.
// CategoryID zero means "all categories" and is omitted from the request.
type ListMoviesInput struct {
	Page       int
	Limit      int
	CategoryID int
}

// ReviewInput carries a review submission.
type ReviewInput struct {
	MovieID int
	Rating  int
	Comment string
}

// MovieInput carries a movie create or update payload.
type MovieInput struct {
	Title      string
	Author     string
	Director   string
	Year       int
	Image      string
	CategoryID int
}

// StatsCounts holds the dashboard totals.
type StatsCounts struct {
	Movies  int
	Users   int
	Reviews int
}

// MovieRating is a per-movie average used by the dashboard chart.
type MovieRating struct {
	Title         string
	AverageRating float64
}

// RecentUser is a recently registered account shown on the dashboard.
type RecentUser struct {
	ID        int
	Name      string
	Role      string
	CreatedAt string
}

// AdminStats is the dashboard payload.
type AdminStats struct {
	Counts      StatsCounts
	Movies      []MovieRating
	RecentUsers []RecentUser
}

// BackendGateway is the client's view of the platform REST API. The backend
// is the source of truth for pagination, review lists, and average ratings;
// implementations do not retry failed calls.
type BackendGateway interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, input RegisterInput) error

	ListMovies(ctx context.Context, input ListMoviesInput) (*domain.CatalogPage, error)
	GetMovie(ctx context.Context, id int) (*domain.Movie, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)

	SubmitReview(ctx context.Context, input ReviewInput) (*domain.Review, error)
	ReviewsForMovie(ctx context.Context, movieID int) ([]domain.Review, error)

	CreateMovie(ctx context.Context, input MovieInput) (*domain.Movie, error)
	UpdateMovie(ctx context.Context, id int, input MovieInput) (*domain.Movie, error)
	DeleteMovie(ctx context.Context, id int) error

	ListUsers(ctx context.Context) ([]domain.User, error)
	PromoteUser(ctx context.Context, id int) error
	DemoteUser(ctx context.Context, id int) error
	DeleteUser(ctx context.Context, id int) error

	AdminStats(ctx context.Context) (*AdminStats, error)
}
