package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/moviehub/catalog-client/internal/core/domain"
	"github.com/moviehub/catalog-client/internal/core/ports"
	"github.com/moviehub/catalog-client/internal/metrics"
)

// IdentitySource abstracts the session store for consumers that only read the
// current identity.
type IdentitySource interface {
	CurrentIdentity() *domain.Identity
}

// ReviewService enforces the one-review-per-user-per-movie invariant and
// keeps the review list server-authoritative after a submission.
type ReviewService struct {
	backend ports.BackendGateway
	session IdentitySource
	forms   *formValidator
	log     zerolog.Logger
}

func NewReviewService(backend ports.BackendGateway, session IdentitySource, log zerolog.Logger) *ReviewService {
	return &ReviewService{
		backend: backend,
		session: session,
		forms:   newFormValidator(),
		log:     log,
	}
}

type reviewForm struct {
	Rating  int    `validate:"required,min=1,max=5"`
	Comment string `validate:"required"`
}

// CanSubmit reports whether the identity may submit a review for the movie:
// it must be present and must not already appear in the movie's review list.
func (s *ReviewService) CanSubmit(movie *domain.Movie, identity *domain.Identity) bool {
	if movie == nil || identity == nil {
		return false
	}
	return movie.ReviewBy(identity.ID) == nil
}

// Submit posts a review and re-fetches the movie so the displayed review list
// and average rating are server-authoritative, never locally recomputed.
// Local refusals (no session, invalid form, already reviewed) send no request.
func (s *ReviewService) Submit(ctx context.Context, movieID, rating int, comment string) (*domain.Movie, error) {
	identity := s.session.CurrentIdentity()
	if identity == nil {
		metrics.ReviewsSubmittedTotal.WithLabelValues("rejected").Inc()
		return nil, domain.ErrNoSession
	}

	if err := s.forms.Validate(reviewForm{Rating: rating, Comment: comment}); err != nil {
		metrics.ReviewsSubmittedTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	movie, err := s.backend.GetMovie(ctx, movieID)
	if err != nil {
		metrics.ReviewsSubmittedTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("submit review: %w", err)
	}
	if !s.CanSubmit(movie, identity) {
		metrics.ReviewsSubmittedTotal.WithLabelValues("rejected").Inc()
		return nil, domain.ErrAlreadyReviewed
	}

	if _, err := s.backend.SubmitReview(ctx, ports.ReviewInput{
		MovieID: movieID,
		Rating:  rating,
		Comment: comment,
	}); err != nil {
		metrics.ReviewsSubmittedTotal.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Int("movie_id", movieID).Msg("review submission failed")
		return nil, fmt.Errorf("submit review: %w", err)
	}

	refreshed, err := s.backend.GetMovie(ctx, movieID)
	if err != nil {
		metrics.ReviewsSubmittedTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("submit review: refresh movie: %w", err)
	}

	metrics.ReviewsSubmittedTotal.WithLabelValues("success").Inc()
	s.log.Info().Int("movie_id", movieID).Int("user_id", identity.ID).Int("rating", rating).Msg("review submitted")

	return refreshed, nil
}

// ReviewsFor fetches the standalone review list for a movie.
func (s *ReviewService) ReviewsFor(ctx context.Context, movieID int) ([]domain.Review, error) {
	reviews, err := s.backend.ReviewsForMovie(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}
