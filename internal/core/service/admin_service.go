package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/moviehub/catalog-client/internal/core/domain"
	"github.com/moviehub/catalog-client/internal/core/ports"
	"github.com/moviehub/catalog-client/internal/metrics"
)

// AdminService runs the catalog and user mutation workflows. Each mutation is
// one request followed, on success, by a re-fetch of the affected list; on
// failure the prior state is left untouched. The super-admin invariants are
// enforced locally before any request is sent; the backend is assumed to
// enforce them as well.
type AdminService struct {
	backend ports.BackendGateway
	session IdentitySource
	catalog *CatalogService
	policy  domain.SuperAdminPolicy
	forms   *formValidator
	log     zerolog.Logger
}

func NewAdminService(
	backend ports.BackendGateway,
	session IdentitySource,
	catalog *CatalogService,
	policy domain.SuperAdminPolicy,
	log zerolog.Logger,
) *AdminService {
	return &AdminService{
		backend: backend,
		session: session,
		catalog: catalog,
		policy:  policy,
		forms:   newFormValidator(),
		log:     log,
	}
}

// MovieForm carries raw form input. Numeric fields arrive as strings and are
// coerced at this boundary; malformed numbers are rejected before submission.
type MovieForm struct {
	Title      string `validate:"required"`
	Author     string
	Director   string
	Year       string
	Image      string
	CategoryID string `validate:"required"`
}

func (s *AdminService) parseMovieForm(form MovieForm) (ports.MovieInput, error) {
	if err := s.forms.Validate(form); err != nil {
		return ports.MovieInput{}, err
	}

	categoryID, err := strconv.Atoi(form.CategoryID)
	if err != nil {
		return ports.MovieInput{}, errors.New("category must be a number")
	}

	var year int
	if form.Year != "" {
		year, err = strconv.Atoi(form.Year)
		if err != nil {
			return ports.MovieInput{}, errors.New("year must be a number")
		}
	}

	return ports.MovieInput{
		Title:      form.Title,
		Author:     form.Author,
		Director:   form.Director,
		Year:       year,
		Image:      form.Image,
		CategoryID: categoryID,
	}, nil
}

// CreateMovie adds a movie and refreshes the catalog page.
func (s *AdminService) CreateMovie(ctx context.Context, form MovieForm) error {
	input, err := s.parseMovieForm(form)
	if err != nil {
		metrics.AdminMutationsTotal.WithLabelValues("movie_create", "rejected").Inc()
		return err
	}

	if _, err := s.backend.CreateMovie(ctx, input); err != nil {
		metrics.AdminMutationsTotal.WithLabelValues("movie_create", "error").Inc()
		s.log.Error().Err(err).Str("title", input.Title).Msg("movie create failed")
		return fmt.Errorf("create movie: %w", err)
	}

	metrics.AdminMutationsTotal.WithLabelValues("movie_create", "success").Inc()
	s.log.Info().Str("title", input.Title).Msg("movie created")
	return s.refreshCatalog(ctx)
}

// UpdateMovie edits a movie and refreshes the catalog page.
func (s *AdminService) UpdateMovie(ctx context.Context, id int, form MovieForm) error {
	input, err := s.parseMovieForm(form)
	if err != nil {
		metrics.AdminMutationsTotal.WithLabelValues("movie_update", "rejected").Inc()
		return err
	}

	if _, err := s.backend.UpdateMovie(ctx, id, input); err != nil {
		metrics.AdminMutationsTotal.WithLabelValues("movie_update", "error").Inc()
		s.log.Error().Err(err).Int("movie_id", id).Msg("movie update failed")
		return fmt.Errorf("update movie: %w", err)
	}

	metrics.AdminMutationsTotal.WithLabelValues("movie_update", "success").Inc()
	s.log.Info().Int("movie_id", id).Msg("movie updated")
	return s.refreshCatalog(ctx)
}

// DeleteMovie removes a movie and refreshes the catalog page so pagination
// resynchronizes with the shrunken catalog.
func (s *AdminService) DeleteMovie(ctx context.Context, id int) error {
	if err := s.backend.DeleteMovie(ctx, id); err != nil {
		metrics.AdminMutationsTotal.WithLabelValues("movie_delete", "error").Inc()
		s.log.Error().Err(err).Int("movie_id", id).Msg("movie delete failed")
		return fmt.Errorf("delete movie: %w", err)
	}

	metrics.AdminMutationsTotal.WithLabelValues("movie_delete", "success").Inc()
	s.log.Info().Int("movie_id", id).Msg("movie deleted")
	return s.refreshCatalog(ctx)
}

func (s *AdminService) refreshCatalog(ctx context.Context) error {
	if _, err := s.catalog.FetchPage(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
		return err
	}
	return nil
}

// Users lists all platform accounts.
func (s *AdminService) Users(ctx context.Context) ([]domain.User, error) {
	users, err := s.backend.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// PromoteUser grants the admin role and returns the refreshed user list.
// Only the super admin may change roles, and the super admin account itself
// can never be the target.
func (s *AdminService) PromoteUser(ctx context.Context, target domain.User) ([]domain.User, error) {
	return s.mutateRole(ctx, "user_promote", target, s.backend.PromoteUser)
}

// DemoteUser revokes the admin role and returns the refreshed user list.
func (s *AdminService) DemoteUser(ctx context.Context, target domain.User) ([]domain.User, error) {
	return s.mutateRole(ctx, "user_demote", target, s.backend.DemoteUser)
}

func (s *AdminService) mutateRole(ctx context.Context, kind string, target domain.User, op func(context.Context, int) error) ([]domain.User, error) {
	if s.policy.IsSuperAdmin(target.Email) {
		metrics.AdminMutationsTotal.WithLabelValues(kind, "rejected").Inc()
		return nil, domain.ErrSuperAdminProtected
	}

	caller := s.session.CurrentIdentity()
	if !caller.IsAdmin() || !s.policy.IsSuperAdminIdentity(caller) {
		metrics.AdminMutationsTotal.WithLabelValues(kind, "rejected").Inc()
		return nil, domain.ErrNotSuperAdmin
	}

	if err := op(ctx, target.ID); err != nil {
		metrics.AdminMutationsTotal.WithLabelValues(kind, "error").Inc()
		s.log.Error().Err(err).Int("user_id", target.ID).Str("kind", kind).Msg("role mutation failed")
		return nil, fmt.Errorf("%s: %w", kind, err)
	}

	metrics.AdminMutationsTotal.WithLabelValues(kind, "success").Inc()
	s.log.Info().Int("user_id", target.ID).Str("kind", kind).Msg("role mutated")
	return s.Users(ctx)
}

// DeleteUser removes an account and returns the refreshed user list. The
// super admin can never be deleted, by any caller.
func (s *AdminService) DeleteUser(ctx context.Context, target domain.User) ([]domain.User, error) {
	if s.policy.IsSuperAdmin(target.Email) {
		metrics.AdminMutationsTotal.WithLabelValues("user_delete", "rejected").Inc()
		return nil, domain.ErrSuperAdminProtected
	}

	caller := s.session.CurrentIdentity()
	if !caller.IsAdmin() {
		metrics.AdminMutationsTotal.WithLabelValues("user_delete", "rejected").Inc()
		return nil, domain.ErrNotAdmin
	}

	if err := s.backend.DeleteUser(ctx, target.ID); err != nil {
		metrics.AdminMutationsTotal.WithLabelValues("user_delete", "error").Inc()
		s.log.Error().Err(err).Int("user_id", target.ID).Msg("user delete failed")
		return nil, fmt.Errorf("delete user: %w", err)
	}

	metrics.AdminMutationsTotal.WithLabelValues("user_delete", "success").Inc()
	s.log.Info().Int("user_id", target.ID).Msg("user deleted")
	return s.Users(ctx)
}

// Stats fetches the dashboard payload.
func (s *AdminService) Stats(ctx context.Context) (*ports.AdminStats, error) {
	stats, err := s.backend.AdminStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("admin stats: %w", err)
	}
	return stats, nil
}
