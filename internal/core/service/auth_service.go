package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/moviehub/catalog-client/internal/core/domain"
	"github.com/moviehub/catalog-client/internal/core/ports"
)

// AuthService drives the login and registration forms. Authentication failure
// leaves the session untouched; only a successful backend response feeds the
// session store.
type AuthService struct {
	backend ports.BackendGateway
	session *SessionStore
	forms   *formValidator
	log     zerolog.Logger
}

func NewAuthService(backend ports.BackendGateway, session *SessionStore, log zerolog.Logger) *AuthService {
	return &AuthService{
		backend: backend,
		session: session,
		forms:   newFormValidator(),
		log:     log,
	}
}

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type registerForm struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// Authenticate logs in against the backend and, on success, installs the
// returned credential in the session store. The server user payload is
// returned so callers can route by role.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	if err := s.forms.Validate(loginForm{Email: email, Password: password}); err != nil {
		return nil, err
	}

	result, err := s.backend.Login(ctx, email, password)
	if err != nil {
		s.log.Debug().Err(err).Str("email", email).Msg("authentication failed")
		return nil, err
	}

	if _, err := s.session.Login(ctx, result.Token); err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	user := result.User
	return &user, nil
}

// SignUp registers a new account. It never mutates the session; the caller
// routes to the login view on success.
func (s *AuthService) SignUp(ctx context.Context, name, email, password string) error {
	if err := s.forms.Validate(registerForm{Name: name, Email: email, Password: password}); err != nil {
		return err
	}

	if err := s.backend.Register(ctx, ports.RegisterInput{Name: name, Email: email, Password: password}); err != nil {
		s.log.Debug().Err(err).Str("email", email).Msg("registration failed")
		return err
	}

	s.log.Info().Str("email", email).Msg("account registered")
	return nil
}
