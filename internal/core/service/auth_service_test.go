package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/moviehub/catalog-client/internal/core/domain"
	"github.com/moviehub/catalog-client/internal/core/ports"
)

func newAuthFixture(gw *stubGateway) (*AuthService, *SessionStore) {
	store := NewSessionStore(&stubSessionRepo{}, identityDecoder(domain.Identity{ID: 3, Name: "noa", Role: domain.RoleUser}), zerolog.Nop())
	return NewAuthService(gw, store, zerolog.Nop()), store
}

func TestAuthService_AuthenticateSuccess(t *testing.T) {
	gw := newStubGateway()
	gw.loginFn = func(_ context.Context, email, password string) (*ports.AuthResult, error) {
		if email != "noa@example.com" || password != "s3cret" {
			t.Fatalf("unexpected credentials: %s %s", email, password)
		}
		return &ports.AuthResult{Token: "tok", User: domain.User{ID: 3, Name: "noa", Role: domain.RoleUser}}, nil
	}
	svc, store := newAuthFixture(gw)

	user, err := svc.Authenticate(context.Background(), "noa@example.com", "s3cret")
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("unexpected role: %s", user.Role)
	}
	if got := store.CurrentIdentity(); got == nil || got.ID != 3 {
		t.Fatalf("session not started: %+v", got)
	}
}

func TestAuthService_AuthenticateFailureLeavesSessionUntouched(t *testing.T) {
	gw := newStubGateway()
	gw.loginFn = func(context.Context, string, string) (*ports.AuthResult, error) {
		return nil, domain.ErrInvalidCredentials
	}
	svc, store := newAuthFixture(gw)

	if _, err := svc.Authenticate(context.Background(), "noa@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if store.CurrentIdentity() != nil {
		t.Fatalf("session mutated by failed login")
	}
}

func TestAuthService_AuthenticateValidation(t *testing.T) {
	gw := newStubGateway()
	svc, _ := newAuthFixture(gw)

	if _, err := svc.Authenticate(context.Background(), "not-an-email", "pass"); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := svc.Authenticate(context.Background(), "noa@example.com", ""); err == nil {
		t.Fatalf("expected validation error")
	}
	if gw.count("Login") != 0 {
		t.Fatalf("invalid form reached the backend")
	}
}

func TestAuthService_SignUp(t *testing.T) {
	gw := newStubGateway()
	var got ports.RegisterInput
	gw.registerFn = func(_ context.Context, input ports.RegisterInput) error {
		got = input
		return nil
	}
	svc, store := newAuthFixture(gw)

	if err := svc.SignUp(context.Background(), "Noa", "noa@example.com", "s3cret"); err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if got.Name != "Noa" || got.Email != "noa@example.com" {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if store.CurrentIdentity() != nil {
		t.Fatalf("signup must not start a session")
	}
}

func TestAuthService_SignUpValidation(t *testing.T) {
	gw := newStubGateway()
	svc, _ := newAuthFixture(gw)

	if err := svc.SignUp(context.Background(), "", "noa@example.com", "s3cret"); err == nil {
		t.Fatalf("expected validation error for missing name")
	}
	if err := svc.SignUp(context.Background(), "Noa", "noa@example.com", "abc"); err == nil {
		t.Fatalf("expected validation error for short password")
	}
	if gw.count("Register") != 0 {
		t.Fatalf("invalid form reached the backend")
	}
}
