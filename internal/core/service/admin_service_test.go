package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/moviehub/catalog-client/internal/core/domain"
)

const superEmail = "root@example.com"

func newAdminFixture(caller *domain.Identity) (*AdminService, *stubGateway) {
	gw := newStubGateway()
	catalog := NewCatalogService(gw, 4, zerolog.Nop())
	svc := NewAdminService(gw, staticIdentity{identity: caller}, catalog, domain.NewSuperAdminPolicy(superEmail), zerolog.Nop())
	return svc, gw
}

func superAdmin() *domain.Identity {
	return &domain.Identity{ID: 1, Role: domain.RoleAdmin, Email: superEmail}
}

func plainAdmin() *domain.Identity {
	return &domain.Identity{ID: 2, Role: domain.RoleAdmin, Email: "admin@example.com"}
}

func TestAdminService_CreateMovieRefreshesCatalog(t *testing.T) {
	svc, gw := newAdminFixture(plainAdmin())

	form := MovieForm{Title: "Ran", Director: "Kurosawa", Year: "1985", CategoryID: "2"}
	if err := svc.CreateMovie(context.Background(), form); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if gw.count("CreateMovie") != 1 {
		t.Fatalf("CreateMovie calls = %d, want 1", gw.count("CreateMovie"))
	}
	if gw.count("ListMovies") != 1 {
		t.Fatalf("catalog not refreshed after create")
	}
}

func TestAdminService_MovieFormCoercion(t *testing.T) {
	svc, gw := newAdminFixture(plainAdmin())

	cases := []struct {
		name string
		form MovieForm
	}{
		{"missing title", MovieForm{CategoryID: "1"}},
		{"missing category", MovieForm{Title: "Ran"}},
		{"malformed category", MovieForm{Title: "Ran", CategoryID: "drama"}},
		{"malformed year", MovieForm{Title: "Ran", CategoryID: "1", Year: "nineteen"}},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.CreateMovie(context.Background(), tt.form); err == nil {
				t.Fatalf("expected form rejection")
			}
		})
	}
	if gw.count("CreateMovie") != 0 {
		t.Fatalf("malformed form reached the backend")
	}

	// Empty year stays optional.
	if err := svc.CreateMovie(context.Background(), MovieForm{Title: "Ran", CategoryID: "1"}); err != nil {
		t.Fatalf("optional year rejected: %v", err)
	}
}

func TestAdminService_UpdateAndDeleteMovie(t *testing.T) {
	svc, gw := newAdminFixture(plainAdmin())

	if err := svc.UpdateMovie(context.Background(), 3, MovieForm{Title: "Ran", CategoryID: "1"}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if err := svc.DeleteMovie(context.Background(), 3); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if gw.count("ListMovies") != 2 {
		t.Fatalf("catalog refresh count = %d, want one per mutation", gw.count("ListMovies"))
	}
}

func TestAdminService_DeleteMovieBackendFailure(t *testing.T) {
	svc, gw := newAdminFixture(plainAdmin())
	boom := errors.New("backend down")
	gw.deleteMovieFn = func(context.Context, int) error { return boom }

	if err := svc.DeleteMovie(context.Background(), 3); !errors.Is(err, boom) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if gw.count("ListMovies") != 0 {
		t.Fatalf("catalog refreshed after failed mutation")
	}
}

func TestAdminService_SuperAdminTargetAlwaysProtected(t *testing.T) {
	target := domain.User{ID: 1, Email: "  Root@Example.COM  ", Role: domain.RoleAdmin}

	callers := map[string]*domain.Identity{
		"regular user":     {ID: 9, Role: domain.RoleUser, Email: "u@example.com"},
		"plain admin":      plainAdmin(),
		"super admin self": superAdmin(),
	}
	for name, caller := range callers {
		t.Run(name, func(t *testing.T) {
			svc, gw := newAdminFixture(caller)

			if _, err := svc.DeleteUser(context.Background(), target); !errors.Is(err, domain.ErrSuperAdminProtected) {
				t.Fatalf("delete: expected ErrSuperAdminProtected, got %v", err)
			}
			if _, err := svc.PromoteUser(context.Background(), target); !errors.Is(err, domain.ErrSuperAdminProtected) {
				t.Fatalf("promote: expected ErrSuperAdminProtected, got %v", err)
			}
			if _, err := svc.DemoteUser(context.Background(), target); !errors.Is(err, domain.ErrSuperAdminProtected) {
				t.Fatalf("demote: expected ErrSuperAdminProtected, got %v", err)
			}
			if gw.count("DeleteUser")+gw.count("PromoteUser")+gw.count("DemoteUser") != 0 {
				t.Fatalf("request issued for protected target")
			}
		})
	}
}

func TestAdminService_RoleMutationRequiresSuperAdmin(t *testing.T) {
	target := domain.User{ID: 7, Email: "user@example.com", Role: domain.RoleUser}

	svc, gw := newAdminFixture(plainAdmin())
	if _, err := svc.PromoteUser(context.Background(), target); !errors.Is(err, domain.ErrNotSuperAdmin) {
		t.Fatalf("expected ErrNotSuperAdmin, got %v", err)
	}
	if gw.count("PromoteUser") != 0 {
		t.Fatalf("promotion request issued by non-super admin")
	}
}

func TestAdminService_PromoteRefreshesUsers(t *testing.T) {
	target := domain.User{ID: 7, Email: "user@example.com", Role: domain.RoleUser}

	svc, gw := newAdminFixture(superAdmin())
	gw.listUsersFn = func(context.Context) ([]domain.User, error) {
		return []domain.User{{ID: 7, Email: "user@example.com", Role: domain.RoleAdmin}}, nil
	}

	users, err := svc.PromoteUser(context.Background(), target)
	if err != nil {
		t.Fatalf("promote failed: %v", err)
	}
	if gw.count("PromoteUser") != 1 || gw.count("ListUsers") != 1 {
		t.Fatalf("expected one mutation and one refresh")
	}
	if len(users) != 1 || users[0].Role != domain.RoleAdmin {
		t.Fatalf("refreshed list not returned: %+v", users)
	}
}

func TestAdminService_DeleteUserRequiresAdminCaller(t *testing.T) {
	target := domain.User{ID: 7, Email: "user@example.com"}

	svc, gw := newAdminFixture(&domain.Identity{ID: 9, Role: domain.RoleUser, Email: "u@example.com"})
	if _, err := svc.DeleteUser(context.Background(), target); !errors.Is(err, domain.ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin, got %v", err)
	}
	if gw.count("DeleteUser") != 0 {
		t.Fatalf("delete request issued by non-admin")
	}
}

func TestAdminService_SuperAdminSelfDemotionRefused(t *testing.T) {
	svc, gw := newAdminFixture(superAdmin())
	self := domain.User{ID: 1, Email: superEmail, Role: domain.RoleAdmin}

	if _, err := svc.DemoteUser(context.Background(), self); !errors.Is(err, domain.ErrSuperAdminProtected) {
		t.Fatalf("expected ErrSuperAdminProtected, got %v", err)
	}
	if gw.count("DemoteUser") != 0 {
		t.Fatalf("self-demotion issued a request")
	}
}
