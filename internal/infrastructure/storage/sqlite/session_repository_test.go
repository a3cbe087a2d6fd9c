package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/moviehub/catalog-client/internal/core/domain"
)

func openTestRepo(t *testing.T) *SessionRepository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSessionRepository_RoundTrip(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	identity := &domain.Identity{ID: 7, Name: "ada", Role: domain.RoleAdmin, Email: "ada@example.com"}
	if err := repo.Save(ctx, "tok-1", identity); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	token, loaded, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if token != "tok-1" {
		t.Fatalf("token = %q, want tok-1", token)
	}
	if loaded == nil || *loaded != *identity {
		t.Fatalf("identity = %+v, want %+v", loaded, identity)
	}
}

func TestSessionRepository_SaveReplacesWholesale(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	if err := repo.Save(ctx, "old", &domain.Identity{ID: 1}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := repo.Save(ctx, "new", &domain.Identity{ID: 2}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	token, identity, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if token != "new" || identity == nil || identity.ID != 2 {
		t.Fatalf("stale session survived: token=%q identity=%+v", token, identity)
	}
}

func TestSessionRepository_LoadEmpty(t *testing.T) {
	repo := openTestRepo(t)

	token, identity, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if token != "" || identity != nil {
		t.Fatalf("expected empty store, got token=%q identity=%+v", token, identity)
	}
}

func TestSessionRepository_Clear(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	if err := repo.Save(ctx, "tok", &domain.Identity{ID: 1}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	token, identity, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if token != "" || identity != nil {
		t.Fatalf("session survived clear")
	}
}
