package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/moviehub/catalog-client/internal/core/domain"
	"github.com/moviehub/catalog-client/internal/core/service"
	"github.com/moviehub/catalog-client/internal/infrastructure/backend"
	"github.com/moviehub/catalog-client/internal/infrastructure/config"
	"github.com/moviehub/catalog-client/internal/infrastructure/storage/sqlite"
	"github.com/moviehub/catalog-client/internal/infrastructure/token"
	"github.com/moviehub/catalog-client/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	sessions, err := sqlite.Open(cfg.SessionDBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open session storage")
	}
	defer sessions.Close()

	store := service.NewSessionStore(sessions, token.NewDecoder(), log)
	gateway := backend.NewClient(cfg.APIBaseURL, store, cfg.HTTPTimeout, log)
	catalog := service.NewCatalogService(gateway, cfg.PageSize, log)
	auth := service.NewAuthService(gateway, store, log)
	reviews := service.NewReviewService(gateway, store, log)
	admin := service.NewAdminService(gateway, store, catalog, domain.NewSuperAdminPolicy(cfg.SuperAdminEmail), log)

	ctx := context.Background()
	if err := store.Restore(ctx); err != nil {
		log.Warn().Err(err).Msg("could not restore previous session")
	}

	args := os.Args[1:]
	switch {
	case len(args) == 3 && args[0] == "login":
		user, err := auth.Authenticate(ctx, args[1], args[2])
		if err != nil {
			log.Fatal().Err(err).Msg("login failed")
		}
		fmt.Printf("logged in as %s (%s)\n", user.Name, user.Role)
	case len(args) == 1 && args[0] == "logout":
		store.Logout(ctx)
		fmt.Println("logged out")
	case len(args) >= 4 && args[0] == "review":
		movieID, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal().Msg("review needs a numeric movie id")
		}
		rating, err := strconv.Atoi(args[2])
		if err != nil {
			log.Fatal().Msg("review needs a numeric rating")
		}
		movie, err := reviews.Submit(ctx, movieID, rating, strings.Join(args[3:], " "))
		if err != nil {
			log.Fatal().Err(err).Msg("review rejected")
		}
		fmt.Printf("%s now averages %.1f over %d reviews\n", movie.Title, movie.AverageRating, len(movie.Reviews))
	case len(args) == 1 && args[0] == "stats":
		showStats(ctx, admin, store.CurrentIdentity())
	default:
		showCatalog(ctx, catalog, store.CurrentIdentity())
	}
}

func showStats(ctx context.Context, admin *service.AdminService, identity *domain.Identity) {
	if decision := service.CanEnter(service.ViewAdminDashboard, identity); !decision.Allow {
		fmt.Printf("dashboard unavailable, go to: %s\n", decision.RedirectTo)
		return
	}

	stats, err := admin.Stats(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stats fetch failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("movies: %d  users: %d  reviews: %d\n", stats.Counts.Movies, stats.Counts.Users, stats.Counts.Reviews)
	for _, m := range stats.Movies {
		fmt.Printf("  %s avg %.1f\n", m.Title, m.AverageRating)
	}
}

func showCatalog(ctx context.Context, catalog *service.CatalogService, identity *domain.Identity) {
	if decision := service.CanEnter(service.ViewCatalog, identity); !decision.Allow {
		fmt.Printf("catalog unavailable, go to: %s\n", decision.RedirectTo)
		return
	}

	page, err := catalog.FetchPage(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "catalog fetch failed: %v\n", err)
		os.Exit(1)
	}

	q := catalog.Query()
	fmt.Printf("page %d of %d\n", q.Page, page.TotalPages)
	for _, m := range catalog.VisibleItems() {
		fmt.Printf("  %s (%d) by %s, avg %.1f\n", m.Title, m.Year, m.Director, m.AverageRating)
	}
}
