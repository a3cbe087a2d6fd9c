package service

import "github.com/moviehub/catalog-client/internal/core/domain"

// View identifies a navigable screen of the client.
type View string

const (
	ViewHome           View = "home"
	ViewLogin          View = "login"
	ViewRegister       View = "register"
	ViewCatalog        View = "catalog"
	ViewMovieDetails   View = "movie_details"
	ViewAdminDashboard View = "admin_dashboard"
	ViewAdminUsers     View = "admin_users"
	ViewAdminMovies    View = "admin_movies"
)

// RequiresAuth reports whether the view needs an authenticated session.
func (v View) RequiresAuth() bool {
	switch v {
	case ViewCatalog, ViewMovieDetails:
		return true
	}
	return v.RequiresAdmin()
}

// RequiresAdmin reports whether the view needs the admin role.
func (v View) RequiresAdmin() bool {
	switch v {
	case ViewAdminDashboard, ViewAdminUsers, ViewAdminMovies:
		return true
	}
	return false
}

// Decision is the outcome of an access check. When Allow is false, RedirectTo
// names the view the caller must navigate to instead.
type Decision struct {
	Allow      bool
	RedirectTo View
}

// CanEnter decides whether the given identity may render the requested view.
// It is a pure function evaluated on every navigation attempt; rules are
// checked in order and the first match wins:
//
//  1. Auth-required view with no session → redirect to login.
//  2. Admin-required view without the admin role → redirect to the catalog.
//  3. The public catalog with the admin role → redirect to the admin
//     dashboard (admins never see the public catalog).
//  4. Otherwise allow.
func CanEnter(view View, identity *domain.Identity) Decision {
	switch {
	case view.RequiresAuth() && identity == nil:
		return Decision{RedirectTo: ViewLogin}
	case view.RequiresAdmin() && !identity.IsAdmin():
		return Decision{RedirectTo: ViewCatalog}
	case view == ViewCatalog && identity.IsAdmin():
		return Decision{RedirectTo: ViewAdminDashboard}
	default:
		return Decision{Allow: true}
	}
}
