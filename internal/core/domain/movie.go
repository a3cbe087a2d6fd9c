package domain

import (
	"errors"
	"strings"
)

var ErrMovieNotFound = errors.New("movie not found")
var ErrAlreadyReviewed = errors.New("movie already reviewed by this user")

// Category is a movie category as exposed by the backend.
type Category struct {
	ID    int    `json:"id"`
	Label string `json:"category"`
}

// Review is a single user review of a movie.
type Review struct {
	ID       int    `json:"id"`
	MovieID  int    `json:"movie_id"`
	UserID   int    `json:"user_id"`
	UserName string `json:"user_name,omitempty"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
}

// Movie is the catalog aggregate. Reviews and AverageRating are
// server-authoritative: the client refreshes them, it never recomputes them.
type Movie struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	Director      string  `json:"director"`
	Author        string  `json:"author"`
	Year          int     `json:"year"`
	Image         string  `json:"image"`
	CategoryID    int     `json:"category_id"`
	CategoryLabel string  `json:"category_label"`
	AverageRating float64 `json:"average_rating"`
	Reviews       []Review `json:"reviews"`
}

// ReviewBy returns the review authored by the given user, or nil.
func (m *Movie) ReviewBy(userID int) *Review {
	for i := range m.Reviews {
		if m.Reviews[i].UserID == userID {
			return &m.Reviews[i]
		}
	}
	return nil
}

// MatchesSearch reports whether the movie's title or director contains term,
// case-insensitively. An empty term matches everything.
func (m *Movie) MatchesSearch(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(m.Title), term) ||
		strings.Contains(strings.ToLower(m.Director), term)
}

// CatalogPage is one fetched page of the catalog plus its pagination extent.
type CatalogPage struct {
	Items      []Movie
	TotalPages int
}
