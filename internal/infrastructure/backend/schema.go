package backend

import (
	"strconv"
	"strings"

	"github.com/moviehub/catalog-client/internal/core/domain"
	"github.com/moviehub/catalog-client/internal/core/ports"
)

// Wire types owned by the transport layer. They mirror the backend's JSON
// contract (Sequelize association casing included) and are kept separate from
// the domain so the contract is not coupled to internal changes.

// flexFloat tolerates averages serialized either as a JSON number or as a
// decimal string.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
}

type categoryResponse struct {
	ID    int    `json:"id"`
	Label string `json:"category"`
}

type reviewUserResponse struct {
	Name string `json:"name"`
}

type reviewResponse struct {
	ID      int                 `json:"id"`
	MovieID int                 `json:"movie_id"`
	UserID  int                 `json:"user_id"`
	Rating  int                 `json:"rating"`
	Comment string              `json:"comment"`
	User    *reviewUserResponse `json:"User"`
}

type movieResponse struct {
	ID            int               `json:"id"`
	Title         string            `json:"title"`
	Director      string            `json:"director"`
	Author        string            `json:"author"`
	Year          int               `json:"year"`
	Image         string            `json:"image"`
	CategoryID    int               `json:"category_id"`
	MovieCategory *categoryResponse `json:"MovieCategory"`
	AvgRating     flexFloat         `json:"avgRating"`
	Reviews       []reviewResponse  `json:"Reviews"`
}

type listMoviesResponse struct {
	Movies     []movieResponse `json:"movies"`
	TotalPages int             `json:"totalPages"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginUserResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type loginResponse struct {
	Token string            `json:"token"`
	User  loginUserResponse `json:"user"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type submitReviewRequest struct {
	MovieID int    `json:"movie_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type movieRequest struct {
	Title      string `json:"title"`
	Author     string `json:"author,omitempty"`
	Director   string `json:"director,omitempty"`
	Year       *int   `json:"year"`
	Image      string `json:"image,omitempty"`
	CategoryID int    `json:"category_id"`
}

type roleResponse struct {
	Name string `json:"name"`
}

type userResponse struct {
	ID    int           `json:"id"`
	Name  string        `json:"name"`
	Email string        `json:"email"`
	Role  *roleResponse `json:"Role"`
}

type statsCountsResponse struct {
	Movies  int `json:"movies"`
	Users   int `json:"users"`
	Reviews int `json:"reviews"`
}

type statsMovieResponse struct {
	Title     string    `json:"title"`
	AvgRating flexFloat `json:"avgRating"`
}

type recentUserResponse struct {
	ID        int           `json:"id"`
	Name      string        `json:"name"`
	Role      *roleResponse `json:"Role"`
	CreatedAt string        `json:"createdAt"`
}

type statsResponse struct {
	Counts      statsCountsResponse  `json:"counts"`
	Movies      []statsMovieResponse `json:"movies"`
	RecentUsers []recentUserResponse `json:"recentUsers"`
}

// --- Mappers ---

func toDomainReview(r reviewResponse) domain.Review {
	review := domain.Review{
		ID:      r.ID,
		MovieID: r.MovieID,
		UserID:  r.UserID,
		Rating:  r.Rating,
		Comment: r.Comment,
	}
	if r.User != nil {
		review.UserName = r.User.Name
	}
	return review
}

func toDomainMovie(m movieResponse) domain.Movie {
	movie := domain.Movie{
		ID:            m.ID,
		Title:         m.Title,
		Director:      m.Director,
		Author:        m.Author,
		Year:          m.Year,
		Image:         m.Image,
		CategoryID:    m.CategoryID,
		AverageRating: float64(m.AvgRating),
	}
	if m.MovieCategory != nil {
		movie.CategoryLabel = m.MovieCategory.Label
	}
	for _, r := range m.Reviews {
		movie.Reviews = append(movie.Reviews, toDomainReview(r))
	}
	return movie
}

func toDomainUser(u userResponse) domain.User {
	user := domain.User{ID: u.ID, Name: u.Name, Email: u.Email}
	if u.Role != nil {
		user.Role = strings.ToLower(u.Role.Name)
	}
	return user
}

func toDomainStats(s statsResponse) *ports.AdminStats {
	stats := &ports.AdminStats{
		Counts: ports.StatsCounts{
			Movies:  s.Counts.Movies,
			Users:   s.Counts.Users,
			Reviews: s.Counts.Reviews,
		},
	}
	for _, m := range s.Movies {
		stats.Movies = append(stats.Movies, ports.MovieRating{
			Title:         m.Title,
			AverageRating: float64(m.AvgRating),
		})
	}
	for _, u := range s.RecentUsers {
		ru := ports.RecentUser{ID: u.ID, Name: u.Name, CreatedAt: u.CreatedAt}
		if u.Role != nil {
			ru.Role = strings.ToLower(u.Role.Name)
		}
		stats.RecentUsers = append(stats.RecentUsers, ru)
	}
	return stats
}

func toMovieRequest(in ports.MovieInput) movieRequest {
	req := movieRequest{
		Title:      in.Title,
		Author:     in.Author,
		Director:   in.Director,
		Image:      in.Image,
		CategoryID: in.CategoryID,
	}
	if in.Year != 0 {
		req.Year = &in.Year
	}
	return req
}
