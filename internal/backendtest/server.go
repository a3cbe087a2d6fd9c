// Package backendtest provides an in-process fake of the movie platform REST
// API. It plays the issuing server in tests: accounts are bcrypt-verified and
// credentials are signed HS256 tokens, so the client's decode path sees
// exactly what production would hand it.
package backendtest

import (
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

type userRecord struct {
	ID           int
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

type reviewRecord struct {
	ID      int
	MovieID int
	UserID  int
	Rating  int
	Comment string
}

type movieRecord struct {
	ID         int
	Title      string
	Author     string
	Director   string
	Year       int
	Image      string
	CategoryID int
}

type categoryRecord struct {
	ID    int
	Label string
}

// Server is the fake backend. All state lives in memory behind one mutex.
type Server struct {
	e         *echo.Echo
	jwtSecret string

	mu         sync.Mutex
	users      []*userRecord
	movies     []*movieRecord
	reviews    []*reviewRecord
	categories []categoryRecord
	nextID     map[string]int
}

// New builds a Server with all routes of the platform contract registered.
func New() *Server {
	s := &Server{
		e:         echo.New(),
		jwtSecret: "backendtest-secret",
		nextID:    map[string]int{"user": 1, "movie": 1, "review": 1, "category": 1},
	}
	s.e.HideBanner = true

	s.e.POST("/auth/register", s.handleRegister)
	s.e.POST("/auth/login", s.handleLogin)

	s.e.GET("/movies", s.handleListMovies)
	s.e.GET("/movies/:id", s.handleGetMovie)
	s.e.GET("/categories", s.handleListCategories)
	s.e.GET("/reviews/movie/:id", s.handleReviewsForMovie)

	authed := s.e.Group("", s.requireAuth)
	authed.POST("/reviews", s.handleSubmitReview)
	authed.POST("/movies", s.handleCreateMovie)
	authed.PUT("/movies/:id", s.handleUpdateMovie)
	authed.DELETE("/movies/:id", s.handleDeleteMovie)
	authed.GET("/auth/users", s.handleListUsers)
	authed.PUT("/auth/promote/:id", s.handlePromote)
	authed.PUT("/auth/demote/:id", s.handleDemote)
	authed.DELETE("/auth/users/:id", s.handleDeleteUser)
	authed.GET("/admin/stats", s.handleStats)

	return s
}

// Handler exposes the server for use with httptest.NewServer.
func (s *Server) Handler() http.Handler {
	return s.e
}

// --- Seeding ---

// SeedUser registers an account directly and returns its id.
func (s *Server) SeedUser(name, email, password, role string) int {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := &userRecord{
		ID:           s.allocate("user"),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	s.users = append(s.users, u)
	return u.ID
}

// SeedCategory adds a category and returns its id.
func (s *Server) SeedCategory(label string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := categoryRecord{ID: s.allocate("category"), Label: label}
	s.categories = append(s.categories, c)
	return c.ID
}

// SeedMovie adds a movie and returns its id.
func (s *Server) SeedMovie(title, director string, year, categoryID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := &movieRecord{
		ID:         s.allocate("movie"),
		Title:      title,
		Director:   director,
		Year:       year,
		CategoryID: categoryID,
	}
	s.movies = append(s.movies, m)
	return m.ID
}

// SeedReview attaches a review to a movie and returns its id.
func (s *Server) SeedReview(movieID, userID, rating int, comment string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &reviewRecord{
		ID:      s.allocate("review"),
		MovieID: movieID,
		UserID:  userID,
		Rating:  rating,
		Comment: comment,
	}
	s.reviews = append(s.reviews, r)
	return r.ID
}

// TokenFor issues a signed credential for the given seeded user, bypassing
// the login endpoint.
func (s *Server) TokenFor(userID int) string {
	s.mu.Lock()
	u := s.findUser(userID)
	s.mu.Unlock()
	if u == nil {
		panic("backendtest: unknown user id")
	}
	token, err := s.signToken(u)
	if err != nil {
		panic(err)
	}
	return token
}

func (s *Server) allocate(kind string) int {
	id := s.nextID[kind]
	s.nextID[kind] = id + 1
	return id
}

func (s *Server) findUser(id int) *userRecord {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (s *Server) findMovie(id int) *movieRecord {
	for _, m := range s.movies {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func (s *Server) signToken(u *userRecord) (string, error) {
	claims := jwt.MapClaims{
		"id":    u.ID,
		"name":  u.Name,
		"role":  u.Role,
		"email": u.Email,
		"exp":   time.Now().Add(tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

// requireAuth validates the bearer token and stashes the caller's id in the
// request context.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing authorization header"})
		}

		claims := jwt.MapClaims{}
		tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return []byte(s.jwtSecret), nil
		})
		if err != nil || !tkn.Valid {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
		}

		if id, ok := claims["id"].(float64); ok {
			c.Set("user_id", int(id))
		}
		c.Set("role", claims["role"])
		return next(c)
	}
}

// --- Handlers ---

func (s *Server) handleRegister(c echo.Context) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name, email and password are required"})
	}

	s.mu.Lock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, req.Email) {
			s.mu.Unlock()
			return c.JSON(http.StatusConflict, map[string]string{"error": "email already registered"})
		}
	}
	s.mu.Unlock()

	s.SeedUser(req.Name, req.Email, req.Password, "user")
	return c.NoContent(http.StatusCreated)
}

func (s *Server) handleLogin(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	s.mu.Lock()
	var user *userRecord
	for _, u := range s.users {
		if strings.EqualFold(u.Email, req.Email) {
			user = u
			break
		}
	}
	s.mu.Unlock()

	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	}

	token, err := s.signToken(user)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "token signing failed"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"token": token,
		"user":  map[string]any{"id": user.ID, "name": user.Name, "role": user.Role},
	})
}

func (s *Server) movieJSON(m *movieRecord, withReviews bool) map[string]any {
	var label string
	for _, cat := range s.categories {
		if cat.ID == m.CategoryID {
			label = cat.Label
		}
	}

	var reviews []*reviewRecord
	sum := 0
	for _, r := range s.reviews {
		if r.MovieID == m.ID {
			reviews = append(reviews, r)
			sum += r.Rating
		}
	}
	// Aggregates come back as decimal strings, the way the ORM serializes
	// them in production.
	avg := "0.0"
	if len(reviews) > 0 {
		avg = strconv.FormatFloat(float64(sum)/float64(len(reviews)), 'f', 1, 64)
	}

	payload := map[string]any{
		"id":            m.ID,
		"title":         m.Title,
		"author":        m.Author,
		"director":      m.Director,
		"year":          m.Year,
		"image":         m.Image,
		"category_id":   m.CategoryID,
		"MovieCategory": map[string]any{"category": label},
		"avgRating":     avg,
		"reviewCount":   len(reviews),
	}
	if withReviews {
		rs := make([]map[string]any, 0, len(reviews))
		for _, r := range reviews {
			rs = append(rs, s.reviewJSON(r))
		}
		payload["Reviews"] = rs
	}
	return payload
}

func (s *Server) reviewJSON(r *reviewRecord) map[string]any {
	payload := map[string]any{
		"id":       r.ID,
		"movie_id": r.MovieID,
		"user_id":  r.UserID,
		"rating":   r.Rating,
		"comment":  r.Comment,
	}
	if u := s.findUser(r.UserID); u != nil {
		payload["User"] = map[string]any{"name": u.Name}
	}
	return payload
}

func (s *Server) handleListMovies(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = 10
	}
	categoryID, _ := strconv.Atoi(c.QueryParam("category_id"))

	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := make([]*movieRecord, 0, len(s.movies))
	for _, m := range s.movies {
		if categoryID == 0 || m.CategoryID == categoryID {
			filtered = append(filtered, m)
		}
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].ID < filtered[j].ID })

	totalPages := int(math.Ceil(float64(len(filtered)) / float64(limit)))
	if totalPages < 1 {
		totalPages = 1
	}

	start := (page - 1) * limit
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + limit
	if end > len(filtered) {
		end = len(filtered)
	}

	items := make([]map[string]any, 0, end-start)
	for _, m := range filtered[start:end] {
		items = append(items, s.movieJSON(m, false))
	}

	return c.JSON(http.StatusOK, map[string]any{"movies": items, "totalPages": totalPages})
}

func (s *Server) handleGetMovie(c echo.Context) error {
	id, _ := strconv.Atoi(c.Param("id"))

	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.findMovie(id)
	if m == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "movie not found"})
	}
	return c.JSON(http.StatusOK, s.movieJSON(m, true))
}

func (s *Server) handleListCategories(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]map[string]any, 0, len(s.categories))
	for _, cat := range s.categories {
		out = append(out, map[string]any{"id": cat.ID, "category": cat.Label})
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleReviewsForMovie(c echo.Context) error {
	id, _ := strconv.Atoi(c.Param("id"))

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]map[string]any, 0)
	for _, r := range s.reviews {
		if r.MovieID == id {
			out = append(out, s.reviewJSON(r))
		}
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleSubmitReview(c echo.Context) error {
	var req struct {
		MovieID int    `json:"movie_id"`
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	userID, _ := c.Get("user_id").(int)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findMovie(req.MovieID) == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "movie not found"})
	}
	for _, r := range s.reviews {
		if r.MovieID == req.MovieID && r.UserID == userID {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "you have already reviewed this movie"})
		}
	}
	if req.Rating < 1 || req.Rating > 5 || req.Comment == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "rating must be 1-5 and comment is required"})
	}

	r := &reviewRecord{
		ID:      s.allocate("review"),
		MovieID: req.MovieID,
		UserID:  userID,
		Rating:  req.Rating,
		Comment: req.Comment,
	}
	s.reviews = append(s.reviews, r)
	return c.JSON(http.StatusCreated, s.reviewJSON(r))
}

type movieRequest struct {
	Title      string `json:"title"`
	Author     string `json:"author"`
	Director   string `json:"director"`
	Year       *int   `json:"year"`
	Image      string `json:"image"`
	CategoryID int    `json:"category_id"`
}

func (s *Server) handleCreateMovie(c echo.Context) error {
	var req movieRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if req.Title == "" || req.CategoryID == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "title and category_id are required"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m := &movieRecord{
		ID:         s.allocate("movie"),
		Title:      req.Title,
		Author:     req.Author,
		Director:   req.Director,
		Image:      req.Image,
		CategoryID: req.CategoryID,
	}
	if req.Year != nil {
		m.Year = *req.Year
	}
	s.movies = append(s.movies, m)
	return c.JSON(http.StatusCreated, s.movieJSON(m, false))
}

func (s *Server) handleUpdateMovie(c echo.Context) error {
	id, _ := strconv.Atoi(c.Param("id"))
	var req movieRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.findMovie(id)
	if m == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "movie not found"})
	}
	m.Title = req.Title
	m.Author = req.Author
	m.Director = req.Director
	m.Image = req.Image
	m.CategoryID = req.CategoryID
	if req.Year != nil {
		m.Year = *req.Year
	}
	return c.JSON(http.StatusOK, s.movieJSON(m, false))
}

func (s *Server) handleDeleteMovie(c echo.Context) error {
	id, _ := strconv.Atoi(c.Param("id"))

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, m := range s.movies {
		if m.ID == id {
			s.movies = append(s.movies[:i], s.movies[i+1:]...)
			kept := s.reviews[:0]
			for _, r := range s.reviews {
				if r.MovieID != id {
					kept = append(kept, r)
				}
			}
			s.reviews = kept
			return c.NoContent(http.StatusOK)
		}
	}
	return c.JSON(http.StatusNotFound, map[string]string{"error": "movie not found"})
}

func (s *Server) handleListUsers(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]map[string]any, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, map[string]any{
			"id":    u.ID,
			"name":  u.Name,
			"email": u.Email,
			"Role":  map[string]any{"name": u.Role},
		})
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) setRole(c echo.Context, role string) error {
	id, _ := strconv.Atoi(c.Param("id"))

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findUser(id)
	if u == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
	}
	u.Role = role
	return c.NoContent(http.StatusOK)
}

func (s *Server) handlePromote(c echo.Context) error {
	return s.setRole(c, "admin")
}

func (s *Server) handleDemote(c echo.Context) error {
	return s.setRole(c, "user")
}

func (s *Server) handleDeleteUser(c echo.Context) error {
	id, _ := strconv.Atoi(c.Param("id"))

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, u := range s.users {
		if u.ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			return c.NoContent(http.StatusOK)
		}
	}
	return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
}

func (s *Server) handleStats(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	movies := make([]map[string]any, 0, len(s.movies))
	for _, m := range s.movies {
		sum, n := 0, 0
		for _, r := range s.reviews {
			if r.MovieID == m.ID {
				sum += r.Rating
				n++
			}
		}
		avg := "0.0"
		if n > 0 {
			avg = strconv.FormatFloat(float64(sum)/float64(n), 'f', 1, 64)
		}
		movies = append(movies, map[string]any{"title": m.Title, "avgRating": avg})
	}

	recent := make([]map[string]any, 0)
	for i := len(s.users) - 1; i >= 0 && len(recent) < 5; i-- {
		u := s.users[i]
		recent = append(recent, map[string]any{
			"id":        u.ID,
			"name":      u.Name,
			"Role":      map[string]any{"name": u.Role},
			"createdAt": u.CreatedAt.Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"counts": map[string]any{
			"movies":  len(s.movies),
			"users":   len(s.users),
			"reviews": len(s.reviews),
		},
		"movies":      movies,
		"recentUsers": recent,
	})
}
