package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/moviehub/catalog-client/internal/core/domain"
	"github.com/moviehub/catalog-client/internal/core/ports"
)

const defaultTimeout = 15 * time.Second

// TokenSource supplies the bearer credential attached to authenticated
// requests. An empty token means no Authorization header is sent.
type TokenSource interface {
	Token() string
}

// Client is the HTTP implementation of ports.BackendGateway. Failed calls are
// surfaced to the issuing call site, never retried.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     zerolog.Logger
}

func NewClient(baseURL string, tokens TokenSource, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		log:     log,
	}
}

func (c *Client) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", nil, loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		var be *backendError
		if errors.As(err, &be) && (be.status == http.StatusUnauthorized || be.status == http.StatusNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	return &ports.AuthResult{
		Token: resp.Token,
		User: domain.User{
			ID:   resp.User.ID,
			Name: resp.User.Name,
			Role: resp.User.Role,
		},
	}, nil
}

func (c *Client) Register(ctx context.Context, input ports.RegisterInput) error {
	return c.do(ctx, http.MethodPost, "/auth/register", nil, registerRequest{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
	}, nil)
}

func (c *Client) ListMovies(ctx context.Context, input ports.ListMoviesInput) (*domain.CatalogPage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(input.Page))
	query.Set("limit", strconv.Itoa(input.Limit))
	if input.CategoryID != 0 {
		query.Set("category_id", strconv.Itoa(input.CategoryID))
	}

	var resp listMoviesResponse
	if err := c.do(ctx, http.MethodGet, "/movies", query, nil, &resp); err != nil {
		return nil, err
	}

	page := &domain.CatalogPage{TotalPages: resp.TotalPages}
	for _, m := range resp.Movies {
		page.Items = append(page.Items, toDomainMovie(m))
	}
	return page, nil
}

func (c *Client) GetMovie(ctx context.Context, id int) (*domain.Movie, error) {
	var resp movieResponse
	if err := c.do(ctx, http.MethodGet, "/movies/"+strconv.Itoa(id), nil, nil, &resp); err != nil {
		var be *backendError
		if errors.As(err, &be) && be.status == http.StatusNotFound {
			return nil, domain.ErrMovieNotFound
		}
		return nil, err
	}
	movie := toDomainMovie(resp)
	return &movie, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var resp []categoryResponse
	if err := c.do(ctx, http.MethodGet, "/categories", nil, nil, &resp); err != nil {
		return nil, err
	}

	categories := make([]domain.Category, 0, len(resp))
	for _, cat := range resp {
		categories = append(categories, domain.Category{ID: cat.ID, Label: cat.Label})
	}
	return categories, nil
}

func (c *Client) SubmitReview(ctx context.Context, input ports.ReviewInput) (*domain.Review, error) {
	var resp reviewResponse
	err := c.do(ctx, http.MethodPost, "/reviews", nil, submitReviewRequest{
		MovieID: input.MovieID,
		Rating:  input.Rating,
		Comment: input.Comment,
	}, &resp)
	if err != nil {
		return nil, err
	}
	review := toDomainReview(resp)
	return &review, nil
}

func (c *Client) ReviewsForMovie(ctx context.Context, movieID int) ([]domain.Review, error) {
	var resp []reviewResponse
	if err := c.do(ctx, http.MethodGet, "/reviews/movie/"+strconv.Itoa(movieID), nil, nil, &resp); err != nil {
		return nil, err
	}

	reviews := make([]domain.Review, 0, len(resp))
	for _, r := range resp {
		reviews = append(reviews, toDomainReview(r))
	}
	return reviews, nil
}

func (c *Client) CreateMovie(ctx context.Context, input ports.MovieInput) (*domain.Movie, error) {
	var resp movieResponse
	if err := c.do(ctx, http.MethodPost, "/movies", nil, toMovieRequest(input), &resp); err != nil {
		return nil, err
	}
	movie := toDomainMovie(resp)
	return &movie, nil
}

func (c *Client) UpdateMovie(ctx context.Context, id int, input ports.MovieInput) (*domain.Movie, error) {
	var resp movieResponse
	if err := c.do(ctx, http.MethodPut, "/movies/"+strconv.Itoa(id), nil, toMovieRequest(input), &resp); err != nil {
		return nil, err
	}
	movie := toDomainMovie(resp)
	return &movie, nil
}

func (c *Client) DeleteMovie(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/movies/"+strconv.Itoa(id), nil, nil, nil)
}

func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var resp []userResponse
	if err := c.do(ctx, http.MethodGet, "/auth/users", nil, nil, &resp); err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(resp))
	for _, u := range resp {
		users = append(users, toDomainUser(u))
	}
	return users, nil
}

func (c *Client) PromoteUser(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodPut, "/auth/promote/"+strconv.Itoa(id), nil, nil, nil)
}

func (c *Client) DemoteUser(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodPut, "/auth/demote/"+strconv.Itoa(id), nil, nil, nil)
}

func (c *Client) DeleteUser(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/auth/users/"+strconv.Itoa(id), nil, nil, nil)
}

func (c *Client) AdminStats(ctx context.Context) (*ports.AdminStats, error) {
	var resp statsResponse
	if err := c.do(ctx, http.MethodGet, "/admin/stats", nil, nil, &resp); err != nil {
		return nil, err
	}
	return toDomainStats(resp), nil
}

// backendError carries the status code and the backend's error envelope
// message for a non-2xx response.
type backendError struct {
	status  int
	message string
}

func (e *backendError) Error() string {
	if e.message != "" {
		return e.message
	}
	return fmt.Sprintf("backend returned status %d", e.status)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var payload *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s %s: encode request: %w", method, path, err)
		}
		payload = bytes.NewReader(data)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, payload)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		c.log.Debug().Int("status", resp.StatusCode).Str("path", path).Str("error", envelope.Error).Msg("backend request failed")
		return fmt.Errorf("%s %s: %w", method, path, &backendError{status: resp.StatusCode, message: envelope.Error})
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s %s: decode response: %w", method, path, err)
		}
	}
	return nil
}
