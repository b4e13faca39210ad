package mediaclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// APIError is a non-2xx response from the server. Anything else (timeouts,
// connection failures, malformed responses) surfaces as a wrapped plain error.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.Status, e.Body)
}

// Client is the openlens API client. It attaches the stored bearer token to
// every request and drops the token when the server reports it expired.
type Client struct {
	baseURL    string
	httpClient *http.Client
	storage    TokenStorage
	onExpired  func()
}

// Option is a function that configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.httpClient = h
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithTokenStorage sets the token persistence capability.
func WithTokenStorage(s TokenStorage) Option {
	return func(c *Client) {
		c.storage = s
	}
}

// WithSessionExpiredHandler sets the callback fired when a request comes back
// 401 while a token was stored. Applications hook their redirect-to-login
// here.
func WithSessionExpiredHandler(fn func()) Option {
	return func(c *Client) {
		c.onExpired = fn
	}
}

// NewClient creates an API client rooted at baseURL
// (e.g. "http://localhost:8080/api").
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		storage: NewMemoryStorage(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Storage exposes the token storage so session owners can manage its lifecycle.
func (c *Client) Storage() TokenStorage {
	return c.storage
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, params RegisterParams) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", params, &resp); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return &resp, nil
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}

	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &resp, nil
}

// CurrentUser fetches the authenticated user's profile.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var resp struct {
		User *User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/user", nil, &resp); err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}
	return resp.User, nil
}

// Logout notifies the server that the session is over.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// ChangePassword replaces the account password.
func (c *Client) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	body := map[string]string{
		"currentPassword": currentPassword,
		"newPassword":     newPassword,
	}
	if err := c.do(ctx, http.MethodPost, "/auth/password", body, nil); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

// RefreshToken obtains a fresh bearer token.
func (c *Client) RefreshToken(ctx context.Context) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", nil, &resp); err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}
	return resp.Token, nil
}

// UpdateProfile applies a partial profile update.
func (c *Client) UpdateProfile(ctx context.Context, patch UserPatch) (*User, error) {
	var resp struct {
		User *User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/profile", patch, &resp); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return resp.User, nil
}

// Search runs a media search.
func (c *Client) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	q := url.Values{}
	q.Set("q", params.Query)
	if params.MediaType != "" {
		q.Set("mediaType", params.MediaType)
	}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(params.PageSize))
	}
	for key, value := range params.Filters {
		if value != "" {
			q.Set(key, value)
		}
	}

	var resp SearchResult
	if err := c.do(ctx, http.MethodGet, "/search?"+q.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return &resp, nil
}

// MediaDetail fetches a single media item.
func (c *Client) MediaDetail(ctx context.Context, mediaType, id string) (*MediaResult, error) {
	var resp MediaResult
	path := fmt.Sprintf("/media/%s/%s", url.PathEscape(mediaType), url.PathEscape(id))
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("media detail: %w", err)
	}
	return &resp, nil
}

// RelatedMedia fetches items related to a media item.
func (c *Client) RelatedMedia(ctx context.Context, mediaType, id string) (*SearchResult, error) {
	var resp SearchResult
	path := fmt.Sprintf("/media/%s/%s/related", url.PathEscape(mediaType), url.PathEscape(id))
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("related media: %w", err)
	}
	return &resp, nil
}

// Stats fetches upstream provider statistics as raw JSON per media type.
func (c *Client) Stats(ctx context.Context) (map[string]json.RawMessage, error) {
	var resp map[string]json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/stats", nil, &resp); err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	return resp, nil
}

// History fetches one page of the user's search history.
func (c *Client) History(ctx context.Context, page, pageSize int) (*HistoryPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("pageSize", strconv.Itoa(pageSize))
	}

	var resp HistoryPage
	if err := c.do(ctx, http.MethodGet, "/history?"+q.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return &resp, nil
}

// DeleteHistoryItem deletes one history row.
func (c *Client) DeleteHistoryItem(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/history/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete history item: %w", err)
	}
	return nil
}

// ClearHistory deletes the user's entire search history.
func (c *Client) ClearHistory(ctx context.Context) error {
	if err := c.do(ctx, http.MethodDelete, "/history", nil, nil); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// do performs an HTTP request and decodes the response. A 401 while a token
// was stored clears the storage and fires the session-expired handler before
// returning the APIError.
func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	hadToken := false
	if token := c.storage.Token(); token != "" {
		hadToken = true
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized && hadToken {
		_ = c.storage.Clear()
		if c.onExpired != nil {
			c.onExpired()
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Body: string(respBody)}
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
