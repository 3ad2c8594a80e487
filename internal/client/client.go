// ABOUTME: HTTP client for the intranet collaborator API
// ABOUTME: Wraps API calls with bearer auth, request IDs and error classification

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// DefaultTimeout is applied to the underlying http.Client
const DefaultTimeout = 30 * time.Second

// maxErrorText caps how much of a non-JSON error body is surfaced
const maxErrorText = 200

// Client is the API client for the intranet backend
type Client struct {
	baseURL       string
	loginURL      string
	loginCheckURL string
	httpClient    *http.Client
	logger        *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithLoginURLs overrides the profile and token endpoints
func WithLoginURLs(loginURL, loginCheckURL string) Option {
	return func(c *Client) {
		if loginURL != "" {
			c.loginURL = loginURL
		}
		if loginCheckURL != "" {
			c.loginCheckURL = loginCheckURL
		}
	}
}

// WithTimeout sets the transport timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a new API client with the given base URL
func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	c := &Client{
		baseURL:       baseURL,
		loginURL:      baseURL + "/login",
		loginCheckURL: baseURL + "/login_check",
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "client")
	return c
}

// BaseURL returns the API base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

type response struct {
	status      int
	contentType string
	body        []byte
}

// do sends one request. token may be empty for unauthenticated calls.
func (c *Client) do(ctx context.Context, method, url, token string, payload any) (*response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal input: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	c.logger.Debug("HTTP request", "request_id", requestID, "method", method, "url", url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.handleRequestError(ctx, err)
	}

	c.logger.Debug("HTTP response",
		"request_id", requestID,
		"status", resp.StatusCode,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, handleErrorResponse(resp.StatusCode, data)
	}

	return &response{
		status:      resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		body:        data,
	}, nil
}

// handleRequestError converts context errors to user-friendly messages
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("request canceled: %w", ctx.Err())
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", ctx.Err())
	}
	return fmt.Errorf("%w at %s: %v", ErrUnreachable, c.baseURL, err)
}

// handleErrorResponse builds an APIError from an {"error": ...} or {"message": ...} body
func handleErrorResponse(status int, body []byte) error {
	apiErr := &APIError{StatusCode: status}
	if gjson.ValidBytes(body) {
		for _, field := range []string{"error", "message", "detail"} {
			if v := gjson.GetBytes(body, field); v.Type == gjson.String && v.Str != "" {
				apiErr.Message = v.Str
				break
			}
		}
		return apiErr
	}
	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorText {
		text = text[:maxErrorText]
	}
	apiErr.Message = text
	return apiErr
}

// field decodes the named member of a JSON object response.
// It returns false when the member is absent or null.
func field(body []byte, name string, v any) (bool, error) {
	if !gjson.ValidBytes(body) {
		return false, fmt.Errorf("%w: body is not JSON", ErrMalformed)
	}
	res := gjson.GetBytes(body, name)
	if !res.Exists() || res.Type == gjson.Null {
		return false, nil
	}
	if err := json.Unmarshal([]byte(res.Raw), v); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrMalformed, name, err)
	}
	return true, nil
}

// ListUsers calls GET /all/collaborators
func (c *Client) ListUsers(ctx context.Context, token string) ([]User, error) {
	resp, err := c.do(ctx, http.MethodGet, c.baseURL+"/all/collaborators", token, nil)
	if err != nil {
		return nil, err
	}
	if !strings.Contains(resp.contentType, "application/json") {
		return nil, fmt.Errorf("%w: unexpected content type %q", ErrMalformed, resp.contentType)
	}

	var users []User
	ok, err := field(resp.body, "allCollaborators", &users)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: allCollaborators not found", ErrMalformed)
	}
	if users == nil {
		users = []User{}
	}
	return users, nil
}

// GetUser calls POST /collaborator/id
func (c *Client) GetUser(ctx context.Context, token string, id int) (*User, error) {
	resp, err := c.do(ctx, http.MethodPost, c.baseURL+"/collaborator/id", token, map[string]int{"id": id})
	if err != nil {
		return nil, err
	}

	var user User
	ok, err := field(resp.body, "collaborator", &user)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("collaborator %d: %w", id, ErrNotFound)
	}
	return &user, nil
}

// RandomUser calls GET /collaborator/random.
// A response without a collaborator yields (nil, nil).
func (c *Client) RandomUser(ctx context.Context, token string) (*User, error) {
	resp, err := c.do(ctx, http.MethodGet, c.baseURL+"/collaborator/random", token, nil)
	if err != nil {
		return nil, err
	}

	var user User
	ok, err := field(resp.body, "collaborator", &user)
	if err != nil || !ok {
		return nil, err
	}
	return &user, nil
}

// CreateUser calls POST /collaborator/create.
// The created record is returned only when the server echoes it.
func (c *Client) CreateUser(ctx context.Context, token string, input *UserInput) (*User, error) {
	resp, err := c.do(ctx, http.MethodPost, c.baseURL+"/collaborator/create", token, input)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(resp.body)) == 0 || !gjson.ValidBytes(resp.body) {
		return nil, nil
	}

	for _, name := range []string{"collaborateur", "collaborator"} {
		var user User
		ok, err := field(resp.body, name, &user)
		if err != nil {
			return nil, err
		}
		if ok {
			return &user, nil
		}
	}
	return nil, nil
}

// UpdateUser calls PUT /collaborator/update/{id}
func (c *Client) UpdateUser(ctx context.Context, token string, id int, patch *UserPatch) error {
	_, err := c.do(ctx, http.MethodPut, c.baseURL+"/collaborator/update/"+strconv.Itoa(id), token, patch)
	return err
}

// DeleteUser calls DELETE /collaborator/delete/{id}
func (c *Client) DeleteUser(ctx context.Context, token string, id int) error {
	_, err := c.do(ctx, http.MethodDelete, c.baseURL+"/collaborator/delete/"+strconv.Itoa(id), token, nil)
	return err
}

// Login posts the credentials to the profile endpoint and returns the user profile
func (c *Client) Login(ctx context.Context, creds Credentials) (*User, error) {
	resp, err := c.do(ctx, http.MethodPost, c.loginURL, "", creds)
	if err != nil {
		return nil, err
	}

	profile := gjson.ParseBytes(resp.body)
	if !gjson.ValidBytes(resp.body) || !profile.IsObject() {
		return nil, fmt.Errorf("%w: login response does not contain a user", ErrMalformed)
	}
	// Some deployments wrap the profile in {"user": {...}}
	if u := profile.Get("user"); u.IsObject() && !profile.Get("id").Exists() {
		profile = u
	}

	var user User
	if err := json.Unmarshal([]byte(profile.Raw), &user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &user, nil
}

// LoginCheck posts the credentials to the token endpoint and returns the bearer token
func (c *Client) LoginCheck(ctx context.Context, creds Credentials) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, c.loginCheckURL, "", creds)
	if err != nil {
		return "", err
	}

	token := gjson.GetBytes(resp.body, "token")
	if token.Type != gjson.String || token.Str == "" {
		return "", fmt.Errorf("%w: token not found", ErrMalformed)
	}
	return token.Str, nil
}
