package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/users"
)

const defaultRequestTimeout = 15 * time.Second

var (
	// ErrUnauthorized is returned when the API rejects the session.
	ErrUnauthorized = errors.New("client: unauthorized")
	// ErrNotFound is returned for missing or foreign records.
	ErrNotFound = errors.New("client: not found")
	// ErrStaleVersion is returned when an update carried an outdated version.
	ErrStaleVersion = errors.New("client: stale version")
	// ErrInvalidInput is returned when the API rejects a request body.
	ErrInvalidInput = errors.New("client: invalid input")

	errMissingBaseURL = errors.New("client: base url is required")
)

// APIError is a non-2xx API response.
type APIError struct {
	StatusCode int
	Code       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("client: api responded %d %s", e.StatusCode, e.Code)
}

// Is maps API error codes onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrStaleVersion:
		return e.Code == "stale_version"
	case ErrInvalidInput:
		return e.Code == "invalid_input"
	}
	return false
}

// APIConfig describes how to reach the REST API.
type APIConfig struct {
	BaseURL    string
	HTTPClient *http.Client
	// Token is an existing session token; Login replaces it.
	Token string
}

// APIClient performs authenticated JSON requests against the REST API.
type APIClient struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// Session is the result of a successful login.
type Session struct {
	Token string           `json:"token"`
	User  users.PublicUser `json:"user"`
}

// NewAPIClient constructs an APIClient.
func NewAPIClient(cfg APIConfig) (*APIClient, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errMissingBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	return &APIClient{baseURL: baseURL, httpClient: httpClient, token: cfg.Token}, nil
}

// Login exchanges credentials for a session token and keeps it for later requests.
func (c *APIClient) Login(ctx context.Context, email, password string) (Session, error) {
	var session Session
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &session); err != nil {
		return Session{}, err
	}
	c.mu.Lock()
	c.token = session.Token
	c.mu.Unlock()
	return session, nil
}

// Logout revokes the current session token.
func (c *APIClient) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil); err != nil {
		return err
	}
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
	return nil
}

// Me returns the account behind the current session.
func (c *APIClient) Me(ctx context.Context) (users.PublicUser, error) {
	var response struct {
		User users.PublicUser `json:"user"`
	}
	err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &response)
	return response.User, err
}

func (c *APIClient) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *APIClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("client: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.currentToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var envelope struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(payload, &envelope) == nil {
			apiErr.Code = envelope.Error
		}
		return apiErr
	}
	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("client: decode %s %s: %w", method, path, err)
	}
	return nil
}
