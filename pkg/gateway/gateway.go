// Package gateway provides a client for the LoadoutLab accounts and saved
// builds API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/Lukeeddleman/loadoutlab-site/internal/logger"
	"github.com/Lukeeddleman/loadoutlab-site/internal/models"
)

// Account is a signed-in user together with their profile
type Account struct {
	User    *models.User    `json:"user"`
	Profile *models.Profile `json:"profile"`
}

// Session is returned by SignIn and SignUp
type Session struct {
	Account
	ExpiresAt time.Time `json:"expires_at"`
}

// Profile carries the optional fields collected at sign-up
type Profile struct {
	Username string `json:"username,omitempty"`
	FullName string `json:"full_name,omitempty"`
}

// NewBuild describes a build to save
type NewBuild struct {
	Name          string                      `json:"name"`
	Description   string                      `json:"description,omitempty"`
	Configuration models.ConfigurationPayload `json:"configuration"`
	IsPublic      bool                        `json:"is_public"`
}

// BuildUpdate changes a saved build; nil fields are left unchanged
type BuildUpdate struct {
	Name          *string                      `json:"name,omitempty"`
	Description   *string                      `json:"description,omitempty"`
	Configuration *models.ConfigurationPayload `json:"configuration,omitempty"`
	IsPublic      *bool                        `json:"is_public,omitempty"`
}

// Client defines the persistence and auth operations
type Client interface {
	// ListBuilds returns the signed-in user's builds, most recently updated first
	ListBuilds(ctx context.Context) ([]models.Build, error)
	// SaveBuild stores a new build and returns it
	SaveBuild(ctx context.Context, b NewBuild) (*models.Build, error)
	// UpdateBuild changes one of the user's builds
	UpdateBuild(ctx context.Context, id string, u BuildUpdate) (*models.Build, error)
	// DeleteBuild removes one of the user's builds
	DeleteBuild(ctx context.Context, id string) error
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string, p Profile) (*Session, error)
	SignOut(ctx context.Context) error
	// CurrentUser returns the signed-in account, or AuthRequiredError
	CurrentUser(ctx context.Context) (*Account, error)
	BaseURL() string
}

// HTTPClient talks to a LoadoutLab server. The session cookie is kept in a
// cookie jar, so SignIn authenticates the later calls.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	log        logger.Logger
}

// NewHTTPClient creates a new client with cookie support
func NewHTTPClient(baseURL string, log logger.Logger) *HTTPClient {
	jar, _ := cookiejar.New(nil)
	return NewHTTPClientWithHTTPClient(baseURL, &http.Client{
		Timeout: 30 * time.Second,
		Jar:     jar,
	}, log)
}

// NewHTTPClientWithHTTPClient creates a client with a custom http.Client
func NewHTTPClientWithHTTPClient(baseURL string, httpClient *http.Client, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		log:        log,
	}
}

// BaseURL returns the server address
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// apiError is the server's error envelope
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"error"`
}

// doRequest sends a JSON request and decodes a JSON response into out.
// Non-2xx responses become PersistenceError or AuthRequiredError.
func (c *HTTPClient) doRequest(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &PersistenceError{Op: op, Message: fmt.Sprintf("failed to encode request: %v", err)}
		}
		reader = bytes.NewReader(data)
	}

	reqURL := c.baseURL + path
	c.log.Debug("Gateway request", "op", op, "method", method, "url", reqURL)

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return &PersistenceError{Op: op, Message: fmt.Sprintf("failed to create request: %v", err)}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &PersistenceError{Op: op, Message: fmt.Sprintf("failed to connect: %v", err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &PersistenceError{Op: op, Status: resp.StatusCode, Message: fmt.Sprintf("failed to read response: %v", err)}
	}

	c.log.Debug("Gateway response", "op", op, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := http.StatusText(resp.StatusCode)
		var envelope apiError
		if json.Unmarshal(data, &envelope) == nil && envelope.Message != "" {
			msg = envelope.Message
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return &AuthRequiredError{Op: op, Message: msg}
		}
		return &PersistenceError{Op: op, Status: resp.StatusCode, Code: envelope.Code, Message: msg}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &PersistenceError{Op: op, Status: resp.StatusCode, Message: fmt.Sprintf("failed to parse response: %v", err)}
	}
	return nil
}

// ListBuilds returns the signed-in user's builds
func (c *HTTPClient) ListBuilds(ctx context.Context) ([]models.Build, error) {
	var resp struct {
		Builds []models.Build `json:"builds"`
	}
	if err := c.doRequest(ctx, "list builds", http.MethodGet, "/api/builds", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Builds, nil
}

// SaveBuild stores a new build
func (c *HTTPClient) SaveBuild(ctx context.Context, b NewBuild) (*models.Build, error) {
	var build models.Build
	if err := c.doRequest(ctx, "save build", http.MethodPost, "/api/builds", b, &build); err != nil {
		return nil, err
	}
	return &build, nil
}

// UpdateBuild changes one of the user's builds
func (c *HTTPClient) UpdateBuild(ctx context.Context, id string, u BuildUpdate) (*models.Build, error) {
	var build models.Build
	if err := c.doRequest(ctx, "update build", http.MethodPut, "/api/builds/"+id, u, &build); err != nil {
		return nil, err
	}
	return &build, nil
}

// DeleteBuild removes one of the user's builds
func (c *HTTPClient) DeleteBuild(ctx context.Context, id string) error {
	return c.doRequest(ctx, "delete build", http.MethodDelete, "/api/builds/"+id, nil, nil)
}

// SignIn authenticates and stores the session cookie
func (c *HTTPClient) SignIn(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	var session Session
	if err := c.doRequest(ctx, "sign in", http.MethodPost, "/api/auth/signin", body, &session); err != nil {
		return nil, err
	}
	c.log.Info("Signed in", "email", email)
	return &session, nil
}

// SignUp creates an account and signs it in
func (c *HTTPClient) SignUp(ctx context.Context, email, password string, p Profile) (*Session, error) {
	body := map[string]string{
		"email":     email,
		"password":  password,
		"username":  p.Username,
		"full_name": p.FullName,
	}
	var session Session
	if err := c.doRequest(ctx, "sign up", http.MethodPost, "/api/auth/signup", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// SignOut ends the session
func (c *HTTPClient) SignOut(ctx context.Context) error {
	return c.doRequest(ctx, "sign out", http.MethodPost, "/api/auth/signout", nil, nil)
}

// CurrentUser returns the signed-in account
func (c *HTTPClient) CurrentUser(ctx context.Context) (*Account, error) {
	var account Account
	if err := c.doRequest(ctx, "current user", http.MethodGet, "/api/auth/me", nil, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// Ensure HTTPClient implements Client
var _ Client = (*HTTPClient)(nil)
