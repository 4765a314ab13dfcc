package gateway

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Lukeeddleman/loadoutlab-site/internal/models"
)

// MockClient is an in-memory Client for testing
type MockClient struct {
	mu       sync.Mutex
	baseURL  string
	builds   map[string]models.Build
	accounts map[string]mockAccount
	current  *Account
	listErr  error
	saveErr  error
	signErr  error
	delay    time.Duration
	now      func() time.Time
}

type mockAccount struct {
	password string
	account  Account
}

// MockOption configures the mock client
type MockOption func(*MockClient)

// WithBuilds seeds saved builds
func WithBuilds(builds []models.Build) MockOption {
	return func(m *MockClient) {
		for _, b := range builds {
			m.builds[b.ID] = b
		}
	}
}

// WithSignedIn starts the mock signed in as the given account
func WithSignedIn(a Account) MockOption {
	return func(m *MockClient) {
		m.current = &a
	}
}

// WithListError sets an error to return from ListBuilds
func WithListError(err error) MockOption {
	return func(m *MockClient) {
		m.listErr = err
	}
}

// WithSaveError sets an error to return from SaveBuild and UpdateBuild
func WithSaveError(err error) MockOption {
	return func(m *MockClient) {
		m.saveErr = err
	}
}

// WithSignInError sets an error to return from SignIn and SignUp
func WithSignInError(err error) MockOption {
	return func(m *MockClient) {
		m.signErr = err
	}
}

// WithDelay makes every call take at least d
func WithDelay(d time.Duration) MockOption {
	return func(m *MockClient) {
		m.delay = d
	}
}

// NewMockClient creates a new mock gateway client
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{
		baseURL:  "http://mock-loadoutlab.local",
		builds:   make(map[string]models.Build),
		accounts: make(map[string]mockAccount),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// BaseURL returns the configured base URL
func (m *MockClient) BaseURL() string {
	return m.baseURL
}

func (m *MockClient) wait(ctx context.Context) error {
	if m.delay == 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(m.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// userID returns the signed-in user, or AuthRequiredError
func (m *MockClient) userID(op string) (string, error) {
	if m.current == nil || m.current.User == nil {
		return "", &AuthRequiredError{Op: op, Message: "Sign in to continue"}
	}
	return m.current.User.ID, nil
}

// ListBuilds returns the signed-in user's builds, newest update first
func (m *MockClient) ListBuilds(ctx context.Context) ([]models.Build, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	userID, err := m.userID("list builds")
	if err != nil {
		return nil, err
	}
	if m.listErr != nil {
		return nil, m.listErr
	}

	var out []models.Build
	for _, b := range m.builds {
		if b.UserID == userID && !b.IsTemplate {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// SaveBuild records a new build for the signed-in user
func (m *MockClient) SaveBuild(ctx context.Context, nb NewBuild) (*models.Build, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	userID, err := m.userID("save build")
	if err != nil {
		return nil, err
	}
	if m.saveErr != nil {
		return nil, m.saveErr
	}

	now := m.now()
	b := models.Build{
		ID:            uuid.NewString(),
		UserID:        userID,
		Name:          nb.Name,
		Description:   nb.Description,
		Configuration: nb.Configuration,
		IsPublic:      nb.IsPublic,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	m.builds[b.ID] = b
	return &b, nil
}

// UpdateBuild changes one of the signed-in user's builds
func (m *MockClient) UpdateBuild(ctx context.Context, id string, u BuildUpdate) (*models.Build, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	userID, err := m.userID("update build")
	if err != nil {
		return nil, err
	}
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	b, ok := m.builds[id]
	if !ok || b.UserID != userID {
		return nil, &PersistenceError{Op: "update build", Status: 404, Code: "NOT_FOUND", Message: "build not found"}
	}

	if u.Name != nil {
		b.Name = *u.Name
	}
	if u.Description != nil {
		b.Description = *u.Description
	}
	if u.Configuration != nil {
		b.Configuration = *u.Configuration
	}
	if u.IsPublic != nil {
		b.IsPublic = *u.IsPublic
	}
	b.UpdatedAt = m.now()
	m.builds[id] = b
	return &b, nil
}

// DeleteBuild removes one of the signed-in user's builds
func (m *MockClient) DeleteBuild(ctx context.Context, id string) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	userID, err := m.userID("delete build")
	if err != nil {
		return err
	}
	b, ok := m.builds[id]
	if !ok || b.UserID != userID {
		return &PersistenceError{Op: "delete build", Status: 404, Code: "NOT_FOUND", Message: "build not found"}
	}
	delete(m.builds, id)
	return nil
}

// SignUp registers an account and signs it in
func (m *MockClient) SignUp(ctx context.Context, email, password string, p Profile) (*Session, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.signErr != nil {
		return nil, m.signErr
	}
	if _, exists := m.accounts[email]; exists {
		return nil, &PersistenceError{Op: "sign up", Status: 409, Code: "CONFLICT", Message: "email already registered"}
	}

	now := m.now()
	id := uuid.NewString()
	a := Account{
		User:    &models.User{ID: id, Email: email, CreatedAt: now},
		Profile: &models.Profile{ID: id, Email: email, Username: p.Username, FullName: p.FullName, CreatedAt: now, UpdatedAt: now},
	}
	m.accounts[email] = mockAccount{password: password, account: a}
	m.current = &a
	return &Session{Account: a, ExpiresAt: now.Add(24 * time.Hour)}, nil
}

// SignIn checks the registered credentials
func (m *MockClient) SignIn(ctx context.Context, email, password string) (*Session, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.signErr != nil {
		return nil, m.signErr
	}
	acct, ok := m.accounts[email]
	if !ok || acct.password != password {
		return nil, &AuthRequiredError{Op: "sign in", Message: "invalid email or password"}
	}
	a := acct.account
	m.current = &a
	return &Session{Account: a, ExpiresAt: m.now().Add(24 * time.Hour)}, nil
}

// SignOut forgets the signed-in account
func (m *MockClient) SignOut(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
	return nil
}

// CurrentUser returns the signed-in account
func (m *MockClient) CurrentUser(ctx context.Context) (*Account, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.userID("current user"); err != nil {
		return nil, err
	}
	a := *m.current
	return &a, nil
}

// Ensure MockClient implements Client
var _ Client = (*MockClient)(nil)
