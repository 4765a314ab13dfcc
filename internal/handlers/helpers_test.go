package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Lukeeddleman/loadoutlab-site/internal/auth"
	"github.com/Lukeeddleman/loadoutlab-site/internal/forge"
	"github.com/Lukeeddleman/loadoutlab-site/internal/handlers"
	"github.com/Lukeeddleman/loadoutlab-site/internal/repository"
	"github.com/Lukeeddleman/loadoutlab-site/internal/services"
	"github.com/Lukeeddleman/loadoutlab-site/internal/sessions"
	"github.com/Lukeeddleman/loadoutlab-site/internal/testutil"
)

type testEnv struct {
	t        *testing.T
	server   *httptest.Server
	repo     *repository.Repository
	builds   *services.BuildService
	accounts *services.AccountService
	sessions *sessions.Manager
}

func newTestEnv(t *testing.T, opts ...forge.Option) *testEnv {
	t.Helper()

	repo := testutil.NewTestRepository(t)
	log := testutil.NewTestLogger()
	cat := testutil.NewTestCatalog()
	a := auth.New("test-secret", time.Hour)

	accounts := services.NewAccountService(log, repo, a)
	accounts.SetHashCost(bcrypt.MinCost)
	builds := services.NewBuildService(log, repo, cat, opts...)
	builds.SetBaseURL("http://builds.test")
	sess := sessions.NewManager(log, cat, time.Hour, opts...)

	h := handlers.NewForTesting(accounts, builds, cat, sess, a)
	server := httptest.NewServer(h.Router())
	t.Cleanup(server.Close)

	return &testEnv{t: t, server: server, repo: repo, builds: builds, accounts: accounts, sessions: sess}
}

// client returns a browser-like client with its own cookie jar
func (e *testEnv) client() *http.Client {
	jar, err := cookiejar.New(nil)
	if err != nil {
		e.t.Fatal(err)
	}
	return &http.Client{Jar: jar}
}

// do sends body as JSON and returns the status and raw response body
func (e *testEnv) do(c *http.Client, method, path string, body interface{}) (int, []byte) {
	e.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			e.t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		e.t.Fatal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Do(req)
	if err != nil {
		e.t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		e.t.Fatal(err)
	}
	return resp.StatusCode, data
}

// expect sends a request, checks the status and decodes the response into out
func (e *testEnv) expect(c *http.Client, method, path string, body interface{}, status int, out interface{}) {
	e.t.Helper()
	got, data := e.do(c, method, path, body)
	if got != status {
		e.t.Fatalf("%s %s: expected status %d, got %d: %s", method, path, status, got, data)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			e.t.Fatalf("%s %s: decoding %s: %v", method, path, data, err)
		}
	}
}

// expectError checks the status and error code of a failed request
func (e *testEnv) expectError(c *http.Client, method, path string, body interface{}, status int, code string) {
	e.t.Helper()
	var apiErr handlers.APIError
	e.expect(c, method, path, body, status, &apiErr)
	if apiErr.Code != code {
		e.t.Errorf("%s %s: expected code %s, got %s (%s)", method, path, code, apiErr.Code, apiErr.Message)
	}
}

// signUp creates an account and leaves c signed in
func (e *testEnv) signUp(c *http.Client, email, username string) services.Session {
	e.t.Helper()
	var session services.Session
	e.expect(c, http.MethodPost, "/api/auth/signup", handlers.SignUpRequest{
		Email:    email,
		Password: "correct horse",
		Username: username,
	}, http.StatusCreated, &session)
	return session
}
