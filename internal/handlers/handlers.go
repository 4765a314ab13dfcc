package handlers

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/Lukeeddleman/loadoutlab-site/internal/auth"
	"github.com/Lukeeddleman/loadoutlab-site/internal/catalog"
	"github.com/Lukeeddleman/loadoutlab-site/internal/metrics"
	"github.com/Lukeeddleman/loadoutlab-site/internal/services"
	"github.com/Lukeeddleman/loadoutlab-site/internal/sessions"
	"github.com/Lukeeddleman/loadoutlab-site/internal/websocket"
)

// NewStaticServer creates a static file server from an fs.FS
func NewStaticServer(staticFS fs.FS) http.Handler {
	return http.FileServer(http.FS(staticFS))
}

// PageData holds the data passed to page templates
type PageData struct {
	Title    string
	SignedIn bool
	BuildID  string
}

// Templates holds all parsed HTML templates
type Templates struct {
	Index *template.Template
	Forge *template.Template
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Accounts       services.AccountServicer
	Builds         services.BuildServicer
	Catalog        *catalog.Catalog
	Sessions       *sessions.Manager
	Auth           *auth.Auth
	Hub            *websocket.Hub
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	Log            HTTPLogger
	templates      *Templates
	staticServer   http.Handler
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
}

// New creates a new Handlers instance with all dependencies.
// m and metricsHandler may be nil.
func New(
	accounts services.AccountServicer,
	builds services.BuildServicer,
	cat *catalog.Catalog,
	sess *sessions.Manager,
	templatesFS fs.FS,
	staticServer http.Handler,
	a *auth.Auth,
	hub *websocket.Hub,
	m *metrics.Metrics,
	metricsHandler http.Handler,
	log HTTPLogger,
) (*Handlers, error) {
	templates, err := loadTemplates(templatesFS)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	return &Handlers{
		Accounts:       accounts,
		Builds:         builds,
		Catalog:        cat,
		Sessions:       sess,
		Auth:           a,
		Hub:            hub,
		Metrics:        m,
		MetricsHandler: metricsHandler,
		Log:            log,
		templates:      templates,
		staticServer:   staticServer,
	}, nil
}

// NoopHTTPLogger is a test logger that always returns false for HTTP logging
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }

// NewForTesting creates a Handlers instance without templates or a hub, for
// exercising the API endpoints
func NewForTesting(
	accounts services.AccountServicer,
	builds services.BuildServicer,
	cat *catalog.Catalog,
	sess *sessions.Manager,
	a *auth.Auth,
) *Handlers {
	return &Handlers{
		Accounts: accounts,
		Builds:   builds,
		Catalog:  cat,
		Sessions: sess,
		Auth:     a,
		Log:      NoopHTTPLogger{},
	}
}

// loadTemplates parses all templates once at startup
func loadTemplates(templatesFS fs.FS) (*Templates, error) {
	t := &Templates{}
	var err error

	if t.Index, err = template.ParseFS(templatesFS, "layout.html", "index.html"); err != nil {
		return nil, fmt.Errorf("index template: %w", err)
	}
	if t.Forge, err = template.ParseFS(templatesFS, "layout.html", "forge.html"); err != nil {
		return nil, fmt.Errorf("forge template: %w", err)
	}

	return t, nil
}

// handleIndex renders the landing page
func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, h.templates.Index, PageData{Title: "LoadoutLab"})
}

// handleForgePage renders the builder shell. ?build= preloads a saved build
// client side.
func (h *Handlers) handleForgePage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, h.templates.Forge, PageData{
		Title:   "Forge | LoadoutLab",
		BuildID: r.URL.Query().Get("build"),
	})
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, tmpl *template.Template, data PageData) {
	_, data.SignedIn = h.Auth.ClaimsFromRequest(r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}
