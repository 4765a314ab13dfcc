package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(h.Metrics.Middleware)
	r.Use(h.Auth.OptionalUser)

	// Long-lived connections stay outside the request timeout
	if h.Hub != nil {
		r.Get("/ws", h.Hub.ServeWs)
	}
	if h.MetricsHandler != nil {
		r.Handle("/metrics", h.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		// Pages
		if h.templates != nil {
			r.Handle("/static/*", http.StripPrefix("/static/", h.staticServer))
			r.Get("/", h.handleIndex)
			r.Get("/forge", h.handleForgePage)
		}

		// Catalog (public)
		r.Get("/api/catalog", h.handleGetCatalog)
		r.Get("/api/catalog/{category}", h.handleGetCategoryParts)

		// Questionnaire (per browser session)
		r.Route("/api/forge/questionnaire", func(r chi.Router) {
			r.Get("/", h.handleGetQuestionnaire)
			r.Post("/firearm-type", h.handleSelectFirearmType)
			r.Post("/sub-type", h.handleSelectSubType)
			r.Get("/candidates", h.handleGetCandidates)
			r.Post("/starting-part", h.handleSelectStartingPart)
			r.Post("/skip", h.handleSkipQuestionnaire)
			r.Post("/back", h.handleQuestionnaireBack)
			r.Post("/restart", h.handleRestartQuestionnaire)
		})

		// Configuration store (per browser session)
		r.Get("/api/forge", h.handleGetForge)
		r.Put("/api/forge/configuration", h.handleSetConfiguration)
		r.Put("/api/forge/parts/{category}", h.handleSelectPart)
		r.Delete("/api/forge/parts/{category}", h.handleClearPart)
		r.Post("/api/forge/reset", h.handleResetForge)
		r.Post("/api/forge/load/{id}", h.handleLoadBuild)

		// Auth (public)
		r.Post("/api/auth/signup", h.handleSignUp)
		r.Post("/api/auth/signin", h.handleSignIn)
		r.Post("/api/auth/signout", h.handleSignOut)
		r.Get("/api/auth/me", h.handleMe)

		// Builds readable without an account
		r.Get("/api/builds/public", h.handleGetPublicBuilds)
		r.Get("/api/builds/templates", h.handleGetTemplates)
		r.Get("/api/builds/{id}", h.handleGetBuild)
		r.Get("/api/builds/{id}/qr", h.handleGetBuildQR)

		// Account (protected)
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireUser)

			r.Put("/api/account/profile", h.handleUpdateProfile)
			r.Get("/api/account/stats", h.handleGetStats)

			r.Get("/api/builds", h.handleGetBuilds)
			r.Post("/api/builds", h.handleCreateBuild)
			r.Put("/api/builds/{id}", h.handleUpdateBuild)
			r.Delete("/api/builds/{id}", h.handleDeleteBuild)
		})
	})

	return r
}
