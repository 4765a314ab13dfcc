package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Lukeeddleman/loadoutlab-site/internal/auth"
	"github.com/Lukeeddleman/loadoutlab-site/internal/forge"
	"github.com/Lukeeddleman/loadoutlab-site/internal/models"
	"github.com/Lukeeddleman/loadoutlab-site/internal/questionnaire"
	"github.com/Lukeeddleman/loadoutlab-site/internal/services"
)

// sessionPayload returns the configuration of the request's forge session
func (h *Handlers) sessionPayload(w http.ResponseWriter, r *http.Request) models.ConfigurationPayload {
	var payload models.ConfigurationPayload
	h.Sessions.FromRequest(w, r).Do(func(store *forge.Store, _ *questionnaire.Workflow) error {
		payload = store.Payload()
		return nil
	})
	return payload
}

// handleGetBuilds lists the signed-in user's builds
func (h *Handlers) handleGetBuilds(w http.ResponseWriter, r *http.Request) {
	builds, err := h.Builds.ListBuilds(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, newBuildsResponse(builds))
}

// handleGetPublicBuilds lists the community feed
func (h *Handlers) handleGetPublicBuilds(w http.ResponseWriter, r *http.Request) {
	builds, err := h.Builds.ListPublicBuilds(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, newBuildsResponse(builds))
}

// handleGetTemplates lists the starter builds
func (h *Handlers) handleGetTemplates(w http.ResponseWriter, r *http.Request) {
	builds, err := h.Builds.ListTemplates(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, newBuildsResponse(builds))
}

// handleGetBuild returns one build visible to the caller
func (h *Handlers) handleGetBuild(w http.ResponseWriter, r *http.Request) {
	build, err := h.Builds.GetBuild(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, build)
}

// handleCreateBuild saves a build, by default the session's current one
func (h *Handlers) handleCreateBuild(w http.ResponseWriter, r *http.Request) {
	var req BuildCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	nb := services.NewBuild{
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
	}
	if req.Configuration != nil {
		nb.Configuration = *req.Configuration
	} else {
		nb.Configuration = h.sessionPayload(w, r)
	}

	build, err := h.Builds.SaveBuild(r.Context(), auth.UserIDFromContext(r.Context()), nb)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, build)
}

// handleUpdateBuild edits a build the caller owns
func (h *Handlers) handleUpdateBuild(w http.ResponseWriter, r *http.Request) {
	var req BuildUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	update := services.BuildUpdate{
		Name:          req.Name,
		Description:   req.Description,
		Configuration: req.Configuration,
		IsPublic:      req.IsPublic,
	}
	if req.FromSession {
		payload := h.sessionPayload(w, r)
		update.Configuration = &payload
	}

	build, err := h.Builds.UpdateBuild(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id"), update)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, build)
}

// handleDeleteBuild removes a build the caller owns
func (h *Handlers) handleDeleteBuild(w http.ResponseWriter, r *http.Request) {
	if err := h.Builds.DeleteBuild(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

// handleGetBuildQR serves a PNG QR code linking to the build
func (h *Handlers) handleGetBuildQR(w http.ResponseWriter, r *http.Request) {
	png, err := h.Builds.ShareQR(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}
