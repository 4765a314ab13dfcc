package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Lukeeddleman/loadoutlab-site/internal/auth"
	"github.com/Lukeeddleman/loadoutlab-site/internal/forge"
	"github.com/Lukeeddleman/loadoutlab-site/internal/metrics"
	"github.com/Lukeeddleman/loadoutlab-site/internal/models"
	"github.com/Lukeeddleman/loadoutlab-site/internal/questionnaire"
)

func newForgeResponse(store *forge.Store, reset []models.CategoryKey) ForgeResponse {
	return ForgeResponse{
		Snapshot: store.Snapshot(),
		Summary:  store.Summary(),
		Reset:    reset,
	}
}

// selectionOutcome classifies a selection result for the metrics counter
func selectionOutcome(err error) string {
	var incompatible *forge.IncompatiblePartError
	var locked *forge.LockedCategoryError
	switch {
	case err == nil:
		return metrics.OutcomeAccepted
	case stderrors.As(err, &incompatible):
		return metrics.OutcomeIncompatible
	case stderrors.As(err, &locked):
		return metrics.OutcomeLocked
	}
	return metrics.OutcomeRejected
}

// handleGetForge returns the session's build
func (h *Handlers) handleGetForge(w http.ResponseWriter, r *http.Request) {
	var resp ForgeResponse
	h.Sessions.FromRequest(w, r).Do(func(store *forge.Store, _ *questionnaire.Workflow) error {
		resp = newForgeResponse(store, nil)
		return nil
	})
	respondOK(w, resp)
}

// handleSetConfiguration replaces the platform, resetting parts that no longer fit
func (h *Handlers) handleSetConfiguration(w http.ResponseWriter, r *http.Request) {
	var req models.PlatformConfiguration
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	var resp ForgeResponse
	err := h.Sessions.FromRequest(w, r).Do(func(store *forge.Store, _ *questionnaire.Workflow) error {
		reset, err := store.SetConfiguration(req)
		if err != nil {
			return err
		}
		resp = newForgeResponse(store, reset)
		return nil
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, resp)
}

// handleSelectPart puts a catalog part into a category
func (h *Handlers) handleSelectPart(w http.ResponseWriter, r *http.Request) {
	key, err := categoryParam(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var req PartRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.PartID == "" {
		respondError(w, BadRequest("part_id is required"))
		return
	}
	if !h.Catalog.Has(key) {
		respondError(w, &forge.UnknownCategoryError{Category: key})
		return
	}
	part, ok := h.Catalog.Part(key, req.PartID)
	if !ok {
		respondError(w, NotFound("No "+string(key)+" part with id "+req.PartID))
		return
	}

	var resp ForgeResponse
	err = h.Sessions.FromRequest(w, r).Do(func(store *forge.Store, _ *questionnaire.Workflow) error {
		if err := store.SetSelectedPart(key, part); err != nil {
			return err
		}
		resp = newForgeResponse(store, nil)
		return nil
	})
	h.Metrics.RecordSelection(string(key), selectionOutcome(err))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, resp)
}

// handleClearPart returns a category to "(None)"
func (h *Handlers) handleClearPart(w http.ResponseWriter, r *http.Request) {
	key, err := categoryParam(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var resp ForgeResponse
	err = h.Sessions.FromRequest(w, r).Do(func(store *forge.Store, _ *questionnaire.Workflow) error {
		if err := store.ClearSelectedPart(key); err != nil {
			return err
		}
		resp = newForgeResponse(store, nil)
		return nil
	})
	if err != nil {
		respondError(w, err)
		return
	}
	h.Metrics.RecordSelection(string(key), metrics.OutcomeCleared)
	respondOK(w, resp)
}

// handleResetForge clears the platform, every selection and the questionnaire
func (h *Handlers) handleResetForge(w http.ResponseWriter, r *http.Request) {
	var resp ForgeResponse
	h.Sessions.FromRequest(w, r).Do(func(store *forge.Store, wf *questionnaire.Workflow) error {
		store.ResetConfiguration()
		wf.Restart()
		resp = newForgeResponse(store, nil)
		return nil
	})
	respondOK(w, resp)
}

// handleLoadBuild replaces the session's build with a saved one the viewer can see
func (h *Handlers) handleLoadBuild(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	build, err := h.Builds.GetBuild(r.Context(), auth.UserIDFromContext(r.Context()), id)
	if err != nil {
		respondError(w, err)
		return
	}

	var resp ForgeResponse
	err = h.Sessions.FromRequest(w, r).Do(func(store *forge.Store, _ *questionnaire.Workflow) error {
		if err := store.Restore(build.Configuration); err != nil {
			return err
		}
		resp = newForgeResponse(store, nil)
		return nil
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, resp)
}
