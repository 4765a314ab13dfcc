package handlers

import (
	"net/http"

	"github.com/Lukeeddleman/loadoutlab-site/internal/catalog"
	"github.com/Lukeeddleman/loadoutlab-site/internal/forge"
	"github.com/Lukeeddleman/loadoutlab-site/internal/questionnaire"
)

func newQuestionnaireResponse(wf *questionnaire.Workflow) QuestionnaireResponse {
	resp := QuestionnaireResponse{
		State:       wf.State(),
		FirearmType: wf.FirearmType(),
		SubType:     wf.SubType(),
		Options:     wf.Options(),
	}
	if wf.State() == questionnaire.ChoosingStartingComponent {
		resp.StartingCategory, _ = wf.StartingCategory()
	}
	if result, err := wf.Result(); err == nil {
		resp.Result = &result
	}
	return resp
}

// handleGetQuestionnaire returns the current step and its options
func (h *Handlers) handleGetQuestionnaire(w http.ResponseWriter, r *http.Request) {
	var resp QuestionnaireResponse
	h.Sessions.FromRequest(w, r).Do(func(_ *forge.Store, wf *questionnaire.Workflow) error {
		resp = newQuestionnaireResponse(wf)
		return nil
	})
	respondOK(w, resp)
}

// questionnaireStep runs step against the session workflow and responds with
// the resulting state
func (h *Handlers) questionnaireStep(w http.ResponseWriter, r *http.Request, step func(*forge.Store, *questionnaire.Workflow) (*bool, error)) {
	var resp QuestionnaireResponse
	err := h.Sessions.FromRequest(w, r).Do(func(store *forge.Store, wf *questionnaire.Workflow) error {
		advanced, err := step(store, wf)
		if err != nil {
			return err
		}
		resp = newQuestionnaireResponse(wf)
		resp.Advanced = advanced
		return nil
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, resp)
}

// handleSelectFirearmType answers the first question. Options that are not
// built out yet leave the step unchanged with advanced=false.
func (h *Handlers) handleSelectFirearmType(w http.ResponseWriter, r *http.Request) {
	var req FirearmTypeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	h.questionnaireStep(w, r, func(_ *forge.Store, wf *questionnaire.Workflow) (*bool, error) {
		ok, err := wf.SelectFirearmType(req.FirearmType)
		return &ok, err
	})
}

// handleSelectSubType answers the second question. When the sub-type has no
// starting component step the result is applied to the store right away.
func (h *Handlers) handleSelectSubType(w http.ResponseWriter, r *http.Request) {
	var req SubTypeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	h.questionnaireStep(w, r, func(store *forge.Store, wf *questionnaire.Workflow) (*bool, error) {
		ok, err := wf.SelectSubType(req.SubType)
		if err != nil {
			return nil, err
		}
		if wf.State() == questionnaire.Complete {
			if _, err := wf.Apply(store); err != nil {
				return nil, err
			}
		}
		return &ok, nil
	})
}

// handleGetCandidates lists the starting parts for the chosen platform
func (h *Handlers) handleGetCandidates(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var resp CandidatesResponse
	err = h.Sessions.FromRequest(w, r).Do(func(_ *forge.Store, wf *questionnaire.Workflow) error {
		all, err := wf.Candidates(catalog.Filter{})
		if err != nil {
			return err
		}
		key, _ := wf.StartingCategory()
		resp = CandidatesResponse{
			Category: key,
			Parts:    filter.Apply(all),
			Brands:   catalog.Brands(all),
			MaxPrice: catalog.MaxPrice(all),
		}
		return nil
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, resp)
}

// handleSelectStartingPart picks the starting part, completes the
// questionnaire and seeds the store with the platform and part
func (h *Handlers) handleSelectStartingPart(w http.ResponseWriter, r *http.Request) {
	var req PartRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.PartID == "" {
		respondError(w, BadRequest("part_id is required"))
		return
	}
	h.questionnaireStep(w, r, func(store *forge.Store, wf *questionnaire.Workflow) (*bool, error) {
		if err := wf.SelectStartingPart(req.PartID); err != nil {
			return nil, err
		}
		result, err := wf.Apply(store)
		if err != nil {
			return nil, err
		}
		h.Metrics.RecordSelection(string(result.Category), selectionOutcome(nil))
		return nil, nil
	})
}

// handleSkipQuestionnaire completes the questionnaire without a starting
// part and applies the platform
func (h *Handlers) handleSkipQuestionnaire(w http.ResponseWriter, r *http.Request) {
	h.questionnaireStep(w, r, func(store *forge.Store, wf *questionnaire.Workflow) (*bool, error) {
		if err := wf.Skip(); err != nil {
			return nil, err
		}
		_, err := wf.Apply(store)
		return nil, err
	})
}

// handleQuestionnaireBack returns to the previous step
func (h *Handlers) handleQuestionnaireBack(w http.ResponseWriter, r *http.Request) {
	h.questionnaireStep(w, r, func(_ *forge.Store, wf *questionnaire.Workflow) (*bool, error) {
		wf.Back()
		return nil, nil
	})
}

// handleRestartQuestionnaire starts the questionnaire over. The store is left
// as it is.
func (h *Handlers) handleRestartQuestionnaire(w http.ResponseWriter, r *http.Request) {
	h.questionnaireStep(w, r, func(_ *forge.Store, wf *questionnaire.Workflow) (*bool, error) {
		wf.Restart()
		return nil, nil
	})
}
