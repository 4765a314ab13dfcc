package handlers

import (
	"net/http"

	"github.com/Lukeeddleman/loadoutlab-site/internal/auth"
	"github.com/Lukeeddleman/loadoutlab-site/internal/services"
)

// handleSignUp creates an account and signs it in
func (h *Handlers) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	session, err := h.Accounts.SignUp(r.Context(), req.Email, req.Password, services.ProfileMetadata{
		Username: req.Username,
		FullName: req.FullName,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	auth.SetSessionCookie(w, session.Token, session.ExpiresAt)
	respondCreated(w, session)
}

// handleSignIn checks credentials and sets the session cookie
func (h *Handlers) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	session, err := h.Accounts.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	auth.SetSessionCookie(w, session.Token, session.ExpiresAt)
	respondOK(w, session)
}

// handleSignOut revokes the session token and clears the cookie
func (h *Handlers) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if token := auth.TokenFromRequest(r); token != "" {
		h.Accounts.SignOut(token)
	}
	auth.ClearSessionCookie(w)
	respondSuccess(w, "Signed out")
}

// handleMe returns the signed-in account
func (h *Handlers) handleMe(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, ErrAuthRequired)
		return
	}

	account, err := h.Accounts.CurrentUser(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, account)
}

// handleUpdateProfile edits the signed-in user's profile
func (h *Handlers) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	profile, err := h.Accounts.UpdateProfile(r.Context(), auth.UserIDFromContext(r.Context()), services.ProfileUpdate{
		Username:  req.Username,
		FullName:  req.FullName,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, profile)
}

// handleGetStats returns the signed-in user's dashboard counts
func (h *Handlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Builds.Stats(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, stats)
}
