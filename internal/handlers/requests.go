package handlers

import "github.com/Lukeeddleman/loadoutlab-site/internal/models"

// FirearmTypeRequest selects a firearm type in the questionnaire
type FirearmTypeRequest struct {
	FirearmType models.FirearmType `json:"firearm_type"`
}

// SubTypeRequest selects a sub-type in the questionnaire
type SubTypeRequest struct {
	SubType models.SubType `json:"sub_type"`
}

// PartRequest names a catalog part by ID
type PartRequest struct {
	PartID string `json:"part_id"`
}

// SignUpRequest represents a request to create an account
type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username,omitempty"`
	FullName string `json:"full_name,omitempty"`
}

// SignInRequest represents a request to sign in
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdateRequest represents a request to change profile fields.
// Omitted fields are left unchanged.
type ProfileUpdateRequest struct {
	Username  *string `json:"username,omitempty"`
	FullName  *string `json:"full_name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// BuildCreateRequest represents a request to save a build. Without a
// configuration the session's current build is saved.
type BuildCreateRequest struct {
	Name          string                       `json:"name"`
	Description   string                       `json:"description,omitempty"`
	Configuration *models.ConfigurationPayload `json:"configuration,omitempty"`
	IsPublic      bool                         `json:"is_public"`
}

// BuildUpdateRequest represents a request to edit a saved build.
// FromSession replaces the configuration with the session's current build.
type BuildUpdateRequest struct {
	Name          *string                      `json:"name,omitempty"`
	Description   *string                      `json:"description,omitempty"`
	Configuration *models.ConfigurationPayload `json:"configuration,omitempty"`
	IsPublic      *bool                        `json:"is_public,omitempty"`
	FromSession   bool                         `json:"from_session,omitempty"`
}
