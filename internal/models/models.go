package models

import "time"

// ConfigurationPayload is what a saved build stores: the platform, full part
// snapshots per category and the total at save time. Snapshots keep old builds
// renderable after catalog entries change.
type ConfigurationPayload struct {
	Platform  *PlatformConfiguration `json:"platform"`
	Selection Selection              `json:"selection"`
	Total     Money                  `json:"total"`
}

// Author is the public part of a build owner's profile
type Author struct {
	Username string `json:"username,omitempty"`
	FullName string `json:"full_name,omitempty"`
}

// Build is a named, persisted configuration
type Build struct {
	ID            string               `json:"id"`
	UserID        string               `json:"user_id"`
	Name          string               `json:"name"`
	Description   string               `json:"description,omitempty"`
	Configuration ConfigurationPayload `json:"configuration"`
	IsPublic      bool                 `json:"is_public"`
	IsTemplate    bool                 `json:"is_template"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
	Author        *Author              `json:"author,omitempty"`
}

// User is an account holder
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile holds the editable account details
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username,omitempty"`
	FullName  string    `json:"full_name,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BuildStats summarises a user's saved builds for the account dashboard
type BuildStats struct {
	TotalBuilds    int   `json:"total_builds"`
	PublicBuilds   int   `json:"public_builds"`
	TotalValue     Money `json:"total_value"`
	RecentActivity int   `json:"recent_activity"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
