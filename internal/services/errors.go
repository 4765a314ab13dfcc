package services

import (
	"github.com/Lukeeddleman/loadoutlab-site/internal/errors"
)

// Service errors
var (
	ErrInvalidCredentials = errors.Unauthorized("Invalid email or password")
	ErrEmailTaken         = errors.Conflict("An account with this email already exists")
	ErrUsernameTaken      = errors.Conflict("That username is already taken")
	ErrInvalidEmail       = errors.Validation("A valid email address is required")
	ErrWeakPassword       = errors.Validationf("Password must be at least %d characters", MinPasswordLength)
	ErrBuildNameRequired  = errors.Validation("Build name is required")
	ErrBuildNotFound      = errors.NotFound("Build not found")
	ErrUserNotFound       = errors.NotFound("User not found")
	ErrBaseURLMissing     = errors.Validation("base_url is not configured")
)
