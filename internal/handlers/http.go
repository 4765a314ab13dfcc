package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Lukeeddleman/loadoutlab-site/internal/errors"
	"github.com/Lukeeddleman/loadoutlab-site/internal/forge"
	"github.com/Lukeeddleman/loadoutlab-site/internal/models"
	"github.com/Lukeeddleman/loadoutlab-site/internal/questionnaire"
)

// Error codes for standardized API error responses
const (
	ErrCodeBadRequest            = "BAD_REQUEST"
	ErrCodeAuthRequired          = "AUTH_REQUIRED"
	ErrCodeForbidden             = "FORBIDDEN"
	ErrCodeNotFound              = "NOT_FOUND"
	ErrCodeConflict              = "CONFLICT"
	ErrCodeValidation            = "VALIDATION_ERROR"
	ErrCodeInternalServer        = "INTERNAL_SERVER_ERROR"
	ErrCodeIncompatiblePart      = "INCOMPATIBLE_PART"
	ErrCodePlatformNotConfigured = "PLATFORM_NOT_CONFIGURED"
	ErrCodeCategoryLocked        = "CATEGORY_LOCKED"
)

// APIError represents an error with an HTTP status code and error code
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Common errors
var (
	ErrBadRequest     = &APIError{Status: http.StatusBadRequest, Code: ErrCodeBadRequest, Message: "Bad request"}
	ErrAuthRequired   = &APIError{Status: http.StatusUnauthorized, Code: ErrCodeAuthRequired, Message: "Sign in to continue"}
	ErrNotFound       = &APIError{Status: http.StatusNotFound, Code: ErrCodeNotFound, Message: "Not found"}
	ErrInternalServer = &APIError{Status: http.StatusInternalServerError, Code: ErrCodeInternalServer, Message: "Internal server error"}
)

// NewAPIError creates a new API error with custom message and code
func NewAPIError(status int, code, message string) *APIError {
	return &APIError{Status: status, Code: code, Message: message}
}

// BadRequest creates a 400 error with custom message
func BadRequest(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: ErrCodeBadRequest, Message: message}
}

// Unauthorized creates a 401 error with custom message
func Unauthorized(message string) *APIError {
	return &APIError{Status: http.StatusUnauthorized, Code: ErrCodeAuthRequired, Message: message}
}

// NotFound creates a 404 error with custom message
func NotFound(message string) *APIError {
	return &APIError{Status: http.StatusNotFound, Code: ErrCodeNotFound, Message: message}
}

// Conflict creates a 409 error with custom message
func Conflict(message string) *APIError {
	return &APIError{Status: http.StatusConflict, Code: ErrCodeConflict, Message: message}
}

// InternalError creates a 500 error, logs the original error
func InternalError(err error) *APIError {
	log.Printf("Internal error: %v", err)
	return &APIError{Status: http.StatusInternalServerError, Code: ErrCodeInternalServer, Message: "Internal server error"}
}

// respondJSON writes a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondOK writes a 200 OK JSON response
func respondOK(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusOK, data)
}

// respondCreated writes a 201 Created JSON response
func respondCreated(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusCreated, data)
}

// respondSuccess writes a 200 OK with a message
func respondSuccess(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusOK, map[string]string{"message": message})
}

// respondDeleted writes a 204 No Content response
func respondDeleted(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, err error) {
	apiErr := ToAPIError(err)
	respondJSON(w, apiErr.Status, apiErr)
}

// decodeJSON decodes JSON from request body into the target
func decodeJSON(r *http.Request, target interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		if err == io.EOF {
			return BadRequest("Request body is empty")
		}
		return BadRequest("Invalid JSON: " + err.Error())
	}
	return nil
}

// categoryParam extracts the {category} URL parameter
func categoryParam(r *http.Request) (models.CategoryKey, error) {
	param := chi.URLParam(r, "category")
	if param == "" {
		return "", BadRequest("Missing category parameter")
	}
	return models.CategoryKey(param), nil
}

// ToAPIError converts domain and service errors to API errors
func ToAPIError(err error) *APIError {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}

	var incompatible *forge.IncompatiblePartError
	var unconfigured *forge.UnconfiguredPlatformError
	var locked *forge.LockedCategoryError
	var unknown *forge.UnknownCategoryError
	switch {
	case stderrors.As(err, &incompatible):
		return &APIError{Status: http.StatusUnprocessableEntity, Code: ErrCodeIncompatiblePart, Message: incompatible.Error()}
	case stderrors.As(err, &unconfigured):
		return &APIError{Status: http.StatusConflict, Code: ErrCodePlatformNotConfigured, Message: unconfigured.Error()}
	case stderrors.As(err, &locked):
		return &APIError{Status: http.StatusConflict, Code: ErrCodeCategoryLocked, Message: locked.Error()}
	case stderrors.As(err, &unknown):
		return NotFound(unknown.Error())
	case stderrors.Is(err, questionnaire.ErrWrongState):
		return Conflict(err.Error())
	}

	var appErr *errors.Error
	if stderrors.As(err, &appErr) {
		switch appErr.Kind {
		case errors.ErrNotFound:
			return NotFound(appErr.Message)
		case errors.ErrValidation, errors.ErrInvalidInput:
			return &APIError{Status: http.StatusBadRequest, Code: ErrCodeValidation, Message: appErr.Message}
		case errors.ErrConflict:
			return Conflict(appErr.Message)
		case errors.ErrUnauthorized:
			return Unauthorized(appErr.Message)
		case errors.ErrForbidden:
			return &APIError{Status: http.StatusForbidden, Code: ErrCodeForbidden, Message: appErr.Message}
		default:
			return InternalError(err)
		}
	}

	return InternalError(err)
}
