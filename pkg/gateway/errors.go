package gateway

import (
	"errors"
	"fmt"
)

// PersistenceError reports a failed gateway call. Status is zero when the
// server was never reached.
type PersistenceError struct {
	Op      string
	Status  int
	Code    string
	Message string
}

func (e *PersistenceError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.Status)
}

// AuthRequiredError is returned when the server answers 401
type AuthRequiredError struct {
	Op      string
	Message string
}

func (e *AuthRequiredError) Error() string {
	return fmt.Sprintf("%s: sign in required: %s", e.Op, e.Message)
}

// IsAuthRequired reports whether err asks the caller to sign in
func IsAuthRequired(err error) bool {
	var authErr *AuthRequiredError
	return errors.As(err, &authErr)
}

// IsNotFound reports whether the server answered 404
func IsNotFound(err error) bool {
	var pErr *PersistenceError
	return errors.As(err, &pErr) && pErr.Status == 404
}
