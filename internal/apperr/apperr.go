// Package apperr defines the failure kinds shared by the store, the
// authenticator and the HTTP boundary.
package apperr

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrNotFound           = errors.New("not found")
	ErrConstraint         = errors.New("constraint violation")
	ErrUpload             = errors.New("upload failed")
	ErrSerialization      = errors.New("malformed request body")
	ErrValidation         = errors.New("invalid input")
)

// IsAuth reports whether err is one of the authentication failures.
func IsAuth(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrUnauthenticated)
}
