package domain

import "errors"

// Errors shared across the service. Lower layers wrap these with context and
// the HTTP layer maps them to status codes with errors.Is.
var (
	ErrDuplicateIdentity   = errors.New("farmer with this phone or email already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrMalformedSubject    = errors.New("token subject is not a farmer id")
	ErrNotFoundOrForbidden = errors.New("resource not found or access denied")
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
)
