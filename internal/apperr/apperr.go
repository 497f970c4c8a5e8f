// Package apperr defines the error taxonomy the service layer returns and the
// HTTP boundary translates into status codes.
package apperr

import "errors"

var (
	// ErrUnauthorized covers missing, malformed or otherwise unusable
	// credentials. Kept deliberately generic so responses never reveal
	// whether an account exists.
	ErrUnauthorized = errors.New("could not validate credentials")

	// ErrExpired marks a structurally valid token past its expiry.
	ErrExpired = errors.New("token already expired")

	// ErrInvalidToken marks a token that fails signature or structure checks,
	// or carries the wrong type for the consuming operation.
	ErrInvalidToken = errors.New("invalid token")

	// ErrAlreadyRevoked signals replay of a retired credential or a double
	// logout.
	ErrAlreadyRevoked = errors.New("token already revoked")

	// ErrConflict signals a duplicate unique key, e.g. a taken email.
	ErrConflict = errors.New("already exists")

	ErrNotFound = errors.New("not found")

	// ErrForbidden: authenticated but not entitled. Raised by policy checks
	// at the HTTP boundary, never by the session manager itself.
	ErrForbidden = errors.New("not enough rights")

	// ErrStorageIntegrity surfaces a constraint violation after the unit of
	// work rolled back.
	ErrStorageIntegrity = errors.New("database integrity error")
)
