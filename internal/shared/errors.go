package shared

import "errors"

var (
	// ErrNotFound indicates resource not found locally.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound indicates a remote existence check returned a definite absence.
	ErrUserNotFound = errors.New("user not found")
	// ErrDependencyUnavailable indicates a remote existence check could not complete.
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	// ErrValidation indicates a malformed request body or parameter.
	ErrValidation = errors.New("validation failed")
	// ErrForbidden indicates the caller's role does not meet the route's floor.
	ErrForbidden = errors.New("forbidden")
	// ErrAlreadyExists indicates a uniqueness conflict on create.
	ErrAlreadyExists = errors.New("already exists")
)
