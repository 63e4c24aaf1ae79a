package models

import "errors"

var (
	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict is returned when a unique constraint would be violated,
	// e.g. registering with an email that is already taken.
	ErrConflict = errors.New("resource already exists")

	// ErrInvalidCredentials is returned on a failed login attempt.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrForbidden is returned when an authenticated user attempts to act on
	// a resource they do not own or participate in.
	ErrForbidden = errors.New("not allowed to act on this resource")

	// ErrInvalidTransition is returned when a status update would move a
	// delivery or payment backwards or skip a state.
	ErrInvalidTransition = errors.New("status transition not allowed")

	// ErrPackageUnavailable is returned when a delivery is requested for a
	// package that is no longer open for matching.
	ErrPackageUnavailable = errors.New("package is not available for matching")
)

// ErrorResponse is the JSON body returned for every failed request.
type ErrorResponse struct {
	Message string `json:"message"`
}
