package domain

import "errors"

// Sentinel errors for the domain layer. These provide consistent, checkable
// errors for common business logic failures.
var (
	ErrUserAlreadyExists  = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials provided")
	ErrEmailNotVerified   = errors.New("email address has not been verified")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrNotFound           = errors.New("requested resource not found")
	ErrInvalidInput       = errors.New("invalid input")

	// ErrPermissionDenied is returned when a caller touches data it does not own,
	// or when no user is signed in.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrUnavailable is returned when the backing store cannot be reached.
	ErrUnavailable = errors.New("service unavailable")
	// ErrOffline is returned when the client reports it has no connectivity.
	ErrOffline = errors.New("client is offline")
)
