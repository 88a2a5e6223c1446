package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/tasker-api/internal/domain"
)

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Store and domain sentinels are wrapped, never replaced
// 3. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrInvalidOperation indicates an update payload named a field outside
	// the allow-list. Nothing is written when it is returned.
	// API layer should map this to HTTP 400 Bad Request.
	ErrInvalidOperation = errors.New("invalid updates")

	// ErrInvalidCredentials indicates an unknown email or a wrong password.
	// The two cases are deliberately indistinguishable.
	// API layer should map this to HTTP 400 Bad Request.
	ErrInvalidCredentials = errors.New("unable to login")

	// ErrInvalidQuery indicates malformed list parameters.
	ErrInvalidQuery = fmt.Errorf("%w: invalid query", domain.ErrValidation)

	// ErrUnauthenticated indicates the request carries no usable session.
	// API layer should map this to HTTP 401 Unauthorized.
	ErrUnauthenticated = errors.New("please authenticate")
)
