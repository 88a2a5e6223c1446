package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/phrazzld/tasker-api/internal/api/middleware"
	"github.com/phrazzld/tasker-api/internal/avatar"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/service"
	"github.com/phrazzld/tasker-api/internal/service/auth"
	"github.com/phrazzld/tasker-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, service.ErrInvalidOperation),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrEmailExists),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, avatar.ErrInvalidUpload):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, service.ErrUnauthenticated):
		return middleware.UnauthenticatedMessage

	case errors.Is(err, service.ErrInvalidOperation):
		return "Invalid updates!"

	case errors.Is(err, service.ErrInvalidCredentials):
		return "Unable to login"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrAvatarNotFound):
		return "Avatar not found"

	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, domain.ErrValidation):
		return capitalize(innermostMessage(err, domain.ErrValidation))

	case errors.Is(err, avatar.ErrInvalidUpload):
		return capitalize(innermostMessage(err, avatar.ErrInvalidUpload))

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// innermostMessage walks the wrap chain of err and returns the message of
// the deepest error that still wraps sentinel. Layers added on top (such as
// "failed to create user: ...") are dropped, and so is anything below the
// sentinel. Sentinel-wrapping errors are built from constant text, so the
// result is safe to show.
func innermostMessage(err, sentinel error) string {
	msg := sentinel.Error()
	for e := err; e != nil; e = errors.Unwrap(e) {
		if e == sentinel {
			break
		}
		if errors.Is(e, sentinel) {
			msg = e.Error()
		}
	}
	return msg
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
