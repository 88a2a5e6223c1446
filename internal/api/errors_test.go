package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/tasker-api/internal/avatar"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/service"
	"github.com/phrazzld/tasker-api/internal/service/auth"
	"github.com/phrazzld/tasker-api/internal/store"
)

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized, "Please authenticate."},
		{"missing token", auth.ErrMissingToken, http.StatusUnauthorized, "Please authenticate."},
		{"unauthenticated", fmt.Errorf("logout: %w", service.ErrUnauthenticated), http.StatusUnauthorized, "Please authenticate."},
		{"invalid operation", fmt.Errorf("%w: owner", service.ErrInvalidOperation), http.StatusBadRequest, "Invalid updates!"},
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusBadRequest, "Unable to login"},
		{"user not found", fmt.Errorf("get: %w", store.ErrUserNotFound), http.StatusNotFound, "User not found"},
		{"task not found", store.ErrTaskNotFound, http.StatusNotFound, "Task not found"},
		{"avatar not found", store.ErrAvatarNotFound, http.StatusNotFound, "Avatar not found"},
		{"generic not found", store.ErrNotFound, http.StatusNotFound, "Not found"},
		{"email exists", fmt.Errorf("create: %w", store.ErrEmailExists), http.StatusBadRequest, "Email already exists"},
		{
			"validation keeps innermost detail",
			fmt.Errorf("failed to create user: %w", domain.ErrPasswordContainsWord),
			http.StatusBadRequest,
			"Validation failed: password cannot contain \"password\"",
		},
		{
			"invalid query",
			fmt.Errorf("%w: limit must be a positive integer", service.ErrInvalidQuery),
			http.StatusBadRequest,
			"Validation failed: invalid query: limit must be a positive integer",
		},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest, "Invalid entity data"},
		{"invalid upload", fmt.Errorf("%w: only png, jpg and jpeg files", avatar.ErrInvalidUpload), http.StatusBadRequest, ""},
		{"internal", errors.New("pq: connection refused at 10.0.0.3"), http.StatusInternalServerError, "An unexpected error occurred"},
		{"nil", nil, http.StatusInternalServerError, "An unexpected error occurred"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, MapErrorToStatusCode(tc.err))
			msg := GetSafeErrorMessage(tc.err)
			if tc.message != "" {
				assert.Equal(t, tc.message, msg)
			} else {
				assert.NotEmpty(t, msg)
			}
		})
	}
}

func TestInnermostMessageStopsAtSentinel(t *testing.T) {
	err := fmt.Errorf("outer: %w", fmt.Errorf("%w: detail", domain.ErrValidation))
	assert.Equal(t, domain.ErrValidation.Error()+": detail", innermostMessage(err, domain.ErrValidation))
	assert.Equal(t, domain.ErrValidation.Error(), innermostMessage(domain.ErrValidation, domain.ErrValidation))
}
