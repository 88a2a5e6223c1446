package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/phrazzld/tasker-api/internal/api/middleware"
	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/service"
)

// HandleAPIError writes the status and safe message for err and logs the
// redacted original.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	var opts []shared.ResponseOption
	if errors.Is(err, service.ErrInvalidCredentials) {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err, opts...)
}

// requireUser returns the authenticated user or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user, ok := middleware.GetUser(r)
	if !ok {
		HandleAPIError(w, r, service.ErrUnauthenticated)
		return nil, false
	}
	return user, true
}

// pathUUID extracts a UUID path parameter. A malformed id is reported as
// notFound, since no such resource can exist.
func pathUUID(w http.ResponseWriter, r *http.Request, param string, notFound error) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		HandleAPIError(w, r, notFound)
		return uuid.Nil, false
	}
	return id, true
}

// decodeBody decodes the JSON request body, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := shared.DecodeJSON(w, r, v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	return true
}

// decodePatch decodes a JSON object into a service.Patch.
func decodePatch(w http.ResponseWriter, r *http.Request) (service.Patch, bool) {
	var patch service.Patch
	if !decodeBody(w, r, &patch) {
		return nil, false
	}
	if patch == nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return nil, false
	}
	return patch, true
}
