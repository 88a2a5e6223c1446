package api

import (
	"net/http"

	"github.com/phrazzld/tasker-api/internal/api/middleware"
	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/service"
)

// UserHandler handles account and session requests.
type UserHandler struct {
	users service.UserService
}

// NewUserHandler creates a new UserHandler with the given dependencies.
func NewUserHandler(users service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// SignUp handles POST /users.
func (h *UserHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, token, err := h.users.SignUp(r.Context(), service.SignUpInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{
		User:  toUserResponse(user),
		Token: token,
	})
}

// Login handles POST /users/login.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, service.ErrInvalidCredentials)
		return
	}

	user, token, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		User:  toUserResponse(user),
		Token: token,
	})
}

// Logout handles POST /users/logout by revoking the presented token only.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	token, ok := middleware.GetToken(r)
	if !ok {
		HandleAPIError(w, r, service.ErrUnauthenticated)
		return
	}

	if err := h.users.Logout(r.Context(), user.ID, token); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// LogoutAll handles POST /users/logoutall.
func (h *UserHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.users.LogoutAll(r.Context(), user.ID); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Me handles GET /users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toUserResponse(user))
}

// UpdateMe handles PATCH /users/me.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	patch, ok := decodePatch(w, r)
	if !ok {
		return
	}

	updated, err := h.users.UpdateUser(r.Context(), user.ID, patch)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toUserResponse(updated))
}

// DeleteMe handles DELETE /users/me and returns the deleted account.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	deleted, err := h.users.DeleteUser(r.Context(), user.ID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	logger.FromContext(r.Context()).Info("account deleted by owner")
	shared.RespondWithJSON(w, r, http.StatusOK, toUserResponse(deleted))
}
