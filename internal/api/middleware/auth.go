package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/redact"
	"github.com/phrazzld/tasker-api/internal/service/auth"
	"github.com/phrazzld/tasker-api/internal/store"
)

// UnauthenticatedMessage is the body of every 401 response.
const UnauthenticatedMessage = "Please authenticate."

// TokenOwnerLookup resolves a user that still holds a given token.
type TokenOwnerLookup interface {
	GetByIDAndToken(ctx context.Context, id uuid.UUID, token string) (*domain.User, error)
}

// AuthMiddleware provides bearer token authentication for routes.
type AuthMiddleware struct {
	tokens auth.TokenService
	users  TokenOwnerLookup
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(tokens auth.TokenService, users TokenOwnerLookup) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		users:  users,
	}
}

// Authenticate verifies the bearer token and checks that its user still
// lists it. On success the user and the raw token are added to the request
// context. Every rejection gets the same 401 body.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		token, err := bearerToken(r.Header.Get("Authorization"))
		if err != nil {
			log.Debug("rejected request", "reason", err)
			shared.RespondWithError(w, r, http.StatusUnauthorized, UnauthenticatedMessage)
			return
		}

		claims, err := m.tokens.Verify(r.Context(), token)
		if err != nil {
			log.Debug("rejected request: token failed verification")
			shared.RespondWithError(w, r, http.StatusUnauthorized, UnauthenticatedMessage)
			return
		}

		user, err := m.users.GetByIDAndToken(r.Context(), claims.UserID, token)
		if err != nil {
			if store.IsNotFoundError(err) {
				log.Debug("rejected request: token revoked or user gone", "user_id", claims.UserID)
				shared.RespondWithError(w, r, http.StatusUnauthorized, UnauthenticatedMessage)
				return
			}
			log.Error("failed to resolve token owner", "error", redact.Error(err))
			shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			return
		}

		ctx := shared.WithAuth(r.Context(), user, token)
		ctx = logger.WithLogger(ctx, log.With("user_id", user.ID.String()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" value.
// An absent header yields auth.ErrMissingToken, anything unparseable
// auth.ErrInvalidToken.
func bearerToken(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", auth.ErrMissingToken
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", auth.ErrInvalidToken
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", auth.ErrInvalidToken
	}
	return token, nil
}

// GetUser returns the authenticated user of the request.
func GetUser(r *http.Request) (*domain.User, bool) {
	return shared.UserFromContext(r.Context())
}

// GetToken returns the bearer token the request was authenticated with.
func GetToken(r *http.Request) (string, bool) {
	return shared.TokenFromContext(r.Context())
}

