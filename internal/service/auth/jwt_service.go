package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenService issues and verifies session tokens.
//
// Tokens never expire on their own. Whether a verified token still grants
// access is decided by the caller, which checks it against the owner's
// active-token set.
type TokenService interface {
	// Issue signs a new token for userID. Two calls for the same user
	// always return different tokens.
	Issue(ctx context.Context, userID uuid.UUID) (string, error)

	// Verify checks the token signature and returns its claims.
	// Any failure is reported as ErrInvalidToken.
	Verify(ctx context.Context, token string) (*Claims, error)
}

// Claims holds the verified content of a session token.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID uuid.UUID

	IssuedAt time.Time
	ID       string
}
