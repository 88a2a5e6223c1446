package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
)

// UserStore defines the interface for user and session token persistence.
type UserStore interface {
	// Create saves a new user. HashedPassword must already be set.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their normalized email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByIDAndToken retrieves a user only while token is in their active set.
	// Returns ErrUserNotFound if either the user or the token is missing.
	GetByIDAndToken(ctx context.Context, id uuid.UUID, token string) (*domain.User, error)

	// Update writes name, email, age and hashed password of an existing user.
	// Returns ErrUserNotFound if the user does not exist.
	// Returns ErrEmailExists if updating to an email that already exists.
	Update(ctx context.Context, user *domain.User) error

	// SetHasAvatar records whether the user currently has an avatar.
	SetHasAvatar(ctx context.Context, id uuid.UUID, hasAvatar bool) error

	// Delete removes a user and, through the schema, their tokens.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// AddToken appends token to the user's active set.
	AddToken(ctx context.Context, userID uuid.UUID, token string) error

	// RemoveToken revokes a single token.
	// Returns ErrTokenNotFound if the token is not in the user's set.
	RemoveToken(ctx context.Context, userID uuid.UUID, token string) error

	// ClearTokens revokes every token of the user and reports how many were removed.
	ClearTokens(ctx context.Context, userID uuid.UUID) (int64, error)

	// WithTx returns a new UserStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) UserStore
}
