package store

import (
	"context"

	"github.com/google/uuid"
)

// AvatarStore keeps one processed avatar image per user as opaque bytes.
type AvatarStore interface {
	// Put stores or replaces the user's avatar.
	Put(ctx context.Context, userID uuid.UUID, image []byte) error

	// Get returns the user's avatar.
	// Returns ErrAvatarNotFound if none is stored.
	Get(ctx context.Context, userID uuid.UUID) ([]byte, error)

	// Delete removes the user's avatar. Deleting a missing avatar is not an error.
	Delete(ctx context.Context, userID uuid.UUID) error
}
