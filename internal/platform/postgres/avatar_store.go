package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/store"
)

// PostgresAvatarStore keeps avatars in the users.avatar column.
type PostgresAvatarStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAvatarStore creates a database backed store.AvatarStore.
func NewPostgresAvatarStore(db store.DBTX, logger *slog.Logger) *PostgresAvatarStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAvatarStore{
		db:     db,
		logger: logger.With(slog.String("component", "avatar_store")),
	}
}

var _ store.AvatarStore = (*PostgresAvatarStore)(nil)

// Put implements store.AvatarStore.Put
func (s *PostgresAvatarStore) Put(ctx context.Context, userID uuid.UUID, image []byte) error {
	result, err := s.db.ExecContext(ctx, `UPDATE users SET avatar = $1 WHERE id = $2`, image, userID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to store avatar",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return MapError(err)
	}
	return expectRows(result, store.ErrUserNotFound)
}

// Get implements store.AvatarStore.Get
func (s *PostgresAvatarStore) Get(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	var image []byte
	err := s.db.QueryRowContext(ctx, `SELECT avatar FROM users WHERE id = $1`, userID).Scan(&image)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrAvatarNotFound
		}
		return nil, MapError(err)
	}
	if len(image) == 0 {
		return nil, store.ErrAvatarNotFound
	}
	return image, nil
}

// Delete implements store.AvatarStore.Delete
func (s *PostgresAvatarStore) Delete(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET avatar = NULL WHERE id = $1`, userID)
	return MapError(err)
}
