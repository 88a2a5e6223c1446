package testdb

import (
	"context"
	"database/sql"
	"io"
	"log/slog"

	"github.com/phrazzld/tasker-api/internal/platform/postgres"
)

// ApplyMigrations brings the schema of db up to date.
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	return postgres.Migrate(ctx, db, "up", quiet)
}
