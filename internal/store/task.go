package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
)

// SortField names a sortable task attribute.
type SortField string

// Sortable task attributes.
const (
	SortByCreatedAt   SortField = "created_at"
	SortByUpdatedAt   SortField = "updated_at"
	SortByDescription SortField = "description"
	SortByCompleted   SortField = "completed"
)

// Valid reports whether f is a known sort field.
func (f SortField) Valid() bool {
	switch f {
	case SortByCreatedAt, SortByUpdatedAt, SortByDescription, SortByCompleted:
		return true
	}
	return false
}

// TaskQuery narrows and orders an owner's task list.
// The zero value lists every task oldest first.
type TaskQuery struct {
	// Completed filters on completion state when non-nil.
	Completed *bool

	// Limit caps the number of rows; zero means no cap.
	Limit int

	// Offset skips rows after ordering.
	Offset int

	// SortBy defaults to SortByCreatedAt when empty.
	SortBy   SortField
	SortDesc bool
}

// TaskStore persists tasks. Every read and write is scoped to an owner; a
// task belonging to someone else behaves exactly like a missing one.
type TaskStore interface {
	// Create saves a new task.
	// Returns ErrInvalidEntity if the owner does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetForOwner retrieves a task by ID if ownerID owns it.
	// Returns ErrTaskNotFound otherwise.
	GetForOwner(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)

	// ListByOwner returns the owner's tasks matching q.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, q TaskQuery) ([]*domain.Task, error)

	// UpdateForOwner writes description and completed of a task owned by
	// task.OwnerID in a single conditional statement.
	// Returns ErrTaskNotFound if no such task exists for that owner.
	UpdateForOwner(ctx context.Context, task *domain.Task) error

	// DeleteForOwner removes a task and returns it as it was before removal.
	// Returns ErrTaskNotFound if no such task exists for that owner.
	DeleteForOwner(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)

	// DeleteByOwner removes every task of the owner and reports how many were removed.
	DeleteByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
