package mocks

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/store"
)

// MemoryTaskStore implements store.TaskStore in memory.
type MemoryTaskStore struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task

	// Errors returned by the corresponding method when set
	CreateError        error
	DeleteByOwnerError error
}

var _ store.TaskStore = (*MemoryTaskStore)(nil)

// NewMemoryTaskStore creates an empty store.
func NewMemoryTaskStore() *MemoryTaskStore {
	return &MemoryTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

func cloneTask(t *domain.Task) *domain.Task {
	c := *t
	return &c
}

// Create implements store.TaskStore.
func (m *MemoryTaskStore) Create(ctx context.Context, task *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateError != nil {
		return m.CreateError
	}
	if err := task.Validate(); err != nil {
		return store.ErrInvalidEntity
	}
	m.tasks[task.ID] = cloneTask(task)
	return nil
}

// GetForOwner implements store.TaskStore.
func (m *MemoryTaskStore) GetForOwner(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, store.ErrTaskNotFound
	}
	return cloneTask(t), nil
}

// ListByOwner implements store.TaskStore with the same ordering and paging
// rules as the SQL implementation.
func (m *MemoryTaskStore) ListByOwner(ctx context.Context, ownerID uuid.UUID, q store.TaskQuery) ([]*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = store.SortByCreatedAt
	}
	if !sortBy.Valid() {
		return nil, store.ErrInvalidEntity
	}

	result := make([]*domain.Task, 0)
	for _, t := range m.tasks {
		if t.OwnerID != ownerID {
			continue
		}
		if q.Completed != nil && t.Completed != *q.Completed {
			continue
		}
		result = append(result, cloneTask(t))
	}

	sort.Slice(result, func(i, j int) bool {
		c := compareTasks(result[i], result[j], sortBy)
		if q.SortDesc {
			c = -c
		}
		if c == 0 {
			return result[i].ID.String() < result[j].ID.String()
		}
		return c < 0
	})

	if q.Offset > 0 {
		if q.Offset >= len(result) {
			return []*domain.Task{}, nil
		}
		result = result[q.Offset:]
	}
	if q.Limit > 0 && q.Limit < len(result) {
		result = result[:q.Limit]
	}
	return result, nil
}

func compareTasks(a, b *domain.Task, field store.SortField) int {
	switch field {
	case store.SortByDescription:
		return strings.Compare(a.Description, b.Description)
	case store.SortByCompleted:
		switch {
		case a.Completed == b.Completed:
			return 0
		case !a.Completed:
			return -1
		default:
			return 1
		}
	case store.SortByUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

// UpdateForOwner implements store.TaskStore.
func (m *MemoryTaskStore) UpdateForOwner(ctx context.Context, task *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.tasks[task.ID]
	if !ok || existing.OwnerID != task.OwnerID {
		return store.ErrTaskNotFound
	}
	task.CreatedAt = existing.CreatedAt
	task.UpdatedAt = time.Now().UTC()
	m.tasks[task.ID] = cloneTask(task)
	return nil
}

// DeleteForOwner implements store.TaskStore.
func (m *MemoryTaskStore) DeleteForOwner(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, store.ErrTaskNotFound
	}
	delete(m.tasks, id)
	return t, nil
}

// DeleteByOwner implements store.TaskStore.
func (m *MemoryTaskStore) DeleteByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DeleteByOwnerError != nil {
		return 0, m.DeleteByOwnerError
	}
	var n int64
	for id, t := range m.tasks {
		if t.OwnerID == ownerID {
			delete(m.tasks, id)
			n++
		}
	}
	return n, nil
}

// WithTx implements store.TaskStore. The memory store ignores transactions.
func (m *MemoryTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return m
}

// CountByOwner reports how many tasks ownerID has.
func (m *MemoryTaskStore) CountByOwner(ownerID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, t := range m.tasks {
		if t.OwnerID == ownerID {
			n++
		}
	}
	return n
}
