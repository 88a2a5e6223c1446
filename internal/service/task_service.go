package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/redact"
	"github.com/phrazzld/tasker-api/internal/store"
)

// MaxPageSize caps the number of tasks a single list call returns.
const MaxPageSize = 100

// TaskService provides task operations scoped to their owner. A task owned
// by another user behaves exactly like a missing one.
type TaskService interface {
	CreateTask(ctx context.Context, ownerID uuid.UUID, description string, completed bool) (*domain.Task, error)
	GetTask(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)
	ListTasks(ctx context.Context, ownerID uuid.UUID, q store.TaskQuery) ([]*domain.Task, error)
	UpdateTask(ctx context.Context, ownerID, taskID uuid.UUID, patch Patch) (*domain.Task, error)
	DeleteTask(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)
}

type taskServiceImpl struct {
	tasks  store.TaskStore
	logger *slog.Logger
}

// NewTaskService creates a new TaskService
func NewTaskService(tasks store.TaskStore, logger *slog.Logger) (TaskService, error) {
	if tasks == nil {
		return nil, errors.New("task service: task store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &taskServiceImpl{
		tasks:  tasks,
		logger: logger.With("component", "task_service"),
	}, nil
}

func (s *taskServiceImpl) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, s.logger)
}

// CreateTask implements TaskService.
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	ownerID uuid.UUID,
	description string,
	completed bool,
) (*domain.Task, error) {
	task, err := domain.NewTask(ownerID, description, completed)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		s.log(ctx).Error("failed to save task",
			"error", redact.Error(err),
			"owner_id", ownerID)
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.log(ctx).Debug("task created", "task_id", task.ID, "owner_id", ownerID)
	return task, nil
}

// GetTask implements TaskService.
func (s *taskServiceImpl) GetTask(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetForOwner(ctx, taskID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve task: %w", err)
	}
	return task, nil
}

// ListTasks implements TaskService. The limit is capped at MaxPageSize.
func (s *taskServiceImpl) ListTasks(ctx context.Context, ownerID uuid.UUID, q store.TaskQuery) ([]*domain.Task, error) {
	if q.Limit < 0 || q.Offset < 0 {
		return nil, ErrInvalidQuery
	}
	if q.SortBy != "" && !q.SortBy.Valid() {
		return nil, fmt.Errorf("%w: unknown sort field %q", ErrInvalidQuery, q.SortBy)
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}

	tasks, err := s.tasks.ListByOwner(ctx, ownerID, q)
	if err != nil {
		s.log(ctx).Error("failed to list tasks",
			"error", redact.Error(err),
			"owner_id", ownerID)
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask implements TaskService. The allow-list and the merged values
// are checked before anything is written.
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
	patch Patch,
) (*domain.Task, error) {
	if err := patch.checkAllowed(taskPatchFields); err != nil {
		s.log(ctx).Debug("rejected task update", "error", err, "task_id", taskID)
		return nil, err
	}

	task, err := s.tasks.GetForOwner(ctx, taskID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if _, err := patch.decode("description", &task.Description); err != nil {
		return nil, err
	}
	if _, err := patch.decode("completed", &task.Completed); err != nil {
		return nil, err
	}
	task.Normalize()
	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if err := s.tasks.UpdateForOwner(ctx, task); err != nil {
		if !store.IsNotFoundError(err) {
			s.log(ctx).Error("failed to update task",
				"error", redact.Error(err),
				"task_id", taskID)
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.log(ctx).Debug("task updated", "task_id", taskID)
	return task, nil
}

// DeleteTask implements TaskService and returns the removed task.
func (s *taskServiceImpl) DeleteTask(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.DeleteForOwner(ctx, taskID, ownerID)
	if err != nil {
		if !store.IsNotFoundError(err) {
			s.log(ctx).Error("failed to delete task",
				"error", redact.Error(err),
				"task_id", taskID)
		}
		return nil, fmt.Errorf("failed to delete task: %w", err)
	}
	s.log(ctx).Debug("task deleted", "task_id", taskID)
	return task, nil
}
