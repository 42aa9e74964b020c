package task

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/taskboard/backend/domain"
	"github.com/taskboard/backend/repository"
)

// UseCase implements the task lifecycle. Payloads arrive already
// validated as typed drafts and patches; this layer scopes everything to
// the caller and translates store failures into the API taxonomy.
type UseCase struct {
	tasks  repository.TaskRepository
	logger *zap.Logger
}

func New(tasks repository.TaskRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		logger: logger,
	}
}

// ListTasks returns the caller's tasks newest-first, optionally filtered
// by status. The filter value is validated before the store is touched.
func (uc *UseCase) ListTasks(ctx context.Context, userID, statusFilter string) ([]domain.Task, error) {
	filter := repository.TaskFilter{UserID: userID}
	if statusFilter != "" {
		status, err := domain.ParseStatus(statusFilter)
		if err != nil {
			return nil, err
		}
		filter.Status = status
	}

	tasks, err := uc.tasks.List(ctx, filter)
	if err != nil {
		return nil, uc.storeError("Failed to fetch tasks", err)
	}
	return tasks, nil
}

func (uc *UseCase) CreateTask(ctx context.Context, userID string, draft domain.TaskDraft) (*domain.Task, error) {
	created, err := uc.tasks.Create(ctx, userID, draft)
	if err != nil {
		return nil, uc.storeError("Failed to create task", err)
	}
	return created, nil
}

func (uc *UseCase) UpdateTask(ctx context.Context, userID, id string, patch domain.TaskPatch) (*domain.Task, error) {
	updated, err := uc.tasks.Update(ctx, userID, id, patch)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, domain.NewError(domain.ErrCodeNotFound, "Task not found or you do not have permission to update it")
		}
		return nil, uc.storeError("Failed to update task", err)
	}
	return updated, nil
}

// DeleteTask removes a task and returns its prior state.
func (uc *UseCase) DeleteTask(ctx context.Context, userID, id string) (*domain.Task, error) {
	deleted, err := uc.tasks.Delete(ctx, userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, domain.NewError(domain.ErrCodeNotFound, "Task not found or you do not have permission to delete it")
		}
		return nil, uc.storeError("Failed to delete task", err)
	}
	return deleted, nil
}

func (uc *UseCase) storeError(message string, err error) error {
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		return err
	}
	uc.logger.Error("task store failure", zap.String("message", message), zap.Error(err))
	return domain.WrapError(domain.ErrCodeDatabase, message, err)
}
