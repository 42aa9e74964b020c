package repository

import (
	"context"

	"github.com/taskboard/backend/domain"
)

// TaskFilter scopes List to an owner and optionally to one status.
type TaskFilter struct {
	UserID string
	Status domain.Status
}

// TaskRepository is the task store contract. Every operation is scoped
// to the owning user; a task owned by someone else behaves exactly like
// a missing one.
type TaskRepository interface {
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Create(ctx context.Context, userID string, draft domain.TaskDraft) (*domain.Task, error)
	Update(ctx context.Context, userID, id string, patch domain.TaskPatch) (*domain.Task, error)
	// Delete removes the task and returns its prior state.
	Delete(ctx context.Context, userID, id string) (*domain.Task, error)
	// DeleteAllForUser purges every task owned by the user and reports
	// how many rows went away.
	DeleteAllForUser(ctx context.Context, userID string) (int64, error)
}
