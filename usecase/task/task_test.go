package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskboard/backend/domain"
	"github.com/taskboard/backend/repository"
)

type fakeTaskRepo struct {
	tasks map[string]domain.Task

	listErr   error
	createErr error
	updateErr error
	deleteErr error

	lastFilter repository.TaskFilter
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: map[string]domain.Task{}}
}

func (f *fakeTaskRepo) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.lastFilter = filter
	out := make([]domain.Task, 0)
	for _, task := range f.tasks {
		if task.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		out = append(out, task)
	}
	return out, nil
}

func (f *fakeTaskRepo) Create(_ context.Context, userID string, draft domain.TaskDraft) (*domain.Task, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	task := domain.Task{
		ID:          "t-" + draft.Title,
		UserID:      userID,
		Title:       draft.Title,
		Description: draft.Description,
		Status:      draft.Status,
		DueDate:     draft.DueDate,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	f.tasks[task.ID] = task
	return &task, nil
}

func (f *fakeTaskRepo) Update(_ context.Context, userID, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	task, ok := f.tasks[id]
	if !ok || task.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.HasDescription {
		task.Description = patch.Description
	}
	if patch.Status != nil {
		task.Status = *patch.Status
	}
	if patch.HasDueDate {
		task.DueDate = patch.DueDate
	}
	task.UpdatedAt = time.Now()
	f.tasks[id] = task
	return &task, nil
}

func (f *fakeTaskRepo) Delete(_ context.Context, userID, id string) (*domain.Task, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	task, ok := f.tasks[id]
	if !ok || task.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}
	delete(f.tasks, id)
	return &task, nil
}

func (f *fakeTaskRepo) DeleteAllForUser(_ context.Context, userID string) (int64, error) {
	var n int64
	for id, task := range f.tasks {
		if task.UserID == userID {
			delete(f.tasks, id)
			n++
		}
	}
	return n, nil
}

func seedTask(repo *fakeTaskRepo, id, userID string, status domain.Status) {
	repo.tasks[id] = domain.Task{ID: id, UserID: userID, Title: "seeded", Status: status}
}

func TestListTasks(t *testing.T) {
	t.Run("scopes to caller", func(t *testing.T) {
		repo := newFakeTaskRepo()
		seedTask(repo, "t1", "alice", domain.StatusPending)
		seedTask(repo, "t2", "bob", domain.StatusPending)

		uc := New(repo, nil)
		tasks, err := uc.ListTasks(context.Background(), "alice", "")
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "t1", tasks[0].ID)
	})

	t.Run("validates filter before touching the store", func(t *testing.T) {
		repo := newFakeTaskRepo()
		repo.listErr = errors.New("should not be reached")

		uc := New(repo, nil)
		_, err := uc.ListTasks(context.Background(), "alice", "bogus")
		require.Error(t, err)
		assert.True(t, domain.IsDomainError(err, domain.ErrCodeValidation))
	})

	t.Run("passes status filter through", func(t *testing.T) {
		repo := newFakeTaskRepo()
		seedTask(repo, "t1", "alice", domain.StatusPending)
		seedTask(repo, "t2", "alice", domain.StatusCompleted)

		uc := New(repo, nil)
		tasks, err := uc.ListTasks(context.Background(), "alice", "completed")
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "t2", tasks[0].ID)
		assert.Equal(t, domain.StatusCompleted, repo.lastFilter.Status)
	})

	t.Run("wraps store failure", func(t *testing.T) {
		repo := newFakeTaskRepo()
		repo.listErr = errors.New("connection refused")

		uc := New(repo, nil)
		_, err := uc.ListTasks(context.Background(), "alice", "")
		require.Error(t, err)
		assert.True(t, domain.IsDomainError(err, domain.ErrCodeDatabase))
	})
}

func TestCreateTask(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := New(repo, nil)

	draft, err := domain.NewTaskDraft("Ship it", nil, "", nil)
	require.NoError(t, err)

	created, err := uc.CreateTask(context.Background(), "alice", draft)
	require.NoError(t, err)
	assert.Equal(t, "alice", created.UserID)
	assert.Equal(t, domain.StatusPending, created.Status)
}

func TestUpdateTask(t *testing.T) {
	t.Run("missing task gets the ownership-neutral message", func(t *testing.T) {
		uc := New(newFakeTaskRepo(), nil)
		status := domain.StatusCompleted

		_, err := uc.UpdateTask(context.Background(), "alice", "nope", domain.TaskPatch{Status: &status})
		require.Error(t, err)
		assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
		assert.EqualError(t, err, "Task not found or you do not have permission to update it")
	})

	t.Run("someone else's task looks missing", func(t *testing.T) {
		repo := newFakeTaskRepo()
		seedTask(repo, "t1", "bob", domain.StatusPending)
		uc := New(repo, nil)
		status := domain.StatusCompleted

		_, err := uc.UpdateTask(context.Background(), "alice", "t1", domain.TaskPatch{Status: &status})
		require.Error(t, err)
		assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
	})

	t.Run("applies patch", func(t *testing.T) {
		repo := newFakeTaskRepo()
		seedTask(repo, "t1", "alice", domain.StatusPending)
		uc := New(repo, nil)
		status := domain.StatusInProgress

		updated, err := uc.UpdateTask(context.Background(), "alice", "t1", domain.TaskPatch{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusInProgress, updated.Status)
	})
}

func TestDeleteTask(t *testing.T) {
	t.Run("returns prior state", func(t *testing.T) {
		repo := newFakeTaskRepo()
		seedTask(repo, "t1", "alice", domain.StatusCompleted)
		uc := New(repo, nil)

		deleted, err := uc.DeleteTask(context.Background(), "alice", "t1")
		require.NoError(t, err)
		assert.Equal(t, "t1", deleted.ID)
		assert.Empty(t, repo.tasks)
	})

	t.Run("missing task", func(t *testing.T) {
		uc := New(newFakeTaskRepo(), nil)

		_, err := uc.DeleteTask(context.Background(), "alice", "nope")
		require.Error(t, err)
		assert.EqualError(t, err, "Task not found or you do not have permission to delete it")
	})

	t.Run("wraps store failure", func(t *testing.T) {
		repo := newFakeTaskRepo()
		repo.deleteErr = errors.New("boom")
		uc := New(repo, nil)

		_, err := uc.DeleteTask(context.Background(), "alice", "t1")
		require.Error(t, err)
		assert.True(t, domain.IsDomainError(err, domain.ErrCodeDatabase))
	})
}
