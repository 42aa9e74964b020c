package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskboard/backend/domain"
	"github.com/taskboard/backend/repository"
)

const taskColumns = "id, user_id, title, description, status, due_date, created_at, updated_at"

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of
// TaskRepository. Every operation runs inside a transaction that pins
// app.current_user, so the row-level security policy on tasks enforces
// ownership independently of the user_id predicates below.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	const query = `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE user_id = $1
	  AND ($2 = '' OR status = $2)
	ORDER BY created_at DESC
	`

	tasks := make([]domain.Task, 0)
	err := r.withUser(ctx, filter.UserID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, filter.UserID, string(filter.Status))
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			task, err := scanTask(rows)
			if err != nil {
				return err
			}
			tasks = append(tasks, *task)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) Create(ctx context.Context, userID string, draft domain.TaskDraft) (*domain.Task, error) {
	const query = `
	INSERT INTO tasks (id, user_id, title, description, status, due_date)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING ` + taskColumns + `
	`

	id := uuid.NewString()
	var task *domain.Task
	err := r.withUser(ctx, userID, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, query,
			id,
			userID,
			draft.Title,
			draft.Description,
			string(draft.Status),
			draft.DueDate,
		)
		created, err := scanTask(row)
		if err != nil {
			return err
		}
		task = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, userID, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrTaskNotFound
	}

	set := make([]string, 0, 4)
	args := []any{id, userID}
	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.HasDescription {
		add("description", patch.Description)
	}
	if patch.Status != nil {
		add("status", string(*patch.Status))
	}
	if patch.HasDueDate {
		add("due_date", patch.DueDate)
	}
	if len(set) == 0 {
		return nil, domain.NewError(domain.ErrCodeValidation, "nothing to update")
	}

	query := fmt.Sprintf(`
	UPDATE tasks
	SET %s, updated_at = NOW()
	WHERE id = $1 AND user_id = $2
	RETURNING %s
	`, strings.Join(set, ", "), taskColumns)

	var task *domain.Task
	err := r.withUser(ctx, userID, func(tx pgx.Tx) error {
		updated, err := scanTask(tx.QueryRow(ctx, query, args...))
		if err != nil {
			return err
		}
		task = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) Delete(ctx context.Context, userID, id string) (*domain.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrTaskNotFound
	}

	const query = `
	DELETE FROM tasks
	WHERE id = $1 AND user_id = $2
	RETURNING ` + taskColumns + `
	`

	var task *domain.Task
	err := r.withUser(ctx, userID, func(tx pgx.Tx) error {
		deleted, err := scanTask(tx.QueryRow(ctx, query, id, userID))
		if err != nil {
			return err
		}
		task = deleted
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	const query = `DELETE FROM tasks WHERE user_id = $1`

	var deleted int64
	err := r.withUser(ctx, userID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, userID)
		if err != nil {
			return err
		}
		deleted = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// withUser runs fn in a transaction with app.current_user set for the
// duration, which is what the RLS policy keys on.
func (r *taskRepository) withUser(ctx context.Context, userID string, fn func(pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT set_config('app.current_user', $1, true)`, userID); err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	var status string

	if err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&status,
		&task.DueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	task.Status = domain.Status(status)
	return &task, nil
}
