package domain

import (
	"strings"
	"time"
)

// Task represents a user-owned activity item.
type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      Status     `json:"status"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusCompleted
}

// TaskDraft is a validated create payload. It only exists in a valid
// state: the constructor enforces the creation rules once, at the
// service boundary, and everything downstream operates on typed values.
type TaskDraft struct {
	Title       string
	Description *string
	Status      Status
	DueDate     *time.Time
}

// NewTaskDraft applies the creation rules: the title is trimmed and must
// be non-empty, the status must be a canonical value (defaulting to
// pending), and an empty description collapses to null.
func NewTaskDraft(title string, description *string, status string, due *time.Time) (TaskDraft, error) {
	draft := TaskDraft{Status: StatusPending, DueDate: due}

	draft.Title = strings.TrimSpace(title)
	if draft.Title == "" {
		return TaskDraft{}, NewError(ErrCodeValidation, "Title is required")
	}

	if status != "" {
		parsed, err := ParseStatus(status)
		if err != nil {
			return TaskDraft{}, err
		}
		draft.Status = parsed
	}

	if description != nil {
		if trimmed := strings.TrimSpace(*description); trimmed != "" {
			draft.Description = &trimmed
		}
	}

	return draft, nil
}

// TaskPatch is a partial update. The Has* flags record field presence so
// a JSON null clears a column while an absent key leaves it untouched.
type TaskPatch struct {
	Title          *string
	Description    *string
	HasDescription bool
	Status         *Status
	DueDate        *time.Time
	HasDueDate     bool
}

func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && !p.HasDescription && p.Status == nil && !p.HasDueDate
}
