package transport

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/taskboard/backend/domain"
)

// TaskCreateRequest is the POST /api/tasks payload.
type TaskCreateRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Status      string  `json:"status,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
}

// Draft validates the payload once and produces the typed create value.
func (r TaskCreateRequest) Draft() (domain.TaskDraft, error) {
	due, err := parseDueDate(r.DueDate)
	if err != nil {
		return domain.TaskDraft{}, err
	}
	return domain.NewTaskDraft(r.Title, r.Description, r.Status, due)
}

// TaskUpdateRequest is the PUT /api/tasks/{id} payload. Field presence
// is recorded during unmarshalling so a JSON null clears a column while
// an absent key leaves it untouched.
type TaskUpdateRequest struct {
	Title       *string
	Description *string
	Status      *string
	DueDate     *string

	hasTitle       bool
	hasDescription bool
	hasStatus      bool
	hasDueDate     bool
}

func (r *TaskUpdateRequest) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if raw, ok := fields["title"]; ok {
		r.hasTitle = true
		if err := json.Unmarshal(raw, &r.Title); err != nil {
			return err
		}
	}
	if raw, ok := fields["description"]; ok {
		r.hasDescription = true
		if err := json.Unmarshal(raw, &r.Description); err != nil {
			return err
		}
	}
	if raw, ok := fields["status"]; ok {
		r.hasStatus = true
		if err := json.Unmarshal(raw, &r.Status); err != nil {
			return err
		}
	}
	if raw, ok := fields["due_date"]; ok {
		r.hasDueDate = true
		if err := json.Unmarshal(raw, &r.DueDate); err != nil {
			return err
		}
	}
	return nil
}

// Patch validates the payload and produces the typed partial update.
// Status validity is checked before anything else, matching the create
// path, and an effectively empty patch is rejected.
func (r *TaskUpdateRequest) Patch() (domain.TaskPatch, error) {
	var patch domain.TaskPatch

	if r.hasStatus {
		value := ""
		if r.Status != nil {
			value = *r.Status
		}
		parsed, err := domain.ParseStatus(value)
		if err != nil {
			return domain.TaskPatch{}, err
		}
		patch.Status = &parsed
	}

	if r.hasTitle {
		trimmed := ""
		if r.Title != nil {
			trimmed = strings.TrimSpace(*r.Title)
		}
		if trimmed == "" {
			return domain.TaskPatch{}, domain.NewError(domain.ErrCodeValidation, "Title cannot be empty")
		}
		patch.Title = &trimmed
	}

	if r.hasDescription {
		patch.HasDescription = true
		if r.Description != nil {
			if trimmed := strings.TrimSpace(*r.Description); trimmed != "" {
				patch.Description = &trimmed
			}
		}
	}

	if r.hasDueDate {
		patch.HasDueDate = true
		due, err := parseDueDate(r.DueDate)
		if err != nil {
			return domain.TaskPatch{}, err
		}
		patch.DueDate = due
	}

	if patch.IsEmpty() {
		return domain.TaskPatch{}, domain.NewError(domain.ErrCodeValidation,
			"At least one field (title, description, status, due_date) must be provided for update")
	}

	return patch, nil
}

// ProfileUpdateRequest is the PUT /api/profile payload. A nil field was
// absent from the request.
type ProfileUpdateRequest struct {
	Email    *string        `json:"email"`
	Metadata map[string]any `json:"metadata"`
}

func parseDueDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, *value)
	if err != nil {
		return nil, domain.NewError(domain.ErrCodeValidation, "due_date must be an RFC3339 timestamp")
	}
	return &parsed, nil
}
