package transport

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskboard/backend/domain"
)

func TestTaskCreateRequestDraft(t *testing.T) {
	t.Run("full payload", func(t *testing.T) {
		var req TaskCreateRequest
		require.NoError(t, json.Unmarshal([]byte(`{
			"title": "Ship release",
			"description": "cut the tag",
			"status": "in-progress",
			"due_date": "2026-09-15T10:00:00Z"
		}`), &req))

		draft, err := req.Draft()
		require.NoError(t, err)
		assert.Equal(t, "Ship release", draft.Title)
		assert.Equal(t, domain.StatusInProgress, draft.Status)
		require.NotNil(t, draft.DueDate)
		assert.Equal(t, time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC), draft.DueDate.UTC())
	})

	t.Run("bad due date", func(t *testing.T) {
		req := TaskCreateRequest{Title: "x", DueDate: ptr("tomorrow")}
		_, err := req.Draft()
		require.Error(t, err)
		assert.True(t, domain.IsDomainError(err, domain.ErrCodeValidation))
	})

	t.Run("missing title", func(t *testing.T) {
		_, err := TaskCreateRequest{}.Draft()
		require.Error(t, err)
		assert.EqualError(t, err, "Title is required")
	})
}

func TestTaskUpdateRequestPresence(t *testing.T) {
	t.Run("absent key leaves field untouched", func(t *testing.T) {
		var req TaskUpdateRequest
		require.NoError(t, json.Unmarshal([]byte(`{"title": "New"}`), &req))

		patch, err := req.Patch()
		require.NoError(t, err)
		require.NotNil(t, patch.Title)
		assert.Equal(t, "New", *patch.Title)
		assert.False(t, patch.HasDescription)
		assert.False(t, patch.HasDueDate)
		assert.Nil(t, patch.Status)
	})

	t.Run("null clears the column", func(t *testing.T) {
		var req TaskUpdateRequest
		require.NoError(t, json.Unmarshal([]byte(`{"description": null, "due_date": null}`), &req))

		patch, err := req.Patch()
		require.NoError(t, err)
		assert.True(t, patch.HasDescription)
		assert.Nil(t, patch.Description)
		assert.True(t, patch.HasDueDate)
		assert.Nil(t, patch.DueDate)
	})

	t.Run("empty body is rejected", func(t *testing.T) {
		var req TaskUpdateRequest
		require.NoError(t, json.Unmarshal([]byte(`{}`), &req))

		_, err := req.Patch()
		require.Error(t, err)
		assert.True(t, domain.IsDomainError(err, domain.ErrCodeValidation))
		assert.EqualError(t, err, "At least one field (title, description, status, due_date) must be provided for update")
	})

	t.Run("status validated before other fields", func(t *testing.T) {
		var req TaskUpdateRequest
		require.NoError(t, json.Unmarshal([]byte(`{"title": "", "status": "bogus"}`), &req))

		_, err := req.Patch()
		require.Error(t, err)
		assert.EqualError(t, err, "Status must be one of: pending, in-progress, completed")
	})

	t.Run("null status is invalid", func(t *testing.T) {
		var req TaskUpdateRequest
		require.NoError(t, json.Unmarshal([]byte(`{"status": null}`), &req))

		_, err := req.Patch()
		require.Error(t, err)
		assert.True(t, domain.IsDomainError(err, domain.ErrCodeValidation))
	})

	t.Run("blank title rejected", func(t *testing.T) {
		var req TaskUpdateRequest
		require.NoError(t, json.Unmarshal([]byte(`{"title": "   "}`), &req))

		_, err := req.Patch()
		require.Error(t, err)
		assert.EqualError(t, err, "Title cannot be empty")
	})

	t.Run("valid status parses to typed value", func(t *testing.T) {
		var req TaskUpdateRequest
		require.NoError(t, json.Unmarshal([]byte(`{"status": "completed"}`), &req))

		patch, err := req.Patch()
		require.NoError(t, err)
		require.NotNil(t, patch.Status)
		assert.Equal(t, domain.StatusCompleted, *patch.Status)
	})
}

func ptr(s string) *string { return &s }
