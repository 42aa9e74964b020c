package transport

import (
	"time"

	"github.com/taskboard/backend/domain"
)

// RootResponse is the GET / liveness body.
type RootResponse struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// TaskResponse wraps a single task mutation result.
type TaskResponse struct {
	Message string       `json:"message"`
	Task    *domain.Task `json:"task"`
}

// TaskListResponse wraps the list endpoint result.
type TaskListResponse struct {
	Message string        `json:"message"`
	Count   int           `json:"count"`
	Tasks   []domain.Task `json:"tasks"`
}

// ProfileResponse wraps profile reads and updates.
type ProfileResponse struct {
	Message string          `json:"message"`
	Profile *domain.Profile `json:"profile"`
}

// AccountDeleteResponse reports both outcomes of account deletion: the
// data purge and the identity deletion are separable steps.
type AccountDeleteResponse struct {
	Message        string `json:"message"`
	AccountDeleted bool   `json:"accountDeleted"`
	Note           string `json:"note,omitempty"`
}

// HealthResponse is the GET /health body.
type HealthResponse struct {
	Status    string          `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
	Services  map[string]bool `json:"services"`
}

// ErrorResponse is the error body shared by every endpoint. Message is
// a stable user-safe string; Details may carry raw upstream error text
// for operator debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// NewErrorResponse builds an error body.
func NewErrorResponse(code, message, details string) ErrorResponse {
	return ErrorResponse{Error: code, Message: message, Details: details}
}
