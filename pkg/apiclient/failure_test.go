package apiclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind FailureKind
		wantMsg  string
	}{
		{
			name:     "401 maps to session expiry regardless of body",
			status:   401,
			body:     `{"error":"Unauthorized","message":"Invalid or expired token"}`,
			wantKind: FailureAuth,
			wantMsg:  "Your session has expired. Please log in again.",
		},
		{
			name:     "403 also means re-authenticate",
			status:   403,
			wantKind: FailureAuth,
			wantMsg:  "Your session has expired. Please log in again.",
		},
		{
			name:     "400 surfaces the server message",
			status:   400,
			body:     `{"error":"Validation Error","message":"Title is required"}`,
			wantKind: FailureValidation,
			wantMsg:  "Title is required",
		},
		{
			name:     "404 surfaces the server message",
			status:   404,
			body:     `{"error":"Not Found","message":"Task not found"}`,
			wantKind: FailureNotFound,
			wantMsg:  "Task not found",
		},
		{
			name:     "500 hides the server detail",
			status:   500,
			body:     `{"error":"Database Error","message":"relation does not exist"}`,
			wantKind: FailureServer,
			wantMsg:  "Server error. Please try again later.",
		},
		{
			name:     "503 is a server failure too",
			status:   503,
			body:     `{"error":"Service Unavailable","message":"Authentication service is unavailable"}`,
			wantKind: FailureServer,
			wantMsg:  "Server error. Please try again later.",
		},
		{
			name:     "non-JSON body falls back to the generic message",
			status:   400,
			body:     `<html>bad gateway</html>`,
			wantKind: FailureValidation,
			wantMsg:  "An unexpected error occurred",
		},
		{
			name:     "error field used when message is missing",
			status:   400,
			body:     `{"error":"Validation Error"}`,
			wantKind: FailureValidation,
			wantMsg:  "Validation Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failure := classifyStatus(tt.status, []byte(tt.body))
			assert.Equal(t, tt.wantKind, failure.Kind)
			assert.Equal(t, tt.status, failure.Status)
			assert.Equal(t, tt.wantMsg, failure.Message)
			assert.Equal(t, tt.body, failure.Detail)
		})
	}
}

func TestIsFailure(t *testing.T) {
	failure := &Failure{Kind: FailureAuth, Message: msgAuth}
	got, ok := IsFailure(failure)
	require.True(t, ok)
	assert.Equal(t, FailureAuth, got.Kind)

	_, ok = IsFailure(assert.AnError)
	assert.False(t, ok)
}

func TestFailureError(t *testing.T) {
	failure := &Failure{Message: msgConnection, Detail: "dial tcp: refused"}
	assert.Equal(t, msgConnection, failure.Error())
}
