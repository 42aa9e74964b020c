package apiclient

import (
	"encoding/json"
	"errors"
)

// FailureKind classifies what went wrong with an API call so callers can
// decide between retrying, re-authenticating and surfacing a message.
type FailureKind int

const (
	FailureGeneric FailureKind = iota
	FailureConnection
	FailureAuth
	FailureValidation
	FailureNotFound
	FailureServer
)

const (
	msgGeneric    = "An unexpected error occurred"
	msgConnection = "Cannot connect to the server. Please check if the backend is running."
	msgAuth       = "Your session has expired. Please log in again."
	msgServer     = "Server error. Please try again later."
)

// Failure is the only error type the client returns. Message is always
// safe to show to a user; Detail carries the raw server text for logs.
type Failure struct {
	Kind    FailureKind
	Status  int
	Message string
	Detail  string
}

func (f *Failure) Error() string { return f.Message }

// IsFailure unwraps err into a *Failure when possible.
func IsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

func classifyStatus(status int, body []byte) *Failure {
	serverMsg, detail := parseErrorBody(body)

	switch {
	case status == 401 || status == 403:
		return &Failure{Kind: FailureAuth, Status: status, Message: msgAuth, Detail: detail}
	case status == 404:
		msg := serverMsg
		if msg == "" {
			msg = "Not found"
		}
		return &Failure{Kind: FailureNotFound, Status: status, Message: msg, Detail: detail}
	case status == 400 || status == 422:
		msg := serverMsg
		if msg == "" {
			msg = msgGeneric
		}
		return &Failure{Kind: FailureValidation, Status: status, Message: msg, Detail: detail}
	case status >= 500:
		return &Failure{Kind: FailureServer, Status: status, Message: msgServer, Detail: detail}
	default:
		msg := serverMsg
		if msg == "" {
			msg = msgGeneric
		}
		return &Failure{Kind: FailureGeneric, Status: status, Message: msg, Detail: detail}
	}
}

// parseErrorBody pulls the human message out of an error envelope,
// preferring the message field over the error code.
func parseErrorBody(body []byte) (message, detail string) {
	detail = string(body)
	if len(body) == 0 {
		return "", detail
	}
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", detail
	}
	if envelope.Message != "" {
		return envelope.Message, detail
	}
	return envelope.Error, detail
}
