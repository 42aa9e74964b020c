package domain

// Status enumerates the task lifecycle columns.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists the canonical values in board order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus validates a wire value against the canonical set.
func ParseStatus(value string) (Status, error) {
	s := Status(value)
	if !s.Valid() {
		return "", NewError(ErrCodeValidation, "Status must be one of: pending, in-progress, completed")
	}
	return s, nil
}
