package activity

import "errors"

var (
	// ErrActivityNotFound indicates the activity does not exist or was deleted.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrTaskNotFound indicates the target task does not exist.
	ErrTaskNotFound = errors.New("task not found")
	// ErrEndBeforeStart indicates the session interval is empty or inverted.
	ErrEndBeforeStart = errors.New("activity must end after it starts")
	// ErrNotAssigned indicates the logging user is not assigned to the task.
	ErrNotAssigned = errors.New("user is not assigned to task")
	// ErrInvalidInput indicates missing or malformed request fields.
	ErrInvalidInput = errors.New("invalid activity input")
)
