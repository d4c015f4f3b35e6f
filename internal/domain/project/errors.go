package project

import "errors"

var (
	// ErrProjectNotFound indicates the project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrParentNotFound indicates a referenced parent project doesn't exist.
	ErrParentNotFound = errors.New("parent project not found")
	// ErrInvalidInput indicates invalid project input.
	ErrInvalidInput = errors.New("invalid project input")
	// ErrCodeTaken indicates the project code is already in use.
	ErrCodeTaken = errors.New("project code already in use")
	// ErrDeadlineBeforeStart indicates the deadline precedes the start date.
	ErrDeadlineBeforeStart = errors.New("deadline must be after start date")
	// ErrCycle indicates the requested parent links would make a project its
	// own ancestor.
	ErrCycle = errors.New("relation would make project its own ancestor")
	// ErrIncompleteChildren indicates a completion transition is blocked by
	// unfinished child projects or tasks.
	ErrIncompleteChildren = errors.New("project has unfinished children or tasks")
	// ErrHasChildren indicates deletion is blocked by existing child
	// relations.
	ErrHasChildren = errors.New("project still has child projects")
)
