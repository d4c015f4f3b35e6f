package task

import "errors"

var (
	// ErrTaskNotFound indicates the task doesn't exist.
	ErrTaskNotFound = errors.New("task not found")
	// ErrProjectNotFound indicates the owning project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrParentNotFound indicates the referenced parent task doesn't exist.
	ErrParentNotFound = errors.New("parent task not found")
	// ErrParentOutsideProject indicates the parent task belongs to a
	// different project.
	ErrParentOutsideProject = errors.New("parent task belongs to a different project")
	// ErrInvalidInput indicates invalid task input.
	ErrInvalidInput = errors.New("invalid task input")
	// ErrCodeTaken indicates the task code is already in use.
	ErrCodeTaken = errors.New("task code already in use")
	// ErrCycle indicates the requested parent would make a task its own
	// ancestor.
	ErrCycle = errors.New("parent would make task its own ancestor")
)
