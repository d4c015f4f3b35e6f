package dependency

import "errors"

var (
	// ErrDependencyNotFound indicates the dependency doesn't exist.
	ErrDependencyNotFound = errors.New("dependency not found")
	// ErrTaskNotFound indicates a referenced task doesn't exist.
	ErrTaskNotFound = errors.New("task not found")
	// ErrSelfDependency indicates a task was asked to block itself.
	ErrSelfDependency = errors.New("task cannot block itself")
	// ErrDuplicate indicates an edge already exists between the ordered pair.
	ErrDuplicate = errors.New("dependency already exists")
	// ErrCycle indicates the edge would make the dependency graph cyclic.
	ErrCycle = errors.New("dependency would create a cycle")
	// ErrInvalidInput indicates invalid dependency input.
	ErrInvalidInput = errors.New("invalid dependency input")
)
