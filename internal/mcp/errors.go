package mcp

import (
	"errors"
	"fmt"

	"github.com/dstanek/workgraph/internal/domain/activity"
	"github.com/dstanek/workgraph/internal/domain/dependency"
	"github.com/dstanek/workgraph/internal/domain/project"
	"github.com/dstanek/workgraph/internal/domain/task"
	"github.com/dstanek/workgraph/internal/domain/user"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, user.ErrUnauthorized):
		return &APIError{Code: "UNAUTHORIZED", Message: "no acting user resolved", RecoveryHint: "Provide a valid API key"}
	case errors.Is(err, project.ErrProjectNotFound),
		errors.Is(err, task.ErrProjectNotFound):
		return &APIError{Code: "NOT_FOUND", Message: "project not found", RecoveryHint: "Check the project id"}
	case errors.Is(err, task.ErrTaskNotFound),
		errors.Is(err, dependency.ErrTaskNotFound),
		errors.Is(err, activity.ErrTaskNotFound):
		return &APIError{Code: "NOT_FOUND", Message: "task not found", RecoveryHint: "Check the task id"}
	case errors.Is(err, dependency.ErrDependencyNotFound):
		return &APIError{Code: "NOT_FOUND", Message: "dependency not found"}
	case errors.Is(err, activity.ErrActivityNotFound):
		return &APIError{Code: "NOT_FOUND", Message: "activity not found"}
	case errors.Is(err, project.ErrParentNotFound),
		errors.Is(err, task.ErrParentNotFound):
		return &APIError{Code: "NOT_FOUND", Message: "parent not found", RecoveryHint: "Check the parent id"}
	case errors.Is(err, project.ErrCycle),
		errors.Is(err, task.ErrCycle),
		errors.Is(err, dependency.ErrCycle):
		return &APIError{Code: "CYCLE", Message: "operation would create a cycle", RecoveryHint: "Pick a parent or dependency outside the item's descendants"}
	case errors.Is(err, dependency.ErrDuplicate):
		return &APIError{Code: "DUPLICATE_EDGE", Message: "dependency already exists"}
	case errors.Is(err, dependency.ErrSelfDependency):
		return &APIError{Code: "SELF_REFERENCE", Message: "a task cannot block itself"}
	case errors.Is(err, project.ErrIncompleteChildren):
		return &APIError{Code: "INCOMPLETE_CHILDREN", Message: "child projects or tasks are not finished", RecoveryHint: "Complete or deactivate the children first"}
	case errors.Is(err, project.ErrHasChildren):
		return &APIError{Code: "HAS_CHILDREN", Message: "project still has child projects", RecoveryHint: "Detach or delete the children first"}
	case errors.Is(err, activity.ErrNotAssigned):
		return &APIError{Code: "NOT_ASSIGNED", Message: "user is not assigned to the task", RecoveryHint: "Assign the user to the task first"}
	case errors.Is(err, project.ErrCodeTaken),
		errors.Is(err, task.ErrCodeTaken):
		return &APIError{Code: "VALIDATION", Message: "code already in use", RecoveryHint: "Pick a unique code"}
	case errors.Is(err, project.ErrDeadlineBeforeStart):
		return &APIError{Code: "VALIDATION", Message: "deadline must be after start date"}
	case errors.Is(err, activity.ErrEndBeforeStart):
		return &APIError{Code: "VALIDATION", Message: "activity must end after it starts"}
	case errors.Is(err, task.ErrParentOutsideProject):
		return &APIError{Code: "VALIDATION", Message: "parent task belongs to a different project"}
	case errors.Is(err, project.ErrInvalidInput),
		errors.Is(err, task.ErrInvalidInput),
		errors.Is(err, dependency.ErrInvalidInput),
		errors.Is(err, activity.ErrInvalidInput):
		return &APIError{Code: "VALIDATION", Message: "invalid input", RecoveryHint: "Check required fields"}
	default:
		return nil
	}
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
