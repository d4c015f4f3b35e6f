package task

import "time"

// Status enumerates task workflow states.
type Status string

const (
	StatusTodo             Status = "todo"
	StatusInProgress       Status = "in_progress"
	StatusDone             Status = "done"
	StatusInactive         Status = "inactive"
	StatusAwaitingApproval Status = "awaiting_approval"
)

// Valid reports whether s is a known task status.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone, StatusInactive, StatusAwaitingApproval:
		return true
	}
	return false
}

// Finished reports whether s counts as settled for a parent project's
// completion precondition.
func (s Status) Finished() bool {
	return s == StatusDone || s == StatusInactive
}

// Task belongs to exactly one project. Tasks form a strict tree inside their
// project via ParentTaskID, unlike the multi-parent project hierarchy.
type Task struct {
	ID           string     `json:"id"`
	Code         string     `json:"code"`
	Title        string     `json:"title"`
	ProjectID    string     `json:"project_id"`
	ParentTaskID *string    `json:"parent_task_id,omitempty"`
	PlannedHours *float64   `json:"planned_hours,omitempty"`
	ActualHours  *float64   `json:"actual_hours,omitempty"`
	Status       Status     `json:"status"`
	CreatedByID  string     `json:"created_by_id"`
	UpdatedByID  string     `json:"updated_by_id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Ref is a lightweight task reference.
type Ref struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	Title string `json:"title"`
}

// RefOf returns the lightweight reference for t.
func RefOf(t *Task) Ref {
	return Ref{ID: t.ID, Code: t.Code, Title: t.Title}
}
