// Package activity manages work sessions logged against tasks. Logging an
// activity is the only entry point for actual hours: every create, edit, or
// delete feeds a signed delta into the rollup propagator so the task and its
// project ancestry stay consistent.
package activity

import "time"

// Activity is a single logged work session on a task. Exactly one of UserID
// and MachineID identifies who performed the work.
type Activity struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"task_id"`
	UserID      *string   `json:"user_id,omitempty"`
	MachineID   *string   `json:"machine_id,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	EndedAt     time.Time `json:"ended_at"`
	TotalHours  float64   `json:"total_hours"`
	IsLast      bool      `json:"is_last"`
	CreatedByID string    `json:"created_by_id"`
	UpdatedByID string    `json:"updated_by_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
