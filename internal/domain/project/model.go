package project

import "time"

// Status enumerates project lifecycle states.
type Status string

const (
	StatusPlanned          Status = "planned"
	StatusActive           Status = "active"
	StatusCompleted        Status = "completed"
	StatusInactive         Status = "inactive"
	StatusAwaitingApproval Status = "awaiting_approval"
)

// Valid reports whether s is a known project status.
func (s Status) Valid() bool {
	switch s {
	case StatusPlanned, StatusActive, StatusCompleted, StatusInactive, StatusAwaitingApproval:
		return true
	}
	return false
}

// Project is a node in the multi-parent project hierarchy. ActualHours is a
// derived value maintained by incremental rollups, never recomputed from
// scratch.
type Project struct {
	ID           string     `json:"id"`
	Code         string     `json:"code"`
	Title        string     `json:"title"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	PlannedHours *float64   `json:"planned_hours,omitempty"`
	ActualHours  *float64   `json:"actual_hours,omitempty"`
	Status       Status     `json:"status"`
	Priority     int        `json:"priority"`
	CreatedByID  string     `json:"created_by_id"`
	UpdatedByID  string     `json:"updated_by_id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Relation is a directed parent->child edge in the project hierarchy. Edges
// are created and removed only by the hierarchy manager's diff-sync.
type Relation struct {
	ID        string    `json:"id"`
	ParentID  string    `json:"parent_id"`
	ChildID   string    `json:"child_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Ref is a lightweight project reference used where a full expansion would
// repeat or bloat the payload.
type Ref struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	Title string `json:"title"`
}

// RefOf returns the lightweight reference for p.
func RefOf(p *Project) Ref {
	return Ref{ID: p.ID, Code: p.Code, Title: p.Title}
}
