// Package audit provides the append-only mutation trail. Managers record an
// entry after every successful write; recording is best-effort and never
// fails the triggering operation.
package audit

import (
	"context"
	"time"
)

// Action identifies the kind of mutation that produced an entry.
type Action string

const (
	ActionProjectCreated      Action = "project_created"
	ActionProjectUpdated      Action = "project_updated"
	ActionProjectDeleted      Action = "project_deleted"
	ActionTaskCreated         Action = "task_created"
	ActionTaskUpdated         Action = "task_updated"
	ActionDependencyAdded     Action = "dependency_added"
	ActionDependenciesSynced  Action = "dependencies_synced"
	ActionDependencyRemoved   Action = "dependency_removed"
	ActionActivityLogged      Action = "activity_logged"
	ActionActivityUpdated     Action = "activity_updated"
	ActionActivityDeleted     Action = "activity_deleted"
)

// Entry is a single audit record.
type Entry struct {
	ID        int64     `json:"id"`
	ActorID   string    `json:"actor_id"`
	Action    Action    `json:"action"`
	EntityID  string    `json:"entity_id"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}

// ListOptions filters audit reads.
type ListOptions struct {
	EntityID string
	Action   *Action
	Limit    int
	Offset   int
}

// Repository provides persistence for audit entries.
type Repository interface {
	Record(ctx context.Context, e *Entry) error
	List(ctx context.Context, opts ListOptions) ([]Entry, error)
}
