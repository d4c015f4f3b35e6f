package task

import (
	"context"

	"github.com/dstanek/workgraph/internal/domain/audit"
	"github.com/dstanek/workgraph/internal/domain/user"
)

// Repository provides persistence for tasks and their assignee join rows.
type Repository interface {
	Create(ctx context.Context, t *Task) error
	Get(ctx context.Context, id string) (*Task, error)
	GetByCode(ctx context.Context, code string) (*Task, error)
	ListByProject(ctx context.Context, projectID string) ([]Task, error)
	Update(ctx context.Context, t *Task) error
	UpdateStatus(ctx context.Context, id string, status Status) error
	SoftDelete(ctx context.Context, id, actorID string) error
	ListAssignees(ctx context.Context, taskID string) ([]string, error)
	SyncAssignees(ctx context.Context, taskID string, userIDs []string) error
}

// ProjectStore answers project existence checks.
type ProjectStore interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// UserStore resolves acting users.
type UserStore interface {
	Get(ctx context.Context, id string) (*user.User, error)
}

// AuditStore records mutation entries.
type AuditStore interface {
	Record(ctx context.Context, e *audit.Entry) error
}
