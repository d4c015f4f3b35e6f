package dependency

import (
	"context"

	"github.com/dstanek/workgraph/internal/domain/audit"
	"github.com/dstanek/workgraph/internal/domain/task"
	"github.com/dstanek/workgraph/internal/domain/user"
)

// Repository provides persistence for dependency edges.
type Repository interface {
	Create(ctx context.Context, d *Dependency) error
	Get(ctx context.Context, id string) (*Dependency, error)
	GetByPair(ctx context.Context, blockingTaskID, blockedTaskID string) (*Dependency, error)
	ListAll(ctx context.Context) ([]Dependency, error)
	ListBlocking(ctx context.Context, blockedTaskID string) ([]Dependency, error)
	ListBlocked(ctx context.Context, blockingTaskID string) ([]Dependency, error)
	ReplaceOutgoing(ctx context.Context, blockingTaskID string, deps []Dependency) error
	SoftDelete(ctx context.Context, id, actorID string) error
}

// TaskStore resolves task references.
type TaskStore interface {
	Get(ctx context.Context, id string) (*task.Task, error)
}

// UserStore resolves acting users.
type UserStore interface {
	Get(ctx context.Context, id string) (*user.User, error)
}

// AuditStore records mutation entries.
type AuditStore interface {
	Record(ctx context.Context, e *audit.Entry) error
}
