package activity

import (
	"context"

	"github.com/dstanek/workgraph/internal/domain/audit"
	"github.com/dstanek/workgraph/internal/domain/task"
	"github.com/dstanek/workgraph/internal/domain/user"
)

// Repository provides persistence for activities.
type Repository interface {
	Create(ctx context.Context, a *Activity) error
	Get(ctx context.Context, id string) (*Activity, error)
	ListByTask(ctx context.Context, taskID string) ([]Activity, error)
	Update(ctx context.Context, a *Activity) error
	SoftDelete(ctx context.Context, id, actorID string) error
}

// TaskStore exposes the task operations the activity manager needs: the
// assignment check and the awaiting-approval transition.
type TaskStore interface {
	Get(ctx context.Context, id string) (*task.Task, error)
	ListAssignees(ctx context.Context, taskID string) ([]string, error)
	UpdateStatus(ctx context.Context, id string, status task.Status) error
}

// Propagator pushes actual-hour deltas up from a task through its project
// ancestry.
type Propagator interface {
	PropagateTaskDelta(ctx context.Context, taskID string, delta float64) error
}

// UserStore resolves acting users.
type UserStore interface {
	Get(ctx context.Context, id string) (*user.User, error)
}

// AuditStore records mutation entries.
type AuditStore interface {
	Record(ctx context.Context, e *audit.Entry) error
}
