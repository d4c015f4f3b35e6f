package project

import (
	"context"

	"github.com/dstanek/workgraph/internal/domain/audit"
	"github.com/dstanek/workgraph/internal/domain/task"
	"github.com/dstanek/workgraph/internal/domain/user"
)

// Repository provides persistence for projects, their relation edges, and
// the label/assignment join rows synced alongside hierarchy edits.
type Repository interface {
	Create(ctx context.Context, p *Project) error
	Get(ctx context.Context, id string) (*Project, error)
	GetByCode(ctx context.Context, code string) (*Project, error)
	Update(ctx context.Context, p *Project) error
	UpdatePlannedHours(ctx context.Context, id string, hours float64) error
	SoftDelete(ctx context.Context, id, actorID string) error

	ListRelations(ctx context.Context) ([]Relation, error)
	ListParents(ctx context.Context, childID string) ([]Relation, error)
	ListChildren(ctx context.Context, parentID string) ([]Relation, error)
	ApplyRelationChanges(ctx context.Context, add []Relation, removeIDs []string) error

	SyncLabels(ctx context.Context, projectID string, labelIDs []string) error
	SyncAssignees(ctx context.Context, projectID string, userIDs []string) error
}

// TaskStore exposes the task operations the hierarchy manager needs: the
// completion precondition and the inactive cascade.
type TaskStore interface {
	ListByProject(ctx context.Context, projectID string) ([]task.Task, error)
	UpdateStatus(ctx context.Context, id string, status task.Status) error
}

// UserStore resolves acting users.
type UserStore interface {
	Get(ctx context.Context, id string) (*user.User, error)
}

// AuditStore records mutation entries.
type AuditStore interface {
	Record(ctx context.Context, e *audit.Entry) error
}
