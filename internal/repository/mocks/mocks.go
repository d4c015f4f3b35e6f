package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dstanek/workgraph/internal/domain/activity"
	"github.com/dstanek/workgraph/internal/domain/audit"
	"github.com/dstanek/workgraph/internal/domain/dependency"
	"github.com/dstanek/workgraph/internal/domain/project"
	"github.com/dstanek/workgraph/internal/domain/task"
	"github.com/dstanek/workgraph/internal/domain/user"
)

// ProjectRepository is a mock for the project store. It carries the union of
// the persistence methods the managers use, so one mock satisfies every
// narrow project interface.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Create(ctx context.Context, p *project.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*project.Project); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) GetByCode(ctx context.Context, code string) (*project.Project, error) {
	args := m.Called(ctx, code)
	if p, ok := args.Get(0).(*project.Project); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *ProjectRepository) Update(ctx context.Context, p *project.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProjectRepository) UpdatePlannedHours(ctx context.Context, id string, hours float64) error {
	args := m.Called(ctx, id, hours)
	return args.Error(0)
}

func (m *ProjectRepository) UpdateActualHours(ctx context.Context, id string, hours float64) error {
	args := m.Called(ctx, id, hours)
	return args.Error(0)
}

func (m *ProjectRepository) SoftDelete(ctx context.Context, id, actorID string) error {
	args := m.Called(ctx, id, actorID)
	return args.Error(0)
}

func (m *ProjectRepository) ListRelations(ctx context.Context) ([]project.Relation, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]project.Relation); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) ListParents(ctx context.Context, childID string) ([]project.Relation, error) {
	args := m.Called(ctx, childID)
	if list, ok := args.Get(0).([]project.Relation); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) ListChildren(ctx context.Context, parentID string) ([]project.Relation, error) {
	args := m.Called(ctx, parentID)
	if list, ok := args.Get(0).([]project.Relation); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) ApplyRelationChanges(ctx context.Context, add []project.Relation, removeIDs []string) error {
	args := m.Called(ctx, add, removeIDs)
	return args.Error(0)
}

func (m *ProjectRepository) SyncLabels(ctx context.Context, projectID string, labelIDs []string) error {
	args := m.Called(ctx, projectID, labelIDs)
	return args.Error(0)
}

func (m *ProjectRepository) SyncAssignees(ctx context.Context, projectID string, userIDs []string) error {
	args := m.Called(ctx, projectID, userIDs)
	return args.Error(0)
}

// TaskRepository is a mock for the task store.
type TaskRepository struct {
	mock.Mock
}

func (m *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *TaskRepository) Get(ctx context.Context, id string) (*task.Task, error) {
	args := m.Called(ctx, id)
	if t, ok := args.Get(0).(*task.Task); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TaskRepository) GetByCode(ctx context.Context, code string) (*task.Task, error) {
	args := m.Called(ctx, code)
	if t, ok := args.Get(0).(*task.Task); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TaskRepository) ListByProject(ctx context.Context, projectID string) ([]task.Task, error) {
	args := m.Called(ctx, projectID)
	if list, ok := args.Get(0).([]task.Task); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TaskRepository) Update(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *TaskRepository) UpdateStatus(ctx context.Context, id string, status task.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *TaskRepository) UpdateActualHours(ctx context.Context, id string, hours float64) error {
	args := m.Called(ctx, id, hours)
	return args.Error(0)
}

func (m *TaskRepository) SoftDelete(ctx context.Context, id, actorID string) error {
	args := m.Called(ctx, id, actorID)
	return args.Error(0)
}

func (m *TaskRepository) ListAssignees(ctx context.Context, taskID string) ([]string, error) {
	args := m.Called(ctx, taskID)
	if list, ok := args.Get(0).([]string); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TaskRepository) SyncAssignees(ctx context.Context, taskID string, userIDs []string) error {
	args := m.Called(ctx, taskID, userIDs)
	return args.Error(0)
}

// DependencyRepository is a mock for the dependency edge store.
type DependencyRepository struct {
	mock.Mock
}

func (m *DependencyRepository) Create(ctx context.Context, d *dependency.Dependency) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *DependencyRepository) Get(ctx context.Context, id string) (*dependency.Dependency, error) {
	args := m.Called(ctx, id)
	if d, ok := args.Get(0).(*dependency.Dependency); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DependencyRepository) GetByPair(ctx context.Context, blockingTaskID, blockedTaskID string) (*dependency.Dependency, error) {
	args := m.Called(ctx, blockingTaskID, blockedTaskID)
	if d, ok := args.Get(0).(*dependency.Dependency); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DependencyRepository) ListAll(ctx context.Context) ([]dependency.Dependency, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]dependency.Dependency); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DependencyRepository) ListBlocking(ctx context.Context, blockedTaskID string) ([]dependency.Dependency, error) {
	args := m.Called(ctx, blockedTaskID)
	if list, ok := args.Get(0).([]dependency.Dependency); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DependencyRepository) ListBlocked(ctx context.Context, blockingTaskID string) ([]dependency.Dependency, error) {
	args := m.Called(ctx, blockingTaskID)
	if list, ok := args.Get(0).([]dependency.Dependency); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DependencyRepository) ReplaceOutgoing(ctx context.Context, blockingTaskID string, deps []dependency.Dependency) error {
	args := m.Called(ctx, blockingTaskID, deps)
	return args.Error(0)
}

func (m *DependencyRepository) SoftDelete(ctx context.Context, id, actorID string) error {
	args := m.Called(ctx, id, actorID)
	return args.Error(0)
}

// ActivityRepository is a mock for the activity store.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Create(ctx context.Context, a *activity.Activity) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *ActivityRepository) Get(ctx context.Context, id string) (*activity.Activity, error) {
	args := m.Called(ctx, id)
	if a, ok := args.Get(0).(*activity.Activity); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ActivityRepository) ListByTask(ctx context.Context, taskID string) ([]activity.Activity, error) {
	args := m.Called(ctx, taskID)
	if list, ok := args.Get(0).([]activity.Activity); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ActivityRepository) Update(ctx context.Context, a *activity.Activity) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *ActivityRepository) SoftDelete(ctx context.Context, id, actorID string) error {
	args := m.Called(ctx, id, actorID)
	return args.Error(0)
}

// UserRepository is a mock for the user store.
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Get(ctx context.Context, id string) (*user.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*user.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) Create(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

// AuditRepository is a mock for the audit log.
type AuditRepository struct {
	mock.Mock
}

func (m *AuditRepository) Record(ctx context.Context, e *audit.Entry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *AuditRepository) List(ctx context.Context, opts audit.ListOptions) ([]audit.Entry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]audit.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// Propagator is a mock for the rollup propagator.
type Propagator struct {
	mock.Mock
}

func (m *Propagator) PropagateTaskDelta(ctx context.Context, taskID string, delta float64) error {
	args := m.Called(ctx, taskID, delta)
	return args.Error(0)
}
