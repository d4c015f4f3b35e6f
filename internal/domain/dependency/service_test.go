package dependency_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dstanek/workgraph/internal/domain/dependency"
	"github.com/dstanek/workgraph/internal/domain/task"
	"github.com/dstanek/workgraph/internal/domain/user"
	"github.com/dstanek/workgraph/internal/repository"
	"github.com/dstanek/workgraph/internal/repository/mocks"
)

func depFixtures(t *testing.T) (*mocks.DependencyRepository, *mocks.TaskRepository, *mocks.UserRepository, *mocks.AuditRepository, *dependency.Service) {
	t.Helper()
	deps := &mocks.DependencyRepository{}
	tasks := &mocks.TaskRepository{}
	users := &mocks.UserRepository{}
	audits := &mocks.AuditRepository{}
	svc := dependency.NewService(deps, tasks, users, audits, nil)
	return deps, tasks, users, audits, svc
}

func stubActor(users *mocks.UserRepository, id string) {
	users.On("Get", mock.Anything, id).Return(&user.User{ID: id, Name: "Tester"}, nil)
}

func stubTask(tasks *mocks.TaskRepository, id string) {
	tasks.On("Get", mock.Anything, id).Return(&task.Task{ID: id, Code: "T-" + id, Title: id}, nil)
}

func TestDependencyService_Add(t *testing.T) {
	ctx := context.Background()
	deps, tasks, users, audits, svc := depFixtures(t)

	stubActor(users, "actor1")
	stubTask(tasks, "t1")
	stubTask(tasks, "t2")

	deps.On("GetByPair", mock.Anything, "t1", "t2").Return(nil, repository.ErrNotFound)
	deps.On("ListAll", mock.Anything).Return([]dependency.Dependency{}, nil)
	deps.On("Create", mock.Anything, mock.AnythingOfType("*dependency.Dependency")).Return(nil)
	audits.On("Record", mock.Anything, mock.Anything).Return(nil)

	dep, err := svc.Add(ctx, "actor1", "t1", "t2")
	require.NoError(t, err)
	require.NotEmpty(t, dep.ID)
	require.Equal(t, "t1", dep.BlockingTaskID)
	require.Equal(t, "t2", dep.BlockedTaskID)
	require.Equal(t, "actor1", dep.CreatedByID)
	deps.AssertExpectations(t)
}

func TestDependencyService_Add_SelfReference(t *testing.T) {
	ctx := context.Background()
	_, _, users, _, svc := depFixtures(t)
	stubActor(users, "actor1")

	_, err := svc.Add(ctx, "actor1", "t1", "t1")
	require.ErrorIs(t, err, dependency.ErrSelfDependency)
}

func TestDependencyService_Add_UnknownTask(t *testing.T) {
	ctx := context.Background()
	_, tasks, users, _, svc := depFixtures(t)
	stubActor(users, "actor1")
	tasks.On("Get", mock.Anything, "ghost").Return(nil, repository.ErrNotFound)

	_, err := svc.Add(ctx, "actor1", "ghost", "t2")
	require.ErrorIs(t, err, dependency.ErrTaskNotFound)
}

func TestDependencyService_Add_Duplicate(t *testing.T) {
	ctx := context.Background()
	deps, tasks, users, _, svc := depFixtures(t)
	stubActor(users, "actor1")
	stubTask(tasks, "t1")
	stubTask(tasks, "t2")
	deps.On("GetByPair", mock.Anything, "t1", "t2").Return(&dependency.Dependency{ID: "d1"}, nil)

	_, err := svc.Add(ctx, "actor1", "t1", "t2")
	require.ErrorIs(t, err, dependency.ErrDuplicate)
}

func TestDependencyService_Add_RejectsCycle(t *testing.T) {
	ctx := context.Background()
	deps, tasks, users, _, svc := depFixtures(t)
	stubActor(users, "actor1")
	for _, id := range []string{"t1", "t2", "t3"} {
		stubTask(tasks, id)
	}

	// Existing chain t1 -> t2 -> t3; closing t3 -> t1 must be rejected.
	deps.On("GetByPair", mock.Anything, "t3", "t1").Return(nil, repository.ErrNotFound)
	deps.On("ListAll", mock.Anything).Return([]dependency.Dependency{
		{ID: "d1", BlockingTaskID: "t1", BlockedTaskID: "t2"},
		{ID: "d2", BlockingTaskID: "t2", BlockedTaskID: "t3"},
	}, nil)

	_, err := svc.Add(ctx, "actor1", "t3", "t1")
	require.ErrorIs(t, err, dependency.ErrCycle)
	deps.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDependencyService_Add_NoActor(t *testing.T) {
	ctx := context.Background()
	_, _, _, _, svc := depFixtures(t)

	_, err := svc.Add(ctx, "", "t1", "t2")
	require.ErrorIs(t, err, user.ErrUnauthorized)
}

func TestDependencyService_Replace(t *testing.T) {
	ctx := context.Background()
	deps, tasks, users, audits, svc := depFixtures(t)
	stubActor(users, "actor1")
	for _, id := range []string{"t1", "t2", "t3"} {
		stubTask(tasks, id)
	}

	// t1 currently blocks t9 (stale); the replace swaps in t2 and t3.
	deps.On("ListAll", mock.Anything).Return([]dependency.Dependency{
		{ID: "d1", BlockingTaskID: "t1", BlockedTaskID: "t9"},
	}, nil)
	deps.On("ReplaceOutgoing", mock.Anything, "t1", mock.AnythingOfType("[]dependency.Dependency")).Return(nil)
	audits.On("Record", mock.Anything, mock.Anything).Return(nil)

	out, err := svc.Replace(ctx, "actor1", "t1", []string{"t2", "t3", "t2"})
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "t2", out[0].BlockedTaskID)
	require.Equal(t, "t3", out[1].BlockedTaskID)
	deps.AssertExpectations(t)
}

func TestDependencyService_Replace_EmptySetKeepsExisting(t *testing.T) {
	ctx := context.Background()
	deps, tasks, users, _, svc := depFixtures(t)
	stubActor(users, "actor1")
	stubTask(tasks, "t1")
	deps.On("ListAll", mock.Anything).Return([]dependency.Dependency{}, nil)

	out, err := svc.Replace(ctx, "actor1", "t1", nil)
	require.NoError(t, err)
	require.Empty(t, out)
	deps.AssertNotCalled(t, "ReplaceOutgoing", mock.Anything, mock.Anything, mock.Anything)
}

func TestDependencyService_Replace_CycleThroughRemainingEdges(t *testing.T) {
	ctx := context.Background()
	deps, tasks, users, _, svc := depFixtures(t)
	stubActor(users, "actor1")
	for _, id := range []string{"t1", "t2", "t3"} {
		stubTask(tasks, id)
	}

	// Edges outside t1's outgoing set survive the replace, so proposing
	// t1 -> t2 closes the loop t1 -> t2 -> t3 -> t1.
	deps.On("ListAll", mock.Anything).Return([]dependency.Dependency{
		{ID: "d1", BlockingTaskID: "t2", BlockedTaskID: "t3"},
		{ID: "d2", BlockingTaskID: "t3", BlockedTaskID: "t1"},
	}, nil)

	_, err := svc.Replace(ctx, "actor1", "t1", []string{"t2"})
	require.ErrorIs(t, err, dependency.ErrCycle)
}

func TestDependencyService_RemoveByPair(t *testing.T) {
	ctx := context.Background()
	deps, _, users, audits, svc := depFixtures(t)
	stubActor(users, "actor1")
	deps.On("GetByPair", mock.Anything, "t1", "t2").Return(&dependency.Dependency{
		ID: "d1", BlockingTaskID: "t1", BlockedTaskID: "t2",
	}, nil)
	deps.On("SoftDelete", mock.Anything, "d1", "actor1").Return(nil)
	audits.On("Record", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, svc.RemoveByPair(ctx, "actor1", "t1", "t2"))
	deps.AssertExpectations(t)
}

func TestDependencyService_Remove_NotFound(t *testing.T) {
	ctx := context.Background()
	deps, _, users, _, svc := depFixtures(t)
	stubActor(users, "actor1")
	deps.On("Get", mock.Anything, "ghost").Return(nil, repository.ErrNotFound)

	err := svc.Remove(ctx, "actor1", "ghost")
	require.ErrorIs(t, err, dependency.ErrDependencyNotFound)
}

func TestDependencyService_Get(t *testing.T) {
	ctx := context.Background()
	deps, tasks, _, _, svc := depFixtures(t)
	for _, id := range []string{"t1", "t2", "t3"} {
		stubTask(tasks, id)
	}

	deps.On("ListBlocking", mock.Anything, "t2").Return([]dependency.Dependency{
		{ID: "d1", BlockingTaskID: "t1", BlockedTaskID: "t2"},
	}, nil)
	deps.On("ListBlocked", mock.Anything, "t2").Return([]dependency.Dependency{
		{ID: "d2", BlockingTaskID: "t2", BlockedTaskID: "t3"},
	}, nil)

	view, err := svc.Get(ctx, "t2")
	require.NoError(t, err)
	require.Equal(t, "t2", view.Task.ID)
	require.Len(t, view.BlockedBy, 1)
	require.Equal(t, "t1", view.BlockedBy[0].ID)
	require.Len(t, view.Blocks, 1)
	require.Equal(t, "t3", view.Blocks[0].ID)
}
