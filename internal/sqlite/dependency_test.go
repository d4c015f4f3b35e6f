package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dstanek/workgraph/internal/domain/dependency"
	"github.com/dstanek/workgraph/internal/repository"
)

func seedDependencyTasks(t *testing.T, db *DB, ids ...string) {
	t.Helper()
	ctx := context.Background()
	projects := NewProjectRepository(db)
	tasks := NewTaskRepository(db)
	require.NoError(t, projects.Create(ctx, testProject("p1", "ENG")))
	for _, id := range ids {
		require.NoError(t, tasks.Create(ctx, testTask(id, "ENG-"+id, "p1")))
	}
}

func testDependency(id, blocking, blocked string) *dependency.Dependency {
	return &dependency.Dependency{
		ID:             id,
		BlockingTaskID: blocking,
		BlockedTaskID:  blocked,
		CreatedByID:    "u1",
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
	}
}

func TestDependencyRepository_CreateAndGet(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewDependencyRepository(db)
	seedDependencyTasks(t, db, "t1", "t2")

	require.NoError(t, repo.Create(ctx, testDependency("d1", "t1", "t2")))

	got, err := repo.Get(ctx, "d1")
	require.NoError(t, err)
	require.Equal(t, "t1", got.BlockingTaskID)
	require.Equal(t, "t2", got.BlockedTaskID)

	byPair, err := repo.GetByPair(ctx, "t1", "t2")
	require.NoError(t, err)
	require.Equal(t, "d1", byPair.ID)

	// The reverse pair is a different edge.
	_, err = repo.GetByPair(ctx, "t2", "t1")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDependencyRepository_DuplicatePair(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewDependencyRepository(db)
	seedDependencyTasks(t, db, "t1", "t2")

	require.NoError(t, repo.Create(ctx, testDependency("d1", "t1", "t2")))
	err := repo.Create(ctx, testDependency("d2", "t1", "t2"))
	require.ErrorIs(t, err, repository.ErrConflict)
}

func TestDependencyRepository_Lists(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewDependencyRepository(db)
	seedDependencyTasks(t, db, "t1", "t2", "t3")

	require.NoError(t, repo.Create(ctx, testDependency("d1", "t1", "t2")))
	require.NoError(t, repo.Create(ctx, testDependency("d2", "t3", "t2")))

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	blocking, err := repo.ListBlocking(ctx, "t2")
	require.NoError(t, err)
	require.Len(t, blocking, 2)

	blocked, err := repo.ListBlocked(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, blocked, 1)
	require.Equal(t, "t2", blocked[0].BlockedTaskID)
}

func TestDependencyRepository_ReplaceOutgoing(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewDependencyRepository(db)
	seedDependencyTasks(t, db, "t1", "t2", "t3")

	require.NoError(t, repo.Create(ctx, testDependency("d1", "t1", "t2")))
	require.NoError(t, repo.ReplaceOutgoing(ctx, "t1", []dependency.Dependency{
		*testDependency("d2", "t1", "t3"),
	}))

	blocked, err := repo.ListBlocked(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, blocked, 1)
	require.Equal(t, "t3", blocked[0].BlockedTaskID)

	_, err = repo.GetByPair(ctx, "t1", "t2")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDependencyRepository_ReplaceOutgoing_RollsBackOnBadEdge(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewDependencyRepository(db)
	seedDependencyTasks(t, db, "t1", "t2")

	require.NoError(t, repo.Create(ctx, testDependency("d1", "t1", "t2")))
	err := repo.ReplaceOutgoing(ctx, "t1", []dependency.Dependency{
		*testDependency("d2", "t1", "ghost"),
	})
	require.ErrorIs(t, err, repository.ErrForeignKeyViolation)

	// The original edge survives the failed replace.
	got, err := repo.GetByPair(ctx, "t1", "t2")
	require.NoError(t, err)
	require.Equal(t, "d1", got.ID)
}

func TestDependencyRepository_SoftDelete(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewDependencyRepository(db)
	seedDependencyTasks(t, db, "t1", "t2")

	require.NoError(t, repo.Create(ctx, testDependency("d1", "t1", "t2")))
	require.NoError(t, repo.SoftDelete(ctx, "d1", "u1"))

	_, err := repo.Get(ctx, "d1")
	require.ErrorIs(t, err, repository.ErrNotFound)

	// The pair can be recreated after deletion.
	require.NoError(t, repo.Create(ctx, testDependency("d2", "t1", "t2")))
}
