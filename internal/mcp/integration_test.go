package mcp_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dstanek/workgraph/internal/domain/activity"
	"github.com/dstanek/workgraph/internal/domain/dependency"
	"github.com/dstanek/workgraph/internal/domain/project"
	"github.com/dstanek/workgraph/internal/domain/rollup"
	"github.com/dstanek/workgraph/internal/domain/task"
	"github.com/dstanek/workgraph/internal/domain/user"
	"github.com/dstanek/workgraph/internal/mcp"
	"github.com/dstanek/workgraph/internal/sqlite"
)

const testActor = "u-alice"

// engine wires the real services against an in-memory database and drives
// them through the MCP handler, end to end minus the wire transport.
type engine struct {
	t       *testing.T
	handler *mcp.Handler
	users   *sqlite.UserRepository
}

func newEngine(t *testing.T) *engine {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.RunMigrations())

	projectRepo := sqlite.NewProjectRepository(db)
	taskRepo := sqlite.NewTaskRepository(db)
	dependencyRepo := sqlite.NewDependencyRepository(db)
	activityRepo := sqlite.NewActivityRepository(db)
	userRepo := sqlite.NewUserRepository(db)
	auditRepo := sqlite.NewAuditRepository(db)
	searchRepo := sqlite.NewSearchRepository(db)

	propagator := rollup.NewPropagator(taskRepo, projectRepo, nil)
	projectSvc := project.NewService(projectRepo, taskRepo, userRepo, auditRepo, nil)
	taskSvc := task.NewService(taskRepo, projectRepo, userRepo, auditRepo, nil)
	dependencySvc := dependency.NewService(dependencyRepo, taskRepo, userRepo, auditRepo, nil)
	activitySvc := activity.NewService(activityRepo, taskRepo, userRepo, auditRepo, propagator, nil)

	e := &engine{
		t:       t,
		handler: mcp.NewHandler(projectSvc, taskSvc, dependencySvc, activitySvc, searchRepo),
		users:   userRepo,
	}
	e.seedUser(testActor, "Alice")
	return e
}

func (e *engine) seedUser(id, name string) {
	e.t.Helper()
	err := e.users.Create(context.Background(), &user.User{ID: id, Name: name, CreatedAt: time.Now()})
	require.NoError(e.t, err)
}

func (e *engine) call(method string, params any) any {
	e.t.Helper()
	result, err := e.handler.Handle(context.Background(), testActor, method, rawParams(e.t, params))
	require.NoError(e.t, err)
	return result
}

// apiErr invokes a method expected to fail and returns its mapped error.
func (e *engine) apiErr(method string, params any) *mcp.APIError {
	e.t.Helper()
	_, err := e.handler.Handle(context.Background(), testActor, method, rawParams(e.t, params))
	require.Error(e.t, err)
	var apiErr *mcp.APIError
	require.ErrorAs(e.t, err, &apiErr)
	return apiErr
}

func (e *engine) createProject(code string, parents ...string) *project.Project {
	e.t.Helper()
	params := map[string]any{"code": code, "title": code + " project", "status": "active"}
	if len(parents) > 0 {
		params["parent_project_ids"] = parents
	}
	return e.call("create_project", params).(*project.Project)
}

func (e *engine) createTask(projectID, code string, parentTaskID *string) *task.Task {
	e.t.Helper()
	params := map[string]any{"project_id": projectID, "code": code, "title": code + " task"}
	if parentTaskID != nil {
		params["parent_task_id"] = *parentTaskID
	}
	return e.call("create_task", params).(*task.Task)
}

func (e *engine) getProject(id string) *project.Project {
	e.t.Helper()
	return e.call("get_project", map[string]any{"id": id}).(*project.Project)
}

func (e *engine) getTask(id string) task.Task {
	e.t.Helper()
	return e.call("get_task", map[string]any{"id": id}).(mcp.GetTaskResponse).Task
}

func hoursOf(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func TestEngine_RollupThroughDiamond(t *testing.T) {
	e := newEngine(t)

	top := e.createProject("TOP")
	left := e.createProject("LEFT", top.ID)
	right := e.createProject("RIGHT", top.ID)
	bottom := e.createProject("BOTTOM", left.ID, right.ID)

	root := e.createTask(bottom.ID, "T-ROOT", nil)
	child := e.createTask(bottom.ID, "T-CHILD", &root.ID)

	started := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	e.call("log_activity", map[string]any{
		"task_id":    child.ID,
		"machine_id": "builder-1",
		"started_at": started,
		"ended_at":   started.Add(2 * time.Hour),
	})

	// The leaf, its parent chain, and every project ancestor absorb the
	// delta. Top sits at the join of both diamond paths and must be
	// adjusted exactly once.
	require.Equal(t, 2.0, hoursOf(e.getTask(child.ID).ActualHours))
	require.Equal(t, 2.0, hoursOf(e.getTask(root.ID).ActualHours))
	for _, p := range []*project.Project{bottom, left, right, top} {
		require.Equal(t, 2.0, hoursOf(e.getProject(p.ID).ActualHours), "project %s", p.Code)
	}

	// A session on the root task leaves the child untouched.
	e.call("log_activity", map[string]any{
		"task_id":    root.ID,
		"machine_id": "builder-1",
		"started_at": started.Add(3 * time.Hour),
		"ended_at":   started.Add(6 * time.Hour),
	})
	require.Equal(t, 2.0, hoursOf(e.getTask(child.ID).ActualHours))
	require.Equal(t, 5.0, hoursOf(e.getTask(root.ID).ActualHours))
	require.Equal(t, 5.0, hoursOf(e.getProject(top.ID).ActualHours))
}

func TestEngine_ProjectCycleRejected(t *testing.T) {
	e := newEngine(t)

	a := e.createProject("A")
	b := e.createProject("B", a.ID)

	apiErr := e.apiErr("update_project", map[string]any{
		"id":                 a.ID,
		"parent_project_ids": []string{b.ID},
	})
	require.Equal(t, "CYCLE", apiErr.Code)

	// The rejected sync must not have left a partial edge behind.
	view := e.call("get_project_hierarchy", map[string]any{"id": a.ID}).(*project.View)
	require.Empty(t, view.Ancestors)
}

func TestEngine_TaskReparentCycleRejected(t *testing.T) {
	e := newEngine(t)

	p := e.createProject("P")
	t1 := e.createTask(p.ID, "T1", nil)
	t2 := e.createTask(p.ID, "T2", &t1.ID)

	apiErr := e.apiErr("update_task", map[string]any{
		"id":             t1.ID,
		"parent_task_id": t2.ID,
	})
	require.Equal(t, "CYCLE", apiErr.Code)
}

func TestEngine_DependencyEdgeValidation(t *testing.T) {
	e := newEngine(t)

	p := e.createProject("P")
	d1 := e.createTask(p.ID, "D1", nil)
	d2 := e.createTask(p.ID, "D2", nil)
	d3 := e.createTask(p.ID, "D3", nil)

	e.call("add_dependency", map[string]any{"blocking_task_id": d1.ID, "blocked_task_id": d2.ID})
	e.call("add_dependency", map[string]any{"blocking_task_id": d2.ID, "blocked_task_id": d3.ID})

	apiErr := e.apiErr("add_dependency", map[string]any{"blocking_task_id": d3.ID, "blocked_task_id": d1.ID})
	require.Equal(t, "CYCLE", apiErr.Code)

	apiErr = e.apiErr("add_dependency", map[string]any{"blocking_task_id": d1.ID, "blocked_task_id": d1.ID})
	require.Equal(t, "SELF_REFERENCE", apiErr.Code)

	apiErr = e.apiErr("add_dependency", map[string]any{"blocking_task_id": d1.ID, "blocked_task_id": d2.ID})
	require.Equal(t, "DUPLICATE_EDGE", apiErr.Code)

	view := e.call("get_dependencies", map[string]any{"task_id": d2.ID}).(*dependency.View)
	require.Len(t, view.BlockedBy, 1)
	require.Equal(t, d1.ID, view.BlockedBy[0].ID)
	require.Len(t, view.Blocks, 1)
	require.Equal(t, d3.ID, view.Blocks[0].ID)

	// Removing by pair frees the slot for a fresh edge.
	e.call("remove_dependency", map[string]any{"blocking_task_id": d1.ID, "blocked_task_id": d2.ID})
	e.call("add_dependency", map[string]any{"blocking_task_id": d1.ID, "blocked_task_id": d2.ID})
}

func TestEngine_CompletionPrecondition(t *testing.T) {
	e := newEngine(t)

	p := e.createProject("REL")
	sub := e.createProject("REL-SUB", p.ID)
	work := e.createTask(p.ID, "REL-1", nil)

	apiErr := e.apiErr("update_project", map[string]any{"id": p.ID, "status": "completed"})
	require.Equal(t, "INCOMPLETE_CHILDREN", apiErr.Code)

	e.call("update_task", map[string]any{"id": work.ID, "status": "done"})

	// The open subproject still blocks completion on its own.
	apiErr = e.apiErr("update_project", map[string]any{"id": p.ID, "status": "completed"})
	require.Equal(t, "INCOMPLETE_CHILDREN", apiErr.Code)

	e.call("update_project", map[string]any{"id": sub.ID, "status": "completed"})
	got := e.call("update_project", map[string]any{"id": p.ID, "status": "completed"}).(*project.Project)
	require.Equal(t, project.StatusCompleted, got.Status)
}

func TestEngine_InactiveCascadesToTasks(t *testing.T) {
	e := newEngine(t)

	p := e.createProject("ICE")
	a := e.createTask(p.ID, "ICE-1", nil)
	e.call("update_task", map[string]any{"id": a.ID, "status": "in_progress"})
	e.createTask(p.ID, "ICE-2", nil)

	e.call("update_project", map[string]any{"id": p.ID, "status": "inactive"})

	list := e.call("list_tasks", map[string]any{"project_id": p.ID}).(mcp.ListTasksResponse)
	require.Len(t, list.Tasks, 2)
	for _, got := range list.Tasks {
		require.Equal(t, task.StatusInactive, got.Status, "task %s", got.Code)
	}
}

func TestEngine_ActivityLifecycle(t *testing.T) {
	e := newEngine(t)

	p := e.createProject("ACT")
	work := e.createTask(p.ID, "ACT-1", nil)

	started := time.Date(2026, 3, 12, 14, 0, 0, 0, time.UTC)
	logged := e.call("log_activity", map[string]any{
		"task_id":    work.ID,
		"machine_id": "runner-7",
		"started_at": started,
		"ended_at":   started.Add(2 * time.Hour),
	}).(*activity.Activity)
	require.Equal(t, 2.0, logged.TotalHours)
	require.Equal(t, 2.0, hoursOf(e.getTask(work.ID).ActualHours))

	// The stored row carries real audit timestamps, not zero values.
	stored := e.call("list_activities", map[string]any{"task_id": work.ID}).(mcp.ListActivitiesResponse)
	require.Len(t, stored.Activities, 1)
	require.False(t, stored.Activities[0].CreatedAt.IsZero())
	require.False(t, stored.Activities[0].UpdatedAt.IsZero())

	// Extending the interval re-propagates only the difference.
	updated := e.call("update_activity", map[string]any{
		"id":       logged.ID,
		"ended_at": started.Add(3 * time.Hour),
	}).(*activity.Activity)
	require.Equal(t, 3.0, updated.TotalHours)
	require.Equal(t, 3.0, hoursOf(e.getTask(work.ID).ActualHours))
	require.Equal(t, 3.0, hoursOf(e.getProject(p.ID).ActualHours))

	// Marking the session as the last one hands the task to approval.
	e.call("update_activity", map[string]any{"id": logged.ID, "is_last": true})
	require.Equal(t, task.StatusAwaitingApproval, e.getTask(work.ID).Status)

	// Deleting the session withdraws its hours entirely.
	e.call("delete_activity", map[string]any{"id": logged.ID})
	require.Equal(t, 0.0, hoursOf(e.getTask(work.ID).ActualHours))
	require.Equal(t, 0.0, hoursOf(e.getProject(p.ID).ActualHours))

	list := e.call("list_activities", map[string]any{"task_id": work.ID}).(mcp.ListActivitiesResponse)
	require.Empty(t, list.Activities)
}

func TestEngine_UserActivityRequiresAssignment(t *testing.T) {
	e := newEngine(t)
	e.seedUser("u-bob", "Bob")

	p := e.createProject("ASN")
	work := e.createTask(p.ID, "ASN-1", nil)

	started := time.Date(2026, 3, 13, 9, 0, 0, 0, time.UTC)
	params := map[string]any{
		"task_id":    work.ID,
		"user_id":    "u-bob",
		"started_at": started,
		"ended_at":   started.Add(time.Hour),
	}
	apiErr := e.apiErr("log_activity", params)
	require.Equal(t, "NOT_ASSIGNED", apiErr.Code)

	e.call("update_task", map[string]any{"id": work.ID, "assignee_ids": []string{"u-bob"}})
	logged := e.call("log_activity", params).(*activity.Activity)
	require.NotNil(t, logged.UserID)
	require.Equal(t, "u-bob", *logged.UserID)
}

func TestEngine_SoftDeleteFreesCode(t *testing.T) {
	e := newEngine(t)

	first := e.createProject("REUSE")
	e.call("delete_project", map[string]any{"id": first.ID})

	apiErr := e.apiErr("get_project", map[string]any{"id": first.ID})
	require.Equal(t, "NOT_FOUND", apiErr.Code)

	second := e.createProject("REUSE")
	require.NotEqual(t, first.ID, second.ID)
}

func TestEngine_DeleteBlockedByChildProjects(t *testing.T) {
	e := newEngine(t)

	parent := e.createProject("PAR")
	child := e.createProject("CHI", parent.ID)

	apiErr := e.apiErr("delete_project", map[string]any{"id": parent.ID})
	require.Equal(t, "HAS_CHILDREN", apiErr.Code)

	e.call("delete_project", map[string]any{"id": child.ID})
	e.call("delete_project", map[string]any{"id": parent.ID})
}

func TestEngine_SearchItems(t *testing.T) {
	e := newEngine(t)

	pay := e.call("create_project", map[string]any{
		"code":  "PAY",
		"title": "Payment gateway",
	}).(*project.Project)
	e.call("create_task", map[string]any{
		"project_id": pay.ID,
		"code":       "PAY-1",
		"title":      "Gateway retry policy",
	})
	e.call("create_project", map[string]any{
		"code":  "DOCS",
		"title": "Documentation site",
	})

	resp := e.call("search_items", map[string]any{"query": "gateway"}).(mcp.SearchItemsResponse)
	require.Len(t, resp.Results, 2)

	resp = e.call("search_items", map[string]any{"query": "gateway", "kinds": []string{"task"}}).(mcp.SearchItemsResponse)
	require.Len(t, resp.Results, 1)
	require.Equal(t, "PAY-1", resp.Results[0].Code)
}

func TestEngine_HierarchyView(t *testing.T) {
	e := newEngine(t)

	top := e.createProject("TOP")
	childA := e.createProject("CH-A", top.ID)
	childB := e.createProject("CH-B", top.ID)
	grand := e.createProject("GRAND", childA.ID, childB.ID)

	work := e.createTask(childA.ID, "CH-A-1", nil)
	e.createTask(childA.ID, "CH-A-2", &work.ID)

	view := e.call("get_project_hierarchy", map[string]any{"id": top.ID}).(*project.View)
	require.Equal(t, top.ID, view.Root.Ref.ID)
	require.True(t, view.Root.Expanded)
	require.Empty(t, view.Ancestors)
	require.Len(t, view.Root.Children, 2)

	// Grand is reachable through both children but expanded only once.
	expandedGrand := 0
	for _, child := range view.Root.Children {
		require.Len(t, child.Children, 1)
		require.Equal(t, grand.ID, child.Children[0].Ref.ID)
		if child.Children[0].Expanded {
			expandedGrand++
		}
		if child.Ref.ID == childA.ID {
			require.Len(t, child.Tasks, 1)
			require.Equal(t, "CH-A-1", child.Tasks[0].Task.Code)
			require.Len(t, child.Tasks[0].Subtasks, 1)
			require.Equal(t, "CH-A-2", child.Tasks[0].Subtasks[0].Code)
		}
	}
	require.Equal(t, 1, expandedGrand)

	// From the leaf, every project above it is an ancestor.
	leafView := e.call("get_project_hierarchy", map[string]any{"id": grand.ID}).(*project.View)
	ancestors := make([]string, 0, len(leafView.Ancestors))
	for _, ref := range leafView.Ancestors {
		ancestors = append(ancestors, ref.Code)
	}
	require.ElementsMatch(t, []string{"TOP", "CH-A", "CH-B"}, ancestors)
}
