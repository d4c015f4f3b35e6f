package mcp_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dstanek/workgraph/internal/domain/activity"
	"github.com/dstanek/workgraph/internal/domain/dependency"
	"github.com/dstanek/workgraph/internal/domain/project"
	"github.com/dstanek/workgraph/internal/domain/search"
	"github.com/dstanek/workgraph/internal/domain/task"
	"github.com/dstanek/workgraph/internal/mcp"
)

type mockProjectService struct{ mock.Mock }

func (m *mockProjectService) Create(ctx context.Context, actorID string, req project.CreateRequest) (*project.Project, error) {
	args := m.Called(ctx, actorID, req)
	if p, ok := args.Get(0).(*project.Project); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProjectService) Update(ctx context.Context, actorID string, req project.UpdateRequest) (*project.Project, error) {
	args := m.Called(ctx, actorID, req)
	if p, ok := args.Get(0).(*project.Project); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProjectService) Delete(ctx context.Context, actorID, id string) error {
	args := m.Called(ctx, actorID, id)
	return args.Error(0)
}

func (m *mockProjectService) Get(ctx context.Context, id string) (*project.Project, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*project.Project); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProjectService) Hierarchy(ctx context.Context, rootID string) (*project.View, error) {
	args := m.Called(ctx, rootID)
	if v, ok := args.Get(0).(*project.View); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockTaskService struct{ mock.Mock }

func (m *mockTaskService) Create(ctx context.Context, actorID string, req task.CreateRequest) (*task.Task, error) {
	args := m.Called(ctx, actorID, req)
	if t, ok := args.Get(0).(*task.Task); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTaskService) Update(ctx context.Context, actorID string, req task.UpdateRequest) (*task.Task, error) {
	args := m.Called(ctx, actorID, req)
	if t, ok := args.Get(0).(*task.Task); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTaskService) Get(ctx context.Context, id string) (*task.Task, error) {
	args := m.Called(ctx, id)
	if t, ok := args.Get(0).(*task.Task); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTaskService) List(ctx context.Context, projectID string) ([]task.Task, error) {
	args := m.Called(ctx, projectID)
	if tasks, ok := args.Get(0).([]task.Task); ok {
		return tasks, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTaskService) Assignees(ctx context.Context, taskID string) ([]string, error) {
	args := m.Called(ctx, taskID)
	if ids, ok := args.Get(0).([]string); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockDependencyService struct{ mock.Mock }

func (m *mockDependencyService) Add(ctx context.Context, actorID, blockingTaskID, blockedTaskID string) (*dependency.Dependency, error) {
	args := m.Called(ctx, actorID, blockingTaskID, blockedTaskID)
	if d, ok := args.Get(0).(*dependency.Dependency); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDependencyService) Replace(ctx context.Context, actorID, taskID string, blockedTaskIDs []string) ([]dependency.Dependency, error) {
	args := m.Called(ctx, actorID, taskID, blockedTaskIDs)
	if deps, ok := args.Get(0).([]dependency.Dependency); ok {
		return deps, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDependencyService) Remove(ctx context.Context, actorID, id string) error {
	args := m.Called(ctx, actorID, id)
	return args.Error(0)
}

func (m *mockDependencyService) RemoveByPair(ctx context.Context, actorID, blockingTaskID, blockedTaskID string) error {
	args := m.Called(ctx, actorID, blockingTaskID, blockedTaskID)
	return args.Error(0)
}

func (m *mockDependencyService) Get(ctx context.Context, taskID string) (*dependency.View, error) {
	args := m.Called(ctx, taskID)
	if v, ok := args.Get(0).(*dependency.View); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockActivityService struct{ mock.Mock }

func (m *mockActivityService) Create(ctx context.Context, actorID string, req activity.CreateRequest) (*activity.Activity, error) {
	args := m.Called(ctx, actorID, req)
	if a, ok := args.Get(0).(*activity.Activity); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockActivityService) Update(ctx context.Context, actorID string, req activity.UpdateRequest) (*activity.Activity, error) {
	args := m.Called(ctx, actorID, req)
	if a, ok := args.Get(0).(*activity.Activity); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockActivityService) Delete(ctx context.Context, actorID, id string) error {
	args := m.Called(ctx, actorID, id)
	return args.Error(0)
}

func (m *mockActivityService) ListByTask(ctx context.Context, taskID string) ([]activity.Activity, error) {
	args := m.Called(ctx, taskID)
	if list, ok := args.Get(0).([]activity.Activity); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSearchService struct{ mock.Mock }

func (m *mockSearchService) Search(ctx context.Context, query string, opts search.Options) ([]search.Result, error) {
	args := m.Called(ctx, query, opts)
	if results, ok := args.Get(0).([]search.Result); ok {
		return results, args.Error(1)
	}
	return nil, args.Error(1)
}

type handlerFixture struct {
	projects     *mockProjectService
	tasks        *mockTaskService
	dependencies *mockDependencyService
	activities   *mockActivityService
	searcher     *mockSearchService
	handler      *mcp.Handler
}

func newHandlerFixture() *handlerFixture {
	f := &handlerFixture{
		projects:     new(mockProjectService),
		tasks:        new(mockTaskService),
		dependencies: new(mockDependencyService),
		activities:   new(mockActivityService),
		searcher:     new(mockSearchService),
	}
	f.handler = mcp.NewHandler(f.projects, f.tasks, f.dependencies, f.activities, f.searcher)
	return f
}

func rawParams(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestHandler_CreateProject(t *testing.T) {
	f := newHandlerFixture()

	want := &project.Project{ID: "p1", Code: "CORE", Title: "Core engine"}
	f.projects.On("Create", mock.Anything, "user-1", mock.MatchedBy(func(req project.CreateRequest) bool {
		return req.Code == "CORE" && req.Title == "Core engine" && req.Status == project.StatusActive
	})).Return(want, nil)

	result, err := f.handler.Handle(context.Background(), "user-1", "create_project", rawParams(t, map[string]any{
		"code":   "CORE",
		"title":  "Core engine",
		"status": "active",
	}))
	require.NoError(t, err)
	require.Equal(t, want, result)
	f.projects.AssertExpectations(t)
}

func TestHandler_CreateProject_MapsCycleError(t *testing.T) {
	f := newHandlerFixture()

	f.projects.On("Create", mock.Anything, "user-1", mock.Anything).Return(nil, project.ErrCycle)

	_, err := f.handler.Handle(context.Background(), "user-1", "create_project", rawParams(t, map[string]any{
		"code":               "CORE",
		"title":              "Core engine",
		"parent_project_ids": []string{"p-self"},
	}))
	require.Error(t, err)

	var apiErr *mcp.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "CYCLE", apiErr.Code)
}

func TestHandler_GetTask_IncludesAssignees(t *testing.T) {
	f := newHandlerFixture()

	f.tasks.On("Get", mock.Anything, "t1").Return(&task.Task{ID: "t1", Code: "T-1", Title: "Parser"}, nil)
	f.tasks.On("Assignees", mock.Anything, "t1").Return([]string{"user-1", "user-2"}, nil)

	result, err := f.handler.Handle(context.Background(), "user-1", "get_task", rawParams(t, map[string]string{"id": "t1"}))
	require.NoError(t, err)

	resp, ok := result.(mcp.GetTaskResponse)
	require.True(t, ok)
	require.Equal(t, "t1", resp.Task.ID)
	require.Equal(t, []string{"user-1", "user-2"}, resp.Assignees)
}

func TestHandler_GetTask_MapsNotFound(t *testing.T) {
	f := newHandlerFixture()

	f.tasks.On("Get", mock.Anything, "missing").Return(nil, task.ErrTaskNotFound)

	_, err := f.handler.Handle(context.Background(), "user-1", "get_task", rawParams(t, map[string]string{"id": "missing"}))

	var apiErr *mcp.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "NOT_FOUND", apiErr.Code)
}

func TestHandler_AddDependency(t *testing.T) {
	f := newHandlerFixture()

	want := &dependency.Dependency{ID: "d1", BlockingTaskID: "t1", BlockedTaskID: "t2"}
	f.dependencies.On("Add", mock.Anything, "user-1", "t1", "t2").Return(want, nil)

	result, err := f.handler.Handle(context.Background(), "user-1", "add_dependency", rawParams(t, map[string]string{
		"blocking_task_id": "t1",
		"blocked_task_id":  "t2",
	}))
	require.NoError(t, err)
	require.Equal(t, want, result)
}

func TestHandler_AddDependency_MapsDuplicate(t *testing.T) {
	f := newHandlerFixture()

	f.dependencies.On("Add", mock.Anything, "user-1", "t1", "t2").Return(nil, dependency.ErrDuplicate)

	_, err := f.handler.Handle(context.Background(), "user-1", "add_dependency", rawParams(t, map[string]string{
		"blocking_task_id": "t1",
		"blocked_task_id":  "t2",
	}))

	var apiErr *mcp.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "DUPLICATE_EDGE", apiErr.Code)
}

func TestHandler_RemoveDependency_PrefersID(t *testing.T) {
	f := newHandlerFixture()

	f.dependencies.On("Remove", mock.Anything, "user-1", "d1").Return(nil)

	result, err := f.handler.Handle(context.Background(), "user-1", "remove_dependency", rawParams(t, map[string]string{
		"id":               "d1",
		"blocking_task_id": "t1",
		"blocked_task_id":  "t2",
	}))
	require.NoError(t, err)
	require.Equal(t, mcp.DeletedResponse{ID: "d1", Deleted: true}, result)
	f.dependencies.AssertNotCalled(t, "RemoveByPair", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_RemoveDependency_ByPair(t *testing.T) {
	f := newHandlerFixture()

	f.dependencies.On("RemoveByPair", mock.Anything, "user-1", "t1", "t2").Return(nil)

	_, err := f.handler.Handle(context.Background(), "user-1", "remove_dependency", rawParams(t, map[string]string{
		"blocking_task_id": "t1",
		"blocked_task_id":  "t2",
	}))
	require.NoError(t, err)
	f.dependencies.AssertExpectations(t)
}

func TestHandler_ReplaceDependencies_EmptyResultIsNotNil(t *testing.T) {
	f := newHandlerFixture()

	f.dependencies.On("Replace", mock.Anything, "user-1", "t1", []string(nil)).Return(nil, nil)

	result, err := f.handler.Handle(context.Background(), "user-1", "replace_dependencies", rawParams(t, map[string]any{
		"task_id": "t1",
	}))
	require.NoError(t, err)
	require.Equal(t, []dependency.Dependency{}, result)
}

func TestHandler_LogActivity(t *testing.T) {
	f := newHandlerFixture()

	userID := "user-2"
	f.activities.On("Create", mock.Anything, "user-1", mock.MatchedBy(func(req activity.CreateRequest) bool {
		return req.TaskID == "t1" && req.UserID != nil && *req.UserID == userID && req.IsLast
	})).Return(&activity.Activity{ID: "a1", TaskID: "t1", TotalHours: 2}, nil)

	result, err := f.handler.Handle(context.Background(), "user-1", "log_activity", rawParams(t, map[string]any{
		"task_id":    "t1",
		"user_id":    userID,
		"started_at": "2026-03-01T09:00:00Z",
		"ended_at":   "2026-03-01T11:00:00Z",
		"is_last":    true,
	}))
	require.NoError(t, err)

	a, ok := result.(*activity.Activity)
	require.True(t, ok)
	require.Equal(t, "a1", a.ID)
}

func TestHandler_SearchItems(t *testing.T) {
	f := newHandlerFixture()

	hits := []search.Result{{Kind: search.KindTask, ID: "t1", Code: "T-1", Title: "Parser"}}
	f.searcher.On("Search", mock.Anything, "parser", search.Options{
		Kinds: []search.Kind{search.KindTask},
		Limit: 5,
	}).Return(hits, nil)

	result, err := f.handler.Handle(context.Background(), "user-1", "search_items", rawParams(t, map[string]any{
		"query": "parser",
		"kinds": []string{"task"},
		"limit": 5,
	}))
	require.NoError(t, err)
	require.Equal(t, mcp.SearchItemsResponse{Results: hits}, result)
}

func TestHandler_UnknownMethod(t *testing.T) {
	f := newHandlerFixture()

	_, err := f.handler.Handle(context.Background(), "user-1", "everything_tool", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown method")
}

func TestHandler_PassesThroughUnmappedErrors(t *testing.T) {
	f := newHandlerFixture()

	boom := errors.New("disk on fire")
	f.projects.On("Get", mock.Anything, "p1").Return(nil, boom)

	_, err := f.handler.Handle(context.Background(), "user-1", "get_project", rawParams(t, map[string]string{"id": "p1"}))
	require.ErrorIs(t, err, boom)
}
