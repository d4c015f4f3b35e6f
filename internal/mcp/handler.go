package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dstanek/workgraph/internal/domain/activity"
	"github.com/dstanek/workgraph/internal/domain/dependency"
	"github.com/dstanek/workgraph/internal/domain/project"
	"github.com/dstanek/workgraph/internal/domain/search"
	"github.com/dstanek/workgraph/internal/domain/task"
)

// ProjectService defines project operations needed by MCP.
type ProjectService interface {
	Create(ctx context.Context, actorID string, req project.CreateRequest) (*project.Project, error)
	Update(ctx context.Context, actorID string, req project.UpdateRequest) (*project.Project, error)
	Delete(ctx context.Context, actorID, id string) error
	Get(ctx context.Context, id string) (*project.Project, error)
	Hierarchy(ctx context.Context, rootID string) (*project.View, error)
}

// TaskService defines task operations needed by MCP.
type TaskService interface {
	Create(ctx context.Context, actorID string, req task.CreateRequest) (*task.Task, error)
	Update(ctx context.Context, actorID string, req task.UpdateRequest) (*task.Task, error)
	Get(ctx context.Context, id string) (*task.Task, error)
	List(ctx context.Context, projectID string) ([]task.Task, error)
	Assignees(ctx context.Context, taskID string) ([]string, error)
}

// DependencyService defines dependency-edge operations needed by MCP.
type DependencyService interface {
	Add(ctx context.Context, actorID, blockingTaskID, blockedTaskID string) (*dependency.Dependency, error)
	Replace(ctx context.Context, actorID, taskID string, blockedTaskIDs []string) ([]dependency.Dependency, error)
	Remove(ctx context.Context, actorID, id string) error
	RemoveByPair(ctx context.Context, actorID, blockingTaskID, blockedTaskID string) error
	Get(ctx context.Context, taskID string) (*dependency.View, error)
}

// ActivityService defines work-session operations needed by MCP.
type ActivityService interface {
	Create(ctx context.Context, actorID string, req activity.CreateRequest) (*activity.Activity, error)
	Update(ctx context.Context, actorID string, req activity.UpdateRequest) (*activity.Activity, error)
	Delete(ctx context.Context, actorID, id string) error
	ListByTask(ctx context.Context, taskID string) ([]activity.Activity, error)
}

// SearchService defines full-text lookup needed by MCP.
type SearchService interface {
	Search(ctx context.Context, query string, opts search.Options) ([]search.Result, error)
}

// Handler dispatches MCP commands.
type Handler struct {
	projects     ProjectService
	tasks        TaskService
	dependencies DependencyService
	activities   ActivityService
	searcher     SearchService
}

// NewHandler creates a new MCP handler.
func NewHandler(projects ProjectService, tasks TaskService, dependencies DependencyService, activities ActivityService, searcher SearchService) *Handler {
	return &Handler{
		projects:     projects,
		tasks:        tasks,
		dependencies: dependencies,
		activities:   activities,
		searcher:     searcher,
	}
}

// Handle dispatches MCP requests to domain services.
func (h *Handler) Handle(ctx context.Context, actorID, method string, params json.RawMessage) (any, error) {
	switch method {
	case "create_project":
		var req CreateProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		proj, err := h.projects.Create(ctx, actorID, project.CreateRequest{
			ID:               req.ID,
			Code:             req.Code,
			Title:            req.Title,
			StartDate:        req.StartDate,
			Deadline:         req.Deadline,
			PlannedHours:     req.PlannedHours,
			Priority:         req.Priority,
			Status:           project.Status(req.Status),
			ParentProjectIDs: req.ParentProjectIDs,
			LabelIDs:         req.LabelIDs,
			AssigneeIDs:      req.AssigneeIDs,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return proj, nil
	case "update_project":
		var req UpdateProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		proj, err := h.projects.Update(ctx, actorID, project.UpdateRequest{
			ID:               req.ID,
			Title:            req.Title,
			StartDate:        req.StartDate,
			Deadline:         req.Deadline,
			PlannedHours:     req.PlannedHours,
			Priority:         req.Priority,
			Status:           statusPtr(req.Status),
			ParentProjectIDs: req.ParentProjectIDs,
			LabelIDs:         req.LabelIDs,
			AssigneeIDs:      req.AssigneeIDs,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return proj, nil
	case "delete_project":
		var req DeleteProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.projects.Delete(ctx, actorID, req.ID); err != nil {
			return nil, mapError(err)
		}
		return DeletedResponse{ID: req.ID, Deleted: true}, nil
	case "get_project":
		var req GetProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		proj, err := h.projects.Get(ctx, req.ID)
		if err != nil {
			return nil, mapError(err)
		}
		return proj, nil
	case "get_project_hierarchy":
		var req GetProjectHierarchyParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		view, err := h.projects.Hierarchy(ctx, req.ID)
		if err != nil {
			return nil, mapError(err)
		}
		return view, nil
	case "create_task":
		var req CreateTaskParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		t, err := h.tasks.Create(ctx, actorID, task.CreateRequest{
			ID:           req.ID,
			Code:         req.Code,
			Title:        req.Title,
			ProjectID:    req.ProjectID,
			ParentTaskID: req.ParentTaskID,
			PlannedHours: req.PlannedHours,
			Status:       task.Status(req.Status),
			AssigneeIDs:  req.AssigneeIDs,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return t, nil
	case "update_task":
		var req UpdateTaskParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		t, err := h.tasks.Update(ctx, actorID, task.UpdateRequest{
			ID:           req.ID,
			Title:        req.Title,
			PlannedHours: req.PlannedHours,
			Status:       taskStatusPtr(req.Status),
			ParentTaskID: req.ParentTaskID,
			ClearParent:  req.ClearParent,
			AssigneeIDs:  req.AssigneeIDs,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return t, nil
	case "get_task":
		var req GetTaskParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		t, err := h.tasks.Get(ctx, req.ID)
		if err != nil {
			return nil, mapError(err)
		}
		assignees, err := h.tasks.Assignees(ctx, req.ID)
		if err != nil {
			return nil, mapError(err)
		}
		return GetTaskResponse{Task: *t, Assignees: assignees}, nil
	case "list_tasks":
		var req ListTasksParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		tasks, err := h.tasks.List(ctx, req.ProjectID)
		if err != nil {
			return nil, mapError(err)
		}
		return ListTasksResponse{Tasks: tasks}, nil
	case "add_dependency":
		var req AddDependencyParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		dep, err := h.dependencies.Add(ctx, actorID, req.BlockingTaskID, req.BlockedTaskID)
		if err != nil {
			return nil, mapError(err)
		}
		return dep, nil
	case "replace_dependencies":
		var req ReplaceDependenciesParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		deps, err := h.dependencies.Replace(ctx, actorID, req.TaskID, req.BlockedTaskIDs)
		if err != nil {
			return nil, mapError(err)
		}
		if deps == nil {
			deps = []dependency.Dependency{}
		}
		return deps, nil
	case "remove_dependency":
		var req RemoveDependencyParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		var err error
		if req.ID != "" {
			err = h.dependencies.Remove(ctx, actorID, req.ID)
		} else {
			err = h.dependencies.RemoveByPair(ctx, actorID, req.BlockingTaskID, req.BlockedTaskID)
		}
		if err != nil {
			return nil, mapError(err)
		}
		return DeletedResponse{ID: req.ID, Deleted: true}, nil
	case "get_dependencies":
		var req GetDependenciesParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		view, err := h.dependencies.Get(ctx, req.TaskID)
		if err != nil {
			return nil, mapError(err)
		}
		return view, nil
	case "log_activity":
		var req LogActivityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		a, err := h.activities.Create(ctx, actorID, activity.CreateRequest{
			TaskID:    req.TaskID,
			UserID:    req.UserID,
			MachineID: req.MachineID,
			StartedAt: req.StartedAt,
			EndedAt:   req.EndedAt,
			IsLast:    req.IsLast,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return a, nil
	case "update_activity":
		var req UpdateActivityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		a, err := h.activities.Update(ctx, actorID, activity.UpdateRequest{
			ID:        req.ID,
			StartedAt: req.StartedAt,
			EndedAt:   req.EndedAt,
			IsLast:    req.IsLast,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return a, nil
	case "delete_activity":
		var req DeleteActivityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.activities.Delete(ctx, actorID, req.ID); err != nil {
			return nil, mapError(err)
		}
		return DeletedResponse{ID: req.ID, Deleted: true}, nil
	case "list_activities":
		var req ListActivitiesParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		list, err := h.activities.ListByTask(ctx, req.TaskID)
		if err != nil {
			return nil, mapError(err)
		}
		if list == nil {
			list = []activity.Activity{}
		}
		return ListActivitiesResponse{Activities: list}, nil
	case "search_items":
		var req SearchItemsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		kinds := make([]search.Kind, 0, len(req.Kinds))
		for _, k := range req.Kinds {
			kinds = append(kinds, search.Kind(k))
		}
		results, err := h.searcher.Search(ctx, req.Query, search.Options{
			Kinds:  kinds,
			Limit:  req.Limit,
			Offset: req.Offset,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return SearchItemsResponse{Results: results}, nil
	default:
		return nil, fmt.Errorf("unknown method: %s", method)
	}
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 {
		return nil
	}
	return json.Unmarshal(params, out)
}

func statusPtr(val *string) *project.Status {
	if val == nil {
		return nil
	}
	status := project.Status(*val)
	return &status
}

func taskStatusPtr(val *string) *task.Status {
	if val == nil {
		return nil
	}
	status := task.Status(*val)
	return &status
}
