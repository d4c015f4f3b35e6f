package mcp

import (
	"time"

	"github.com/dstanek/workgraph/internal/domain/activity"
	"github.com/dstanek/workgraph/internal/domain/search"
	"github.com/dstanek/workgraph/internal/domain/task"
)

type CreateProjectParams struct {
	ID               string     `json:"id,omitempty"`
	Code             string     `json:"code"`
	Title            string     `json:"title"`
	StartDate        *time.Time `json:"start_date,omitempty"`
	Deadline         *time.Time `json:"deadline,omitempty"`
	PlannedHours     *float64   `json:"planned_hours,omitempty"`
	Priority         int        `json:"priority,omitempty"`
	Status           string     `json:"status,omitempty"`
	ParentProjectIDs []string   `json:"parent_project_ids,omitempty"`
	LabelIDs         []string   `json:"label_ids,omitempty"`
	AssigneeIDs      []string   `json:"assignee_ids,omitempty"`
}

type UpdateProjectParams struct {
	ID               string     `json:"id"`
	Title            *string    `json:"title,omitempty"`
	StartDate        *time.Time `json:"start_date,omitempty"`
	Deadline         *time.Time `json:"deadline,omitempty"`
	PlannedHours     *float64   `json:"planned_hours,omitempty"`
	Priority         *int       `json:"priority,omitempty"`
	Status           *string    `json:"status,omitempty"`
	ParentProjectIDs []string   `json:"parent_project_ids,omitempty"`
	LabelIDs         []string   `json:"label_ids,omitempty"`
	AssigneeIDs      []string   `json:"assignee_ids,omitempty"`
}

type DeleteProjectParams struct {
	ID string `json:"id"`
}

type GetProjectParams struct {
	ID string `json:"id"`
}

type GetProjectHierarchyParams struct {
	ID string `json:"id"`
}

type CreateTaskParams struct {
	ID           string   `json:"id,omitempty"`
	Code         string   `json:"code"`
	Title        string   `json:"title"`
	ProjectID    string   `json:"project_id"`
	ParentTaskID *string  `json:"parent_task_id,omitempty"`
	PlannedHours *float64 `json:"planned_hours,omitempty"`
	Status       string   `json:"status,omitempty"`
	AssigneeIDs  []string `json:"assignee_ids,omitempty"`
}

type UpdateTaskParams struct {
	ID           string   `json:"id"`
	Title        *string  `json:"title,omitempty"`
	PlannedHours *float64 `json:"planned_hours,omitempty"`
	Status       *string  `json:"status,omitempty"`
	ParentTaskID *string  `json:"parent_task_id,omitempty"`
	ClearParent  bool     `json:"clear_parent,omitempty"`
	AssigneeIDs  []string `json:"assignee_ids,omitempty"`
}

type GetTaskParams struct {
	ID string `json:"id"`
}

type ListTasksParams struct {
	ProjectID string `json:"project_id"`
}

type AddDependencyParams struct {
	BlockingTaskID string `json:"blocking_task_id"`
	BlockedTaskID  string `json:"blocked_task_id"`
}

type ReplaceDependenciesParams struct {
	TaskID         string   `json:"task_id"`
	BlockedTaskIDs []string `json:"blocked_task_ids"`
}

// RemoveDependencyParams identifies an edge either by its id or by its
// blocking/blocked pair.
type RemoveDependencyParams struct {
	ID             string `json:"id,omitempty"`
	BlockingTaskID string `json:"blocking_task_id,omitempty"`
	BlockedTaskID  string `json:"blocked_task_id,omitempty"`
}

type GetDependenciesParams struct {
	TaskID string `json:"task_id"`
}

type LogActivityParams struct {
	TaskID    string    `json:"task_id"`
	UserID    *string   `json:"user_id,omitempty"`
	MachineID *string   `json:"machine_id,omitempty"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	IsLast    bool      `json:"is_last,omitempty"`
}

type UpdateActivityParams struct {
	ID        string     `json:"id"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	IsLast    *bool      `json:"is_last,omitempty"`
}

type DeleteActivityParams struct {
	ID string `json:"id"`
}

type ListActivitiesParams struct {
	TaskID string `json:"task_id"`
}

type SearchItemsParams struct {
	Query  string   `json:"query"`
	Kinds  []string `json:"kinds,omitempty"`
	Limit  int      `json:"limit,omitempty"`
	Offset int      `json:"offset,omitempty"`
}

type GetTaskResponse struct {
	Task      task.Task `json:"task"`
	Assignees []string  `json:"assignees,omitempty"`
}

type ListTasksResponse struct {
	Tasks []task.Task `json:"tasks"`
}

type ListActivitiesResponse struct {
	Activities []activity.Activity `json:"activities"`
}

type SearchItemsResponse struct {
	Results []search.Result `json:"results"`
}

type DeletedResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}
