package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dstanek/workgraph/internal/metrics"
)

// ToolDefinition describes one MCP tool and its input schema.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// buildToolCatalog returns all available MCP tools
func buildToolCatalog() []ToolDefinition {
	projectStatuses := []string{"planned", "active", "completed", "inactive", "awaiting_approval"}
	taskStatuses := []string{"todo", "in_progress", "done", "inactive", "awaiting_approval"}

	return []ToolDefinition{
		// Projects
		{
			Name:        "create_project",
			Description: "Create a new project, optionally attached to one or more parent projects",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":        "string",
						"description": "Unique project identifier (optional, generated if not provided)",
					},
					"code": map[string]any{
						"type":        "string",
						"description": "Human-readable project code, unique among live projects",
					},
					"title": map[string]any{
						"type":        "string",
						"description": "Project title",
					},
					"start_date": map[string]any{
						"type":        "string",
						"format":      "date-time",
						"description": "Planned start date",
					},
					"deadline": map[string]any{
						"type":        "string",
						"format":      "date-time",
						"description": "Deadline, must be after start_date",
					},
					"planned_hours": map[string]any{
						"type":        "number",
						"description": "Planned effort in hours, added to each parent's planned total",
					},
					"priority": map[string]any{
						"type":        "integer",
						"description": "Priority rank, higher is more urgent",
					},
					"status": map[string]any{
						"type":        "string",
						"description": "Initial status (defaults to planned)",
						"enum":        projectStatuses,
					},
					"parent_project_ids": map[string]any{
						"type":        "array",
						"description": "Parent project IDs; a project may have several parents",
						"items":       map[string]any{"type": "string"},
					},
					"label_ids": map[string]any{
						"type":        "array",
						"description": "Label IDs to attach",
						"items":       map[string]any{"type": "string"},
					},
					"assignee_ids": map[string]any{
						"type":        "array",
						"description": "User IDs to assign",
						"items":       map[string]any{"type": "string"},
					},
				},
				"required": []string{"code", "title"},
			},
		},
		{
			Name:        "update_project",
			Description: "Update a project; omitted fields are left unchanged, list fields replace the existing set",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":        "string",
						"description": "Project ID",
					},
					"title": map[string]any{
						"type": "string",
					},
					"start_date": map[string]any{
						"type":   "string",
						"format": "date-time",
					},
					"deadline": map[string]any{
						"type":   "string",
						"format": "date-time",
					},
					"planned_hours": map[string]any{
						"type":        "number",
						"description": "New planned hours; the difference is propagated to direct parents",
					},
					"priority": map[string]any{
						"type": "integer",
					},
					"status": map[string]any{
						"type":        "string",
						"description": "New status; completed requires all children and tasks settled, inactive cascades to tasks",
						"enum":        projectStatuses,
					},
					"parent_project_ids": map[string]any{
						"type":        "array",
						"description": "Complete desired set of parent project IDs; edges are added and removed to match",
						"items":       map[string]any{"type": "string"},
					},
					"label_ids": map[string]any{
						"type":        "array",
						"description": "Complete desired set of label IDs",
						"items":       map[string]any{"type": "string"},
					},
					"assignee_ids": map[string]any{
						"type":        "array",
						"description": "Complete desired set of assignee user IDs",
						"items":       map[string]any{"type": "string"},
					},
				},
				"required": []string{"id"},
			},
		},
		{
			Name:        "delete_project",
			Description: "Soft-delete a project; rejected while the project still has child projects",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":        "string",
						"description": "Project ID",
					},
				},
				"required": []string{"id"},
			},
		},
		{
			Name:        "get_project",
			Description: "Get details for a project",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":        "string",
						"description": "Project ID",
					},
				},
				"required": []string{"id"},
			},
		},
		{
			Name:        "get_project_hierarchy",
			Description: "Get the hierarchy around a project: descendants as a tree with nested tasks, ancestors as references; projects reachable more than once are expanded only the first time",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":        "string",
						"description": "Root project ID",
					},
				},
				"required": []string{"id"},
			},
		},

		// Tasks
		{
			Name:        "create_task",
			Description: "Create a task inside a project, optionally under a parent task of the same project",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":        "string",
						"description": "Unique task identifier (optional, generated if not provided)",
					},
					"code": map[string]any{
						"type":        "string",
						"description": "Human-readable task code, unique among live tasks",
					},
					"title": map[string]any{
						"type": "string",
					},
					"project_id": map[string]any{
						"type":        "string",
						"description": "Owning project ID",
					},
					"parent_task_id": map[string]any{
						"type":        "string",
						"description": "Parent task ID; must belong to the same project",
					},
					"planned_hours": map[string]any{
						"type": "number",
					},
					"status": map[string]any{
						"type":        "string",
						"description": "Initial status (defaults to todo)",
						"enum":        taskStatuses,
					},
					"assignee_ids": map[string]any{
						"type":        "array",
						"description": "User IDs to assign",
						"items":       map[string]any{"type": "string"},
					},
				},
				"required": []string{"code", "title", "project_id"},
			},
		},
		{
			Name:        "update_task",
			Description: "Update a task; omitted fields are left unchanged; re-parenting under a descendant is rejected",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":        "string",
						"description": "Task ID",
					},
					"title": map[string]any{
						"type": "string",
					},
					"planned_hours": map[string]any{
						"type": "number",
					},
					"status": map[string]any{
						"type": "string",
						"enum": taskStatuses,
					},
					"parent_task_id": map[string]any{
						"type":        "string",
						"description": "New parent task ID within the same project",
					},
					"clear_parent": map[string]any{
						"type":        "boolean",
						"description": "Detach the task from its parent",
					},
					"assignee_ids": map[string]any{
						"type":        "array",
						"description": "Complete desired set of assignee user IDs",
						"items":       map[string]any{"type": "string"},
					},
				},
				"required": []string{"id"},
			},
		},
		{
			Name:        "get_task",
			Description: "Get a task with its assignees",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":        "string",
						"description": "Task ID",
					},
				},
				"required": []string{"id"},
			},
		},
		{
			Name:        "list_tasks",
			Description: "List all live tasks of a project",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"project_id": map[string]any{
						"type":        "string",
						"description": "Project ID",
					},
				},
				"required": []string{"project_id"},
			},
		},

		// Dependencies
		{
			Name:        "add_dependency",
			Description: "Add a blocking edge between two tasks; self references, duplicates, and edges that would close a cycle are rejected",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"blocking_task_id": map[string]any{
						"type":        "string",
						"description": "Task that must finish first",
					},
					"blocked_task_id": map[string]any{
						"type":        "string",
						"description": "Task waiting on the blocking task",
					},
				},
				"required": []string{"blocking_task_id", "blocked_task_id"},
			},
		},
		{
			Name:        "replace_dependencies",
			Description: "Replace the set of tasks a given task blocks; an empty validated set leaves existing edges untouched",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"task_id": map[string]any{
						"type":        "string",
						"description": "Blocking task ID whose outgoing edges are replaced",
					},
					"blocked_task_ids": map[string]any{
						"type":        "array",
						"description": "Task IDs the task should block",
						"items":       map[string]any{"type": "string"},
					},
				},
				"required": []string{"task_id"},
			},
		},
		{
			Name:        "remove_dependency",
			Description: "Remove a dependency edge by its id or by its blocking/blocked pair",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":        "string",
						"description": "Dependency ID (takes precedence over the pair)",
					},
					"blocking_task_id": map[string]any{
						"type": "string",
					},
					"blocked_task_id": map[string]any{
						"type": "string",
					},
				},
			},
		},
		{
			Name:        "get_dependencies",
			Description: "Get the tasks blocking a task and the tasks it blocks",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"task_id": map[string]any{
						"type":        "string",
						"description": "Task ID",
					},
				},
				"required": []string{"task_id"},
			},
		},

		// Activities
		{
			Name:        "log_activity",
			Description: "Log a work session on a task; its hours roll up through parent tasks and the project ancestry",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"task_id": map[string]any{
						"type":        "string",
						"description": "Task the work was done on",
					},
					"user_id": map[string]any{
						"type":        "string",
						"description": "User who did the work; must be assigned to the task",
					},
					"machine_id": map[string]any{
						"type":        "string",
						"description": "Machine identifier for automated work (either user_id or machine_id is required)",
					},
					"started_at": map[string]any{
						"type":   "string",
						"format": "date-time",
					},
					"ended_at": map[string]any{
						"type":        "string",
						"format":      "date-time",
						"description": "Must be after started_at",
					},
					"is_last": map[string]any{
						"type":        "boolean",
						"description": "Marks this as the final session; moves the task to awaiting_approval",
					},
				},
				"required": []string{"task_id", "started_at", "ended_at"},
			},
		},
		{
			Name:        "update_activity",
			Description: "Update a logged work session; changed hours are re-propagated through the ancestry",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":        "string",
						"description": "Activity ID",
					},
					"started_at": map[string]any{
						"type":   "string",
						"format": "date-time",
					},
					"ended_at": map[string]any{
						"type":   "string",
						"format": "date-time",
					},
					"is_last": map[string]any{
						"type": "boolean",
					},
				},
				"required": []string{"id"},
			},
		},
		{
			Name:        "delete_activity",
			Description: "Soft-delete a work session and withdraw its hours from the ancestry",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":        "string",
						"description": "Activity ID",
					},
				},
				"required": []string{"id"},
			},
		},
		{
			Name:        "list_activities",
			Description: "List the work sessions logged against a task",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"task_id": map[string]any{
						"type":        "string",
						"description": "Task ID",
					},
				},
				"required": []string{"task_id"},
			},
		},

		// Search
		{
			Name:        "search_items",
			Description: "Full-text search over project and task codes and titles",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "Search query text",
					},
					"kinds": map[string]any{
						"type":        "array",
						"description": "Restrict results to item kinds",
						"items": map[string]any{
							"type": "string",
							"enum": []string{"project", "task"},
						},
					},
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum number of results",
					},
					"offset": map[string]any{
						"type":        "integer",
						"description": "Offset for pagination",
					},
				},
				"required": []string{"query"},
			},
		},
	}
}

// registerTools adds every catalog tool to the server, routing calls through
// the handler and rendering results as JSON text content.
func registerTools(server *sdkmcp.Server, h *Handler) {
	for _, def := range buildToolCatalog() {
		server.AddTool(&sdkmcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		}, toolHandler(h, def.Name))
	}
}

func toolHandler(h *Handler, method string) func(context.Context, *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
		start := time.Now()
		result, err := h.Handle(ctx, getActorID(ctx), method, req.Params.Arguments)
		metrics.ToolDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.ToolCalls.WithLabelValues(method, "error").Inc()
			return nil, err
		}
		metrics.ToolCalls.WithLabelValues(method, "ok").Inc()
		data, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("encoding %s result: %w", method, err)
		}
		return &sdkmcp.CallToolResult{
			Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
		}, nil
	}
}
