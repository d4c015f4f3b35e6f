package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `workgraph tracks work as Projects → Tasks → Activities, with consistency
rules enforced on every write.

Core concepts:
- Project: a unit of work with planned/actual hours. Projects form a DAG: a
  project may have several parents, but never a cycle.
- Task: belongs to exactly one project; tasks nest in a tree within that
  project. Tasks can also block each other through dependency edges, which
  again must stay acyclic.
- Activity: a logged work session on a task. Its hours roll up through the
  task's parent chain and every distinct ancestor project, each counted once.
- Soft delete: deleted items disappear from reads and free their code for
  reuse, but history is kept.

Rules of engagement:
1) Orient with get_project_hierarchy or search_items before mutating.
2) Create structure top-down: create_project, then create_task, then wire
   add_dependency / replace_dependencies.
3) Log work with log_activity; mark the final session is_last=true to move
   the task to awaiting_approval.
4) Expect rejections: cycles (project parents, task parents, dependencies),
   duplicate edges, self references, completing a project with unsettled
   children, and deleting a project that still has child projects.

Docs:
- workgraph://docs/concepts (glossary + invariants)
- workgraph://docs/rollup (how hours propagate)
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "workgraph://docs/concepts",
		Name:        "docs_concepts",
		Title:       "workgraph concepts",
		Description: "Glossary of projects, tasks, dependencies, and activities plus the invariants the server enforces.",
		Content: `# workgraph: Concepts

## Entities

- **Project** — has a code (unique among live projects), title, planned and
  actual hours, priority, and a status (planned, active, completed,
  inactive, awaiting_approval). Projects link to parent projects; the
  relation graph is a DAG.
- **Task** — belongs to one project and optionally to a parent task of the
  same project. Statuses: todo, in_progress, done, inactive,
  awaiting_approval. A task is *finished* when done or inactive.
- **Dependency** — a directed blocking edge between two tasks. The
  dependency graph is global and must stay acyclic.
- **Activity** — a work session on a task with a start, an end, and the
  derived hours. Attributed to either a user (who must be assigned to the
  task) or a machine.

## Invariants

- No cycles: adding a project parent, re-parenting a task, or adding a
  dependency edge is rejected if it would close a cycle.
- A task's parent must belong to the same project.
- A project can only be completed when every child project is completed or
  inactive and every task is finished.
- Marking a project inactive cascades to its unfinished tasks.
- Codes are unique among live items only; deleting an item frees its code.
`,
	},
	{
		URI:         "workgraph://docs/rollup",
		Name:        "docs_rollup",
		Title:       "workgraph hour rollup",
		Description: "How activity hours propagate through task chains and the project DAG.",
		Content: `# workgraph: Hour Rollup

When an activity is logged, updated, or deleted, the signed hour delta
propagates:

1. Up the task's parent chain, adding the delta to each task's actual hours.
2. From the root task into its project, then to every ancestor project.

Ancestor projects are collected as a set: in a diamond-shaped graph where
two parents share a grandparent, the grandparent receives the delta once,
not twice. Actual hours never go below zero; a withdrawal larger than the
current total floors at zero.

Planned hours behave differently: they only move between a project and its
direct parents when the project is created, re-parented, or its planned
hours are edited.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
