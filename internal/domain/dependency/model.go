package dependency

import (
	"time"

	"github.com/dstanek/workgraph/internal/domain/task"
)

// Dependency is a directed edge meaning the blocking task must complete
// before the blocked task may proceed. The edge set forms its own DAG,
// independent of project/task containment: edges may span projects.
type Dependency struct {
	ID             string    `json:"id"`
	BlockingTaskID string    `json:"blocking_task_id"`
	BlockedTaskID  string    `json:"blocked_task_id"`
	CreatedByID    string    `json:"created_by_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// View is a task's full dependency picture: the tasks blocking it and the
// tasks it blocks.
type View struct {
	Task      task.Ref   `json:"task"`
	BlockedBy []task.Ref `json:"blocked_by,omitempty"`
	Blocks    []task.Ref `json:"blocks,omitempty"`
}
