// Package rollup propagates signed actual-hour deltas from a work item up
// through every ancestor in its containing hierarchy: the task parent chain
// first, then the multi-parent project graph.
package rollup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dstanek/workgraph/internal/domain/project"
	"github.com/dstanek/workgraph/internal/domain/task"
	"github.com/dstanek/workgraph/internal/metrics"
	"github.com/dstanek/workgraph/internal/repository"
)

// TaskStore is the task access the propagator needs.
type TaskStore interface {
	Get(ctx context.Context, id string) (*task.Task, error)
	UpdateActualHours(ctx context.Context, id string, hours float64) error
}

// ProjectStore is the project access the propagator needs.
type ProjectStore interface {
	Get(ctx context.Context, id string) (*project.Project, error)
	UpdateActualHours(ctx context.Context, id string, hours float64) error
	ListParents(ctx context.Context, childID string) ([]project.Relation, error)
}

// Propagator applies hour deltas along ancestor chains. Every write is
// floored at zero: actual hours never go negative, no matter how large a
// reversal is applied. The walk is an explicit worklist with a visited set,
// so each ancestor receives the delta exactly once even when multiple paths
// reconverge on it, and the walk terminates on any finite graph.
type Propagator struct {
	tasks    TaskStore
	projects ProjectStore
	logger   *slog.Logger
}

// NewPropagator creates a new hour rollup propagator.
func NewPropagator(tasks TaskStore, projects ProjectStore, logger *slog.Logger) *Propagator {
	return &Propagator{tasks: tasks, projects: projects, logger: logger}
}

// PropagateTaskDelta applies delta to the task and every ancestor above it.
// A missing task is a no-op: callers validate existence on their own paths,
// and a reversal racing a deletion must not fail the whole operation.
func (p *Propagator) PropagateTaskDelta(ctx context.Context, taskID string, delta float64) error {
	if delta == 0 {
		return nil
	}

	updated := 0
	id := taskID
	for {
		t, err := p.tasks.Get(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				if p.logger != nil {
					p.logger.Warn("rollup target task missing, skipping", "task_id", id)
				}
				return nil
			}
			return fmt.Errorf("loading task %s: %w", id, err)
		}

		if err := p.tasks.UpdateActualHours(ctx, t.ID, floored(t.ActualHours, delta)); err != nil {
			return fmt.Errorf("updating task hours %s: %w", t.ID, err)
		}
		updated++

		if t.ParentTaskID == nil {
			projects, err := p.applyProjectDelta(ctx, t.ProjectID, delta)
			if err != nil {
				return err
			}
			metrics.RollupTargets.Observe(float64(updated + projects))
			return nil
		}
		id = *t.ParentTaskID
	}
}

// PropagateProjectDelta applies delta to the project and walks every parent
// edge upward. Each distinct ancestor is adjusted once; reconverging paths
// in a diamond-shaped hierarchy do not double-count.
func (p *Propagator) PropagateProjectDelta(ctx context.Context, projectID string, delta float64) error {
	if delta == 0 {
		return nil
	}
	updated, err := p.applyProjectDelta(ctx, projectID, delta)
	if err != nil {
		return err
	}
	metrics.RollupTargets.Observe(float64(updated))
	return nil
}

func (p *Propagator) applyProjectDelta(ctx context.Context, projectID string, delta float64) (int, error) {
	updated := 0
	worklist := []string{projectID}
	visited := map[string]bool{projectID: true}
	for len(worklist) > 0 {
		id := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		proj, err := p.projects.Get(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return updated, fmt.Errorf("loading project %s: %w", id, err)
		}

		if err := p.projects.UpdateActualHours(ctx, proj.ID, floored(proj.ActualHours, delta)); err != nil {
			return updated, fmt.Errorf("updating project hours %s: %w", proj.ID, err)
		}
		updated++

		parents, err := p.projects.ListParents(ctx, proj.ID)
		if err != nil {
			return updated, fmt.Errorf("loading parents of %s: %w", proj.ID, err)
		}
		for _, rel := range parents {
			if visited[rel.ParentID] {
				continue
			}
			visited[rel.ParentID] = true
			worklist = append(worklist, rel.ParentID)
		}
	}
	return updated, nil
}

func floored(current *float64, delta float64) float64 {
	base := 0.0
	if current != nil {
		base = *current
	}
	next := base + delta
	if next < 0 {
		return 0
	}
	return next
}
