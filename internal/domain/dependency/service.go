package dependency

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dstanek/workgraph/internal/domain/audit"
	"github.com/dstanek/workgraph/internal/domain/graph"
	"github.com/dstanek/workgraph/internal/domain/task"
	"github.com/dstanek/workgraph/internal/domain/user"
	"github.com/dstanek/workgraph/internal/metrics"
	"github.com/dstanek/workgraph/internal/repository"
)

// Service is the task dependency manager. Every edge insert runs through the
// cycle detector first; the blocking graph is kept acyclic at all times.
type Service struct {
	deps   Repository
	tasks  TaskStore
	users  UserStore
	audits AuditStore
	logger *slog.Logger
}

// NewService creates a new dependency service.
func NewService(deps Repository, tasks TaskStore, users UserStore, audits AuditStore, logger *slog.Logger) *Service {
	return &Service{deps: deps, tasks: tasks, users: users, audits: audits, logger: logger}
}

// Add creates a single blocking->blocked edge after rejecting self-blocking,
// duplicate pairs, and cycles.
func (s *Service) Add(ctx context.Context, actorID, blockingTaskID, blockedTaskID string) (*Dependency, error) {
	if err := s.resolveActor(ctx, actorID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(blockingTaskID) == "" || strings.TrimSpace(blockedTaskID) == "" {
		return nil, ErrInvalidInput
	}
	if blockingTaskID == blockedTaskID {
		return nil, ErrSelfDependency
	}

	for _, id := range []string{blockingTaskID, blockedTaskID} {
		if _, err := s.tasks.Get(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrTaskNotFound
			}
			return nil, fmt.Errorf("loading task: %w", err)
		}
	}

	if _, err := s.deps.GetByPair(ctx, blockingTaskID, blockedTaskID); err == nil {
		return nil, ErrDuplicate
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("checking existing edge: %w", err)
	}

	edges, err := s.edgeSet(ctx)
	if err != nil {
		return nil, err
	}
	if graph.WouldCreateCycle(edges, blockingTaskID, blockedTaskID) {
		metrics.CycleRejections.WithLabelValues("dependency").Inc()
		return nil, ErrCycle
	}

	dep := &Dependency{
		ID:             uuid.NewString(),
		BlockingTaskID: blockingTaskID,
		BlockedTaskID:  blockedTaskID,
		CreatedByID:    actorID,
		CreatedAt:      time.Now(),
	}
	if err := s.deps.Create(ctx, dep); err != nil {
		return nil, fmt.Errorf("creating dependency: %w", err)
	}

	s.record(ctx, actorID, audit.ActionDependencyAdded, dep.ID,
		fmt.Sprintf("task %s blocks %s", blockingTaskID, blockedTaskID))
	return dep, nil
}

// Replace swaps the complete outgoing edge set of a task: every proposed
// blocked id is validated individually (existence, self-reference, cycle
// over the cumulative edge set), then the old edges are deleted and the new
// ones inserted in one atomic store call. An empty validated set leaves the
// existing edges untouched.
func (s *Service) Replace(ctx context.Context, actorID, taskID string, blockedTaskIDs []string) ([]Dependency, error) {
	if err := s.resolveActor(ctx, actorID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(taskID) == "" {
		return nil, ErrInvalidInput
	}
	if _, err := s.tasks.Get(ctx, taskID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("loading task: %w", err)
	}

	// The cycle check runs against the edge set as it will exist after the
	// replace: current edges minus the task's outgoing ones, plus each
	// accepted candidate in turn.
	all, err := s.deps.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading dependencies: %w", err)
	}
	edges := make([]graph.Edge, 0, len(all))
	for _, d := range all {
		if d.BlockingTaskID == taskID {
			continue
		}
		edges = append(edges, graph.Edge{From: d.BlockingTaskID, To: d.BlockedTaskID})
	}

	seen := map[string]bool{}
	now := time.Now()
	var deps []Dependency
	for _, blockedID := range blockedTaskIDs {
		if blockedID == "" || seen[blockedID] {
			continue
		}
		seen[blockedID] = true

		if blockedID == taskID {
			return nil, ErrSelfDependency
		}
		if _, err := s.tasks.Get(ctx, blockedID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrTaskNotFound
			}
			return nil, fmt.Errorf("loading blocked task: %w", err)
		}
		if graph.WouldCreateCycle(edges, taskID, blockedID) {
			metrics.CycleRejections.WithLabelValues("dependency").Inc()
			return nil, ErrCycle
		}
		edges = append(edges, graph.Edge{From: taskID, To: blockedID})
		deps = append(deps, Dependency{
			ID:             uuid.NewString(),
			BlockingTaskID: taskID,
			BlockedTaskID:  blockedID,
			CreatedByID:    actorID,
			CreatedAt:      now,
		})
	}

	if len(deps) == 0 {
		return nil, nil
	}

	if err := s.deps.ReplaceOutgoing(ctx, taskID, deps); err != nil {
		return nil, fmt.Errorf("replacing dependencies: %w", err)
	}

	s.record(ctx, actorID, audit.ActionDependenciesSynced, taskID,
		fmt.Sprintf("task %s now blocks %d tasks", taskID, len(deps)))
	return deps, nil
}

// Remove deletes a dependency by id.
func (s *Service) Remove(ctx context.Context, actorID, id string) error {
	if err := s.resolveActor(ctx, actorID); err != nil {
		return err
	}

	dep, err := s.deps.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrDependencyNotFound
		}
		return fmt.Errorf("loading dependency: %w", err)
	}

	if err := s.deps.SoftDelete(ctx, dep.ID, actorID); err != nil {
		return fmt.Errorf("deleting dependency: %w", err)
	}

	s.record(ctx, actorID, audit.ActionDependencyRemoved, dep.ID,
		fmt.Sprintf("task %s no longer blocks %s", dep.BlockingTaskID, dep.BlockedTaskID))
	return nil
}

// RemoveByPair deletes the edge between an ordered task pair.
func (s *Service) RemoveByPair(ctx context.Context, actorID, blockingTaskID, blockedTaskID string) error {
	if err := s.resolveActor(ctx, actorID); err != nil {
		return err
	}

	dep, err := s.deps.GetByPair(ctx, blockingTaskID, blockedTaskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrDependencyNotFound
		}
		return fmt.Errorf("loading dependency: %w", err)
	}

	if err := s.deps.SoftDelete(ctx, dep.ID, actorID); err != nil {
		return fmt.Errorf("deleting dependency: %w", err)
	}

	s.record(ctx, actorID, audit.ActionDependencyRemoved, dep.ID,
		fmt.Sprintf("task %s no longer blocks %s", blockingTaskID, blockedTaskID))
	return nil
}

// Get returns a task's full incoming and outgoing dependency view.
func (s *Service) Get(ctx context.Context, taskID string) (*View, error) {
	t, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("loading task: %w", err)
	}

	incoming, err := s.deps.ListBlocking(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("loading blocking edges: %w", err)
	}
	outgoing, err := s.deps.ListBlocked(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("loading blocked edges: %w", err)
	}

	view := &View{Task: task.RefOf(t)}
	for _, d := range incoming {
		ref, err := s.taskRef(ctx, d.BlockingTaskID)
		if err != nil {
			return nil, err
		}
		if ref != nil {
			view.BlockedBy = append(view.BlockedBy, *ref)
		}
	}
	for _, d := range outgoing {
		ref, err := s.taskRef(ctx, d.BlockedTaskID)
		if err != nil {
			return nil, err
		}
		if ref != nil {
			view.Blocks = append(view.Blocks, *ref)
		}
	}
	return view, nil
}

func (s *Service) taskRef(ctx context.Context, id string) (*task.Ref, error) {
	t, err := s.tasks.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading task %s: %w", id, err)
	}
	ref := task.RefOf(t)
	return &ref, nil
}

func (s *Service) edgeSet(ctx context.Context) ([]graph.Edge, error) {
	all, err := s.deps.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading dependencies: %w", err)
	}
	edges := make([]graph.Edge, 0, len(all))
	for _, d := range all {
		edges = append(edges, graph.Edge{From: d.BlockingTaskID, To: d.BlockedTaskID})
	}
	return edges, nil
}

func (s *Service) resolveActor(ctx context.Context, actorID string) error {
	if strings.TrimSpace(actorID) == "" {
		return user.ErrUnauthorized
	}
	if _, err := s.users.Get(ctx, actorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return user.ErrUnauthorized
		}
		return fmt.Errorf("resolving actor: %w", err)
	}
	return nil
}

func (s *Service) record(ctx context.Context, actorID string, action audit.Action, entityID, summary string) {
	if s.audits == nil {
		return
	}
	_ = s.audits.Record(ctx, &audit.Entry{
		ActorID:  actorID,
		Action:   action,
		EntityID: entityID,
		Summary:  summary,
	})
}
