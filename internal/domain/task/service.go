package task

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
	"github.com/dstanek/workgraph/internal/domain/user"
	"github.com/dstanek/workgraph/internal/metrics"
	"github.com/dstanek/workgraph/internal/repository"
)

// Service handles task operations.
type Service struct {
	tasks    Repository
	projects ProjectStore
	users    UserStore
	audits   AuditStore
	logger   *slog.Logger
}

// NewService creates a new task service.
func NewService(tasks Repository, projects ProjectStore, users UserStore, audits AuditStore, logger *slog.Logger) *Service {
	return &Service{tasks: tasks, projects: projects, users: users, audits: audits, logger: logger}
}

// CreateRequest defines task creation inputs.
type CreateRequest struct {
	ID           string
	Code         string
	Title        string
	ProjectID    string
	ParentTaskID *string
	PlannedHours *float64
	Status       Status
	AssigneeIDs  []string
}

// UpdateRequest defines task update inputs. Nil fields are left unchanged;
// ClearParent detaches the task from its parent.
type UpdateRequest struct {
	ID           string
	Title        *string
	PlannedHours *float64
	Status       *Status
	ParentTaskID *string
	ClearParent  bool
	AssigneeIDs  []string
}

// Create validates and persists a new task.
func (s *Service) Create(ctx context.Context, actorID string, req CreateRequest) (*Task, error) {
	if err := s.resolveActor(ctx, actorID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Code) == "" || strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.ProjectID) == "" {
		return nil, ErrInvalidInput
	}

	status := req.Status
	if status == "" {
		status = StatusTodo
	}
	if !status.Valid() {
		return nil, ErrInvalidInput
	}

	exists, err := s.projects.Exists(ctx, req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("checking project: %w", err)
	}
	if !exists {
		return nil, ErrProjectNotFound
	}

	if _, err := s.tasks.GetByCode(ctx, req.Code); err == nil {
		return nil, ErrCodeTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("checking task code: %w", err)
	}

	if req.ParentTaskID != nil {
		parent, err := s.tasks.Get(ctx, *req.ParentTaskID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, fmt.Errorf("loading parent task: %w", err)
		}
		if parent.ProjectID != req.ProjectID {
			return nil, ErrParentOutsideProject
		}
	}

	id := req.ID
	if strings.TrimSpace(id) == "" {
		id = uuid.NewString()
	}

	now := time.Now()
	t := &Task{
		ID:           id,
		Code:         req.Code,
		Title:        req.Title,
		ProjectID:    req.ProjectID,
		ParentTaskID: req.ParentTaskID,
		PlannedHours: req.PlannedHours,
		Status:       status,
		CreatedByID:  actorID,
		UpdatedByID:  actorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	if req.AssigneeIDs != nil {
		if err := s.tasks.SyncAssignees(ctx, t.ID, req.AssigneeIDs); err != nil {
			return nil, fmt.Errorf("syncing assignees: %w", err)
		}
	}

	s.record(ctx, actorID, audit.ActionTaskCreated, t.ID, fmt.Sprintf("created task %s", t.Code))
	return t, nil
}

// Update applies a partial update to a task. Reparenting is validated
// against the project's task tree so a task can never become its own
// ancestor.
func (s *Service) Update(ctx context.Context, actorID string, req UpdateRequest) (*Task, error) {
	if err := s.resolveActor(ctx, actorID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ID) == "" {
		return nil, ErrInvalidInput
	}

	current, err := s.tasks.Get(ctx, req.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("loading task: %w", err)
	}

	updated := *current
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, ErrInvalidInput
		}
		updated.Title = *req.Title
	}
	if req.PlannedHours != nil {
		updated.PlannedHours = req.PlannedHours
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, ErrInvalidInput
		}
		updated.Status = *req.Status
	}

	if req.ClearParent {
		updated.ParentTaskID = nil
	} else if req.ParentTaskID != nil {
		if err := s.checkParent(ctx, current, *req.ParentTaskID); err != nil {
			return nil, err
		}
		updated.ParentTaskID = req.ParentTaskID
	}

	updated.UpdatedByID = actorID
	updated.UpdatedAt = time.Now()

	if err := s.tasks.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("updating task: %w", err)
	}

	if req.AssigneeIDs != nil {
		if err := s.tasks.SyncAssignees(ctx, updated.ID, req.AssigneeIDs); err != nil {
			return nil, fmt.Errorf("syncing assignees: %w", err)
		}
	}

	s.record(ctx, actorID, audit.ActionTaskUpdated, updated.ID, fmt.Sprintf("updated task %s", updated.Code))
	return &updated, nil
}

// Get returns a task by ID.
func (s *Service) Get(ctx context.Context, id string) (*Task, error) {
	t, err := s.tasks.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("getting task: %w", err)
	}
	return t, nil
}

// List returns all live tasks of a project.
func (s *Service) List(ctx context.Context, projectID string) ([]Task, error) {
	return s.tasks.ListByProject(ctx, projectID)
}

// Assignees returns the user ids assigned to a task.
func (s *Service) Assignees(ctx context.Context, taskID string) ([]string, error) {
	return s.tasks.ListAssignees(ctx, taskID)
}

// checkParent validates a reparenting candidate: the parent must exist, live
// in the same project, and must not be a descendant of the task.
func (s *Service) checkParent(ctx context.Context, t *Task, parentID string) error {
	parent, err := s.tasks.Get(ctx, parentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrParentNotFound
		}
		return fmt.Errorf("loading parent task: %w", err)
	}
	if parent.ProjectID != t.ProjectID {
		return ErrParentOutsideProject
	}

	siblings, err := s.tasks.ListByProject(ctx, t.ProjectID)
	if err != nil {
		return fmt.Errorf("loading project tasks: %w", err)
	}
	edges := make([]graph.Edge, 0, len(siblings))
	for _, sib := range siblings {
		if sib.ParentTaskID != nil {
			edges = append(edges, graph.Edge{From: *sib.ParentTaskID, To: sib.ID})
		}
	}
	if graph.WouldCreateCycle(edges, parentID, t.ID) {
		metrics.CycleRejections.WithLabelValues("task_tree").Inc()
		return ErrCycle
	}
	return nil
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
