package activity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dstanek/workgraph/internal/domain/audit"
	"github.com/dstanek/workgraph/internal/domain/task"
	"github.com/dstanek/workgraph/internal/domain/user"
	"github.com/dstanek/workgraph/internal/repository"
)

// Service is the activity manager.
type Service struct {
	activities Repository
	tasks      TaskStore
	users      UserStore
	audits     AuditStore
	propagator Propagator
	logger     *slog.Logger
}

// NewService creates a new activity service.
func NewService(activities Repository, tasks TaskStore, users UserStore, audits AuditStore, propagator Propagator, logger *slog.Logger) *Service {
	return &Service{
		activities: activities,
		tasks:      tasks,
		users:      users,
		audits:     audits,
		propagator: propagator,
		logger:     logger,
	}
}

// CreateRequest carries the fields for logging a work session.
type CreateRequest struct {
	TaskID    string
	UserID    *string
	MachineID *string
	StartedAt time.Time
	EndedAt   time.Time
	IsLast    bool
}

// UpdateRequest carries a partial activity edit. Nil fields are untouched.
type UpdateRequest struct {
	ID        string
	StartedAt *time.Time
	EndedAt   *time.Time
	IsLast    *bool
}

// Create logs a work session and propagates its hours up through the task's
// project ancestry. A session marked as the last one moves the task to
// awaiting approval.
func (s *Service) Create(ctx context.Context, actorID string, req CreateRequest) (*Activity, error) {
	if err := s.resolveActor(ctx, actorID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.TaskID) == "" {
		return nil, ErrInvalidInput
	}
	if req.UserID == nil && req.MachineID == nil {
		return nil, ErrInvalidInput
	}
	if req.StartedAt.IsZero() || req.EndedAt.IsZero() || !req.EndedAt.After(req.StartedAt) {
		return nil, ErrEndBeforeStart
	}

	t, err := s.tasks.Get(ctx, req.TaskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("loading task: %w", err)
	}

	if req.UserID != nil {
		if err := s.checkAssigned(ctx, t.ID, *req.UserID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	a := &Activity{
		ID:          uuid.NewString(),
		TaskID:      t.ID,
		UserID:      req.UserID,
		MachineID:   req.MachineID,
		StartedAt:   req.StartedAt,
		EndedAt:     req.EndedAt,
		TotalHours:  req.EndedAt.Sub(req.StartedAt).Hours(),
		IsLast:      req.IsLast,
		CreatedByID: actorID,
		UpdatedByID: actorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.activities.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("creating activity: %w", err)
	}

	if err := s.propagator.PropagateTaskDelta(ctx, a.TaskID, a.TotalHours); err != nil {
		return nil, fmt.Errorf("propagating hours: %w", err)
	}

	if a.IsLast {
		if err := s.tasks.UpdateStatus(ctx, t.ID, task.StatusAwaitingApproval); err != nil {
			return nil, fmt.Errorf("marking task awaiting approval: %w", err)
		}
	}

	s.record(ctx, actorID, audit.ActionActivityLogged, a.ID,
		fmt.Sprintf("logged %.2fh on task %s", a.TotalHours, a.TaskID))
	return a, nil
}

// Update edits a session's interval and re-propagates the hour difference.
func (s *Service) Update(ctx context.Context, actorID string, req UpdateRequest) (*Activity, error) {
	if err := s.resolveActor(ctx, actorID); err != nil {
		return nil, err
	}

	a, err := s.activities.Get(ctx, req.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("loading activity: %w", err)
	}

	oldHours := a.TotalHours
	if req.StartedAt != nil {
		a.StartedAt = *req.StartedAt
	}
	if req.EndedAt != nil {
		a.EndedAt = *req.EndedAt
	}
	if !a.EndedAt.After(a.StartedAt) {
		return nil, ErrEndBeforeStart
	}
	a.TotalHours = a.EndedAt.Sub(a.StartedAt).Hours()

	markLast := false
	if req.IsLast != nil {
		markLast = *req.IsLast && !a.IsLast
		a.IsLast = *req.IsLast
	}
	a.UpdatedByID = actorID
	a.UpdatedAt = time.Now()

	if err := s.activities.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("updating activity: %w", err)
	}

	if delta := a.TotalHours - oldHours; delta != 0 {
		if err := s.propagator.PropagateTaskDelta(ctx, a.TaskID, delta); err != nil {
			return nil, fmt.Errorf("propagating hours: %w", err)
		}
	}

	if markLast {
		if err := s.tasks.UpdateStatus(ctx, a.TaskID, task.StatusAwaitingApproval); err != nil {
			return nil, fmt.Errorf("marking task awaiting approval: %w", err)
		}
	}

	s.record(ctx, actorID, audit.ActionActivityUpdated, a.ID,
		fmt.Sprintf("activity on task %s now %.2fh", a.TaskID, a.TotalHours))
	return a, nil
}

// Delete removes a session and withdraws its hours from the rollup.
func (s *Service) Delete(ctx context.Context, actorID, id string) error {
	if err := s.resolveActor(ctx, actorID); err != nil {
		return err
	}

	a, err := s.activities.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrActivityNotFound
		}
		return fmt.Errorf("loading activity: %w", err)
	}

	if err := s.propagator.PropagateTaskDelta(ctx, a.TaskID, -a.TotalHours); err != nil {
		return fmt.Errorf("propagating hours: %w", err)
	}

	if err := s.activities.SoftDelete(ctx, a.ID, actorID); err != nil {
		return fmt.Errorf("deleting activity: %w", err)
	}

	s.record(ctx, actorID, audit.ActionActivityDeleted, a.ID,
		fmt.Sprintf("removed %.2fh from task %s", a.TotalHours, a.TaskID))
	return nil
}

// Get returns a single activity.
func (s *Service) Get(ctx context.Context, id string) (*Activity, error) {
	a, err := s.activities.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("loading activity: %w", err)
	}
	return a, nil
}

// ListByTask returns a task's logged sessions.
func (s *Service) ListByTask(ctx context.Context, taskID string) ([]Activity, error) {
	if _, err := s.tasks.Get(ctx, taskID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("loading task: %w", err)
	}
	list, err := s.activities.ListByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}
	return list, nil
}

func (s *Service) checkAssigned(ctx context.Context, taskID, userID string) error {
	assignees, err := s.tasks.ListAssignees(ctx, taskID)
	if err != nil {
		return fmt.Errorf("listing assignees: %w", err)
	}
	for _, id := range assignees {
		if id == userID {
			return nil
		}
	}
	return ErrNotAssigned
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
