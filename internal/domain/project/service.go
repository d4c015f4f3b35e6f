package project

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

// Service is the project hierarchy manager. It owns every mutation of the
// ProjectRelation edge set: relation rows are only ever written through its
// diff-sync, after the cycle check has passed.
type Service struct {
	projects Repository
	tasks    TaskStore
	users    UserStore
	audits   AuditStore
	logger   *slog.Logger
}

// NewService creates a new project service.
func NewService(projects Repository, tasks TaskStore, users UserStore, audits AuditStore, logger *slog.Logger) *Service {
	return &Service{projects: projects, tasks: tasks, users: users, audits: audits, logger: logger}
}

// CreateRequest defines project creation inputs.
type CreateRequest struct {
	ID               string
	Code             string
	Title            string
	StartDate        *time.Time
	Deadline         *time.Time
	PlannedHours     *float64
	Priority         int
	Status           Status
	ParentProjectIDs []string
	LabelIDs         []string
	AssigneeIDs      []string
}

// UpdateRequest defines project update inputs. Nil fields are left
// unchanged; a non-nil ParentProjectIDs/LabelIDs/AssigneeIDs is treated as
// the complete desired set and diff-synced against the existing rows. Code
// is immutable after creation.
type UpdateRequest struct {
	ID               string
	Title            *string
	StartDate        *time.Time
	Deadline         *time.Time
	PlannedHours     *float64
	Priority         *int
	Status           *Status
	ParentProjectIDs []string
	LabelIDs         []string
	AssigneeIDs      []string
}

// Create validates and persists a new project with its initial parent,
// label, and assignee rows. A new project has no descendants yet, so the
// cycle check on supplied parents is only meaningful when the caller picked
// the project's own id as a parent.
func (s *Service) Create(ctx context.Context, actorID string, req CreateRequest) (*Project, error) {
	if err := s.resolveActor(ctx, actorID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Code) == "" || strings.TrimSpace(req.Title) == "" {
		return nil, ErrInvalidInput
	}
	if req.StartDate != nil && req.Deadline != nil && !req.Deadline.After(*req.StartDate) {
		return nil, ErrDeadlineBeforeStart
	}

	status := req.Status
	if status == "" {
		status = StatusPlanned
	}
	if !status.Valid() {
		return nil, ErrInvalidInput
	}

	if _, err := s.projects.GetByCode(ctx, req.Code); err == nil {
		return nil, ErrCodeTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("checking project code: %w", err)
	}

	id := req.ID
	if strings.TrimSpace(id) == "" {
		id = uuid.NewString()
	}

	parents := dedupe(req.ParentProjectIDs)
	edges, err := s.relationEdges(ctx)
	if err != nil {
		return nil, err
	}
	parentProjects := make([]*Project, 0, len(parents))
	for _, parentID := range parents {
		parent, err := s.projects.Get(ctx, parentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, fmt.Errorf("loading parent project: %w", err)
		}
		if graph.WouldCreateCycle(edges, parentID, id) {
			metrics.CycleRejections.WithLabelValues("project_dag").Inc()
			return nil, ErrCycle
		}
		parentProjects = append(parentProjects, parent)
	}

	now := time.Now()
	proj := &Project{
		ID:           id,
		Code:         req.Code,
		Title:        req.Title,
		StartDate:    req.StartDate,
		Deadline:     req.Deadline,
		PlannedHours: req.PlannedHours,
		Status:       status,
		Priority:     req.Priority,
		CreatedByID:  actorID,
		UpdatedByID:  actorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.projects.Create(ctx, proj); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	add := make([]Relation, 0, len(parents))
	for _, parentID := range parents {
		add = append(add, Relation{ID: uuid.NewString(), ParentID: parentID, ChildID: proj.ID})
	}
	if len(add) > 0 {
		if err := s.projects.ApplyRelationChanges(ctx, add, nil); err != nil {
			return nil, fmt.Errorf("creating parent relations: %w", err)
		}
	}

	if req.LabelIDs != nil {
		if err := s.projects.SyncLabels(ctx, proj.ID, req.LabelIDs); err != nil {
			return nil, fmt.Errorf("syncing labels: %w", err)
		}
	}
	if req.AssigneeIDs != nil {
		if err := s.projects.SyncAssignees(ctx, proj.ID, req.AssigneeIDs); err != nil {
			return nil, fmt.Errorf("syncing assignees: %w", err)
		}
	}

	// Planning-time propagation: a child's planned hours are added onto each
	// declared parent. Distinct from the actual-hours rollup.
	if req.PlannedHours != nil && *req.PlannedHours != 0 {
		for _, parent := range parentProjects {
			if err := s.applyPlannedDelta(ctx, parent, *req.PlannedHours); err != nil {
				return nil, err
			}
		}
	}

	s.record(ctx, actorID, audit.ActionProjectCreated, proj.ID, fmt.Sprintf("created project %s", proj.Code))
	return proj, nil
}

// Update applies a partial update. New parent links are validated against
// the cycle detector over the combined edge set; parent, label, and assignee
// rows are diff-synced; status transitions enforce the completion
// precondition and the inactive cascade.
func (s *Service) Update(ctx context.Context, actorID string, req UpdateRequest) (*Project, error) {
	if err := s.resolveActor(ctx, actorID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ID) == "" {
		return nil, ErrInvalidInput
	}

	current, err := s.projects.Get(ctx, req.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("loading project: %w", err)
	}

	updated := *current
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, ErrInvalidInput
		}
		updated.Title = *req.Title
	}
	if req.StartDate != nil {
		updated.StartDate = req.StartDate
	}
	if req.Deadline != nil {
		updated.Deadline = req.Deadline
	}
	if updated.StartDate != nil && updated.Deadline != nil && !updated.Deadline.After(*updated.StartDate) {
		return nil, ErrDeadlineBeforeStart
	}
	if req.Priority != nil {
		updated.Priority = *req.Priority
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, ErrInvalidInput
		}
		updated.Status = *req.Status
	}

	var relationAdd []Relation
	var relationRemove []string
	if req.ParentProjectIDs != nil {
		relationAdd, relationRemove, err = s.diffParents(ctx, current.ID, dedupe(req.ParentProjectIDs))
		if err != nil {
			return nil, err
		}
	}

	completing := req.Status != nil && *req.Status == StatusCompleted && current.Status != StatusCompleted
	if completing {
		if err := s.checkCompletable(ctx, current.ID); err != nil {
			return nil, err
		}
	}

	plannedDelta := 0.0
	if req.PlannedHours != nil {
		plannedDelta = *req.PlannedHours - hoursOrZero(current.PlannedHours)
		updated.PlannedHours = req.PlannedHours
	}

	// All checks passed; start writing.
	updated.UpdatedByID = actorID
	updated.UpdatedAt = time.Now()
	if err := s.projects.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("updating project: %w", err)
	}

	if len(relationAdd) > 0 || len(relationRemove) > 0 {
		if err := s.projects.ApplyRelationChanges(ctx, relationAdd, relationRemove); err != nil {
			return nil, fmt.Errorf("syncing parent relations: %w", err)
		}
	}
	if req.LabelIDs != nil {
		if err := s.projects.SyncLabels(ctx, updated.ID, req.LabelIDs); err != nil {
			return nil, fmt.Errorf("syncing labels: %w", err)
		}
	}
	if req.AssigneeIDs != nil {
		if err := s.projects.SyncAssignees(ctx, updated.ID, req.AssigneeIDs); err != nil {
			return nil, fmt.Errorf("syncing assignees: %w", err)
		}
	}

	if plannedDelta != 0 {
		if err := s.propagatePlannedDelta(ctx, updated.ID, plannedDelta); err != nil {
			return nil, err
		}
	}

	if req.Status != nil && *req.Status == StatusInactive && current.Status != StatusInactive {
		if err := s.cascadeInactive(ctx, updated.ID); err != nil {
			return nil, err
		}
	}

	s.record(ctx, actorID, audit.ActionProjectUpdated, updated.ID, fmt.Sprintf("updated project %s", updated.Code))
	return &updated, nil
}

// Delete soft-deletes a project. Deletion is a shallow guard: it is rejected
// while any child relation exists, it does not cascade.
func (s *Service) Delete(ctx context.Context, actorID, id string) error {
	if err := s.resolveActor(ctx, actorID); err != nil {
		return err
	}

	proj, err := s.projects.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("loading project: %w", err)
	}

	children, err := s.projects.ListChildren(ctx, id)
	if err != nil {
		return fmt.Errorf("loading child relations: %w", err)
	}
	if len(children) > 0 {
		return ErrHasChildren
	}

	if err := s.projects.SoftDelete(ctx, id, actorID); err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}

	s.record(ctx, actorID, audit.ActionProjectDeleted, id, fmt.Sprintf("deleted project %s", proj.Code))
	return nil
}

// Get returns a project by ID.
func (s *Service) Get(ctx context.Context, id string) (*Project, error) {
	proj, err := s.projects.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	return proj, nil
}

// diffParents computes the relation rows to insert and remove so the edge
// set matches the desired parent ids. Every genuinely new edge runs through
// the cycle detector before anything is written.
func (s *Service) diffParents(ctx context.Context, childID string, desired []string) ([]Relation, []string, error) {
	existing, err := s.projects.ListParents(ctx, childID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading parent relations: %w", err)
	}
	existingByParent := make(map[string]Relation, len(existing))
	for _, rel := range existing {
		existingByParent[rel.ParentID] = rel
	}
	desiredSet := make(map[string]bool, len(desired))
	for _, parentID := range desired {
		desiredSet[parentID] = true
	}

	var edges []graph.Edge
	var add []Relation
	for _, parentID := range desired {
		if _, ok := existingByParent[parentID]; ok {
			continue
		}
		if _, err := s.projects.Get(ctx, parentID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, nil, ErrParentNotFound
			}
			return nil, nil, fmt.Errorf("loading parent project: %w", err)
		}
		if edges == nil {
			edges, err = s.relationEdges(ctx)
			if err != nil {
				return nil, nil, err
			}
		}
		if graph.WouldCreateCycle(edges, parentID, childID) {
			metrics.CycleRejections.WithLabelValues("project_dag").Inc()
			return nil, nil, ErrCycle
		}
		edges = append(edges, graph.Edge{From: parentID, To: childID})
		add = append(add, Relation{ID: uuid.NewString(), ParentID: parentID, ChildID: childID})
	}

	var remove []string
	for _, rel := range existing {
		if !desiredSet[rel.ParentID] {
			remove = append(remove, rel.ID)
		}
	}
	return add, remove, nil
}

// checkCompletable verifies the completion precondition: every direct child
// project and every task of the project must be settled. This is a shallow
// walk over direct children, not a transitive closure.
func (s *Service) checkCompletable(ctx context.Context, id string) error {
	children, err := s.projects.ListChildren(ctx, id)
	if err != nil {
		return fmt.Errorf("loading child relations: %w", err)
	}
	for _, rel := range children {
		child, err := s.projects.Get(ctx, rel.ChildID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return fmt.Errorf("loading child project: %w", err)
		}
		if child.Status != StatusCompleted && child.Status != StatusInactive {
			return ErrIncompleteChildren
		}
	}

	tasks, err := s.tasks.ListByProject(ctx, id)
	if err != nil {
		return fmt.Errorf("loading project tasks: %w", err)
	}
	for _, t := range tasks {
		if !t.Status.Finished() {
			return ErrIncompleteChildren
		}
	}
	return nil
}

// cascadeInactive forces every task of the project to inactive.
func (s *Service) cascadeInactive(ctx context.Context, projectID string) error {
	tasks, err := s.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return fmt.Errorf("loading project tasks: %w", err)
	}
	for _, t := range tasks {
		if t.Status == task.StatusInactive {
			continue
		}
		if err := s.tasks.UpdateStatus(ctx, t.ID, task.StatusInactive); err != nil {
			return fmt.Errorf("deactivating task %s: %w", t.ID, err)
		}
	}
	return nil
}

// propagatePlannedDelta adjusts each direct parent's planned hours by the
// signed change in this project's planned hours.
func (s *Service) propagatePlannedDelta(ctx context.Context, childID string, delta float64) error {
	parents, err := s.projects.ListParents(ctx, childID)
	if err != nil {
		return fmt.Errorf("loading parent relations: %w", err)
	}
	for _, rel := range parents {
		parent, err := s.projects.Get(ctx, rel.ParentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return fmt.Errorf("loading parent project: %w", err)
		}
		if err := s.applyPlannedDelta(ctx, parent, delta); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) applyPlannedDelta(ctx context.Context, parent *Project, delta float64) error {
	next := hoursOrZero(parent.PlannedHours) + delta
	if next < 0 {
		next = 0
	}
	if err := s.projects.UpdatePlannedHours(ctx, parent.ID, next); err != nil {
		return fmt.Errorf("updating planned hours of %s: %w", parent.ID, err)
	}
	return nil
}

func (s *Service) relationEdges(ctx context.Context) ([]graph.Edge, error) {
	relations, err := s.projects.ListRelations(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading relations: %w", err)
	}
	edges := make([]graph.Edge, 0, len(relations))
	for _, rel := range relations {
		edges = append(edges, graph.Edge{From: rel.ParentID, To: rel.ChildID})
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

func hoursOrZero(h *float64) float64 {
	if h == nil {
		return 0
	}
	return *h
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
