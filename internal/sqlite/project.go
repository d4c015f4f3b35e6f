package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dstanek/workgraph/internal/domain/project"
	"github.com/dstanek/workgraph/internal/repository"
)

// ProjectRepository implements the project persistence interfaces for SQLite
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id, code, title, start_date, deadline, planned_hours, actual_hours, status, priority, created_by, updated_by, created_at, updated_at`

// Create inserts a new project
func (r *ProjectRepository) Create(ctx context.Context, p *project.Project) error {
	query := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Code,
		p.Title,
		nullableTime(p.StartDate),
		nullableTime(p.Deadline),
		nullableFloat(p.PlannedHours),
		nullableFloat(p.ActualHours),
		p.Status,
		p.Priority,
		p.CreatedByID,
		p.UpdatedByID,
		p.CreatedAt,
		p.UpdatedAt,
	)

	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// Get retrieves a live project by ID
func (r *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE id = ? AND deleted_at IS NULL
	`
	return r.scanProject(r.db.QueryRowContext(ctx, query, id))
}

// GetByCode retrieves a live project by its code
func (r *ProjectRepository) GetByCode(ctx context.Context, code string) (*project.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE code = ? AND deleted_at IS NULL
	`
	return r.scanProject(r.db.QueryRowContext(ctx, query, code))
}

// Exists reports whether a live project with the given ID exists
func (r *ProjectRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM projects WHERE id = ? AND deleted_at IS NULL`, id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check project: %w", err)
	}
	return count > 0, nil
}

// Update rewrites a project's mutable fields
func (r *ProjectRepository) Update(ctx context.Context, p *project.Project) error {
	query := `
		UPDATE projects
		SET title = ?, start_date = ?, deadline = ?, planned_hours = ?, actual_hours = ?,
		    status = ?, priority = ?, updated_by = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		p.Title,
		nullableTime(p.StartDate),
		nullableTime(p.Deadline),
		nullableFloat(p.PlannedHours),
		nullableFloat(p.ActualHours),
		p.Status,
		p.Priority,
		p.UpdatedByID,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return requireRow(result)
}

// UpdatePlannedHours sets a project's planned hours
func (r *ProjectRepository) UpdatePlannedHours(ctx context.Context, id string, hours float64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE projects SET planned_hours = ? WHERE id = ? AND deleted_at IS NULL`, hours, id)
	if err != nil {
		return fmt.Errorf("failed to update planned hours: %w", err)
	}
	return requireRow(result)
}

// UpdateActualHours sets a project's rolled-up actual hours
func (r *ProjectRepository) UpdateActualHours(ctx context.Context, id string, hours float64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE projects SET actual_hours = ? WHERE id = ? AND deleted_at IS NULL`, hours, id)
	if err != nil {
		return fmt.Errorf("failed to update actual hours: %w", err)
	}
	return requireRow(result)
}

// SoftDelete hides a project and its relation edges
func (r *ProjectRepository) SoftDelete(ctx context.Context, id, actorID string) error {
	return r.db.WithinTx(ctx, func(tx DBTX) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE projects SET deleted_at = CURRENT_TIMESTAMP, deleted_by = ? WHERE id = ? AND deleted_at IS NULL`,
			actorID, id)
		if err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		if err := requireRow(result); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE project_relations SET deleted_at = CURRENT_TIMESTAMP, deleted_by = ?
			 WHERE (parent_id = ? OR child_id = ?) AND deleted_at IS NULL`,
			actorID, id, id)
		if err != nil {
			return fmt.Errorf("failed to delete project relations: %w", err)
		}
		return nil
	})
}

// ListRelations returns every live hierarchy edge
func (r *ProjectRepository) ListRelations(ctx context.Context) ([]project.Relation, error) {
	query := `
		SELECT id, parent_id, child_id, created_at
		FROM project_relations
		WHERE deleted_at IS NULL
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list relations: %w", err)
	}
	defer rows.Close()
	return scanRelations(rows)
}

// ListParents returns the live edges pointing at a child project
func (r *ProjectRepository) ListParents(ctx context.Context, childID string) ([]project.Relation, error) {
	query := `
		SELECT id, parent_id, child_id, created_at
		FROM project_relations
		WHERE child_id = ? AND deleted_at IS NULL
	`
	rows, err := r.db.QueryContext(ctx, query, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to list parent relations: %w", err)
	}
	defer rows.Close()
	return scanRelations(rows)
}

// ListChildren returns the live edges leaving a parent project
func (r *ProjectRepository) ListChildren(ctx context.Context, parentID string) ([]project.Relation, error) {
	query := `
		SELECT id, parent_id, child_id, created_at
		FROM project_relations
		WHERE parent_id = ? AND deleted_at IS NULL
	`
	rows, err := r.db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list child relations: %w", err)
	}
	defer rows.Close()
	return scanRelations(rows)
}

// ApplyRelationChanges inserts and soft-deletes hierarchy edges in one
// transaction, so a diff-sync is all-or-nothing
func (r *ProjectRepository) ApplyRelationChanges(ctx context.Context, add []project.Relation, removeIDs []string) error {
	return r.db.WithinTx(ctx, func(tx DBTX) error {
		for _, rel := range add {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO project_relations (id, parent_id, child_id) VALUES (?, ?, ?)`,
				rel.ID, rel.ParentID, rel.ChildID)
			if isUniqueViolation(err) {
				return repository.ErrConflict
			}
			if isForeignKeyViolation(err) {
				return repository.ErrForeignKeyViolation
			}
			if err != nil {
				return fmt.Errorf("failed to insert relation: %w", err)
			}
		}
		for _, id := range removeIDs {
			_, err := tx.ExecContext(ctx,
				`UPDATE project_relations SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`, id)
			if err != nil {
				return fmt.Errorf("failed to remove relation: %w", err)
			}
		}
		return nil
	})
}

// SyncLabels replaces a project's label rows with the given set
func (r *ProjectRepository) SyncLabels(ctx context.Context, projectID string, labelIDs []string) error {
	return r.db.WithinTx(ctx, func(tx DBTX) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM project_labels WHERE project_id = ?`, projectID); err != nil {
			return fmt.Errorf("failed to clear labels: %w", err)
		}
		for _, labelID := range labelIDs {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO project_labels (project_id, label_id) VALUES (?, ?)`, projectID, labelID)
			if isForeignKeyViolation(err) {
				return repository.ErrForeignKeyViolation
			}
			if err != nil {
				return fmt.Errorf("failed to insert label row: %w", err)
			}
		}
		return nil
	})
}

// SyncAssignees replaces a project's assignment rows with the given set
func (r *ProjectRepository) SyncAssignees(ctx context.Context, projectID string, userIDs []string) error {
	return r.db.WithinTx(ctx, func(tx DBTX) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM project_assignments WHERE project_id = ?`, projectID); err != nil {
			return fmt.Errorf("failed to clear assignments: %w", err)
		}
		for _, userID := range userIDs {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO project_assignments (project_id, user_id) VALUES (?, ?)`, projectID, userID)
			if isForeignKeyViolation(err) {
				return repository.ErrForeignKeyViolation
			}
			if err != nil {
				return fmt.Errorf("failed to insert assignment: %w", err)
			}
		}
		return nil
	})
}

// ListAssignees returns the user ids assigned to a project
func (r *ProjectRepository) ListAssignees(ctx context.Context, projectID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM project_assignments WHERE project_id = ? ORDER BY user_id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignees: %w", err)
	}
	defer rows.Close()
	return scanStrings(rows)
}

// ListLabels returns the label ids attached to a project
func (r *ProjectRepository) ListLabels(ctx context.Context, projectID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT label_id FROM project_labels WHERE project_id = ? ORDER BY label_id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	defer rows.Close()
	return scanStrings(rows)
}

func (r *ProjectRepository) scanProject(row *sql.Row) (*project.Project, error) {
	var p project.Project
	var startDate, deadline sql.NullTime
	var planned, actual sql.NullFloat64

	err := row.Scan(
		&p.ID,
		&p.Code,
		&p.Title,
		&startDate,
		&deadline,
		&planned,
		&actual,
		&p.Status,
		&p.Priority,
		&p.CreatedByID,
		&p.UpdatedByID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if startDate.Valid {
		p.StartDate = &startDate.Time
	}
	if deadline.Valid {
		p.Deadline = &deadline.Time
	}
	if planned.Valid {
		p.PlannedHours = &planned.Float64
	}
	if actual.Valid {
		p.ActualHours = &actual.Float64
	}
	return &p, nil
}

func scanRelations(rows *sql.Rows) ([]project.Relation, error) {
	var relations []project.Relation
	for rows.Next() {
		var rel project.Relation
		if err := rows.Scan(&rel.ID, &rel.ParentID, &rel.ChildID, &rel.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan relation: %w", err)
		}
		relations = append(relations, rel)
	}
	return relations, rows.Err()
}
