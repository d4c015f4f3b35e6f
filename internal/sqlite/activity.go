package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dstanek/workgraph/internal/domain/activity"
	"github.com/dstanek/workgraph/internal/repository"
)

// ActivityRepository implements the work session store for SQLite
type ActivityRepository struct {
	db *DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

const activityColumns = `id, task_id, user_id, machine_id, started_at, ended_at, total_hours, is_last, created_by, updated_by, created_at, updated_at`

// Create inserts a new activity
func (r *ActivityRepository) Create(ctx context.Context, a *activity.Activity) error {
	query := `
		INSERT INTO activities (` + activityColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.TaskID,
		nullableString(a.UserID),
		nullableString(a.MachineID),
		a.StartedAt,
		a.EndedAt,
		a.TotalHours,
		a.IsLast,
		a.CreatedByID,
		a.UpdatedByID,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if isForeignKeyViolation(err) {
		return repository.ErrForeignKeyViolation
	}
	if err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}
	return nil
}

// Get retrieves a live activity by ID
func (r *ActivityRepository) Get(ctx context.Context, id string) (*activity.Activity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE id = ? AND deleted_at IS NULL
	`
	return scanActivity(r.db.QueryRowContext(ctx, query, id))
}

// ListByTask returns a task's live activities, oldest first
func (r *ActivityRepository) ListByTask(ctx context.Context, taskID string) ([]activity.Activity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE task_id = ? AND deleted_at IS NULL
		ORDER BY started_at
	`
	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	var activities []activity.Activity
	for rows.Next() {
		a, err := scanActivityRow(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, *a)
	}
	return activities, rows.Err()
}

// Update rewrites an activity's mutable fields
func (r *ActivityRepository) Update(ctx context.Context, a *activity.Activity) error {
	query := `
		UPDATE activities
		SET started_at = ?, ended_at = ?, total_hours = ?, is_last = ?, updated_by = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		a.StartedAt, a.EndedAt, a.TotalHours, a.IsLast, a.UpdatedByID, a.UpdatedAt, a.ID)
	if err != nil {
		return fmt.Errorf("failed to update activity: %w", err)
	}
	return requireRow(result)
}

// SoftDelete hides an activity
func (r *ActivityRepository) SoftDelete(ctx context.Context, id, actorID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE activities SET deleted_at = CURRENT_TIMESTAMP, deleted_by = ? WHERE id = ? AND deleted_at IS NULL`,
		actorID, id)
	if err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	return requireRow(result)
}

type activityScanner interface {
	Scan(dest ...any) error
}

func scanActivity(row *sql.Row) (*activity.Activity, error) {
	a, err := scanActivityRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return a, err
}

func scanActivityRow(s activityScanner) (*activity.Activity, error) {
	var a activity.Activity
	var userID, machineID sql.NullString

	err := s.Scan(
		&a.ID,
		&a.TaskID,
		&userID,
		&machineID,
		&a.StartedAt,
		&a.EndedAt,
		&a.TotalHours,
		&a.IsLast,
		&a.CreatedByID,
		&a.UpdatedByID,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan activity: %w", err)
	}

	if userID.Valid {
		a.UserID = &userID.String
	}
	if machineID.Valid {
		a.MachineID = &machineID.String
	}
	return &a, nil
}
