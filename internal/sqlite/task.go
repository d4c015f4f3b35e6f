package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dstanek/workgraph/internal/domain/task"
	"github.com/dstanek/workgraph/internal/repository"
)

// TaskRepository implements the task persistence interfaces for SQLite
type TaskRepository struct {
	db *DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, code, title, project_id, parent_task_id, planned_hours, actual_hours, status, created_by, updated_by, created_at, updated_at`

// Create inserts a new task
func (r *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.Code,
		t.Title,
		t.ProjectID,
		nullableString(t.ParentTaskID),
		nullableFloat(t.PlannedHours),
		nullableFloat(t.ActualHours),
		t.Status,
		t.CreatedByID,
		t.UpdatedByID,
		t.CreatedAt,
		t.UpdatedAt,
	)

	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	if isForeignKeyViolation(err) {
		return repository.ErrForeignKeyViolation
	}
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// Get retrieves a live task by ID
func (r *TaskRepository) Get(ctx context.Context, id string) (*task.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = ? AND deleted_at IS NULL
	`
	return scanTask(r.db.QueryRowContext(ctx, query, id))
}

// GetByCode retrieves a live task by its code
func (r *TaskRepository) GetByCode(ctx context.Context, code string) (*task.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE code = ? AND deleted_at IS NULL
	`
	return scanTask(r.db.QueryRowContext(ctx, query, code))
}

// ListByProject returns all live tasks of a project
func (r *TaskRepository) ListByProject(ctx context.Context, projectID string) ([]task.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE project_id = ? AND deleted_at IS NULL
		ORDER BY code
	`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()
	return scanTasks(rows)
}

// Update rewrites a task's mutable fields
func (r *TaskRepository) Update(ctx context.Context, t *task.Task) error {
	query := `
		UPDATE tasks
		SET title = ?, parent_task_id = ?, planned_hours = ?, actual_hours = ?,
		    status = ?, updated_by = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		t.Title,
		nullableString(t.ParentTaskID),
		nullableFloat(t.PlannedHours),
		nullableFloat(t.ActualHours),
		t.Status,
		t.UpdatedByID,
		t.UpdatedAt,
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return requireRow(result)
}

// UpdateStatus sets a task's status
func (r *TaskRepository) UpdateStatus(ctx context.Context, id string, status task.Status) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET status = ? WHERE id = ? AND deleted_at IS NULL`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}
	return requireRow(result)
}

// UpdateActualHours sets a task's rolled-up actual hours
func (r *TaskRepository) UpdateActualHours(ctx context.Context, id string, hours float64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET actual_hours = ? WHERE id = ? AND deleted_at IS NULL`, hours, id)
	if err != nil {
		return fmt.Errorf("failed to update task hours: %w", err)
	}
	return requireRow(result)
}

// SoftDelete hides a task
func (r *TaskRepository) SoftDelete(ctx context.Context, id, actorID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET deleted_at = CURRENT_TIMESTAMP, deleted_by = ? WHERE id = ? AND deleted_at IS NULL`,
		actorID, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return requireRow(result)
}

// ListAssignees returns the user ids assigned to a task
func (r *TaskRepository) ListAssignees(ctx context.Context, taskID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM task_assignments WHERE task_id = ? ORDER BY user_id`, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignees: %w", err)
	}
	defer rows.Close()
	return scanStrings(rows)
}

// SyncAssignees replaces a task's assignment rows with the given set
func (r *TaskRepository) SyncAssignees(ctx context.Context, taskID string, userIDs []string) error {
	return r.db.WithinTx(ctx, func(tx DBTX) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM task_assignments WHERE task_id = ?`, taskID); err != nil {
			return fmt.Errorf("failed to clear assignments: %w", err)
		}
		for _, userID := range userIDs {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO task_assignments (task_id, user_id) VALUES (?, ?)`, taskID, userID)
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

func scanTask(row *sql.Row) (*task.Task, error) {
	var t task.Task
	var parentID sql.NullString
	var planned, actual sql.NullFloat64

	err := row.Scan(
		&t.ID,
		&t.Code,
		&t.Title,
		&t.ProjectID,
		&parentID,
		&planned,
		&actual,
		&t.Status,
		&t.CreatedByID,
		&t.UpdatedByID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	applyTaskNullables(&t, parentID, planned, actual)
	return &t, nil
}

func scanTasks(rows *sql.Rows) ([]task.Task, error) {
	var tasks []task.Task
	for rows.Next() {
		var t task.Task
		var parentID sql.NullString
		var planned, actual sql.NullFloat64
		err := rows.Scan(
			&t.ID,
			&t.Code,
			&t.Title,
			&t.ProjectID,
			&parentID,
			&planned,
			&actual,
			&t.Status,
			&t.CreatedByID,
			&t.UpdatedByID,
			&t.CreatedAt,
			&t.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		applyTaskNullables(&t, parentID, planned, actual)
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func applyTaskNullables(t *task.Task, parentID sql.NullString, planned, actual sql.NullFloat64) {
	if parentID.Valid {
		t.ParentTaskID = &parentID.String
	}
	if planned.Valid {
		t.PlannedHours = &planned.Float64
	}
	if actual.Valid {
		t.ActualHours = &actual.Float64
	}
}
