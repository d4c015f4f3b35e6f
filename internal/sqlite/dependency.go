package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dstanek/workgraph/internal/domain/dependency"
	"github.com/dstanek/workgraph/internal/repository"
)

// DependencyRepository implements the dependency edge store for SQLite
type DependencyRepository struct {
	db *DB
}

// NewDependencyRepository creates a new DependencyRepository
func NewDependencyRepository(db *DB) *DependencyRepository {
	return &DependencyRepository{db: db}
}

const dependencyColumns = `id, blocking_task_id, blocked_task_id, created_by, created_at`

// Create inserts a new dependency edge
func (r *DependencyRepository) Create(ctx context.Context, d *dependency.Dependency) error {
	query := `
		INSERT INTO task_dependencies (` + dependencyColumns + `)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		d.ID, d.BlockingTaskID, d.BlockedTaskID, d.CreatedByID, d.CreatedAt)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	if isForeignKeyViolation(err) {
		return repository.ErrForeignKeyViolation
	}
	if err != nil {
		return fmt.Errorf("failed to create dependency: %w", err)
	}
	return nil
}

// Get retrieves a live dependency by ID
func (r *DependencyRepository) Get(ctx context.Context, id string) (*dependency.Dependency, error) {
	query := `
		SELECT ` + dependencyColumns + `
		FROM task_dependencies
		WHERE id = ? AND deleted_at IS NULL
	`
	return scanDependency(r.db.QueryRowContext(ctx, query, id))
}

// GetByPair retrieves the live edge between an ordered task pair
func (r *DependencyRepository) GetByPair(ctx context.Context, blockingTaskID, blockedTaskID string) (*dependency.Dependency, error) {
	query := `
		SELECT ` + dependencyColumns + `
		FROM task_dependencies
		WHERE blocking_task_id = ? AND blocked_task_id = ? AND deleted_at IS NULL
	`
	return scanDependency(r.db.QueryRowContext(ctx, query, blockingTaskID, blockedTaskID))
}

// ListAll returns every live dependency edge
func (r *DependencyRepository) ListAll(ctx context.Context) ([]dependency.Dependency, error) {
	query := `
		SELECT ` + dependencyColumns + `
		FROM task_dependencies
		WHERE deleted_at IS NULL
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list dependencies: %w", err)
	}
	defer rows.Close()
	return scanDependencies(rows)
}

// ListBlocking returns the live edges whose blocked side is the given task
func (r *DependencyRepository) ListBlocking(ctx context.Context, blockedTaskID string) ([]dependency.Dependency, error) {
	query := `
		SELECT ` + dependencyColumns + `
		FROM task_dependencies
		WHERE blocked_task_id = ? AND deleted_at IS NULL
	`
	rows, err := r.db.QueryContext(ctx, query, blockedTaskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocking edges: %w", err)
	}
	defer rows.Close()
	return scanDependencies(rows)
}

// ListBlocked returns the live edges whose blocking side is the given task
func (r *DependencyRepository) ListBlocked(ctx context.Context, blockingTaskID string) ([]dependency.Dependency, error) {
	query := `
		SELECT ` + dependencyColumns + `
		FROM task_dependencies
		WHERE blocking_task_id = ? AND deleted_at IS NULL
	`
	rows, err := r.db.QueryContext(ctx, query, blockingTaskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocked edges: %w", err)
	}
	defer rows.Close()
	return scanDependencies(rows)
}

// ReplaceOutgoing atomically swaps a task's outgoing edge set: the old edges
// are soft-deleted and the new ones inserted inside one transaction
func (r *DependencyRepository) ReplaceOutgoing(ctx context.Context, blockingTaskID string, deps []dependency.Dependency) error {
	return r.db.WithinTx(ctx, func(tx DBTX) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE task_dependencies SET deleted_at = CURRENT_TIMESTAMP
			 WHERE blocking_task_id = ? AND deleted_at IS NULL`, blockingTaskID)
		if err != nil {
			return fmt.Errorf("failed to clear outgoing edges: %w", err)
		}
		for _, d := range deps {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO task_dependencies (`+dependencyColumns+`) VALUES (?, ?, ?, ?, ?)`,
				d.ID, d.BlockingTaskID, d.BlockedTaskID, d.CreatedByID, d.CreatedAt)
			if isUniqueViolation(err) {
				return repository.ErrConflict
			}
			if isForeignKeyViolation(err) {
				return repository.ErrForeignKeyViolation
			}
			if err != nil {
				return fmt.Errorf("failed to insert edge: %w", err)
			}
		}
		return nil
	})
}

// SoftDelete hides a dependency edge
func (r *DependencyRepository) SoftDelete(ctx context.Context, id, actorID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE task_dependencies SET deleted_at = CURRENT_TIMESTAMP, deleted_by = ? WHERE id = ? AND deleted_at IS NULL`,
		actorID, id)
	if err != nil {
		return fmt.Errorf("failed to delete dependency: %w", err)
	}
	return requireRow(result)
}

func scanDependency(row *sql.Row) (*dependency.Dependency, error) {
	var d dependency.Dependency
	err := row.Scan(&d.ID, &d.BlockingTaskID, &d.BlockedTaskID, &d.CreatedByID, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dependency: %w", err)
	}
	return &d, nil
}

func scanDependencies(rows *sql.Rows) ([]dependency.Dependency, error) {
	var deps []dependency.Dependency
	for rows.Next() {
		var d dependency.Dependency
		if err := rows.Scan(&d.ID, &d.BlockingTaskID, &d.BlockedTaskID, &d.CreatedByID, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dependency: %w", err)
		}
		deps = append(deps, d)
	}
	return deps, rows.Err()
}
