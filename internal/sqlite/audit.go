package sqlite

import (
	"context"
	"fmt"

	"github.com/dstanek/workgraph/internal/domain/audit"
)

// AuditRepository implements the append-only audit log for SQLite
type AuditRepository struct {
	db *DB
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db *DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Record appends an entry
func (r *AuditRepository) Record(ctx context.Context, e *audit.Entry) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (actor_id, action, entity_id, summary) VALUES (?, ?, ?, ?)`,
		e.ActorID, e.Action, e.EntityID, e.Summary)
	if err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	if id, err := result.LastInsertId(); err == nil {
		e.ID = id
	}
	return nil
}

// List returns entries newest first, filtered by the options
func (r *AuditRepository) List(ctx context.Context, opts audit.ListOptions) ([]audit.Entry, error) {
	query := `
		SELECT id, actor_id, action, entity_id, summary, created_at
		FROM audit_log
		WHERE 1 = 1
	`
	var args []any
	if opts.EntityID != "" {
		query += " AND entity_id = ?"
		args = append(args, opts.EntityID)
	}
	if opts.Action != nil {
		query += " AND action = ?"
		args = append(args, *opts.Action)
	}
	query += " ORDER BY id DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}
	if opts.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, opts.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var e audit.Entry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.EntityID, &e.Summary, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
