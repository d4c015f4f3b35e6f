package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates a new in-memory SQLite database for testing
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	err = db.RunMigrations()
	require.NoError(t, err, "failed to run migrations")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// TestMigrations verifies that migrations run successfully
func TestMigrations(t *testing.T) {
	db := NewTestDB(t)

	tables := []string{
		"users",
		"api_keys",
		"projects",
		"project_relations",
		"labels",
		"project_labels",
		"project_assignments",
		"tasks",
		"task_assignments",
		"task_dependencies",
		"activities",
		"audit_log",
		"items_fts",
	}

	for _, table := range tables {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err, "failed to query table %s", table)
		require.Equal(t, 1, count, "table %s not found", table)
	}
}

// TestForeignKeys verifies that foreign key constraints are enabled
func TestForeignKeys(t *testing.T) {
	db := NewTestDB(t)

	var enabled int
	err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled)
	require.NoError(t, err)
	require.Equal(t, 1, enabled, "foreign keys not enabled")
}

// TestCodeUniquenessIgnoresDeletedRows verifies the partial unique index:
// a soft-deleted project frees its code for reuse
func TestCodeUniquenessIgnoresDeletedRows(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	insert := `INSERT INTO projects (id, code, title, status, created_by, updated_by, created_at, updated_at)
	           VALUES (?, ?, ?, 'planned', 'u1', 'u1', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`

	_, err := db.ExecContext(ctx, insert, "p1", "ENG", "First")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, insert, "p2", "ENG", "Second")
	require.Error(t, err, "duplicate live code must be rejected")

	_, err = db.ExecContext(ctx, `UPDATE projects SET deleted_at = CURRENT_TIMESTAMP WHERE id = 'p1'`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, insert, "p2", "ENG", "Second")
	require.NoError(t, err, "code of a deleted project is reusable")
}

// TestFTSIndex verifies the full-text index tracks inserts, updates, and
// soft deletes
func TestFTSIndex(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx,
		`INSERT INTO projects (id, code, title, status, created_by, updated_by, created_at, updated_at)
		 VALUES ('p1', 'ENG', 'Compiler Overhaul', 'planned', 'u1', 'u1', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	var count int
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items_fts WHERE items_fts MATCH ?`, "compiler").Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count, "should find 1 item matching 'compiler'")

	_, err = db.ExecContext(ctx, `UPDATE projects SET title = 'Parser Rewrite' WHERE id = 'p1'`)
	require.NoError(t, err)

	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items_fts WHERE items_fts MATCH ?`, "parser").Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count, "should find 1 item matching 'parser' after update")

	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items_fts WHERE items_fts MATCH ?`, "compiler").Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 0, count, "old title must drop out of the index")

	_, err = db.ExecContext(ctx, `UPDATE projects SET deleted_at = CURRENT_TIMESTAMP WHERE id = 'p1'`)
	require.NoError(t, err)

	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items_fts WHERE items_fts MATCH ?`, "parser").Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 0, count, "soft-deleted rows must drop out of the index")
}
