package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

// RunMigrations applies the schema. The DDL is idempotent, so it is safe
// to run at every startup. Rows are soft-deleted throughout: a populated
// deleted_at hides the row, and uniqueness is only enforced over live rows
// via partial indexes.
func (db *DB) RunMigrations() error {
	migration := `
-- Users
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    deleted_at TIMESTAMP
);

-- API keys for authentication
CREATE TABLE IF NOT EXISTS api_keys (
    key_hash TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    description TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    last_used TIMESTAMP,
    FOREIGN KEY (user_id) REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_user_keys ON api_keys(user_id);

-- Projects
CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    code TEXT NOT NULL,
    title TEXT NOT NULL,
    start_date TIMESTAMP,
    deadline TIMESTAMP,
    planned_hours REAL,
    actual_hours REAL,
    status TEXT NOT NULL CHECK(status IN ('planned', 'active', 'completed', 'inactive', 'awaiting_approval')),
    priority INTEGER NOT NULL DEFAULT 0,
    created_by TEXT NOT NULL,
    updated_by TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    deleted_at TIMESTAMP,
    deleted_by TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_project_code ON projects(code) WHERE deleted_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_project_status ON projects(status);

-- Project hierarchy edges (multi-parent)
CREATE TABLE IF NOT EXISTS project_relations (
    id TEXT PRIMARY KEY,
    parent_id TEXT NOT NULL,
    child_id TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    deleted_at TIMESTAMP,
    deleted_by TEXT,
    FOREIGN KEY (parent_id) REFERENCES projects(id),
    FOREIGN KEY (child_id) REFERENCES projects(id)
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_relation_pair ON project_relations(parent_id, child_id) WHERE deleted_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_relation_child ON project_relations(child_id);

-- Labels
CREATE TABLE IF NOT EXISTS labels (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS project_labels (
    project_id TEXT NOT NULL,
    label_id TEXT NOT NULL,
    PRIMARY KEY (project_id, label_id),
    FOREIGN KEY (project_id) REFERENCES projects(id),
    FOREIGN KEY (label_id) REFERENCES labels(id)
);

CREATE TABLE IF NOT EXISTS project_assignments (
    project_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    PRIMARY KEY (project_id, user_id),
    FOREIGN KEY (project_id) REFERENCES projects(id),
    FOREIGN KEY (user_id) REFERENCES users(id)
);

-- Tasks
CREATE TABLE IF NOT EXISTS tasks (
    id TEXT PRIMARY KEY,
    code TEXT NOT NULL,
    title TEXT NOT NULL,
    project_id TEXT NOT NULL,
    parent_task_id TEXT,
    planned_hours REAL,
    actual_hours REAL,
    status TEXT NOT NULL CHECK(status IN ('todo', 'in_progress', 'done', 'inactive', 'awaiting_approval')),
    created_by TEXT NOT NULL,
    updated_by TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    deleted_at TIMESTAMP,
    deleted_by TEXT,
    FOREIGN KEY (project_id) REFERENCES projects(id),
    FOREIGN KEY (parent_task_id) REFERENCES tasks(id)
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_task_code ON tasks(code) WHERE deleted_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_task_project ON tasks(project_id);
CREATE INDEX IF NOT EXISTS idx_task_parent ON tasks(parent_task_id);

CREATE TABLE IF NOT EXISTS task_assignments (
    task_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    PRIMARY KEY (task_id, user_id),
    FOREIGN KEY (task_id) REFERENCES tasks(id),
    FOREIGN KEY (user_id) REFERENCES users(id)
);

-- Task dependency edges (blocking -> blocked)
CREATE TABLE IF NOT EXISTS task_dependencies (
    id TEXT PRIMARY KEY,
    blocking_task_id TEXT NOT NULL,
    blocked_task_id TEXT NOT NULL,
    created_by TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    deleted_at TIMESTAMP,
    deleted_by TEXT,
    FOREIGN KEY (blocking_task_id) REFERENCES tasks(id),
    FOREIGN KEY (blocked_task_id) REFERENCES tasks(id)
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_dependency_pair ON task_dependencies(blocking_task_id, blocked_task_id) WHERE deleted_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_dependency_blocked ON task_dependencies(blocked_task_id);

-- Logged work sessions
CREATE TABLE IF NOT EXISTS activities (
    id TEXT PRIMARY KEY,
    task_id TEXT NOT NULL,
    user_id TEXT,
    machine_id TEXT,
    started_at TIMESTAMP NOT NULL,
    ended_at TIMESTAMP NOT NULL,
    total_hours REAL NOT NULL,
    is_last INTEGER NOT NULL DEFAULT 0,
    created_by TEXT NOT NULL,
    updated_by TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    deleted_at TIMESTAMP,
    deleted_by TEXT,
    FOREIGN KEY (task_id) REFERENCES tasks(id),
    FOREIGN KEY (user_id) REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_activity_task ON activities(task_id);

-- Audit log
CREATE TABLE IF NOT EXISTS audit_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    actor_id TEXT NOT NULL,
    action TEXT NOT NULL,
    entity_id TEXT,
    summary TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_audit_entity ON audit_log(entity_id);
CREATE INDEX IF NOT EXISTS idx_audit_created ON audit_log(created_at);

-- Full-text search over project and task identities (SQLite FTS5)
CREATE VIRTUAL TABLE IF NOT EXISTS items_fts USING fts5(
    kind UNINDEXED,
    item_id UNINDEXED,
    code,
    title
);

CREATE TRIGGER IF NOT EXISTS projects_fts_ai AFTER INSERT ON projects BEGIN
    INSERT INTO items_fts(kind, item_id, code, title)
    VALUES ('project', new.id, new.code, new.title);
END;

CREATE TRIGGER IF NOT EXISTS projects_fts_au AFTER UPDATE ON projects BEGIN
    DELETE FROM items_fts WHERE kind = 'project' AND item_id = old.id;
    INSERT INTO items_fts(kind, item_id, code, title)
    SELECT 'project', new.id, new.code, new.title WHERE new.deleted_at IS NULL;
END;

CREATE TRIGGER IF NOT EXISTS projects_fts_ad AFTER DELETE ON projects BEGIN
    DELETE FROM items_fts WHERE kind = 'project' AND item_id = old.id;
END;

CREATE TRIGGER IF NOT EXISTS tasks_fts_ai AFTER INSERT ON tasks BEGIN
    INSERT INTO items_fts(kind, item_id, code, title)
    VALUES ('task', new.id, new.code, new.title);
END;

CREATE TRIGGER IF NOT EXISTS tasks_fts_au AFTER UPDATE ON tasks BEGIN
    DELETE FROM items_fts WHERE kind = 'task' AND item_id = old.id;
    INSERT INTO items_fts(kind, item_id, code, title)
    SELECT 'task', new.id, new.code, new.title WHERE new.deleted_at IS NULL;
END;

CREATE TRIGGER IF NOT EXISTS tasks_fts_ad AFTER DELETE ON tasks BEGIN
    DELETE FROM items_fts WHERE kind = 'task' AND item_id = old.id;
END;
`

	_, err := db.Exec(migration)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
