package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpggio/vantage/internal/repository"
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

	// SQLite allows one writer; a single connection also keeps ":memory:"
	// databases from splitting across the pool.
	db.SetMaxOpenConns(1)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

// Open connects and brings the schema up to date.
func Open(dataSourceName string) (*DB, error) {
	db, err := New(dataSourceName)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// RunMigrations creates any missing tables. It is safe to run repeatedly.
func (db *DB) RunMigrations() error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// withTx runs fn in a transaction, committing when fn returns nil.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

const schema = `
-- Users
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT '',
    department TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_user_name ON users(name);

-- Fiscal year dataset (single row)
CREATE TABLE IF NOT EXISTS dataset_meta (
    id INTEGER PRIMARY KEY CHECK(id = 1),
    fiscal_year TEXT NOT NULL,
    current_month TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS months (
    month TEXT PRIMARY KEY,
    position INTEGER NOT NULL UNIQUE,
    label TEXT NOT NULL DEFAULT '',
    is_closed INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS kpi_definitions (
    id TEXT PRIMARY KEY,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    unit TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT '',
    is_higher_better INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS kpi_values (
    month TEXT NOT NULL,
    kpi_id TEXT NOT NULL,
    actual REAL,
    budget REAL NOT NULL,
    PRIMARY KEY (month, kpi_id),
    FOREIGN KEY (month) REFERENCES months(month) ON DELETE CASCADE,
    FOREIGN KEY (kpi_id) REFERENCES kpi_definitions(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS annual_budgets (
    kpi_id TEXT PRIMARY KEY,
    amount REAL NOT NULL,
    FOREIGN KEY (kpi_id) REFERENCES kpi_definitions(id) ON DELETE CASCADE
);

-- Sales pipeline
CREATE TABLE IF NOT EXISTS pipeline_stages (
    id TEXT PRIMARY KEY,
    position INTEGER NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    probability REAL NOT NULL CHECK(probability >= 0 AND probability <= 100),
    high_confidence INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS pipeline_items (
    id TEXT PRIMARY KEY,
    amount TEXT NOT NULL,
    stage TEXT NOT NULL,
    expected_close_month TEXT NOT NULL DEFAULT '',
    customer TEXT NOT NULL DEFAULT '',
    owner TEXT NOT NULL DEFAULT '',
    FOREIGN KEY (stage) REFERENCES pipeline_stages(id)
);

-- Comments (parent_id is not a foreign key: dangling parents are tolerated)
CREATE TABLE IF NOT EXISTS comments (
    id TEXT PRIMARY KEY,
    target_id TEXT NOT NULL,
    parent_id TEXT,
    author_id TEXT NOT NULL,
    content TEXT NOT NULL,
    mentions TEXT NOT NULL DEFAULT '[]',
    reactions TEXT NOT NULL DEFAULT '[]',
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    is_edited INTEGER NOT NULL DEFAULT 0,
    version INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_comment_target ON comments(target_id, created_at);

-- Action items
CREATE TABLE IF NOT EXISTS action_items (
    id TEXT PRIMARY KEY,
    category TEXT NOT NULL DEFAULT '',
    target_name TEXT NOT NULL DEFAULT '',
    issue TEXT NOT NULL DEFAULT '',
    action TEXT NOT NULL,
    assignee TEXT NOT NULL,
    due_date TIMESTAMP,
    status TEXT NOT NULL CHECK(status IN ('pending', 'in_progress', 'completed')),
    priority TEXT NOT NULL CHECK(priority IN ('high', 'medium', 'low')),
    created_by TEXT NOT NULL DEFAULT '',
    kpi_id TEXT NOT NULL DEFAULT '',
    month TEXT NOT NULL DEFAULT '',
    metrics TEXT,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    version INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_action_assignee ON action_items(assignee);
CREATE INDEX IF NOT EXISTS idx_action_source ON action_items(kpi_id, month);

-- Notifications
CREATE TABLE IF NOT EXISTS notifications (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    type TEXT NOT NULL,
    title TEXT NOT NULL,
    message TEXT NOT NULL,
    is_read INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    action_id TEXT NOT NULL DEFAULT '',
    comment_id TEXT NOT NULL DEFAULT '',
    from_user_id TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_notification_user ON notifications(user_id, is_read);

-- Activity log
CREATE TABLE IF NOT EXISTS activity_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    target_id TEXT NOT NULL DEFAULT '',
    comment_id TEXT,
    action_id TEXT,
    actor_id TEXT NOT NULL DEFAULT '',
    activity_type TEXT NOT NULL,
    summary TEXT NOT NULL,
    details TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_target_activity ON activity_log(target_id);
CREATE INDEX IF NOT EXISTS idx_created_at ON activity_log(created_at);
`

// checkVersioned distinguishes a missing row from a version mismatch after an
// UPDATE guarded by a version column.
func (db *DB) checkVersioned(ctx context.Context, result sql.Result, table, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	var exists bool
	checkQuery := `SELECT EXISTS(SELECT 1 FROM ` + table + ` WHERE id = ?)`
	if err := db.QueryRowContext(ctx, checkQuery, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check %s existence: %w", table, err)
	}
	if !exists {
		return repository.ErrNotFound
	}
	return repository.ErrConflict
}
