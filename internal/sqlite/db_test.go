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
		"dataset_meta",
		"months",
		"kpi_definitions",
		"kpi_values",
		"annual_budgets",
		"pipeline_stages",
		"pipeline_items",
		"comments",
		"action_items",
		"notifications",
		"activity_log",
	}

	for _, table := range tables {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err, "failed to query table %s", table)
		require.Equal(t, 1, count, "table %s not found", table)
	}

	// Migrations are idempotent.
	require.NoError(t, db.RunMigrations())
}

// TestForeignKeys verifies that foreign key constraints are enabled
func TestForeignKeys(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	var enabled int
	err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled)
	require.NoError(t, err)
	require.Equal(t, 1, enabled, "foreign keys not enabled")

	_, err = db.ExecContext(ctx,
		`INSERT INTO kpi_values (month, kpi_id, actual, budget) VALUES (?, ?, ?, ?)`,
		"2024-04", "revenue", nil, 100)
	require.Error(t, err)
	require.True(t, isForeignKeyViolation(err))
}

func TestCheckConstraints(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx,
		`INSERT INTO pipeline_stages (id, position, name, probability) VALUES (?, ?, ?, ?)`,
		"A", 0, "Committed", 120)
	require.Error(t, err, "probability above 100 accepted")

	_, err = db.ExecContext(ctx,
		`INSERT INTO dataset_meta (id, fiscal_year, current_month) VALUES (2, 'FY2024', '2024-04')`)
	require.Error(t, err, "second dataset row accepted")
}

func TestKPIValuesCascade(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `INSERT INTO months (month, position) VALUES ('2024-04', 0)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO kpi_definitions (id, position, name, is_higher_better) VALUES ('revenue', 0, 'Revenue', 1)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx,
		`INSERT INTO kpi_values (month, kpi_id, actual, budget) VALUES ('2024-04', 'revenue', 95, 100)`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `DELETE FROM months WHERE month = '2024-04'`)
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM kpi_values`).Scan(&count))
	require.Zero(t, count)
}
