package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rpggio/vantage/internal/domain/action"
	"github.com/rpggio/vantage/internal/repository"
)

// ActionRepository implements action.Repository for SQLite
type ActionRepository struct {
	db *DB
}

// NewActionRepository creates a new ActionRepository
func NewActionRepository(db *DB) *ActionRepository {
	return &ActionRepository{db: db}
}

const actionColumns = `
	id, category, target_name, issue, action, assignee, due_date, status,
	priority, created_by, kpi_id, month, metrics, created_at, updated_at, version
`

// Create inserts a new action item
func (r *ActionRepository) Create(ctx context.Context, item *action.ActionItem) error {
	metrics, err := encodeMetrics(item.Metrics)
	if err != nil {
		return err
	}

	query := `INSERT INTO action_items (` + actionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		item.ID,
		item.Category,
		item.TargetName,
		item.Issue,
		item.Action,
		item.Assignee,
		nullTime(item),
		item.Status,
		item.Priority,
		item.CreatedBy,
		item.KPIID,
		item.Month,
		metrics,
		item.CreatedAt,
		item.UpdatedAt,
		item.Version,
	)
	if err != nil {
		return writeError("create action item", err)
	}
	return nil
}

// Get retrieves an action item by ID
func (r *ActionRepository) Get(ctx context.Context, id string) (*action.ActionItem, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+actionColumns+` FROM action_items WHERE id = ?`, id)
	item, err := scanAction(row)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get action item: %w", err)
	}
	return item, nil
}

// Update replaces the mutable fields when the stored version matches
// expectedVersion
func (r *ActionRepository) Update(ctx context.Context, item *action.ActionItem, expectedVersion int64) error {
	metrics, err := encodeMetrics(item.Metrics)
	if err != nil {
		return err
	}

	query := `
		UPDATE action_items
		SET category = ?, target_name = ?, issue = ?, action = ?, assignee = ?,
			due_date = ?, status = ?, priority = ?, metrics = ?, updated_at = ?, version = ?
		WHERE id = ? AND version = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		item.Category,
		item.TargetName,
		item.Issue,
		item.Action,
		item.Assignee,
		nullTime(item),
		item.Status,
		item.Priority,
		metrics,
		item.UpdatedAt,
		item.Version,
		item.ID,
		expectedVersion,
	)
	if err != nil {
		return writeError("update action item", err)
	}
	return r.db.checkVersioned(ctx, result, "action_items", item.ID)
}

// List returns action items matching the filter, oldest first
func (r *ActionRepository) List(ctx context.Context, filter action.Filter) ([]action.ActionItem, error) {
	query := `SELECT ` + actionColumns + ` FROM action_items`

	var args []interface{}
	var conditions []string

	if filter.Assignee != "" {
		conditions = append(conditions, "assignee = ?")
		args = append(args, filter.Assignee)
	}
	if filter.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.KPIID != "" {
		conditions = append(conditions, "kpi_id = ?")
		args = append(args, filter.KPIID)
	}
	if filter.Month != "" {
		conditions = append(conditions, "month = ?")
		args = append(args, filter.Month)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at, rowid"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list action items: %w", err)
	}
	defer rows.Close()

	var items []action.ActionItem
	for rows.Next() {
		item, err := scanAction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan action item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating action rows: %w", err)
	}
	return items, nil
}

func scanAction(row rowScanner) (*action.ActionItem, error) {
	var (
		item    action.ActionItem
		dueDate sql.NullTime
		metrics sql.NullString
	)
	if err := row.Scan(
		&item.ID,
		&item.Category,
		&item.TargetName,
		&item.Issue,
		&item.Action,
		&item.Assignee,
		&dueDate,
		&item.Status,
		&item.Priority,
		&item.CreatedBy,
		&item.KPIID,
		&item.Month,
		&metrics,
		&item.CreatedAt,
		&item.UpdatedAt,
		&item.Version,
	); err != nil {
		return nil, err
	}
	if dueDate.Valid {
		item.DueDate = dueDate.Time
	}
	if metrics.Valid && metrics.String != "" {
		var m action.Metrics
		if err := json.Unmarshal([]byte(metrics.String), &m); err != nil {
			return nil, fmt.Errorf("decoding metrics of %s: %w", item.ID, err)
		}
		item.Metrics = &m
	}
	return &item, nil
}

func nullTime(item *action.ActionItem) sql.NullTime {
	return sql.NullTime{Time: item.DueDate, Valid: !item.DueDate.IsZero()}
}

func encodeMetrics(m *action.Metrics) (sql.NullString, error) {
	if m == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encoding metrics: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
