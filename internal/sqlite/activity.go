package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/vantage/internal/domain/activity"
)

// ActivityRepository implements activity.Repository for SQLite
type ActivityRepository struct {
	db *DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Log inserts a new activity entry
func (r *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO activity_log (
			target_id, comment_id, action_id, actor_id,
			activity_type, summary, details, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		entry.TargetID,
		entry.CommentID,
		entry.ActionID,
		entry.ActorID,
		entry.ActivityType,
		entry.Summary,
		entry.Details,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		entry.ID = id
	}
	entry.CreatedAt = createdAt

	return nil
}

// List returns activity entries matching the given filters, newest first
func (r *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	query := `
		SELECT
			id, target_id, comment_id, action_id, actor_id,
			activity_type, summary, details, created_at
		FROM activity_log
	`

	var args []interface{}
	var conditions []string

	if opts.TargetID != "" {
		conditions = append(conditions, "target_id = ?")
		args = append(args, opts.TargetID)
	}
	if opts.CommentID != nil {
		conditions = append(conditions, "comment_id = ?")
		args = append(args, *opts.CommentID)
	}
	if opts.ActionID != nil {
		conditions = append(conditions, "action_id = ?")
		args = append(args, *opts.ActionID)
	}
	if opts.ActorID != "" {
		conditions = append(conditions, "actor_id = ?")
		args = append(args, opts.ActorID)
	}
	if opts.ActivityType != nil {
		conditions = append(conditions, "activity_type = ?")
		args = append(args, *opts.ActivityType)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY created_at DESC, id DESC"
	query, args = paginate(query, args, opts.Limit, opts.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	var entries []activity.ActivityEntry
	for rows.Next() {
		var entry activity.ActivityEntry
		var commentID sql.NullString
		var actionID sql.NullString
		if err := rows.Scan(
			&entry.ID,
			&entry.TargetID,
			&commentID,
			&actionID,
			&entry.ActorID,
			&entry.ActivityType,
			&entry.Summary,
			&entry.Details,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity entry: %w", err)
		}
		if commentID.Valid {
			entry.CommentID = &commentID.String
		}
		if actionID.Valid {
			entry.ActionID = &actionID.String
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity rows: %w", err)
	}

	return entries, nil
}

// paginate appends LIMIT/OFFSET clauses. SQLite requires a LIMIT before OFFSET.
func paginate(query string, args []interface{}, limit, offset int) (string, []interface{}) {
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	} else if offset > 0 {
		query += " LIMIT -1"
	}
	if offset > 0 {
		query += " OFFSET ?"
		args = append(args, offset)
	}
	return query, args
}
