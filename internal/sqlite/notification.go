package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpggio/vantage/internal/domain/notification"
	"github.com/rpggio/vantage/internal/repository"
)

// NotificationRepository implements notification.Repository for SQLite
type NotificationRepository struct {
	db *DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

const notificationColumns = `
	id, user_id, type, title, message, is_read, created_at,
	action_id, comment_id, from_user_id
`

// Save inserts a notification
func (r *NotificationRepository) Save(ctx context.Context, n *notification.Notification) error {
	query := `INSERT INTO notifications (` + notificationColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		n.ID,
		n.UserID,
		n.Type,
		n.Title,
		n.Message,
		n.IsRead,
		n.CreatedAt,
		n.ActionID,
		n.CommentID,
		n.FromUserID,
	)
	if err != nil {
		return writeError("save notification", err)
	}
	return nil
}

// Get retrieves a notification by ID
func (r *NotificationRepository) Get(ctx context.Context, id string) (*notification.Notification, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, id)
	n, err := scanNotification(row)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return n, nil
}

// ListForUser returns a user's notifications, newest first
func (r *NotificationRepository) ListForUser(ctx context.Context, userID string, opts notification.ListOptions) ([]notification.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = ?`
	args := []interface{}{userID}
	if opts.UnreadOnly {
		query += " AND is_read = 0"
	}
	query += " ORDER BY created_at DESC, rowid DESC"
	query, args = paginate(query, args, opts.Limit, opts.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var out []notification.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification rows: %w", err)
	}
	return out, nil
}

// MarkRead sets the read flag of one notification
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// MarkAllRead sets the read flag on every unread notification of a user and
// reports how many changed
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// CountUnread counts a user's unread notifications
func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func scanNotification(row rowScanner) (*notification.Notification, error) {
	var n notification.Notification
	if err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.Type,
		&n.Title,
		&n.Message,
		&n.IsRead,
		&n.CreatedAt,
		&n.ActionID,
		&n.CommentID,
		&n.FromUserID,
	); err != nil {
		return nil, err
	}
	return &n, nil
}
