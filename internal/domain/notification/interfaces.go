package notification

import "context"

// Repository provides persistence operations for notifications.
type Repository interface {
	Save(ctx context.Context, n *Notification) error
	Get(ctx context.Context, id string) (*Notification, error)
	ListForUser(ctx context.Context, userID string, opts ListOptions) ([]Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	CountUnread(ctx context.Context, userID string) (int, error)
}
