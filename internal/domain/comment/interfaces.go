package comment

import (
	"context"

	"github.com/rpggio/vantage/internal/domain/activity"
	"github.com/rpggio/vantage/internal/domain/notification"
	"github.com/rpggio/vantage/internal/domain/user"
)

// Repository provides persistence operations for comments.
type Repository interface {
	Create(ctx context.Context, c *Comment) error
	Get(ctx context.Context, id string) (*Comment, error)
	Update(ctx context.Context, c *Comment, expectedVersion int64) error
	ListByTarget(ctx context.Context, targetID string) ([]Comment, error)
}

// DirectoryLoader provides the user directory used for mention resolution.
type DirectoryLoader interface {
	LoadDirectory(ctx context.Context) (*user.Directory, error)
}

// Notifier publishes workflow notifications.
type Notifier interface {
	Publish(ctx context.Context, kind notification.Kind, p notification.Payload) ([]notification.Notification, error)
}

// ActivityLogger records audit entries.
type ActivityLogger interface {
	LogActivity(ctx context.Context, entry *activity.ActivityEntry) error
}
