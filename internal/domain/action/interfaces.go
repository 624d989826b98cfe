package action

import (
	"context"

	"github.com/rpggio/vantage/internal/domain/activity"
	"github.com/rpggio/vantage/internal/domain/notification"
)

// Repository provides persistence operations for action items.
type Repository interface {
	Create(ctx context.Context, item *ActionItem) error
	Get(ctx context.Context, id string) (*ActionItem, error)
	Update(ctx context.Context, item *ActionItem, expectedVersion int64) error
	List(ctx context.Context, filter Filter) ([]ActionItem, error)
}

// Notifier publishes workflow notifications.
type Notifier interface {
	Publish(ctx context.Context, kind notification.Kind, p notification.Payload) ([]notification.Notification, error)
}

// ActivityLogger records audit entries.
type ActivityLogger interface {
	LogActivity(ctx context.Context, entry *activity.ActivityEntry) error
}
