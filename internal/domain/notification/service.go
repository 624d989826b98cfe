package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rpggio/vantage/internal/repository"
)

// Service persists dispatched notifications and their read state.
type Service struct {
	repo       Repository
	dispatcher *Dispatcher
	logger     *slog.Logger
}

// NewService creates a new notification service.
func NewService(repo Repository, dispatcher *Dispatcher, logger *slog.Logger) *Service {
	if dispatcher == nil {
		dispatcher = NewDispatcher()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, dispatcher: dispatcher, logger: logger}
}

// Publish dispatches an event and stores the resulting notifications.
func (s *Service) Publish(ctx context.Context, kind Kind, p Payload) ([]Notification, error) {
	out, err := s.dispatcher.Dispatch(kind, p)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if err := s.repo.Save(ctx, &out[i]); err != nil {
			return nil, fmt.Errorf("saving notification: %w", err)
		}
	}
	if len(out) > 0 {
		s.logger.Debug("notifications published", "kind", kind, "count", len(out))
	}
	return out, nil
}

// ListForUser returns the notifications of a user, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	list, err := s.repo.ListForUser(ctx, userID, opts)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	return list, nil
}

// UnreadCount returns the number of unread notifications for a user.
func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkRead marks one of the user's notifications read. Marking an already
// read notification is a no-op.
func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("getting notification: %w", err)
	}
	if n.UserID != userID {
		return ErrNotificationNotFound
	}
	if n.IsRead {
		return nil
	}
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	return nil
}

// MarkAllRead marks every notification of the user read and returns how many changed.
func (s *Service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, ErrInvalidInput
	}
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("marking notifications read: %w", err)
	}
	return n, nil
}
