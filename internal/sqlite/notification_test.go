package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/vantage/internal/domain/notification"
	"github.com/rpggio/vantage/internal/repository"
	"github.com/stretchr/testify/require"
)

func newNotification(id, userID string, at time.Time) *notification.Notification {
	return &notification.Notification{
		ID:         id,
		UserID:     userID,
		Type:       notification.KindMention,
		Title:      "Mentioned",
		Message:    "Alice mentioned you",
		CreatedAt:  at,
		CommentID:  "c1",
		FromUserID: "u1",
	}
}

func TestNotificationRepository_SaveGetList(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewNotificationRepository(db)
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(ctx, newNotification("n1", "u2", base)))
	require.NoError(t, repo.Save(ctx, newNotification("n2", "u2", base.Add(time.Minute))))
	require.NoError(t, repo.Save(ctx, newNotification("n3", "u3", base)))

	got, err := repo.Get(ctx, "n1")
	require.NoError(t, err)
	require.Equal(t, notification.KindMention, got.Type)
	require.Equal(t, "c1", got.CommentID)
	require.Empty(t, got.ActionID)
	require.False(t, got.IsRead)

	list, err := repo.ListForUser(ctx, "u2", notification.ListOptions{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "n2", list[0].ID)

	page, err := repo.ListForUser(ctx, "u2", notification.ListOptions{Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, "n1", page[0].ID)

	_, err = repo.Get(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.ErrorIs(t, repo.Save(ctx, newNotification("n1", "u2", base)), repository.ErrConflict)
}

func TestNotificationRepository_ReadState(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewNotificationRepository(db)
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	for _, id := range []string{"n1", "n2", "n3"} {
		require.NoError(t, repo.Save(ctx, newNotification(id, "u2", base)))
	}

	count, err := repo.CountUnread(ctx, "u2")
	require.NoError(t, err)
	require.Equal(t, 3, count)

	require.NoError(t, repo.MarkRead(ctx, "n1"))
	require.ErrorIs(t, repo.MarkRead(ctx, "missing"), repository.ErrNotFound)

	unread, err := repo.ListForUser(ctx, "u2", notification.ListOptions{UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, unread, 2)

	changed, err := repo.MarkAllRead(ctx, "u2")
	require.NoError(t, err)
	require.Equal(t, int64(2), changed)

	changed, err = repo.MarkAllRead(ctx, "u2")
	require.NoError(t, err)
	require.Zero(t, changed)

	count, err = repo.CountUnread(ctx, "u2")
	require.NoError(t, err)
	require.Zero(t, count)
}
