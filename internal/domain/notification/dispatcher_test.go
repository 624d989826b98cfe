package notification_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/rpggio/vantage/internal/domain/notification"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)

func testDispatcher() *notification.Dispatcher {
	n := 0
	return &notification.Dispatcher{
		Clock: func() time.Time { return fixedNow },
		IDs: func() string {
			n++
			return fmt.Sprintf("n%d", n)
		},
	}
}

func TestDispatch_OneRecordPerRecipient(t *testing.T) {
	d := testDispatcher()

	out, err := d.Dispatch(notification.KindMention, notification.Payload{
		FromUserID: "u1",
		Recipients: []string{"u2", "u3", "u2", "u1", ""},
		CommentID:  "c1",
		Subject:    "Revenue 2024-05",
	})
	require.NoError(t, err)
	require.Len(t, out, 2)

	require.Equal(t, "u2", out[0].UserID)
	require.Equal(t, "u3", out[1].UserID)
	for _, n := range out {
		require.False(t, n.IsRead)
		require.Equal(t, fixedNow, n.CreatedAt)
		require.Equal(t, notification.KindMention, n.Type)
		require.Equal(t, "c1", n.CommentID)
		require.Equal(t, "u1", n.FromUserID)
	}
	require.NotEqual(t, out[0].ID, out[1].ID)
}

func TestDispatch_UnknownKind(t *testing.T) {
	_, err := testDispatcher().Dispatch("broadcast", notification.Payload{Recipients: []string{"u1"}})
	require.ErrorIs(t, err, notification.ErrUnknownKind)
}

func TestDispatch_NoRecipients(t *testing.T) {
	out, err := testDispatcher().Dispatch(notification.KindReply, notification.Payload{
		FromUserID: "u1",
		Recipients: []string{"u1"},
	})
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestNotifyHelpers(t *testing.T) {
	d := testDispatcher()

	status := d.NotifyStatusChange("a1", "Cut logistics cost", "pending", "in_progress", "u1", []string{"u1", "u2"})
	require.Len(t, status, 1)
	require.Equal(t, "a1", status[0].ActionID)
	require.Contains(t, status[0].Message, "pending")
	require.Contains(t, status[0].Message, "in_progress")

	assigned := d.NotifyAssignment("a1", "Cut logistics cost", "u1", "u3")
	require.Len(t, assigned, 1)
	require.Equal(t, notification.KindAssignment, assigned[0].Type)

	due := d.NotifyDueReminder("a1", "Cut logistics cost", "u3", fixedNow.AddDate(0, 0, 2))
	require.Len(t, due, 1)
	require.Contains(t, due[0].Message, "2024-06-05")

	reaction := d.NotifyReaction("u2", "u2", "c1", "👍")
	require.Empty(t, reaction)
}

func TestMarkAllRead_Idempotent(t *testing.T) {
	list := []notification.Notification{
		{ID: "n1", UserID: "u1"},
		{ID: "n2", UserID: "u2"},
		{ID: "n3", UserID: "u1", IsRead: true},
	}

	once := notification.MarkAllRead(list, "u1")
	twice := notification.MarkAllRead(once, "u1")
	require.Equal(t, once, twice)
	require.Equal(t, 0, notification.UnreadCount(twice, "u1"))
	require.Equal(t, 1, notification.UnreadCount(twice, "u2"))

	// Input is left untouched.
	require.False(t, list[0].IsRead)
}

func TestMarkRead_Monotonic(t *testing.T) {
	list := []notification.Notification{{ID: "n1", UserID: "u1", IsRead: true}, {ID: "n2", UserID: "u1"}}

	out, ok := notification.MarkRead(list, "n1")
	require.True(t, ok)
	require.True(t, out[0].IsRead)

	out, ok = notification.MarkRead(out, "n2")
	require.True(t, ok)
	require.Equal(t, 0, notification.UnreadCount(out, "u1"))

	_, ok = notification.MarkRead(out, "missing")
	require.False(t, ok)
}
