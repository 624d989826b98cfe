package notification

// MarkRead returns a copy of list with the notification id marked read. The
// second result reports whether id was present.
func MarkRead(list []Notification, id string) ([]Notification, bool) {
	out := make([]Notification, len(list))
	copy(out, list)
	for i := range out {
		if out[i].ID == id {
			out[i].IsRead = true
			return out, true
		}
	}
	return out, false
}

// MarkAllRead returns a copy of list with every notification of userID marked read.
func MarkAllRead(list []Notification, userID string) []Notification {
	out := make([]Notification, len(list))
	copy(out, list)
	for i := range out {
		if out[i].UserID == userID {
			out[i].IsRead = true
		}
	}
	return out
}

// UnreadCount counts the unread notifications of userID.
func UnreadCount(list []Notification, userID string) int {
	n := 0
	for _, item := range list {
		if item.UserID == userID && !item.IsRead {
			n++
		}
	}
	return n
}
