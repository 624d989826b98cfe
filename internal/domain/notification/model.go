package notification

import "time"

// Kind is the event that produced a notification.
type Kind string

const (
	KindMention      Kind = "mention"
	KindReply        Kind = "reply"
	KindStatusChange Kind = "status_change"
	KindAssignment   Kind = "assignment"
	KindComment      Kind = "comment"
	KindReaction     Kind = "reaction"
	KindDueReminder  Kind = "due_reminder"
)

// IsValid reports whether k is a known kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindMention, KindReply, KindStatusChange, KindAssignment, KindComment, KindReaction, KindDueReminder:
		return true
	}
	return false
}

// Notification is a single in-app message addressed to one user.
// Once IsRead is set it is never cleared.
type Notification struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Type       Kind      `json:"type"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
	ActionID   string    `json:"action_id,omitempty"`
	CommentID  string    `json:"comment_id,omitempty"`
	FromUserID string    `json:"from_user_id,omitempty"`
}

// Payload carries the event context handed to Dispatch.
type Payload struct {
	FromUserID string
	FromName   string
	Recipients []string
	// Subject is the action title or thread target the event refers to.
	Subject    string
	ActionID   string
	CommentID  string
	FromStatus string
	ToStatus   string
	Emoji      string
	DueDate    time.Time
}

// ListOptions filters notification listings.
type ListOptions struct {
	UnreadOnly bool
	Limit      int
	Offset     int
}
