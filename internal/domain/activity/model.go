package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeCommentPosted       ActivityType = "comment_posted"
	TypeCommentEdited       ActivityType = "comment_edited"
	TypeReactionToggled     ActivityType = "reaction_toggled"
	TypeActionCreated       ActivityType = "action_created"
	TypeActionStatusChanged ActivityType = "action_status_changed"
	TypeActionAssigned      ActivityType = "action_assigned"
)

// IsValid reports whether t is a known activity type.
func (t ActivityType) IsValid() bool {
	switch t {
	case TypeCommentPosted, TypeCommentEdited, TypeReactionToggled,
		TypeActionCreated, TypeActionStatusChanged, TypeActionAssigned:
		return true
	}
	return false
}

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	TargetID     string       `json:"target_id"`
	CommentID    *string      `json:"comment_id,omitempty"`
	ActionID     *string      `json:"action_id,omitempty"`
	ActorID      string       `json:"actor_id"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}
