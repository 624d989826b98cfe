package comment

import "time"

// Comment is a flat, parent-referenced discussion entry attached to a target
// such as a KPI issue or an action item.
type Comment struct {
	ID        string     `json:"id"`
	TargetID  string     `json:"target_id"`
	ParentID  *string    `json:"parent_id,omitempty"`
	AuthorID  string     `json:"author_id"`
	Content   string     `json:"content"`
	Mentions  []string   `json:"mentions"`
	Reactions []Reaction `json:"reactions"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	IsEdited  bool       `json:"is_edited"`
	Version   int64      `json:"version"`
}

// Reaction is an emoji with the set of users who reacted with it.
type Reaction struct {
	Emoji   string   `json:"emoji"`
	UserIDs []string `json:"user_ids"`
}

// Node is a comment with its ordered replies.
type Node struct {
	Comment
	Replies []*Node `json:"replies"`
	Depth   int     `json:"depth"`
}
