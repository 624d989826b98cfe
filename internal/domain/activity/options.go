package activity

// ListActivityOptions provides filtering options for listing activity.
type ListActivityOptions struct {
	TargetID     string
	CommentID    *string
	ActionID     *string
	ActorID      string
	ActivityType *ActivityType
	Limit        int
	Offset       int
}
