package mcp

import (
	"fmt"
	"time"

	"github.com/rpggio/vantage/internal/domain/action"
	"github.com/rpggio/vantage/internal/domain/notification"
)

type GetKPIOverviewParams struct {
	Month    string `json:"month,omitempty" jsonschema:"fiscal month key such as 2024-04; defaults to the latest closed month"`
	Category string `json:"category,omitempty" jsonschema:"only show KPIs of this category"`
}

type GetPipelineSummaryParams struct{}

type GetCommentThreadParams struct {
	TargetID string `json:"target_id" jsonschema:"the discussed object, e.g. kpi:revenue or action:<id>"`
}

type PostCommentParams struct {
	TargetID string `json:"target_id" jsonschema:"the discussed object, e.g. kpi:revenue or action:<id>"`
	ParentID string `json:"parent_id,omitempty" jsonschema:"comment being replied to"`
	AuthorID string `json:"author_id,omitempty" jsonschema:"author user id; defaults to the calling user"`
	Content  string `json:"content" jsonschema:"comment text; @Name mentions notify that user"`
	Subject  string `json:"subject,omitempty" jsonschema:"human readable name of the target used in notifications"`
}

type EditCommentParams struct {
	ID              string `json:"id"`
	EditorID        string `json:"editor_id,omitempty" jsonschema:"editing user id; defaults to the calling user"`
	Content         string `json:"content"`
	ExpectedVersion int64  `json:"expected_version,omitempty" jsonschema:"version the edit is based on; 0 skips the check"`
}

type ToggleReactionParams struct {
	CommentID string `json:"comment_id"`
	UserID    string `json:"user_id,omitempty" jsonschema:"reacting user id; defaults to the calling user"`
	Emoji     string `json:"emoji"`
}

type ListActionsParams struct {
	Assignee string `json:"assignee,omitempty"`
	Category string `json:"category,omitempty"`
	KPIID    string `json:"kpi_id,omitempty"`
	Month    string `json:"month,omitempty"`
	Status   string `json:"status,omitempty" jsonschema:"pending, in_progress, completed or overdue"`
	Priority string `json:"priority,omitempty" jsonschema:"high, medium or low"`
}

type CreateActionParams struct {
	Category   string `json:"category,omitempty"`
	TargetName string `json:"target_name,omitempty" jsonschema:"what the action is about, e.g. a KPI name"`
	Issue      string `json:"issue,omitempty"`
	Action     string `json:"action" jsonschema:"the corrective task"`
	Assignee   string `json:"assignee"`
	DueDate    string `json:"due_date,omitempty" jsonschema:"YYYY-MM-DD"`
	Priority   string `json:"priority,omitempty" jsonschema:"high, medium or low; defaults to medium"`
	CreatedBy  string `json:"created_by,omitempty" jsonschema:"creating user id; defaults to the calling user"`
}

type UpdateActionStatusParams struct {
	ID              string `json:"id"`
	Status          string `json:"status" jsonschema:"pending, in_progress or completed"`
	ActorID         string `json:"actor_id,omitempty"`
	ExpectedVersion int64  `json:"expected_version,omitempty"`
}

type AssignActionParams struct {
	ID       string `json:"id"`
	Assignee string `json:"assignee"`
	ActorID  string `json:"actor_id,omitempty"`
}

type GenerateActionsParams struct {
	Month    string `json:"month,omitempty" jsonschema:"month whose issues are turned into actions; defaults to the latest closed month"`
	Category string `json:"category,omitempty"`
	Assignee string `json:"assignee"`
	ActorID  string `json:"actor_id,omitempty"`
	DueDate  string `json:"due_date,omitempty" jsonschema:"YYYY-MM-DD; defaults to two weeks from now"`
}

type RemindDueActionsParams struct {
	WithinDays int `json:"within_days,omitempty" jsonschema:"reminder window in days; defaults to 3"`
}

type ListNotificationsParams struct {
	UserID     string `json:"user_id,omitempty" jsonschema:"inbox owner; defaults to the calling user"`
	UnreadOnly bool   `json:"unread_only,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Offset     int    `json:"offset,omitempty"`
}

type MarkNotificationReadParams struct {
	ID     string `json:"id"`
	UserID string `json:"user_id,omitempty"`
}

type MarkAllNotificationsReadParams struct {
	UserID string `json:"user_id,omitempty"`
}

type GetRecentActivityParams struct {
	TargetID     string `json:"target_id,omitempty"`
	ActorID      string `json:"actor_id,omitempty"`
	ActivityType string `json:"activity_type,omitempty"`
	Limit        int    `json:"limit,omitempty"`
	Offset       int    `json:"offset,omitempty"`
}

// Responses

type NotificationListResponse struct {
	Notifications []notification.Notification `json:"notifications"`
	UnreadCount   int                         `json:"unread_count"`
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

type MarkReadResponse struct {
	ID     string `json:"id"`
	IsRead bool   `json:"is_read"`
}

type GenerateActionsResponse struct {
	Issues  int                 `json:"issues"`
	Created []action.ActionItem `json:"created"`
}

const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", errInvalidArgument, s)
	}
	return t, nil
}
