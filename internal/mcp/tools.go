package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rpggio/vantage/internal/dashboard"
	"github.com/rpggio/vantage/internal/domain/action"
	"github.com/rpggio/vantage/internal/domain/activity"
	"github.com/rpggio/vantage/internal/domain/comment"
	"github.com/rpggio/vantage/internal/domain/kpi"
	"github.com/rpggio/vantage/internal/domain/notification"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultReminderDays = 3

// addTool registers a tool whose handler returns a JSON-encodable value.
// Domain errors become tool results with IsError set and an APIError body.
func addTool[In any](server *sdkmcp.Server, name, description string, fn func(ctx context.Context, in In) (any, error)) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: name, Description: description},
		func(ctx context.Context, _ *sdkmcp.CallToolRequest, in In) (*sdkmcp.CallToolResult, any, error) {
			out, err := fn(ctx, in)
			if err != nil {
				return errorResult(err), nil, nil
			}
			res, err := jsonResult(out)
			return res, nil, err
		})
}

func jsonResult(v any) (*sdkmcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil
}

func errorResult(err error) *sdkmcp.CallToolResult {
	apiErr := MapError(err)
	data, mErr := json.Marshal(apiErr)
	if mErr != nil {
		data = []byte(apiErr.Error())
	}
	return &sdkmcp.CallToolResult{
		IsError: true,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}
}

func requireActor(ctx context.Context, explicit, field string) (string, error) {
	id := resolveActor(ctx, explicit)
	if id == "" {
		return "", fmt.Errorf("%w: %s required (or set the %s header / _meta.user_id)", errInvalidArgument, field, ActorHeader)
	}
	return id, nil
}

func registerTools(server *sdkmcp.Server, svc Services) {
	registerDashboardTools(server, svc)
	registerCommentTools(server, svc)
	registerActionTools(server, svc)
	registerNotificationTools(server, svc)
	registerActivityTools(server, svc)
}

func registerDashboardTools(server *sdkmcp.Server, svc Services) {
	addTool(server, "get_kpi_overview",
		"KPI dashboard for one fiscal month: current, previous, YTD and forecast values with status, month-over-month change, pipeline, layered revenue, target gap and detected issues",
		func(ctx context.Context, in GetKPIOverviewParams) (any, error) {
			return svc.Dashboard.Overview(ctx, dashboard.OverviewRequest{
				Month:    kpi.MonthKey(in.Month),
				Category: in.Category,
			})
		})

	addTool(server, "get_pipeline_summary",
		"Sales pipeline rollup per stage with gross, probability-weighted amount, quality and expected close months",
		func(ctx context.Context, _ GetPipelineSummaryParams) (any, error) {
			return svc.Dashboard.Pipeline(ctx)
		})
}

func registerCommentTools(server *sdkmcp.Server, svc Services) {
	addTool(server, "get_comment_thread",
		"Threaded discussion on a target, replies nested under parents in posting order",
		func(ctx context.Context, in GetCommentThreadParams) (any, error) {
			return svc.Comments.Thread(ctx, in.TargetID)
		})

	addTool(server, "post_comment",
		"Post a comment or reply. @Name mentions notify those users; replies notify the parent author",
		func(ctx context.Context, in PostCommentParams) (any, error) {
			author, err := requireActor(ctx, in.AuthorID, "author_id")
			if err != nil {
				return nil, err
			}
			req := comment.PostRequest{
				TargetID: in.TargetID,
				AuthorID: author,
				Content:  in.Content,
				Subject:  in.Subject,
			}
			if in.ParentID != "" {
				parent := in.ParentID
				req.ParentID = &parent
			}
			return svc.Comments.Post(ctx, req)
		})

	addTool(server, "edit_comment",
		"Edit your own comment. Newly added mentions are notified",
		func(ctx context.Context, in EditCommentParams) (any, error) {
			editor, err := requireActor(ctx, in.EditorID, "editor_id")
			if err != nil {
				return nil, err
			}
			return svc.Comments.Edit(ctx, comment.EditRequest{
				ID:              in.ID,
				EditorID:        editor,
				Content:         in.Content,
				ExpectedVersion: in.ExpectedVersion,
			})
		})

	addTool(server, "toggle_reaction",
		"Add the emoji reaction if absent, remove it if present",
		func(ctx context.Context, in ToggleReactionParams) (any, error) {
			userID, err := requireActor(ctx, in.UserID, "user_id")
			if err != nil {
				return nil, err
			}
			return svc.Comments.React(ctx, comment.ReactRequest{
				CommentID: in.CommentID,
				UserID:    userID,
				Emoji:     in.Emoji,
			})
		})
}

func registerActionTools(server *sdkmcp.Server, svc Services) {
	addTool(server, "list_actions",
		"List action items with their effective status (overdue is derived from the due date)",
		func(ctx context.Context, in ListActionsParams) (any, error) {
			opts := action.ListOptions{Filter: action.Filter{
				Assignee: in.Assignee,
				Category: in.Category,
				KPIID:    in.KPIID,
				Month:    in.Month,
			}}
			if in.Status != "" {
				st := action.Status(in.Status)
				opts.Status = &st
			}
			if in.Priority != "" {
				p := action.Priority(in.Priority)
				opts.Priority = &p
			}
			return svc.Actions.List(ctx, opts)
		})

	addTool(server, "create_action",
		"Create a pending action item and notify the assignee",
		func(ctx context.Context, in CreateActionParams) (any, error) {
			due, err := parseDate(in.DueDate)
			if err != nil {
				return nil, err
			}
			return svc.Actions.Create(ctx, action.CreateRequest{
				Category:   in.Category,
				TargetName: in.TargetName,
				Issue:      in.Issue,
				Action:     in.Action,
				Assignee:   in.Assignee,
				DueDate:    due,
				Priority:   action.Priority(in.Priority),
				CreatedBy:  resolveActor(ctx, in.CreatedBy),
			})
		})

	addTool(server, "update_action_status",
		"Move an action to pending, in_progress or completed and notify its watchers",
		func(ctx context.Context, in UpdateActionStatusParams) (any, error) {
			return svc.Actions.UpdateStatus(ctx, action.StatusRequest{
				ID:              in.ID,
				Status:          action.Status(in.Status),
				ActorID:         resolveActor(ctx, in.ActorID),
				ExpectedVersion: in.ExpectedVersion,
			})
		})

	addTool(server, "assign_action",
		"Reassign an action and notify the new assignee",
		func(ctx context.Context, in AssignActionParams) (any, error) {
			return svc.Actions.Assign(ctx, action.AssignRequest{
				ID:       in.ID,
				Assignee: in.Assignee,
				ActorID:  resolveActor(ctx, in.ActorID),
			})
		})

	addTool(server, "generate_actions",
		"Create one action per warning or critical KPI of the month, skipping KPIs that already have an open action",
		func(ctx context.Context, in GenerateActionsParams) (any, error) {
			due, err := parseDate(in.DueDate)
			if err != nil {
				return nil, err
			}
			issues, err := svc.Dashboard.Issues(ctx, dashboard.OverviewRequest{
				Month:    kpi.MonthKey(in.Month),
				Category: in.Category,
			})
			if err != nil {
				return nil, err
			}
			created, err := svc.Actions.GenerateFromIssues(ctx, issues, action.GenerateOptions{
				Assignee: in.Assignee,
				ActorID:  resolveActor(ctx, in.ActorID),
				DueDate:  due,
			})
			if err != nil {
				return nil, err
			}
			if created == nil {
				created = []action.ActionItem{}
			}
			return GenerateActionsResponse{Issues: len(issues), Created: created}, nil
		})

	addTool(server, "remind_due_actions",
		"Send due reminders for open actions due within the window",
		func(ctx context.Context, in RemindDueActionsParams) (any, error) {
			days := in.WithinDays
			if days <= 0 {
				days = defaultReminderDays
			}
			sent, err := svc.Actions.RemindDue(ctx, time.Duration(days)*24*time.Hour)
			if err != nil {
				return nil, err
			}
			if sent == nil {
				sent = []notification.Notification{}
			}
			return NotificationListResponse{Notifications: sent}, nil
		})
}

func registerNotificationTools(server *sdkmcp.Server, svc Services) {
	addTool(server, "list_notifications",
		"List a user's notifications, newest first, with the unread count",
		func(ctx context.Context, in ListNotificationsParams) (any, error) {
			userID, err := requireActor(ctx, in.UserID, "user_id")
			if err != nil {
				return nil, err
			}
			list, err := svc.Notifications.ListForUser(ctx, userID, notification.ListOptions{
				UnreadOnly: in.UnreadOnly,
				Limit:      in.Limit,
				Offset:     in.Offset,
			})
			if err != nil {
				return nil, err
			}
			unread, err := svc.Notifications.UnreadCount(ctx, userID)
			if err != nil {
				return nil, err
			}
			if list == nil {
				list = []notification.Notification{}
			}
			return NotificationListResponse{Notifications: list, UnreadCount: unread}, nil
		})

	addTool(server, "mark_notification_read",
		"Mark one notification as read",
		func(ctx context.Context, in MarkNotificationReadParams) (any, error) {
			userID, err := requireActor(ctx, in.UserID, "user_id")
			if err != nil {
				return nil, err
			}
			if err := svc.Notifications.MarkRead(ctx, userID, in.ID); err != nil {
				return nil, err
			}
			return MarkReadResponse{ID: in.ID, IsRead: true}, nil
		})

	addTool(server, "mark_all_notifications_read",
		"Mark every unread notification of a user as read",
		func(ctx context.Context, in MarkAllNotificationsReadParams) (any, error) {
			userID, err := requireActor(ctx, in.UserID, "user_id")
			if err != nil {
				return nil, err
			}
			n, err := svc.Notifications.MarkAllRead(ctx, userID)
			if err != nil {
				return nil, err
			}
			return MarkAllReadResponse{Updated: n}, nil
		})
}

func registerActivityTools(server *sdkmcp.Server, svc Services) {
	addTool(server, "get_recent_activity",
		"Recent audit log entries for comments and actions, newest first",
		func(ctx context.Context, in GetRecentActivityParams) (any, error) {
			opts := activity.ListActivityOptions{
				TargetID: in.TargetID,
				ActorID:  in.ActorID,
				Limit:    in.Limit,
				Offset:   in.Offset,
			}
			if in.ActivityType != "" {
				t := activity.ActivityType(in.ActivityType)
				opts.ActivityType = &t
			}
			entries, err := svc.Activity.GetRecentActivity(ctx, opts)
			if err != nil {
				return nil, err
			}
			if entries == nil {
				entries = []activity.ActivityEntry{}
			}
			return entries, nil
		})
}
