package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/rpggio/vantage/internal/dashboard"
	"github.com/rpggio/vantage/internal/domain/action"
	"github.com/rpggio/vantage/internal/domain/activity"
	"github.com/rpggio/vantage/internal/domain/comment"
	"github.com/rpggio/vantage/internal/domain/kpi"
	"github.com/rpggio/vantage/internal/domain/notification"
	"github.com/rpggio/vantage/internal/domain/pipeline"
	"github.com/rpggio/vantage/internal/repository"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

type dashboardStub struct {
	overviewFn func(context.Context, dashboard.OverviewRequest) (*dashboard.Overview, error)
	pipelineFn func(context.Context) (*dashboard.PipelineView, error)
	issuesFn   func(context.Context, dashboard.OverviewRequest) ([]kpi.Issue, error)
}

func (d dashboardStub) Overview(ctx context.Context, req dashboard.OverviewRequest) (*dashboard.Overview, error) {
	return d.overviewFn(ctx, req)
}
func (d dashboardStub) Pipeline(ctx context.Context) (*dashboard.PipelineView, error) {
	return d.pipelineFn(ctx)
}
func (d dashboardStub) Issues(ctx context.Context, req dashboard.OverviewRequest) ([]kpi.Issue, error) {
	return d.issuesFn(ctx, req)
}

type commentStub struct {
	postFn   func(context.Context, comment.PostRequest) (*comment.Comment, error)
	editFn   func(context.Context, comment.EditRequest) (*comment.Comment, error)
	reactFn  func(context.Context, comment.ReactRequest) (*comment.Comment, error)
	threadFn func(context.Context, string) (*comment.Thread, error)
}

func (c commentStub) Post(ctx context.Context, req comment.PostRequest) (*comment.Comment, error) {
	return c.postFn(ctx, req)
}
func (c commentStub) Edit(ctx context.Context, req comment.EditRequest) (*comment.Comment, error) {
	return c.editFn(ctx, req)
}
func (c commentStub) React(ctx context.Context, req comment.ReactRequest) (*comment.Comment, error) {
	return c.reactFn(ctx, req)
}
func (c commentStub) Thread(ctx context.Context, targetID string) (*comment.Thread, error) {
	return c.threadFn(ctx, targetID)
}

type actionStub struct {
	createFn   func(context.Context, action.CreateRequest) (*action.ActionItem, error)
	statusFn   func(context.Context, action.StatusRequest) (*action.ActionItem, error)
	assignFn   func(context.Context, action.AssignRequest) (*action.ActionItem, error)
	listFn     func(context.Context, action.ListOptions) ([]action.View, error)
	generateFn func(context.Context, []kpi.Issue, action.GenerateOptions) ([]action.ActionItem, error)
	remindFn   func(context.Context, time.Duration) ([]notification.Notification, error)
}

func (a actionStub) Create(ctx context.Context, req action.CreateRequest) (*action.ActionItem, error) {
	return a.createFn(ctx, req)
}
func (a actionStub) UpdateStatus(ctx context.Context, req action.StatusRequest) (*action.ActionItem, error) {
	return a.statusFn(ctx, req)
}
func (a actionStub) Assign(ctx context.Context, req action.AssignRequest) (*action.ActionItem, error) {
	return a.assignFn(ctx, req)
}
func (a actionStub) List(ctx context.Context, opts action.ListOptions) ([]action.View, error) {
	return a.listFn(ctx, opts)
}
func (a actionStub) GenerateFromIssues(ctx context.Context, issues []kpi.Issue, opts action.GenerateOptions) ([]action.ActionItem, error) {
	return a.generateFn(ctx, issues, opts)
}
func (a actionStub) RemindDue(ctx context.Context, within time.Duration) ([]notification.Notification, error) {
	return a.remindFn(ctx, within)
}

type notificationStub struct {
	listFn    func(context.Context, string, notification.ListOptions) ([]notification.Notification, error)
	unreadFn  func(context.Context, string) (int, error)
	markFn    func(context.Context, string, string) error
	markAllFn func(context.Context, string) (int64, error)
}

func (n notificationStub) ListForUser(ctx context.Context, userID string, opts notification.ListOptions) ([]notification.Notification, error) {
	return n.listFn(ctx, userID, opts)
}
func (n notificationStub) UnreadCount(ctx context.Context, userID string) (int, error) {
	return n.unreadFn(ctx, userID)
}
func (n notificationStub) MarkRead(ctx context.Context, userID, id string) error {
	return n.markFn(ctx, userID, id)
}
func (n notificationStub) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return n.markAllFn(ctx, userID)
}

type activityStub struct {
	listFn func(context.Context, activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

func (a activityStub) GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	return a.listFn(ctx, opts)
}

// connect starts the server on in-memory transports and returns a client session.
func connect(t *testing.T, svc Services) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server := NewServer(Config{Services: svc, Version: "test"})
	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()

	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		session.Close()
		serverSession.Wait()
	})
	return session
}

func callTool(t *testing.T, session *sdkmcp.ClientSession, params *sdkmcp.CallToolParams) (string, bool) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := session.CallTool(ctx, params)
	require.NoError(t, err, "CallTool %s failed", params.Name)
	require.NotEmpty(t, result.Content)

	text, ok := result.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok, "tool %s returned %T", params.Name, result.Content[0])
	return text.Text, result.IsError
}

func call(t *testing.T, session *sdkmcp.ClientSession, name string, args map[string]any) json.RawMessage {
	t.Helper()
	text, isErr := callTool(t, session, &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.False(t, isErr, "tool %s returned error: %s", name, text)
	return json.RawMessage(text)
}

func callError(t *testing.T, session *sdkmcp.ClientSession, name string, args map[string]any) APIError {
	t.Helper()
	text, isErr := callTool(t, session, &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.True(t, isErr, "tool %s unexpectedly succeeded: %s", name, text)

	var apiErr APIError
	require.NoError(t, json.Unmarshal([]byte(text), &apiErr))
	return apiErr
}

func TestServer_ListsToolsAndDocs(t *testing.T) {
	session := connect(t, Services{})
	ctx := context.Background()

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	require.Equal(t, []string{
		"assign_action",
		"create_action",
		"edit_comment",
		"generate_actions",
		"get_comment_thread",
		"get_kpi_overview",
		"get_pipeline_summary",
		"get_recent_activity",
		"list_actions",
		"list_notifications",
		"mark_all_notifications_read",
		"mark_notification_read",
		"post_comment",
		"remind_due_actions",
		"toggle_reaction",
		"update_action_status",
	}, names)

	res, err := session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "vantage://docs/concepts"})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	require.Contains(t, res.Contents[0].Text, "Variance and status")
}

func TestTools_Overview(t *testing.T) {
	var got dashboard.OverviewRequest
	session := connect(t, Services{Dashboard: dashboardStub{
		overviewFn: func(_ context.Context, req dashboard.OverviewRequest) (*dashboard.Overview, error) {
			got = req
			return &dashboard.Overview{FiscalYear: "FY2024", Month: "2024-05"}, nil
		},
	}})

	raw := call(t, session, "get_kpi_overview", map[string]any{"month": "2024-05", "category": "sales"})
	require.Equal(t, dashboard.OverviewRequest{Month: "2024-05", Category: "sales"}, got)

	var overview dashboard.Overview
	require.NoError(t, json.Unmarshal(raw, &overview))
	require.Equal(t, "FY2024", overview.FiscalYear)
}

func TestTools_PostComment(t *testing.T) {
	var got comment.PostRequest
	session := connect(t, Services{Comments: commentStub{
		postFn: func(_ context.Context, req comment.PostRequest) (*comment.Comment, error) {
			got = req
			return &comment.Comment{ID: "c2", TargetID: req.TargetID, ParentID: req.ParentID, AuthorID: req.AuthorID}, nil
		},
	}})

	raw := call(t, session, "post_comment", map[string]any{
		"target_id": "kpi:revenue",
		"parent_id": "c1",
		"author_id": "u1",
		"content":   "@Bob see this",
	})
	require.Equal(t, "u1", got.AuthorID)
	require.NotNil(t, got.ParentID)
	require.Equal(t, "c1", *got.ParentID)

	var c comment.Comment
	require.NoError(t, json.Unmarshal(raw, &c))
	require.Equal(t, "c2", c.ID)

	// Without an explicit author the transport identity is used.
	text, isErr := callTool(t, session, &sdkmcp.CallToolParams{
		Meta:      sdkmcp.Meta{"user_id": "u7"},
		Name:      "post_comment",
		Arguments: map[string]any{"target_id": "kpi:revenue", "content": "hi"},
	})
	require.False(t, isErr, text)
	require.Equal(t, "u7", got.AuthorID)
	require.Nil(t, got.ParentID)
}

func TestTools_MissingActor(t *testing.T) {
	session := connect(t, Services{Comments: commentStub{
		postFn: func(context.Context, comment.PostRequest) (*comment.Comment, error) {
			return nil, errors.New("post must not be reached")
		},
	}})

	apiErr := callError(t, session, "post_comment", map[string]any{"target_id": "kpi:revenue", "content": "hi"})
	require.Equal(t, "INVALID_INPUT", apiErr.Code)
}

func TestTools_ErrorMapping(t *testing.T) {
	session := connect(t, Services{
		Comments: commentStub{
			editFn: func(context.Context, comment.EditRequest) (*comment.Comment, error) {
				return nil, comment.ErrNotAuthor
			},
		},
		Actions: actionStub{
			statusFn: func(context.Context, action.StatusRequest) (*action.ActionItem, error) {
				return nil, fmt.Errorf("%w: %q", action.ErrInvalidStatus, "overdue")
			},
		},
	})

	apiErr := callError(t, session, "edit_comment", map[string]any{"id": "c1", "editor_id": "u2", "content": "x"})
	require.Equal(t, "NOT_AUTHOR", apiErr.Code)

	apiErr = callError(t, session, "update_action_status", map[string]any{"id": "a1", "status": "overdue"})
	require.Equal(t, "INVALID_STATUS", apiErr.Code)
	require.NotEmpty(t, apiErr.RecoveryHint)
}

func TestTools_CreateActionParsesDueDate(t *testing.T) {
	var got action.CreateRequest
	session := connect(t, Services{Actions: actionStub{
		createFn: func(_ context.Context, req action.CreateRequest) (*action.ActionItem, error) {
			got = req
			return &action.ActionItem{ID: "a1", Status: action.StatusPending}, nil
		},
	}})

	call(t, session, "create_action", map[string]any{
		"action":     "Call top accounts",
		"assignee":   "u2",
		"due_date":   "2024-06-30",
		"priority":   "high",
		"created_by": "u1",
	})
	require.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), got.DueDate)
	require.Equal(t, action.PriorityHigh, got.Priority)
	require.Equal(t, "u1", got.CreatedBy)

	apiErr := callError(t, session, "create_action", map[string]any{
		"action": "x", "assignee": "u2", "due_date": "30/06/2024",
	})
	require.Equal(t, "INVALID_INPUT", apiErr.Code)
}

func TestTools_ListActionsFilters(t *testing.T) {
	var got action.ListOptions
	session := connect(t, Services{Actions: actionStub{
		listFn: func(_ context.Context, opts action.ListOptions) ([]action.View, error) {
			got = opts
			return []action.View{}, nil
		},
	}})

	call(t, session, "list_actions", map[string]any{"assignee": "u2", "status": "overdue"})
	require.Equal(t, "u2", got.Assignee)
	require.NotNil(t, got.Status)
	require.Equal(t, action.StatusOverdue, *got.Status)
	require.Nil(t, got.Priority)
}

func TestTools_GenerateActions(t *testing.T) {
	issues := []kpi.Issue{
		{Definition: kpi.Definition{ID: "revenue"}, Month: "2024-05", Status: kpi.StatusCritical},
		{Definition: kpi.Definition{ID: "opex"}, Month: "2024-05", Status: kpi.StatusWarning},
	}
	var gotOpts action.GenerateOptions
	session := connect(t, Services{
		Dashboard: dashboardStub{
			issuesFn: func(_ context.Context, req dashboard.OverviewRequest) ([]kpi.Issue, error) {
				require.Equal(t, kpi.MonthKey("2024-05"), req.Month)
				return issues, nil
			},
		},
		Actions: actionStub{
			generateFn: func(_ context.Context, in []kpi.Issue, opts action.GenerateOptions) ([]action.ActionItem, error) {
				require.Len(t, in, 2)
				gotOpts = opts
				return []action.ActionItem{{ID: "a1", KPIID: "revenue"}}, nil
			},
		},
	})

	raw := call(t, session, "generate_actions", map[string]any{"month": "2024-05", "assignee": "u2", "actor_id": "u1"})
	require.Equal(t, "u2", gotOpts.Assignee)
	require.Equal(t, "u1", gotOpts.ActorID)
	require.True(t, gotOpts.DueDate.IsZero())

	var resp GenerateActionsResponse
	require.NoError(t, json.Unmarshal(raw, &resp))
	require.Equal(t, 2, resp.Issues)
	require.Len(t, resp.Created, 1)
}

func TestTools_Notifications(t *testing.T) {
	session := connect(t, Services{Notifications: notificationStub{
		listFn: func(_ context.Context, userID string, opts notification.ListOptions) ([]notification.Notification, error) {
			require.Equal(t, "u2", userID)
			require.True(t, opts.UnreadOnly)
			return []notification.Notification{{ID: "n1", UserID: "u2"}}, nil
		},
		unreadFn: func(context.Context, string) (int, error) { return 1, nil },
		markFn: func(_ context.Context, userID, id string) error {
			if id == "n1" && userID == "u2" {
				return nil
			}
			return notification.ErrNotificationNotFound
		},
		markAllFn: func(context.Context, string) (int64, error) { return 3, nil },
	}})

	raw := call(t, session, "list_notifications", map[string]any{"user_id": "u2", "unread_only": true})
	var list NotificationListResponse
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list.Notifications, 1)
	require.Equal(t, 1, list.UnreadCount)

	call(t, session, "mark_notification_read", map[string]any{"id": "n1", "user_id": "u2"})
	apiErr := callError(t, session, "mark_notification_read", map[string]any{"id": "n1", "user_id": "u3"})
	require.Equal(t, "NOTIFICATION_NOT_FOUND", apiErr.Code)

	raw = call(t, session, "mark_all_notifications_read", map[string]any{"user_id": "u2"})
	var all MarkAllReadResponse
	require.NoError(t, json.Unmarshal(raw, &all))
	require.Equal(t, int64(3), all.Updated)
}

func TestTools_RecentActivity(t *testing.T) {
	session := connect(t, Services{Activity: activityStub{
		listFn: func(_ context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
			require.NotNil(t, opts.ActivityType)
			require.Equal(t, activity.TypeCommentPosted, *opts.ActivityType)
			return nil, nil
		},
	}})

	raw := call(t, session, "get_recent_activity", map[string]any{"activity_type": "comment_posted"})
	require.JSONEq(t, "[]", string(raw))
}

func TestMapError(t *testing.T) {
	cases := []struct {
		err  error
		code string
	}{
		{comment.ErrCommentNotFound, "COMMENT_NOT_FOUND"},
		{comment.ErrParentNotFound, "PARENT_NOT_FOUND"},
		{fmt.Errorf("saving: %w", comment.ErrConflict), "CONFLICT"},
		{action.ErrConflict, "CONFLICT"},
		{action.ErrActionNotFound, "ACTION_NOT_FOUND"},
		{kpi.ErrUnknownMonth, "UNKNOWN_MONTH"},
		{&kpi.MissingReferenceError{Kind: "kpi", ID: "x"}, "MISSING_REFERENCE"},
		{repository.ErrNotFound, "NOT_FOUND"},
		{fmt.Errorf("invalid pipeline: %w", pipeline.ErrDuplicateStage), "INVALID_DATA"},
		{errors.New("boom"), "INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.code, MapError(tc.err).Code, tc.err.Error())
	}
	require.Nil(t, MapError(nil))
}
