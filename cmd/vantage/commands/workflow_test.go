package commands

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rpggio/vantage/internal/dashboard"
	"github.com/rpggio/vantage/internal/domain/action"
	"github.com/rpggio/vantage/internal/domain/activity"
	"github.com/rpggio/vantage/internal/domain/comment"
	"github.com/rpggio/vantage/internal/domain/notification"
	"github.com/rpggio/vantage/internal/mcp"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

func seededApp(t *testing.T) *app {
	t.Helper()
	a := newTestApp(t)
	_, err := a.seed(context.Background(), sampleFixture)
	require.NoError(t, err)
	return a
}

func TestWorkflow_IssuesToActionsToDiscussion(t *testing.T) {
	ctx := context.Background()
	a := seededApp(t)

	issues, err := a.dashboard.Issues(ctx, dashboard.OverviewRequest{})
	require.NoError(t, err)
	require.NotEmpty(t, issues)

	created, err := a.actions.GenerateFromIssues(ctx, issues, action.GenerateOptions{Assignee: "u2", ActorID: "u1"})
	require.NoError(t, err)
	require.Len(t, created, len(issues))

	// Open actions suppress duplicates.
	again, err := a.actions.GenerateFromIssues(ctx, issues, action.GenerateOptions{Assignee: "u2", ActorID: "u1"})
	require.NoError(t, err)
	require.Empty(t, again)

	target := action.TargetID(created[0].ID)
	root, err := a.comments.Post(ctx, comment.PostRequest{
		TargetID: target,
		AuthorID: "u1",
		Content:  "@Kenji can you take this one?",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"u2"}, root.Mentions)

	reply, err := a.comments.Post(ctx, comment.PostRequest{
		TargetID: target,
		ParentID: &root.ID,
		AuthorID: "u2",
		Content:  "On it.",
	})
	require.NoError(t, err)

	thread, err := a.comments.Thread(ctx, target)
	require.NoError(t, err)
	require.Equal(t, 2, thread.Count)
	require.Len(t, thread.Roots, 1)
	require.Len(t, thread.Roots[0].Replies, 1)
	require.Equal(t, reply.ID, thread.Roots[0].Replies[0].Comment.ID)

	// Assignments and the mention reach u2; the reply reaches u1.
	kenji, err := a.notifications.ListForUser(ctx, "u2", notification.ListOptions{})
	require.NoError(t, err)
	require.Len(t, kenji, len(created)+1)

	aiko, err := a.notifications.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 1, aiko)

	done, err := a.actions.UpdateStatus(ctx, action.StatusRequest{
		ID:      created[0].ID,
		Status:  action.StatusCompleted,
		ActorID: "u2",
	})
	require.NoError(t, err)
	require.Equal(t, action.StatusCompleted, done.Status)

	entries, err := a.activity.GetRecentActivity(ctx, activity.ListActivityOptions{TargetID: target})
	require.NoError(t, err)
	require.NotEmpty(t, entries)
}

type actorTransport struct {
	userID string
	base   http.RoundTripper
}

func (t actorTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set(mcp.ActorHeader, t.userID)
	return t.base.RoundTrip(req)
}

func TestHTTPTransport(t *testing.T) {
	a := seededApp(t)
	server := mcp.NewServer(mcp.Config{Services: a.mcpServices(), Version: "test"})

	srv := httptest.NewServer(newRouter(server))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", string(body))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, &sdkmcp.StreamableClientTransport{
		Endpoint: srv.URL + "/mcp",
		HTTPClient: &http.Client{
			Transport: actorTransport{userID: "u3", base: http.DefaultTransport},
		},
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })

	result, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "post_comment",
		Arguments: map[string]any{"target_id": "kpi:revenue", "content": "Revenue slipped again @Aiko"},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	text, ok := result.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok)
	var posted comment.Comment
	require.NoError(t, json.Unmarshal([]byte(text.Text), &posted))
	require.Equal(t, "u3", posted.AuthorID)
	require.Equal(t, []string{"u1"}, posted.Mentions)
}
