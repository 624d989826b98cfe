package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/rpggio/vantage/internal/dashboard"
	"github.com/rpggio/vantage/internal/domain/action"
	"github.com/rpggio/vantage/internal/domain/activity"
	"github.com/rpggio/vantage/internal/domain/comment"
	"github.com/rpggio/vantage/internal/domain/kpi"
	"github.com/rpggio/vantage/internal/domain/notification"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// DashboardService defines the read-only KPI views needed by MCP.
type DashboardService interface {
	Overview(ctx context.Context, req dashboard.OverviewRequest) (*dashboard.Overview, error)
	Pipeline(ctx context.Context) (*dashboard.PipelineView, error)
	Issues(ctx context.Context, req dashboard.OverviewRequest) ([]kpi.Issue, error)
}

// CommentService defines discussion operations needed by MCP.
type CommentService interface {
	Post(ctx context.Context, req comment.PostRequest) (*comment.Comment, error)
	Edit(ctx context.Context, req comment.EditRequest) (*comment.Comment, error)
	React(ctx context.Context, req comment.ReactRequest) (*comment.Comment, error)
	Thread(ctx context.Context, targetID string) (*comment.Thread, error)
}

// ActionService defines action tracking operations needed by MCP.
type ActionService interface {
	Create(ctx context.Context, req action.CreateRequest) (*action.ActionItem, error)
	UpdateStatus(ctx context.Context, req action.StatusRequest) (*action.ActionItem, error)
	Assign(ctx context.Context, req action.AssignRequest) (*action.ActionItem, error)
	List(ctx context.Context, opts action.ListOptions) ([]action.View, error)
	GenerateFromIssues(ctx context.Context, issues []kpi.Issue, opts action.GenerateOptions) ([]action.ActionItem, error)
	RemindDue(ctx context.Context, within time.Duration) ([]notification.Notification, error)
}

// NotificationService defines inbox operations needed by MCP.
type NotificationService interface {
	ListForUser(ctx context.Context, userID string, opts notification.ListOptions) ([]notification.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Dashboard     DashboardService
	Comments      CommentService
	Actions       ActionService
	Notifications NotificationService
	Activity      ActivityService
}

// Config contains server configuration.
type Config struct {
	Services Services
	Version  string
	Logger   *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "vantage",
		Version: cfg.Version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Within one call the first middleware runs first, so traffic logs see the actor.
	server.AddReceivingMiddleware(actorMiddleware(), trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Services)

	return server
}
