package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rpggio/vantage/internal/config"
	"github.com/rpggio/vantage/internal/dashboard"
	"github.com/rpggio/vantage/internal/domain/action"
	"github.com/rpggio/vantage/internal/domain/activity"
	"github.com/rpggio/vantage/internal/domain/comment"
	"github.com/rpggio/vantage/internal/domain/kpi"
	"github.com/rpggio/vantage/internal/domain/notification"
	"github.com/rpggio/vantage/internal/domain/user"
	"github.com/rpggio/vantage/internal/fixture"
	"github.com/rpggio/vantage/internal/mcp"
	"github.com/rpggio/vantage/internal/repository"
	"github.com/rpggio/vantage/internal/sqlite"
)

// app holds the opened database and every service built on it.
type app struct {
	db       *sqlite.DB
	datasets *sqlite.DatasetRepository
	pipeline *sqlite.PipelineRepository

	users         *user.Service
	activity      *activity.Service
	notifications *notification.Service
	comments      *comment.Service
	actions       *action.Service
	dashboard     *dashboard.Service

	logger *slog.Logger
}

func newApp(cfg config.Config, logger *slog.Logger) (*app, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := ensureDir(cfg.DB.Path); err != nil {
		return nil, fmt.Errorf("prepare database path: %w", err)
	}
	db, err := sqlite.Open(cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	scale, err := cfg.KPI.Scale()
	if err != nil {
		db.Close()
		return nil, err
	}

	a := &app{
		db:       db,
		datasets: sqlite.NewDatasetRepository(db),
		pipeline: sqlite.NewPipelineRepository(db),
		logger:   logger,
	}
	a.users = user.NewService(sqlite.NewUserRepository(db), logger)
	a.activity = activity.NewService(sqlite.NewActivityRepository(db), logger)
	a.notifications = notification.NewService(sqlite.NewNotificationRepository(db), notification.NewDispatcher(), logger)
	a.comments = comment.NewService(sqlite.NewCommentRepository(db), a.users, a.notifications, a.activity, logger)
	a.actions = action.NewService(sqlite.NewActionRepository(db), a.notifications, a.activity, logger)
	a.dashboard = dashboard.NewService(a.datasets, a.pipeline, dashboard.Options{
		Classifier:      kpi.NewClassifier(cfg.KPI.WarningThreshold),
		RevenueKPI:      kpi.ID(cfg.KPI.RevenueKPI),
		PipelineScale:   scale,
		CompositeInputs: cfg.KPI.CompositeInputs,
	}, logger)
	return a, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

func (a *app) mcpServices() mcp.Services {
	return mcp.Services{
		Dashboard:     a.dashboard,
		Comments:      a.comments,
		Actions:       a.actions,
		Notifications: a.notifications,
		Activity:      a.activity,
	}
}

func (a *app) stores() fixture.Stores {
	return fixture.Stores{
		Datasets:  a.datasets,
		Pipelines: a.pipeline,
		Users:     a.users,
	}
}

// seed loads the fixture at path into the database.
func (a *app) seed(ctx context.Context, path string) (fixture.SeedResult, error) {
	bundle, err := fixture.Load(path)
	if err != nil {
		return fixture.SeedResult{}, err
	}
	return fixture.Seed(ctx, bundle, a.stores())
}

// seedIfEmpty seeds from path when no dataset has been stored yet. An empty
// path leaves the database untouched.
func (a *app) seedIfEmpty(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	_, err := a.datasets.LoadDataset(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	res, err := a.seed(ctx, path)
	if err != nil {
		return fmt.Errorf("seed from %s: %w", path, err)
	}
	a.logger.Info("seeded empty database",
		"fixtures", path,
		"months", res.Months,
		"definitions", res.Definitions,
		"pipeline_items", res.PipelineItems,
		"users", res.Users,
	)
	return nil
}
