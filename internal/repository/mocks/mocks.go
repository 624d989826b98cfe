package mocks

import (
	"context"

	"github.com/rpggio/vantage/internal/domain/action"
	"github.com/rpggio/vantage/internal/domain/activity"
	"github.com/rpggio/vantage/internal/domain/comment"
	"github.com/rpggio/vantage/internal/domain/kpi"
	"github.com/rpggio/vantage/internal/domain/notification"
	"github.com/rpggio/vantage/internal/domain/pipeline"
	"github.com/rpggio/vantage/internal/domain/user"
	"github.com/stretchr/testify/mock"
)

// UserRepository is a mock for user.Repository.
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Upsert(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *UserRepository) Get(ctx context.Context, id string) (*user.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*user.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) List(ctx context.Context) ([]user.User, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]user.User); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// CommentRepository is a mock for comment.Repository.
type CommentRepository struct {
	mock.Mock
}

func (m *CommentRepository) Create(ctx context.Context, c *comment.Comment) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *CommentRepository) Get(ctx context.Context, id string) (*comment.Comment, error) {
	args := m.Called(ctx, id)
	if c, ok := args.Get(0).(*comment.Comment); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CommentRepository) Update(ctx context.Context, c *comment.Comment, expectedVersion int64) error {
	args := m.Called(ctx, c, expectedVersion)
	return args.Error(0)
}

func (m *CommentRepository) ListByTarget(ctx context.Context, targetID string) ([]comment.Comment, error) {
	args := m.Called(ctx, targetID)
	if list, ok := args.Get(0).([]comment.Comment); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActionRepository is a mock for action.Repository.
type ActionRepository struct {
	mock.Mock
}

func (m *ActionRepository) Create(ctx context.Context, item *action.ActionItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *ActionRepository) Get(ctx context.Context, id string) (*action.ActionItem, error) {
	args := m.Called(ctx, id)
	if item, ok := args.Get(0).(*action.ActionItem); ok {
		return item, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ActionRepository) Update(ctx context.Context, item *action.ActionItem, expectedVersion int64) error {
	args := m.Called(ctx, item, expectedVersion)
	return args.Error(0)
}

func (m *ActionRepository) List(ctx context.Context, filter action.Filter) ([]action.ActionItem, error) {
	args := m.Called(ctx, filter)
	if list, ok := args.Get(0).([]action.ActionItem); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// NotificationRepository is a mock for notification.Repository.
type NotificationRepository struct {
	mock.Mock
}

func (m *NotificationRepository) Save(ctx context.Context, n *notification.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *NotificationRepository) Get(ctx context.Context, id string) (*notification.Notification, error) {
	args := m.Called(ctx, id)
	if n, ok := args.Get(0).(*notification.Notification); ok {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *NotificationRepository) ListForUser(ctx context.Context, userID string, opts notification.ListOptions) ([]notification.Notification, error) {
	args := m.Called(ctx, userID, opts)
	if list, ok := args.Get(0).([]notification.Notification); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *NotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *NotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// DatasetProvider is a mock for dashboard.DatasetProvider.
type DatasetProvider struct {
	mock.Mock
}

func (m *DatasetProvider) LoadDataset(ctx context.Context) (*kpi.Dataset, error) {
	args := m.Called(ctx)
	if ds, ok := args.Get(0).(*kpi.Dataset); ok {
		return ds, args.Error(1)
	}
	return nil, args.Error(1)
}

// PipelineProvider is a mock for dashboard.PipelineProvider.
type PipelineProvider struct {
	mock.Mock
}

func (m *PipelineProvider) LoadPipeline(ctx context.Context) (*pipeline.Snapshot, error) {
	args := m.Called(ctx)
	if snap, ok := args.Get(0).(*pipeline.Snapshot); ok {
		return snap, args.Error(1)
	}
	return nil, args.Error(1)
}
