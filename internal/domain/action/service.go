package action

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/vantage/internal/domain/activity"
	"github.com/rpggio/vantage/internal/domain/kpi"
	"github.com/rpggio/vantage/internal/domain/notification"
	"github.com/rpggio/vantage/internal/repository"
)

// DefaultLeadTime is the due date offset for generated actions.
const DefaultLeadTime = 14 * 24 * time.Hour

// Service handles action item tracking.
type Service struct {
	repo       Repository
	notifier   Notifier
	activities ActivityLogger
	clock      func() time.Time
	logger     *slog.Logger
}

// NewService creates a new action service. notifier and activities may be nil.
func NewService(repo Repository, notifier Notifier, activities ActivityLogger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:       repo,
		notifier:   notifier,
		activities: activities,
		clock:      time.Now,
		logger:     logger,
	}
}

// WithClock overrides the time source.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// CreateRequest describes a new action item.
type CreateRequest struct {
	Category   string
	TargetName string
	Issue      string
	Action     string
	Assignee   string
	DueDate    time.Time
	Priority   Priority
	CreatedBy  string
	KPIID      string
	Month      string
	Metrics    *Metrics
}

// StatusRequest describes a status change. ExpectedVersion 0 skips the version check.
type StatusRequest struct {
	ID              string
	Status          Status
	ActorID         string
	ExpectedVersion int64
}

// AssignRequest describes a reassignment.
type AssignRequest struct {
	ID       string
	Assignee string
	ActorID  string
}

// GenerateOptions controls actions generated from KPI issues.
type GenerateOptions struct {
	Assignee string
	ActorID  string
	// DueDate defaults to now plus DefaultLeadTime.
	DueDate time.Time
}

// Create stores a new pending action and notifies the assignee.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*ActionItem, error) {
	if err := validateCreate(&req); err != nil {
		return nil, err
	}

	now := s.clock()
	item := &ActionItem{
		ID:         uuid.NewString(),
		Category:   req.Category,
		TargetName: req.TargetName,
		Issue:      req.Issue,
		Action:     req.Action,
		Assignee:   req.Assignee,
		DueDate:    req.DueDate,
		Status:     StatusPending,
		Priority:   req.Priority,
		CreatedBy:  req.CreatedBy,
		KPIID:      req.KPIID,
		Month:      req.Month,
		Metrics:    req.Metrics,
		CreatedAt:  now,
		UpdatedAt:  now,
		Version:    1,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("creating action: %w", err)
	}

	s.log(ctx, item, req.CreatedBy, activity.TypeActionCreated, fmt.Sprintf("created action %q", item.Action))
	s.notify(ctx, notification.KindAssignment, notification.Payload{
		FromUserID: req.CreatedBy,
		Recipients: []string{item.Assignee},
		ActionID:   item.ID,
		Subject:    item.Action,
	})
	return item, nil
}

// UpdateStatus moves an action to any storable status and notifies the
// assignee and creator.
func (s *Service) UpdateStatus(ctx context.Context, req StatusRequest) (*ActionItem, error) {
	if !req.Status.Storable() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, req.Status)
	}
	current, err := s.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if req.ExpectedVersion != 0 && req.ExpectedVersion != current.Version {
		return nil, ErrConflict
	}
	if current.Status == req.Status {
		return current, nil
	}

	updated := *current
	updated.Status = req.Status
	if err := s.save(ctx, &updated, current.Version); err != nil {
		return nil, err
	}

	s.log(ctx, &updated, req.ActorID, activity.TypeActionStatusChanged,
		fmt.Sprintf("status %s -> %s", current.Status, updated.Status))
	s.notify(ctx, notification.KindStatusChange, notification.Payload{
		FromUserID: req.ActorID,
		Recipients: []string{updated.Assignee, updated.CreatedBy},
		ActionID:   updated.ID,
		Subject:    updated.Action,
		FromStatus: string(current.Status),
		ToStatus:   string(updated.Status),
	})
	return &updated, nil
}

// Assign hands an action to a new assignee and notifies them.
func (s *Service) Assign(ctx context.Context, req AssignRequest) (*ActionItem, error) {
	assignee := strings.TrimSpace(req.Assignee)
	if assignee == "" {
		return nil, fmt.Errorf("%w: assignee required", ErrInvalidInput)
	}
	current, err := s.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if current.Assignee == assignee {
		return current, nil
	}

	updated := *current
	updated.Assignee = assignee
	if err := s.save(ctx, &updated, current.Version); err != nil {
		return nil, err
	}

	s.log(ctx, &updated, req.ActorID, activity.TypeActionAssigned,
		fmt.Sprintf("reassigned from %s to %s", current.Assignee, assignee))
	s.notify(ctx, notification.KindAssignment, notification.Payload{
		FromUserID: req.ActorID,
		Recipients: []string{assignee},
		ActionID:   updated.ID,
		Subject:    updated.Action,
	})
	return &updated, nil
}

// Get returns a single action item.
func (s *Service) Get(ctx context.Context, id string) (*ActionItem, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrActionNotFound
		}
		return nil, fmt.Errorf("loading action: %w", err)
	}
	return item, nil
}

// List returns action items with their effective status at the current time.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]View, error) {
	items, err := s.repo.List(ctx, opts.Filter)
	if err != nil {
		return nil, fmt.Errorf("listing actions: %w", err)
	}
	now := s.clock()
	out := make([]View, 0, len(items))
	for _, item := range items {
		v := View{ActionItem: item, EffectiveStatus: EffectiveStatus(item, now)}
		if opts.Status != nil && v.EffectiveStatus != *opts.Status {
			continue
		}
		if opts.Priority != nil && item.Priority != *opts.Priority {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// GenerateFromIssues raises one action per KPI issue. Issues that already
// have an unfinished action for the same KPI and month are skipped.
func (s *Service) GenerateFromIssues(ctx context.Context, issues []kpi.Issue, opts GenerateOptions) ([]ActionItem, error) {
	if strings.TrimSpace(opts.Assignee) == "" {
		return nil, fmt.Errorf("%w: assignee required", ErrInvalidInput)
	}
	due := opts.DueDate
	if due.IsZero() {
		due = s.clock().Add(DefaultLeadTime)
	}

	var created []ActionItem
	for _, issue := range issues {
		open, err := s.hasOpenAction(ctx, string(issue.Definition.ID), string(issue.Month))
		if err != nil {
			return created, err
		}
		if open {
			s.logger.Debug("action already open for issue", "kpi", issue.Definition.ID, "month", issue.Month)
			continue
		}
		item, err := s.Create(ctx, requestFromIssue(issue, opts.Assignee, opts.ActorID, due))
		if err != nil {
			return created, err
		}
		created = append(created, *item)
	}
	if len(created) > 0 {
		s.logger.Info("generated actions from KPI issues", "count", len(created))
	}
	return created, nil
}

// RemindDue sends a due_reminder to the assignee of every unfinished action
// due between now and now+within.
func (s *Service) RemindDue(ctx context.Context, within time.Duration) ([]notification.Notification, error) {
	if within <= 0 {
		return nil, fmt.Errorf("%w: reminder window must be positive", ErrInvalidInput)
	}
	items, err := s.repo.List(ctx, Filter{})
	if err != nil {
		return nil, fmt.Errorf("listing actions: %w", err)
	}
	if s.notifier == nil {
		return nil, nil
	}

	now := s.clock()
	horizon := now.Add(within)
	var sent []notification.Notification
	for _, item := range items {
		if item.Status == StatusCompleted || item.DueDate.IsZero() {
			continue
		}
		if item.DueDate.Before(now) || item.DueDate.After(horizon) {
			continue
		}
		out, err := s.notifier.Publish(ctx, notification.KindDueReminder, notification.Payload{
			Recipients: []string{item.Assignee},
			ActionID:   item.ID,
			Subject:    item.Action,
			DueDate:    item.DueDate,
		})
		if err != nil {
			return sent, fmt.Errorf("publishing reminder: %w", err)
		}
		sent = append(sent, out...)
	}
	return sent, nil
}

func (s *Service) hasOpenAction(ctx context.Context, kpiID, month string) (bool, error) {
	existing, err := s.repo.List(ctx, Filter{KPIID: kpiID, Month: month})
	if err != nil {
		return false, fmt.Errorf("listing actions: %w", err)
	}
	for _, item := range existing {
		if item.Status != StatusCompleted {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) save(ctx context.Context, item *ActionItem, expectedVersion int64) error {
	item.UpdatedAt = s.clock()
	item.Version = expectedVersion + 1
	if err := s.repo.Update(ctx, item, expectedVersion); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return ErrConflict
		}
		return fmt.Errorf("updating action: %w", err)
	}
	return nil
}

func (s *Service) notify(ctx context.Context, kind notification.Kind, p notification.Payload) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.Publish(ctx, kind, p); err != nil {
		s.logger.Warn("publishing notification", "kind", kind, "action", p.ActionID, "error", err)
	}
}

func (s *Service) log(ctx context.Context, item *ActionItem, actor string, kind activity.ActivityType, summary string) {
	if s.activities == nil {
		return
	}
	err := s.activities.LogActivity(ctx, &activity.ActivityEntry{
		TargetID:     TargetID(item.ID),
		ActionID:     &item.ID,
		ActorID:      actor,
		ActivityType: kind,
		Summary:      summary,
	})
	if err != nil {
		s.logger.Warn("logging action activity", "type", kind, "error", err)
	}
}

// TargetID is the discussion target of an action's comment thread.
func TargetID(actionID string) string {
	return "action:" + actionID
}

func requestFromIssue(issue kpi.Issue, assignee, actor string, due time.Time) CreateRequest {
	def := issue.Definition
	current := 0.0
	if issue.Value.Actual != nil {
		current = *issue.Value.Actual
	}
	// Without a prior actual the item starts from where the KPI stands now.
	before := current
	if issue.Previous != nil {
		before = *issue.Previous
	}
	priority := PriorityMedium
	if issue.Status == kpi.StatusCritical {
		priority = PriorityHigh
	}

	var detail string
	if issue.Value.VarianceRate != nil {
		direction := "above"
		if *issue.Value.VarianceRate < 0 {
			direction = "below"
		}
		detail = fmt.Sprintf("%s is %.1f%% %s budget in %s", def.Name, math.Abs(*issue.Value.VarianceRate), direction, issue.Month)
	} else {
		detail = fmt.Sprintf("%s is off budget in %s", def.Name, issue.Month)
	}

	return CreateRequest{
		Category:   def.Category,
		TargetName: def.Name,
		Issue:      detail,
		Action:     fmt.Sprintf("Review %s variance and agree corrective measures", def.Name),
		Assignee:   assignee,
		DueDate:    due,
		Priority:   priority,
		CreatedBy:  actor,
		KPIID:      string(def.ID),
		Month:      string(issue.Month),
		Metrics: &Metrics{
			Before:  before,
			Current: current,
			Target:  issue.Value.Budget,
		},
	}
}

func validateCreate(req *CreateRequest) error {
	req.Action = strings.TrimSpace(req.Action)
	req.Assignee = strings.TrimSpace(req.Assignee)
	if req.Action == "" {
		return fmt.Errorf("%w: action text required", ErrInvalidInput)
	}
	if req.Assignee == "" {
		return fmt.Errorf("%w: assignee required", ErrInvalidInput)
	}
	if req.Priority == "" {
		req.Priority = PriorityMedium
	}
	if !req.Priority.IsValid() {
		return fmt.Errorf("%w: priority %q", ErrInvalidInput, req.Priority)
	}
	return nil
}
