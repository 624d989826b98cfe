package activity

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	// DefaultListLimit applies when a listing sets no limit.
	DefaultListLimit = 50
	// MaxListLimit caps any listing.
	MaxListLimit = 500
)

// Service records who did what to which comment or action.
type Service struct {
	repo   Repository
	clock  func() time.Time
	logger *slog.Logger
}

// NewService creates a new activity service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, clock: time.Now, logger: logger}
}

// WithClock overrides the time source used for missing timestamps.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// LogActivity stores entry, stamping CreatedAt when unset. Every entry needs a
// known type and the target whose history it belongs to.
func (s *Service) LogActivity(ctx context.Context, entry *ActivityEntry) error {
	if entry == nil {
		return ErrInvalidInput
	}
	if !entry.ActivityType.IsValid() {
		return fmt.Errorf("%w: type %q", ErrInvalidInput, entry.ActivityType)
	}
	if entry.TargetID == "" {
		return fmt.Errorf("%w: target required", ErrInvalidInput)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.clock()
	}
	if err := s.repo.Log(ctx, entry); err != nil {
		return fmt.Errorf("logging activity: %w", err)
	}
	s.logger.Debug("activity logged", "type", entry.ActivityType, "target", entry.TargetID, "actor", entry.ActorID)
	return nil
}

// GetRecentActivity lists entries matching opts, newest first.
func (s *Service) GetRecentActivity(ctx context.Context, opts ListActivityOptions) ([]ActivityEntry, error) {
	switch {
	case opts.Limit <= 0:
		opts.Limit = DefaultListLimit
	case opts.Limit > MaxListLimit:
		opts.Limit = MaxListLimit
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	if opts.ActivityType != nil && !opts.ActivityType.IsValid() {
		return nil, fmt.Errorf("%w: type %q", ErrInvalidInput, *opts.ActivityType)
	}
	entries, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("listing activity: %w", err)
	}
	return entries, nil
}
