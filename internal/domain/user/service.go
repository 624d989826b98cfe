package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rpggio/vantage/internal/repository"
)

// Service handles user directory operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new user service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Register validates and stores a user, replacing an existing entry with the same id.
func (s *Service) Register(ctx context.Context, u User) (*User, error) {
	u.ID = strings.TrimSpace(u.ID)
	u.Name = strings.TrimSpace(u.Name)
	if u.ID == "" || u.Name == "" {
		return nil, ErrInvalidInput
	}
	if strings.ContainsAny(u.Name, " \t\n") {
		return nil, fmt.Errorf("%w: name %q cannot be mentioned", ErrInvalidInput, u.Name)
	}
	if err := s.repo.Upsert(ctx, &u); err != nil {
		return nil, fmt.Errorf("saving user: %w", err)
	}
	return &u, nil
}

// Get returns a single user.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// LoadDirectory reads every stored user into a Directory snapshot.
func (s *Service) LoadDirectory(ctx context.Context) (*Directory, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	dir, err := NewDirectory(users)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("user directory loaded", "users", dir.Len())
	return dir, nil
}
