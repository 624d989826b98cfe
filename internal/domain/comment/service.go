package comment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rpggio/vantage/internal/domain/activity"
	"github.com/rpggio/vantage/internal/domain/notification"
	"github.com/rpggio/vantage/internal/repository"
)

// MaxContentLength bounds comment bodies, in runes.
const MaxContentLength = 4000

// Service handles comment threads attached to dashboard targets.
type Service struct {
	comments   Repository
	users      DirectoryLoader
	notifier   Notifier
	activities ActivityLogger
	clock      func() time.Time
	logger     *slog.Logger
}

// NewService creates a new comment service. notifier and activities may be nil.
func NewService(
	comments Repository,
	users DirectoryLoader,
	notifier Notifier,
	activities ActivityLogger,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		comments:   comments,
		users:      users,
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

// PostRequest describes a new comment or reply.
type PostRequest struct {
	TargetID string
	ParentID *string
	AuthorID string
	Content  string
	// Subject names the target in notification text. Defaults to TargetID.
	Subject string
}

// EditRequest describes a content edit. ExpectedVersion 0 skips the version check.
type EditRequest struct {
	ID              string
	EditorID        string
	Content         string
	ExpectedVersion int64
}

// ReactRequest describes a reaction toggle.
type ReactRequest struct {
	CommentID string
	UserID    string
	Emoji     string
}

// Thread is the ordered discussion on one target.
type Thread struct {
	TargetID string   `json:"target_id"`
	Roots    []*Node  `json:"roots"`
	Count    int      `json:"count"`
	Detached []string `json:"detached,omitempty"`
}

// Post stores a new comment and notifies mentioned users, the parent author
// and earlier participants of the thread, each at most once.
func (s *Service) Post(ctx context.Context, req PostRequest) (*Comment, error) {
	content, err := validateContent(req.Content)
	if err != nil {
		return nil, err
	}
	if req.TargetID == "" || req.AuthorID == "" {
		return nil, ErrInvalidInput
	}

	var parent *Comment
	if req.ParentID != nil {
		parent, err = s.comments.Get(ctx, *req.ParentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, fmt.Errorf("loading parent comment: %w", err)
		}
		if parent.TargetID != req.TargetID {
			return nil, ErrParentNotFound
		}
	}

	mentions, err := s.mentions(ctx, content)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	c := &Comment{
		ID:        uuid.NewString(),
		TargetID:  req.TargetID,
		ParentID:  req.ParentID,
		AuthorID:  req.AuthorID,
		Content:   content,
		Mentions:  mentions,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	s.log(ctx, &activity.ActivityEntry{
		TargetID:     c.TargetID,
		CommentID:    &c.ID,
		ActorID:      c.AuthorID,
		ActivityType: activity.TypeCommentPosted,
		Summary:      fmt.Sprintf("posted comment %s", c.ID),
	})

	subject := req.Subject
	if subject == "" {
		subject = req.TargetID
	}
	notified := map[string]struct{}{c.AuthorID: {}}
	base := notification.Payload{FromUserID: c.AuthorID, CommentID: c.ID, Subject: subject}

	s.notify(ctx, notification.KindMention, base, pending(mentions, notified))
	if parent != nil {
		s.notify(ctx, notification.KindReply, base, pending([]string{parent.AuthorID}, notified))
	}
	watchers, err := s.participants(ctx, c.TargetID)
	if err != nil {
		s.logger.Warn("loading thread participants", "target", c.TargetID, "error", err)
	}
	s.notify(ctx, notification.KindComment, base, pending(watchers, notified))

	return c, nil
}

// Edit replaces the content of a comment. Only the author may edit, and only
// users mentioned for the first time are notified.
func (s *Service) Edit(ctx context.Context, req EditRequest) (*Comment, error) {
	content, err := validateContent(req.Content)
	if err != nil {
		return nil, err
	}
	current, err := s.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if current.AuthorID != req.EditorID {
		return nil, ErrNotAuthor
	}
	if req.ExpectedVersion != 0 && req.ExpectedVersion != current.Version {
		return nil, ErrConflict
	}
	if content == current.Content {
		return current, nil
	}

	mentions, err := s.mentions(ctx, content)
	if err != nil {
		return nil, err
	}
	previous := make(map[string]struct{}, len(current.Mentions))
	for _, id := range current.Mentions {
		previous[id] = struct{}{}
	}
	added := pending(mentions, previous)

	updated := *current
	updated.Content = content
	updated.Mentions = mentions
	updated.IsEdited = true
	updated.UpdatedAt = s.clock()
	updated.Version = current.Version + 1

	if err := s.comments.Update(ctx, &updated, current.Version); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("updating comment: %w", err)
	}

	s.log(ctx, &activity.ActivityEntry{
		TargetID:     updated.TargetID,
		CommentID:    &updated.ID,
		ActorID:      req.EditorID,
		ActivityType: activity.TypeCommentEdited,
		Summary:      fmt.Sprintf("edited comment %s", updated.ID),
		Details:      editDetails(current.Content, content, added),
	})
	s.notify(ctx, notification.KindMention, notification.Payload{
		FromUserID: req.EditorID,
		CommentID:  updated.ID,
		Subject:    updated.TargetID,
	}, added)

	return &updated, nil
}

// React toggles a reaction. The author is notified when a reaction is added.
func (s *Service) React(ctx context.Context, req ReactRequest) (*Comment, error) {
	if req.CommentID == "" || req.UserID == "" || strings.TrimSpace(req.Emoji) == "" {
		return nil, ErrInvalidInput
	}
	current, err := s.Get(ctx, req.CommentID)
	if err != nil {
		return nil, err
	}

	updated := ToggleReaction(*current, req.Emoji, req.UserID)
	updated.Version = current.Version + 1
	if err := s.comments.Update(ctx, &updated, current.Version); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("updating reactions: %w", err)
	}

	added := HasReacted(updated, req.Emoji, req.UserID)
	verb := "removed"
	if added {
		verb = "added"
	}
	s.log(ctx, &activity.ActivityEntry{
		TargetID:     updated.TargetID,
		CommentID:    &updated.ID,
		ActorID:      req.UserID,
		ActivityType: activity.TypeReactionToggled,
		Summary:      fmt.Sprintf("%s reaction %s on comment %s", verb, req.Emoji, updated.ID),
	})
	if added {
		s.notify(ctx, notification.KindReaction, notification.Payload{
			FromUserID: req.UserID,
			CommentID:  updated.ID,
			Emoji:      req.Emoji,
		}, []string{updated.AuthorID})
	}
	return &updated, nil
}

// Get returns a single comment.
func (s *Service) Get(ctx context.Context, id string) (*Comment, error) {
	c, err := s.comments.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("loading comment: %w", err)
	}
	return c, nil
}

// Thread loads the comments on a target and builds the reply tree.
func (s *Service) Thread(ctx context.Context, targetID string) (*Thread, error) {
	if targetID == "" {
		return nil, ErrInvalidInput
	}
	flat, err := s.comments.ListByTarget(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	roots, detached := BuildTree(flat)
	if len(detached) > 0 {
		s.logger.Warn("comments with unresolved parents shown at top level",
			"target", targetID, "comment_ids", detached)
	}
	return &Thread{TargetID: targetID, Roots: roots, Count: len(flat), Detached: detached}, nil
}

func (s *Service) mentions(ctx context.Context, content string) ([]string, error) {
	if s.users == nil {
		return []string{}, nil
	}
	dir, err := s.users.LoadDirectory(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading user directory: %w", err)
	}
	return ExtractMentions(content, dir), nil
}

func (s *Service) participants(ctx context.Context, targetID string) ([]string, error) {
	flat, err := s.comments.ListByTarget(ctx, targetID)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(flat))
	for _, c := range flat {
		out = append(out, c.AuthorID)
	}
	return out, nil
}

func (s *Service) notify(ctx context.Context, kind notification.Kind, p notification.Payload, to []string) {
	if s.notifier == nil || len(to) == 0 {
		return
	}
	p.Recipients = to
	if _, err := s.notifier.Publish(ctx, kind, p); err != nil {
		s.logger.Warn("publishing notification", "kind", kind, "comment", p.CommentID, "error", err)
	}
}

func (s *Service) log(ctx context.Context, entry *activity.ActivityEntry) {
	if s.activities == nil {
		return
	}
	if err := s.activities.LogActivity(ctx, entry); err != nil {
		s.logger.Warn("logging comment activity", "type", entry.ActivityType, "error", err)
	}
}

// pending returns the ids not yet in seen, in order, and marks them seen.
func pending(ids []string, seen map[string]struct{}) []string {
	var out []string
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("%w: empty content", ErrInvalidInput)
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return "", fmt.Errorf("%w: content exceeds %d characters", ErrInvalidInput, MaxContentLength)
	}
	return content, nil
}
