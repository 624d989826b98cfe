package notification

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Dispatcher turns workflow events into notification records. It holds no
// state besides its clock and id source.
type Dispatcher struct {
	Clock func() time.Time
	IDs   func() string
}

// NewDispatcher returns a dispatcher using wall-clock time and random UUIDs.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{Clock: time.Now, IDs: uuid.NewString}
}

// Dispatch produces one unread notification per distinct recipient. The actor
// and empty ids are skipped. Every record shares the dispatch timestamp.
func (d *Dispatcher) Dispatch(kind Kind, p Payload) ([]Notification, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	recipients := recipients(p.FromUserID, p.Recipients)
	if len(recipients) == 0 {
		return nil, nil
	}

	title, message := render(kind, p)
	now := d.now()
	out := make([]Notification, 0, len(recipients))
	for _, userID := range recipients {
		out = append(out, Notification{
			ID:         d.id(),
			UserID:     userID,
			Type:       kind,
			Title:      title,
			Message:    message,
			CreatedAt:  now,
			ActionID:   p.ActionID,
			CommentID:  p.CommentID,
			FromUserID: p.FromUserID,
		})
	}
	return out, nil
}

// NotifyMention notifies users mentioned in a comment.
func (d *Dispatcher) NotifyMention(from string, to []string, commentID, subject string) []Notification {
	return d.must(KindMention, Payload{FromUserID: from, Recipients: to, CommentID: commentID, Subject: subject})
}

// NotifyReply notifies the author of the comment being replied to.
func (d *Dispatcher) NotifyReply(from, parentAuthor, commentID, subject string) []Notification {
	return d.must(KindReply, Payload{FromUserID: from, Recipients: []string{parentAuthor}, CommentID: commentID, Subject: subject})
}

// NotifyComment notifies thread watchers about a new comment.
func (d *Dispatcher) NotifyComment(from string, watchers []string, commentID, subject string) []Notification {
	return d.must(KindComment, Payload{FromUserID: from, Recipients: watchers, CommentID: commentID, Subject: subject})
}

// NotifyReaction notifies a comment author about a reaction.
func (d *Dispatcher) NotifyReaction(from, author, commentID, emoji string) []Notification {
	return d.must(KindReaction, Payload{FromUserID: from, Recipients: []string{author}, CommentID: commentID, Emoji: emoji})
}

// NotifyStatusChange notifies action watchers about a status transition.
func (d *Dispatcher) NotifyStatusChange(actionID, subject, fromStatus, toStatus, actor string, watchers []string) []Notification {
	return d.must(KindStatusChange, Payload{
		FromUserID: actor,
		Recipients: watchers,
		ActionID:   actionID,
		Subject:    subject,
		FromStatus: fromStatus,
		ToStatus:   toStatus,
	})
}

// NotifyAssignment notifies the new assignee of an action.
func (d *Dispatcher) NotifyAssignment(actionID, subject, actor, assignee string) []Notification {
	return d.must(KindAssignment, Payload{FromUserID: actor, Recipients: []string{assignee}, ActionID: actionID, Subject: subject})
}

// NotifyDueReminder reminds the assignee of an approaching due date.
func (d *Dispatcher) NotifyDueReminder(actionID, subject, assignee string, due time.Time) []Notification {
	return d.must(KindDueReminder, Payload{Recipients: []string{assignee}, ActionID: actionID, Subject: subject, DueDate: due})
}

func (d *Dispatcher) must(kind Kind, p Payload) []Notification {
	// kind is one of the constants above, so Dispatch cannot fail.
	out, _ := d.Dispatch(kind, p)
	return out
}

func (d *Dispatcher) now() time.Time {
	if d.Clock == nil {
		return time.Now()
	}
	return d.Clock()
}

func (d *Dispatcher) id() string {
	if d.IDs == nil {
		return uuid.NewString()
	}
	return d.IDs()
}

func recipients(actor string, users []string) []string {
	seen := make(map[string]struct{}, len(users))
	out := make([]string, 0, len(users))
	for _, u := range users {
		if u == "" || u == actor {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

func render(kind Kind, p Payload) (string, string) {
	from := p.FromName
	if from == "" {
		from = p.FromUserID
	}
	switch kind {
	case KindMention:
		return "You were mentioned", fmt.Sprintf("%s mentioned you on %s", from, p.Subject)
	case KindReply:
		return "New reply", fmt.Sprintf("%s replied to your comment on %s", from, p.Subject)
	case KindComment:
		return "New comment", fmt.Sprintf("%s commented on %s", from, p.Subject)
	case KindReaction:
		return "New reaction", fmt.Sprintf("%s reacted %s to your comment", from, p.Emoji)
	case KindStatusChange:
		return "Status changed", fmt.Sprintf("%s moved %s from %s to %s", from, p.Subject, p.FromStatus, p.ToStatus)
	case KindAssignment:
		return "Action assigned", fmt.Sprintf("%s assigned you %s", from, p.Subject)
	default:
		return "Action due soon", fmt.Sprintf("%s is due %s", p.Subject, p.DueDate.Format("2006-01-02"))
	}
}
