package notification

import "errors"

var (
	// ErrNotificationNotFound indicates the notification doesn't exist for the user.
	ErrNotificationNotFound = errors.New("notification not found")
	// ErrUnknownKind indicates an event kind the dispatcher cannot render.
	ErrUnknownKind = errors.New("unknown notification kind")
	// ErrInvalidInput indicates invalid input for notification operations.
	ErrInvalidInput = errors.New("invalid notification input")
)
