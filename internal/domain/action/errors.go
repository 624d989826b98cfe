package action

import "errors"

var (
	// ErrActionNotFound indicates the action item doesn't exist.
	ErrActionNotFound = errors.New("action not found")
	// ErrInvalidStatus indicates an unknown status or an attempt to store overdue.
	ErrInvalidStatus = errors.New("invalid action status")
	// ErrConflict indicates the action changed since it was read.
	ErrConflict = errors.New("action modified concurrently")
	// ErrInvalidInput indicates invalid input for action operations.
	ErrInvalidInput = errors.New("invalid action input")
)
