// Package repository holds the errors shared by every storage adapter. Domain
// services translate them into their own sentinels.
package repository

import "errors"

var (
	// ErrNotFound means no stored row matches the requested id.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a versioned update lost a race, or an insert reused an id.
	ErrConflict = errors.New("conflict: stored version differs")

	// ErrForeignKeyViolation means a row referenced a missing parent row.
	ErrForeignKeyViolation = errors.New("foreign key violation")

	// ErrInvalidInput means the store rejected a value through a CHECK constraint.
	ErrInvalidInput = errors.New("invalid input")
)
