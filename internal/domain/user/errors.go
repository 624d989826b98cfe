package user

import "errors"

var (
	// ErrUserNotFound indicates the user doesn't exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUser indicates two directory entries share an id.
	ErrDuplicateUser = errors.New("duplicate user id")
	// ErrInvalidInput indicates invalid input for user operations.
	ErrInvalidInput = errors.New("invalid user input")
)
