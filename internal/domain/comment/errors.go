package comment

import "errors"

var (
	// ErrCommentNotFound indicates the comment doesn't exist.
	ErrCommentNotFound = errors.New("comment not found")
	// ErrParentNotFound indicates a reply to a comment that doesn't exist on the target.
	ErrParentNotFound = errors.New("parent comment not found")
	// ErrNotAuthor indicates an edit by someone other than the author.
	ErrNotAuthor = errors.New("only the author can edit a comment")
	// ErrConflict indicates the comment changed since it was read.
	ErrConflict = errors.New("comment modified concurrently")
	// ErrInvalidInput indicates invalid input for comment operations.
	ErrInvalidInput = errors.New("invalid comment input")
)
