package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/vantage/internal/domain/action"
	"github.com/rpggio/vantage/internal/domain/activity"
	"github.com/rpggio/vantage/internal/domain/comment"
	"github.com/rpggio/vantage/internal/domain/kpi"
	"github.com/rpggio/vantage/internal/domain/notification"
	"github.com/rpggio/vantage/internal/domain/pipeline"
	"github.com/rpggio/vantage/internal/repository"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// errInvalidArgument flags malformed tool arguments.
var errInvalidArgument = errors.New("invalid argument")

// MapError maps domain errors to MCP error codes. Unknown errors map to
// INTERNAL_ERROR.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, comment.ErrCommentNotFound):
		return &APIError{Code: "COMMENT_NOT_FOUND", Message: "comment not found", RecoveryHint: "Fetch the thread with get_comment_thread to find valid ids"}
	case errors.Is(err, comment.ErrParentNotFound):
		return &APIError{Code: "PARENT_NOT_FOUND", Message: "parent comment not found on this target", RecoveryHint: "Reply to a comment from the same thread or omit parent_id"}
	case errors.Is(err, comment.ErrNotAuthor):
		return &APIError{Code: "NOT_AUTHOR", Message: "only the author can edit a comment"}
	case errors.Is(err, action.ErrActionNotFound):
		return &APIError{Code: "ACTION_NOT_FOUND", Message: "action not found", RecoveryHint: "Use list_actions to find valid ids"}
	case errors.Is(err, action.ErrInvalidStatus):
		return &APIError{Code: "INVALID_STATUS", Message: err.Error(), RecoveryHint: "Use pending, in_progress or completed; overdue is derived"}
	case errors.Is(err, notification.ErrNotificationNotFound):
		return &APIError{Code: "NOTIFICATION_NOT_FOUND", Message: "notification not found"}
	case errors.Is(err, comment.ErrConflict), errors.Is(err, action.ErrConflict), errors.Is(err, repository.ErrConflict):
		return &APIError{Code: "CONFLICT", Message: "modified by another writer", RecoveryHint: "Reload and retry with the current version"}
	case errors.Is(err, kpi.ErrUnknownMonth):
		return &APIError{Code: "UNKNOWN_MONTH", Message: err.Error(), RecoveryHint: "Use a month from the fiscal year, e.g. 2024-04"}
	case errors.Is(err, kpi.ErrMissingReference), errors.Is(err, pipeline.ErrMissingReference):
		return &APIError{Code: "MISSING_REFERENCE", Message: err.Error(), RecoveryHint: "Fix the dataset or pipeline configuration"}
	case errors.Is(err, kpi.ErrInvalidDataset), errors.Is(err, pipeline.ErrInvalidProbability), errors.Is(err, pipeline.ErrNegativeAmount),
		errors.Is(err, pipeline.ErrDuplicateStage):
		return &APIError{Code: "INVALID_DATA", Message: err.Error()}
	case errors.Is(err, comment.ErrInvalidInput), errors.Is(err, action.ErrInvalidInput),
		errors.Is(err, notification.ErrInvalidInput), errors.Is(err, activity.ErrInvalidInput),
		errors.Is(err, repository.ErrInvalidInput), errors.Is(err, errInvalidArgument):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	case errors.Is(err, repository.ErrNotFound):
		return &APIError{Code: "NOT_FOUND", Message: err.Error()}
	default:
		return &APIError{Code: "INTERNAL_ERROR", Message: err.Error()}
	}
}
