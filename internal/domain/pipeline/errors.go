package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingReference indicates an item that points at an unconfigured stage.
	ErrMissingReference = errors.New("missing pipeline reference")
	// ErrInvalidProbability indicates a stage probability outside 0..100.
	ErrInvalidProbability = errors.New("stage probability out of range")
	// ErrNegativeAmount indicates an opportunity with a negative amount.
	ErrNegativeAmount = errors.New("negative pipeline amount")
	// ErrDuplicateStage indicates two configured stages sharing an id.
	ErrDuplicateStage = errors.New("duplicate pipeline stage")
)

// MissingReferenceError names the item and the stage it failed to resolve.
type MissingReferenceError struct {
	ItemID string
	Stage  StageID
}

func (e *MissingReferenceError) Error() string {
	return fmt.Sprintf("pipeline item %q references unknown stage %q", e.ItemID, e.Stage)
}

// Is reports whether target is ErrMissingReference.
func (e *MissingReferenceError) Is(target error) bool {
	return target == ErrMissingReference
}
