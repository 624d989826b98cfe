package kpi

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingReference indicates a KPI id that has no matching configuration.
	ErrMissingReference = errors.New("missing kpi reference")
	// ErrUnknownMonth indicates a month that is not part of the fiscal month order.
	ErrUnknownMonth = errors.New("unknown fiscal month")
	// ErrInvalidDataset indicates a dataset that violates its structural invariants.
	ErrInvalidDataset = errors.New("invalid kpi dataset")
)

// MissingReferenceError names the configuration table and id that failed to resolve.
type MissingReferenceError struct {
	Kind string
	ID   string
}

func (e *MissingReferenceError) Error() string {
	return fmt.Sprintf("%s %q not configured", e.Kind, e.ID)
}

// Is reports whether target is ErrMissingReference.
func (e *MissingReferenceError) Is(target error) bool {
	return target == ErrMissingReference
}
