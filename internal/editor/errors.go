package editor

import (
	"errors"
	"fmt"
)

// Editor errors.
var (
	// ErrEditInProgress is returned when an edit begins while another is
	// pending.
	ErrEditInProgress = errors.New("edit already in progress")

	// ErrInvalidTransition is returned for a session trigger that is not
	// valid in the current mode.
	ErrInvalidTransition = errors.New("invalid session transition")

	// ErrNotEditing is returned when committing or cancelling without a
	// pending edit.
	ErrNotEditing = errors.New("no edit in progress")

	// ErrActorClosed is returned when sending to a closed actor.
	ErrActorClosed = errors.New("editor actor is closed")

	// ErrUnknownSurface is returned when no editor is registered for a
	// surface.
	ErrUnknownSurface = errors.New("unknown surface")

	// ErrNotPersistable is returned when the table cannot expose its
	// sources for saving.
	ErrNotPersistable = errors.New("table cannot be persisted")
)

// OperationError records a failed controller operation.
type OperationError struct {
	Op     string // Operation name (e.g., "render", "commit")
	Target string // Cell or surface the operation applied to
	Err    error  // Underlying error
}

func (e *OperationError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("editor: %s %s: %v", e.Op, e.Target, e.Err)
	}
	return fmt.Sprintf("editor: %s: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

func opError(op, target string, err error) error {
	if err == nil {
		return nil
	}
	return &OperationError{Op: op, Target: target, Err: err}
}
