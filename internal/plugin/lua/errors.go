package lua

import "errors"

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout is returned when execution times out.
	ErrExecutionTimeout = errors.New("lua execution timeout")

	// ErrUnsupportedValue is returned when a Lua value has no Go equivalent.
	ErrUnsupportedValue = errors.New("unsupported lua value")
)
