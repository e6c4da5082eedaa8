package plugin

import "errors"

// Plugin host errors.
var (
	// ErrAlreadyLoaded is returned when a script is loaded twice.
	ErrAlreadyLoaded = errors.New("script is already loaded")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("plugin host is closed")
)
