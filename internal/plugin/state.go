package plugin

// State represents the lifecycle state of the host.
type State int

const (
	// StateUnloaded means no script has run.
	StateUnloaded State = iota

	// StateLoaded means the init script ran.
	StateLoaded

	// StateError means the init script failed.
	StateError

	// StateClosed means the Lua state was released.
	StateClosed
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoaded:
		return "loaded"
	case StateError:
		return "error"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
