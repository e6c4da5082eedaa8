package plugin

import (
	"fmt"
	"sync"
	"time"

	"github.com/dshills/bight/internal/editor"
	"github.com/dshills/bight/internal/host"
	"github.com/dshills/bight/internal/plugin/api"
	plua "github.com/dshills/bight/internal/plugin/lua"
)

// Host manages the Lua state that runs the init script.
type Host struct {
	mu sync.RWMutex

	state  *plua.State
	module *api.Module

	hostState State
	err       error
	path      string

	executionTimeout time.Duration
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithHostExecutionTimeout sets the execution timeout for script calls.
func WithHostExecutionTimeout(d time.Duration) HostOption {
	return func(h *Host) {
		h.executionTimeout = d
	}
}

// NewHost creates a Lua state with the bight module bound to lookup and
// keymap.
func NewHost(lookup editor.Lookup, keymap *host.Keymap, opts ...HostOption) (*Host, error) {
	h := &Host{
		hostState:        StateUnloaded,
		executionTimeout: plua.DefaultExecutionTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}

	state, err := plua.NewState(plua.WithExecutionTimeout(h.executionTimeout))
	if err != nil {
		return nil, err
	}
	h.state = state
	h.module = api.NewModule(&api.Context{
		Lookup: lookup,
		Keymap: keymap,
		Caller: state,
	})
	state.RegisterModule(api.ModuleName, h.module.Functions())
	return h, nil
}

// State returns the current lifecycle state.
func (h *Host) State() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.hostState
}

// Error returns the error that put the host in StateError.
func (h *Host) Error() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.err
}

// Path returns the loaded script path.
func (h *Host) Path() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.path
}

// Load runs the script at path once.
func (h *Host) Load(path string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch h.hostState {
	case StateClosed:
		return ErrClosed
	case StateUnloaded:
	default:
		return ErrAlreadyLoaded
	}

	h.path = path
	if err := h.state.DoFile(path); err != nil {
		h.hostState = StateError
		h.err = fmt.Errorf("loading %s: %w", path, err)
		return h.err
	}
	h.hostState = StateLoaded
	return nil
}

// Run executes a chunk of Lua, for scripts given inline.
func (h *Host) Run(code string) error {
	if h.State() == StateClosed {
		return ErrClosed
	}
	return h.state.DoString(code)
}

// Focus makes id the surface script functions act on.
func (h *Host) Focus(id editor.SurfaceID) {
	h.module.SetCurrent(id)
}

// Blur forgets id if it has focus.
func (h *Host) Blur(id editor.SurfaceID) {
	h.module.ClearCurrent(id)
}

// Close releases the Lua state.
func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.hostState == StateClosed {
		return nil
	}
	h.hostState = StateClosed
	return h.state.Close()
}
