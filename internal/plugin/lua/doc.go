// Package lua provides the sandboxed Lua runtime shared by cell formulas and
// the scripting API.
//
// This package wraps the gopher-lua library to provide:
//   - Sandboxed Lua state management (no io, os, debug or file loading)
//   - Scalar Go-Lua value conversion for cell values
//   - Per-call execution timeouts through context cancellation
//
// # State
//
//	state, err := lua.NewState(lua.WithExecutionTimeout(time.Second))
//	if err != nil {
//	    return err
//	}
//	defer state.Close()
//
//	v, err := state.Eval("1 + 2")
//
// A State is not goroutine-safe beyond its own mutex: Lua code may call back
// into Go, and those callbacks run on the calling goroutine.
package lua
