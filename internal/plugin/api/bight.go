// Package api exposes the editor to Lua scripts as the bight module.
//
// Every function acts on the current surface, which the terminal host
// sets as focus moves and which a key binding sets to the surface it was
// pressed in.
package api

import (
	"context"
	"errors"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/bight/internal/editor"
	"github.com/dshills/bight/internal/grid"
	"github.com/dshills/bight/internal/host"
)

// ModuleName is the Lua global and require name of the API.
const ModuleName = "bight"

// ErrNoSurface is raised when a function runs with no current surface.
var ErrNoSurface = errors.New("no current surface")

// Caller runs a Lua function value. The plugin host implements it on its
// locked state.
type Caller interface {
	CallFunction(fn *lua.LFunction, args ...lua.LValue) error
}

// Context holds what the module reaches into.
type Context struct {
	Lookup editor.Lookup
	Keymap *host.Keymap
	Caller Caller
}

// Module implements the bight Lua module.
type Module struct {
	ctx *Context

	mu      sync.RWMutex
	current editor.SurfaceID
	hasCur  bool
}

// NewModule creates the module.
func NewModule(ctx *Context) *Module {
	return &Module{ctx: ctx}
}

// SetCurrent selects the surface functions act on.
func (m *Module) SetCurrent(id editor.SurfaceID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current, m.hasCur = id, true
}

// ClearCurrent forgets the current surface if it is id.
func (m *Module) ClearCurrent(id editor.SurfaceID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hasCur && m.current == id {
		m.hasCur = false
	}
}

// Current returns the current surface.
func (m *Module) Current() (editor.SurfaceID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current, m.hasCur
}

// Functions returns the module table.
func (m *Module) Functions() map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"get_value":        m.getValue,
		"get_source":       m.getSource,
		"set_source":       m.setSource,
		"range_csv":        m.rangeCSV,
		"set_visual_start": m.setVisualStart,
		"cell_pos":         m.cellPos,
		"set_cursor":       m.setCursor,
		"normalize_cursor": m.normalizeCursor,
		"move_cells":       m.moveCells,
		"notify":           m.notify,
		"keymap":           m.keymap,
	}
}

// with runs fn on the current surface's controller, raising a Lua error
// on failure.
func (m *Module) with(L *lua.LState, fn func(*editor.Controller) error) {
	id, ok := m.Current()
	if !ok {
		L.RaiseError("%v", ErrNoSurface)
		return
	}
	ctx := L.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := editor.With(ctx, m.ctx.Lookup, id, fn); err != nil {
		L.RaiseError("%v", err)
	}
}

func checkPos(L *lua.LState, n int) grid.CellPos {
	x, y := L.CheckInt(n), L.CheckInt(n+1)
	if x < 0 || y < 0 {
		L.ArgError(n, "cell coordinates must not be negative")
	}
	return grid.CellPos{X: x, Y: y}
}

// get_value(x, y) -> string
func (m *Module) getValue(L *lua.LState) int {
	pos := checkPos(L, 1)
	var v string
	m.with(L, func(c *editor.Controller) error {
		v = c.GetValue(pos)
		return nil
	})
	L.Push(lua.LString(v))
	return 1
}

// get_source(x, y) -> string or nil
func (m *Module) getSource(L *lua.LState) int {
	pos := checkPos(L, 1)
	var (
		src string
		ok  bool
	)
	m.with(L, func(c *editor.Controller) error {
		src, ok = c.GetSource(pos)
		return nil
	})
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(src))
	return 1
}

// set_source(x, y, src) sets the cell and redraws. An empty src clears it.
func (m *Module) setSource(L *lua.LState) int {
	pos := checkPos(L, 1)
	src := L.CheckString(3)
	m.with(L, func(c *editor.Controller) error {
		if src == "" {
			c.ClearSource(pos)
		} else {
			c.SetSource(pos, src)
		}
		return c.Render()
	})
	return 0
}

// range_csv(x1, y1, x2, y2) -> string
func (m *Module) rangeCSV(L *lua.LState) int {
	r := grid.RangeFromCorners(checkPos(L, 1), checkPos(L, 3))
	var csv string
	m.with(L, func(c *editor.Controller) error {
		csv = c.YankRangeAsTable(r)
		return nil
	})
	L.Push(lua.LString(csv))
	return 1
}

// set_visual_start(x, y)
func (m *Module) setVisualStart(L *lua.LState) int {
	pos := checkPos(L, 1)
	m.with(L, func(c *editor.Controller) error {
		c.SetVisualStart(pos)
		return nil
	})
	return 0
}

// cell_pos() -> x, y
func (m *Module) cellPos(L *lua.LState) int {
	var pos grid.CellPos
	m.with(L, func(c *editor.Controller) error {
		var err error
		pos, err = c.CurrentCell()
		return err
	})
	L.Push(lua.LNumber(pos.X))
	L.Push(lua.LNumber(pos.Y))
	return 2
}

// set_cursor(x, y)
func (m *Module) setCursor(L *lua.LState) int {
	pos := checkPos(L, 1)
	m.with(L, func(c *editor.Controller) error {
		return c.SetCursorToCell(pos)
	})
	return 0
}

// normalize_cursor()
func (m *Module) normalizeCursor(L *lua.LState) int {
	m.with(L, (*editor.Controller).NormalizeCursor)
	return 0
}

// move_cells(dx, dy)
func (m *Module) moveCells(L *lua.LState) int {
	dx, dy := L.CheckInt(1), L.CheckInt(2)
	m.with(L, func(c *editor.Controller) error {
		return c.MoveCells(dx, dy)
	})
	return 0
}

// notify(msg, level?) where level is debug, info, warn or error.
func (m *Module) notify(L *lua.LState) int {
	msg := L.CheckString(1)
	level, err := parseLevel(L.OptString(2, "info"))
	if err != nil {
		L.ArgError(2, err.Error())
		return 0
	}
	m.with(L, func(c *editor.Controller) error {
		c.State().Surface.Notify(level, msg)
		return nil
	})
	return 0
}

// keymap(mode, lhs, fn) binds fn to lhs in mode.
func (m *Module) keymap(L *lua.LState) int {
	mode, ok := host.ParseMode(L.CheckString(1))
	if !ok {
		L.ArgError(1, "unknown mode")
		return 0
	}
	lhs := L.CheckString(2)
	if lhs == "" {
		L.ArgError(2, "keys cannot be empty")
		return 0
	}
	fn := L.CheckFunction(3)
	if m.ctx.Keymap == nil {
		L.RaiseError("keymap: no keymap available")
		return 0
	}
	m.ctx.Keymap.Bind(mode, lhs, m.action(lhs, fn))
	return 0
}

// action wraps a Lua function as a key action on the surface it runs in.
func (m *Module) action(lhs string, fn *lua.LFunction) host.Action {
	return host.Action{
		Name: "lua:" + lhs,
		Run: func(_ context.Context, a *editor.Actor) (host.Effect, error) {
			m.SetCurrent(a.ID())
			if err := m.ctx.Caller.CallFunction(fn); err != nil {
				return host.Effect{}, fmt.Errorf("lua binding %q: %w", lhs, err)
			}
			return host.Effect{}, nil
		},
	}
}

func parseLevel(s string) (editor.Level, error) {
	switch s {
	case "debug":
		return editor.LevelDebug, nil
	case "info":
		return editor.LevelInfo, nil
	case "warn":
		return editor.LevelWarn, nil
	case "error":
		return editor.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown level %q", s)
	}
}
