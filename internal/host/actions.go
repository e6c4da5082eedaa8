package host

import (
	"context"

	"github.com/dshills/bight/internal/editor"
	"github.com/dshills/bight/internal/grid"
)

// Effect tells the host what to do after an action ran.
type Effect struct {
	// SwitchMode requests a switch to Mode.
	SwitchMode bool
	Mode       Mode

	// Scratch is set when the action opened a scratch edit.
	Scratch *editor.Scratch
}

// Action is a named operation bound to keys.
type Action struct {
	Name string
	Run  func(ctx context.Context, a *editor.Actor) (Effect, error)
}

// simple wraps a controller operation that needs no effect.
func simple(name string, fn func(*editor.Controller) error) Action {
	return Action{
		Name: name,
		Run: func(ctx context.Context, a *editor.Actor) (Effect, error) {
			return Effect{}, a.Do(ctx, fn)
		},
	}
}

// switchTo wraps a controller operation followed by a mode switch.
func switchTo(name string, mode Mode, fn func(*editor.Controller) error) Action {
	return Action{
		Name: name,
		Run: func(ctx context.Context, a *editor.Actor) (Effect, error) {
			if err := a.Do(ctx, fn); err != nil {
				return Effect{}, err
			}
			return Effect{SwitchMode: true, Mode: mode}, nil
		},
	}
}

// MoveAction moves the cursor by whole cells.
func MoveAction(name string, dx, dy int) Action {
	return simple(name, func(c *editor.Controller) error {
		return c.MoveCells(dx, dy)
	})
}

// VisualMoveAction moves the cursor by whole cells during block selection.
func VisualMoveAction(name string, dx, dy int) Action {
	return simple(name, func(c *editor.Controller) error {
		return c.MoveCellsVisual(dx, dy)
	})
}

// onCurrent runs fn on the cell under the cursor.
func onCurrent(fn func(*editor.Controller, grid.CellPos) error) func(*editor.Controller) error {
	return func(c *editor.Controller) error {
		pos, err := c.CurrentCell()
		if err != nil {
			return err
		}
		return fn(c, pos)
	}
}

// onSelection runs fn on the selected range.
func onSelection(fn func(*editor.Controller, grid.CellRange) error) func(*editor.Controller) error {
	return func(c *editor.Controller) error {
		r, err := c.Selection()
		if err != nil {
			return err
		}
		return fn(c, r)
	}
}

// Built-in actions.
var (
	ActionMoveLeft  = MoveAction("move_left", -1, 0)
	ActionMoveRight = MoveAction("move_right", 1, 0)
	ActionMoveUp    = MoveAction("move_up", 0, -1)
	ActionMoveDown  = MoveAction("move_down", 0, 1)

	ActionVisualLeft  = VisualMoveAction("visual_move_left", -1, 0)
	ActionVisualRight = VisualMoveAction("visual_move_right", 1, 0)
	ActionVisualUp    = VisualMoveAction("visual_move_up", 0, -1)
	ActionVisualDown  = VisualMoveAction("visual_move_down", 0, 1)

	ActionVisualBlock = switchTo("visual_block", ModeVisualBlock, func(c *editor.Controller) error {
		return c.MoveCellsVisual(0, 0)
	})

	ActionBeginEdit = switchTo("begin_edit", ModeInsert, onCurrent(func(c *editor.Controller, p grid.CellPos) error {
		return c.BeginEdit(p)
	}))

	ActionCancelEdit = switchTo("cancel_edit", ModeNormal, (*editor.Controller).CancelEdit)

	ActionBeginScratch = Action{
		Name: "begin_scratch",
		Run: func(ctx context.Context, a *editor.Actor) (Effect, error) {
			var sc editor.Scratch
			err := a.Do(ctx, onCurrent(func(c *editor.Controller, p grid.CellPos) error {
				var err error
				sc, err = c.BeginScratchEdit(p)
				return err
			}))
			if err != nil {
				return Effect{}, err
			}
			return Effect{SwitchMode: true, Mode: ModeScratch, Scratch: &sc}, nil
		},
	}

	ActionYank = simple("yank", onCurrent(func(c *editor.Controller, p grid.CellPos) error {
		c.Yank(p)
		return nil
	}))

	ActionYankValue = simple("yank_value", onCurrent(func(c *editor.Controller, p grid.CellPos) error {
		c.YankValue(p)
		return nil
	}))

	ActionPaste = simple("paste", onCurrent(func(c *editor.Controller, p grid.CellPos) error {
		c.PasteAt(p)
		return c.Render()
	}))

	ActionVisualClear = switchTo("visual_clear", ModeNormal, onSelection(func(c *editor.Controller, r grid.CellRange) error {
		c.ClearRange(r)
		return c.Render()
	}))

	ActionVisualPaste = switchTo("visual_paste", ModeNormal, onSelection(func(c *editor.Controller, r grid.CellRange) error {
		c.PasteRange(r)
		return c.Render()
	}))

	ActionVisualYank = switchTo("visual_yank", ModeNormal, onSelection(func(c *editor.Controller, r grid.CellRange) error {
		c.YankRange(r)
		return nil
	}))

	ActionVisualExit = switchTo("visual_exit", ModeNormal, func(*editor.Controller) error {
		return nil
	})
)
