package host

import "github.com/dshills/bight/internal/editor"

// Mode is the host's editing mode for a surface.
type Mode uint8

const (
	ModeNormal Mode = iota
	ModeVisualBlock
	ModeInsert
	ModeScratch
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "NORMAL"
	case ModeVisualBlock:
		return "V-BLOCK"
	case ModeInsert:
		return "INSERT"
	case ModeScratch:
		return "SCRATCH"
	default:
		return "UNKNOWN"
	}
}

// ParseMode converts a mode name as used in keymaps ("n", "normal", "v",
// "visual", "i", "insert") to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "n", "normal":
		return ModeNormal, true
	case "v", "x", "visual", "vblock":
		return ModeVisualBlock, true
	case "i", "insert":
		return ModeInsert, true
	case "s", "scratch":
		return ModeScratch, true
	default:
		return ModeNormal, false
	}
}

// Event is something the host reports about a surface.
type Event interface {
	SurfaceID() editor.SurfaceID
}

// ViewportOpened reports a new grid surface, optionally backed by a file.
type ViewportOpened struct {
	Surface editor.Surface
	Path    string
}

// ViewportResized reports new surface dimensions.
type ViewportResized struct {
	ID editor.SurfaceID
}

// CursorMoved reports a cursor move on the surface.
type CursorMoved struct {
	ID editor.SurfaceID
}

// ModeChanged reports a host mode switch.
type ModeChanged struct {
	ID   editor.SurfaceID
	Mode Mode
}

// CommitRequested asks for the surface to be written to its file.
type CommitRequested struct {
	ID editor.SurfaceID
}

// InsertLeft reports that insert mode ended on the surface.
type InsertLeft struct {
	ID editor.SurfaceID
}

// ViewportClosed reports that the surface is gone.
type ViewportClosed struct {
	ID editor.SurfaceID
}

func (e ViewportOpened) SurfaceID() editor.SurfaceID  { return e.Surface.ID() }
func (e ViewportResized) SurfaceID() editor.SurfaceID { return e.ID }
func (e CursorMoved) SurfaceID() editor.SurfaceID     { return e.ID }
func (e ModeChanged) SurfaceID() editor.SurfaceID     { return e.ID }
func (e CommitRequested) SurfaceID() editor.SurfaceID { return e.ID }
func (e InsertLeft) SurfaceID() editor.SurfaceID      { return e.ID }
func (e ViewportClosed) SurfaceID() editor.SurfaceID  { return e.ID }
