package editor

import (
	"github.com/dshills/bight/internal/clipboard"
	"github.com/dshills/bight/internal/grid"
	"github.com/dshills/bight/internal/renderer/selection"
	"github.com/dshills/bight/internal/table"
)

// State is everything one open grid surface owns.
type State struct {
	Surface   Surface
	Table     table.Table
	Clipboard clipboard.Register
	Selection *selection.Tracker
	Session   *Session

	// Path is the backing file, empty for an unsaved grid.
	Path string
}

// NewState creates the state for a freshly opened surface. A nil clipboard
// gets a private in-memory register.
func NewState(surface Surface, tbl table.Table, clip clipboard.Register, geom grid.Geometry) *State {
	if clip == nil {
		clip = clipboard.NewMemory()
	}
	return &State{
		Surface:   surface,
		Table:     tbl,
		Clipboard: clip,
		Selection: selection.NewTracker(),
		Session:   NewSession(geom),
	}
}
