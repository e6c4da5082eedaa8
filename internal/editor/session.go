package editor

import (
	"fmt"
	"strings"

	"github.com/dshills/bight/internal/grid"
	"github.com/dshills/bight/internal/renderer"
)

// Mode is the edit session state.
type Mode uint8

const (
	// ModeNormal is the initial state: no selection, no pending edit.
	ModeNormal Mode = iota
	// ModeSelecting holds a block selection anchor.
	ModeSelecting
	// ModeEditing holds the single pending edit.
	ModeEditing
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeSelecting:
		return "selecting"
	case ModeEditing:
		return "editing"
	default:
		return "unknown"
	}
}

// Trigger is an input to the session state machine.
type Trigger uint8

const (
	TriggerBeginEdit Trigger = iota
	TriggerCommit
	TriggerCancel
	TriggerBeginSelect
	TriggerUpdate
	TriggerEndSelect
)

// String returns the trigger name.
func (t Trigger) String() string {
	switch t {
	case TriggerBeginEdit:
		return "begin_edit"
	case TriggerCommit:
		return "commit"
	case TriggerCancel:
		return "cancel"
	case TriggerBeginSelect:
		return "begin_select"
	case TriggerUpdate:
		return "update"
	case TriggerEndSelect:
		return "end_select"
	default:
		return "unknown"
	}
}

// EditKind distinguishes the two edit entry points.
type EditKind uint8

const (
	// EditInline edits the cell in place on the grid row.
	EditInline EditKind = iota
	// EditScratch edits the cell in a separate multi-line buffer.
	EditScratch
)

// String returns the kind name.
func (k EditKind) String() string {
	if k == EditScratch {
		return "scratch"
	}
	return "inline"
}

// transitions lists every valid (mode, trigger) pair. Anything missing is
// rejected.
var transitions = map[Mode]map[Trigger]Mode{
	ModeNormal: {
		TriggerBeginEdit:   ModeEditing,
		TriggerBeginSelect: ModeSelecting,
	},
	ModeSelecting: {
		TriggerUpdate:    ModeSelecting,
		TriggerEndSelect: ModeNormal,
	},
	ModeEditing: {
		TriggerCommit: ModeNormal,
		TriggerCancel: ModeNormal,
	},
}

// Session is the per-surface edit state machine.
type Session struct {
	geom grid.Geometry
	mode Mode

	// Selecting payload.
	anchor grid.CellPos

	// Editing payload.
	pos      grid.CellPos
	kind     EditKind
	rendered bool
}

// NewSession creates a session in ModeNormal.
func NewSession(geom grid.Geometry) *Session {
	return &Session{geom: geom}
}

// Mode returns the current state.
func (s *Session) Mode() Mode {
	return s.mode
}

// Pending returns the cell being edited, if any.
func (s *Session) Pending() (grid.CellPos, bool) {
	if s.mode != ModeEditing {
		return grid.CellPos{}, false
	}
	return s.pos, true
}

// Kind returns the entry point of the pending edit.
func (s *Session) Kind() EditKind {
	return s.kind
}

// Anchor returns the selection anchor while selecting.
func (s *Session) Anchor() (grid.CellPos, bool) {
	if s.mode != ModeSelecting {
		return grid.CellPos{}, false
	}
	return s.anchor, true
}

// fire applies t and returns the next mode without committing to it.
func (s *Session) fire(t Trigger) (Mode, error) {
	if t == TriggerBeginEdit && s.mode == ModeEditing {
		return s.mode, fmt.Errorf("%w: %s", ErrEditInProgress, s.pos)
	}
	next, ok := transitions[s.mode][t]
	if !ok {
		if s.mode != ModeEditing && (t == TriggerCommit || t == TriggerCancel) {
			return s.mode, ErrNotEditing
		}
		return s.mode, fmt.Errorf("%w: %s in %s mode", ErrInvalidTransition, t, s.mode)
	}
	return next, nil
}

// BeginEdit opens an edit of pos. A second edit while one is pending fails
// with ErrEditInProgress and leaves the first one in place.
func (s *Session) BeginEdit(pos grid.CellPos, kind EditKind) error {
	next, err := s.fire(TriggerBeginEdit)
	if err != nil {
		return err
	}
	s.mode = next
	s.pos = grid.Move(pos, 0, 0)
	s.kind = kind
	s.rendered = false
	return nil
}

// Commit closes the pending edit and returns the cell with its new source.
// An empty source means the cell should be cleared.
//
// For inline edits text is the whole grid row; everything before the
// cell's start column is dropped. The remainder is trimmed of surrounding
// whitespace.
func (s *Session) Commit(text string) (grid.CellPos, string, error) {
	next, err := s.fire(TriggerCommit)
	if err != nil {
		return grid.CellPos{}, "", err
	}

	src := text
	if s.kind == EditInline {
		src = dropColumns(renderer.FirstLine(text), s.geom.ColumnOf(s.pos.X))
	}
	src = strings.TrimSpace(src)

	pos := s.pos
	s.reset(next)
	return pos, src, nil
}

// Cancel discards the pending edit.
func (s *Session) Cancel() (grid.CellPos, error) {
	next, err := s.fire(TriggerCancel)
	if err != nil {
		return grid.CellPos{}, err
	}
	pos := s.pos
	s.reset(next)
	return pos, nil
}

// BeginSelect enters block selection anchored at pos.
func (s *Session) BeginSelect(pos grid.CellPos) error {
	next, err := s.fire(TriggerBeginSelect)
	if err != nil {
		return err
	}
	s.mode = next
	s.anchor = grid.Move(pos, 0, 0)
	return nil
}

// Update validates a cursor move during selection. The mode is unchanged.
func (s *Session) Update() error {
	_, err := s.fire(TriggerUpdate)
	return err
}

// EndSelect leaves block selection.
func (s *Session) EndSelect() error {
	next, err := s.fire(TriggerEndSelect)
	if err != nil {
		return err
	}
	s.reset(next)
	return nil
}

// Overlay returns the overlay for the next render, or nil when no edit is
// pending. The first render of an inline edit shows the cell source; later
// ones echo the live row. Scratch edits always show the source.
func (s *Session) Overlay() *renderer.Overlay {
	if s.mode != ModeEditing {
		return nil
	}
	mode := renderer.OverlaySource
	if s.kind == EditInline && s.rendered {
		mode = renderer.OverlayLive
	}
	return &renderer.Overlay{Pos: s.pos, Mode: mode}
}

// MarkRendered records that the overlay has been drawn.
func (s *Session) MarkRendered() {
	if s.mode == ModeEditing {
		s.rendered = true
	}
}

func (s *Session) reset(mode Mode) {
	s.mode = mode
	s.anchor = grid.CellPos{}
	s.pos = grid.CellPos{}
	s.kind = EditInline
	s.rendered = false
}

func dropColumns(text string, n int) string {
	runes := []rune(text)
	if n >= len(runes) {
		return ""
	}
	return string(runes[n:])
}
