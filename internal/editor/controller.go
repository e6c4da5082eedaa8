package editor

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dshills/bight/internal/grid"
	"github.com/dshills/bight/internal/renderer"
	"github.com/dshills/bight/internal/renderer/selection"
	"github.com/dshills/bight/internal/table"
)

// Scratch describes a scratch buffer opened for multi-line editing.
type Scratch struct {
	Name  string
	Pos   grid.CellPos
	Lines []string
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(l Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithGeometry sets the cell layout. It must match the geometry the
// session was created with.
func WithGeometry(g grid.Geometry) Option {
	return func(c *Controller) {
		c.geom = g
	}
}

// WithScratchIDs replaces the generator of scratch buffer name suffixes.
func WithScratchIDs(fn func() string) Option {
	return func(c *Controller) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// Controller exposes the editor operations on one State.
type Controller struct {
	state  *State
	geom   grid.Geometry
	render *renderer.Renderer
	logger Logger
	newID  func() string
}

// NewController creates a controller for st.
func NewController(st *State, opts ...Option) *Controller {
	c := &Controller{
		state:  st,
		geom:   grid.DefaultGeometry,
		logger: nopLogger{},
		newID:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(c)
	}
	c.render = renderer.New(renderer.Options{Geometry: c.geom})
	return c
}

// State returns the controlled state.
func (c *Controller) State() *State {
	return c.state
}

// Geometry returns the cell layout.
func (c *Controller) Geometry() grid.Geometry {
	return c.geom
}

// Mode returns the edit session mode.
func (c *Controller) Mode() Mode {
	return c.state.Session.Mode()
}

// GetValue evaluates the table and returns the display text of pos,
// unclipped. Empty cells return "".
func (c *Controller) GetValue(pos grid.CellPos) string {
	c.state.Table.Evaluate()
	v, ok := c.state.Table.Get(pos)
	if !ok {
		return ""
	}
	return v.String()
}

// GetSource returns the raw source of pos.
func (c *Controller) GetSource(pos grid.CellPos) (string, bool) {
	return c.state.Table.Source(pos)
}

// SetSource replaces the source of pos. It does not render.
func (c *Controller) SetSource(pos grid.CellPos, src string) {
	c.state.Table.SetSource(pos, src)
}

// ClearSource removes the source of pos. It does not render.
func (c *Controller) ClearSource(pos grid.CellPos) {
	c.state.Table.Clear(pos)
}

// Yank copies the raw source of pos to the clipboard.
func (c *Controller) Yank(pos grid.CellPos) {
	src, _ := c.GetSource(pos)
	c.state.Clipboard.Set(src)
}

// YankValue copies the evaluated value of pos to the clipboard.
func (c *Controller) YankValue(pos grid.CellPos) {
	c.state.Clipboard.Set(c.GetValue(pos))
}

// YankRangeAsTable returns the evaluated values of r as CSV, row-major.
func (c *Controller) YankRangeAsTable(r grid.CellRange) string {
	c.state.Table.Evaluate()
	return table.SliceToCSV(c.state.Table.Slice(r))
}

// YankRange copies the values of r to the clipboard as CSV.
func (c *Controller) YankRange(r grid.CellRange) string {
	text := c.YankRangeAsTable(r)
	c.state.Clipboard.Set(text)
	return text
}

// ClearRange removes the source of every cell in r, row-major.
func (c *Controller) ClearRange(r grid.CellRange) {
	selection.ForEachCell(r, func(p grid.CellPos) bool {
		c.state.Table.Clear(p)
		return true
	})
}

// PasteAt writes the clipboard content as the source of pos. An empty
// clipboard clears the cell.
func (c *Controller) PasteAt(pos grid.CellPos) {
	c.paste(pos, c.clipboardText())
}

// PasteRange writes the clipboard content to every cell of r, row-major.
func (c *Controller) PasteRange(r grid.CellRange) {
	text := c.clipboardText()
	selection.ForEachCell(r, func(p grid.CellPos) bool {
		c.paste(p, text)
		return true
	})
}

func (c *Controller) clipboardText() string {
	text, _ := c.state.Clipboard.Get()
	return text
}

func (c *Controller) paste(pos grid.CellPos, text string) {
	if text == "" {
		c.state.Table.Clear(pos)
		return
	}
	c.state.Table.SetSource(pos, text)
}

// BeginEdit opens an inline edit of pos, parks the cursor at the cell start
// and renders the overlay.
func (c *Controller) BeginEdit(pos grid.CellPos) error {
	if err := c.state.Session.BeginEdit(pos, EditInline); err != nil {
		return opError("begin edit", pos.String(), err)
	}
	c.logger.Debug("begin edit %s", pos)
	if err := c.SetCursorToCell(pos); err != nil {
		return c.abortBegin(err)
	}
	if err := c.Render(); err != nil {
		return c.abortBegin(err)
	}
	return nil
}

// abortBegin drops an edit whose start could not be shown, so the session
// does not stay in Editing with nothing on screen to close it.
func (c *Controller) abortBegin(err error) error {
	if pos, cerr := c.state.Session.Cancel(); cerr == nil {
		c.logger.Debug("abort edit %s: %v", pos, err)
	}
	return err
}

// CommitEdit closes the pending inline edit using rowText, the full text of
// the edited grid row, and renders.
func (c *Controller) CommitEdit(rowText string) error {
	if err := c.expectKind(EditInline); err != nil {
		return opError("commit edit", "", err)
	}
	return c.commit(rowText)
}

// CommitPending closes the pending inline edit using the row currently on
// the surface.
func (c *Controller) CommitPending() error {
	pos, ok := c.state.Session.Pending()
	if !ok {
		return opError("commit edit", "", ErrNotEditing)
	}
	if err := c.expectKind(EditInline); err != nil {
		return opError("commit edit", pos.String(), err)
	}
	line, err := c.state.Surface.Line(pos.Y)
	if err != nil {
		return opError("commit edit", pos.String(), err)
	}
	return c.commit(line)
}

// CancelEdit discards the pending edit, inline or scratch, and renders.
func (c *Controller) CancelEdit() error {
	pos, err := c.state.Session.Cancel()
	if err != nil {
		return opError("cancel edit", "", err)
	}
	c.logger.Debug("cancel edit %s", pos)
	return c.Render()
}

// BeginScratchEdit opens an edit of pos in a separate buffer. The returned
// Scratch carries the buffer name and the current source split into lines.
func (c *Controller) BeginScratchEdit(pos grid.CellPos) (Scratch, error) {
	if err := c.state.Session.BeginEdit(pos, EditScratch); err != nil {
		return Scratch{}, opError("begin scratch edit", pos.String(), err)
	}
	pos, _ = c.state.Session.Pending()

	src, _ := c.GetSource(pos)
	sc := Scratch{
		Name:  fmt.Sprintf("%s-%s", pos, c.newID()),
		Pos:   pos,
		Lines: strings.Split(src, "\n"),
	}
	c.logger.Debug("begin scratch edit %s as %s", pos, sc.Name)
	if err := c.Render(); err != nil {
		return Scratch{}, c.abortBegin(err)
	}
	return sc, nil
}

// CommitScratch closes the pending scratch edit with the buffer lines and
// renders.
func (c *Controller) CommitScratch(lines []string) error {
	if err := c.expectKind(EditScratch); err != nil {
		return opError("commit scratch", "", err)
	}
	return c.commit(strings.Join(lines, "\n"))
}

func (c *Controller) expectKind(kind EditKind) error {
	if _, ok := c.state.Session.Pending(); !ok {
		return ErrNotEditing
	}
	if got := c.state.Session.Kind(); got != kind {
		return fmt.Errorf("%w: pending edit is %s", ErrInvalidTransition, got)
	}
	return nil
}

func (c *Controller) commit(text string) error {
	pos, src, err := c.state.Session.Commit(text)
	if err != nil {
		return opError("commit edit", "", err)
	}
	if src == "" {
		c.state.Table.Clear(pos)
	} else {
		c.state.Table.SetSource(pos, src)
	}
	c.logger.Debug("commit edit %s", pos)
	return c.Render()
}

// BeginSelect enters block selection anchored at pos.
func (c *Controller) BeginSelect(pos grid.CellPos) error {
	if err := c.state.Session.BeginSelect(pos); err != nil {
		return opError("begin select", pos.String(), err)
	}
	c.state.Selection.Begin(pos)
	return nil
}

// UpdateSelection returns the range between the anchor and cursor.
func (c *Controller) UpdateSelection(cursor grid.CellPos) (grid.CellRange, error) {
	if err := c.state.Session.Update(); err != nil {
		return grid.CellRange{}, opError("update selection", cursor.String(), err)
	}
	return c.state.Selection.Range(cursor), nil
}

// Selection returns the range between the anchor and the cursor cell.
func (c *Controller) Selection() (grid.CellRange, error) {
	cur, err := c.CurrentCell()
	if err != nil {
		return grid.CellRange{}, err
	}
	return c.UpdateSelection(cur)
}

// EndSelect leaves block selection and snaps the cursor to a cell boundary.
func (c *Controller) EndSelect() error {
	if err := c.state.Session.EndSelect(); err != nil {
		return opError("end select", "", err)
	}
	c.state.Selection.End()
	return c.NormalizeCursor()
}

// SetVisualStart overwrites the selection anchor.
func (c *Controller) SetVisualStart(pos grid.CellPos) {
	c.state.Selection.Begin(pos)
}

// Render draws the table into the surface, with the edit overlay and
// highlight when an edit is pending.
func (c *Controller) Render() error {
	s := c.state.Surface
	width, height, err := s.Size()
	if err != nil {
		return opError("render", "", err)
	}

	ov := c.state.Session.Overlay()
	if ov != nil && ov.Mode == renderer.OverlayLive {
		if ov.Pos.Y < height {
			if ov.Live, err = s.Line(ov.Pos.Y); err != nil {
				return opError("render", ov.Pos.String(), err)
			}
		}
	}

	frame := c.render.Render(c.state.Table, width, height, ov)
	if err := s.SetLines(0, height, frame.Lines); err != nil {
		return opError("render", "", err)
	}
	if frame.Highlight != nil {
		err = s.SetHighlight(*frame.Highlight)
	} else {
		err = s.ClearHighlight()
	}
	if err != nil {
		return opError("render", "", err)
	}

	c.state.Session.MarkRendered()
	return nil
}

// CurrentCell returns the cell under the cursor.
func (c *Controller) CurrentCell() (grid.CellPos, error) {
	line, col, err := c.state.Surface.Cursor()
	if err != nil {
		return grid.CellPos{}, opError("cursor", "", err)
	}
	pos, err := c.geom.ToCell(col, line)
	if err != nil {
		return grid.CellPos{}, opError("cursor", "", err)
	}
	return pos, nil
}

// SetCursorToCell moves the cursor to the start of pos.
func (c *Controller) SetCursorToCell(pos grid.CellPos) error {
	line, col := c.geom.FromCell(pos)
	return opError("set cursor", pos.String(), c.state.Surface.SetCursor(line, col))
}

// MoveCells moves the cursor by whole cells.
func (c *Controller) MoveCells(dx, dy int) error {
	cur, err := c.CurrentCell()
	if err != nil {
		return err
	}
	return c.SetCursorToCell(c.geom.Move(cur, dx, dy))
}

// MoveCellsVisual moves the cursor by whole cells, parking it at the end of
// the target cell as block selections expect.
func (c *Controller) MoveCellsVisual(dx, dy int) error {
	cur, err := c.CurrentCell()
	if err != nil {
		return err
	}
	pos := c.geom.Move(cur, dx, dy)
	line, col := c.geom.FromCellVisual(pos)
	return opError("set cursor", pos.String(), c.state.Surface.SetCursor(line, col))
}

// NormalizeCursor snaps the cursor to the start of its cell.
func (c *Controller) NormalizeCursor() error {
	line, col, err := c.state.Surface.Cursor()
	if err != nil {
		return opError("cursor", "", err)
	}
	if line < 1 {
		line = 1
	}
	line, col = c.geom.Normalize(line, col)
	return opError("set cursor", "", c.state.Surface.SetCursor(line, col))
}

// Save writes the table sources to path, or to the state path when path
// is empty.
func (c *Controller) Save(p Persistence, path string) error {
	if path == "" {
		path = c.state.Path
	}
	src, ok := c.state.Table.(interface{ SourceTable() *table.SourceTable })
	if !ok {
		return opError("save", path, ErrNotPersistable)
	}
	if err := p.Save(path, src.SourceTable()); err != nil {
		return opError("save", path, err)
	}
	c.state.Path = path
	c.logger.Info("saved %s", path)
	return nil
}

// Reload replaces the table sources and renders. It is refused while an
// edit is pending.
func (c *Controller) Reload(src *table.SourceTable) error {
	if pos, ok := c.state.Session.Pending(); ok {
		return opError("reload", c.state.Path, fmt.Errorf("%w: %s", ErrEditInProgress, pos))
	}
	r, ok := c.state.Table.(interface{ Replace(*table.SourceTable) })
	if !ok {
		return opError("reload", c.state.Path, ErrNotPersistable)
	}
	r.Replace(src)
	return c.Render()
}
