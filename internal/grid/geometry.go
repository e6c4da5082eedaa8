package grid

import (
	"errors"
	"fmt"
)

// Default cell layout.
const (
	DefaultCellWidth      = 8
	DefaultSeparatorWidth = 1
)

// ErrInvalidCoordinate is returned when a viewport position lies above the
// first line or left of the first column. Well-formed cursor state never
// produces one.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Geometry describes how cells are laid out horizontally in the viewport.
type Geometry struct {
	// CellWidth is the number of visible characters per cell.
	CellWidth int
	// SeparatorWidth is the number of padding characters after each cell.
	SeparatorWidth int
}

// DefaultGeometry is the layout used when no configuration overrides it.
var DefaultGeometry = Geometry{
	CellWidth:      DefaultCellWidth,
	SeparatorWidth: DefaultSeparatorWidth,
}

// NewGeometry creates a geometry, clamping the cell width to at least 1
// and the separator to at least 0.
func NewGeometry(cellWidth, separatorWidth int) Geometry {
	if cellWidth < 1 {
		cellWidth = 1
	}
	if separatorWidth < 0 {
		separatorWidth = 0
	}
	return Geometry{CellWidth: cellWidth, SeparatorWidth: separatorWidth}
}

// UnitWidth returns the width of a cell including its separator.
func (g Geometry) UnitWidth() int {
	return g.CellWidth + g.SeparatorWidth
}

// ColumnOf returns the viewport column where cell column x starts.
func (g Geometry) ColumnOf(x int) int {
	return x * g.UnitWidth()
}

// ToCell converts a viewport cursor position to the cell it falls in.
// Lines are 1-based, columns 0-based.
func (g Geometry) ToCell(col, line int) (CellPos, error) {
	if line < 1 || col < 0 {
		return CellPos{}, fmt.Errorf("%w: line %d, col %d", ErrInvalidCoordinate, line, col)
	}
	return CellPos{X: col / g.UnitWidth(), Y: line - 1}, nil
}

// FromCell returns the cursor position at the start of the cell.
func (g Geometry) FromCell(p CellPos) (line, col int) {
	return p.Y + 1, g.ColumnOf(p.X)
}

// FromCellVisual returns the cursor position at the end of the cell. Block
// selections park the cursor there so the selection covers the whole cell.
func (g Geometry) FromCellVisual(p CellPos) (line, col int) {
	line, col = g.FromCell(p)
	return line, col + g.CellWidth
}

// Normalize snaps col down to the nearest cell boundary.
func (g Geometry) Normalize(line, col int) (int, int) {
	if col < 0 {
		col = 0
	}
	return line, col - col%g.UnitWidth()
}

// Move offsets p by (dx, dy), clamping each axis at 0.
func (g Geometry) Move(p CellPos, dx, dy int) CellPos {
	return Move(p, dx, dy)
}

// ColumnsFor returns how many cell columns are needed to cover width
// viewport columns, counting a partially visible trailing cell.
func (g Geometry) ColumnsFor(width int) int {
	if width <= 0 {
		return 0
	}
	unit := g.UnitWidth()
	return (width + unit - 1) / unit
}

// Move offsets p by (dx, dy), clamping each axis at 0.
func Move(p CellPos, dx, dy int) CellPos {
	return CellPos{X: max(p.X+dx, 0), Y: max(p.Y+dy, 0)}
}

// ToCell converts a cursor position using DefaultGeometry.
func ToCell(col, line int) (CellPos, error) {
	return DefaultGeometry.ToCell(col, line)
}

// FromCell converts a cell position using DefaultGeometry.
func FromCell(p CellPos) (line, col int) {
	return DefaultGeometry.FromCell(p)
}

// FromCellVisual converts a cell position using DefaultGeometry.
func FromCellVisual(p CellPos) (line, col int) {
	return DefaultGeometry.FromCellVisual(p)
}

// Normalize snaps a cursor position using DefaultGeometry.
func Normalize(line, col int) (int, int) {
	return DefaultGeometry.Normalize(line, col)
}
