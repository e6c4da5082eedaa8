package grid

import "fmt"

// CellPos is a logical cell coordinate. Both axes are 0-based.
type CellPos struct {
	X int
	Y int
}

// Pos creates a cell position.
func Pos(x, y int) CellPos {
	return CellPos{X: x, Y: y}
}

// Valid reports whether both axes are non-negative.
func (p CellPos) Valid() bool {
	return p.X >= 0 && p.Y >= 0
}

// Less orders positions row-major: by Y, then by X.
func (p CellPos) Less(other CellPos) bool {
	if p.Y != other.Y {
		return p.Y < other.Y
	}
	return p.X < other.X
}

// String returns the position as "(x, y)".
func (p CellPos) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// CellRange is an axis-aligned rectangle of cells. Start is the top-left
// corner and both Width and Height are at least 1.
type CellRange struct {
	Start  CellPos
	Width  int
	Height int
}

// RangeFromCorners normalizes two arbitrary corner positions into a range.
// Both corners are included.
func RangeFromCorners(a, b CellPos) CellRange {
	return CellRange{
		Start:  CellPos{X: min(a.X, b.X), Y: min(a.Y, b.Y)},
		Width:  abs(a.X-b.X) + 1,
		Height: abs(a.Y-b.Y) + 1,
	}
}

// SingleCell returns the range covering exactly one cell.
func SingleCell(p CellPos) CellRange {
	return CellRange{Start: p, Width: 1, Height: 1}
}

// End returns the bottom-right cell of the range (inclusive).
func (r CellRange) End() CellPos {
	return CellPos{X: r.Start.X + r.Width - 1, Y: r.Start.Y + r.Height - 1}
}

// Len returns the number of cells in the range.
func (r CellRange) Len() int {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

// Contains returns true if p lies within the range.
func (r CellRange) Contains(p CellPos) bool {
	end := r.End()
	return p.X >= r.Start.X && p.X <= end.X && p.Y >= r.Start.Y && p.Y <= end.Y
}

// Each calls fn for every cell of the range in row-major order: rows are
// the outer loop, columns the inner one. Iteration stops early if fn
// returns false.
func (r CellRange) Each(fn func(CellPos) bool) {
	for dy := 0; dy < r.Height; dy++ {
		for dx := 0; dx < r.Width; dx++ {
			if !fn(CellPos{X: r.Start.X + dx, Y: r.Start.Y + dy}) {
				return
			}
		}
	}
}

// String returns the range as "(x, y)+WxH".
func (r CellRange) String() string {
	return fmt.Sprintf("%s+%dx%d", r.Start, r.Width, r.Height)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
