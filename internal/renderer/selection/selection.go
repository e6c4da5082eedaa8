// Package selection tracks block selections over grid cells.
package selection

import (
	"sync"

	"github.com/dshills/bight/internal/grid"
)

// Tracker holds the anchor of a block selection. The active range is always
// derived from the anchor and the current cursor cell.
type Tracker struct {
	mu sync.RWMutex

	anchor grid.CellPos
	active bool
}

// NewTracker creates a tracker anchored at the origin.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Begin anchors a new selection at pos. Negative axes are clamped to 0.
func (t *Tracker) Begin(pos grid.CellPos) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.anchor = grid.Move(pos, 0, 0)
	t.active = true
}

// End marks the selection inactive. The anchor is kept.
func (t *Tracker) End() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = false
}

// Anchor returns the selection anchor.
func (t *Tracker) Anchor() grid.CellPos {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.anchor
}

// IsActive reports whether a selection is in progress.
func (t *Tracker) IsActive() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active
}

// Range returns the inclusive rectangle spanned by the anchor and cursor.
func (t *Tracker) Range(cursor grid.CellPos) grid.CellRange {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return grid.RangeFromCorners(t.anchor, cursor)
}

// ForEachCell calls f for every cell of r, rows outer and columns inner.
// Iteration stops early if f returns false.
func ForEachCell(r grid.CellRange, f func(grid.CellPos) bool) {
	r.Each(f)
}

// Columns returns the viewport columns [start, end) covered by r on any of
// its rows, for drawing the selection.
func Columns(r grid.CellRange, g grid.Geometry) (start, end int) {
	start = g.ColumnOf(r.Start.X)
	end = g.ColumnOf(r.Start.X+r.Width) - g.SeparatorWidth
	return start, end
}
