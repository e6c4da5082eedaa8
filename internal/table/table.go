package table

import (
	"sort"
	"sync"

	"github.com/dshills/bight/internal/grid"
)

// Table is the capability the editor core consumes.
type Table interface {
	// Get returns the evaluated value of pos as of the last Evaluate.
	Get(pos grid.CellPos) (Value, bool)

	// Source returns the raw source of pos.
	Source(pos grid.CellPos) (string, bool)

	// SetSource replaces the raw source of pos.
	SetSource(pos grid.CellPos, src string)

	// Clear removes the source of pos.
	Clear(pos grid.CellPos)

	// Evaluate recomputes every cell value.
	Evaluate()

	// Slice returns the evaluated values of r, row-major. Missing cells are
	// Empty.
	Slice(r grid.CellRange) [][]Value
}

// SourceTable stores raw cell sources.
type SourceTable struct {
	mu    sync.RWMutex
	cells map[grid.CellPos]string
}

// NewSourceTable creates an empty source table.
func NewSourceTable() *SourceTable {
	return &SourceTable{cells: make(map[grid.CellPos]string)}
}

// Get returns the source of pos.
func (t *SourceTable) Get(pos grid.CellPos) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	src, ok := t.cells[pos]
	return src, ok
}

// Set stores src at pos.
func (t *SourceTable) Set(pos grid.CellPos, src string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cells[pos] = src
}

// Delete removes pos.
func (t *SourceTable) Delete(pos grid.CellPos) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.cells, pos)
}

// Len returns the number of cells with a source.
func (t *SourceTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.cells)
}

// Positions returns all positions with a source, row-major.
func (t *SourceTable) Positions() []grid.CellPos {
	t.mu.RLock()
	defer t.mu.RUnlock()

	positions := make([]grid.CellPos, 0, len(t.cells))
	for p := range t.cells {
		positions = append(positions, p)
	}
	sort.Slice(positions, func(i, j int) bool {
		return positions[i].Less(positions[j])
	})
	return positions
}

// Clone returns a deep copy of the table.
func (t *SourceTable) Clone() *SourceTable {
	t.mu.RLock()
	defer t.mu.RUnlock()

	c := &SourceTable{cells: make(map[grid.CellPos]string, len(t.cells))}
	for p, s := range t.cells {
		c.cells[p] = s
	}
	return c
}
