package editor

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dshills/bight/internal/clipboard"
	"github.com/dshills/bight/internal/grid"
	"github.com/dshills/bight/internal/renderer"
	"github.com/dshills/bight/internal/table"
)

var errHost = errors.New("host failure")

// fakeSurface is an in-memory Surface.
type fakeSurface struct {
	id            SurfaceID
	width, height int
	lines         []string
	highlight     *renderer.HighlightSpan
	line, col     int
	notes         []string

	sizeErr   error
	linesErr  error
	cursorErr error
}

func newFakeSurface(width, height int) *fakeSurface {
	return &fakeSurface{id: 1, width: width, height: height, line: 1}
}

func (s *fakeSurface) ID() SurfaceID { return s.id }

func (s *fakeSurface) Size() (int, int, error) {
	return s.width, s.height, s.sizeErr
}

func (s *fakeSurface) SetLines(start, end int, lines []string) error {
	if s.linesErr != nil {
		return s.linesErr
	}
	for len(s.lines) < end {
		s.lines = append(s.lines, "")
	}
	copy(s.lines[start:end], lines)
	return nil
}

func (s *fakeSurface) Line(row int) (string, error) {
	if row < 0 || row >= len(s.lines) {
		return "", nil
	}
	return s.lines[row], nil
}

func (s *fakeSurface) SetHighlight(span renderer.HighlightSpan) error {
	s.highlight = &span
	return nil
}

func (s *fakeSurface) ClearHighlight() error {
	s.highlight = nil
	return nil
}

func (s *fakeSurface) Cursor() (int, int, error) {
	return s.line, s.col, s.cursorErr
}

func (s *fakeSurface) SetCursor(line, col int) error {
	if s.cursorErr != nil {
		return s.cursorErr
	}
	s.line, s.col = line, col
	return nil
}

func (s *fakeSurface) Notify(level Level, msg string) {
	s.notes = append(s.notes, fmt.Sprintf("%s: %s", level, msg))
}

// fakePersistence records saves in memory.
type fakePersistence struct {
	saved map[string]*table.SourceTable
	err   error
}

func (p *fakePersistence) Load(path string) (*table.SourceTable, error) {
	if src, ok := p.saved[path]; ok {
		return src.Clone(), nil
	}
	return nil, errors.New("not found")
}

func (p *fakePersistence) Save(path string, src *table.SourceTable) error {
	if p.err != nil {
		return p.err
	}
	if p.saved == nil {
		p.saved = make(map[string]*table.SourceTable)
	}
	p.saved[path] = src.Clone()
	return nil
}

func newController(t *testing.T, surface *fakeSurface, cells map[grid.CellPos]string) *Controller {
	t.Helper()
	src := table.NewSourceTable()
	for p, s := range cells {
		src.Set(p, s)
	}
	tbl, err := table.NewEvaluatorTable(src)
	if err != nil {
		t.Fatalf("NewEvaluatorTable() error = %v", err)
	}
	t.Cleanup(func() { tbl.Close() })

	st := NewState(surface, tbl, clipboard.NewMemory(), grid.DefaultGeometry)
	return NewController(st, WithScratchIDs(func() string { return "id" }))
}
