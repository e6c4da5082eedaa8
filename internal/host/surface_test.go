package host

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/dshills/bight/internal/editor"
	"github.com/dshills/bight/internal/renderer"
	"github.com/dshills/bight/internal/store"
)

// testSurface is an in-memory editor.Surface safe for use from actor
// goroutines.
type testSurface struct {
	mu            sync.Mutex
	id            editor.SurfaceID
	width, height int
	lines         []string
	highlight     *renderer.HighlightSpan
	line, col     int
	notes         []string
}

func newTestSurface(id editor.SurfaceID) *testSurface {
	return &testSurface{id: id, width: 27, height: 4, line: 1}
}

func (s *testSurface) ID() editor.SurfaceID { return s.id }

func (s *testSurface) Size() (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height, nil
}

func (s *testSurface) SetLines(start, end int, lines []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.lines) < end {
		s.lines = append(s.lines, "")
	}
	copy(s.lines[start:end], lines)
	return nil
}

func (s *testSurface) Line(row int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row < 0 || row >= len(s.lines) {
		return "", nil
	}
	return s.lines[row], nil
}

func (s *testSurface) SetLine(row int, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines[row] = text
}

func (s *testSurface) Row(row int) string {
	text, _ := s.Line(row)
	return text
}

func (s *testSurface) SetHighlight(span renderer.HighlightSpan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.highlight = &span
	return nil
}

func (s *testSurface) ClearHighlight() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.highlight = nil
	return nil
}

func (s *testSurface) Cursor() (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.line, s.col, nil
}

func (s *testSurface) SetCursor(line, col int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.line, s.col = line, col
	return nil
}

func (s *testSurface) Notify(level editor.Level, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append(s.notes, fmt.Sprintf("%s: %s", level, msg))
}

func (s *testSurface) Notes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.notes...)
}

func (s *testSurface) Highlighted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.highlight != nil
}

func newIntegration(t *testing.T, opts ...Option) *Integration {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	reg := NewRegistry()
	t.Cleanup(func() {
		reg.CloseAll()
		cancel()
	})
	return NewIntegration(ctx, reg, store.New(), opts...)
}
