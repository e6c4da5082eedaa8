package term

import "github.com/dshills/bight/internal/editor"

// scratch is a multi-line buffer holding one cell's source while it is
// edited in scratch mode.
type scratch struct {
	name     string
	lines    [][]rune
	row, col int
}

func newScratch(sc editor.Scratch) *scratch {
	s := &scratch{name: sc.Name}
	for _, l := range sc.Lines {
		s.lines = append(s.lines, []rune(l))
	}
	if len(s.lines) == 0 {
		s.lines = [][]rune{nil}
	}
	return s
}

func (s *scratch) text() []string {
	out := make([]string, len(s.lines))
	for i, l := range s.lines {
		out[i] = string(l)
	}
	return out
}

func (s *scratch) insert(r rune) {
	l := s.lines[s.row]
	l = append(l[:s.col], append([]rune{r}, l[s.col:]...)...)
	s.lines[s.row] = l
	s.col++
}

func (s *scratch) newline() {
	l := s.lines[s.row]
	head := append([]rune(nil), l[:s.col]...)
	tail := append([]rune(nil), l[s.col:]...)
	s.lines[s.row] = head
	s.lines = append(s.lines[:s.row+1], append([][]rune{tail}, s.lines[s.row+1:]...)...)
	s.row++
	s.col = 0
}

func (s *scratch) backspace() {
	switch {
	case s.col > 0:
		l := s.lines[s.row]
		s.lines[s.row] = append(l[:s.col-1], l[s.col:]...)
		s.col--
	case s.row > 0:
		prev := s.lines[s.row-1]
		s.col = len(prev)
		s.lines[s.row-1] = append(prev, s.lines[s.row]...)
		s.lines = append(s.lines[:s.row], s.lines[s.row+1:]...)
		s.row--
	}
}

func (s *scratch) move(dRow, dCol int) {
	s.row = min(max(s.row+dRow, 0), len(s.lines)-1)
	s.col = min(max(s.col+dCol, 0), len(s.lines[s.row]))
}
