package term

import (
	"sync"

	"github.com/dshills/bight/internal/editor"
	"github.com/dshills/bight/internal/renderer"
)

// Notice is the last message shown in the status line.
type Notice struct {
	Level editor.Level
	Text  string
}

// Viewport is the editor.Surface backing the grid area of the screen.
// Editors write to it from their actor goroutine; the host reads it to
// draw.
type Viewport struct {
	id editor.SurfaceID

	mu            sync.Mutex
	width, height int
	lines         []string
	highlight     *renderer.HighlightSpan
	line, col     int
	notice        Notice

	// changed is called after editor writes so the host can redraw.
	changed func()
}

// NewViewport creates an empty viewport of the given size.
func NewViewport(id editor.SurfaceID, width, height int) *Viewport {
	return &Viewport{
		id:     id,
		width:  width,
		height: height,
		lines:  make([]string, height),
		line:   1,
	}
}

// OnChange sets the redraw hook.
func (v *Viewport) OnChange(fn func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.changed = fn
}

func (v *Viewport) notify() {
	v.mu.Lock()
	fn := v.changed
	v.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// ID implements editor.Surface.
func (v *Viewport) ID() editor.SurfaceID { return v.id }

// Size implements editor.Surface.
func (v *Viewport) Size() (int, int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.width, v.height, nil
}

// Resize changes the grid area; rows past the new height are dropped.
func (v *Viewport) Resize(width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.width, v.height = width, height
	lines := make([]string, height)
	copy(lines, v.lines)
	v.lines = lines
}

// SetLines implements editor.Surface.
func (v *Viewport) SetLines(start, end int, lines []string) error {
	v.mu.Lock()
	for len(v.lines) < end {
		v.lines = append(v.lines, "")
	}
	tail := append([]string(nil), v.lines[end:]...)
	v.lines = append(append(v.lines[:start], lines...), tail...)
	v.mu.Unlock()
	v.notify()
	return nil
}

// Line implements editor.Surface. Rows outside the buffer are empty.
func (v *Viewport) Line(row int) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if row < 0 || row >= len(v.lines) {
		return "", nil
	}
	return v.lines[row], nil
}

// Lines returns a copy of the buffer.
func (v *Viewport) Lines() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.lines...)
}

// SetHighlight implements editor.Surface.
func (v *Viewport) SetHighlight(span renderer.HighlightSpan) error {
	v.mu.Lock()
	v.highlight = &span
	v.mu.Unlock()
	v.notify()
	return nil
}

// ClearHighlight implements editor.Surface.
func (v *Viewport) ClearHighlight() error {
	v.mu.Lock()
	v.highlight = nil
	v.mu.Unlock()
	v.notify()
	return nil
}

// Highlight returns the edit mark, if any.
func (v *Viewport) Highlight() (renderer.HighlightSpan, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.highlight == nil {
		return renderer.HighlightSpan{}, false
	}
	return *v.highlight, true
}

// Cursor implements editor.Surface.
func (v *Viewport) Cursor() (int, int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.line, v.col, nil
}

// SetCursor implements editor.Surface. Positions are clamped to line 1
// and column 0.
func (v *Viewport) SetCursor(line, col int) error {
	v.mu.Lock()
	v.line, v.col = max(line, 1), max(col, 0)
	v.mu.Unlock()
	v.notify()
	return nil
}

// Notify implements editor.Surface.
func (v *Viewport) Notify(level editor.Level, msg string) {
	v.mu.Lock()
	v.notice = Notice{Level: level, Text: msg}
	v.mu.Unlock()
	v.notify()
}

// Notice returns the last message.
func (v *Viewport) Notice() Notice {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.notice
}

// ClearNotice drops the last message.
func (v *Viewport) ClearNotice() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notice = Notice{}
}

// InsertRune types r at the cursor and advances it.
func (v *Viewport) InsertRune(r rune) {
	v.mu.Lock()
	defer v.mu.Unlock()
	row := v.line - 1
	for len(v.lines) <= row {
		v.lines = append(v.lines, "")
	}
	runes := []rune(v.lines[row])
	for len(runes) < v.col {
		runes = append(runes, ' ')
	}
	runes = append(runes[:v.col], append([]rune{r}, runes[v.col:]...)...)
	v.lines[row] = string(runes)
	v.col++
}

// Backspace deletes the rune before the cursor, stopping at limit.
func (v *Viewport) Backspace(limit int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	row := v.line - 1
	if v.col <= limit || row >= len(v.lines) {
		return
	}
	runes := []rune(v.lines[row])
	if v.col <= len(runes) {
		runes = append(runes[:v.col-1], runes[v.col:]...)
		v.lines[row] = string(runes)
	}
	v.col--
}

// MoveCol moves the cursor along the line, not before limit.
func (v *Viewport) MoveCol(d, limit int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.col = max(v.col+d, limit)
}
