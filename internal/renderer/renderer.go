package renderer

import (
	"github.com/dshills/bight/internal/grid"
	"github.com/dshills/bight/internal/table"
)

// OverlayMode selects what the edit overlay shows.
type OverlayMode uint8

const (
	// OverlaySource shows the cell's current raw source. Used on the first
	// render after an edit opens.
	OverlaySource OverlayMode = iota
	// OverlayLive echoes the text already on screen from the cell's start
	// column on, so re-renders during an edit keep what the user typed.
	OverlayLive
)

// String returns the mode name.
func (m OverlayMode) String() string {
	switch m {
	case OverlaySource:
		return "source"
	case OverlayLive:
		return "live"
	default:
		return "unknown"
	}
}

// Overlay describes the cell whose row is replaced by edit text.
type Overlay struct {
	Pos  grid.CellPos
	Mode OverlayMode
	// Live is the current on-screen text of the overlay row. Only used in
	// OverlayLive mode.
	Live string
}

// HighlightSpan is a region of one viewport row the host should mark as
// being edited. Line is 0-based; columns are half-open [ColStart, ColEnd).
type HighlightSpan struct {
	Line     int
	ColStart int
	ColEnd   int
}

// Frame is the output of one render pass.
type Frame struct {
	// Lines holds exactly height display lines. None contains a line break.
	Lines []string
	// Highlight is set whenever an overlay was requested.
	Highlight *HighlightSpan
}

// Options configures the renderer.
type Options struct {
	Geometry grid.Geometry
}

// DefaultOptions returns the default cell layout.
func DefaultOptions() Options {
	return Options{Geometry: grid.DefaultGeometry}
}

// Renderer lays out table values into viewport lines.
type Renderer struct {
	geom grid.Geometry
}

// New creates a renderer.
func New(opts Options) *Renderer {
	geom := opts.Geometry
	if geom.CellWidth <= 0 {
		geom = grid.DefaultGeometry
	}
	return &Renderer{geom: geom}
}

// Geometry returns the cell layout used by the renderer.
func (r *Renderer) Geometry() grid.Geometry {
	return r.geom
}

// Render evaluates t once and produces height lines for a viewport of the
// given width. Normal rows are truncated to width characters; the overlay
// row, if any, is exactly width+1 characters so a trailing edit column stays
// reachable.
func (r *Renderer) Render(t table.Table, width, height int, ov *Overlay) Frame {
	width = max(width, 0)
	height = max(height, 0)

	t.Evaluate()

	cols := r.geom.ColumnsFor(width)
	var rows [][]table.Value
	if cols > 0 && height > 0 {
		rows = t.Slice(grid.CellRange{Start: grid.Pos(0, 0), Width: cols, Height: height})
	}

	lines := make([]string, height)
	for y := 0; y < height; y++ {
		var row []rune
		if y < len(rows) {
			row = r.formatRow(rows[y])
		}

		if ov != nil && ov.Pos.Y == y {
			lines[y] = r.overlayRow(row, t, width, ov)
			continue
		}
		lines[y] = string(truncate(row, width))
	}

	frame := Frame{Lines: lines}
	if ov != nil {
		start := r.geom.ColumnOf(ov.Pos.X)
		frame.Highlight = &HighlightSpan{
			Line:     ov.Pos.Y,
			ColStart: start,
			ColEnd:   start + width,
		}
	}
	return frame
}

// formatRow concatenates every formatted cell with its separator.
func (r *Renderer) formatRow(values []table.Value) []rune {
	unit := r.geom.UnitWidth()
	row := make([]rune, 0, len(values)*unit)
	for _, v := range values {
		row = append(row, []rune(FormatValue(v, r.geom.CellWidth))...)
		for i := 0; i < r.geom.SeparatorWidth; i++ {
			row = append(row, ' ')
		}
	}
	return row
}

// overlayRow keeps the formatted cells left of the edited cell and replaces
// the rest of the row with the edit text.
func (r *Renderer) overlayRow(row []rune, t table.Table, width int, ov *Overlay) string {
	start := r.geom.ColumnOf(ov.Pos.X)
	limit := width + 1

	out := make([]rune, 0, max(limit, start))
	out = append(out, truncate(row, start)...)
	for len(out) < start {
		out = append(out, ' ')
	}

	var text string
	switch ov.Mode {
	case OverlayLive:
		live := []rune(FirstLine(ov.Live))
		if start < len(live) {
			text = string(live[start:])
		}
	default:
		src, _ := t.Source(ov.Pos)
		text = FirstLine(src)
	}
	for _, ch := range text {
		out = append(out, printable(ch))
	}

	for len(out) < limit {
		out = append(out, ' ')
	}
	return string(truncate(out, limit))
}

func truncate(row []rune, n int) []rune {
	if len(row) > n {
		return row[:n]
	}
	return row
}
