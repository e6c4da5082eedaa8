// Package renderer projects an evaluated cell table onto a text viewport.
//
// The renderer is responsible for:
//   - Formatting each cell value to a fixed display width
//   - Laying out cells and separators into viewport lines
//   - Splicing the single-cell edit overlay into its row
//   - Reporting the highlight span the host should mark as "in edit"
//
// Architecture:
//
//	┌─────────────────────────────────────────┐
//	│   editor.Controller (drives rendering)  │
//	├─────────────────────────────────────────┤
//	│  Renderer  │ FormatCell │  selection    │
//	├─────────────────────────────────────────┤
//	│   Frame{Lines, Highlight} -> Surface    │
//	├─────────────────────────────────────────┤
//	│  backend: Terminal (tcell)              │
//	└─────────────────────────────────────────┘
//
// Render is a pure function of the table, the viewport size and the
// overlay; drawing is left to the caller.
//
// Usage:
//
//	r := renderer.New(renderer.DefaultOptions())
//	frame := r.Render(tbl, width, height, nil)
//	surface.SetLines(0, height, frame.Lines)
package renderer
