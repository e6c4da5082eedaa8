package renderer

import (
	"strings"
	"unicode"

	"github.com/dshills/bight/internal/table"
)

// FormatCell renders text to exactly width characters: left-aligned,
// padded with spaces, truncated to its first width characters. Only the
// first line of multi-line text is shown and control characters are shown
// as spaces.
func FormatCell(text string, width int) string {
	if width <= 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(width)
	n := 0
	for _, r := range FirstLine(text) {
		if n == width {
			break
		}
		b.WriteRune(printable(r))
		n++
	}
	for ; n < width; n++ {
		b.WriteByte(' ')
	}
	return b.String()
}

// FormatValue renders an evaluated value to width characters. Empty values
// become width spaces.
func FormatValue(v table.Value, width int) string {
	if v.IsEmpty() {
		return FormatCell("", width)
	}
	return FormatCell(v.String(), width)
}

// lineBreaks are the runes that end a line: CR, LF, VT, FF, NEL and the
// Unicode line and paragraph separators.
const lineBreaks = "\r\n\v\f\u0085\u2028\u2029"

// FirstLine returns text up to its first line break.
func FirstLine(text string) string {
	if i := strings.IndexAny(text, lineBreaks); i >= 0 {
		return text[:i]
	}
	return text
}

// printable blanks control characters, C1 included, and the Unicode line
// and paragraph separators.
func printable(r rune) rune {
	if unicode.IsControl(r) || r == '\u2028' || r == '\u2029' {
		return ' '
	}
	return r
}
