package term

import (
	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// Theme holds the styles the host draws with.
type Theme struct {
	Text      tcell.Style
	Edit      tcell.Style
	Selection tcell.Style
	Status    tcell.Style
	Error     tcell.Style
}

// DefaultTheme uses reverse video so it works on any terminal.
func DefaultTheme() Theme {
	return Theme{
		Text:      tcell.StyleDefault,
		Edit:      tcell.StyleDefault.Underline(true),
		Selection: tcell.StyleDefault.Reverse(true),
		Status:    tcell.StyleDefault.Reverse(true),
		Error:     tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true),
	}
}

// ThemeFromColors builds a theme whose edit and selection backgrounds are
// the given colors, with a readable foreground picked for each.
func ThemeFromColors(edit, selection colorful.Color) Theme {
	t := DefaultTheme()
	t.Edit = background(edit)
	t.Selection = background(selection)
	return t
}

func background(c colorful.Color) tcell.Style {
	return tcell.StyleDefault.
		Background(toTcell(c)).
		Foreground(toTcell(contrast(c)))
}

// contrast returns black or white, whichever is further from c in
// perceived lightness.
func contrast(c colorful.Color) colorful.Color {
	l, _, _ := c.Lab()
	if l > 0.5 {
		return colorful.Color{}
	}
	return colorful.Color{R: 1, G: 1, B: 1}
}

func toTcell(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}
