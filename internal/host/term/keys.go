package term

import (
	"strings"
	"unicode"

	"github.com/gdamore/tcell/v2"
)

// specialKeys names keys in the <Name> notation used by keymaps.
var specialKeys = map[tcell.Key]string{
	tcell.KeyEscape:     "Esc",
	tcell.KeyEnter:      "CR",
	tcell.KeyTab:        "Tab",
	tcell.KeyBacktab:    "S-Tab",
	tcell.KeyBackspace:  "BS",
	tcell.KeyBackspace2: "BS",
	tcell.KeyDelete:     "Del",
	tcell.KeyUp:         "Up",
	tcell.KeyDown:       "Down",
	tcell.KeyLeft:       "Left",
	tcell.KeyRight:      "Right",
	tcell.KeyHome:       "Home",
	tcell.KeyEnd:        "End",
	tcell.KeyPgUp:       "PageUp",
	tcell.KeyPgDn:       "PageDown",
}

// KeyName converts a key event to keymap notation: a printable rune is
// itself, anything else is <Name>, with C- and A- for modifiers.
func KeyName(ev *tcell.EventKey) string {
	if ev.Key() == tcell.KeyRune {
		r := ev.Rune()
		if ev.Modifiers()&tcell.ModCtrl != 0 {
			return "<C-" + string(unicode.ToLower(r)) + ">"
		}
		if ev.Modifiers()&tcell.ModAlt != 0 {
			return "<A-" + string(r) + ">"
		}
		if r == ' ' {
			return "<Space>"
		}
		return string(r)
	}

	if name, ok := specialKeys[ev.Key()]; ok {
		return "<" + name + ">"
	}

	if ev.Key() >= tcell.KeyCtrlA && ev.Key() <= tcell.KeyCtrlZ {
		r := rune('a' + (ev.Key() - tcell.KeyCtrlA))
		return "<C-" + string(r) + ">"
	}

	return "<" + strings.ReplaceAll(tcell.KeyNames[ev.Key()], "+", "-") + ">"
}

// printable reports whether ev types a character.
func printable(ev *tcell.EventKey) (rune, bool) {
	if ev.Key() != tcell.KeyRune || ev.Modifiers()&(tcell.ModAlt|tcell.ModCtrl) != 0 {
		return 0, false
	}
	r := ev.Rune()
	return r, unicode.IsPrint(r)
}
