package term

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/dshills/bight/internal/editor"
	"github.com/dshills/bight/internal/grid"
	"github.com/dshills/bight/internal/host"
	"github.com/dshills/bight/internal/renderer/selection"
)

// ErrNotOpen is returned by Run before Open.
var ErrNotOpen = errors.New("term: no surface open")

// surfaceID is the id of the single grid surface.
const surfaceID editor.SurfaceID = 1

// Focuser is told which surface has focus, for scripting.
type Focuser interface {
	Focus(id editor.SurfaceID)
	Blur(id editor.SurfaceID)
}

// Option configures a Term.
type Option func(*Term)

// WithTheme sets the draw styles.
func WithTheme(th Theme) Option {
	return func(t *Term) { t.theme = th }
}

// WithGeometry sets the cell layout used to draw selections.
func WithGeometry(g grid.Geometry) Option {
	return func(t *Term) { t.geom = g }
}

// WithLogger sets the logger.
func WithLogger(l editor.Logger) Option {
	return func(t *Term) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithFocus reports focus changes to f.
func WithFocus(f Focuser) Option {
	return func(t *Term) { t.focus = f }
}

// Term is the terminal host.
type Term struct {
	screen tcell.Screen
	integ  *host.Integration
	keymap *host.Keymap
	theme  Theme
	geom   grid.Geometry
	logger editor.Logger
	focus  Focuser

	view  *Viewport
	actor *editor.Actor

	mode      host.Mode
	pending   string
	sel       *grid.CellRange
	scratch   *scratch
	prompt    []rune
	prompting bool
	quit      bool
}

// New creates a host on an initialized screen.
func New(screen tcell.Screen, integ *host.Integration, km *host.Keymap, opts ...Option) *Term {
	t := &Term{
		screen: screen,
		integ:  integ,
		keymap: km,
		theme:  DefaultTheme(),
		geom:   grid.DefaultGeometry,
		logger: nopLogger{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Mode returns the current mode.
func (t *Term) Mode() host.Mode { return t.mode }

// Viewport returns the grid surface, or nil before Open.
func (t *Term) Viewport() *Viewport { return t.view }

// Open shows the grid backed by path. An empty path opens an unnamed grid.
func (t *Term) Open(ctx context.Context, path string) error {
	w, h := t.screen.Size()
	view := NewViewport(surfaceID, w, max(h-1, 0))
	if err := t.integ.Handle(ctx, host.ViewportOpened{Surface: view, Path: path}); err != nil {
		return err
	}
	actor, ok := t.integ.Registry().Lookup(surfaceID)
	if !ok {
		return fmt.Errorf("%w: %d", editor.ErrUnknownSurface, surfaceID)
	}
	t.view, t.actor = view, actor
	view.OnChange(func() {
		_ = t.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	if t.focus != nil {
		t.focus.Focus(surfaceID)
	}
	t.draw()
	return nil
}

// Run processes screen events until the surface is closed or ctx ends.
func (t *Term) Run(ctx context.Context) error {
	if t.view == nil {
		return ErrNotOpen
	}
	go func() {
		<-ctx.Done()
		_ = t.screen.PostEvent(tcell.NewEventInterrupt(nil))
	}()
	for !t.quit {
		if err := ctx.Err(); err != nil {
			return err
		}
		ev := t.screen.PollEvent()
		if ev == nil {
			return nil
		}
		t.Handle(ctx, ev)
	}
	return nil
}

// Done reports whether the surface was closed.
func (t *Term) Done() bool { return t.quit }

// Handle processes one screen event and redraws.
func (t *Term) Handle(ctx context.Context, ev tcell.Event) {
	switch e := ev.(type) {
	case *tcell.EventResize:
		w, h := e.Size()
		t.view.Resize(w, max(h-1, 0))
		t.report(t.integ.Handle(ctx, host.ViewportResized{ID: surfaceID}))
		t.screen.Sync()
	case *tcell.EventKey:
		t.key(ctx, e)
	}
	if !t.quit {
		t.draw()
	}
}

func (t *Term) key(ctx context.Context, ev *tcell.EventKey) {
	if t.prompting {
		t.promptKey(ctx, ev)
		return
	}
	switch t.mode {
	case host.ModeInsert:
		t.insertKey(ctx, ev)
	case host.ModeScratch:
		t.scratchKey(ctx, ev)
	default:
		t.normalKey(ctx, ev)
	}
}

// normalKey handles normal and block-visual modes. Sequences are matched
// against the keymap; a single unbound key may be a built-in.
func (t *Term) normalKey(ctx context.Context, ev *tcell.EventKey) {
	name := KeyName(ev)
	seq := t.pending + name
	action, m := t.keymap.Match(t.mode, seq)
	switch m {
	case host.MatchFull:
		t.pending = ""
		t.run(ctx, action)
	case host.MatchPrefix:
		t.pending = seq
	default:
		t.pending = ""
		if seq == name {
			t.builtin(ctx, name)
		}
	}
}

func (t *Term) builtin(ctx context.Context, name string) {
	if t.mode != host.ModeNormal {
		if name == "<Esc>" {
			t.setMode(ctx, host.ModeNormal)
		}
		return
	}
	switch name {
	case ":":
		t.prompt, t.prompting = nil, true
	case "<C-s>":
		t.write(ctx)
	case "q":
		t.close(ctx)
	case "<Esc>":
		t.view.ClearNotice()
	}
}

// run executes a bound action and applies its effect.
func (t *Term) run(ctx context.Context, a host.Action) {
	eff, err := a.Run(ctx, t.actor)
	t.report(err)
	if err != nil {
		return
	}
	if eff.Scratch != nil {
		t.scratch = newScratch(*eff.Scratch)
	}
	if eff.SwitchMode {
		t.setMode(ctx, eff.Mode)
	}
	t.cursorMoved(ctx)
}

func (t *Term) setMode(ctx context.Context, m host.Mode) {
	t.mode = m
	t.pending = ""
	if m != host.ModeScratch {
		t.scratch = nil
	}
	t.report(t.integ.Handle(ctx, host.ModeChanged{ID: surfaceID, Mode: m}))
	if m != host.ModeVisualBlock {
		t.sel = nil
	}
}

// cursorMoved reports the move and refreshes the drawn selection.
func (t *Term) cursorMoved(ctx context.Context) {
	t.report(t.integ.Handle(ctx, host.CursorMoved{ID: surfaceID}))
	if t.mode != host.ModeVisualBlock {
		t.sel = nil
		return
	}
	var r grid.CellRange
	err := t.actor.Do(ctx, func(c *editor.Controller) error {
		var err error
		r, err = c.Selection()
		return err
	})
	if err != nil {
		t.report(err)
		return
	}
	t.sel = &r
}

// insertKey types into the edited cell's row. Esc and Enter commit.
func (t *Term) insertKey(ctx context.Context, ev *tcell.EventKey) {
	name := KeyName(ev)
	if action, m := t.keymap.Match(host.ModeInsert, name); m == host.MatchFull {
		t.run(ctx, action)
		return
	}

	start := 0
	if hl, ok := t.view.Highlight(); ok {
		start = hl.ColStart
	}

	switch name {
	case "<Esc>", "<CR>":
		t.report(t.integ.Handle(ctx, host.InsertLeft{ID: surfaceID}))
		t.setMode(ctx, host.ModeNormal)
		t.cursorMoved(ctx)
		return
	case "<BS>":
		t.view.Backspace(start)
	case "<Left>":
		t.view.MoveCol(-1, start)
	case "<Right>":
		t.view.MoveCol(1, start)
	default:
		r, ok := printable(ev)
		if !ok {
			return
		}
		t.view.InsertRune(r)
	}
	t.report(t.integ.Handle(ctx, host.CursorMoved{ID: surfaceID}))
}

// scratchKey edits the scratch buffer. Ctrl-S commits it, Esc and
// Ctrl-C discard it.
func (t *Term) scratchKey(ctx context.Context, ev *tcell.EventKey) {
	name := KeyName(ev)
	if action, m := t.keymap.Match(host.ModeScratch, name); m == host.MatchFull {
		t.run(ctx, action)
		return
	}

	sc := t.scratch
	switch name {
	case "<C-s>":
		lines := sc.text()
		t.report(t.actor.Do(ctx, func(c *editor.Controller) error {
			return c.CommitScratch(lines)
		}))
		t.leaveScratch(ctx)
	case "<Esc>", "<C-c>":
		t.report(t.actor.Do(ctx, (*editor.Controller).CancelEdit))
		t.leaveScratch(ctx)
	case "<CR>":
		sc.newline()
	case "<BS>":
		sc.backspace()
	case "<Up>":
		sc.move(-1, 0)
	case "<Down>":
		sc.move(1, 0)
	case "<Left>":
		sc.move(0, -1)
	case "<Right>":
		sc.move(0, 1)
	default:
		if r, ok := printable(ev); ok {
			sc.insert(r)
		}
	}
}

func (t *Term) leaveScratch(ctx context.Context) {
	t.setMode(ctx, host.ModeNormal)
	t.cursorMoved(ctx)
}

// promptKey edits the command line.
func (t *Term) promptKey(ctx context.Context, ev *tcell.EventKey) {
	switch KeyName(ev) {
	case "<Esc>", "<C-c>":
		t.prompt, t.prompting = nil, false
	case "<CR>":
		cmd := string(t.prompt)
		t.prompt, t.prompting = nil, false
		t.command(ctx, cmd)
	case "<BS>":
		if len(t.prompt) == 0 {
			t.prompting = false
			return
		}
		t.prompt = t.prompt[:len(t.prompt)-1]
	default:
		if r, ok := printable(ev); ok {
			t.prompt = append(t.prompt, r)
		}
	}
}

// command runs a ':' command: w [path], q, wq.
func (t *Term) command(ctx context.Context, cmd string) {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return
	}
	switch fields[0] {
	case "w", "write":
		if len(fields) > 1 {
			t.report(t.integ.SaveAs(ctx, surfaceID, fields[1]))
			return
		}
		t.write(ctx)
	case "q", "quit":
		t.close(ctx)
	case "wq", "x":
		if t.write(ctx) {
			t.close(ctx)
		}
	default:
		t.view.Notify(editor.LevelError, "Not a command: "+fields[0])
	}
}

func (t *Term) write(ctx context.Context) bool {
	err := t.integ.Handle(ctx, host.CommitRequested{ID: surfaceID})
	t.report(err)
	return err == nil
}

func (t *Term) close(ctx context.Context) {
	if t.focus != nil {
		t.focus.Blur(surfaceID)
	}
	t.report(t.integ.Handle(ctx, host.ViewportClosed{ID: surfaceID}))
	t.quit = true
}

// report logs err and shows it, unless the editor already told the user.
func (t *Term) report(err error) {
	if err == nil {
		return
	}
	t.logger.Warn("%v", err)
	if errors.Is(err, host.ErrNoPath) {
		return
	}
	t.view.Notify(editor.LevelError, err.Error())
}

func (t *Term) draw() {
	t.screen.Clear()
	w, h := t.screen.Size()
	rows := max(h-1, 0)

	if t.scratch != nil {
		t.drawScratch(w, rows)
	} else {
		t.drawGrid(w, rows)
	}
	t.drawStatus(w, rows)
	t.screen.Show()
}

func (t *Term) drawGrid(w, rows int) {
	hl, hasHL := t.view.Highlight()
	selStart, selEnd := -1, -1
	if t.sel != nil {
		selStart, selEnd = selection.Columns(*t.sel, t.geom)
	}

	for y, line := range t.view.Lines() {
		if y >= rows {
			break
		}
		inSel := t.sel != nil && y >= t.sel.Start.Y && y < t.sel.Start.Y+t.sel.Height
		x := 0
		for i, r := range []rune(line) {
			if x >= w {
				break
			}
			style := t.theme.Text
			if inSel && i >= selStart && i < selEnd {
				style = t.theme.Selection
			}
			if hasHL && y == hl.Line && i >= hl.ColStart && i < hl.ColEnd {
				style = t.theme.Edit
			}
			t.screen.SetContent(x, y, r, nil, style)
			x += max(runewidth.RuneWidth(r), 1)
		}
	}

	line, col, _ := t.view.Cursor()
	if t.prompting {
		return
	}
	row, _ := t.view.Line(line - 1)
	t.screen.ShowCursor(displayWidth(row, col), line-1)
}

func (t *Term) drawScratch(w, rows int) {
	sc := t.scratch
	t.putString(0, 0, w, " "+sc.name, t.theme.Status)
	for i, l := range sc.lines {
		if i+1 >= rows {
			break
		}
		t.putString(0, i+1, w, string(l), t.theme.Text)
	}
	if !t.prompting {
		t.screen.ShowCursor(runewidth.StringWidth(string(sc.lines[sc.row][:sc.col])), sc.row+1)
	}
}

func (t *Term) drawStatus(w, y int) {
	if t.prompting {
		text := ":" + string(t.prompt)
		t.putString(0, y, w, text, t.theme.Text)
		t.screen.ShowCursor(runewidth.StringWidth(text), y)
		return
	}

	name := "[No Name]"
	if p := t.integ.Registry().Path(surfaceID); p != "" {
		name = filepath.Base(p)
	}
	left := fmt.Sprintf(" %s  %s", t.mode, name)
	if t.pending != "" {
		left += "  " + t.pending
	}

	style := t.theme.Status
	n := t.view.Notice()
	if n.Level == editor.LevelError && n.Text != "" {
		style = t.theme.Error
	}
	right := n.Text + " "

	t.putString(0, y, w, strings.Repeat(" ", w), t.theme.Status)
	t.putString(0, y, w, left, t.theme.Status)
	if rw := runewidth.StringWidth(right); rw < w-runewidth.StringWidth(left) {
		t.putString(w-rw, y, rw, right, style)
	}
}

// putString draws s from x, cut to w columns.
func (t *Term) putString(x, y, w int, s string, style tcell.Style) {
	s = runewidth.Truncate(s, w, "…")
	for _, r := range s {
		t.screen.SetContent(x, y, r, nil, style)
		x += max(runewidth.RuneWidth(r), 1)
	}
}

// displayWidth is the screen column of rune index col in line.
func displayWidth(line string, col int) int {
	runes := []rune(line)
	if col <= len(runes) {
		return runewidth.StringWidth(string(runes[:col]))
	}
	return runewidth.StringWidth(line) + col - len(runes)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
