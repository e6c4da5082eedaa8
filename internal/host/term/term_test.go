package term

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/bight/internal/editor"
	"github.com/dshills/bight/internal/grid"
	"github.com/dshills/bight/internal/host"
	"github.com/dshills/bight/internal/store"
	"github.com/dshills/bight/internal/table"
)

func newTerm(t *testing.T, path string) *Term {
	t.Helper()

	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	s.SetSize(40, 6)

	ctx, cancel := context.WithCancel(context.Background())
	integ := host.NewIntegration(ctx, host.NewRegistry(), store.New())
	tm := New(s, integ, host.DefaultKeymap())
	if err := tm.Open(ctx, path); err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		integ.Registry().CloseAll()
		cancel()
		s.Fini()
	})
	return tm
}

func writeGrid(t *testing.T, cells map[grid.CellPos]string) string {
	t.Helper()
	src := table.NewSourceTable()
	for p, v := range cells {
		src.Set(p, v)
	}
	path := filepath.Join(t.TempDir(), "t.bight")
	if err := store.New().Save(path, src); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return path
}

// typeKeys sends each rune of s; <Esc>, <CR>, <BS> and <C-s> are keys.
func typeKeys(tm *Term, s string) {
	ctx := context.Background()
	special := map[string]*tcell.EventKey{
		"<Esc>": tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone),
		"<CR>":  tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone),
		"<BS>":  tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone),
		"<C-s>": tcell.NewEventKey(tcell.KeyCtrlS, 0, tcell.ModCtrl),
	}
	for s != "" {
		matched := false
		for name, ev := range special {
			if strings.HasPrefix(s, name) {
				tm.Handle(ctx, ev)
				s = s[len(name):]
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		r := []rune(s)[0]
		tm.Handle(ctx, tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
		s = s[len(string(r)):]
	}
}

func source(t *testing.T, tm *Term, pos grid.CellPos) string {
	t.Helper()
	var src string
	err := tm.actor.Do(context.Background(), func(c *editor.Controller) error {
		src, _ = c.GetSource(pos)
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	return src
}

func TestInsertEdit(t *testing.T) {
	tm := newTerm(t, "")

	typeKeys(tm, "I")
	if tm.Mode() != host.ModeInsert {
		t.Fatalf("mode = %v, want insert", tm.Mode())
	}
	if _, ok := tm.Viewport().Highlight(); !ok {
		t.Error("edit should be highlighted")
	}

	typeKeys(tm, "421<BS><Esc>")
	if tm.Mode() != host.ModeNormal {
		t.Fatalf("mode = %v, want normal", tm.Mode())
	}
	if got := source(t, tm, grid.Pos(0, 0)); got != "42" {
		t.Errorf("source = %q, want 42", got)
	}
	if line, _ := tm.Viewport().Line(0); !strings.HasPrefix(line, "42      ") {
		t.Errorf("row 0 = %q", line)
	}
	if _, ok := tm.Viewport().Highlight(); ok {
		t.Error("highlight should be cleared after commit")
	}
}

func TestCancelEdit(t *testing.T) {
	tm := newTerm(t, writeGrid(t, map[grid.CellPos]string{grid.Pos(0, 0): "keep"}))

	typeKeys(tm, "Ix")
	tm.Handle(context.Background(), tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl))

	if tm.Mode() != host.ModeNormal {
		t.Errorf("mode = %v, want normal", tm.Mode())
	}
	if got := source(t, tm, grid.Pos(0, 0)); got != "keep" {
		t.Errorf("source = %q, want keep", got)
	}
}

func TestWriteCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.bight")
	tm := newTerm(t, path)

	if n := tm.Viewport().Notice(); !strings.HasPrefix(n.Text, "New file") {
		t.Errorf("notice = %q, want new file", n.Text)
	}

	typeKeys(tm, "I7<Esc>:w<CR>")
	if n := tm.Viewport().Notice(); n.Text != "Saved" {
		t.Errorf("notice = %q, want Saved", n.Text)
	}

	src, err := store.New().Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got, _ := src.Get(grid.Pos(0, 0)); got != "7" {
		t.Errorf("saved source = %q, want 7", got)
	}
}

func TestWriteWithoutPath(t *testing.T) {
	tm := newTerm(t, "")

	typeKeys(tm, "<C-s>")
	if n := tm.Viewport().Notice(); n.Text != "No file name" {
		t.Errorf("notice = %q", n.Text)
	}

	path := filepath.Join(t.TempDir(), "as.bight")
	typeKeys(tm, ":w "+path+"<CR>")
	if n := tm.Viewport().Notice(); n.Text != "Saved" {
		t.Errorf("notice = %q, want Saved", n.Text)
	}
}

func TestVisualBlock(t *testing.T) {
	tm := newTerm(t, writeGrid(t, map[grid.CellPos]string{
		grid.Pos(0, 0): "1",
		grid.Pos(1, 0): "2",
		grid.Pos(0, 1): "3",
		grid.Pos(2, 2): "9",
	}))

	typeKeys(tm, "vlj")
	if tm.Mode() != host.ModeVisualBlock {
		t.Fatalf("mode = %v, want visual block", tm.Mode())
	}
	want := grid.CellRange{Start: grid.Pos(0, 0), Width: 2, Height: 2}
	if tm.sel == nil || *tm.sel != want {
		t.Fatalf("selection = %v, want %v", tm.sel, want)
	}

	s := tm.screen.(tcell.SimulationScreen)
	if _, _, style, _ := s.GetContent(0, 0); style != tm.theme.Selection {
		t.Error("selected cell not drawn with the selection style")
	}

	typeKeys(tm, "d")
	if tm.Mode() != host.ModeNormal {
		t.Errorf("mode = %v, want normal", tm.Mode())
	}
	for _, p := range []grid.CellPos{grid.Pos(0, 0), grid.Pos(1, 0), grid.Pos(0, 1)} {
		if got := source(t, tm, p); got != "" {
			t.Errorf("%s = %q, want cleared", p, got)
		}
	}
	if got := source(t, tm, grid.Pos(2, 2)); got != "9" {
		t.Errorf("outside cell = %q, want 9", got)
	}
}

func TestScratchEdit(t *testing.T) {
	tm := newTerm(t, "")

	typeKeys(tm, "E")
	if tm.Mode() != host.ModeScratch || tm.scratch == nil {
		t.Fatalf("mode = %v, want scratch", tm.Mode())
	}
	if !strings.HasPrefix(tm.scratch.name, "(0, 0)-") {
		t.Errorf("scratch name = %q", tm.scratch.name)
	}

	typeKeys(tm, "a<CR>b<C-s>")
	if tm.Mode() != host.ModeNormal {
		t.Errorf("mode = %v, want normal", tm.Mode())
	}
	if got := source(t, tm, grid.Pos(0, 0)); got != "a\nb" {
		t.Errorf("source = %q, want a\\nb", got)
	}
}

func TestYankPaste(t *testing.T) {
	tm := newTerm(t, writeGrid(t, map[grid.CellPos]string{grid.Pos(0, 0): "hi"}))

	typeKeys(tm, "yyjp")
	if got := source(t, tm, grid.Pos(0, 1)); got != "hi" {
		t.Errorf("pasted = %q, want hi", got)
	}
	if tm.pending != "" {
		t.Errorf("pending = %q", tm.pending)
	}
}

func TestPendingSequence(t *testing.T) {
	tm := newTerm(t, "")

	typeKeys(tm, "y")
	if tm.pending != "y" {
		t.Errorf("pending = %q, want y", tm.pending)
	}
	typeKeys(tm, "z")
	if tm.pending != "" {
		t.Errorf("pending = %q, want reset", tm.pending)
	}
}

func TestQuit(t *testing.T) {
	tm := newTerm(t, "")

	typeKeys(tm, ":bogus<CR>")
	if n := tm.Viewport().Notice(); n.Level != editor.LevelError {
		t.Errorf("notice = %+v, want error", n)
	}

	typeKeys(tm, "q")
	if !tm.Done() {
		t.Fatal("q should close the surface")
	}
	if tm.integ.Registry().Len() != 0 {
		t.Error("surface still registered")
	}
}

func TestResize(t *testing.T) {
	tm := newTerm(t, "")
	s := tm.screen.(tcell.SimulationScreen)

	s.SetSize(60, 10)
	tm.Handle(context.Background(), tcell.NewEventResize(60, 10))

	w, h, _ := tm.Viewport().Size()
	if w != 60 || h != 9 {
		t.Errorf("size = %dx%d, want 60x9", w, h)
	}
	if n := len(tm.Viewport().Lines()); n != 9 {
		t.Errorf("lines = %d, want 9", n)
	}
}

func TestRunNotOpen(t *testing.T) {
	s := tcell.NewSimulationScreen("UTF-8")
	tm := New(s, host.NewIntegration(context.Background(), host.NewRegistry(), store.New()), host.NewKeymap())
	if err := tm.Run(context.Background()); err != ErrNotOpen {
		t.Errorf("Run = %v, want ErrNotOpen", err)
	}
}
