package host

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/bight/internal/editor"
	"github.com/dshills/bight/internal/grid"
	"github.com/dshills/bight/internal/store"
	"github.com/dshills/bight/internal/table"
	"github.com/dshills/bight/internal/watcher"
)

func writeGrid(t *testing.T, path string, cells map[grid.CellPos]string) {
	t.Helper()
	src := table.NewSourceTable()
	for p, s := range cells {
		src.Set(p, s)
	}
	if err := store.New().Save(path, src); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
}

func TestOpenRendersFile(t *testing.T) {
	i := newIntegration(t)
	path := filepath.Join(t.TempDir(), "a.bight")
	writeGrid(t, path, map[grid.CellPos]string{
		grid.Pos(0, 0): "2",
		grid.Pos(1, 0): "=cell(0, 0) * 21",
	})

	s := newTestSurface(1)
	ctx := context.Background()
	if err := i.Handle(ctx, ViewportOpened{Surface: s, Path: path}); err != nil {
		t.Fatalf("Handle(opened) error = %v", err)
	}
	if got := s.Row(0); !strings.HasPrefix(got, "2        42       ") {
		t.Errorf("row 0 = %q", got)
	}
	if len(s.Notes()) != 0 {
		t.Errorf("unexpected notes %v", s.Notes())
	}

	if err := i.Handle(ctx, ViewportOpened{Surface: s, Path: path}); !errors.Is(err, ErrAlreadyOpen) {
		t.Errorf("second open error = %v, want ErrAlreadyOpen", err)
	}
}

func TestOpenFallsBackToEmpty(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.bight")
	if err := os.WriteFile(bad, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		note string
	}{
		{"missing", filepath.Join(dir, "new.bight"), "info: New file"},
		{"invalid", bad, "error: Cannot load"},
	}

	for n, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := newIntegration(t)
			s := newTestSurface(editor.SurfaceID(n + 1))
			if err := i.Handle(context.Background(), ViewportOpened{Surface: s, Path: tt.path}); err != nil {
				t.Fatalf("Handle(opened) error = %v", err)
			}
			notes := s.Notes()
			if len(notes) != 1 || !strings.HasPrefix(notes[0], tt.note) {
				t.Errorf("notes = %v, want %q", notes, tt.note)
			}
			if got := s.Row(0); strings.TrimSpace(got) != "" {
				t.Errorf("row 0 = %q, want empty grid", got)
			}
		})
	}
}

func TestEditThroughEvents(t *testing.T) {
	i := newIntegration(t)
	path := filepath.Join(t.TempDir(), "a.bight")
	s := newTestSurface(1)
	ctx := context.Background()

	if err := i.Handle(ctx, ViewportOpened{Surface: s, Path: path}); err != nil {
		t.Fatalf("Handle(opened) error = %v", err)
	}
	a, _ := i.Registry().Lookup(1)

	_ = s.SetCursor(1, 9)
	eff, err := ActionBeginEdit.Run(ctx, a)
	if err != nil {
		t.Fatalf("begin_edit error = %v", err)
	}
	if !eff.SwitchMode || eff.Mode != ModeInsert {
		t.Errorf("effect = %+v, want insert", eff)
	}
	if !s.Highlighted() {
		t.Error("edit should be highlighted")
	}

	s.SetLine(0, "         hello")
	if err := i.Handle(ctx, InsertLeft{ID: 1}); err != nil {
		t.Fatalf("Handle(insert left) error = %v", err)
	}
	if s.Highlighted() {
		t.Error("highlight should be cleared after commit")
	}
	if got := s.Row(0); !strings.HasPrefix(got, "         hello    ") {
		t.Errorf("row 0 = %q", got)
	}

	if err := i.Handle(ctx, CommitRequested{ID: 1}); err != nil {
		t.Fatalf("Handle(commit) error = %v", err)
	}
	notes := s.Notes()
	if notes[len(notes)-1] != "info: Saved" {
		t.Errorf("last note = %q, want Saved", notes[len(notes)-1])
	}

	loaded, err := store.New().Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if src, _ := loaded.Get(grid.Pos(1, 0)); src != "hello" {
		t.Errorf("saved source = %q, want hello", src)
	}
}

func TestSelectionThroughEvents(t *testing.T) {
	i := newIntegration(t)
	s := newTestSurface(1)
	ctx := context.Background()
	if err := i.Handle(ctx, ViewportOpened{Surface: s}); err != nil {
		t.Fatalf("Handle(opened) error = %v", err)
	}
	a, _ := i.Registry().Lookup(1)

	for _, p := range []grid.CellPos{grid.Pos(0, 0), grid.Pos(1, 0), grid.Pos(0, 1), grid.Pos(2, 2)} {
		p := p
		_ = a.Do(ctx, func(c *editor.Controller) error {
			c.SetSource(p, "x")
			return nil
		})
	}

	eff, err := ActionVisualBlock.Run(ctx, a)
	if err != nil || eff.Mode != ModeVisualBlock {
		t.Fatalf("visual_block = %+v %v", eff, err)
	}
	if err := i.Handle(ctx, ModeChanged{ID: 1, Mode: ModeVisualBlock}); err != nil {
		t.Fatalf("Handle(mode) error = %v", err)
	}
	if _, err := ActionVisualRight.Run(ctx, a); err != nil {
		t.Fatal(err)
	}
	if _, err := ActionVisualDown.Run(ctx, a); err != nil {
		t.Fatal(err)
	}
	if err := i.Handle(ctx, CursorMoved{ID: 1}); err != nil {
		t.Fatalf("Handle(cursor) error = %v", err)
	}

	eff, err = ActionVisualClear.Run(ctx, a)
	if err != nil || eff.Mode != ModeNormal {
		t.Fatalf("visual_clear = %+v %v", eff, err)
	}
	if err := i.Handle(ctx, ModeChanged{ID: 1, Mode: ModeNormal}); err != nil {
		t.Fatalf("Handle(mode) error = %v", err)
	}

	_ = a.Do(ctx, func(c *editor.Controller) error {
		for _, p := range []grid.CellPos{grid.Pos(0, 0), grid.Pos(1, 0), grid.Pos(0, 1)} {
			if _, ok := c.GetSource(p); ok {
				t.Errorf("cell %v not cleared", p)
			}
		}
		if _, ok := c.GetSource(grid.Pos(2, 2)); !ok {
			t.Error("cell (2, 2) outside the selection was cleared")
		}
		if c.Mode() != editor.ModeNormal {
			t.Errorf("Mode() = %s, want normal", c.Mode())
		}
		return nil
	})
	if _, col, _ := s.Cursor(); col%9 != 0 {
		t.Errorf("cursor col = %d, want a cell boundary", col)
	}
}

func TestWriteWithoutPath(t *testing.T) {
	i := newIntegration(t)
	s := newTestSurface(1)
	ctx := context.Background()
	_ = i.Handle(ctx, ViewportOpened{Surface: s})

	if err := i.Handle(ctx, CommitRequested{ID: 1}); !errors.Is(err, ErrNoPath) {
		t.Errorf("Handle(commit) error = %v, want ErrNoPath", err)
	}

	path := filepath.Join(t.TempDir(), "b.bight")
	if err := i.SaveAs(ctx, 1, path); err != nil {
		t.Fatalf("SaveAs() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("SaveAs() did not write: %v", err)
	}
	if got := i.Registry().Path(1); got != path {
		t.Errorf("Path() = %q, want %q", got, path)
	}
}

func TestCloseRemovesSurface(t *testing.T) {
	i := newIntegration(t)
	s := newTestSurface(3)
	ctx := context.Background()
	_ = i.Handle(ctx, ViewportOpened{Surface: s})
	a, _ := i.Registry().Lookup(3)

	if err := i.Handle(ctx, ViewportClosed{ID: 3}); err != nil {
		t.Fatalf("Handle(closed) error = %v", err)
	}
	if i.Registry().Len() != 0 {
		t.Error("registry should be empty")
	}
	if !a.IsClosed() {
		t.Error("actor should be closed")
	}
	if err := i.Handle(ctx, CursorMoved{ID: 3}); !errors.Is(err, editor.ErrUnknownSurface) {
		t.Errorf("event after close error = %v, want ErrUnknownSurface", err)
	}
	if err := i.Handle(ctx, ViewportClosed{ID: 3}); !errors.Is(err, editor.ErrUnknownSurface) {
		t.Errorf("second close error = %v, want ErrUnknownSurface", err)
	}
}

func TestReloadFromWatcher(t *testing.T) {
	w, err := watcher.New(watcher.WithDebounceDelay(20 * time.Millisecond))
	if err != nil {
		t.Fatalf("watcher.New() error = %v", err)
	}
	defer w.Close()

	i := newIntegration(t, WithWatcher(w))
	path := filepath.Join(t.TempDir(), "a.bight")
	writeGrid(t, path, map[grid.CellPos]string{grid.Pos(0, 0): "1"})

	s := newTestSurface(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := i.Handle(ctx, ViewportOpened{Surface: s, Path: path}); err != nil {
		t.Fatalf("Handle(opened) error = %v", err)
	}
	go i.Watch(ctx, w.Events())

	writeGrid(t, path, map[grid.CellPos]string{grid.Pos(0, 0): "2"})

	deadline := time.Now().Add(2 * time.Second)
	for !strings.HasPrefix(s.Row(0), "2 ") {
		if time.Now().After(deadline) {
			t.Fatalf("row 0 = %q, want reloaded content", s.Row(0))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestOwnWriteNotReloaded(t *testing.T) {
	i := newIntegration(t)
	i.markSaved("/x.bight")
	if !i.ownWrite("/x.bight") {
		t.Error("recent save should be reported as own write")
	}
	i.quiet = 0
	time.Sleep(time.Millisecond)
	if i.ownWrite("/x.bight") {
		t.Error("old save should not be reported as own write")
	}
}

func TestUnknownEvent(t *testing.T) {
	i := newIntegration(t)
	if err := i.Handle(context.Background(), nil); err == nil {
		t.Error("Handle(nil) should fail")
	}
}
