package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/bight/internal/clipboard"
	"github.com/dshills/bight/internal/config"
	"github.com/dshills/bight/internal/grid"
	"github.com/dshills/bight/internal/plugin"
	"github.com/dshills/bight/internal/store"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func newTestApp(t *testing.T, opts Options) (*Application, tcell.SimulationScreen) {
	t.Helper()

	screen := tcell.NewSimulationScreen("UTF-8")
	opts.Screen = screen
	if opts.ConfigPath == "" {
		opts.ConfigPath = writeConfig(t, "[watch]\nenabled = false\n")
	}
	app, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	screen.SetSize(40, 6)
	t.Cleanup(func() { app.Shutdown() })
	return app, screen
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNewAppliesConfig(t *testing.T) {
	cfg := writeConfig(t, `
[grid]
cell_width = 4

[watch]
enabled = false

[clipboard]
system = false
`)
	app, _ := newTestApp(t, Options{ConfigPath: cfg, LogLevel: "debug"})

	if got := app.Config().Grid.CellWidth; got != 4 {
		t.Errorf("CellWidth = %d, want 4", got)
	}
	if got := app.Config().Log.Level; got != "debug" {
		t.Errorf("Log.Level = %q, want flag override debug", got)
	}
	if _, ok := app.clip.(*clipboard.Memory); !ok {
		t.Errorf("clipboard = %T, want *clipboard.Memory", app.clip)
	}
	if app.watcher != nil {
		t.Error("watcher should be disabled")
	}
	if app.Plugins().State() != plugin.StateUnloaded {
		t.Errorf("plugin state = %v, want unloaded", app.Plugins().State())
	}
}

func TestNewMissingConfig(t *testing.T) {
	_, err := New(Options{
		ConfigPath: filepath.Join(t.TempDir(), "nope.toml"),
		Screen:     tcell.NewSimulationScreen("UTF-8"),
	})
	var ie *InitError
	if !errors.As(err, &ie) || ie.Component != "config" {
		t.Fatalf("err = %v, want config InitError", err)
	}
	if !errors.Is(err, config.ErrFileNotFound) {
		t.Errorf("err = %v, want ErrFileNotFound", err)
	}
}

func TestNewBrokenInitScript(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "init.lua")
	if err := os.WriteFile(script, []byte("this is not lua"), 0o644); err != nil {
		t.Fatal(err)
	}
	logPath := filepath.Join(dir, "bight.log")
	cfg := writeConfig(t, "[watch]\nenabled = false\n[lua]\ninit = '"+script+"'\n")

	app, _ := newTestApp(t, Options{ConfigPath: cfg, LogFile: logPath})
	if app.Plugins().State() != plugin.StateError {
		t.Errorf("plugin state = %v, want error", app.Plugins().State())
	}
	if err := app.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "[ERROR]") || !strings.Contains(string(data), "init.lua") {
		t.Errorf("log should report the script:\n%s", data)
	}
}

func TestInitScriptBindsKeys(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "init.lua")
	lua := `bight.keymap("n", "Z", function() bight.set_source(0, 0, "7") end)`
	if err := os.WriteFile(script, []byte(lua), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := writeConfig(t, "[watch]\nenabled = false\n[lua]\ninit = '"+script+"'\n")
	path := filepath.Join(dir, "g.bight")

	app, _ := newTestApp(t, Options{ConfigPath: cfg, File: path})
	if app.Plugins().State() != plugin.StateLoaded {
		t.Fatalf("plugin state = %v, want loaded: %v", app.Plugins().State(), app.Plugins().Error())
	}

	ctx := context.Background()
	if err := app.Term().Open(ctx, path); err != nil {
		t.Fatalf("Open: %v", err)
	}
	app.Term().Handle(ctx, tcell.NewEventKey(tcell.KeyRune, 'Z', tcell.ModNone))
	app.Term().Handle(ctx, tcell.NewEventKey(tcell.KeyCtrlS, 0, tcell.ModCtrl))

	src, err := store.New().Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got, _ := src.Get(grid.Pos(0, 0)); got != "7" {
		t.Errorf("saved A0 = %q, want 7", got)
	}
}

func TestRunQuit(t *testing.T) {
	cfg := writeConfig(t, "[watch]\nenabled = true\ndebounce = '10ms'\n")
	path := filepath.Join(t.TempDir(), "g.bight")
	app, screen := newTestApp(t, Options{ConfigPath: cfg, File: path})

	done := make(chan error, 1)
	go func() { done <- app.Run(context.Background()) }()

	reg := app.Integration().Registry()
	waitFor(t, func() bool { return reg.Len() == 1 })
	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after q")
	}
	if reg.Len() != 0 {
		t.Errorf("registry has %d surfaces after quit", reg.Len())
	}
	if err := app.Shutdown(); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestRunStopsOnShutdown(t *testing.T) {
	app, _ := newTestApp(t, Options{})

	done := make(chan error, 1)
	go func() { done <- app.Run(context.Background()) }()
	reg := app.Integration().Registry()
	waitFor(t, func() bool { return reg.Len() == 1 })

	if err := app.Shutdown(); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Shutdown")
	}

	if err := app.Shutdown(); err != nil {
		t.Errorf("second Shutdown: %v", err)
	}
	if err := app.Run(context.Background()); !errors.Is(err, ErrShutdown) {
		t.Errorf("Run after Shutdown = %v, want ErrShutdown", err)
	}
}

func TestErrorList(t *testing.T) {
	var list ErrorList
	if list.AsError() != nil {
		t.Error("empty list should be nil")
	}
	list.Add(nil)
	list.Add(ErrShutdown)
	list.Add(errors.New("second"))

	if list.Len() != 2 {
		t.Errorf("Len = %d, want 2", list.Len())
	}
	err := list.AsError()
	if !errors.Is(err, ErrShutdown) {
		t.Errorf("errors.Is(%v, ErrShutdown) = false", err)
	}
	if !strings.HasPrefix(err.Error(), "2 errors") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestOperationError(t *testing.T) {
	err := NewOperationError("open", "g.bight", os.ErrPermission)
	if got := err.Error(); got != "open g.bight: permission denied" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, os.ErrPermission) {
		t.Error("should unwrap to ErrPermission")
	}
}
