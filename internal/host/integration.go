package host

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/dshills/bight/internal/clipboard"
	"github.com/dshills/bight/internal/editor"
	"github.com/dshills/bight/internal/grid"
	"github.com/dshills/bight/internal/table"
	"github.com/dshills/bight/internal/watcher"
)

// Integration errors.
var (
	// ErrAlreadyOpen is returned when a surface is opened twice.
	ErrAlreadyOpen = errors.New("surface already open")

	// ErrNoPath is returned when writing a surface without a backing file.
	ErrNoPath = errors.New("no file name")
)

// FileWatcher tracks backing files for external changes.
type FileWatcher interface {
	Add(path string) error
	Remove(path string) error
}

// Option configures an Integration.
type Option func(*Integration)

// WithLogger sets the integration logger.
func WithLogger(l editor.Logger) Option {
	return func(i *Integration) {
		if l != nil {
			i.logger = l
		}
	}
}

// WithClipboard shares one register between every surface. By default
// each surface gets its own in-memory register.
func WithClipboard(c clipboard.Register) Option {
	return func(i *Integration) {
		i.clip = c
	}
}

// WithGeometry sets the cell layout of new surfaces.
func WithGeometry(g grid.Geometry) Option {
	return func(i *Integration) {
		i.geom = g
	}
}

// WithWatcher enables reloading backing files changed outside the editor.
func WithWatcher(w FileWatcher) Option {
	return func(i *Integration) {
		i.watcher = w
	}
}

// WithFormulaTimeout bounds the evaluation of a single formula.
func WithFormulaTimeout(d time.Duration) Option {
	return func(i *Integration) {
		i.formulaTimeout = d
	}
}

// Integration maps host events onto surface editors.
type Integration struct {
	// ctx bounds the lifetime of every actor.
	ctx      context.Context
	registry *Registry
	store    editor.Persistence

	clip           clipboard.Register
	geom           grid.Geometry
	watcher        FileWatcher
	formulaTimeout time.Duration
	logger         editor.Logger

	// Files this process wrote, so their change events are not reloaded.
	mu    sync.Mutex
	saved map[string]time.Time
	quiet time.Duration
}

// NewIntegration creates an integration. Actors it starts stop when ctx is
// cancelled.
func NewIntegration(ctx context.Context, registry *Registry, store editor.Persistence, opts ...Option) *Integration {
	i := &Integration{
		ctx:      ctx,
		registry: registry,
		store:    store,
		geom:     grid.DefaultGeometry,
		logger:   nopLogger{},
		saved:    make(map[string]time.Time),
		quiet:    time.Second,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Registry returns the surface registry.
func (i *Integration) Registry() *Registry {
	return i.registry
}

// Handle applies ev to the editor of its surface.
func (i *Integration) Handle(ctx context.Context, ev Event) error {
	switch e := ev.(type) {
	case ViewportOpened:
		return i.open(ctx, e)
	case ViewportResized:
		return i.do(ctx, e.ID, (*editor.Controller).Render)
	case CursorMoved:
		return i.do(ctx, e.ID, cursorMoved)
	case ModeChanged:
		return i.do(ctx, e.ID, func(c *editor.Controller) error {
			return modeChanged(c, e.Mode)
		})
	case InsertLeft:
		return i.do(ctx, e.ID, insertLeft)
	case CommitRequested:
		return i.write(ctx, e.ID)
	case ViewportClosed:
		return i.close(e.ID)
	default:
		return fmt.Errorf("host: unknown event %T", ev)
	}
}

func (i *Integration) do(ctx context.Context, id editor.SurfaceID, fn func(*editor.Controller) error) error {
	return editor.With(ctx, i.registry, id, fn)
}

// open creates the editor for a new surface. A backing file that cannot be
// loaded leaves the grid empty and notifies the user.
func (i *Integration) open(ctx context.Context, e ViewportOpened) error {
	id := e.Surface.ID()
	if _, ok := i.registry.Lookup(id); ok {
		return fmt.Errorf("%w: %d", ErrAlreadyOpen, id)
	}

	path := e.Path
	if path != "" {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	src := table.NewSourceTable()
	if path != "" {
		loaded, err := i.store.Load(path)
		switch {
		case err == nil:
			src = loaded
		case errors.Is(err, fs.ErrNotExist):
			e.Surface.Notify(editor.LevelInfo, fmt.Sprintf("New file %s", e.Path))
		default:
			i.logger.Warn("load %s failed: %v", path, err)
			e.Surface.Notify(editor.LevelError, fmt.Sprintf("Cannot load %s: %v", e.Path, err))
		}
	}

	var topts []table.Option
	if i.formulaTimeout > 0 {
		topts = append(topts, table.WithFormulaTimeout(i.formulaTimeout))
	}
	tbl, err := table.NewEvaluatorTable(src, topts...)
	if err != nil {
		return fmt.Errorf("host: open surface %d: %w", id, err)
	}

	st := editor.NewState(e.Surface, tbl, i.clip, i.geom)
	st.Path = path
	ctrl := editor.NewController(st, editor.WithGeometry(i.geom), editor.WithLogger(i.logger))
	actor := editor.NewActor(ctrl, 0)

	closer := func() error {
		if path != "" && i.watcher != nil {
			_ = i.watcher.Remove(path)
		}
		return tbl.Close()
	}
	if !i.registry.Add(id, actor, path, closer) {
		tbl.Close()
		return fmt.Errorf("%w: %d", ErrAlreadyOpen, id)
	}
	go actor.Run(i.ctx)

	if path != "" && i.watcher != nil {
		if err := i.watcher.Add(path); err != nil {
			i.logger.Warn("watch %s failed: %v", path, err)
		}
	}

	i.logger.Info("opened surface %d (%s)", id, path)
	return actor.Do(ctx, (*editor.Controller).Render)
}

// write saves the surface to its backing file.
func (i *Integration) write(ctx context.Context, id editor.SurfaceID) error {
	return i.do(ctx, id, func(c *editor.Controller) error {
		st := c.State()
		if st.Path == "" {
			st.Surface.Notify(editor.LevelWarn, "No file name")
			return ErrNoPath
		}

		i.markSaved(st.Path)
		if err := c.Save(i.store, ""); err != nil {
			st.Surface.Notify(editor.LevelError, err.Error())
			return err
		}
		st.Surface.Notify(editor.LevelInfo, "Saved")
		return nil
	})
}

// SaveAs writes the surface to a new backing file.
func (i *Integration) SaveAs(ctx context.Context, id editor.SurfaceID, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	old := i.registry.Path(id)
	err = i.do(ctx, id, func(c *editor.Controller) error {
		c.State().Path = abs
		return nil
	})
	if err != nil {
		return err
	}
	i.registry.SetPath(id, abs)
	if i.watcher != nil && old != abs {
		if old != "" {
			_ = i.watcher.Remove(old)
		}
		if err := i.watcher.Add(abs); err != nil {
			i.logger.Warn("watch %s failed: %v", abs, err)
		}
	}
	return i.write(ctx, id)
}

func (i *Integration) close(id editor.SurfaceID) error {
	path, ok, err := i.registry.Remove(id)
	if !ok {
		return fmt.Errorf("%w: %d", editor.ErrUnknownSurface, id)
	}
	i.logger.Info("closed surface %d (%s)", id, path)
	return err
}

func (i *Integration) markSaved(path string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.saved[path] = time.Now()
}

// ownWrite reports whether path was saved by this process recently.
func (i *Integration) ownWrite(path string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	at, ok := i.saved[path]
	if !ok {
		return false
	}
	if time.Since(at) > i.quiet {
		delete(i.saved, path)
		return false
	}
	return true
}

// Reload reloads every surface backed by path from disk. Surfaces with a
// pending edit keep their content and are notified.
func (i *Integration) Reload(ctx context.Context, path string) error {
	ids := i.registry.ByPath(path)
	if len(ids) == 0 {
		return nil
	}

	src, err := i.store.Load(path)
	if err != nil {
		i.logger.Warn("reload %s failed: %v", path, err)
		return err
	}

	var first error
	for _, id := range ids {
		err := i.do(ctx, id, func(c *editor.Controller) error {
			if err := c.Reload(src.Clone()); err != nil {
				c.State().Surface.Notify(editor.LevelWarn, fmt.Sprintf("Not reloaded: %v", err))
				return err
			}
			c.State().Surface.Notify(editor.LevelInfo, fmt.Sprintf("Reloaded %s", filepath.Base(path)))
			return nil
		})
		if err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Watch reloads surfaces as watcher events arrive, until ctx is cancelled
// or events is closed.
func (i *Integration) Watch(ctx context.Context, events <-chan watcher.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !ev.Op.Changed() || i.ownWrite(ev.Path) {
				continue
			}
			if err := i.Reload(ctx, ev.Path); err != nil {
				i.logger.Debug("reload %s: %v", ev.Path, err)
			}
		}
	}
}

func cursorMoved(c *editor.Controller) error {
	switch c.Mode() {
	case editor.ModeSelecting:
		_, err := c.Selection()
		return err
	case editor.ModeNormal:
		return c.NormalizeCursor()
	default:
		return nil
	}
}

func modeChanged(c *editor.Controller, mode Mode) error {
	switch mode {
	case ModeVisualBlock:
		if c.Mode() != editor.ModeNormal {
			return nil
		}
		cur, err := c.CurrentCell()
		if err != nil {
			return err
		}
		return c.BeginSelect(cur)
	case ModeNormal:
		if c.Mode() == editor.ModeSelecting {
			return c.EndSelect()
		}
	}
	return nil
}

func insertLeft(c *editor.Controller) error {
	if _, ok := c.State().Session.Pending(); !ok || c.State().Session.Kind() != editor.EditInline {
		return nil
	}
	return c.CommitPending()
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
