package app

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/bight/internal/clipboard"
	"github.com/dshills/bight/internal/config"
	"github.com/dshills/bight/internal/host"
	"github.com/dshills/bight/internal/host/term"
	"github.com/dshills/bight/internal/plugin"
	"github.com/dshills/bight/internal/watcher"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the config file. Empty reads the default location.
	ConfigPath string
	// File is the grid to open. Empty opens an unnamed grid.
	File string
	// LogLevel overrides log.level when set.
	LogLevel string
	// LogFile overrides log.file when set.
	LogFile string
	// Screen replaces the terminal screen, mostly for tests. It must not
	// be initialized yet.
	Screen tcell.Screen
}

// Application owns every long-lived component.
type Application struct {
	opts Options

	ctx    context.Context
	cancel context.CancelFunc

	config  *config.Config
	logger  *Logger
	logFile *os.File
	clip    clipboard.Register
	watcher *watcher.Watcher
	integ   *host.Integration
	keymap  *host.Keymap
	plugins *plugin.Host
	screen  tcell.Screen
	term    *term.Term

	mu       sync.Mutex
	running  bool
	shutdown bool
}

// New creates and bootstraps the application. The screen is initialized
// but nothing is drawn until Run.
func New(opts Options) (*Application, error) {
	ctx, cancel := context.WithCancel(context.Background())
	app := &Application{
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
		logger: NullLogger,
	}
	if err := newBootstrapper(app, opts).bootstrap(); err != nil {
		cancel()
		return nil, err
	}
	return app, nil
}

// Run opens the configured file and processes input until the grid is
// closed, ctx ends or Shutdown is called.
func (app *Application) Run(ctx context.Context) error {
	app.mu.Lock()
	if app.shutdown {
		app.mu.Unlock()
		return ErrShutdown
	}
	if app.running {
		app.mu.Unlock()
		return ErrAlreadyRunning
	}
	app.running = true
	app.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-app.ctx.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := app.term.Open(ctx, app.opts.File); err != nil {
		return NewOperationError("open", app.opts.File, err)
	}
	if app.watcher != nil {
		go app.integ.Watch(ctx, app.watcher.Events())
		go app.drainWatchErrors(ctx)
	}

	app.logger.Info("running %s", displayName(app.opts.File))
	err := app.term.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (app *Application) drainWatchErrors(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-app.watcher.Errors():
			if !ok {
				return
			}
			app.logger.Warn("watch: %v", err)
		}
	}
}

// Shutdown stops every component in reverse start order. It is safe to
// call more than once and from a signal handler.
func (app *Application) Shutdown() error {
	app.mu.Lock()
	if app.shutdown {
		app.mu.Unlock()
		return nil
	}
	app.shutdown = true
	app.mu.Unlock()

	app.cancel()

	var errs ErrorList
	if app.plugins != nil {
		errs.Add(app.plugins.Close())
	}
	if app.integ != nil {
		errs.Add(app.integ.Registry().CloseAll())
	}
	if app.watcher != nil {
		errs.Add(app.watcher.Close())
	}
	if app.screen != nil {
		app.screen.Fini()
	}
	app.logger.Info("shutdown")
	if app.logFile != nil {
		errs.Add(app.logFile.Close())
	}
	return errs.AsError()
}

// Config returns the loaded configuration.
func (app *Application) Config() *config.Config {
	return app.config
}

// Logger returns the application logger.
func (app *Application) Logger() *Logger {
	return app.logger
}

// Integration returns the surface integration.
func (app *Application) Integration() *host.Integration {
	return app.integ
}

// Plugins returns the Lua plugin host.
func (app *Application) Plugins() *plugin.Host {
	return app.plugins
}

// Term returns the terminal host.
func (app *Application) Term() *term.Term {
	return app.term
}

func displayName(path string) string {
	if path == "" {
		return "[No Name]"
	}
	return path
}
