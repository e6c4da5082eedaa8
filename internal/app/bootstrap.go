package app

import (
	"os"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/bight/internal/clipboard"
	"github.com/dshills/bight/internal/config"
	"github.com/dshills/bight/internal/host"
	"github.com/dshills/bight/internal/host/term"
	"github.com/dshills/bight/internal/plugin"
	"github.com/dshills/bight/internal/store"
	"github.com/dshills/bight/internal/watcher"
)

// bootstrapper handles component initialization with proper cleanup on failure.
type bootstrapper struct {
	app       *Application
	opts      Options
	initOrder []string
}

// newBootstrapper creates a new bootstrapper for the application.
func newBootstrapper(app *Application, opts Options) *bootstrapper {
	return &bootstrapper{
		app:       app,
		opts:      opts,
		initOrder: make([]string, 0, 8),
	}
}

// bootstrap initializes all components in dependency order.
// On failure, it cleans up already-initialized components.
func (b *bootstrapper) bootstrap() error {
	steps := []func() error{
		b.initConfig,
		b.initLogger,
		b.initClipboard,
		b.initWatcher,
		b.initIntegration,
		b.initPlugins,
		b.initScreen,
		b.initTerm,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			b.cleanup()
			return err
		}
	}
	return nil
}

func (b *bootstrapper) initConfig() error {
	var opts []config.Option
	if b.opts.LogLevel != "" {
		opts = append(opts, config.WithOverride("log.level", b.opts.LogLevel))
	}
	if b.opts.LogFile != "" {
		opts = append(opts, config.WithOverride("log.file", b.opts.LogFile))
	}
	cfg, err := config.Load(b.opts.ConfigPath, opts...)
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}
	b.app.config = cfg
	b.initOrder = append(b.initOrder, "config")
	return nil
}

// initLogger opens the log file. Without one, logs are discarded because
// the terminal belongs to the screen.
func (b *bootstrapper) initLogger() error {
	cfg := b.app.config.Log
	if cfg.File == "" {
		b.app.logger = NullLogger
		return nil
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return &InitError{Component: "logger", Err: err}
	}
	b.app.logFile = f
	b.app.logger = NewLogger(LoggerConfig{
		Level:  ParseLogLevel(cfg.Level),
		Output: f,
		Prefix: "bight",
	})
	if b.app.config.Path != "" {
		b.app.logger.Debug("config loaded from %s", b.app.config.Path)
	}
	b.initOrder = append(b.initOrder, "logger")
	return nil
}

func (b *bootstrapper) initClipboard() error {
	if !b.app.config.Clipboard.System {
		b.app.clip = clipboard.NewMemory()
		return nil
	}
	log := b.app.logger.WithComponent("clipboard")
	sys := clipboard.NewSystem()
	sys.OnError = func(err error) {
		log.Warn("%v", err)
	}
	b.app.clip = sys
	return nil
}

func (b *bootstrapper) initWatcher() error {
	cfg := b.app.config.Watch
	if !cfg.Enabled {
		return nil
	}
	w, err := watcher.New(watcher.WithDebounceDelay(cfg.Debounce.Std()))
	if err != nil {
		// Reload is a convenience; editing works without it.
		b.app.logger.Warn("file watcher unavailable: %v", err)
		return nil
	}
	b.app.watcher = w
	b.initOrder = append(b.initOrder, "watcher")
	return nil
}

func (b *bootstrapper) initIntegration() error {
	cfg := b.app.config
	opts := []host.Option{
		host.WithLogger(b.app.logger.WithComponent("host")),
		host.WithClipboard(b.app.clip),
		host.WithGeometry(cfg.Geometry()),
		host.WithFormulaTimeout(cfg.Lua.Timeout.Std()),
	}
	if b.app.watcher != nil {
		opts = append(opts, host.WithWatcher(b.app.watcher))
	}
	b.app.integ = host.NewIntegration(b.app.ctx, host.NewRegistry(), store.New(), opts...)
	b.initOrder = append(b.initOrder, "integration")
	return nil
}

// initPlugins starts the Lua host and runs the init script. A broken
// script is logged and reported on the plugin host; the editor still
// starts.
func (b *bootstrapper) initPlugins() error {
	b.app.keymap = host.DefaultKeymap()
	ph, err := plugin.NewHost(b.app.integ.Registry(), b.app.keymap,
		plugin.WithHostExecutionTimeout(b.app.config.Lua.Timeout.Std()))
	if err != nil {
		return &InitError{Component: "plugins", Err: err}
	}
	b.app.plugins = ph
	b.initOrder = append(b.initOrder, "plugins")

	if path := b.app.config.Lua.Init; path != "" {
		if err := ph.Load(path); err != nil {
			b.app.logger.Error("%v", err)
		} else {
			b.app.logger.Info("loaded %s", path)
		}
	}
	return nil
}

func (b *bootstrapper) initScreen() error {
	screen := b.opts.Screen
	if screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return &InitError{Component: "screen", Err: err}
		}
		screen = s
	}
	if err := screen.Init(); err != nil {
		return &InitError{Component: "screen", Err: err}
	}
	b.app.screen = screen
	b.initOrder = append(b.initOrder, "screen")
	return nil
}

func (b *bootstrapper) initTerm() error {
	edit, sel, err := b.app.config.Theme.Colors()
	if err != nil {
		return &InitError{Component: "theme", Err: err}
	}
	b.app.term = term.New(b.app.screen, b.app.integ, b.app.keymap,
		term.WithTheme(term.ThemeFromColors(edit, sel)),
		term.WithGeometry(b.app.config.Geometry()),
		term.WithLogger(b.app.logger.WithComponent("term")),
		term.WithFocus(b.app.plugins),
	)
	b.initOrder = append(b.initOrder, "term")
	return nil
}

// cleanup releases initialized components in reverse order.
func (b *bootstrapper) cleanup() {
	for i := len(b.initOrder) - 1; i >= 0; i-- {
		switch b.initOrder[i] {
		case "screen":
			b.app.screen.Fini()
		case "plugins":
			_ = b.app.plugins.Close()
		case "integration":
			_ = b.app.integ.Registry().CloseAll()
		case "watcher":
			_ = b.app.watcher.Close()
		case "logger":
			_ = b.app.logFile.Close()
		}
	}
	b.initOrder = b.initOrder[:0]
}
