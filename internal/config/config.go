package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/bight/internal/config/loader"
	"github.com/dshills/bight/internal/grid"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "BIGHT_"

// Config holds every bight setting.
type Config struct {
	Grid      GridConfig      `toml:"grid"`
	Log       LogConfig       `toml:"log"`
	Clipboard ClipboardConfig `toml:"clipboard"`
	Watch     WatchConfig     `toml:"watch"`
	Lua       LuaConfig       `toml:"lua"`
	Theme     ThemeConfig     `toml:"theme"`

	// Path is the config file that was read, or "" when none existed.
	Path string `toml:"-"`
}

// GridConfig sets the cell layout.
type GridConfig struct {
	CellWidth      int `toml:"cell_width"`
	SeparatorWidth int `toml:"separator_width"`
}

// LogConfig sets the log level and destination.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
	// File receives log output. Empty discards it; the terminal is
	// owned by the screen.
	File string `toml:"file"`
}

// ClipboardConfig selects the yank register.
type ClipboardConfig struct {
	// System shares yanks with the OS clipboard.
	System bool `toml:"system"`
}

// WatchConfig controls reload on external file changes.
type WatchConfig struct {
	Enabled  bool     `toml:"enabled"`
	Debounce Duration `toml:"debounce"`
}

// LuaConfig configures formulas and the scripting API.
type LuaConfig struct {
	// Init is a script run at startup; it may bind keys.
	Init string `toml:"init"`
	// Timeout bounds a single formula or script call.
	Timeout Duration `toml:"timeout"`
}

// ThemeConfig holds hex colors.
type ThemeConfig struct {
	EditHighlight string `toml:"edit_highlight"`
	Selection     string `toml:"selection"`
}

// Duration is a time.Duration written as "100ms" in config files.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Grid: GridConfig{
			CellWidth:      grid.DefaultCellWidth,
			SeparatorWidth: grid.DefaultSeparatorWidth,
		},
		Log:   LogConfig{Level: "info"},
		Watch: WatchConfig{Enabled: true, Debounce: Duration(100 * time.Millisecond)},
		Lua:   LuaConfig{Timeout: Duration(time.Second)},
		Theme: ThemeConfig{EditHighlight: "#3a3a6e", Selection: "#4e4e4e"},
	}
}

// DefaultPath returns the user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "bight", "config.toml")
}

// Option configures Load.
type Option func(*options)

type options struct {
	fs        loader.FileSystem
	envPrefix string
	overrides map[string]any
}

// WithFS reads the config file from fs.
func WithFS(fs loader.FileSystem) Option {
	return func(o *options) { o.fs = fs }
}

// WithEnvPrefix changes the environment prefix. An empty prefix skips
// the environment.
func WithEnvPrefix(prefix string) Option {
	return func(o *options) { o.envPrefix = prefix }
}

// WithOverride sets a dotted path above every other source. Command line
// flags arrive this way.
func WithOverride(path string, value any) Option {
	return func(o *options) { loader.SetByPath(o.overrides, path, value) }
}

// Load reads the settings. An empty path means DefaultPath, which may be
// absent; a named path must exist.
func Load(path string, opts ...Option) (*Config, error) {
	o := options{
		fs:        loader.DefaultFS(),
		envPrefix: EnvPrefix,
		overrides: make(map[string]any),
	}
	for _, opt := range opts {
		opt(&o)
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	merged := make(map[string]any)
	cfg := Default()

	if path != "" {
		if _, err := o.fs.Stat(path); err != nil {
			if explicit {
				return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
			}
		} else {
			file, err := loader.NewFileLoader(o.fs, path).Load()
			if err != nil {
				return nil, err
			}
			loader.DeepMerge(merged, file)
			cfg.Path = path
		}
	}

	if o.envPrefix != "" {
		env, err := loader.NewEnvLoader(o.envPrefix).Load()
		if err != nil {
			return nil, err
		}
		loader.DeepMerge(merged, env)
	}

	loader.DeepMerge(merged, o.overrides)

	if err := decode(merged, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode lays the merged map over cfg; keys absent from the map keep
// their defaults.
func decode(merged map[string]any, cfg *Config) error {
	if len(merged) == 0 {
		return nil
	}
	data, err := toml.Marshal(merged)
	if err != nil {
		return fmt.Errorf("encoding merged config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	return nil
}

// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	if c.Grid.CellWidth < 1 {
		return fmt.Errorf("%w: grid.cell_width must be positive, got %d", ErrValidationFailed, c.Grid.CellWidth)
	}
	if c.Grid.SeparatorWidth < 0 {
		return fmt.Errorf("%w: grid.separator_width must not be negative, got %d", ErrValidationFailed, c.Grid.SeparatorWidth)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log.level %q", ErrValidationFailed, c.Log.Level)
	}
	if c.Watch.Debounce < 0 || c.Lua.Timeout < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrValidationFailed)
	}
	if _, _, err := c.Theme.Colors(); err != nil {
		return err
	}
	return nil
}

// Geometry returns the configured cell layout.
func (c *Config) Geometry() grid.Geometry {
	return grid.NewGeometry(c.Grid.CellWidth, c.Grid.SeparatorWidth)
}

// Colors parses the theme's hex colors.
func (t ThemeConfig) Colors() (edit, selection colorful.Color, err error) {
	if edit, err = colorful.Hex(t.EditHighlight); err != nil {
		return edit, selection, fmt.Errorf("%w: theme.edit_highlight %q", ErrValidationFailed, t.EditHighlight)
	}
	if selection, err = colorful.Hex(t.Selection); err != nil {
		return edit, selection, fmt.Errorf("%w: theme.selection %q", ErrValidationFailed, t.Selection)
	}
	return edit, selection, nil
}
