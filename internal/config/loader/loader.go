// Package loader reads configuration sources into nested maps.
//
// Files are read through a FileSystem so tests can supply an in-memory
// tree; the format follows the file extension. Environment variables are
// read by EnvLoader.
package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Loader produces one configuration layer. A source that does not exist
// yields nil, nil.
type Loader interface {
	Load() (map[string]any, error)
}

// FileSystem is the subset of file operations the loaders need.
// fstest.MapFS satisfies it.
type FileSystem interface {
	fs.ReadFileFS
	fs.StatFS
}

// OSFS reads the real file system with paths as given.
type OSFS struct{}

func (OSFS) Open(name string) (fs.File, error)     { return os.Open(name) }
func (OSFS) ReadFile(name string) ([]byte, error)  { return os.ReadFile(name) }
func (OSFS) Stat(name string) (fs.FileInfo, error) { return os.Stat(name) }

// DefaultFS returns the OS file system.
func DefaultFS() FileSystem {
	return OSFS{}
}

// Format is a config file syntax.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "toml"
}

// FormatOf picks the format by extension: .yaml and .yml are YAML,
// everything else TOML.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// FileLoader reads one config file.
type FileLoader struct {
	fs     FileSystem
	path   string
	format Format
}

// NewFileLoader creates a loader for path, choosing the format with
// FormatOf.
func NewFileLoader(fsys FileSystem, path string) *FileLoader {
	return &FileLoader{fs: fsys, path: path, format: FormatOf(path)}
}

// Format reports the syntax the file is parsed with.
func (l *FileLoader) Format() Format {
	return l.format
}

// Load reads and parses the file. A missing file yields nil, nil.
func (l *FileLoader) Load() (map[string]any, error) {
	data, err := l.fs.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", l.path, err)
	}
	return l.parse(l.path, data)
}

// LoadFromReader parses r in the loader's format.
func (l *FileLoader) LoadFromReader(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return l.parse("<reader>", data)
}

func (l *FileLoader) parse(source string, data []byte) (map[string]any, error) {
	var (
		m   map[string]any
		err error
	)
	if l.format == FormatYAML {
		m, err = decodeYAML(data)
	} else {
		m, err = decodeTOML(data)
	}
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.Path = source
		}
		return nil, err
	}
	return m, nil
}

// ParseError reports a syntax error with its position when known.
type ParseError struct {
	Path   string
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("parse error in %s at line %d, column %d: %v", e.Path, e.Line, e.Column, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("parse error in %s at line %d: %v", e.Path, e.Line, e.Err)
	default:
		return fmt.Sprintf("parse error in %s: %v", e.Path, e.Err)
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DeepMerge lays src over dst and returns dst. Nested maps merge key by
// key; any other value in src replaces the one in dst.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for key, sv := range src {
		sm, ok1 := sv.(map[string]any)
		dm, ok2 := dst[key].(map[string]any)
		if ok1 && ok2 {
			dst[key] = DeepMerge(dm, sm)
		} else {
			dst[key] = sv
		}
	}
	return dst
}
