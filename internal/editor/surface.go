package editor

import (
	"github.com/dshills/bight/internal/renderer"
	"github.com/dshills/bight/internal/table"
)

// SurfaceID identifies a host display surface.
type SurfaceID uint64

// Level is the severity of a user notification.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Surface is the host viewport an editor draws into.
//
// Lines are 1-based and columns 0-based for cursor positions. Rows passed
// to SetLines and Line are 0-based.
type Surface interface {
	ID() SurfaceID

	// Size returns the viewport dimensions in characters.
	Size() (width, height int, err error)

	// SetLines replaces rows [start, end) with lines.
	SetLines(start, end int, lines []string) error

	// Line returns the current text of row.
	Line(row int) (string, error)

	// SetHighlight marks span as being edited, replacing any previous mark.
	SetHighlight(span renderer.HighlightSpan) error

	// ClearHighlight removes the edit mark.
	ClearHighlight() error

	Cursor() (line, col int, err error)
	SetCursor(line, col int) error

	// Notify shows a message to the user.
	Notify(level Level, msg string)
}

// Persistence loads and saves table sources.
type Persistence interface {
	Load(path string) (*table.SourceTable, error)
	Save(path string, src *table.SourceTable) error
}

// Lookup finds the editor registered for a surface.
type Lookup interface {
	Lookup(id SurfaceID) (*Actor, bool)
}

// Logger is the logging interface used by the editor.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
