package app

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dshills/bight/internal/editor"
)

var _ editor.Logger = (*Logger)(nil)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", LogLevelDebug},
		{"DEBUG", LogLevelDebug},
		{"info", LogLevelInfo},
		{"Warning", LogLevelWarn},
		{"error", LogLevelError},
		{"unknown", LogLevelInfo},
		{"", LogLevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLogLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLogLevel(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: LogLevelWarn, Output: &buf, Prefix: "test"})

	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn %d", 1)
	logger.Error("error")

	output := buf.String()
	for _, absent := range []string{"[DEBUG]", "[INFO]"} {
		if strings.Contains(output, absent) {
			t.Errorf("expected %s to be filtered out", absent)
		}
	}
	for _, present := range []string{"[WARN] test: warn 1", "[ERROR] test: error"} {
		if !strings.Contains(output, present) {
			t.Errorf("expected %q in output, got: %s", present, output)
		}
	}

	buf.Reset()
	logger.SetLevel(LogLevelDebug)
	logger.Debug("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Error("SetLevel did not lower the threshold")
	}
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: LogLevelInfo, Output: &buf})

	logger.WithComponent("watcher").WithFields(map[string]any{"path": "a.bight", "id": 3}).Info("reload")

	if got := buf.String(); !strings.Contains(got, "reload {component=watcher, id=3, path=a.bight}") {
		t.Errorf("fields not sorted into the line: %s", got)
	}

	buf.Reset()
	logger.Info("plain")
	if strings.Contains(buf.String(), "{") {
		t.Error("WithField must not modify the parent logger")
	}
}

func TestLogger_DisableAndNull(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: LogLevelDebug, Output: &buf})

	logger.Disable()
	logger.Error("hidden")
	if buf.Len() != 0 {
		t.Error("disabled logger wrote output")
	}
	logger.Enable()
	logger.Error("shown")
	if buf.Len() == 0 {
		t.Error("enabled logger wrote nothing")
	}

	NullLogger.Error("discarded")
}

func TestLogger_DerivedSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	root := NewLogger(LoggerConfig{Level: LogLevelError, Output: &buf})
	child := root.WithComponent("term")

	child.Info("hidden")
	root.SetLevel(LogLevelInfo)
	child.Info("shown")

	if got := buf.String(); strings.Contains(got, "hidden") || !strings.Contains(got, "shown {component=term}") {
		t.Errorf("child should follow the root level: %q", got)
	}
}
