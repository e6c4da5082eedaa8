// Package clipboard provides the yank register used by grid editors.
package clipboard

import (
	"sync"

	"github.com/atotto/clipboard"
)

// Register stores raw cell text between yank and paste.
type Register interface {
	// Get returns the register content. ok is false if nothing was yanked.
	Get() (text string, ok bool)
	// Set replaces the register content.
	Set(text string)
}

// Memory is an in-process register.
type Memory struct {
	mu   sync.RWMutex
	text string
	set  bool
}

// NewMemory creates an empty in-process register.
func NewMemory() *Memory {
	return &Memory{}
}

// Get returns the last text set.
func (m *Memory) Get() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.text, m.set
}

// Set stores text.
func (m *Memory) Set(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	m.set = true
}

// Backend is the system clipboard access used by System.
type Backend interface {
	ReadAll() (string, error)
	WriteAll(text string) error
	Unsupported() bool
}

// atottoBackend adapts github.com/atotto/clipboard.
type atottoBackend struct{}

func (atottoBackend) ReadAll() (string, error)   { return clipboard.ReadAll() }
func (atottoBackend) WriteAll(text string) error { return clipboard.WriteAll(text) }
func (atottoBackend) Unsupported() bool          { return clipboard.Unsupported }

// System mirrors the register to the operating system clipboard. When the
// system clipboard is unavailable it degrades to an in-process register.
type System struct {
	backend  Backend
	fallback *Memory

	// OnError, if set, receives clipboard access failures.
	OnError func(err error)
}

// NewSystem creates a register backed by the OS clipboard.
func NewSystem() *System {
	return NewSystemWithBackend(atottoBackend{})
}

// NewSystemWithBackend creates a system register over a custom backend.
func NewSystemWithBackend(b Backend) *System {
	return &System{backend: b, fallback: NewMemory()}
}

// Get reads the OS clipboard, falling back to the last text set locally.
func (s *System) Get() (string, bool) {
	if s.backend.Unsupported() {
		return s.fallback.Get()
	}
	text, err := s.backend.ReadAll()
	if err != nil {
		s.report(err)
		return s.fallback.Get()
	}
	return text, true
}

// Set writes text to the OS clipboard and the local fallback.
func (s *System) Set(text string) {
	s.fallback.Set(text)
	if s.backend.Unsupported() {
		return
	}
	if err := s.backend.WriteAll(text); err != nil {
		s.report(err)
	}
}

func (s *System) report(err error) {
	if s.OnError != nil {
		s.OnError(err)
	}
}
