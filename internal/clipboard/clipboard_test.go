package clipboard

import (
	"errors"
	"testing"
)

func TestMemory(t *testing.T) {
	m := NewMemory()
	if _, ok := m.Get(); ok {
		t.Error("new register should be empty")
	}

	m.Set("")
	if text, ok := m.Get(); !ok || text != "" {
		t.Errorf("Get() = %q, %v; want empty text that is set", text, ok)
	}

	m.Set("=1+1")
	if text, _ := m.Get(); text != "=1+1" {
		t.Errorf("Get() = %q", text)
	}
}

type fakeBackend struct {
	text        string
	readErr     error
	writeErr    error
	unsupported bool
}

func (f *fakeBackend) ReadAll() (string, error) {
	return f.text, f.readErr
}

func (f *fakeBackend) WriteAll(text string) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.text = text
	return nil
}

func (f *fakeBackend) Unsupported() bool { return f.unsupported }

func TestSystemMirrorsBackend(t *testing.T) {
	b := &fakeBackend{}
	s := NewSystemWithBackend(b)

	s.Set("hello")
	if b.text != "hello" {
		t.Errorf("backend text = %q, want hello", b.text)
	}

	b.text = "from outside"
	if text, ok := s.Get(); !ok || text != "from outside" {
		t.Errorf("Get() = %q, %v", text, ok)
	}
}

func TestSystemFallsBack(t *testing.T) {
	b := &fakeBackend{readErr: errors.New("no display"), writeErr: errors.New("no display")}
	s := NewSystemWithBackend(b)

	var reported int
	s.OnError = func(error) { reported++ }

	s.Set("kept")
	if text, ok := s.Get(); !ok || text != "kept" {
		t.Errorf("Get() = %q, %v; want fallback text", text, ok)
	}
	if reported != 2 {
		t.Errorf("reported %d errors, want 2", reported)
	}

	unsupported := NewSystemWithBackend(&fakeBackend{unsupported: true})
	unsupported.Set("x")
	if text, _ := unsupported.Get(); text != "x" {
		t.Errorf("unsupported Get() = %q", text)
	}
}
