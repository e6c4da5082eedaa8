package host

import (
	"sort"
	"strings"
	"sync"
)

// Match is the result of looking up a key sequence.
type Match uint8

const (
	// MatchNone means no binding starts with the sequence.
	MatchNone Match = iota
	// MatchPrefix means the sequence is the start of a longer binding.
	MatchPrefix
	// MatchFull means the sequence is bound.
	MatchFull
)

// Keymap binds key sequences to actions per mode.
type Keymap struct {
	mu       sync.RWMutex
	bindings map[Mode]map[string]Action
}

// NewKeymap creates an empty keymap.
func NewKeymap() *Keymap {
	return &Keymap{bindings: make(map[Mode]map[string]Action)}
}

// DefaultKeymap returns the built-in bindings.
func DefaultKeymap() *Keymap {
	k := NewKeymap()

	k.Bind(ModeNormal, "h", ActionMoveLeft)
	k.Bind(ModeNormal, "l", ActionMoveRight)
	k.Bind(ModeNormal, "k", ActionMoveUp)
	k.Bind(ModeNormal, "j", ActionMoveDown)
	k.Bind(ModeNormal, "v", ActionVisualBlock)
	k.Bind(ModeNormal, "I", ActionBeginEdit)
	k.Bind(ModeNormal, "E", ActionBeginScratch)
	k.Bind(ModeNormal, "yy", ActionYank)
	k.Bind(ModeNormal, "yv", ActionYankValue)
	k.Bind(ModeNormal, "p", ActionPaste)

	k.Bind(ModeVisualBlock, "h", ActionVisualLeft)
	k.Bind(ModeVisualBlock, "l", ActionVisualRight)
	k.Bind(ModeVisualBlock, "k", ActionVisualUp)
	k.Bind(ModeVisualBlock, "j", ActionVisualDown)
	k.Bind(ModeVisualBlock, "d", ActionVisualClear)
	k.Bind(ModeVisualBlock, "p", ActionVisualPaste)
	k.Bind(ModeVisualBlock, "y", ActionVisualYank)
	k.Bind(ModeVisualBlock, "<Esc>", ActionVisualExit)
	k.Bind(ModeVisualBlock, "v", ActionVisualExit)

	k.Bind(ModeInsert, "<C-c>", ActionCancelEdit)

	return k
}

// Bind maps lhs to a in mode, replacing any existing binding.
func (k *Keymap) Bind(mode Mode, lhs string, a Action) {
	k.mu.Lock()
	defer k.mu.Unlock()

	m, ok := k.bindings[mode]
	if !ok {
		m = make(map[string]Action)
		k.bindings[mode] = m
	}
	m[lhs] = a
}

// Unbind removes the binding of lhs in mode.
func (k *Keymap) Unbind(mode Mode, lhs string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.bindings[mode], lhs)
}

// Match looks up keys in mode. An exact binding wins over longer ones that
// share its prefix.
func (k *Keymap) Match(mode Mode, keys string) (Action, Match) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	m := k.bindings[mode]
	if a, ok := m[keys]; ok {
		return a, MatchFull
	}
	for lhs := range m {
		if strings.HasPrefix(lhs, keys) {
			return Action{}, MatchPrefix
		}
	}
	return Action{}, MatchNone
}

// Bindings returns the bound sequences of mode, sorted.
func (k *Keymap) Bindings(mode Mode) []string {
	k.mu.RLock()
	defer k.mu.RUnlock()

	keys := make([]string, 0, len(k.bindings[mode]))
	for lhs := range k.bindings[mode] {
		keys = append(keys, lhs)
	}
	sort.Strings(keys)
	return keys
}
