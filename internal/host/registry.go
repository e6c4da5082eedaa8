package host

import (
	"sort"
	"sync"

	"github.com/dshills/bight/internal/editor"
)

// entry is one registered surface.
type entry struct {
	actor  *editor.Actor
	path   string
	closer func() error
}

// Registry maps surfaces to their editors. It is only mutated when a
// surface opens or closes.
type Registry struct {
	mu      sync.RWMutex
	entries map[editor.SurfaceID]*entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[editor.SurfaceID]*entry)}
}

// Add registers actor for id. closer, if not nil, is called on Remove
// after the actor is closed. It returns false if id is already registered.
func (r *Registry) Add(id editor.SurfaceID, actor *editor.Actor, path string, closer func() error) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; ok {
		return false
	}
	r.entries[id] = &entry{actor: actor, path: path, closer: closer}
	return true
}

// Lookup returns the actor registered for id.
func (r *Registry) Lookup(id editor.SurfaceID) (*editor.Actor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	return e.actor, true
}

// Path returns the backing file of id.
func (r *Registry) Path(id editor.SurfaceID) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.entries[id]; ok {
		return e.path
	}
	return ""
}

// SetPath records a new backing file for id.
func (r *Registry) SetPath(id editor.SurfaceID, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[id]; ok {
		e.path = path
	}
}

// ByPath returns the surfaces backed by path, in id order.
func (r *Registry) ByPath(path string) []editor.SurfaceID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []editor.SurfaceID
	for id, e := range r.entries {
		if e.path == path {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Remove unregisters id, closes its actor and runs its closer.
func (r *Registry) Remove(id editor.SurfaceID) (string, bool, error) {
	r.mu.Lock()
	e, ok := r.entries[id]
	delete(r.entries, id)
	r.mu.Unlock()

	if !ok {
		return "", false, nil
	}
	e.actor.Close()
	if e.closer != nil {
		return e.path, true, e.closer()
	}
	return e.path, true, nil
}

// Len returns the number of registered surfaces.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// IDs returns every registered surface in id order.
func (r *Registry) IDs() []editor.SurfaceID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]editor.SurfaceID, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// CloseAll removes every surface.
func (r *Registry) CloseAll() error {
	var first error
	for _, id := range r.IDs() {
		if _, _, err := r.Remove(id); err != nil && first == nil {
			first = err
		}
	}
	return first
}
