package transit

import "fmt"

// Registry maps stop names to dense, zero-based indices and back.
// Indices are handed out in first-seen order and are never reused.
type Registry struct {
	index map[string]int
	names []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register returns the index of name, assigning the next free one if it is new.
func (r *Registry) Register(name string) int {
	if idx, ok := r.index[name]; ok {
		return idx
	}
	idx := len(r.names)
	r.index[name] = idx
	r.names = append(r.names, name)
	return idx
}

// Lookup returns the index of a registered name.
func (r *Registry) Lookup(name string) (int, error) {
	idx, ok := r.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownStop, name)
	}
	return idx, nil
}

// Name returns the stop name for an index produced by this registry.
func (r *Registry) Name(idx int) string {
	return r.names[idx]
}

// Len reports the number of registered stops.
func (r *Registry) Len() int {
	return len(r.names)
}

// Names returns a copy of all stop names ordered by index.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Clear removes every registered stop.
func (r *Registry) Clear() {
	r.index = make(map[string]int)
	r.names = nil
}
