package permission

import (
	"errors"
	"sort"
	"sync"
)

// Resource prefixes and actions that make up the default console universe.
var (
	DefaultResources = []string{"USER", "ROLE", "PERMISSION", "MENU"}
	DefaultActions   = []string{"VIEW", "ADD", "EDIT", "DELETE"}
)

// Registry is the fixed universe of permission codes known to the client.
//
// Codes are registered during initialization and the registry is frozen before the
// resolver reads it.
type Registry struct {
	mu     sync.RWMutex
	codes  map[string]int
	order  []string
	frozen bool
}

// NewRegistry creates an empty, unfrozen [Registry].
func NewRegistry() *Registry {
	return &Registry{
		codes: make(map[string]int),
	}
}

// DefaultUniverse returns a frozen registry holding the sixteen console codes.
func DefaultUniverse() *Registry {
	r := NewRegistry()
	for _, resource := range DefaultResources {
		for _, action := range DefaultActions {
			_, _ = r.Register(resource + "_" + action)
		}
	}
	r.Freeze()
	return r
}

// NewUniverse registers codes in order and freezes the registry.
func NewUniverse(codes []string) (*Registry, error) {
	r := NewRegistry()
	for _, code := range codes {
		if _, err := r.Register(code); err != nil {
			return nil, err
		}
	}
	r.Freeze()
	return r, nil
}

// Register adds a code to the universe and returns its registration index.
// Must be called before [Registry.Freeze].
func (r *Registry) Register(code string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return -1, errors.New("registry frozen")
	}

	if code == "" {
		return -1, errors.New("permission code cannot be empty")
	}

	if _, exists := r.codes[code]; exists {
		return -1, errors.New("permission already registered")
	}

	idx := len(r.order)
	r.codes[code] = idx
	r.order = append(r.order, code)

	return idx, nil
}

// Index returns the registration index of code, or false if unknown.
func (r *Registry) Index(code string) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.codes[code]
	return idx, ok
}

// Contains reports whether code belongs to the universe.
func (r *Registry) Contains(code string) bool {
	_, ok := r.Index(code)
	return ok
}

// Freeze prevents further registrations.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Frozen reports whether [Registry.Freeze] was called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Count returns the number of registered codes.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Codes returns the registered codes in registration order.
func (r *Registry) Codes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// All returns the universe as a [Set].
func (r *Registry) All() Set {
	return NewSet(r.Codes()...)
}

// Sorted returns the registered codes in lexical order.
func (r *Registry) Sorted() []string {
	out := r.Codes()
	sort.Strings(out)
	return out
}
