package indicator

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages constructed factors by name
type Registry struct {
	mu      sync.RWMutex
	factors map[string]Factor
}

// NewRegistry creates a new factor registry
func NewRegistry() *Registry {
	return &Registry{
		factors: make(map[string]Factor),
	}
}

// Register registers a factor with the registry
func (r *Registry) Register(f Factor) error {
	if f == nil {
		return fmt.Errorf("factor cannot be nil")
	}

	name := f.Name()
	if name == "" {
		return fmt.Errorf("factor name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factors[name]; exists {
		return fmt.Errorf("factor with name %q already registered", name)
	}

	r.factors[name] = f
	return nil
}

// Get retrieves a factor by name
func (r *Registry) Get(name string) (Factor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, exists := r.factors[name]
	if !exists {
		return nil, fmt.Errorf("factor %q not found", name)
	}

	return f, nil
}

// GetAll returns all registered factors
func (r *Registry) GetAll() map[string]Factor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]Factor, len(r.factors))
	for name, f := range r.factors {
		result[name] = f
	}

	return result
}

// List returns the sorted names of all registered factors
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factors))
	for name := range r.factors {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// MaxWindowLength returns the longest window any registered factor needs
func (r *Registry) MaxWindowLength() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	longest := 0
	for _, f := range r.factors {
		if wl := f.WindowLength(); wl > longest {
			longest = wl
		}
	}
	return longest
}

// Unregister removes a factor from the registry
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factors[name]; !exists {
		return fmt.Errorf("factor %q not found", name)
	}

	delete(r.factors, name)
	return nil
}

// Clear removes all factors from the registry
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factors = make(map[string]Factor)
}
