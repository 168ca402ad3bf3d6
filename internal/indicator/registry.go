package indicator

import (
	"fmt"
	"sort"
	"sync"

	indicatorpkg "github.com/mohamedkhairy/stock-factors/pkg/indicator"
)

// FactorFactory constructs a configured factor
type FactorFactory func() (indicatorpkg.Factor, error)

// FactorMetadata contains information about a factor
type FactorMetadata struct {
	Name        string
	Type        string // "window"
	Description string
	Parameters  map[string]interface{}
	Category    string // "momentum", "trend", "volatility"
	Inputs      []string
	Outputs     []string
}

// FactorCatalog holds every factor the service knows how to build
type FactorCatalog struct {
	mu        sync.RWMutex
	factories map[string]FactorFactory
	metadata  map[string]FactorMetadata
}

// NewFactorCatalog creates an empty factor catalog
func NewFactorCatalog() *FactorCatalog {
	return &FactorCatalog{
		factories: make(map[string]FactorFactory),
		metadata:  make(map[string]FactorMetadata),
	}
}

// Register registers a factor factory under name
func (c *FactorCatalog) Register(name string, factory FactorFactory, metadata FactorMetadata) error {
	if name == "" {
		return fmt.Errorf("factor name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factor %q: factory cannot be nil", name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.factories[name]; exists {
		return fmt.Errorf("factor %q already registered", name)
	}

	c.factories[name] = factory
	c.metadata[name] = metadata
	return nil
}

// GetFactory returns the factory registered under name
func (c *FactorCatalog) GetFactory(name string) (FactorFactory, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	factory, exists := c.factories[name]
	return factory, exists
}

// ListAvailable returns the sorted names of all registered factors
func (c *FactorCatalog) ListAvailable() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.factories))
	for name := range c.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetMetadata returns metadata for a factor
func (c *FactorCatalog) GetMetadata(name string) (FactorMetadata, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	metadata, exists := c.metadata[name]
	return metadata, exists
}

// GetAllMetadata returns all factor metadata
func (c *FactorCatalog) GetAllMetadata() map[string]FactorMetadata {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[string]FactorMetadata, len(c.metadata))
	for name, metadata := range c.metadata {
		result[name] = metadata
	}
	return result
}

// Build instantiates the named factors into a kernel registry.
// An empty names list builds every registered factor.
func (c *FactorCatalog) Build(names []string) (*indicatorpkg.Registry, error) {
	if len(names) == 0 {
		names = c.ListAvailable()
	}

	registry := indicatorpkg.NewRegistry()
	for _, name := range names {
		factory, ok := c.GetFactory(name)
		if !ok {
			return nil, fmt.Errorf("unknown factor %q", name)
		}
		f, err := factory()
		if err != nil {
			return nil, fmt.Errorf("failed to build factor %q: %w", name, err)
		}
		if err := registry.Register(f); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
