package datasource

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Factory creates an adapter for one driver.
type Factory func(ctx context.Context, cfg Config, logger *zap.Logger) (Adapter, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a driver available under the given name. Driver packages
// call this from init; main selects them with blank imports.
func Register(driver string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if factory == nil {
		panic("datasource: Register with nil factory")
	}
	if _, dup := registry[driver]; dup {
		panic(fmt.Sprintf("datasource: Register called twice for driver %q", driver))
	}
	registry[driver] = factory
}

// New creates an adapter for the named driver.
func New(ctx context.Context, driver string, cfg Config, logger *zap.Logger) (Adapter, error) {
	registryMu.RLock()
	factory, ok := registry[driver]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown datasource driver %q (registered: %v)", driver, Drivers())
	}
	return factory(ctx, cfg, logger)
}

// Drivers returns the registered driver names, sorted.
func Drivers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
