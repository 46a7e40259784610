// internal/driver/registry.go
package driver

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"digitizer-service/pkg/driver"
)

// DriverFactory creates a digitizer backend
type DriverFactory func(opts driver.Options, logger *zap.Logger) (driver.Driver, error)

// Registry manages backend registration and creation
type Registry struct {
	drivers map[string]DriverFactory
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewRegistry creates a new driver registry
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		drivers: make(map[string]DriverFactory),
		logger:  logger,
	}
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register registers a backend factory under name, replacing any previous one
func (r *Registry) Register(name string, factory DriverFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.drivers[normalizeName(name)] = factory
	r.logger.Info("Driver registered", zap.String("driver", name))
}

// CreateDriver creates a backend instance
func (r *Registry) CreateDriver(name string, opts driver.Options) (driver.Driver, error) {
	r.mu.RLock()
	factory, exists := r.drivers[normalizeName(name)]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("no driver registered as %q (available: %s)",
			name, strings.Join(r.ListDrivers(), ", "))
	}

	drv, err := factory(opts, r.logger.With(zap.String("driver", name)))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s driver: %w", name, err)
	}
	return drv, nil
}

// ListDrivers returns all registered backend names in sorted order
func (r *Registry) ListDrivers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.drivers))
	for name := range r.drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsSupported checks if a backend is registered
func (r *Registry) IsSupported(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.drivers[normalizeName(name)]
	return exists
}
