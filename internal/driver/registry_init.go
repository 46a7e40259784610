// internal/driver/registry_init.go
package driver

import (
	"go.uber.org/zap"

	"digitizer-service/internal/driver/simulator"
	"digitizer-service/pkg/driver"
)

// Backend names accepted by digitizer.driver
const (
	NameSimulator = "simulator"
	NamePS6000    = "ps6000"
)

// RegisterDefaultDrivers registers all backends compiled into this binary
func RegisterDefaultDrivers(registry *Registry, logger *zap.Logger) {
	registry.Register(NameSimulator, func(opts driver.Options, logger *zap.Logger) (driver.Driver, error) {
		return simulator.New(simulator.ConfigFromOptions(opts), logger), nil
	})

	// Vendor backends need the PicoScope SDK and are behind a build tag
	registerVendorDrivers(registry)

	logger.Info("Digitizer drivers registered",
		zap.Strings("drivers", registry.ListDrivers()),
	)
}
