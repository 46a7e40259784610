//go:build ps6000 && cgo

// internal/driver/vendor_ps6000.go
package driver

import (
	"go.uber.org/zap"

	"digitizer-service/internal/driver/ps6000"
	"digitizer-service/pkg/driver"
)

func registerVendorDrivers(registry *Registry) {
	registry.Register(NamePS6000, func(opts driver.Options, logger *zap.Logger) (driver.Driver, error) {
		return ps6000.New(logger), nil
	})
}
