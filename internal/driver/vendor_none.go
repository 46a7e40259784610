//go:build !ps6000 || !cgo

// internal/driver/vendor_none.go
package driver

// registerVendorDrivers is a no-op without the ps6000 build tag
func registerVendorDrivers(registry *Registry) {}
