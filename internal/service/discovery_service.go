// internal/service/discovery_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"digitizer-service/internal/config"
	"digitizer-service/internal/discovery"
	"digitizer-service/internal/discovery/usb"
	"digitizer-service/internal/driver"
	"digitizer-service/internal/utils"
)

// ScanRequest selects the transport and time budget of a scan
type ScanRequest struct {
	ScanType string
	Timeout  string
}

// DriverInfo describes a registered driver backend
type DriverInfo struct {
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// DiscoveryService finds digitizers and reports the available drivers
type DiscoveryService struct {
	driverRegistry *driver.Registry
	scannerManager *discovery.ScannerManager
	config         *config.Config
	logger         *utils.ServiceLogger
}

// NewDiscoveryService creates a new discovery service
func NewDiscoveryService(driverRegistry *driver.Registry, config *config.Config, logger *zap.Logger) *DiscoveryService {
	ds := &DiscoveryService{
		driverRegistry: driverRegistry,
		scannerManager: discovery.NewScannerManager(logger),
		config:         config,
		logger:         utils.NewServiceLogger(logger, "discovery-service"),
	}
	ds.initializeScanners()
	return ds
}

// initializeScanners registers the simulator and, when libusb works, USB
func (ds *DiscoveryService) initializeScanners() {
	if ds.driverRegistry.IsSupported(driver.NameSimulator) {
		ds.scannerManager.RegisterScanner(discovery.NewSimulatedScanner(
			driver.NameSimulator,
			ds.config.Simulator.Variant,
			ds.config.Simulator.Serial,
		))
	}

	if usbScanner := usb.NewScanner(ds.logger.Logger, ds.config.Discovery.USBTimeout); usbScanner.IsAvailable() {
		ds.scannerManager.RegisterScanner(usbScanner)
	}

	ds.logger.Info("Discovery scanners initialized",
		zap.Strings("available_scanners", ds.scannerManager.GetAvailableScanners()),
	)
}

// ScanDevices scans one transport, or all of them for "all" or ""
func (ds *DiscoveryService) ScanDevices(ctx context.Context, req *ScanRequest) ([]*discovery.DiscoveredDevice, error) {
	timeout := 30 * time.Second
	if req.Timeout != "" {
		d, err := time.ParseDuration(req.Timeout)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid timeout %q", req.Timeout)
		}
		timeout = d
	}

	scanCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ds.logger.Info("Starting device scan",
		zap.String("scan_type", req.ScanType),
		zap.Duration("timeout", timeout),
	)

	if req.ScanType == "" || req.ScanType == "all" {
		return ds.scannerManager.ScanAll(scanCtx)
	}
	return ds.scannerManager.ScanByType(scanCtx, req.ScanType)
}

// Drivers lists the registered driver backends; active marks the one the
// acquisition service uses
func (ds *DiscoveryService) Drivers() []DriverInfo {
	names := ds.driverRegistry.ListDrivers()
	drivers := make([]DriverInfo, 0, len(names))
	for _, name := range names {
		drivers = append(drivers, DriverInfo{Name: name, Active: name == ds.config.Digitizer.Driver})
	}
	return drivers
}

// Scanners lists the available scanner types
func (ds *DiscoveryService) Scanners() []string {
	return ds.scannerManager.GetAvailableScanners()
}
