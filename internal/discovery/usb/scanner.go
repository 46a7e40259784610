// internal/discovery/usb/scanner.go
package usb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/gousb"
	"go.uber.org/zap"

	"digitizer-service/internal/discovery"
)

// Scanner enumerates Pico Technology units on the USB bus
type Scanner struct {
	logger  *zap.Logger
	timeout time.Duration
	debug   int
}

// NewScanner creates a new USB scanner. timeout bounds one scan; zero
// selects 10s.
func NewScanner(logger *zap.Logger, timeout time.Duration) *Scanner {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Scanner{
		logger:  logger.With(zap.String("scanner", "usb")),
		timeout: timeout,
	}
}

func (s *Scanner) GetScannerType() string {
	return "usb"
}

// IsAvailable reports whether libusb can be initialised
func (s *Scanner) IsAvailable() bool {
	available := true
	func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Warn("libusb unavailable", zap.Any("reason", r))
				available = false
			}
		}()
		usbCtx := gousb.NewContext()
		usbCtx.Close()
	}()
	return available
}

// Scan opens every Pico device long enough to read its strings
func (s *Scanner) Scan(ctx context.Context) ([]*discovery.DiscoveredDevice, error) {
	startTime := time.Now()
	scanCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	usbCtx := gousb.NewContext()
	defer func() {
		if err := usbCtx.Close(); err != nil {
			s.logger.Warn("Failed to close USB context", zap.Error(err))
		}
	}()
	usbCtx.Debug(s.debug)

	devices, err := usbCtx.OpenDevices(IsPicoDevice)
	defer s.closeAllDevices(devices)
	if err != nil && len(devices) == 0 {
		return nil, fmt.Errorf("failed to enumerate USB devices: %w", err)
	}
	if err != nil {
		// Some devices could not be opened (usually permissions); keep the rest
		s.logger.Warn("Some USB devices could not be opened", zap.Error(err))
	}

	var discovered []*discovery.DiscoveredDevice
	for _, device := range devices {
		if err := scanCtx.Err(); err != nil {
			return discovered, err
		}
		if d := s.processDevice(device); d != nil {
			discovered = append(discovered, d)
		}
	}

	s.logger.Info("USB scan completed",
		zap.Int("devices_found", len(discovered)),
		zap.Duration("scan_duration", time.Since(startTime)),
	)
	return discovered, nil
}

func (s *Scanner) processDevice(device *gousb.Device) *discovery.DiscoveredDevice {
	if device == nil || device.Desc == nil {
		return nil
	}

	product, err := device.Product()
	if err != nil {
		s.logger.Debug("Failed to read product string", zap.Error(err))
	}
	serial, err := device.SerialNumber()
	if err != nil {
		s.logger.Debug("Failed to read serial number", zap.Error(err))
	}

	return Describe(device.Desc, product, serial)
}

// Describe builds the discovery record for one Pico device
func Describe(desc *gousb.DeviceDesc, product, serial string) *discovery.DiscoveredDevice {
	if !IsPicoDevice(desc) {
		return nil
	}

	family := IdentifyFamily(product)
	modelName := strings.TrimSpace(product)
	if modelName == "" {
		modelName = fmt.Sprintf("Unknown-%04X", uint16(desc.Product))
	}
	serial = strings.TrimSpace(serial)
	if serial == "" {
		serial = fmt.Sprintf("USB-%04X%04X-%d", uint16(desc.Vendor), uint16(desc.Product), desc.Address)
	}

	return &discovery.DiscoveredDevice{
		Transport: "usb",
		ConnectionInfo: map[string]interface{}{
			"vendor_id":      fmt.Sprintf("0x%04X", uint16(desc.Vendor)),
			"product_id":     fmt.Sprintf("0x%04X", uint16(desc.Product)),
			"bus":            desc.Bus,
			"address":        desc.Address,
			"device_version": desc.Device.String(),
			"usb_version":    desc.Spec.String(),
			"speed":          desc.Speed.String(),
		},
		Vendor:       "Pico Technology",
		Model:        modelName,
		Family:       family.Family,
		Driver:       family.Driver,
		Supported:    family.Supported,
		Confidence:   family.Confidence,
		SerialNumber: serial,
		Location:     fmt.Sprintf("USB-Bus%d-Addr%d", desc.Bus, desc.Address),
	}
}

func (s *Scanner) closeAllDevices(devices []*gousb.Device) {
	for i, device := range devices {
		if device == nil {
			continue
		}
		if err := device.Close(); err != nil {
			s.logger.Warn("Failed to close USB device",
				zap.Int("device_index", i),
				zap.Error(err),
			)
		}
	}
}
