// internal/discovery/simulated.go
package discovery

import (
	"context"
)

// SimulatedScanner reports the in-process simulator as a discoverable unit
type SimulatedScanner struct {
	driverName string
	variant    string
	serial     string
}

// NewSimulatedScanner creates a scanner for the simulator registered as
// driverName
func NewSimulatedScanner(driverName, variant, serial string) *SimulatedScanner {
	return &SimulatedScanner{driverName: driverName, variant: variant, serial: serial}
}

func (s *SimulatedScanner) GetScannerType() string { return "simulator" }

func (s *SimulatedScanner) IsAvailable() bool { return true }

func (s *SimulatedScanner) Scan(ctx context.Context) ([]*DiscoveredDevice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []*DiscoveredDevice{{
		Transport:      "simulator",
		ConnectionInfo: map[string]interface{}{"driver": s.driverName},
		Vendor:         "Pico Technology",
		Model:          s.variant,
		Family:         "ps6000",
		Driver:         s.driverName,
		Supported:      true,
		Confidence:     0.5,
		SerialNumber:   s.serial,
		Location:       "in-process",
	}}, nil
}
