// internal/acquisition/model.go
package acquisition

import (
	"strings"

	"digitizer-service/pkg/driver"
)

// Model is the variant string a unit reports, e.g. "6402C"
type Model string

const (
	Model6402C Model = "6402C"
	Model6404C Model = "6404C"
	Model6404D Model = "6404D"
)

// DefaultModel is assumed until a unit has been opened
const DefaultModel = Model6402C

// DetectModel maps a variant string to a supported model. Unknown variants
// use the 6404C channel layout.
func DetectModel(variant string) Model {
	switch Model(strings.ToUpper(strings.TrimSpace(variant))) {
	case Model6402C:
		return Model6402C
	case Model6404D:
		return Model6404D
	default:
		return Model6404C
	}
}

// BandwidthLimit is the fixed limiter a model supports below full bandwidth
func (m Model) BandwidthLimit() driver.BandwidthLimiter {
	if m == Model6402C {
		return driver.Bandwidth20MHz
	}
	return driver.Bandwidth25MHz
}

// ChannelSettings is the front-end state applied to one analogue input
type ChannelSettings struct {
	Enabled  bool            `json:"enabled"`
	Coupling driver.Coupling `json:"coupling"`
	Range    driver.Range    `json:"range"`
	Offset   float32         `json:"offset"`
}

const (
	signalChannel  = driver.ChannelA
	triggerChannel = driver.ChannelD
	triggerRange   = driver.Range5V
)

// channelMap derives per-channel settings from the vertical configuration.
// Every supported model uses the same layout: A carries the signal, D the
// trigger, B and C are off. The vertical offset applies to A and B.
func channelMap(v VerticalConfig) [driver.PhysicalChannels]ChannelSettings {
	offset := float32(v.Offset)

	var m [driver.PhysicalChannels]ChannelSettings
	m[driver.ChannelA] = ChannelSettings{Enabled: true, Coupling: v.Coupling, Range: v.Range, Offset: offset}
	m[driver.ChannelB] = ChannelSettings{Offset: offset}
	m[driver.ChannelC] = ChannelSettings{}
	m[driver.ChannelD] = ChannelSettings{Enabled: true, Coupling: driver.CouplingDC50R, Range: triggerRange}
	return m
}
