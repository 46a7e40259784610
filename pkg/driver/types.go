// pkg/driver/types.go
package driver

import (
	"fmt"
	"strings"
)

// MaxADCValue is the largest signed sample magnitude a 6000-series unit reports
const MaxADCValue = 32512

// Channel identifies an input or trigger source
type Channel int32

const (
	ChannelA Channel = iota
	ChannelB
	ChannelC
	ChannelD
	ChannelExternal
	ChannelTriggerAux
)

// PhysicalChannels is the number of analogue inputs on a 4-channel unit
const PhysicalChannels = 4

func (c Channel) String() string {
	switch c {
	case ChannelA:
		return "A"
	case ChannelB:
		return "B"
	case ChannelC:
		return "C"
	case ChannelD:
		return "D"
	case ChannelExternal:
		return "EXT"
	case ChannelTriggerAux:
		return "AUX"
	default:
		return fmt.Sprintf("Channel(%d)", int32(c))
	}
}

// Coupling is the input coupling of an analogue channel
type Coupling int32

const (
	CouplingAC Coupling = iota
	CouplingDC1M
	CouplingDC50R
)

func (c Coupling) String() string {
	switch c {
	case CouplingAC:
		return "AC"
	case CouplingDC1M:
		return "DC_1M"
	case CouplingDC50R:
		return "DC_50R"
	default:
		return fmt.Sprintf("Coupling(%d)", int32(c))
	}
}

// Range is one of the fixed full-scale voltage bands
type Range int32

const (
	Range10mV Range = iota
	Range20mV
	Range50mV
	Range100mV
	Range200mV
	Range500mV
	Range1V
	Range2V
	Range5V
	Range10V
	Range20V
	Range50V
)

var rangeMillivolts = [...]int32{10, 20, 50, 100, 200, 500, 1000, 2000, 5000, 10000, 20000, 50000}

var rangeNames = [...]string{"10mV", "20mV", "50mV", "100mV", "200mV", "500mV", "1V", "2V", "5V", "10V", "20V", "50V"}

// Valid reports whether r is a known band
func (r Range) Valid() bool {
	return r >= Range10mV && r <= Range50V
}

// Millivolts returns the full-scale magnitude of the band
func (r Range) Millivolts() int32 {
	if !r.Valid() {
		return 0
	}
	return rangeMillivolts[r]
}

func (r Range) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Range(%d)", int32(r))
	}
	return rangeNames[r]
}

// ParseRange accepts band names such as "200mV" or "5V" (case-insensitive)
func ParseRange(s string) (Range, error) {
	for i, name := range rangeNames {
		if strings.EqualFold(name, s) {
			return Range(i), nil
		}
	}
	return 0, fmt.Errorf("unknown voltage range %q", s)
}

// BandwidthLimiter selects the analogue front-end filter
type BandwidthLimiter int32

const (
	BandwidthFull BandwidthLimiter = iota
	Bandwidth20MHz
	Bandwidth25MHz
)

func (b BandwidthLimiter) String() string {
	switch b {
	case BandwidthFull:
		return "FULL"
	case Bandwidth20MHz:
		return "20MHZ"
	case Bandwidth25MHz:
		return "25MHZ"
	default:
		return fmt.Sprintf("Bandwidth(%d)", int32(b))
	}
}

// ParseBandwidth accepts "full", "20MHz" or "25MHz" (case-insensitive)
func ParseBandwidth(s string) (BandwidthLimiter, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "FULL":
		return BandwidthFull, nil
	case "20MHZ":
		return Bandwidth20MHz, nil
	case "25MHZ":
		return Bandwidth25MHz, nil
	}
	return BandwidthFull, fmt.Errorf("unknown bandwidth limiter %q", s)
}

// ParseCoupling accepts "AC", "DC_1M" or "DC_50R" (case-insensitive)
func ParseCoupling(s string) (Coupling, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "AC":
		return CouplingAC, nil
	case "DC_1M", "DC1M":
		return CouplingDC1M, nil
	case "", "DC_50R", "DC50R", "DC":
		return CouplingDC50R, nil
	}
	return CouplingDC50R, fmt.Errorf("unknown coupling %q", s)
}

// EtsMode selects equivalent-time sampling
type EtsMode int32

const (
	EtsOff EtsMode = iota
	EtsFast
	EtsSlow
)

// ThresholdDirection is the edge or window sense of a trigger channel
type ThresholdDirection int32

const (
	DirectionAbove ThresholdDirection = iota
	DirectionBelow
	DirectionRising
	DirectionFalling
	DirectionRisingOrFalling
)

// DirectionNone shares the driver's encoding with DirectionRising
const DirectionNone = DirectionRising

// ThresholdMode selects level or window triggering
type ThresholdMode int32

const (
	ThresholdLevel ThresholdMode = iota
	ThresholdWindow
)

// TriggerState is a per-source term of a trigger condition
type TriggerState int32

const (
	StateDontCare TriggerState = iota
	StateTrue
	StateFalse
)

// RatioMode selects driver-side downsampling
type RatioMode int32

const (
	RatioNone      RatioMode = 0
	RatioAggregate RatioMode = 1
	RatioAverage   RatioMode = 2
	RatioDecimate  RatioMode = 4
)

// PulseWidthType selects the qualifier comparison
type PulseWidthType int32

const (
	PulseWidthNone PulseWidthType = iota
	PulseWidthLessThan
	PulseWidthGreaterThan
	PulseWidthInRange
	PulseWidthOutOfRange
)

// InfoKind selects the string returned by GetUnitInfo
type InfoKind int32

const (
	InfoDriverVersion InfoKind = iota
	InfoUSBVersion
	InfoHardwareVersion
	InfoVariant
	InfoBatchAndSerial
	InfoCalibrationDate
	InfoKernelVersion
)

// TriggerChannelProperties describes thresholds for one trigger source
type TriggerChannelProperties struct {
	ThresholdUpper  int16
	HysteresisUpper uint16
	ThresholdLower  int16
	HysteresisLower uint16
	Channel         Channel
	ThresholdMode   ThresholdMode
}

// TriggerConditions is one AND-term of the trigger logic
type TriggerConditions struct {
	ChannelA            TriggerState
	ChannelB            TriggerState
	ChannelC            TriggerState
	ChannelD            TriggerState
	External            TriggerState
	Aux                 TriggerState
	PulseWidthQualifier TriggerState
}

// TriggerDirections holds the edge sense per source
type TriggerDirections struct {
	ChannelA ThresholdDirection
	ChannelB ThresholdDirection
	ChannelC ThresholdDirection
	ChannelD ThresholdDirection
	External ThresholdDirection
	Aux      ThresholdDirection
}

// PulseWidthConditions is one AND-term of the qualifier logic
type PulseWidthConditions struct {
	ChannelA TriggerState
	ChannelB TriggerState
	ChannelC TriggerState
	ChannelD TriggerState
	External TriggerState
	Aux      TriggerState
}

// PulseWidthQualifier is the full qualifier argument set
type PulseWidthQualifier struct {
	Conditions []PulseWidthConditions
	Direction  ThresholdDirection
	Lower      uint32
	Upper      uint32
	Type       PulseWidthType
}
