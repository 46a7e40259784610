// internal/acquisition/config.go
package acquisition

import (
	"fmt"

	"go.uber.org/zap"

	"digitizer-service/pkg/driver"
)

// Horizontal and trigger limits
const (
	rateTolerance = 1e-6

	MinRateGHz  = 0.05
	MaxRateGHz  = 5.0
	MaxSamples  = 256 * 1024
	MaxSegments = 2000

	MinTriggerDelay = -2e-8 * MaxSamples
	MaxTriggerDelay = 10.0
)

// VerticalConfig is the front-end setting of the signal channel
type VerticalConfig struct {
	Range     driver.Range            `json:"range"`
	Offset    float64                 `json:"offset"`
	Coupling  driver.Coupling         `json:"coupling"`
	Bandwidth driver.BandwidthLimiter `json:"bandwidth"`
}

// HorizontalConfig is the sampling setting shared by all segments
type HorizontalConfig struct {
	RateGHz  float64 `json:"rate_ghz"`
	Samples  uint32  `json:"samples"`
	Segments uint32  `json:"segments"`
}

// TriggerConfig holds the trigger delay in seconds
type TriggerConfig struct {
	Delay float64 `json:"delay"`
}

// DefaultVertical returns the power-on vertical setting
func DefaultVertical() VerticalConfig {
	return VerticalConfig{
		Range:     driver.Range200mV,
		Coupling:  driver.CouplingDC50R,
		Bandwidth: driver.BandwidthFull,
	}
}

// DefaultHorizontal returns the power-on horizontal setting
func DefaultHorizontal() HorizontalConfig {
	return HorizontalConfig{RateGHz: 2.0, Samples: 10000, Segments: 20}
}

// DefaultTrigger returns the power-on trigger setting
func DefaultTrigger() TriggerConfig {
	return TriggerConfig{}
}

// Validate checks that enum fields hold known values. SetVertical trusts
// its input; callers at an API boundary validate first.
func (v VerticalConfig) Validate() error {
	if !v.Range.Valid() {
		return fmt.Errorf("range %d out of bounds", int32(v.Range))
	}
	if v.Coupling < driver.CouplingAC || v.Coupling > driver.CouplingDC50R {
		return fmt.Errorf("coupling %d out of bounds", int32(v.Coupling))
	}
	if v.Bandwidth < driver.BandwidthFull || v.Bandwidth > driver.Bandwidth25MHz {
		return fmt.Errorf("bandwidth %d out of bounds", int32(v.Bandwidth))
	}
	return nil
}

// normalize applies the model overrides: coupling is always DC 50R and a
// limited bandwidth becomes the model's fixed limiter.
func (v VerticalConfig) normalize(m Model) VerticalConfig {
	if v.Bandwidth != driver.BandwidthFull {
		v.Bandwidth = m.BandwidthLimit()
	}
	v.Coupling = driver.CouplingDC50R
	return v
}

// SetVertical stores the vertical setting after model overrides and
// returns the effective value.
func (s *Session) SetVertical(v VerticalConfig) VerticalConfig {
	s.vertical = v.normalize(s.model)
	s.channels = channelMap(s.vertical)

	s.logger.Debug("Vertical configured",
		zap.Stringer("range", s.vertical.Range),
		zap.Float64("offset", s.vertical.Offset),
		zap.Stringer("bandwidth", s.vertical.Bandwidth),
	)
	return s.vertical
}

// SetHorizontal validates and stores the sampling setting. On error the
// previous setting is kept.
func (s *Session) SetHorizontal(rateGHz float64, samples, segments int) error {
	if rateGHz < MinRateGHz-rateTolerance || rateGHz > MaxRateGHz+rateTolerance {
		return invalidParameter("set horizontal", "rate %g GHz outside [%g, %g]", rateGHz, MinRateGHz, MaxRateGHz)
	}
	if samples < 1 || samples > MaxSamples {
		return invalidParameter("set horizontal", "samples %d outside [1, %d]", samples, MaxSamples)
	}
	if segments < 1 || segments > MaxSegments {
		return invalidParameter("set horizontal", "segments %d outside [1, %d]", segments, MaxSegments)
	}

	s.applyHorizontal(HorizontalConfig{RateGHz: rateGHz, Samples: uint32(samples), Segments: uint32(segments)})

	s.logger.Debug("Horizontal configured",
		zap.Float64("rate_ghz", rateGHz),
		zap.Int("samples", samples),
		zap.Int("segments", segments),
	)
	return nil
}

func (s *Session) applyHorizontal(h HorizontalConfig) {
	s.horizontal = h
	s.sampleInterval = 1.0 / (h.RateGHz * 1e9)
	s.segmentOffset = h.Samples
}

// SetTrigger validates and stores the trigger delay. On error the previous
// delay is kept. A negative delay within range is stored, but the driver
// only takes a post-trigger count, so the next non-repeat SetDigitizer
// refuses it with ErrInvalidParameter before issuing any driver call.
func (s *Session) SetTrigger(delay float64) error {
	if delay < MinTriggerDelay || delay > MaxTriggerDelay {
		return invalidParameter("set trigger", "delay %g s outside [%g, %g]", delay, MinTriggerDelay, MaxTriggerDelay)
	}
	s.trigger = TriggerConfig{Delay: delay}
	s.logger.Debug("Trigger configured", zap.Float64("delay", delay))
	return nil
}

// Vertical returns the effective vertical setting
func (s *Session) Vertical() VerticalConfig { return s.vertical }

// Horizontal returns the effective horizontal setting
func (s *Session) Horizontal() HorizontalConfig { return s.horizontal }

// Trigger returns the effective trigger setting
func (s *Session) Trigger() TriggerConfig { return s.trigger }

// SampleInterval is the time between samples in seconds
func (s *Session) SampleInterval() float64 { return s.sampleInterval }

// SegmentOffset is the byte distance between consecutive segments
func (s *Session) SegmentOffset() uint32 { return s.segmentOffset }

// SegmentCount is the configured number of segments
func (s *Session) SegmentCount() uint32 { return s.horizontal.Segments }

// NextSegmentPad is the gap after each segment; segments are packed
func (s *Session) NextSegmentPad() uint32 { return 0 }

// BufferLength is the size of the buffer SetDigitizer allocates. One
// trailing segment of padding is included.
func (s *Session) BufferLength() int {
	return int(s.horizontal.Samples) * (int(s.horizontal.Segments) + 1)
}
