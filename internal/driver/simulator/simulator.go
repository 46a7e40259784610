// internal/driver/simulator/simulator.go
package simulator

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"digitizer-service/pkg/driver"
)

const (
	simHandle driver.Handle = 1

	// memorySamples is the per-channel capture memory of the simulated unit
	memorySamples = 1 << 28
	maxSegments   = 1 << 20
)

// Config controls the synthetic unit
type Config struct {
	Variant        string
	Serial         string
	CaptureLatency time.Duration
	// Amplitude is the pulse height on channel A in millivolts
	Amplitude float64
	// Noise is the standard deviation of additive noise in ADC codes
	Noise float64
	Seed  int64
}

// DefaultConfig returns a 6404D that completes captures after 5ms
func DefaultConfig() Config {
	return Config{
		Variant:        "6404D",
		Serial:         "SIM00/0001",
		CaptureLatency: 5 * time.Millisecond,
		Amplitude:      150,
		Noise:          40,
		Seed:           1,
	}
}

// ConfigFromOptions overlays registry options on DefaultConfig
func ConfigFromOptions(opts driver.Options) Config {
	cfg := DefaultConfig()
	cfg.Variant = opts.String("variant", cfg.Variant)
	cfg.Serial = opts.String("serial", cfg.Serial)
	cfg.CaptureLatency = opts.Duration("capture_latency", cfg.CaptureLatency)
	cfg.Amplitude = opts.Float("amplitude", cfg.Amplitude)
	cfg.Noise = opts.Float("noise", cfg.Noise)
	cfg.Seed = int64(opts.Int("seed", int(cfg.Seed)))
	return cfg
}

type channelState struct {
	enabled  bool
	coupling driver.Coupling
	rng      driver.Range
	offset   float32
}

// Simulator is an in-process ps6000 stand-in. It keeps the driver's state
// rules so the acquisition sequence can be exercised without hardware.
type Simulator struct {
	cfg    Config
	logger *zap.Logger
	mu     sync.Mutex
	random *rand.Rand

	open     bool
	channels [driver.PhysicalChannels]channelState
	segments uint32
	captures uint32

	triggerDelay uint32
	triggerLevel int16

	running     bool
	started     time.Time
	postTrigger uint32
	timebase    uint32
	buffers     map[uint32][]int16
}

// New creates a closed simulated unit
func New(cfg Config, logger *zap.Logger) *Simulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{
		cfg:      cfg,
		logger:   logger,
		random:   rand.New(rand.NewSource(cfg.Seed)),
		segments: 1,
		captures: 1,
		buffers:  make(map[uint32][]int16),
	}
}

func (s *Simulator) check(handle driver.Handle) driver.Status {
	if !s.open || handle != simHandle {
		return driver.StatusInvalidHandle
	}
	return driver.StatusOK
}

// OpenUnit implements driver.Driver
func (s *Simulator) OpenUnit(serial string) (driver.Handle, driver.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open {
		return 0, driver.StatusMaxUnitsOpened
	}
	if serial != "" && serial != s.cfg.Serial {
		return 0, driver.StatusNotFound
	}

	s.open = true
	s.logger.Info("Simulated unit opened",
		zap.String("variant", s.cfg.Variant),
		zap.String("serial", s.cfg.Serial),
	)
	return simHandle, driver.StatusOK
}

// CloseUnit implements driver.Driver
func (s *Simulator) CloseUnit(handle driver.Handle) driver.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st := s.check(handle); !st.OK() {
		return st
	}
	s.open = false
	s.running = false
	s.buffers = make(map[uint32][]int16)
	return driver.StatusOK
}

// GetUnitInfo implements driver.Driver
func (s *Simulator) GetUnitInfo(handle driver.Handle, info driver.InfoKind) (string, driver.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st := s.check(handle); !st.OK() {
		return "", st
	}
	switch info {
	case driver.InfoDriverVersion:
		return "simulator", driver.StatusOK
	case driver.InfoHardwareVersion:
		return "1", driver.StatusOK
	case driver.InfoVariant:
		return s.cfg.Variant, driver.StatusOK
	case driver.InfoBatchAndSerial:
		return s.cfg.Serial, driver.StatusOK
	}
	return "", driver.StatusInfoUnavailable
}

// SetEts implements driver.Driver. Only EtsOff is supported.
func (s *Simulator) SetEts(handle driver.Handle, mode driver.EtsMode, cycles, interleave int16) (int64, driver.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st := s.check(handle); !st.OK() {
		return 0, st
	}
	if mode != driver.EtsOff {
		return 0, driver.StatusEtsNotSupported
	}
	return 0, driver.StatusOK
}

// SetChannel implements driver.Driver
func (s *Simulator) SetChannel(handle driver.Handle, channel driver.Channel, enabled bool, coupling driver.Coupling, rng driver.Range, offset float32, bandwidth driver.BandwidthLimiter) driver.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st := s.check(handle); !st.OK() {
		return st
	}
	if channel < driver.ChannelA || channel > driver.ChannelD {
		return driver.StatusInvalidChannel
	}
	if !rng.Valid() {
		return driver.StatusInvalidVoltageRange
	}
	s.channels[channel] = channelState{enabled: enabled, coupling: coupling, rng: rng, offset: offset}
	return driver.StatusOK
}

// MemorySegments implements driver.Driver
func (s *Simulator) MemorySegments(handle driver.Handle, segments uint32) (uint32, driver.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st := s.check(handle); !st.OK() {
		return 0, st
	}
	if segments == 0 || segments > maxSegments {
		return 0, driver.StatusTooManySegments
	}
	s.segments = segments
	if s.captures > segments {
		s.captures = segments
	}
	return memorySamples / segments, driver.StatusOK
}

// SetNoOfCaptures implements driver.Driver
func (s *Simulator) SetNoOfCaptures(handle driver.Handle, captures uint32) driver.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st := s.check(handle); !st.OK() {
		return st
	}
	if captures == 0 || captures > s.segments {
		return driver.StatusTooManySegments
	}
	s.captures = captures
	return driver.StatusOK
}

// SetTriggerChannelProperties implements driver.Driver
func (s *Simulator) SetTriggerChannelProperties(handle driver.Handle, properties []driver.TriggerChannelProperties, auxOutputEnable int16, autoTriggerMs int32) driver.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st := s.check(handle); !st.OK() {
		return st
	}
	for _, p := range properties {
		if p.Channel < driver.ChannelA || p.Channel > driver.ChannelTriggerAux {
			return driver.StatusInvalidTriggerChannel
		}
		s.triggerLevel = p.ThresholdUpper
	}
	return driver.StatusOK
}

// SetTriggerChannelConditions implements driver.Driver
func (s *Simulator) SetTriggerChannelConditions(handle driver.Handle, conditions []driver.TriggerConditions) driver.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.check(handle)
}

// SetTriggerChannelDirections implements driver.Driver
func (s *Simulator) SetTriggerChannelDirections(handle driver.Handle, directions driver.TriggerDirections) driver.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.check(handle)
}

// SetTriggerDelay implements driver.Driver
func (s *Simulator) SetTriggerDelay(handle driver.Handle, delay uint32) driver.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st := s.check(handle); !st.OK() {
		return st
	}
	s.triggerDelay = delay
	return driver.StatusOK
}

// SetPulseWidthQualifier implements driver.Driver
func (s *Simulator) SetPulseWidthQualifier(handle driver.Handle, qualifier driver.PulseWidthQualifier) driver.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st := s.check(handle); !st.OK() {
		return st
	}
	if qualifier.Type != driver.PulseWidthNone {
		return driver.StatusPulseWidthQualifier
	}
	return driver.StatusOK
}

// RunBlock implements driver.Driver
func (s *Simulator) RunBlock(handle driver.Handle, preTrigger, postTrigger, timebase uint32, oversample int16, segmentIndex uint32) (int32, driver.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st := s.check(handle); !st.OK() {
		return 0, st
	}
	if preTrigger+postTrigger == 0 || preTrigger+postTrigger > memorySamples/s.segments {
		return 0, driver.StatusTooManySamples
	}
	if segmentIndex >= s.segments {
		return 0, driver.StatusSegmentOutOfRange
	}

	s.running = true
	s.started = time.Now()
	s.postTrigger = preTrigger + postTrigger
	s.timebase = timebase

	s.logger.Debug("Simulated block started",
		zap.Uint32("samples", s.postTrigger),
		zap.Uint32("timebase", timebase),
		zap.Uint32("captures", s.captures),
	)
	return int32(s.cfg.CaptureLatency / time.Millisecond), driver.StatusOK
}

func (s *Simulator) completed() bool {
	return s.running && time.Since(s.started) >= s.cfg.CaptureLatency
}

// IsReady implements driver.Driver
func (s *Simulator) IsReady(handle driver.Handle) (bool, driver.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st := s.check(handle); !st.OK() {
		return false, st
	}
	return s.completed(), driver.StatusOK
}

// Stop implements driver.Driver
func (s *Simulator) Stop(handle driver.Handle) driver.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st := s.check(handle); !st.OK() {
		return st
	}
	s.running = false
	return driver.StatusOK
}

// GetNoOfCaptures implements driver.Driver. Captures count up linearly
// over the configured latency.
func (s *Simulator) GetNoOfCaptures(handle driver.Handle) (uint32, driver.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st := s.check(handle); !st.OK() {
		return 0, st
	}
	if !s.running {
		return 0, driver.StatusOK
	}
	if s.completed() || s.cfg.CaptureLatency <= 0 {
		return s.captures, driver.StatusOK
	}
	frac := float64(time.Since(s.started)) / float64(s.cfg.CaptureLatency)
	return uint32(frac * float64(s.captures)), driver.StatusOK
}

// SetDataBufferBulk implements driver.Driver
func (s *Simulator) SetDataBufferBulk(handle driver.Handle, channel driver.Channel, buffer []int16, segmentIndex uint32, mode driver.RatioMode) driver.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st := s.check(handle); !st.OK() {
		return st
	}
	if channel != driver.ChannelA {
		return driver.StatusInvalidChannel
	}
	if segmentIndex >= s.segments {
		return driver.StatusSegmentOutOfRange
	}
	s.buffers[segmentIndex] = buffer
	return driver.StatusOK
}

// GetValuesBulk implements driver.Driver. Each segment holds one Gaussian
// pulse on channel A plus noise; clipped segments raise their overflow bit.
func (s *Simulator) GetValuesBulk(handle driver.Handle, samples, fromSegment, toSegment, downsampleRatio uint32, mode driver.RatioMode) (uint32, []int16, driver.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st := s.check(handle); !st.OK() {
		return 0, nil, st
	}
	if !s.completed() {
		return 0, nil, driver.StatusDataNotAvailable
	}
	if fromSegment > toSegment || toSegment >= s.captures {
		return 0, nil, driver.StatusSegmentOutOfRange
	}
	if mode != driver.RatioNone || downsampleRatio != 1 {
		return 0, nil, driver.StatusInvalidParameter
	}
	if samples > s.postTrigger {
		samples = s.postTrigger
	}

	overflow := make([]int16, toSegment-fromSegment+1)
	for seg := fromSegment; seg <= toSegment; seg++ {
		buf, ok := s.buffers[seg]
		if !ok {
			return 0, nil, driver.StatusNullParameter
		}
		if s.synthesize(buf, int(samples), seg) {
			overflow[seg-fromSegment] = 1 << uint(driver.ChannelA)
		}
	}
	return samples, overflow, driver.StatusOK
}

// synthesize fills buf and reports whether any sample clipped
func (s *Simulator) synthesize(buf []int16, samples int, segment uint32) bool {
	if samples > len(buf) {
		samples = len(buf)
	}
	ch := s.channels[driver.ChannelA]
	full := float64(ch.rng.Millivolts())
	if !ch.enabled || full == 0 {
		for i := 0; i < samples; i++ {
			buf[i] = 0
		}
		return false
	}

	scale := driver.MaxADCValue / full
	base := float64(ch.offset) * 1000 * scale
	height := s.cfg.Amplitude * scale
	center := float64(samples)/4 + float64(segment%16)
	width := float64(samples)/64 + 1

	clipped := false
	for i := 0; i < samples; i++ {
		d := (float64(i) - center) / width
		v := base + height*math.Exp(-d*d/2) + s.random.NormFloat64()*s.cfg.Noise
		switch {
		case v > driver.MaxADCValue:
			v = driver.MaxADCValue
			clipped = true
		case v < -driver.MaxADCValue:
			v = -driver.MaxADCValue
			clipped = true
		}
		buf[i] = int16(v)
	}
	return clipped
}

var _ driver.Driver = (*Simulator)(nil)
