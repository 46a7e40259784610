// internal/acquisition/session.go
package acquisition

import (
	"time"

	"go.uber.org/zap"

	"digitizer-service/pkg/driver"
)

// DefaultPollInterval is the ready-poll period used by WaitForAcquisition
const DefaultPollInterval = time.Millisecond

// Session drives one digitizer through the block-mode capture sequence:
// Open, Set*, SetDigitizer, RunAcquisition, WaitForAcquisition, FetchData.
//
// A Session has no internal locking. Callers must serialize operations.
type Session struct {
	drv          driver.Driver
	logger       *zap.Logger
	pollInterval time.Duration
	serial       string

	handle   driver.Handle
	open     bool
	model    Model
	variant  string
	batch    string
	channels [driver.PhysicalChannels]ChannelSettings

	vertical       VerticalConfig
	horizontal     HorizontalConfig
	trigger        TriggerConfig
	sampleInterval float64
	segmentOffset  uint32

	buffer  []byte
	summary Summary
	running bool
	ready   bool
}

// Option configures a Session
type Option func(*Session)

// WithLogger sets the session logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPollInterval overrides DefaultPollInterval
func WithPollInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithSerial opens a specific unit instead of the first one found
func WithSerial(serial string) Option {
	return func(s *Session) {
		s.serial = serial
	}
}

// NewSession creates a closed session with default configuration
func NewSession(drv driver.Driver, opts ...Option) *Session {
	s := &Session{
		drv:          drv,
		logger:       zap.NewNop(),
		pollInterval: DefaultPollInterval,
		model:        DefaultModel,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.vertical = DefaultVertical().normalize(s.model)
	s.applyHorizontal(DefaultHorizontal())
	s.trigger = DefaultTrigger()
	s.channels = channelMap(s.vertical)
	return s
}

// Open acquires the unit and reads its identity
func (s *Session) Open() error {
	if s.open {
		return nil
	}

	handle, status := s.drv.OpenUnit(s.serial)
	if !status.OK() {
		s.logger.Warn("Open unit failed", zap.Stringer("status", status))
		return &Error{Op: "open", Call: "OpenUnit", Kind: ErrDeviceUnavailable, Status: status}
	}

	s.handle = handle
	s.open = true
	s.identify()

	s.logger.Info("Digitizer opened",
		zap.Int16("handle", int16(handle)),
		zap.String("model", string(s.model)),
		zap.String("serial", s.batch),
	)
	return nil
}

// identify reads variant and serial strings and derives the model
func (s *Session) identify() {
	variant, status := s.drv.GetUnitInfo(s.handle, driver.InfoVariant)
	if status.OK() {
		s.variant = variant
		s.model = DetectModel(variant)
	} else {
		s.logger.Warn("Variant info unavailable", zap.Stringer("status", status))
	}

	if batch, status := s.drv.GetUnitInfo(s.handle, driver.InfoBatchAndSerial); status.OK() {
		s.batch = batch
	}

	s.vertical = s.vertical.normalize(s.model)
	s.channels = channelMap(s.vertical)
}

// Close releases the unit. The session is closed even if the driver
// reports a failure.
func (s *Session) Close() error {
	if !s.open {
		return nil
	}

	status := s.drv.CloseUnit(s.handle)
	if !status.OK() {
		s.logger.Warn("Close unit reported failure", zap.Stringer("status", status))
	}

	s.open = false
	s.running = false
	s.ready = false
	s.buffer = nil
	s.handle = 0
	s.logger.Info("Digitizer closed")
	return nil
}

// IsOpen reports whether the unit handle is held
func (s *Session) IsOpen() bool {
	return s.open
}

func (s *Session) requireOpen(op string) error {
	if !s.open {
		return &Error{Op: op, Kind: ErrDeviceUnavailable, Status: driver.StatusInvalidHandle, Detail: "session is not open"}
	}
	return nil
}

// Model returns the detected model, DefaultModel before the first open
func (s *Session) Model() Model { return s.model }

// Variant returns the raw variant string reported by the unit
func (s *Session) Variant() string { return s.variant }

// SerialNumber returns the batch and serial string reported by the unit
func (s *Session) SerialNumber() string { return s.batch }

// Channels returns the current channel map
func (s *Session) Channels() [driver.PhysicalChannels]ChannelSettings { return s.channels }

// Running reports whether a run was started and not yet harvested
func (s *Session) Running() bool { return s.running }

// Ready reports whether the last run completed
func (s *Session) Ready() bool { return s.ready }

// Buffer returns the acquisition buffer without transferring ownership
func (s *Session) Buffer() []byte { return s.buffer }

// TakeBuffer transfers the acquisition buffer to the caller. The session
// holds no buffer afterwards.
func (s *Session) TakeBuffer() []byte {
	b := s.buffer
	s.buffer = nil
	return b
}

// SetBuffer hands a buffer to the session, dropping any previous one. A
// buffer shorter than BufferLength is replaced on the next harvest.
func (s *Session) SetBuffer(b []byte) {
	s.buffer = b
}

// Summary returns the metadata of the last harvest
func (s *Session) Summary() Summary { return s.summary }
