// internal/acquisition/controller.go
package acquisition

import (
	"context"
	"time"

	"go.uber.org/zap"

	"digitizer-service/pkg/driver"
)

// SetDigitizer prepares the unit for a capture sequence. Unless repeat is
// set it programs the trigger, channels and memory segmentation; in every
// case it allocates a fresh zeroed buffer of BufferLength bytes. A repeat
// issues no driver calls.
func (s *Session) SetDigitizer(repeat bool) error {
	const op = "set digitizer"

	s.buffer = nil
	s.summary = Summary{}
	s.running = false
	s.ready = false

	if err := s.requireOpen(op); err != nil {
		return err
	}

	if !repeat {
		if err := s.program(op); err != nil {
			return err
		}
	}

	s.buffer = make([]byte, s.BufferLength())

	s.logger.Debug("Digitizer armed",
		zap.Bool("repeat", repeat),
		zap.Int("buffer_length", len(s.buffer)),
	)
	return nil
}

// program issues the full setup sequence, failing fast
func (s *Session) program(op string) error {
	s.channels = channelMap(s.vertical)

	plan, err := BuildTrigger(s.channels[triggerChannel].Range, s.horizontal, s.trigger)
	if err != nil {
		return err
	}
	if err := plan.Submit(s.drv, s.handle); err != nil {
		return err
	}

	if _, st := s.drv.SetEts(s.handle, driver.EtsOff, 0, 0); !st.OK() {
		return callFailed(op, "SetEts", st)
	}

	for i, ch := range s.channels {
		st := s.drv.SetChannel(s.handle, driver.Channel(i), ch.Enabled, ch.Coupling, ch.Range, ch.Offset, s.vertical.Bandwidth)
		if !st.OK() {
			return callFailed(op, "SetChannel", st)
		}
	}

	maxSamples, st := s.drv.MemorySegments(s.handle, s.horizontal.Segments)
	if !st.OK() {
		return callFailed(op, "MemorySegments", st)
	}
	s.logger.Debug("Memory segmented",
		zap.Uint32("segments", s.horizontal.Segments),
		zap.Uint32("max_samples", maxSamples),
	)

	if st := s.drv.SetNoOfCaptures(s.handle, s.horizontal.Segments); !st.OK() {
		return callFailed(op, "SetNoOfCaptures", st)
	}
	return nil
}

// RunAcquisition starts a block capture and returns without waiting
func (s *Session) RunAcquisition() error {
	const op = "run acquisition"

	if err := s.requireOpen(op); err != nil {
		return err
	}

	s.ready = false
	timebase := ResolveTimebase(s.horizontal.RateGHz)

	_, st := s.drv.RunBlock(s.handle, 0, s.horizontal.Samples, timebase, 1, 0)
	if !st.OK() {
		return callFailed(op, "RunBlock", st)
	}

	s.running = true
	s.logger.Debug("Block run started",
		zap.Uint32("timebase", timebase),
		zap.Uint32("samples", s.horizontal.Samples),
	)
	return nil
}

// WaitForAcquisition polls the unit until the run completes or the driver
// reports an error. The duration depends on the trigger source; ctx bounds
// it. On context expiry the run is left in progress.
func (s *Session) WaitForAcquisition(ctx context.Context) error {
	const op = "wait for acquisition"

	if err := s.requireOpen(op); err != nil {
		return err
	}

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		ready, st := s.drv.IsReady(s.handle)
		if !st.OK() {
			return callFailed(op, "IsReady", st)
		}
		if ready {
			s.ready = true
			return nil
		}
	}
}
