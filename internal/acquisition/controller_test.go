package acquisition

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"digitizer-service/pkg/driver"
)

func openSession(t *testing.T, drv *mockDriver) *Session {
	t.Helper()
	s := NewSession(drv, WithPollInterval(time.Microsecond))
	if err := s.Open(); err != nil {
		t.Fatalf("open: %v", err)
	}
	drv.order = nil
	for k := range drv.calls {
		delete(drv.calls, k)
	}
	return s
}

func TestSetDigitizerProgramsUnit(t *testing.T) {
	drv := newMockDriver()
	s := openSession(t, drv)
	s.SetVertical(VerticalConfig{Range: driver.Range2V, Offset: -0.1})

	if err := s.SetDigitizer(false); err != nil {
		t.Fatalf("set digitizer: %v", err)
	}

	want := []string{
		"SetTriggerChannelProperties",
		"SetTriggerChannelConditions",
		"SetTriggerChannelDirections",
		"SetTriggerDelay",
		"SetPulseWidthQualifier",
		"SetEts",
		"SetChannel", "SetChannel", "SetChannel", "SetChannel",
		"MemorySegments",
		"SetNoOfCaptures",
	}
	if !reflect.DeepEqual(drv.order, want) {
		t.Fatalf("unexpected call sequence %v", drv.order)
	}

	a := drv.channels[driver.ChannelA]
	if !a.enabled || a.rng != driver.Range2V || a.offset != -0.1 || a.coupling != driver.CouplingDC50R {
		t.Fatalf("unexpected channel A programming %+v", a)
	}
	if d := drv.channels[driver.ChannelD]; !d.enabled || d.rng != driver.Range5V {
		t.Fatalf("unexpected channel D programming %+v", d)
	}
	if len(s.Buffer()) != 10000*21 {
		t.Fatalf("expected buffer of %d bytes, got %d", 10000*21, len(s.Buffer()))
	}
}

func TestSetDigitizerRepeatSkipsDriver(t *testing.T) {
	drv := newMockDriver()
	s := openSession(t, drv)

	if err := s.SetDigitizer(false); err != nil {
		t.Fatalf("set digitizer: %v", err)
	}
	first := drv.total()

	for i := 0; i < 3; i++ {
		if err := s.SetDigitizer(true); err != nil {
			t.Fatalf("repeat %d: %v", i, err)
		}
	}
	if drv.total() != first {
		t.Fatalf("repeat mode issued driver calls: %v", drv.order[first:])
	}
	if len(s.Buffer()) != s.BufferLength() {
		t.Fatalf("repeat must still allocate the buffer")
	}
}

func TestSetDigitizerRequiresOpen(t *testing.T) {
	drv := newMockDriver()
	s := NewSession(drv)

	for _, repeat := range []bool{false, true} {
		err := s.SetDigitizer(repeat)
		if !errors.Is(err, ErrDeviceUnavailable) {
			t.Fatalf("repeat=%v: expected ErrDeviceUnavailable, got %v", repeat, err)
		}
	}
	if drv.total() != 0 {
		t.Fatalf("closed session issued driver calls: %v", drv.order)
	}
}

func TestNegativeDelayRefusedAtSetup(t *testing.T) {
	drv := newMockDriver()
	s := openSession(t, drv)

	if err := s.SetTrigger(-1e-6); err != nil {
		t.Fatalf("negative delay within range must be stored: %v", err)
	}
	if s.Trigger().Delay != -1e-6 {
		t.Fatalf("delay not stored, got %g", s.Trigger().Delay)
	}

	err := s.SetDigitizer(false)
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter at setup, got %v", err)
	}
	if drv.total() != 0 {
		t.Fatalf("refused setup issued driver calls: %v", drv.order)
	}
	if s.Buffer() != nil {
		t.Fatalf("buffer must not be allocated after a refused setup")
	}
}

func TestSetDigitizerFailureReleasesBuffer(t *testing.T) {
	drv := newMockDriver()
	s := openSession(t, drv)
	if err := s.SetDigitizer(false); err != nil {
		t.Fatalf("set digitizer: %v", err)
	}

	drv.fail["MemorySegments"] = driver.StatusTooManySegments
	err := s.SetDigitizer(false)
	if !errors.Is(err, ErrHardwareCallFailed) || StatusOf(err) != driver.StatusTooManySegments {
		t.Fatalf("expected MemorySegments failure, got %v", err)
	}
	if s.Buffer() != nil {
		t.Fatalf("buffer must not be allocated after a failed setup")
	}
	if drv.calls["SetNoOfCaptures"] != 1 {
		t.Fatalf("SetNoOfCaptures must not follow the failure, got %d calls", drv.calls["SetNoOfCaptures"])
	}
}

func TestRunAcquisitionArgs(t *testing.T) {
	drv := newMockDriver()
	s := openSession(t, drv)
	if err := s.SetHorizontal(1.25, 4096, 4); err != nil {
		t.Fatalf("set horizontal: %v", err)
	}

	if err := s.RunAcquisition(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if drv.runArgs != [3]uint32{0, 4096, 2} {
		t.Fatalf("unexpected RunBlock args %v", drv.runArgs)
	}
	if !s.Running() || s.Ready() {
		t.Fatalf("expected running and not ready")
	}

	if err := s.SetHorizontal(2.5, 4096, 4); err != nil {
		t.Fatalf("set horizontal: %v", err)
	}
	if err := s.RunAcquisition(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if drv.runArgs[2] != 1 {
		t.Fatalf("expected timebase 1 for 2.5 GHz, got %d", drv.runArgs[2])
	}
}

func TestRunAcquisitionFailure(t *testing.T) {
	drv := newMockDriver()
	drv.fail["RunBlock"] = driver.StatusInvalidTimebase
	s := openSession(t, drv)

	err := s.RunAcquisition()
	if !errors.Is(err, ErrHardwareCallFailed) || StatusOf(err) != driver.StatusInvalidTimebase {
		t.Fatalf("expected RunBlock failure, got %v", err)
	}
	if s.Running() {
		t.Fatalf("session must not be running after failed start")
	}
}

func TestWaitForAcquisitionPolls(t *testing.T) {
	drv := newMockDriver()
	drv.readyAfter = 3
	s := openSession(t, drv)

	if err := s.RunAcquisition(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := s.WaitForAcquisition(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if drv.calls["IsReady"] != 4 {
		t.Fatalf("expected 4 polls, got %d", drv.calls["IsReady"])
	}
	if !s.Ready() {
		t.Fatalf("expected ready after wait")
	}
}

func TestWaitForAcquisitionContext(t *testing.T) {
	drv := newMockDriver()
	drv.readyAfter = 1 << 30
	s := openSession(t, drv)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	err := s.WaitForAcquisition(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if s.Ready() {
		t.Fatalf("must not be ready after timeout")
	}
	if drv.calls["Stop"] != 0 {
		t.Fatalf("timeout must leave the run in progress")
	}
}

func TestWaitForAcquisitionDriverError(t *testing.T) {
	drv := newMockDriver()
	drv.fail["IsReady"] = driver.StatusNotResponding
	s := openSession(t, drv)

	err := s.WaitForAcquisition(context.Background())
	if !errors.Is(err, ErrHardwareCallFailed) || StatusOf(err) != driver.StatusNotResponding {
		t.Fatalf("expected IsReady failure, got %v", err)
	}
}
