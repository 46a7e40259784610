package acquisition

import (
	"errors"
	"testing"

	"digitizer-service/pkg/driver"
)

func TestSetHorizontalDerivedValues(t *testing.T) {
	tests := []struct {
		rate     float64
		samples  int
		segments int
	}{
		{2.0, 10000, 20},
		{0.05, 1, 1},
		{5.0, MaxSamples, MaxSegments},
		{1.25, 512, 100},
	}

	for _, tt := range tests {
		s := NewSession(newMockDriver())
		if err := s.SetHorizontal(tt.rate, tt.samples, tt.segments); err != nil {
			t.Fatalf("SetHorizontal(%v, %d, %d): %v", tt.rate, tt.samples, tt.segments, err)
		}
		if want := 1 / (tt.rate * 1e9); s.SampleInterval() != want {
			t.Fatalf("expected sample interval %g, got %g", want, s.SampleInterval())
		}
		if want := tt.samples * (tt.segments + 1); s.BufferLength() != want {
			t.Fatalf("expected buffer length %d, got %d", want, s.BufferLength())
		}
		if s.SegmentOffset() != uint32(tt.samples) {
			t.Fatalf("expected segment offset %d, got %d", tt.samples, s.SegmentOffset())
		}
		if s.SegmentCount() != uint32(tt.segments) {
			t.Fatalf("expected segment count %d, got %d", tt.segments, s.SegmentCount())
		}
	}
}

func TestSetHorizontalRejectsAndRetains(t *testing.T) {
	tests := []struct {
		name     string
		rate     float64
		samples  int
		segments int
	}{
		{"zero samples", 2.0, 0, 20},
		{"too many samples", 2.0, 262145, 20},
		{"zero segments", 2.0, 100, 0},
		{"too many segments", 2.0, 100, 2001},
		{"rate too low", 0.04, 100, 20},
		{"rate too high", 5.01, 100, 20},
	}

	for _, tt := range tests {
		s := NewSession(newMockDriver())
		if err := s.SetHorizontal(1.25, 4096, 8); err != nil {
			t.Fatalf("%s: baseline: %v", tt.name, err)
		}
		before := s.SampleInterval()

		err := s.SetHorizontal(tt.rate, tt.samples, tt.segments)
		if !errors.Is(err, ErrInvalidParameter) {
			t.Fatalf("%s: expected ErrInvalidParameter, got %v", tt.name, err)
		}
		if StatusOf(err) != driver.StatusInvalidParameter {
			t.Fatalf("%s: unexpected status %s", tt.name, StatusOf(err))
		}
		if s.SampleInterval() != before {
			t.Fatalf("%s: sample interval changed from %g to %g", tt.name, before, s.SampleInterval())
		}
		if h := s.Horizontal(); h.Samples != 4096 || h.Segments != 8 || h.RateGHz != 1.25 {
			t.Fatalf("%s: configuration not retained: %+v", tt.name, h)
		}
	}
}

func TestSetHorizontalRateTolerance(t *testing.T) {
	s := NewSession(newMockDriver())
	if err := s.SetHorizontal(0.05-5e-7, 10, 1); err != nil {
		t.Fatalf("rate within tolerance rejected: %v", err)
	}
	if err := s.SetHorizontal(5.0+5e-7, 10, 1); err != nil {
		t.Fatalf("rate within tolerance rejected: %v", err)
	}
}

func TestSetTrigger(t *testing.T) {
	s := NewSession(newMockDriver())

	if err := s.SetTrigger(1e-6); err != nil {
		t.Fatalf("set trigger: %v", err)
	}
	if err := s.SetTrigger(MinTriggerDelay); err != nil {
		t.Fatalf("lower bound rejected: %v", err)
	}
	if err := s.SetTrigger(10.0); err != nil {
		t.Fatalf("upper bound rejected: %v", err)
	}

	for _, delay := range []float64{10.5, -0.01} {
		if err := s.SetTrigger(delay); !errors.Is(err, ErrInvalidParameter) {
			t.Fatalf("delay %g: expected ErrInvalidParameter, got %v", delay, err)
		}
	}
	if s.Trigger().Delay != 10.0 {
		t.Fatalf("expected retained delay 10, got %g", s.Trigger().Delay)
	}
}

func TestSetVerticalOverrides(t *testing.T) {
	drv := newMockDriver()
	s := NewSession(drv)

	got := s.SetVertical(VerticalConfig{Range: driver.Range500mV, Coupling: driver.CouplingAC, Bandwidth: driver.Bandwidth25MHz})
	if got.Coupling != driver.CouplingDC50R {
		t.Fatalf("coupling must be forced to DC 50R, got %s", got.Coupling)
	}
	if got.Bandwidth != driver.Bandwidth20MHz {
		t.Fatalf("6402C must limit at 20MHz, got %s", got.Bandwidth)
	}

	if err := s.Open(); err != nil {
		t.Fatalf("open: %v", err)
	}
	if s.Vertical().Bandwidth != driver.Bandwidth25MHz {
		t.Fatalf("6404D must limit at 25MHz after open, got %s", s.Vertical().Bandwidth)
	}

	got = s.SetVertical(VerticalConfig{Range: driver.Range500mV, Bandwidth: driver.BandwidthFull})
	if got.Bandwidth != driver.BandwidthFull {
		t.Fatalf("full bandwidth must be kept, got %s", got.Bandwidth)
	}
}

func TestVerticalValidate(t *testing.T) {
	if err := (VerticalConfig{Range: driver.Range2V}).Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	if err := (VerticalConfig{Range: driver.Range(12)}).Validate(); err == nil {
		t.Fatalf("expected out-of-range band to fail")
	}
	if err := (VerticalConfig{Bandwidth: driver.BandwidthLimiter(7)}).Validate(); err == nil {
		t.Fatalf("expected unknown bandwidth to fail")
	}
}
