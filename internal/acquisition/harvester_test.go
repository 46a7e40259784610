package acquisition

import (
	"context"
	"errors"
	"testing"

	"digitizer-service/pkg/driver"
)

func TestDownsample(t *testing.T) {
	tests := []struct {
		in   int16
		want byte
	}{
		{0, 0x00},
		{255, 0x00},
		{256, 0x01},
		{32767, 0x7F},
		{-32768, 0x80},
		{-1, 0xFF},
		{-256, 0xFF},
		{-257, 0xFE},
	}

	for _, tt := range tests {
		if got := Downsample(tt.in); got != tt.want {
			t.Fatalf("Downsample(%d) = %#x, want %#x", tt.in, got, tt.want)
		}
	}
}

func TestFetchDataNotReady(t *testing.T) {
	drv := newMockDriver()
	s := NewSession(drv)

	_, err := s.FetchData()
	if !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	if StatusOf(err) != driver.StatusUnknownError {
		t.Fatalf("expected unknown-error status, got %s", StatusOf(err))
	}
	if drv.total() != 0 {
		t.Fatalf("expected no driver calls, got %v", drv.order)
	}
}

func runToReady(t *testing.T, drv *mockDriver) *Session {
	t.Helper()
	s := openSession(t, drv)
	if err := s.SetDigitizer(false); err != nil {
		t.Fatalf("set digitizer: %v", err)
	}
	if err := s.RunAcquisition(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := s.WaitForAcquisition(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	return s
}

func TestFetchDataEndToEnd(t *testing.T) {
	drv := newMockDriver()
	s := runToReady(t, drv)

	capture, err := s.FetchData()
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if len(capture.Data) != 210000 {
		t.Fatalf("expected 210000 bytes, got %d", len(capture.Data))
	}
	sum := s.Summary()
	if sum.Shots != 20 || sum.SamplingRate != 2e9 || sum.Length != 10000 || sum.ActualSamples != 10000 {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if sum.Gain != 0 || sum.Offset != 0 || sum.XIncrement != 0 {
		t.Fatalf("calibration fields must stay zero, got %+v", sum)
	}
	if capture.Completed != 20 || capture.Retrieved != 10000 {
		t.Fatalf("unexpected counts completed=%d retrieved=%d", capture.Completed, capture.Retrieved)
	}

	for seg := 0; seg < 20; seg++ {
		data := capture.Segment(seg)
		if len(data) != 10000 {
			t.Fatalf("segment %d has %d bytes", seg, len(data))
		}
		if data[0] != byte(seg) || data[9999] != byte(seg) {
			t.Fatalf("segment %d holds %#x..%#x", seg, data[0], data[9999])
		}
	}
	for i, b := range capture.Data[200000:] {
		if b != 0 {
			t.Fatalf("padding byte %d is %#x", i, b)
		}
	}
	if capture.Segment(20) != nil {
		t.Fatalf("padding must not be addressable as a segment")
	}

	if drv.calls["SetDataBufferBulk"] != 20 || drv.calls["GetValuesBulk"] != 1 {
		t.Fatalf("unexpected harvest calls %v", drv.calls)
	}
	if drv.calls["Stop"] != 1 || s.Running() {
		t.Fatalf("driver run must be stopped after harvest")
	}
	if !s.Ready() {
		t.Fatalf("ready flag is kept after harvest")
	}
}

func TestFetchDataNoCaptures(t *testing.T) {
	drv := newMockDriver()
	drv.captures = 0
	s := runToReady(t, drv)

	_, err := s.FetchData()
	if !errors.Is(err, ErrNoCaptures) {
		t.Fatalf("expected ErrNoCaptures, got %v", err)
	}
	if st := StatusOf(err); st != driver.StatusNoSamplesAvailable {
		t.Fatalf("zero captures must not report %s", st)
	}
	if drv.calls["Stop"] != 1 {
		t.Fatalf("driver run must be stopped, got %d Stop calls", drv.calls["Stop"])
	}
	if drv.calls["SetDataBufferBulk"] != 0 {
		t.Fatalf("no buffers may be registered without captures")
	}
	for _, b := range s.Buffer() {
		if b != 0 {
			t.Fatalf("buffer must stay zeroed")
		}
	}
}

func TestFetchDataCaptureCountFailure(t *testing.T) {
	drv := newMockDriver()
	drv.fail["GetNoOfCaptures"] = driver.StatusDataNotAvailable
	s := runToReady(t, drv)

	_, err := s.FetchData()
	if !errors.Is(err, ErrHardwareCallFailed) || StatusOf(err) != driver.StatusDataNotAvailable {
		t.Fatalf("expected GetNoOfCaptures failure, got %v", err)
	}
	if drv.calls["Stop"] != 1 {
		t.Fatalf("driver run must be stopped")
	}
}

func TestFetchDataValuesFailure(t *testing.T) {
	drv := newMockDriver()
	drv.fail["GetValuesBulk"] = driver.StatusNoSamplesAvailable
	s := runToReady(t, drv)

	_, err := s.FetchData()
	if !errors.Is(err, ErrHardwareCallFailed) || StatusOf(err) != driver.StatusNoSamplesAvailable {
		t.Fatalf("expected GetValuesBulk failure, got %v", err)
	}
	if s.Summary() != (Summary{}) {
		t.Fatalf("summary must not be updated on failure")
	}
}

func TestFetchDataRegrowsShortBuffer(t *testing.T) {
	drv := newMockDriver()
	s := runToReady(t, drv)
	s.SetBuffer(make([]byte, 8))

	capture, err := s.FetchData()
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(capture.Data) != s.BufferLength() {
		t.Fatalf("expected %d bytes, got %d", s.BufferLength(), len(capture.Data))
	}
}
