package simulator

import (
	"testing"
	"time"

	"digitizer-service/pkg/driver"
)

func newTestSimulator(t *testing.T, cfg Config) (*Simulator, driver.Handle) {
	t.Helper()
	sim := New(cfg, nil)
	handle, st := sim.OpenUnit("")
	if !st.OK() {
		t.Fatalf("open: %s", st)
	}
	return sim, handle
}

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.CaptureLatency = 0
	return cfg
}

func arm(t *testing.T, sim *Simulator, handle driver.Handle, samples, segments uint32) {
	t.Helper()
	if st := sim.SetChannel(handle, driver.ChannelA, true, driver.CouplingDC50R, driver.Range200mV, 0, driver.BandwidthFull); !st.OK() {
		t.Fatalf("set channel: %s", st)
	}
	if _, st := sim.MemorySegments(handle, segments); !st.OK() {
		t.Fatalf("memory segments: %s", st)
	}
	if st := sim.SetNoOfCaptures(handle, segments); !st.OK() {
		t.Fatalf("set captures: %s", st)
	}
	if _, st := sim.RunBlock(handle, 0, samples, 2, 1, 0); !st.OK() {
		t.Fatalf("run block: %s", st)
	}
}

func TestOpenUnitRules(t *testing.T) {
	sim := New(DefaultConfig(), nil)

	if _, st := sim.OpenUnit("XX00/9999"); st != driver.StatusNotFound {
		t.Fatalf("expected not found for foreign serial, got %s", st)
	}
	handle, st := sim.OpenUnit(DefaultConfig().Serial)
	if !st.OK() {
		t.Fatalf("open by serial: %s", st)
	}
	if _, st := sim.OpenUnit(""); st != driver.StatusMaxUnitsOpened {
		t.Fatalf("expected max units opened, got %s", st)
	}

	variant, st := sim.GetUnitInfo(handle, driver.InfoVariant)
	if !st.OK() || variant != "6404D" {
		t.Fatalf("unexpected variant %q (%s)", variant, st)
	}

	if st := sim.CloseUnit(handle); !st.OK() {
		t.Fatalf("close: %s", st)
	}
	if st := sim.CloseUnit(handle); st != driver.StatusInvalidHandle {
		t.Fatalf("expected invalid handle after close, got %s", st)
	}
}

func TestBlockCaptureLatency(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CaptureLatency = 20 * time.Millisecond
	sim, handle := newTestSimulator(t, cfg)
	arm(t, sim, handle, 100, 4)

	if ready, _ := sim.IsReady(handle); ready {
		t.Fatalf("capture must not complete before the latency elapses")
	}
	buf := make([]int16, 100)
	sim.SetDataBufferBulk(handle, driver.ChannelA, buf, 0, driver.RatioNone)
	if _, _, st := sim.GetValuesBulk(handle, 100, 0, 0, 1, driver.RatioNone); st != driver.StatusDataNotAvailable {
		t.Fatalf("expected data not available, got %s", st)
	}

	time.Sleep(25 * time.Millisecond)
	if ready, st := sim.IsReady(handle); !ready || !st.OK() {
		t.Fatalf("expected ready, got %v (%s)", ready, st)
	}
	if n, _ := sim.GetNoOfCaptures(handle); n != 4 {
		t.Fatalf("expected 4 captures, got %d", n)
	}
}

func TestGetValuesBulkFillsSegments(t *testing.T) {
	sim, handle := newTestSimulator(t, fastConfig())
	arm(t, sim, handle, 512, 3)

	bufs := make([][]int16, 3)
	for i := range bufs {
		bufs[i] = make([]int16, 512)
		if st := sim.SetDataBufferBulk(handle, driver.ChannelA, bufs[i], uint32(i), driver.RatioNone); !st.OK() {
			t.Fatalf("set buffer %d: %s", i, st)
		}
	}

	retrieved, overflow, st := sim.GetValuesBulk(handle, 512, 0, 2, 1, driver.RatioNone)
	if !st.OK() {
		t.Fatalf("get values: %s", st)
	}
	if retrieved != 512 || len(overflow) != 3 {
		t.Fatalf("unexpected retrieved=%d overflow=%v", retrieved, overflow)
	}

	for seg, buf := range bufs {
		peak := int16(0)
		for _, v := range buf {
			if v > peak {
				peak = v
			}
		}
		// 150mV on a 200mV band is about 24000 codes
		if peak < 20000 {
			t.Fatalf("segment %d peak %d too low", seg, peak)
		}
	}
}

func TestGetValuesBulkRules(t *testing.T) {
	sim, handle := newTestSimulator(t, fastConfig())
	arm(t, sim, handle, 64, 2)

	if _, _, st := sim.GetValuesBulk(handle, 64, 0, 2, 1, driver.RatioNone); st != driver.StatusSegmentOutOfRange {
		t.Fatalf("expected segment out of range, got %s", st)
	}
	if _, _, st := sim.GetValuesBulk(handle, 64, 0, 0, 1, driver.RatioNone); st != driver.StatusNullParameter {
		t.Fatalf("expected null parameter without buffers, got %s", st)
	}
	if st := sim.SetDataBufferBulk(handle, driver.ChannelB, make([]int16, 64), 0, driver.RatioNone); st != driver.StatusInvalidChannel {
		t.Fatalf("expected invalid channel, got %s", st)
	}
}

func TestOverflowOnClip(t *testing.T) {
	cfg := fastConfig()
	cfg.Amplitude = 500
	sim, handle := newTestSimulator(t, cfg)
	arm(t, sim, handle, 256, 1)

	buf := make([]int16, 256)
	sim.SetDataBufferBulk(handle, driver.ChannelA, buf, 0, driver.RatioNone)
	_, overflow, st := sim.GetValuesBulk(handle, 256, 0, 0, 1, driver.RatioNone)
	if !st.OK() {
		t.Fatalf("get values: %s", st)
	}
	if overflow[0]&1 == 0 {
		t.Fatalf("expected channel A overflow bit")
	}
}

func TestDeterministicWithSeed(t *testing.T) {
	capture := func() []int16 {
		sim, handle := newTestSimulator(t, fastConfig())
		arm(t, sim, handle, 128, 1)
		buf := make([]int16, 128)
		sim.SetDataBufferBulk(handle, driver.ChannelA, buf, 0, driver.RatioNone)
		if _, _, st := sim.GetValuesBulk(handle, 128, 0, 0, 1, driver.RatioNone); !st.OK() {
			t.Fatalf("get values: %s", st)
		}
		return buf
	}

	a, b := capture(), capture()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d differs between runs: %d vs %d", i, a[i], b[i])
		}
	}
}

func TestConfigFromOptions(t *testing.T) {
	cfg := ConfigFromOptions(driver.Options{
		"variant":         "6402C",
		"capture_latency": "50ms",
		"amplitude":       80.0,
		"seed":            7,
	})
	if cfg.Variant != "6402C" || cfg.CaptureLatency != 50*time.Millisecond || cfg.Amplitude != 80 || cfg.Seed != 7 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Noise != DefaultConfig().Noise {
		t.Fatalf("unset option must keep default")
	}
}
