package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestOperationCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveOperation("set_digitizer", nil, 2*time.Millisecond)
	m.ObserveOperation("set_digitizer", nil, 3*time.Millisecond)
	m.ObserveOperation("fetch_data", errors.New("boom"), time.Millisecond)

	if got := testutil.ToFloat64(m.operations.WithLabelValues("set_digitizer", ResultSuccess)); got != 2 {
		t.Fatalf("expected 2 successful set_digitizer, got %f", got)
	}
	if got := testutil.ToFloat64(m.operations.WithLabelValues("fetch_data", ResultError)); got != 1 {
		t.Fatalf("expected 1 failed fetch_data, got %f", got)
	}
	if samples := testutil.CollectAndCount(m.opLatency); samples != 2 {
		t.Fatalf("expected 2 latency series, got %d", samples)
	}
}

func TestCaptureAndGauges(t *testing.T) {
	m := New(nil)

	m.ObserveCapture("COMPLETED", 210000, 20)
	m.ObserveCapture("FAILED", 0, 0)
	m.ObserveWait(40 * time.Millisecond)
	m.SetSessionOpen(true)
	m.SetQueueDepth(3)
	m.DriverError("PICO_NOT_RESPONDING")

	if got := testutil.ToFloat64(m.bytes); got != 210000 {
		t.Fatalf("expected 210000 bytes, got %f", got)
	}
	if got := testutil.ToFloat64(m.segments); got != 20 {
		t.Fatalf("expected 20 segments, got %f", got)
	}
	if got := testutil.ToFloat64(m.captures.WithLabelValues("FAILED")); got != 1 {
		t.Fatalf("expected 1 failed capture, got %f", got)
	}
	if got := testutil.ToFloat64(m.sessionOpen); got != 1 {
		t.Fatalf("expected session gauge 1, got %f", got)
	}
	if got := testutil.ToFloat64(m.queueDepth); got != 3 {
		t.Fatalf("expected queue gauge 3, got %f", got)
	}
	if samples := testutil.CollectAndCount(m.waitLatency); samples != 1 {
		t.Fatalf("expected wait histogram to be collected, got %d", samples)
	}

	m.SetSessionOpen(false)
	if got := testutil.ToFloat64(m.sessionOpen); got != 0 {
		t.Fatalf("expected session gauge 0, got %f", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New(nil)
	m.ObserveCapture("COMPLETED", 10, 1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "digitizer_captures_total") {
		t.Fatalf("exposition missing capture counter:\n%s", rec.Body.String())
	}
}
