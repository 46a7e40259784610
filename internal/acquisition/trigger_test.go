package acquisition

import (
	"errors"
	"reflect"
	"testing"

	"digitizer-service/pkg/driver"
)

func TestMillivoltsToADC(t *testing.T) {
	tests := []struct {
		mv   int32
		r    driver.Range
		want int16
	}{
		{2000, driver.Range5V, 13004},
		{5000, driver.Range5V, driver.MaxADCValue},
		{-5000, driver.Range5V, -driver.MaxADCValue},
		{0, driver.Range200mV, 0},
		{100, driver.Range200mV, 16256},
		{100, driver.Range(99), 0},
	}

	for _, tt := range tests {
		if got := MillivoltsToADC(tt.mv, tt.r); got != tt.want {
			t.Fatalf("MillivoltsToADC(%d, %s) = %d, want %d", tt.mv, tt.r, got, tt.want)
		}
	}
}

func TestDelayCount(t *testing.T) {
	got, err := DelayCount(0.25, 1.25)
	if err != nil {
		t.Fatalf("delay count: %v", err)
	}
	if got != 312500000 {
		t.Fatalf("expected 312500000, got %d", got)
	}

	got, err = DelayCount(0, 2.0)
	if err != nil || got != 0 {
		t.Fatalf("expected zero count, got %d (%v)", got, err)
	}

	for _, tc := range []struct{ delay, rate float64 }{
		{10, 5.0},
		{-1e-3, 2.0},
	} {
		if _, err := DelayCount(tc.delay, tc.rate); !errors.Is(err, ErrInvalidParameter) {
			t.Fatalf("DelayCount(%g, %g): expected ErrInvalidParameter, got %v", tc.delay, tc.rate, err)
		}
	}
}

func TestBuildTrigger(t *testing.T) {
	plan, err := BuildTrigger(driver.Range5V, DefaultHorizontal(), TriggerConfig{Delay: 0.5})
	if err != nil {
		t.Fatalf("build trigger: %v", err)
	}

	props := plan.Properties()
	if props.Channel != driver.ChannelD || props.ThresholdMode != driver.ThresholdLevel {
		t.Fatalf("unexpected trigger source %+v", props)
	}
	if props.ThresholdUpper != 13004 || props.HysteresisUpper != 2560 {
		t.Fatalf("unexpected threshold %d / hysteresis %d", props.ThresholdUpper, props.HysteresisUpper)
	}
	if props.ThresholdLower != props.ThresholdUpper || props.HysteresisLower != 2560 {
		t.Fatalf("lower threshold must mirror the upper pair, got %+v", props)
	}

	wantConditions := driver.TriggerConditions{
		ChannelA:            driver.StateDontCare,
		ChannelB:            driver.StateDontCare,
		ChannelC:            driver.StateDontCare,
		ChannelD:            driver.StateTrue,
		External:            driver.StateDontCare,
		Aux:                 driver.StateDontCare,
		PulseWidthQualifier: driver.StateDontCare,
	}
	if plan.Conditions() != wantConditions {
		t.Fatalf("unexpected conditions %+v", plan.Conditions())
	}
	if plan.Directions().ChannelD != driver.DirectionRising || plan.Directions().ChannelA != driver.DirectionNone {
		t.Fatalf("unexpected directions %+v", plan.Directions())
	}
	if plan.DelayCount() != 1000000000 {
		t.Fatalf("expected delay count 1e9, got %d", plan.DelayCount())
	}
	if !reflect.DeepEqual(plan.Qualifier(), driver.PulseWidthQualifier{}) {
		t.Fatalf("qualifier must be disabled, got %+v", plan.Qualifier())
	}
}

func TestBuildTriggerRejectsDelayOverflow(t *testing.T) {
	_, err := BuildTrigger(driver.Range5V, HorizontalConfig{RateGHz: 5.0, Samples: 100, Segments: 1}, TriggerConfig{Delay: MaxTriggerDelay})
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestSubmitOrder(t *testing.T) {
	drv := newMockDriver()
	plan, err := BuildTrigger(driver.Range5V, DefaultHorizontal(), DefaultTrigger())
	if err != nil {
		t.Fatalf("build trigger: %v", err)
	}

	if err := plan.Submit(drv, 7); err != nil {
		t.Fatalf("submit: %v", err)
	}

	want := []string{
		"SetTriggerChannelProperties",
		"SetTriggerChannelConditions",
		"SetTriggerChannelDirections",
		"SetTriggerDelay",
		"SetPulseWidthQualifier",
	}
	if !reflect.DeepEqual(drv.order, want) {
		t.Fatalf("unexpected call order %v", drv.order)
	}
	if len(drv.properties) != 1 || drv.properties[0] != plan.Properties() {
		t.Fatalf("driver received %+v", drv.properties)
	}
	if len(drv.conditions) != 1 || drv.conditions[0] != plan.Conditions() {
		t.Fatalf("driver received %+v", drv.conditions)
	}
}

func TestSubmitFailsFast(t *testing.T) {
	drv := newMockDriver()
	drv.fail["SetTriggerChannelDirections"] = driver.StatusInvalidTriggerChannel

	plan, err := BuildTrigger(driver.Range5V, DefaultHorizontal(), DefaultTrigger())
	if err != nil {
		t.Fatalf("build trigger: %v", err)
	}

	err = plan.Submit(drv, 7)
	if !errors.Is(err, ErrHardwareCallFailed) {
		t.Fatalf("expected ErrHardwareCallFailed, got %v", err)
	}
	if StatusOf(err) != driver.StatusInvalidTriggerChannel {
		t.Fatalf("expected driver status to be carried, got %s", StatusOf(err))
	}
	var e *Error
	if !errors.As(err, &e) || e.Call != "SetTriggerChannelDirections" {
		t.Fatalf("expected failing call name, got %+v", e)
	}
	if drv.calls["SetTriggerDelay"] != 0 || drv.calls["SetPulseWidthQualifier"] != 0 {
		t.Fatalf("calls after the failure must not be issued: %v", drv.order)
	}
}
