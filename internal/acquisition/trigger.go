// internal/acquisition/trigger.go
package acquisition

import (
	"math"

	"digitizer-service/pkg/driver"
)

const (
	triggerLevelMillivolts = 2000
	triggerHysteresis      = 256 * 10
)

// MillivoltsToADC converts a voltage to ADC codes for the given band
func MillivoltsToADC(mv int32, r driver.Range) int16 {
	full := r.Millivolts()
	if full == 0 {
		return 0
	}
	return int16(mv * driver.MaxADCValue / full)
}

// DelayCount converts a trigger delay to sample periods, truncating toward
// zero. Counts that do not fit the driver's unsigned 32-bit delay register
// are rejected rather than wrapped.
func DelayCount(delay, rateGHz float64) (uint32, error) {
	count := math.Trunc(delay * rateGHz * 1e9)
	if count < 0 || count > math.MaxUint32 {
		return 0, invalidParameter("build trigger", "delay %g s at %g GHz gives count %.0f outside [0, %d]",
			delay, rateGHz, count, uint32(math.MaxUint32))
	}
	return uint32(count), nil
}

// TriggerPlan is the complete, immutable argument set for a rising-edge
// level trigger on channel D.
type TriggerPlan struct {
	properties driver.TriggerChannelProperties
	conditions driver.TriggerConditions
	directions driver.TriggerDirections
	delayCount uint32
	qualifier  driver.PulseWidthQualifier
}

// BuildTrigger assembles the trigger for the source range and the current
// horizontal and trigger settings.
func BuildTrigger(sourceRange driver.Range, h HorizontalConfig, t TriggerConfig) (TriggerPlan, error) {
	delay, err := DelayCount(t.Delay, h.RateGHz)
	if err != nil {
		return TriggerPlan{}, err
	}

	level := MillivoltsToADC(triggerLevelMillivolts, sourceRange)

	return TriggerPlan{
		// The lower pair mirrors the upper one; a rising edge only uses upper
		properties: driver.TriggerChannelProperties{
			ThresholdUpper:  level,
			HysteresisUpper: triggerHysteresis,
			ThresholdLower:  level,
			HysteresisLower: triggerHysteresis,
			Channel:         triggerChannel,
			ThresholdMode:   driver.ThresholdLevel,
		},
		conditions: driver.TriggerConditions{
			ChannelA:            driver.StateDontCare,
			ChannelB:            driver.StateDontCare,
			ChannelC:            driver.StateDontCare,
			ChannelD:            driver.StateTrue,
			External:            driver.StateDontCare,
			Aux:                 driver.StateDontCare,
			PulseWidthQualifier: driver.StateDontCare,
		},
		directions: driver.TriggerDirections{
			ChannelA: driver.DirectionNone,
			ChannelB: driver.DirectionNone,
			ChannelC: driver.DirectionNone,
			ChannelD: driver.DirectionRising,
			External: driver.DirectionNone,
			Aux:      driver.DirectionNone,
		},
		delayCount: delay,
	}, nil
}

// Properties returns the channel threshold description
func (p TriggerPlan) Properties() driver.TriggerChannelProperties { return p.properties }

// Conditions returns the trigger logic term
func (p TriggerPlan) Conditions() driver.TriggerConditions { return p.conditions }

// Directions returns the per-source edge sense
func (p TriggerPlan) Directions() driver.TriggerDirections { return p.directions }

// DelayCount returns the delay in sample periods
func (p TriggerPlan) DelayCount() uint32 { return p.delayCount }

// Qualifier returns the pulse-width qualifier, which is always disabled
func (p TriggerPlan) Qualifier() driver.PulseWidthQualifier { return p.qualifier }

// Submit sends the plan to the driver in fixed order and stops at the
// first failing call.
func (p TriggerPlan) Submit(drv driver.Driver, handle driver.Handle) error {
	const op = "set trigger"

	if st := drv.SetTriggerChannelProperties(handle, []driver.TriggerChannelProperties{p.properties}, 0, 0); !st.OK() {
		return callFailed(op, "SetTriggerChannelProperties", st)
	}
	if st := drv.SetTriggerChannelConditions(handle, []driver.TriggerConditions{p.conditions}); !st.OK() {
		return callFailed(op, "SetTriggerChannelConditions", st)
	}
	if st := drv.SetTriggerChannelDirections(handle, p.directions); !st.OK() {
		return callFailed(op, "SetTriggerChannelDirections", st)
	}
	if st := drv.SetTriggerDelay(handle, p.delayCount); !st.OK() {
		return callFailed(op, "SetTriggerDelay", st)
	}
	if st := drv.SetPulseWidthQualifier(handle, p.qualifier); !st.OK() {
		return callFailed(op, "SetPulseWidthQualifier", st)
	}
	return nil
}
