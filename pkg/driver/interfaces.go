// pkg/driver/interfaces.go
package driver

import "time"

// Handle identifies an opened unit
type Handle int16

// Driver is the capability surface a digitizer backend must implement.
// Calls are synchronous and bounded; RunBlock returns before the capture
// completes and IsReady reports progress.
type Driver interface {
	// Unit lifecycle
	OpenUnit(serial string) (Handle, Status)
	CloseUnit(handle Handle) Status
	GetUnitInfo(handle Handle, info InfoKind) (string, Status)

	// Front end
	SetEts(handle Handle, mode EtsMode, cycles, interleave int16) (samplePicoseconds int64, status Status)
	SetChannel(handle Handle, channel Channel, enabled bool, coupling Coupling, rng Range, offset float32, bandwidth BandwidthLimiter) Status

	// Memory
	MemorySegments(handle Handle, segments uint32) (maxSamples uint32, status Status)
	SetNoOfCaptures(handle Handle, captures uint32) Status

	// Trigger
	SetTriggerChannelProperties(handle Handle, properties []TriggerChannelProperties, auxOutputEnable int16, autoTriggerMs int32) Status
	SetTriggerChannelConditions(handle Handle, conditions []TriggerConditions) Status
	SetTriggerChannelDirections(handle Handle, directions TriggerDirections) Status
	SetTriggerDelay(handle Handle, delay uint32) Status
	SetPulseWidthQualifier(handle Handle, qualifier PulseWidthQualifier) Status

	// Block capture
	RunBlock(handle Handle, preTrigger, postTrigger, timebase uint32, oversample int16, segmentIndex uint32) (timeIndisposedMs int32, status Status)
	IsReady(handle Handle) (bool, Status)
	Stop(handle Handle) Status

	// Retrieval
	GetNoOfCaptures(handle Handle) (uint32, Status)
	SetDataBufferBulk(handle Handle, channel Channel, buffer []int16, segmentIndex uint32, mode RatioMode) Status
	GetValuesBulk(handle Handle, samples, fromSegment, toSegment, downsampleRatio uint32, mode RatioMode) (retrieved uint32, overflow []int16, status Status)
}

// Options carries backend-specific construction parameters
type Options map[string]interface{}

// Int returns an integer option or def
func (o Options) Int(key string, def int) int {
	switch v := o[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// Float returns a float option or def
func (o Options) Float(key string, def float64) float64 {
	switch v := o[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

// String returns a string option or def
func (o Options) String(key string, def string) string {
	if v, ok := o[key].(string); ok {
		return v
	}
	return def
}

// Duration returns a duration option or def
func (o Options) Duration(key string, def time.Duration) time.Duration {
	switch v := o[key].(type) {
	case time.Duration:
		return v
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
