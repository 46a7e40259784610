// internal/service/types.go
package service

import (
	"time"

	"digitizer-service/internal/acquisition"
	"digitizer-service/internal/model"
	"digitizer-service/pkg/driver"
)

// Options is the acquisition option object. Enum fields carry the driver's
// numeric values (verticalScale 4 is the 200 mV band). Absent fields keep
// the current setting.
type Options struct {
	VerticalScale        *float64 `json:"verticalScale,omitempty" yaml:"verticalScale,omitempty"`
	VerticalOffset       *float64 `json:"verticalOffset,omitempty" yaml:"verticalOffset,omitempty"`
	VerticalCoupling     *int32   `json:"verticalCoupling,omitempty" yaml:"verticalCoupling,omitempty"`
	VerticalBandwidth    *int32   `json:"verticalBandwidth,omitempty" yaml:"verticalBandwidth,omitempty"`
	HorizontalSamplerate *float64 `json:"horizontalSamplerate,omitempty" yaml:"horizontalSamplerate,omitempty"`
	HorizontalSamples    *int     `json:"horizontalSamples,omitempty" yaml:"horizontalSamples,omitempty"`
	HorizontalSegments   *int     `json:"horizontalSegments,omitempty" yaml:"horizontalSegments,omitempty"`
	TriggerDelay         *float64 `json:"triggerDelay,omitempty" yaml:"triggerDelay,omitempty"`
	Channel              *int32   `json:"channel,omitempty" yaml:"channel,omitempty"`
}

func (o *Options) hasVertical() bool {
	return o.VerticalScale != nil || o.VerticalOffset != nil || o.VerticalCoupling != nil || o.VerticalBandwidth != nil
}

func (o *Options) hasHorizontal() bool {
	return o.HorizontalSamplerate != nil || o.HorizontalSamples != nil || o.HorizontalSegments != nil
}

func (o *Options) vertical(current acquisition.VerticalConfig) acquisition.VerticalConfig {
	v := current
	if o.VerticalScale != nil {
		v.Range = driver.Range(int32(*o.VerticalScale))
	}
	if o.VerticalOffset != nil {
		v.Offset = *o.VerticalOffset
	}
	if o.VerticalCoupling != nil {
		v.Coupling = driver.Coupling(*o.VerticalCoupling)
	}
	if o.VerticalBandwidth != nil {
		v.Bandwidth = driver.BandwidthLimiter(*o.VerticalBandwidth)
	}
	return v
}

func (o *Options) horizontal(current acquisition.HorizontalConfig) (float64, int, int) {
	rate, samples, segments := current.RateGHz, int(current.Samples), int(current.Segments)
	if o.HorizontalSamplerate != nil {
		rate = *o.HorizontalSamplerate
	}
	if o.HorizontalSamples != nil {
		samples = *o.HorizontalSamples
	}
	if o.HorizontalSegments != nil {
		segments = *o.HorizontalSegments
	}
	return rate, samples, segments
}

// StatusInfo is a snapshot of the session
type StatusInfo struct {
	Open           bool                         `json:"open"`
	Driver         string                       `json:"driver"`
	Model          string                       `json:"model"`
	Variant        string                       `json:"variant,omitempty"`
	Serial         string                       `json:"serial,omitempty"`
	Vertical       acquisition.VerticalConfig   `json:"vertical"`
	Horizontal     acquisition.HorizontalConfig `json:"horizontal"`
	Trigger        acquisition.TriggerConfig    `json:"trigger"`
	SampleInterval float64                      `json:"sample_interval"`
	BufferLength   int                          `json:"buffer_length"`
	SegmentOffset  uint32                       `json:"segment_offset"`
	SegmentCount   uint32                       `json:"segment_count"`
	Running        bool                         `json:"running"`
	Ready          bool                         `json:"ready"`
	Summary        acquisition.Summary          `json:"summary"`
	Pending        int                          `json:"pending_operations"`
}

// ActiveOperation is the operation currently executing on the worker
type ActiveOperation struct {
	Name      string    `json:"name"`
	StartedAt time.Time `json:"started_at"`
}

// BufferInfo describes the capture buffer geometry. Allocated is zero
// until SetDigitizer runs or after TakeBuffer.
type BufferInfo struct {
	Length        int    `json:"length"`
	SegmentOffset uint32 `json:"segment_offset"`
	SegmentCount  uint32 `json:"segment_count"`
	Allocated     int    `json:"allocated"`
}

// CaptureResult pairs a harvest with its record
type CaptureResult struct {
	Record  *model.CaptureRecord `json:"record"`
	Capture *acquisition.Capture `json:"capture"`
}

// PaginationResult represents pagination information
type PaginationResult struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
}

// VerticalRequest is the named form of the vertical setting
type VerticalRequest struct {
	Range     string  `json:"range" binding:"required" example:"200mV"`
	Offset    float64 `json:"offset"`
	Coupling  string  `json:"coupling,omitempty" example:"DC_50R"`
	Bandwidth string  `json:"bandwidth,omitempty" example:"full"`
}

// Config parses the request into a vertical setting
func (r *VerticalRequest) Config() (acquisition.VerticalConfig, error) {
	rng, err := driver.ParseRange(r.Range)
	if err != nil {
		return acquisition.VerticalConfig{}, err
	}
	coupling, err := driver.ParseCoupling(r.Coupling)
	if err != nil {
		return acquisition.VerticalConfig{}, err
	}
	bw, err := driver.ParseBandwidth(r.Bandwidth)
	if err != nil {
		return acquisition.VerticalConfig{}, err
	}
	return acquisition.VerticalConfig{Range: rng, Offset: r.Offset, Coupling: coupling, Bandwidth: bw}, nil
}

// HorizontalRequest sets rate, record length and segment count
type HorizontalRequest struct {
	SampleRateGHz float64 `json:"sample_rate_ghz" binding:"required" example:"2.0"`
	Samples       int     `json:"samples" binding:"required" example:"10000"`
	Segments      int     `json:"segments" binding:"required" example:"20"`
}

// TriggerRequest sets the trigger delay in seconds
type TriggerRequest struct {
	Delay float64 `json:"delay" example:"0"`
}

// SetupRequest selects full programming or a repeat re-arm
type SetupRequest struct {
	Repeat bool `json:"repeat"`
}
