//go:build ps6000 && cgo

// internal/driver/ps6000/ps6000.go
package ps6000

/*
#cgo LDFLAGS: -lps6000
#include <stdlib.h>
#include <string.h>
#include <libps6000/ps6000Api.h>
*/
import "C"

import (
	"sync"
	"unsafe"

	"go.uber.org/zap"

	"digitizer-service/pkg/driver"
)

const infoLength = 64

// bulkBuffer is a C-allocated segment buffer registered with the driver.
// The driver keeps the pointer until the next GetValuesBulk, so Go memory
// cannot be handed over directly.
type bulkBuffer struct {
	c   *C.int16_t
	n   int
	dst []int16
}

// Driver binds libps6000
type Driver struct {
	logger  *zap.Logger
	mu      sync.Mutex
	buffers map[driver.Handle]map[uint32]*bulkBuffer
}

// New creates a binding to the installed PicoScope SDK
func New(logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{
		logger:  logger,
		buffers: make(map[driver.Handle]map[uint32]*bulkBuffer),
	}
}

func status(st C.PICO_STATUS) driver.Status {
	return driver.Status(st)
}

// OpenUnit implements driver.Driver
func (d *Driver) OpenUnit(serial string) (driver.Handle, driver.Status) {
	var handle C.int16_t
	var cs *C.int8_t
	if serial != "" {
		str := C.CString(serial)
		defer C.free(unsafe.Pointer(str))
		cs = (*C.int8_t)(unsafe.Pointer(str))
	}

	st := status(C.ps6000OpenUnit(&handle, cs))
	if !st.OK() {
		return 0, st
	}
	if handle <= 0 {
		return 0, driver.StatusNotFound
	}
	return driver.Handle(handle), st
}

// CloseUnit implements driver.Driver
func (d *Driver) CloseUnit(handle driver.Handle) driver.Status {
	d.releaseBuffers(handle)
	return status(C.ps6000CloseUnit(C.int16_t(handle)))
}

// GetUnitInfo implements driver.Driver
func (d *Driver) GetUnitInfo(handle driver.Handle, info driver.InfoKind) (string, driver.Status) {
	buf := (*C.int8_t)(C.malloc(infoLength))
	defer C.free(unsafe.Pointer(buf))

	var required C.int16_t
	st := status(C.ps6000GetUnitInfo(C.int16_t(handle), buf, infoLength, &required, C.PICO_INFO(info)))
	if !st.OK() {
		return "", st
	}
	return C.GoString((*C.char)(unsafe.Pointer(buf))), st
}

// SetEts implements driver.Driver
func (d *Driver) SetEts(handle driver.Handle, mode driver.EtsMode, cycles, interleave int16) (int64, driver.Status) {
	var picoseconds C.int64_t
	st := C.ps6000SetEts(C.int16_t(handle), C.PS6000_ETS_MODE(mode), C.int16_t(cycles), C.int16_t(interleave), &picoseconds)
	return int64(picoseconds), status(st)
}

// SetChannel implements driver.Driver
func (d *Driver) SetChannel(handle driver.Handle, channel driver.Channel, enabled bool, coupling driver.Coupling, rng driver.Range, offset float32, bandwidth driver.BandwidthLimiter) driver.Status {
	var en C.int16_t
	if enabled {
		en = 1
	}
	return status(C.ps6000SetChannel(C.int16_t(handle), C.PS6000_CHANNEL(channel), en,
		C.PS6000_COUPLING(coupling), C.PS6000_RANGE(rng), C.float(offset), C.PS6000_BANDWIDTH_LIMITER(bandwidth)))
}

// MemorySegments implements driver.Driver
func (d *Driver) MemorySegments(handle driver.Handle, segments uint32) (uint32, driver.Status) {
	var maxSamples C.uint32_t
	st := C.ps6000MemorySegments(C.int16_t(handle), C.uint32_t(segments), &maxSamples)
	return uint32(maxSamples), status(st)
}

// SetNoOfCaptures implements driver.Driver
func (d *Driver) SetNoOfCaptures(handle driver.Handle, captures uint32) driver.Status {
	return status(C.ps6000SetNoOfCaptures(C.int16_t(handle), C.uint32_t(captures)))
}

// SetTriggerChannelProperties implements driver.Driver
func (d *Driver) SetTriggerChannelProperties(handle driver.Handle, properties []driver.TriggerChannelProperties, auxOutputEnable int16, autoTriggerMs int32) driver.Status {
	n := len(properties)
	if n == 0 {
		return status(C.ps6000SetTriggerChannelProperties(C.int16_t(handle), nil, 0, C.int16_t(auxOutputEnable), C.int32_t(autoTriggerMs)))
	}

	size := C.size_t(n) * C.sizeof_PS6000_TRIGGER_CHANNEL_PROPERTIES
	ptr := (*C.PS6000_TRIGGER_CHANNEL_PROPERTIES)(C.malloc(size))
	defer C.free(unsafe.Pointer(ptr))

	arr := unsafe.Slice(ptr, n)
	for i, p := range properties {
		arr[i] = C.PS6000_TRIGGER_CHANNEL_PROPERTIES{
			thresholdUpper:  C.int16_t(p.ThresholdUpper),
			hysteresisUpper: C.uint16_t(p.HysteresisUpper),
			thresholdLower:  C.int16_t(p.ThresholdLower),
			hysteresisLower: C.uint16_t(p.HysteresisLower),
			channel:         C.PS6000_CHANNEL(p.Channel),
			thresholdMode:   C.PS6000_THRESHOLD_MODE(p.ThresholdMode),
		}
	}
	return status(C.ps6000SetTriggerChannelProperties(C.int16_t(handle), ptr, C.int16_t(n), C.int16_t(auxOutputEnable), C.int32_t(autoTriggerMs)))
}

// SetTriggerChannelConditions implements driver.Driver
func (d *Driver) SetTriggerChannelConditions(handle driver.Handle, conditions []driver.TriggerConditions) driver.Status {
	n := len(conditions)
	if n == 0 {
		return status(C.ps6000SetTriggerChannelConditions(C.int16_t(handle), nil, 0))
	}

	ptr := (*C.PS6000_TRIGGER_CONDITIONS)(C.malloc(C.size_t(n) * C.sizeof_PS6000_TRIGGER_CONDITIONS))
	defer C.free(unsafe.Pointer(ptr))

	arr := unsafe.Slice(ptr, n)
	for i, c := range conditions {
		arr[i] = C.PS6000_TRIGGER_CONDITIONS{
			channelA:            C.PS6000_TRIGGER_STATE(c.ChannelA),
			channelB:            C.PS6000_TRIGGER_STATE(c.ChannelB),
			channelC:            C.PS6000_TRIGGER_STATE(c.ChannelC),
			channelD:            C.PS6000_TRIGGER_STATE(c.ChannelD),
			external:            C.PS6000_TRIGGER_STATE(c.External),
			aux:                 C.PS6000_TRIGGER_STATE(c.Aux),
			pulseWidthQualifier: C.PS6000_TRIGGER_STATE(c.PulseWidthQualifier),
		}
	}
	return status(C.ps6000SetTriggerChannelConditions(C.int16_t(handle), ptr, C.int16_t(n)))
}

// SetTriggerChannelDirections implements driver.Driver
func (d *Driver) SetTriggerChannelDirections(handle driver.Handle, dirs driver.TriggerDirections) driver.Status {
	return status(C.ps6000SetTriggerChannelDirections(C.int16_t(handle),
		C.PS6000_THRESHOLD_DIRECTION(dirs.ChannelA),
		C.PS6000_THRESHOLD_DIRECTION(dirs.ChannelB),
		C.PS6000_THRESHOLD_DIRECTION(dirs.ChannelC),
		C.PS6000_THRESHOLD_DIRECTION(dirs.ChannelD),
		C.PS6000_THRESHOLD_DIRECTION(dirs.External),
		C.PS6000_THRESHOLD_DIRECTION(dirs.Aux),
	))
}

// SetTriggerDelay implements driver.Driver
func (d *Driver) SetTriggerDelay(handle driver.Handle, delay uint32) driver.Status {
	return status(C.ps6000SetTriggerDelay(C.int16_t(handle), C.uint32_t(delay)))
}

// SetPulseWidthQualifier implements driver.Driver
func (d *Driver) SetPulseWidthQualifier(handle driver.Handle, q driver.PulseWidthQualifier) driver.Status {
	n := len(q.Conditions)
	var ptr *C.PS6000_PWQ_CONDITIONS
	if n > 0 {
		ptr = (*C.PS6000_PWQ_CONDITIONS)(C.malloc(C.size_t(n) * C.sizeof_PS6000_PWQ_CONDITIONS))
		defer C.free(unsafe.Pointer(ptr))

		arr := unsafe.Slice(ptr, n)
		for i, c := range q.Conditions {
			arr[i] = C.PS6000_PWQ_CONDITIONS{
				channelA: C.PS6000_TRIGGER_STATE(c.ChannelA),
				channelB: C.PS6000_TRIGGER_STATE(c.ChannelB),
				channelC: C.PS6000_TRIGGER_STATE(c.ChannelC),
				channelD: C.PS6000_TRIGGER_STATE(c.ChannelD),
				external: C.PS6000_TRIGGER_STATE(c.External),
				aux:      C.PS6000_TRIGGER_STATE(c.Aux),
			}
		}
	}
	return status(C.ps6000SetPulseWidthQualifier(C.int16_t(handle), ptr, C.int16_t(n),
		C.PS6000_THRESHOLD_DIRECTION(q.Direction), C.uint32_t(q.Lower), C.uint32_t(q.Upper), C.PS6000_PULSE_WIDTH_TYPE(q.Type)))
}

// RunBlock implements driver.Driver. Completion is polled with IsReady;
// no callback is registered.
func (d *Driver) RunBlock(handle driver.Handle, preTrigger, postTrigger, timebase uint32, oversample int16, segmentIndex uint32) (int32, driver.Status) {
	var indisposed C.int32_t
	st := C.ps6000RunBlock(C.int16_t(handle), C.uint32_t(preTrigger), C.uint32_t(postTrigger), C.uint32_t(timebase),
		C.int16_t(oversample), &indisposed, C.uint32_t(segmentIndex), nil, nil)
	return int32(indisposed), status(st)
}

// IsReady implements driver.Driver
func (d *Driver) IsReady(handle driver.Handle) (bool, driver.Status) {
	var ready C.int16_t
	st := C.ps6000IsReady(C.int16_t(handle), &ready)
	return ready != 0, status(st)
}

// Stop implements driver.Driver
func (d *Driver) Stop(handle driver.Handle) driver.Status {
	return status(C.ps6000Stop(C.int16_t(handle)))
}

// GetNoOfCaptures implements driver.Driver
func (d *Driver) GetNoOfCaptures(handle driver.Handle) (uint32, driver.Status) {
	var n C.uint32_t
	st := C.ps6000GetNoOfCaptures(C.int16_t(handle), &n)
	return uint32(n), status(st)
}

// SetDataBufferBulk implements driver.Driver. buffer receives the samples
// when GetValuesBulk returns.
func (d *Driver) SetDataBufferBulk(handle driver.Handle, channel driver.Channel, buffer []int16, segmentIndex uint32, mode driver.RatioMode) driver.Status {
	d.mu.Lock()
	defer d.mu.Unlock()

	segs := d.buffers[handle]
	if segs == nil {
		segs = make(map[uint32]*bulkBuffer)
		d.buffers[handle] = segs
	}

	b := segs[segmentIndex]
	if b == nil || b.n < len(buffer) {
		if b != nil {
			C.free(unsafe.Pointer(b.c))
		}
		n := len(buffer)
		if n == 0 {
			n = 1
		}
		b = &bulkBuffer{c: (*C.int16_t)(C.malloc(C.size_t(n) * C.sizeof_int16_t)), n: n}
		segs[segmentIndex] = b
	}
	b.dst = buffer

	return status(C.ps6000SetDataBufferBulk(C.int16_t(handle), C.PS6000_CHANNEL(channel), b.c,
		C.uint32_t(len(buffer)), C.uint32_t(segmentIndex), C.PS6000_RATIO_MODE(mode)))
}

// GetValuesBulk implements driver.Driver
func (d *Driver) GetValuesBulk(handle driver.Handle, samples, fromSegment, toSegment, downsampleRatio uint32, mode driver.RatioMode) (uint32, []int16, driver.Status) {
	if toSegment < fromSegment {
		return 0, nil, driver.StatusSegmentOutOfRange
	}
	count := int(toSegment - fromSegment + 1)

	cOverflow := (*C.int16_t)(C.malloc(C.size_t(count) * C.sizeof_int16_t))
	defer C.free(unsafe.Pointer(cOverflow))
	C.memset(unsafe.Pointer(cOverflow), 0, C.size_t(count)*C.sizeof_int16_t)

	n := C.uint32_t(samples)
	st := status(C.ps6000GetValuesBulk(C.int16_t(handle), &n, C.uint32_t(fromSegment), C.uint32_t(toSegment),
		C.uint32_t(downsampleRatio), C.PS6000_RATIO_MODE(mode), cOverflow))
	if !st.OK() {
		return 0, nil, st
	}

	overflow := make([]int16, count)
	for i, v := range unsafe.Slice(cOverflow, count) {
		overflow[i] = int16(v)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for seg := fromSegment; seg <= toSegment; seg++ {
		b := d.buffers[handle][seg]
		if b == nil {
			continue
		}
		src := unsafe.Slice((*int16)(unsafe.Pointer(b.c)), b.n)
		copy(b.dst, src[:min(int(n), len(b.dst))])
	}

	d.logger.Debug("Bulk values retrieved",
		zap.Uint32("samples", uint32(n)),
		zap.Int("segments", count),
	)
	return uint32(n), overflow, st
}

func (d *Driver) releaseBuffers(handle driver.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, b := range d.buffers[handle] {
		C.free(unsafe.Pointer(b.c))
	}
	delete(d.buffers, handle)
}

var _ driver.Driver = (*Driver)(nil)
