package acquisition

import (
	"digitizer-service/pkg/driver"
)

// mockDriver records every call and serves scripted results
type mockDriver struct {
	calls map[string]int
	order []string
	fail  map[string]driver.Status

	variant    string
	serial     string
	readyAfter int
	captures   uint32
	sample     func(segment uint32, i int) int16

	buffers    map[uint32][]int16
	delay      uint32
	properties []driver.TriggerChannelProperties
	conditions []driver.TriggerConditions
	directions driver.TriggerDirections
	channels   map[driver.Channel]mockChannel
	runArgs    [3]uint32
}

type mockChannel struct {
	enabled   bool
	coupling  driver.Coupling
	rng       driver.Range
	offset    float32
	bandwidth driver.BandwidthLimiter
}

func newMockDriver() *mockDriver {
	return &mockDriver{
		calls:    make(map[string]int),
		fail:     make(map[string]driver.Status),
		variant:  "6404D",
		captures: 20,
		serial:   "CY123/0042",
		buffers:  make(map[uint32][]int16),
		channels: make(map[driver.Channel]mockChannel),
		sample:   func(segment uint32, i int) int16 { return int16(segment)<<8 | int16(i&0x7F) },
	}
}

func (m *mockDriver) record(name string) driver.Status {
	m.calls[name]++
	m.order = append(m.order, name)
	if st, ok := m.fail[name]; ok {
		return st
	}
	return driver.StatusOK
}

func (m *mockDriver) total() int {
	return len(m.order)
}

func (m *mockDriver) OpenUnit(serial string) (driver.Handle, driver.Status) {
	if st := m.record("OpenUnit"); !st.OK() {
		return 0, st
	}
	return 7, driver.StatusOK
}

func (m *mockDriver) CloseUnit(handle driver.Handle) driver.Status {
	return m.record("CloseUnit")
}

func (m *mockDriver) GetUnitInfo(handle driver.Handle, info driver.InfoKind) (string, driver.Status) {
	if st := m.record("GetUnitInfo"); !st.OK() {
		return "", st
	}
	switch info {
	case driver.InfoVariant:
		return m.variant, driver.StatusOK
	case driver.InfoBatchAndSerial:
		return m.serial, driver.StatusOK
	}
	return "", driver.StatusInvalidInfo
}

func (m *mockDriver) SetEts(handle driver.Handle, mode driver.EtsMode, cycles, interleave int16) (int64, driver.Status) {
	return 0, m.record("SetEts")
}

func (m *mockDriver) SetChannel(handle driver.Handle, channel driver.Channel, enabled bool, coupling driver.Coupling, rng driver.Range, offset float32, bandwidth driver.BandwidthLimiter) driver.Status {
	st := m.record("SetChannel")
	if st.OK() {
		m.channels[channel] = mockChannel{enabled, coupling, rng, offset, bandwidth}
	}
	return st
}

func (m *mockDriver) MemorySegments(handle driver.Handle, segments uint32) (uint32, driver.Status) {
	return 1 << 20 / segments, m.record("MemorySegments")
}

func (m *mockDriver) SetNoOfCaptures(handle driver.Handle, captures uint32) driver.Status {
	return m.record("SetNoOfCaptures")
}

func (m *mockDriver) SetTriggerChannelProperties(handle driver.Handle, properties []driver.TriggerChannelProperties, auxOutputEnable int16, autoTriggerMs int32) driver.Status {
	m.properties = properties
	return m.record("SetTriggerChannelProperties")
}

func (m *mockDriver) SetTriggerChannelConditions(handle driver.Handle, conditions []driver.TriggerConditions) driver.Status {
	m.conditions = conditions
	return m.record("SetTriggerChannelConditions")
}

func (m *mockDriver) SetTriggerChannelDirections(handle driver.Handle, directions driver.TriggerDirections) driver.Status {
	m.directions = directions
	return m.record("SetTriggerChannelDirections")
}

func (m *mockDriver) SetTriggerDelay(handle driver.Handle, delay uint32) driver.Status {
	m.delay = delay
	return m.record("SetTriggerDelay")
}

func (m *mockDriver) SetPulseWidthQualifier(handle driver.Handle, qualifier driver.PulseWidthQualifier) driver.Status {
	return m.record("SetPulseWidthQualifier")
}

func (m *mockDriver) RunBlock(handle driver.Handle, preTrigger, postTrigger, timebase uint32, oversample int16, segmentIndex uint32) (int32, driver.Status) {
	m.runArgs = [3]uint32{preTrigger, postTrigger, timebase}
	return 0, m.record("RunBlock")
}

func (m *mockDriver) IsReady(handle driver.Handle) (bool, driver.Status) {
	if st := m.record("IsReady"); !st.OK() {
		return false, st
	}
	return m.calls["IsReady"] > m.readyAfter, driver.StatusOK
}

func (m *mockDriver) Stop(handle driver.Handle) driver.Status {
	return m.record("Stop")
}

func (m *mockDriver) GetNoOfCaptures(handle driver.Handle) (uint32, driver.Status) {
	if st := m.record("GetNoOfCaptures"); !st.OK() {
		return 0, st
	}
	return m.captures, driver.StatusOK
}

func (m *mockDriver) SetDataBufferBulk(handle driver.Handle, channel driver.Channel, buffer []int16, segmentIndex uint32, mode driver.RatioMode) driver.Status {
	st := m.record("SetDataBufferBulk")
	if st.OK() {
		m.buffers[segmentIndex] = buffer
	}
	return st
}

func (m *mockDriver) GetValuesBulk(handle driver.Handle, samples, fromSegment, toSegment, downsampleRatio uint32, mode driver.RatioMode) (uint32, []int16, driver.Status) {
	if st := m.record("GetValuesBulk"); !st.OK() {
		return 0, nil, st
	}
	overflow := make([]int16, toSegment-fromSegment+1)
	for seg := fromSegment; seg <= toSegment; seg++ {
		buf := m.buffers[seg]
		for i := 0; i < int(samples) && i < len(buf); i++ {
			buf[i] = m.sample(seg, i)
		}
	}
	return samples, overflow, driver.StatusOK
}

var _ driver.Driver = (*mockDriver)(nil)
