// internal/acquisition/harvester.go
package acquisition

import (
	"sync"

	"go.uber.org/zap"

	"digitizer-service/pkg/driver"
)

// Summary describes the last harvested capture. Gain, Offset, XIncrement
// and the initial-X fields are not derived from calibration data and are
// always zero; do not use them for scaling.
type Summary struct {
	Length           uint32  `json:"length"`
	AbsoluteInitialX float64 `json:"absolute_initial_x"`
	RelativeInitialX float64 `json:"relative_initial_x"`
	ActualSamples    uint32  `json:"actual_samples"`
	Gain             float64 `json:"gain"`
	Offset           float64 `json:"offset"`
	XIncrement       float64 `json:"x_increment"`
	SamplingRate     float64 `json:"sampling_rate"`
	Shots            uint32  `json:"shots"`
	RealShots        uint32  `json:"real_shots"`
	TotalShots       uint32  `json:"total_shots"`
}

// Capture is the result of FetchData. Data aliases the session buffer.
type Capture struct {
	Data      []byte  `json:"-"`
	Summary   Summary `json:"summary"`
	Samples   uint32  `json:"samples"`
	Segments  uint32  `json:"segments"`
	Completed uint32  `json:"completed"`
	Retrieved uint32  `json:"retrieved"`
	Overflow  []int16 `json:"overflow,omitempty"`
}

// Segment returns the bytes of capture i
func (c *Capture) Segment(i int) []byte {
	n := int(c.Samples)
	if i < 0 || i >= int(c.Segments) || (i+1)*n > len(c.Data) {
		return nil
	}
	return c.Data[i*n : (i+1)*n]
}

// Downsample reduces a native sample to its top 8 bits, keeping the sign
func Downsample(v int16) byte {
	return byte(int8(v >> 8))
}

// FetchData harvests channel A of every segment into the session buffer.
// It requires a completed WaitForAcquisition. On failure no data is
// written and the driver run is stopped.
func (s *Session) FetchData() (*Capture, error) {
	const op = "fetch data"

	if !s.ready {
		return nil, &Error{Op: op, Kind: ErrNotReady, Status: driver.StatusUnknownError}
	}
	if err := s.requireOpen(op); err != nil {
		return nil, err
	}

	defer s.stop()

	completed, st := s.drv.GetNoOfCaptures(s.handle)
	if !st.OK() {
		return nil, callFailed(op, "GetNoOfCaptures", st)
	}
	if completed == 0 {
		return nil, &Error{Op: op, Call: "GetNoOfCaptures", Kind: ErrNoCaptures, Status: driver.StatusNoSamplesAvailable}
	}

	samples := s.horizontal.Samples
	segments := s.horizontal.Segments

	scratch := acquireScratch(int(segments), int(samples))
	defer scratch.release()

	for seg := uint32(0); seg < segments; seg++ {
		if st := s.drv.SetDataBufferBulk(s.handle, signalChannel, scratch.segment(int(seg)), seg, driver.RatioNone); !st.OK() {
			return nil, callFailed(op, "SetDataBufferBulk", st)
		}
	}

	retrieved, overflow, st := s.drv.GetValuesBulk(s.handle, samples, 0, segments-1, 1, driver.RatioNone)
	if !st.OK() {
		return nil, callFailed(op, "GetValuesBulk", st)
	}

	if len(s.buffer) < s.BufferLength() {
		s.buffer = make([]byte, s.BufferLength())
	}
	for seg := 0; seg < int(segments); seg++ {
		base := seg * int(samples)
		for i, v := range scratch.segment(seg) {
			s.buffer[base+i] = Downsample(v)
		}
	}

	s.summary = Summary{
		Length:        samples,
		ActualSamples: samples,
		SamplingRate:  s.horizontal.RateGHz * 1e9,
		Shots:         segments,
	}

	s.logger.Debug("Data harvested",
		zap.Uint32("completed", completed),
		zap.Uint32("retrieved", retrieved),
		zap.Uint32("segments", segments),
	)

	return &Capture{
		Data:      s.buffer,
		Summary:   s.summary,
		Samples:   samples,
		Segments:  segments,
		Completed: completed,
		Retrieved: retrieved,
		Overflow:  overflow,
	}, nil
}

// stop ends the driver run. Its status is logged, not returned.
func (s *Session) stop() {
	s.running = false
	if st := s.drv.Stop(s.handle); !st.OK() {
		s.logger.Warn("Stop reported failure", zap.Stringer("status", st))
	}
}

// maxPooledSamples caps the scratch capacity kept between harvests
const maxPooledSamples = 1 << 22

// scratch holds per-segment native buffers for one harvest
type scratch struct {
	samples int
	data    []int16
}

var scratchPool = sync.Pool{
	New: func() interface{} { return &scratch{} },
}

func acquireScratch(segments, samples int) *scratch {
	sc := scratchPool.Get().(*scratch)
	n := segments * samples
	if cap(sc.data) < n {
		sc.data = make([]int16, n)
	} else {
		sc.data = sc.data[:n]
		for i := range sc.data {
			sc.data[i] = 0
		}
	}
	sc.samples = samples
	return sc
}

func (sc *scratch) segment(i int) []int16 {
	return sc.data[i*sc.samples : (i+1)*sc.samples : (i+1)*sc.samples]
}

func (sc *scratch) release() {
	sc.samples = 0
	if cap(sc.data) > maxPooledSamples {
		sc.data = nil
		return
	}
	sc.data = sc.data[:0]
	scratchPool.Put(sc)
}
