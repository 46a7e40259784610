// internal/service/acquisition_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"digitizer-service/internal/acquisition"
	"digitizer-service/internal/config"
	"digitizer-service/internal/metrics"
	"digitizer-service/internal/model"
	"digitizer-service/internal/repository"
	"digitizer-service/internal/utils"
	"digitizer-service/internal/worker"
	"digitizer-service/pkg/driver"
)

// ErrNoCapture is returned by LastCapture before the first harvest
var ErrNoCapture = errors.New("no capture harvested yet")

// Operation names used for logging, metrics and events
const (
	OpOpen          = "open"
	OpClose         = "close"
	OpStatus        = "status"
	OpSetVertical   = "set_vertical"
	OpSetHorizontal = "set_horizontal"
	OpSetTrigger    = "set_trigger"
	OpApplyOptions  = "apply_options"
	OpSetDigitizer  = "set_digitizer"
	OpRun           = "run_acquisition"
	OpWait          = "wait_acquisition"
	OpFetch         = "fetch_data"
	OpCapture       = "capture"
	OpTakeBuffer    = "take_buffer"
	OpSetBuffer     = "set_buffer"
	OpBufferInfo    = "buffer_info"
)

const eventSource = "acquisition-service"

// EventPublisher receives session events
type EventPublisher interface {
	PublishEvent(event *model.DigitizerEvent)
}

type nopPublisher struct{}

func (nopPublisher) PublishEvent(*model.DigitizerEvent) {}

// AcquisitionService owns the digitizer session and serializes every
// operation on it through a single worker.
type AcquisitionService struct {
	session    *acquisition.Session
	driverName string
	worker     *worker.Worker
	repo       repository.CaptureRepository
	metrics    *metrics.Metrics
	publisher  EventPublisher
	config     *config.Config

	logger      *utils.ServiceLogger
	instrument  *utils.InstrumentLogger
	auditLogger *utils.AuditLogger

	// touched only on the worker goroutine
	runStarted time.Time

	// read without queueing behind the worker
	snapshot atomic.Pointer[StatusInfo]
	active   atomic.Pointer[ActiveOperation]

	mu          sync.RWMutex
	lastRecord  *model.CaptureRecord
	lastCapture *acquisition.Capture
}

// NewAcquisitionService creates the service around drv and applies the
// configured power-on settings. publisher may be nil.
func NewAcquisitionService(
	drv driver.Driver,
	driverName string,
	repo repository.CaptureRepository,
	m *metrics.Metrics,
	publisher EventPublisher,
	cfg *config.Config,
	logger *zap.Logger,
) (*AcquisitionService, error) {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if m == nil {
		m = metrics.New(nil)
	}

	dc := cfg.Digitizer
	session := acquisition.NewSession(drv,
		acquisition.WithLogger(logger.With(zap.String("component", "session"))),
		acquisition.WithPollInterval(dc.PollInterval),
		acquisition.WithSerial(dc.Serial),
	)

	if err := applyDefaults(session, dc); err != nil {
		return nil, fmt.Errorf("invalid digitizer defaults: %w", err)
	}

	svc := &AcquisitionService{
		session:     session,
		driverName:  driverName,
		worker:      worker.New("digitizer", 64, logger),
		repo:        repo,
		metrics:     m,
		publisher:   publisher,
		config:      cfg,
		logger:      utils.NewServiceLogger(logger, "acquisition-service"),
		instrument:  utils.NewInstrumentLogger(logger, driverName),
		auditLogger: utils.NewAuditLogger(logger),
	}
	svc.snapshot.Store(svc.statusLocked())
	return svc, nil
}

func applyDefaults(s *acquisition.Session, dc config.DigitizerConfig) error {
	v := acquisition.DefaultVertical()
	if dc.Vertical.Range != "" {
		r, err := driver.ParseRange(dc.Vertical.Range)
		if err != nil {
			return err
		}
		v.Range = r
	}
	bw, err := driver.ParseBandwidth(dc.Vertical.Bandwidth)
	if err != nil {
		return err
	}
	v.Bandwidth = bw
	v.Offset = dc.Vertical.Offset
	s.SetVertical(v)

	h := acquisition.DefaultHorizontal()
	rate, samples, segments := h.RateGHz, int(h.Samples), int(h.Segments)
	if dc.Horizontal.SampleRateGHz > 0 {
		rate = dc.Horizontal.SampleRateGHz
	}
	if dc.Horizontal.Samples > 0 {
		samples = dc.Horizontal.Samples
	}
	if dc.Horizontal.Segments > 0 {
		segments = dc.Horizontal.Segments
	}
	if err := s.SetHorizontal(rate, samples, segments); err != nil {
		return err
	}
	return s.SetTrigger(dc.Trigger.Delay)
}

// do runs fn on the worker under an operation logger and records the
// outcome in metrics and, on failure, as an event.
func (s *AcquisitionService) do(ctx context.Context, op string, timeout time.Duration, fn func(ctx context.Context, ol *utils.OperationLogger) (interface{}, error)) (interface{}, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ol := utils.NewOperationLogger(s.logger.Logger, op, uuid.NewString())
	s.metrics.SetQueueDepth(s.worker.Pending() + 1)

	result, err := s.worker.Do(ctx, op, func() (interface{}, error) {
		defer s.track(op)()
		ol.Start()
		return fn(ctx, ol)
	})

	s.metrics.SetQueueDepth(s.worker.Pending())
	s.metrics.ObserveOperation(op, err, ol.Elapsed())

	if err != nil {
		status := acquisition.StatusOf(err)
		ol.Error(err, zap.Stringer("driver_status", status))
		s.publishFailure(op, ol.ID(), err)
		if st := driverStatus(err); st != "" {
			s.metrics.DriverError(st)
		}
		return nil, err
	}

	ol.Success()
	return result, nil
}

// driverStatus names the status a failed driver call returned, or ""
// when err did not come from the driver
func driverStatus(err error) string {
	var aerr *acquisition.Error
	if !errors.As(err, &aerr) || aerr.Status.OK() {
		return ""
	}
	return aerr.Status.String()
}

func (s *AcquisitionService) opTimeout() time.Duration {
	return s.config.Digitizer.OperationTimeout
}

// waitBudget bounds operations that include a ready wait
func (s *AcquisitionService) waitBudget() time.Duration {
	if s.config.Digitizer.OperationTimeout <= 0 {
		return 0
	}
	return s.config.Digitizer.OperationTimeout + s.config.Digitizer.WaitTimeout
}

func (s *AcquisitionService) publish(eventType model.EventType, data model.JSONObject) {
	s.publisher.PublishEvent(model.NewEvent(eventType, eventSource, data))
}

func (s *AcquisitionService) publishFailure(op, opID string, err error) {
	kind := "unknown"
	var aerr *acquisition.Error
	if errors.As(err, &aerr) {
		kind = aerr.Kind.Error()
	} else if errors.Is(err, context.DeadlineExceeded) {
		kind = "deadline exceeded"
	}

	data := model.OperationFailedEventData{
		Operation:    op,
		OperationID:  opID,
		Kind:         kind,
		ErrorMessage: err.Error(),
	}
	data.DriverStatus = driverStatus(err)

	event := model.NewEvent(model.EventOperationFailed, eventSource, model.JSONObject{
		"operation":     data.Operation,
		"operation_id":  data.OperationID,
		"kind":          data.Kind,
		"driver_status": data.DriverStatus,
		"error_message": data.ErrorMessage,
	})
	event.Severity = model.SeverityError
	s.publisher.PublishEvent(event)
}

// Open acquires the unit. Non-nil opts are applied after a successful open.
func (s *AcquisitionService) Open(ctx context.Context, opts *Options) (*StatusInfo, error) {
	result, err := s.do(ctx, OpOpen, s.opTimeout(), func(ctx context.Context, ol *utils.OperationLogger) (interface{}, error) {
		if err := s.session.Open(); err != nil {
			s.instrument.LogConnection("open", err)
			return nil, err
		}
		s.instrument.Identify(string(s.session.Model()), s.session.SerialNumber()).LogConnection("open", nil)
		s.metrics.SetSessionOpen(true)

		if opts != nil {
			if err := s.applyOptions(opts); err != nil {
				return nil, err
			}
		}

		s.publish(model.EventDigitizerOpened, model.JSONObject{
			"driver":  s.driverName,
			"model":   string(s.session.Model()),
			"variant": s.session.Variant(),
			"serial":  s.session.SerialNumber(),
		})
		return s.statusLocked(), nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*StatusInfo), nil
}

// Close releases the unit. It is safe to call on a closed session.
func (s *AcquisitionService) Close(ctx context.Context) error {
	_, err := s.do(ctx, OpClose, s.opTimeout(), func(ctx context.Context, ol *utils.OperationLogger) (interface{}, error) {
		wasOpen := s.session.IsOpen()
		err := s.session.Close()
		s.metrics.SetSessionOpen(false)
		s.instrument.LogConnection("close", err)
		if wasOpen {
			s.publish(model.EventDigitizerClosed, model.JSONObject{
				"driver": s.driverName,
				"serial": s.session.SerialNumber(),
			})
		}
		return nil, err
	})
	return err
}

// Status returns a snapshot of the session state
func (s *AcquisitionService) Status(ctx context.Context) (*StatusInfo, error) {
	result, err := s.worker.Do(ctx, OpStatus, func() (interface{}, error) {
		info := s.statusLocked()
		s.snapshot.Store(info)
		copied := *info
		return &copied, nil
	})
	if err != nil {
		return nil, err
	}
	info := result.(*StatusInfo)
	info.Pending = s.worker.Pending()
	return info, nil
}

// track marks op as running on the worker. The returned func publishes
// the resulting session snapshot and clears the mark.
func (s *AcquisitionService) track(op string) func() {
	s.active.Store(&ActiveOperation{Name: op, StartedAt: time.Now()})
	return func() {
		s.snapshot.Store(s.statusLocked())
		s.active.Store(nil)
	}
}

// Snapshot returns the session state as of the last finished operation
// and the operation running now, if any. It never waits for the worker.
func (s *AcquisitionService) Snapshot() (*StatusInfo, *ActiveOperation) {
	info := *s.snapshot.Load()
	info.Pending = s.worker.Pending()

	var active *ActiveOperation
	if a := s.active.Load(); a != nil {
		copied := *a
		active = &copied
	}
	return &info, active
}

// Stalled reports an operation that has outlived the longest budget any
// operation is given, which means a driver call is hanging.
func (s *AcquisitionService) Stalled(a *ActiveOperation) bool {
	limit := s.waitBudget()
	if a == nil || limit <= 0 {
		return false
	}
	return time.Since(a.StartedAt) > limit
}

func (s *AcquisitionService) statusLocked() *StatusInfo {
	return &StatusInfo{
		Open:           s.session.IsOpen(),
		Driver:         s.driverName,
		Model:          string(s.session.Model()),
		Variant:        s.session.Variant(),
		Serial:         s.session.SerialNumber(),
		Vertical:       s.session.Vertical(),
		Horizontal:     s.session.Horizontal(),
		Trigger:        s.session.Trigger(),
		SampleInterval: s.session.SampleInterval(),
		BufferLength:   s.session.BufferLength(),
		SegmentOffset:  s.session.SegmentOffset(),
		SegmentCount:   s.session.SegmentCount(),
		Running:        s.session.Running(),
		Ready:          s.session.Ready(),
		Summary:        s.session.Summary(),
	}
}

// SetVertical validates and stores the vertical setting, returning the
// effective value after model overrides.
func (s *AcquisitionService) SetVertical(ctx context.Context, v acquisition.VerticalConfig) (acquisition.VerticalConfig, error) {
	result, err := s.do(ctx, OpSetVertical, s.opTimeout(), func(ctx context.Context, ol *utils.OperationLogger) (interface{}, error) {
		if err := v.Validate(); err != nil {
			return nil, invalidParameter(OpSetVertical, err)
		}
		old := s.session.Vertical()
		applied := s.session.SetVertical(v)
		s.configChanged("vertical", old, applied)
		return applied, nil
	})
	if err != nil {
		return acquisition.VerticalConfig{}, err
	}
	return result.(acquisition.VerticalConfig), nil
}

// SetHorizontal stores the sampling setting. Rejected values keep the
// previous setting.
func (s *AcquisitionService) SetHorizontal(ctx context.Context, rateGHz float64, samples, segments int) (acquisition.HorizontalConfig, error) {
	result, err := s.do(ctx, OpSetHorizontal, s.opTimeout(), func(ctx context.Context, ol *utils.OperationLogger) (interface{}, error) {
		old := s.session.Horizontal()
		if err := s.session.SetHorizontal(rateGHz, samples, segments); err != nil {
			return nil, err
		}
		s.configChanged("horizontal", old, s.session.Horizontal())
		return s.session.Horizontal(), nil
	})
	if err != nil {
		return acquisition.HorizontalConfig{}, err
	}
	return result.(acquisition.HorizontalConfig), nil
}

// SetTrigger stores the trigger delay in seconds
func (s *AcquisitionService) SetTrigger(ctx context.Context, delay float64) (acquisition.TriggerConfig, error) {
	result, err := s.do(ctx, OpSetTrigger, s.opTimeout(), func(ctx context.Context, ol *utils.OperationLogger) (interface{}, error) {
		old := s.session.Trigger()
		if err := s.session.SetTrigger(delay); err != nil {
			return nil, err
		}
		s.configChanged("trigger", old, s.session.Trigger())
		return s.session.Trigger(), nil
	})
	if err != nil {
		return acquisition.TriggerConfig{}, err
	}
	return result.(acquisition.TriggerConfig), nil
}

// ApplyOptions applies an option object in vertical, horizontal, trigger
// order. Absent fields keep their current value.
func (s *AcquisitionService) ApplyOptions(ctx context.Context, opts *Options) (*StatusInfo, error) {
	result, err := s.do(ctx, OpApplyOptions, s.opTimeout(), func(ctx context.Context, ol *utils.OperationLogger) (interface{}, error) {
		if err := s.applyOptions(opts); err != nil {
			return nil, err
		}
		return s.statusLocked(), nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*StatusInfo), nil
}

func (s *AcquisitionService) applyOptions(opts *Options) error {
	if opts == nil {
		return nil
	}
	if opts.Channel != nil && driver.Channel(*opts.Channel) != driver.ChannelA {
		return invalidParameter(OpApplyOptions, fmt.Errorf("channel %d is not the signal channel", *opts.Channel))
	}

	v := opts.vertical(s.session.Vertical())
	if err := v.Validate(); err != nil {
		return invalidParameter(OpApplyOptions, err)
	}

	if opts.hasVertical() {
		old := s.session.Vertical()
		s.configChanged("vertical", old, s.session.SetVertical(v))
	}

	if opts.hasHorizontal() {
		old := s.session.Horizontal()
		rate, samples, segments := opts.horizontal(old)
		if err := s.session.SetHorizontal(rate, samples, segments); err != nil {
			return err
		}
		s.configChanged("horizontal", old, s.session.Horizontal())
	}

	if opts.TriggerDelay != nil {
		old := s.session.Trigger()
		if err := s.session.SetTrigger(*opts.TriggerDelay); err != nil {
			return err
		}
		s.configChanged("trigger", old, s.session.Trigger())
	}
	return nil
}

func (s *AcquisitionService) configChanged(section string, old, applied interface{}) {
	s.auditLogger.LogConfigurationChange(section, old, applied)
	s.publish(model.EventConfigUpdated, model.JSONObject{
		"section": section,
		"value":   applied,
	})
}

// SetDigitizer programs the instrument for a block capture. With repeat
// set it only re-arms bookkeeping for the existing program.
func (s *AcquisitionService) SetDigitizer(ctx context.Context, repeat bool) (*BufferInfo, error) {
	result, err := s.do(ctx, OpSetDigitizer, s.opTimeout(), func(ctx context.Context, ol *utils.OperationLogger) (interface{}, error) {
		if err := s.setDigitizer(repeat); err != nil {
			return nil, err
		}
		return s.bufferInfo(), nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*BufferInfo), nil
}

func (s *AcquisitionService) setDigitizer(repeat bool) error {
	if err := s.session.SetDigitizer(repeat); err != nil {
		return err
	}
	s.publish(model.EventDigitizerArmed, model.JSONObject{
		"repeat":        repeat,
		"segments":      s.session.SegmentCount(),
		"samples":       s.session.Horizontal().Samples,
		"buffer_length": s.session.BufferLength(),
	})
	return nil
}

// RunAcquisition starts a block run
func (s *AcquisitionService) RunAcquisition(ctx context.Context) error {
	_, err := s.do(ctx, OpRun, s.opTimeout(), func(ctx context.Context, ol *utils.OperationLogger) (interface{}, error) {
		return nil, s.runAcquisition()
	})
	return err
}

func (s *AcquisitionService) runAcquisition() error {
	if err := s.session.RunAcquisition(); err != nil {
		return err
	}
	s.runStarted = time.Now()
	s.publish(model.EventAcquisitionStarted, model.JSONObject{
		"segments": s.session.SegmentCount(),
	})
	return nil
}

// WaitForAcquisition blocks until the run completes, bounded by the
// configured wait timeout.
func (s *AcquisitionService) WaitForAcquisition(ctx context.Context) error {
	_, err := s.do(ctx, OpWait, s.waitBudget(), func(ctx context.Context, ol *utils.OperationLogger) (interface{}, error) {
		return nil, s.waitForAcquisition(ctx, ol)
	})
	return err
}

func (s *AcquisitionService) waitForAcquisition(ctx context.Context, ol *utils.OperationLogger) error {
	if timeout := s.config.Digitizer.WaitTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := s.session.WaitForAcquisition(ctx); err != nil {
		return err
	}

	wait := time.Since(s.runStarted)
	s.metrics.ObserveWait(wait)
	ol.Progress("Acquisition ready", 0.75, zap.Duration("wait", wait))
	s.publish(model.EventAcquisitionReady, model.JSONObject{
		"wait_ms": wait.Milliseconds(),
	})
	return nil
}

// FetchData harvests the completed run. The returned capture holds a copy
// of the session buffer.
func (s *AcquisitionService) FetchData(ctx context.Context) (*CaptureResult, error) {
	result, err := s.do(ctx, OpFetch, s.opTimeout(), func(ctx context.Context, ol *utils.OperationLogger) (interface{}, error) {
		record := s.newRecord(false)
		capture, err := s.session.FetchData()
		if err != nil {
			s.metrics.ObserveCapture(string(model.CaptureStatusFailed), 0, 0)
			return nil, err
		}
		return s.completeCapture(ctx, record, capture, false), nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*CaptureResult), nil
}

// Capture runs the whole sequence (setup, run, wait, fetch) as one worker
// task and records the outcome.
func (s *AcquisitionService) Capture(ctx context.Context, repeat bool) (*CaptureResult, error) {
	result, err := s.do(ctx, OpCapture, s.waitBudget(), func(ctx context.Context, ol *utils.OperationLogger) (interface{}, error) {
		record := s.newRecord(repeat)
		if err := s.repo.Create(ctx, record); err != nil {
			s.logger.Warn("Failed to persist capture record", zap.Error(err))
		}

		fail := func(err error) (interface{}, error) {
			record.Fail(err, driverStatus(err), time.Now())
			if uerr := s.repo.Update(ctx, record); uerr != nil {
				s.logger.Warn("Failed to update capture record", zap.Error(uerr))
			}
			s.metrics.ObserveCapture(string(model.CaptureStatusFailed), 0, 0)
			return nil, err
		}

		if err := s.setDigitizer(repeat); err != nil {
			return fail(err)
		}
		ol.Progress("Digitizer armed", 0.25)
		if err := s.runAcquisition(); err != nil {
			return fail(err)
		}
		ol.Progress("Acquisition started", 0.5)
		if err := s.waitForAcquisition(ctx, ol); err != nil {
			return fail(err)
		}
		capture, err := s.session.FetchData()
		if err != nil {
			return fail(err)
		}
		return s.completeCapture(ctx, record, capture, true), nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*CaptureResult), nil
}

func (s *AcquisitionService) newRecord(repeat bool) *model.CaptureRecord {
	h := s.session.Horizontal()
	return &model.CaptureRecord{
		ID:             uuid.New(),
		Driver:         s.driverName,
		Model:          string(s.session.Model()),
		Serial:         s.session.SerialNumber(),
		SampleRateGHz:  decimal.NewFromFloat(h.RateGHz),
		SampleInterval: decimal.NewFromFloat(s.session.SampleInterval()),
		Samples:        int(h.Samples),
		Segments:       int(h.Segments),
		BufferLength:   s.session.BufferLength(),
		TriggerDelay:   s.session.Trigger().Delay,
		VerticalRange:  s.session.Vertical().Range.String(),
		Repeat:         repeat,
		Status:         model.CaptureStatusRunning,
		StartedAt:      time.Now(),
	}
}

// completeCapture snapshots the harvest, finalizes its record and
// publishes it as the last capture. persisted tells whether the record
// was already created.
func (s *AcquisitionService) completeCapture(ctx context.Context, record *model.CaptureRecord, capture *acquisition.Capture, persisted bool) *CaptureResult {
	snapshot := *capture
	snapshot.Data = append([]byte(nil), capture.Data...)

	record.Completed = int(capture.Completed)
	record.Summary = summaryObject(capture)
	record.Finish(model.CaptureStatusCompleted, time.Now())

	var err error
	if persisted {
		err = s.repo.Update(ctx, record)
	} else {
		err = s.repo.Create(ctx, record)
	}
	if err != nil {
		s.logger.Warn("Failed to persist capture record", zap.String("capture_id", record.ID.String()), zap.Error(err))
	}

	s.metrics.ObserveCapture(string(model.CaptureStatusCompleted), len(snapshot.Data), capture.Retrieved)
	s.instrument.Identify(record.Model, record.Serial).
		LogCapture(record.ID.String(), capture.Completed, capture.Samples, len(snapshot.Data), time.Since(s.runStarted))

	s.publish(model.EventCaptureCompleted, model.JSONObject{
		"capture_id":    record.ID.String(),
		"samples":       capture.Samples,
		"segments":      capture.Segments,
		"completed":     capture.Completed,
		"buffer_length": len(snapshot.Data),
		"sampling_rate": capture.Summary.SamplingRate,
		"duration_ms":   *record.DurationMs,
	})

	s.mu.Lock()
	s.lastRecord = record
	s.lastCapture = &snapshot
	s.mu.Unlock()

	return &CaptureResult{Record: record, Capture: &snapshot}
}

func summaryObject(c *acquisition.Capture) model.JSONObject {
	obj := model.JSONObject{
		"length":         c.Summary.Length,
		"actual_samples": c.Summary.ActualSamples,
		"sampling_rate":  c.Summary.SamplingRate,
		"shots":          c.Summary.Shots,
		"real_shots":     c.Summary.RealShots,
		"total_shots":    c.Summary.TotalShots,
		"retrieved":      c.Retrieved,
	}
	overflowed := 0
	for _, flags := range c.Overflow {
		if flags != 0 {
			overflowed++
		}
	}
	obj["overflowed_segments"] = overflowed
	return obj
}

// LastCapture returns the most recent harvest of this process
func (s *AcquisitionService) LastCapture() (*CaptureResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.lastCapture == nil {
		return nil, ErrNoCapture
	}
	return &CaptureResult{Record: s.lastRecord, Capture: s.lastCapture}, nil
}

// GetCapture retrieves a capture record
func (s *AcquisitionService) GetCapture(ctx context.Context, id uuid.UUID) (*model.CaptureRecord, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("capture not found: %w", err)
	}
	return record, nil
}

// ListCaptures lists capture records, newest first
func (s *AcquisitionService) ListCaptures(ctx context.Context, filter *repository.CaptureFilter) ([]*model.CaptureRecord, *PaginationResult, error) {
	if filter == nil {
		filter = &repository.CaptureFilter{}
	}
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list captures: %w", err)
	}

	return records, &PaginationResult{
		Total:      total,
		Page:       filter.Page,
		PerPage:    filter.PerPage,
		TotalPages: (total + filter.PerPage - 1) / filter.PerPage,
	}, nil
}

// PurgeCaptures removes records older than the configured retention
func (s *AcquisitionService) PurgeCaptures(ctx context.Context) (int64, error) {
	retention := s.config.Database.Retention
	if retention <= 0 {
		return 0, nil
	}
	return s.repo.DeleteOlderThan(ctx, time.Now().Add(-retention))
}

// TakeBuffer transfers the session buffer to the caller
func (s *AcquisitionService) TakeBuffer(ctx context.Context) ([]byte, error) {
	result, err := s.do(ctx, OpTakeBuffer, s.opTimeout(), func(ctx context.Context, ol *utils.OperationLogger) (interface{}, error) {
		return s.session.TakeBuffer(), nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// SetBuffer swaps b in as the session buffer, dropping the previous one
func (s *AcquisitionService) SetBuffer(ctx context.Context, b []byte) error {
	_, err := s.do(ctx, OpSetBuffer, s.opTimeout(), func(ctx context.Context, ol *utils.OperationLogger) (interface{}, error) {
		s.session.SetBuffer(b)
		return nil, nil
	})
	return err
}

// Buffer returns the buffer geometry
func (s *AcquisitionService) Buffer(ctx context.Context) (*BufferInfo, error) {
	result, err := s.worker.Do(ctx, OpBufferInfo, func() (interface{}, error) {
		return s.bufferInfo(), nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*BufferInfo), nil
}

func (s *AcquisitionService) bufferInfo() *BufferInfo {
	return &BufferInfo{
		Length:        s.session.BufferLength(),
		SegmentOffset: s.session.SegmentOffset(),
		SegmentCount:  s.session.SegmentCount(),
		Allocated:     len(s.session.Buffer()),
	}
}

// Shutdown closes the session and stops the worker
func (s *AcquisitionService) Shutdown(ctx context.Context) {
	if err := s.Close(ctx); err != nil {
		s.logger.Warn("Failed to close digitizer on shutdown", zap.Error(err))
	}
	s.worker.Stop()
}

func invalidParameter(op string, err error) error {
	return &acquisition.Error{
		Op:     op,
		Kind:   acquisition.ErrInvalidParameter,
		Status: driver.StatusInvalidParameter,
		Detail: err.Error(),
	}
}
