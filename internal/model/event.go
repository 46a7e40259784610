// internal/model/event.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of event
type EventType string

const (
	EventDigitizerOpened    EventType = "DIGITIZER_OPENED"
	EventDigitizerClosed    EventType = "DIGITIZER_CLOSED"
	EventConfigUpdated      EventType = "CONFIG_UPDATED"
	EventDigitizerArmed     EventType = "DIGITIZER_ARMED"
	EventAcquisitionStarted EventType = "ACQUISITION_STARTED"
	EventAcquisitionReady   EventType = "ACQUISITION_READY"
	EventCaptureCompleted   EventType = "CAPTURE_COMPLETED"
	EventOperationFailed    EventType = "OPERATION_FAILED"
)

// Event severities
const (
	SeverityInfo    = "INFO"
	SeverityWarning = "WARNING"
	SeverityError   = "ERROR"
)

// DigitizerEvent represents an event in the system
type DigitizerEvent struct {
	ID        uuid.UUID  `json:"id"`
	EventType EventType  `json:"event_type"`
	Data      JSONObject `json:"data"`
	Timestamp time.Time  `json:"timestamp"`
	Source    string     `json:"source"`
	Severity  string     `json:"severity"`
}

// NewEvent creates an INFO event stamped now
func NewEvent(eventType EventType, source string, data JSONObject) *DigitizerEvent {
	return &DigitizerEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Data:      data,
		Timestamp: time.Now(),
		Source:    source,
		Severity:  SeverityInfo,
	}
}

// OperationFailedEventData describes a failed session operation
type OperationFailedEventData struct {
	Operation    string `json:"operation"`
	OperationID  string `json:"operation_id"`
	Kind         string `json:"kind"`
	DriverStatus string `json:"driver_status,omitempty"`
	ErrorMessage string `json:"error_message"`
}

// CaptureEventData describes a harvested capture
type CaptureEventData struct {
	CaptureID    uuid.UUID `json:"capture_id"`
	Samples      uint32    `json:"samples"`
	Segments     uint32    `json:"segments"`
	Completed    uint32    `json:"completed"`
	BufferLength int       `json:"buffer_length"`
	SamplingRate float64   `json:"sampling_rate"`
	DurationMs   int64     `json:"duration_ms"`
}
