// internal/model/capture.go
package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CaptureStatus represents the outcome of a capture sequence
type CaptureStatus string

const (
	CaptureStatusRunning   CaptureStatus = "RUNNING"
	CaptureStatusCompleted CaptureStatus = "COMPLETED"
	CaptureStatusFailed    CaptureStatus = "FAILED"
)

// JSONObject type for PostgreSQL JSONB objects
type JSONObject map[string]interface{}

func (j *JSONObject) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	}
	return fmt.Errorf("cannot scan %T into JSONObject", value)
}

func (j JSONObject) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// CaptureRecord is the persisted description of one harvest. The sample
// bytes themselves stay with the caller; only shape and metadata are kept.
type CaptureRecord struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	Driver         string          `json:"driver" db:"driver"`
	Model          string          `json:"model" db:"model"`
	Serial         string          `json:"serial" db:"serial"`
	SampleRateGHz  decimal.Decimal `json:"sample_rate_ghz" db:"sample_rate_ghz"`
	SampleInterval decimal.Decimal `json:"sample_interval" db:"sample_interval"`
	Samples        int             `json:"samples" db:"samples"`
	Segments       int             `json:"segments" db:"segments"`
	Completed      int             `json:"completed" db:"completed"`
	BufferLength   int             `json:"buffer_length" db:"buffer_length"`
	TriggerDelay   float64         `json:"trigger_delay" db:"trigger_delay"`
	VerticalRange  string          `json:"vertical_range" db:"vertical_range"`
	Repeat         bool            `json:"repeat" db:"repeat"`
	Summary        JSONObject      `json:"summary" db:"summary"`
	Status         CaptureStatus   `json:"status" db:"status"`
	ErrorMessage   *string         `json:"error_message,omitempty" db:"error_message"`
	DriverStatus   *string         `json:"driver_status,omitempty" db:"driver_status"`
	DurationMs     *int64          `json:"duration_ms,omitempty" db:"duration_ms"`
	StartedAt      time.Time       `json:"started_at" db:"started_at"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// Finish stamps the completion time and duration
func (c *CaptureRecord) Finish(status CaptureStatus, at time.Time) {
	c.Status = status
	c.CompletedAt = &at
	ms := at.Sub(c.StartedAt).Milliseconds()
	c.DurationMs = &ms
}

// Fail marks the record failed with the error and driver status
func (c *CaptureRecord) Fail(err error, driverStatus string, at time.Time) {
	msg := err.Error()
	c.ErrorMessage = &msg
	if driverStatus != "" {
		c.DriverStatus = &driverStatus
	}
	c.Finish(CaptureStatusFailed, at)
}
