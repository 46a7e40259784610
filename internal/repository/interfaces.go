// internal/repository/interfaces.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"digitizer-service/internal/model"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

// CaptureRepository defines capture record data access operations
type CaptureRepository interface {
	Create(ctx context.Context, capture *model.CaptureRecord) error
	Update(ctx context.Context, capture *model.CaptureRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.CaptureRecord, error)
	List(ctx context.Context, filter *CaptureFilter) ([]*model.CaptureRecord, int, error)

	// Cleanup
	DeleteOlderThan(ctx context.Context, olderThan time.Time) (int64, error)
}

// CaptureFilter represents capture listing filters
type CaptureFilter struct {
	Status    *model.CaptureStatus `json:"status,omitempty"`
	Model     *string              `json:"model,omitempty"`
	StartDate *time.Time           `json:"start_date,omitempty"`
	EndDate   *time.Time           `json:"end_date,omitempty"`
	Page      int                  `json:"page"`
	PerPage   int                  `json:"per_page"`
}

// normalize clamps paging to sane bounds
func (f *CaptureFilter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = 20
	}
	if f.PerPage > 500 {
		f.PerPage = 500
	}
}

func (f *CaptureFilter) offset() int {
	return (f.Page - 1) * f.PerPage
}
