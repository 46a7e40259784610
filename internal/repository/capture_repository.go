// internal/repository/capture_repository.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"digitizer-service/internal/database"
	"digitizer-service/internal/model"
)

const captureColumns = `id, driver, model, serial, sample_rate_ghz, sample_interval,
			   samples, segments, completed, buffer_length, trigger_delay,
			   vertical_range, repeat, summary, status, error_message,
			   driver_status, duration_ms, started_at, completed_at, created_at`

// captureRepository implements CaptureRepository over PostgreSQL
type captureRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewCaptureRepository creates a new capture repository
func NewCaptureRepository(db *database.DB, logger *zap.Logger) CaptureRepository {
	return &captureRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a capture record
func (r *captureRepository) Create(ctx context.Context, c *model.CaptureRecord) error {
	query := `
		INSERT INTO captures (
			id, driver, model, serial, sample_rate_ghz, sample_interval,
			samples, segments, completed, buffer_length, trigger_delay,
			vertical_range, repeat, summary, status, error_message,
			driver_status, duration_ms, started_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Driver, c.Model, c.Serial, c.SampleRateGHz, c.SampleInterval,
		c.Samples, c.Segments, c.Completed, c.BufferLength, c.TriggerDelay,
		c.VerticalRange, c.Repeat, c.Summary, c.Status, c.ErrorMessage,
		c.DriverStatus, c.DurationMs, c.StartedAt, c.CompletedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create capture", zap.Error(err))
		return fmt.Errorf("failed to create capture: %w", err)
	}
	return nil
}

// Update stores the outcome fields of a capture record
func (r *captureRepository) Update(ctx context.Context, c *model.CaptureRecord) error {
	query := `
		UPDATE captures SET
			completed = $2, summary = $3, status = $4, error_message = $5,
			driver_status = $6, duration_ms = $7, completed_at = $8
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		c.ID, c.Completed, c.Summary, c.Status, c.ErrorMessage,
		c.DriverStatus, c.DurationMs, c.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update capture: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("capture %s: %w", c.ID, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCapture(row rowScanner) (*model.CaptureRecord, error) {
	c := &model.CaptureRecord{}
	err := row.Scan(
		&c.ID, &c.Driver, &c.Model, &c.Serial, &c.SampleRateGHz, &c.SampleInterval,
		&c.Samples, &c.Segments, &c.Completed, &c.BufferLength, &c.TriggerDelay,
		&c.VerticalRange, &c.Repeat, &c.Summary, &c.Status, &c.ErrorMessage,
		&c.DriverStatus, &c.DurationMs, &c.StartedAt, &c.CompletedAt, &c.CreatedAt,
	)
	return c, err
}

// GetByID retrieves a capture record by ID
func (r *captureRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CaptureRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM captures WHERE id = $1", captureColumns)

	c, err := scanCapture(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("capture %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get capture: %w", err)
	}
	return c, nil
}

// List returns a page of capture records, newest first, and the total count
func (r *captureRepository) List(ctx context.Context, filter *CaptureFilter) ([]*model.CaptureRecord, int, error) {
	if filter == nil {
		filter = &CaptureFilter{}
	}
	filter.normalize()

	whereConditions := []string{}
	args := []interface{}{}
	argIndex := 1

	if filter.Status != nil {
		whereConditions = append(whereConditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}

	if filter.Model != nil {
		whereConditions = append(whereConditions, fmt.Sprintf("model = $%d", argIndex))
		args = append(args, *filter.Model)
		argIndex++
	}

	if filter.StartDate != nil {
		whereConditions = append(whereConditions, fmt.Sprintf("created_at >= $%d", argIndex))
		args = append(args, *filter.StartDate)
		argIndex++
	}

	if filter.EndDate != nil {
		whereConditions = append(whereConditions, fmt.Sprintf("created_at <= $%d", argIndex))
		args = append(args, *filter.EndDate)
		argIndex++
	}

	whereClause := ""
	if len(whereConditions) > 0 {
		whereClause = "WHERE " + strings.Join(whereConditions, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM captures %s", whereClause)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count captures: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM captures %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		captureColumns, whereClause, argIndex, argIndex+1)
	args = append(args, filter.PerPage, filter.offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list captures: %w", err)
	}
	defer rows.Close()

	captures := []*model.CaptureRecord{}
	for rows.Next() {
		c, err := scanCapture(rows)
		if err != nil {
			r.logger.Error("Failed to scan capture", zap.Error(err))
			continue
		}
		captures = append(captures, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate captures: %w", err)
	}

	return captures, total, nil
}

// DeleteOlderThan removes records created before olderThan
func (r *captureRepository) DeleteOlderThan(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM captures WHERE created_at < $1`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old captures: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	r.logger.Info("Old captures deleted",
		zap.Int64("count", deleted),
		zap.Time("older_than", olderThan),
	)
	return deleted, nil
}
