// internal/repository/memory_repository.go
package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"digitizer-service/internal/model"
)

// memoryCaptureRepository keeps capture records in process memory, bounded
// to the most recent capacity entries.
type memoryCaptureRepository struct {
	mu       sync.RWMutex
	capacity int
	records  map[uuid.UUID]*model.CaptureRecord
	order    []uuid.UUID
}

// NewMemoryCaptureRepository creates an in-memory repository used when no
// database is configured
func NewMemoryCaptureRepository(capacity int) CaptureRepository {
	if capacity < 1 {
		capacity = 1000
	}
	return &memoryCaptureRepository{
		capacity: capacity,
		records:  make(map[uuid.UUID]*model.CaptureRecord),
	}
}

func clone(c *model.CaptureRecord) *model.CaptureRecord {
	cp := *c
	if c.Summary != nil {
		cp.Summary = make(model.JSONObject, len(c.Summary))
		for k, v := range c.Summary {
			cp.Summary[k] = v
		}
	}
	return &cp
}

func (r *memoryCaptureRepository) Create(ctx context.Context, c *model.CaptureRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[c.ID]; exists {
		return fmt.Errorf("capture %s already exists", c.ID)
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	r.records[c.ID] = clone(c)
	r.order = append(r.order, c.ID)

	for len(r.order) > r.capacity {
		delete(r.records, r.order[0])
		r.order = r.order[1:]
	}
	return nil
}

func (r *memoryCaptureRepository) Update(ctx context.Context, c *model.CaptureRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.records[c.ID]
	if !ok {
		return fmt.Errorf("capture %s: %w", c.ID, ErrNotFound)
	}
	updated := clone(c)
	updated.CreatedAt = existing.CreatedAt
	r.records[c.ID] = updated
	return nil
}

func (r *memoryCaptureRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CaptureRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("capture %s: %w", id, ErrNotFound)
	}
	return clone(c), nil
}

func (r *memoryCaptureRepository) List(ctx context.Context, filter *CaptureFilter) ([]*model.CaptureRecord, int, error) {
	if filter == nil {
		filter = &CaptureFilter{}
	}
	filter.normalize()

	r.mu.RLock()
	matched := make([]*model.CaptureRecord, 0, len(r.records))
	for _, c := range r.records {
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		if filter.Model != nil && c.Model != *filter.Model {
			continue
		}
		if filter.StartDate != nil && c.CreatedAt.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && c.CreatedAt.After(*filter.EndDate) {
			continue
		}
		matched = append(matched, clone(c))
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := filter.offset()
	if start >= total {
		return []*model.CaptureRecord{}, total, nil
	}
	end := start + filter.PerPage
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *memoryCaptureRepository) DeleteOlderThan(ctx context.Context, olderThan time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	kept := r.order[:0]
	for _, id := range r.order {
		if r.records[id].CreatedAt.Before(olderThan) {
			delete(r.records, id)
			deleted++
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
	return deleted, nil
}
