package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"digitizer-service/internal/model"
)

func TestMemoryRepositoryRoundTrip(t *testing.T) {
	repo := NewMemoryCaptureRepository(10)
	ctx := context.Background()

	c := sampleRecord()
	c.Summary = model.JSONObject{"shots": 20}
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(ctx, c); err == nil {
		t.Fatalf("duplicate create must fail")
	}

	c.Summary["shots"] = 99
	got, err := repo.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Summary["shots"] != 20 {
		t.Fatalf("stored record must not alias the caller's summary")
	}

	c.Finish(model.CaptureStatusCompleted, time.Now())
	if err := repo.Update(ctx, c); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = repo.GetByID(ctx, c.ID)
	if got.Status != model.CaptureStatusCompleted || got.DurationMs == nil {
		t.Fatalf("update not applied: %+v", got)
	}
}

func TestMemoryRepositoryNotFound(t *testing.T) {
	repo := NewMemoryCaptureRepository(10)
	c := sampleRecord()

	if _, err := repo.GetByID(context.Background(), c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Update(context.Background(), c); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryRepositoryListAndEvict(t *testing.T) {
	repo := NewMemoryCaptureRepository(3)
	ctx := context.Background()
	base := time.Now()

	var ids []string
	for i := 0; i < 5; i++ {
		c := sampleRecord()
		c.CreatedAt = base.Add(time.Duration(i) * time.Second)
		if i%2 == 1 {
			c.Status = model.CaptureStatusFailed
		}
		ids = append(ids, c.ID.String())
		if err := repo.Create(ctx, c); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	all, total, err := repo.List(ctx, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected capacity to bound records at 3, got %d", total)
	}
	if all[0].ID.String() != ids[4] || all[2].ID.String() != ids[2] {
		t.Fatalf("expected newest first")
	}

	failed := model.CaptureStatusFailed
	page, total, _ := repo.List(ctx, &CaptureFilter{Status: &failed})
	if total != 1 || page[0].ID.String() != ids[3] {
		t.Fatalf("unexpected failed listing total=%d", total)
	}

	deleted, err := repo.DeleteOlderThan(ctx, base.Add(3500*time.Millisecond))
	if err != nil || deleted != 2 {
		t.Fatalf("expected 2 deleted, got %d (%v)", deleted, err)
	}
	if _, total, _ := repo.List(ctx, nil); total != 1 {
		t.Fatalf("expected 1 record left, got %d", total)
	}
}
