package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestSubmitRunsInOrder(t *testing.T) {
	w := New("test", 16, nil)
	defer w.Stop()

	var mu sync.Mutex
	var order []int
	var futures []*Future
	for i := 0; i < 10; i++ {
		i := i
		futures = append(futures, w.Submit("step", func() (interface{}, error) {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return i * i, nil
		}, nil))
	}

	for i, f := range futures {
		v, err := f.Wait(context.Background())
		if err != nil {
			t.Fatalf("task %d: %v", i, err)
		}
		if v.(int) != i*i {
			t.Fatalf("task %d returned %v", i, v)
		}
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("tasks ran out of order: %v", order)
		}
	}
}

func TestCompletionHandlerRunsBeforeWaitReturns(t *testing.T) {
	w := New("test", 1, nil)
	defer w.Stop()

	handled := false
	boom := errors.New("boom")
	f := w.Submit("fail", func() (interface{}, error) { return nil, boom }, func(_ interface{}, err error) {
		handled = errors.Is(err, boom)
	})

	if _, err := f.Wait(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected task error, got %v", err)
	}
	if !handled {
		t.Fatalf("completion handler did not observe the error")
	}
}

func TestWaitContextAbandonsOnly(t *testing.T) {
	w := New("test", 1, nil)
	defer w.Stop()

	release := make(chan struct{})
	f := w.Submit("slow", func() (interface{}, error) {
		<-release
		return "done", nil
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	if _, err := f.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	close(release)
	v, err := f.Wait(context.Background())
	if err != nil || v != "done" {
		t.Fatalf("task must still complete, got %v %v", v, err)
	}
}

func TestPanicBecomesError(t *testing.T) {
	w := New("test", 1, nil)
	defer w.Stop()

	_, err := w.Do(context.Background(), "panic", func() (interface{}, error) {
		panic("bad state")
	})
	if err == nil {
		t.Fatalf("expected panic to surface as error")
	}

	v, err := w.Do(context.Background(), "after", func() (interface{}, error) { return 1, nil })
	if err != nil || v != 1 {
		t.Fatalf("worker must keep running after a panic, got %v %v", v, err)
	}
}

func TestStopDrainsAndRejects(t *testing.T) {
	w := New("test", 8, nil)

	var ran int
	var futures []*Future
	for i := 0; i < 5; i++ {
		futures = append(futures, w.Submit("n", func() (interface{}, error) {
			ran++
			return nil, nil
		}, nil))
	}
	w.Stop()

	if ran != 5 {
		t.Fatalf("expected queued tasks to drain, ran %d", ran)
	}
	for _, f := range futures {
		select {
		case <-f.Done():
		default:
			t.Fatalf("future %s not completed after Stop", f.Name())
		}
	}

	if _, err := w.Submit("late", func() (interface{}, error) { return nil, nil }, nil).Wait(context.Background()); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
	w.Stop()
}

func TestDoSkipsTaskWhenCallerGivesUp(t *testing.T) {
	w := New("test", 4, nil)
	defer w.Stop()

	release := make(chan struct{})
	blocker := w.Submit("blocker", func() (interface{}, error) {
		<-release
		return nil, nil
	}, nil)

	var ran bool
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	_, err := w.Do(ctx, "late", func() (interface{}, error) {
		ran = true
		return nil, nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	close(release)
	if _, err := blocker.Wait(context.Background()); err != nil {
		t.Fatalf("blocker: %v", err)
	}
	// Flush the queue so a skipped task would have run by now
	if _, err := w.Do(context.Background(), "flush", func() (interface{}, error) { return nil, nil }); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if ran {
		t.Fatalf("task ran after its caller was told it failed")
	}
}

func TestDoReturnsOutcomeOfStartedTask(t *testing.T) {
	w := New("test", 1, nil)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	v, err := w.Do(ctx, "slow", func() (interface{}, error) {
		cancel()
		time.Sleep(20 * time.Millisecond)
		return "applied", nil
	})
	if err != nil || v != "applied" {
		t.Fatalf("started task must report its own outcome, got %v %v", v, err)
	}
}

func TestSubmitContextSkipsCancelledJob(t *testing.T) {
	w := New("test", 4, nil)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var handled bool
	f := w.SubmitContext(ctx, "cancelled", func() (interface{}, error) {
		return "ran", nil
	}, func(interface{}, error) { handled = true })

	if _, err := f.Wait(context.Background()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
	if handled {
		t.Fatalf("completion handler must not run for a skipped task")
	}
}
