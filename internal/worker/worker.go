// internal/worker/worker.go
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ErrStopped is returned for tasks submitted after Stop
var ErrStopped = errors.New("worker stopped")

// Task is a unit of work executed on the worker goroutine
type Task func() (interface{}, error)

// CompletionHandler runs on the worker goroutine right after its task
type CompletionHandler func(result interface{}, err error)

const (
	statePending int32 = iota
	stateRunning
	stateCancelled
)

// Future is the pending result of a submitted task
type Future struct {
	name   string
	done   chan struct{}
	state  atomic.Int32
	result interface{}
	err    error
}

func newFuture(name string) *Future {
	return &Future{name: name, done: make(chan struct{})}
}

func (f *Future) complete(result interface{}, err error) {
	f.result = result
	f.err = err
	close(f.done)
}

// cancel marks a task that has not started as never to run. It reports
// false once the worker has picked the task up.
func (f *Future) cancel() bool {
	return f.state.CompareAndSwap(statePending, stateCancelled)
}

// begin claims the task for execution
func (f *Future) begin() bool {
	return f.state.CompareAndSwap(statePending, stateRunning)
}

// Name returns the task name given to Submit
func (f *Future) Name() string { return f.name }

// Done is closed once the task and its completion handler have run
func (f *Future) Done() <-chan struct{} { return f.done }

// Wait blocks until the task finishes or ctx ends. A context error
// abandons the wait only; the task still runs to completion.
func (f *Future) Wait(ctx context.Context) (interface{}, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type job struct {
	ctx    context.Context
	future *Future
	task   Task
	onDone CompletionHandler
	queued time.Time
}

// Worker executes tasks one at a time, in submission order, on a single
// background goroutine.
type Worker struct {
	name   string
	logger *zap.Logger
	queue  chan *job

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// New starts a worker with a queue of the given depth
func New(name string, depth int, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if depth < 1 {
		depth = 1
	}

	w := &Worker{
		name:   name,
		logger: logger.With(zap.String("worker", name)),
		queue:  make(chan *job, depth),
	}

	w.wg.Add(1)
	go w.run()
	return w
}

// Submit queues fn and returns its future. onDone may be nil. Submit
// blocks while the queue is full.
func (w *Worker) Submit(name string, fn Task, onDone CompletionHandler) *Future {
	return w.SubmitContext(context.Background(), name, fn, onDone)
}

// SubmitContext is Submit for a task that is skipped if ctx ends before
// the worker reaches it. A skipped task completes with ctx.Err() and
// its onDone is not called.
func (w *Worker) SubmitContext(ctx context.Context, name string, fn Task, onDone CompletionHandler) *Future {
	future := newFuture(name)

	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.stopped {
		future.complete(nil, ErrStopped)
		return future
	}

	w.queue <- &job{ctx: ctx, future: future, task: fn, onDone: onDone, queued: time.Now()}
	return future
}

// Do runs fn on the worker and returns its result. If ctx ends while fn
// is still queued, fn never runs and ctx.Err() is returned. Once fn has
// started, Do waits for it, so the error seen by the caller always
// matches what happened to the session; fn should honour ctx itself.
func (w *Worker) Do(ctx context.Context, name string, fn Task) (interface{}, error) {
	f := w.SubmitContext(ctx, name, fn, nil)

	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
	}

	if f.cancel() {
		return nil, ctx.Err()
	}
	<-f.done
	return f.result, f.err
}

// Pending returns the number of queued tasks
func (w *Worker) Pending() int {
	return len(w.queue)
}

// Stop rejects new tasks, drains the queue and waits for the goroutine
func (w *Worker) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	close(w.queue)
	w.mu.Unlock()

	w.wg.Wait()
	w.logger.Debug("Worker stopped")
}

func (w *Worker) run() {
	defer w.wg.Done()

	for j := range w.queue {
		if err := j.ctx.Err(); err != nil {
			j.future.cancel()
		}
		if !j.future.begin() {
			j.future.complete(nil, j.ctx.Err())
			w.logger.Debug("Task skipped, caller gave up",
				zap.String("task", j.future.name),
				zap.Duration("queued", time.Since(j.queued)),
			)
			continue
		}

		started := time.Now()
		result, err := w.execute(j)

		if j.onDone != nil {
			w.safeCall(j.future.name, func() { j.onDone(result, err) })
		}
		j.future.complete(result, err)

		w.logger.Debug("Task finished",
			zap.String("task", j.future.name),
			zap.Duration("queued", started.Sub(j.queued)),
			zap.Duration("duration", time.Since(started)),
			zap.Bool("success", err == nil),
		)
	}
}

// execute runs the task, turning a panic into an error
func (w *Worker) execute(j *job) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("Task panicked",
				zap.String("task", j.future.name),
				zap.Any("panic", r),
				zap.Stack("stacktrace"),
			)
			result, err = nil, fmt.Errorf("task %s panicked: %v", j.future.name, r)
		}
	}()
	return j.task()
}

func (w *Worker) safeCall(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("Completion handler panicked",
				zap.String("task", name),
				zap.Any("panic", r),
			)
		}
	}()
	fn()
}
