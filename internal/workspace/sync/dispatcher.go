package sync

import (
	"context"
	"fmt"
	"log/slog"
	gosync "sync"
	"time"

	"github.com/studiodesk/studio-backend/internal/metrics"
)

// Job is one background side effect.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Dispatcher runs jobs one at a time, in the order they were enqueued.
// A failing job is retried with exponential backoff; the final failure is
// logged, never returned to the caller.
type Dispatcher struct {
	jobs chan Job
	log  *slog.Logger

	attempts int
	backoff  time.Duration

	wg     gosync.WaitGroup
	mu     gosync.Mutex
	closed bool
}

func NewDispatcher(queueSize int, log *slog.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		jobs:     make(chan Job, queueSize),
		log:      log,
		attempts: 3,
		backoff:  500 * time.Millisecond,
	}
}

// WithRetry sets how often a job is tried and the delay before the first
// retry. The delay doubles on each further attempt.
func (d *Dispatcher) WithRetry(attempts int, backoff time.Duration) *Dispatcher {
	if attempts < 1 {
		attempts = 1
	}
	d.attempts = attempts
	d.backoff = backoff
	return d
}

// Start drains the queue until Close is called. ctx is passed to each job.
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for job := range d.jobs {
			metrics.SyncQueueDepth.Set(float64(len(d.jobs)))
			d.run(ctx, job)
		}
	}()
}

func (d *Dispatcher) run(ctx context.Context, job Job) {
	delay := d.backoff
	for attempt := 1; ; attempt++ {
		err := d.try(ctx, job)
		if err == nil {
			return
		}
		if attempt >= d.attempts || ctx.Err() != nil {
			d.log.Warn("background job failed", "job", job.Name, "attempts", attempt, "error", err)
			return
		}
		select {
		case <-ctx.Done():
		case <-time.After(delay):
		}
		delay *= 2
	}
}

func (d *Dispatcher) try(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("background job panicked", "job", job.Name, "panic", r)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return job.Run(ctx)
}

// Enqueue adds a job. It reports false when the dispatcher is closed or the
// queue is full; the job is dropped in that case.
func (d *Dispatcher) Enqueue(job Job) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	select {
	case d.jobs <- job:
		metrics.SyncQueueDepth.Set(float64(len(d.jobs)))
		return true
	default:
		d.log.Error("dispatcher queue full, job dropped", "job", job.Name)
		return false
	}
}

// Close stops accepting jobs and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobs)
	}
	d.mu.Unlock()
	d.wg.Wait()
}
