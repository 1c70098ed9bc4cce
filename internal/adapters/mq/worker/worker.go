// Package worker runs the background workers that warm the image cache.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/fuelsense/internal/adapters/images"
	"github.com/okian/fuelsense/internal/adapters/mq/queue"
	"github.com/okian/fuelsense/pkg/logger"
	"github.com/okian/fuelsense/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount  = 2
	poolShutdownTimeout = 30 * time.Second
)

// Fetcher downloads an image, consulting and filling its cache.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (images.Image, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes warm-up jobs.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue drains.
	Run(ctx context.Context)

	// Shutdown stops the worker and waits for the current job.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for warm-up jobs.
type InMemoryWorker struct {
	queue   Queue
	fetcher Fetcher
	name    string

	warmed atomic.Int64
	failed atomic.Int64

	// Shutdown control
	stopOnce sync.Once
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, fetcher Fetcher, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		fetcher:  fetcher,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.processJob(ctx, job); err != nil {
				w.logger.Warn(ctx, "image warm-up failed", logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.stopOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Warmed returns the number of images this worker placed in or found in the cache.
func (w *InMemoryWorker) Warmed() int64 { return w.warmed.Load() }

// Failed returns the number of downloads that fell back.
func (w *InMemoryWorker) Failed() int64 { return w.failed.Load() }

func (w *InMemoryWorker) processJob(ctx context.Context, job queue.Job) error {
	start := time.Now()
	img, err := w.fetcher.Fetch(ctx, job.URL)
	metrics.RecordImageWarmup(string(img.Outcome))

	if err != nil {
		w.failed.Add(1)
		metrics.RecordErrorLatency("worker", "warmup_error", float64(time.Since(start).Milliseconds()))
		return fmt.Errorf("warm %s: %w", job.Name, err)
	}

	w.warmed.Add(1)
	w.logger.Debug(ctx, "image warmed",
		logger.String("name", job.Name),
		logger.String("outcome", string(img.Outcome)),
	)
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	done    chan struct{}
	logger  logger.Logger
}

// NewPool creates a new worker pool. A workerCount below one uses the default.
func NewPool(workerCount int, q Queue, fetcher Fetcher) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		done:    make(chan struct{}),
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(q, fetcher, WithName("worker-"+strconv.Itoa(i)))
	}
	return pool
}

// Start starts all workers in the pool. Done is closed once every worker returns.
func (p *Pool) Start(ctx context.Context) {
	var wg sync.WaitGroup
	for _, w := range p.workers {
		wg.Add(1)
		go func(w *InMemoryWorker) {
			defer wg.Done()
			w.Run(ctx)
		}(w)
	}
	go func() {
		wg.Wait()
		close(p.done)
	}()
}

// Done is closed when every worker has returned.
func (p *Pool) Done() <-chan struct{} { return p.done }

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Warmed returns the number of images warmed across the pool.
func (p *Pool) Warmed() int64 {
	var n int64
	for _, w := range p.workers {
		n += w.Warmed()
	}
	return n
}

// Failed returns the number of failed warm-ups across the pool.
func (p *Pool) Failed() int64 {
	var n int64
	for _, w := range p.workers {
		n += w.Failed()
	}
	return n
}

// Shutdown closes the queue and stops every worker.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	return nil
}
