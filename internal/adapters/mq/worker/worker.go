// Package worker applies queued project status feed updates.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/okian/podium/internal/adapters/mq/queue"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// Applier writes feed updates into the project read model.
type Applier interface {
	UpsertProject(ctx context.Context, p model.Project) error
}

// Source defines how workers receive updates.
type Source interface {
	Dequeue(ctx context.Context) <-chan queue.Update
}

// Worker drains the feed queue into the read model until stopped.
type Worker struct {
	source  Source
	applier Applier
	name    string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Worker.
type Option func(*Worker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWorker creates a worker with configuration options.
func NewWorker(source Source, applier Applier, opts ...Option) *Worker {
	w := &Worker{
		source:   source,
		applier:  applier,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run starts the worker loop until ctx is canceled or the queue closes.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	updates := w.source.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			if err := w.apply(ctx, u); err != nil {
				w.logger.Error(ctx, "failed to apply feed update",
					logger.String("updateID", u.UpdateID),
					logger.String("projectID", u.Project.ID),
					logger.Error(err),
				)
			}
		}
	}
}

// apply writes one update into the read model.
func (w *Worker) apply(ctx context.Context, u queue.Update) error {
	if err := w.applier.UpsertProject(ctx, u.Project); err != nil {
		metrics.RecordWorkerError()
		return fmt.Errorf("apply update %s: %w", u.UpdateID, err)
	}
	metrics.RecordFeedUpdateApplied()
	return nil
}

// Shutdown gracefully stops the worker.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Pool manages multiple workers draining the same queue.
type Pool struct {
	workers []*Worker
	logger  logger.Logger
}

// NewPool creates a worker pool of workerCount workers.
func NewPool(workerCount int, source Source, applier Applier) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers: make([]*Worker, workerCount),
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewWorker(source, applier, WithName("worker-"+strconv.Itoa(i)))
	}

	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop gracefully shuts down all workers.
func (p *Pool) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), poolShutdownTimeout)
	defer cancel()

	for _, w := range p.workers {
		if err := w.Shutdown(ctx); err != nil {
			p.logger.Warn(ctx, "worker did not stop cleanly", logger.Error(err))
		}
	}
	metrics.UpdateWorkerCount(0)
}
