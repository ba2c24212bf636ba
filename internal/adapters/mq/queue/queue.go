// Package queue buffers project status feed updates for async application.
//
// The feed is ingested over HTTP and applied to the read model by a
// worker pool; the queue decouples the two so feed bursts never block
// the judging endpoints.
package queue

import (
	"context"
	"sync"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/metrics"
)

// Default queue configuration constants.
const defaultCapacity = 10_000

// Update is the payload type flowing through the queue.
type Update = model.FeedUpdate

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an update to the queue.
	// Returns false if the queue is full and the update was not enqueued.
	Enqueue(ctx context.Context, u Update) bool

	// Dequeue returns a channel that receives updates as they become
	// available. The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Update

	// Len returns the current number of queued updates.
	Len(ctx context.Context) int

	// Close shuts down the queue. After closing, no new updates can be
	// enqueued and the dequeue channel is closed.
	Close() error
}

// Option applies a configuration option to the InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity sets the maximum capacity of the queue.
func WithCapacity(capacity int) Option {
	return func(q *InMemoryQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	updates  chan Update
	capacity int
	mu       sync.RWMutex
	closed   bool
}

var _ Queue = (*InMemoryQueue)(nil)

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.updates = make(chan Update, q.capacity)

	metrics.UpdateFeedQueueCapacity(q.capacity)
	metrics.UpdateFeedQueueSize(0)
	return q
}

// Enqueue adds an update to the queue without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, u Update) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return false
	}
	select {
	case q.updates <- u:
		metrics.UpdateFeedQueueSize(len(q.updates))
		return true
	case <-ctx.Done():
		return false
	default:
		return false // queue is full
	}
}

// Dequeue returns the channel workers consume from.
func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan Update {
	return q.updates
}

// Len returns the current number of queued updates.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.updates)
	metrics.UpdateFeedQueueSize(size)
	return size
}

// Close shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.updates)
	q.closed = true
	return nil
}
