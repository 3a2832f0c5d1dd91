// Package syncbridge moves local progress state to the shared score store.
// Pushes pass through a per-participant throttle, land on a bounded queue
// and are drained by a worker pool that performs the store writes.
package syncbridge

import (
	"context"
	"sync"

	"github.com/pixelparty/triathlon/internal/domain/model"
	"github.com/pixelparty/triathlon/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 4096
	defaultBufferSize    = 4096
)

// Write is the payload type flowing through the queue.
// Using the model.ScoreWrite type for type safety.
type Write = model.ScoreWrite

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a write to the queue.
	// Returns false if the queue is full and the write was not enqueued.
	Enqueue(ctx context.Context, w Write) bool

	// Dequeue returns a channel that will receive writes as they become available.
	// The channel will be closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Write

	// Len returns the current number of queued writes.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	writes     chan Write
	capacity   int
	bufferSize int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...QueueOption) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity:   defaultQueueCapacity,
		bufferSize: defaultBufferSize,
	}

	// Apply all options
	for _, opt := range opts {
		opt(q)
	}

	// Initialize the writes channel with the configured buffer size
	q.writes = make(chan Write, q.bufferSize)

	// Initialize metrics
	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

// Enqueue adds a write to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, w Write) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		return false
	}

	if len(q.writes) >= q.capacity {
		metrics.RecordQueueEnqueueError()
		return false
	}

	select {
	case q.writes <- w:
		metrics.RecordQueueEnqueue()
		currentSize := len(q.writes)
		metrics.UpdateQueueSize(currentSize)
		metrics.UpdateQueueUtilization(float64(currentSize) / float64(q.capacity))
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		return false // context cancelled
	default:
		metrics.RecordQueueEnqueueError()
		return false // queue is full
	}
}

// Dequeue returns a channel that will receive writes as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Write {
	// Wrap the channel to track dequeue metrics
	dequeueChan := make(chan Write)
	go func() {
		defer close(dequeueChan)
		for w := range q.writes {
			select {
			case dequeueChan <- w:
				metrics.RecordQueueDequeue()
				currentSize := len(q.writes)
				metrics.UpdateQueueSize(currentSize)
				metrics.UpdateQueueUtilization(float64(currentSize) / float64(q.capacity))
			case <-ctx.Done():
				return
			}
		}
	}()
	return dequeueChan
}

// Len returns the current number of queued writes.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	size := len(q.writes)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
	return size
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil // already closed
	}

	close(q.writes)
	q.closed = true

	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
