package syncbridge

import (
	"time"

	"github.com/pixelparty/triathlon/pkg/logger"
)

// QueueOption applies a configuration option to the InMemoryQueue.
type QueueOption func(*InMemoryQueue)

// WithCapacity sets the maximum number of queued writes.
func WithCapacity(capacity int) QueueOption {
	return func(q *InMemoryQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}

// WithBufferSize sets the underlying channel buffer size.
func WithBufferSize(size int) QueueOption {
	return func(q *InMemoryQueue) {
		if size > 0 {
			q.bufferSize = size
		}
	}
}

// WorkerOption applies a configuration option to a Worker.
type WorkerOption func(*Worker)

// WithWorkerName sets the worker name used in logs.
func WithWorkerName(name string) WorkerOption {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithWorkerLogger overrides the worker logger.
func WithWorkerLogger(log logger.Logger) WorkerOption {
	return func(w *Worker) {
		if log != nil {
			w.logger = log
		}
	}
}

// BridgeOption applies a configuration option to the Bridge.
type BridgeOption func(*Bridge)

// WithThrottle overrides the per-participant push window.
func WithThrottle(d time.Duration) BridgeOption {
	return func(b *Bridge) {
		if d > 0 {
			b.throttle = d
		}
	}
}

// WithBridgeLogger overrides the bridge logger.
func WithBridgeLogger(log logger.Logger) BridgeOption {
	return func(b *Bridge) {
		if log != nil {
			b.log = log
		}
	}
}
