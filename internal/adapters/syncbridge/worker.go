package syncbridge

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/pixelparty/triathlon/internal/adapters/scorestore"
	"github.com/pixelparty/triathlon/pkg/logger"
	"github.com/pixelparty/triathlon/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount    = 4
	laneBufferSize        = 64
	workerShutdownTimeout = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// StoreWriter is the slice of the score store the workers need.
type StoreWriter interface {
	Set(ctx context.Context, path string, value any) error
	Update(ctx context.Context, path string, partial map[string]any) error
}

// DequeueSource defines how workers receive writes.
type DequeueSource interface {
	Dequeue(ctx context.Context) <-chan Write
}

// Worker drains its lane into the score store. Failed writes are
// logged and dropped; the next push carries the full record again, so a
// lost write self-heals.
type Worker struct {
	in    <-chan Write
	store StoreWriter
	name  string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewWorker creates a new worker with configuration options.
func NewWorker(in <-chan Write, store StoreWriter, opts ...WorkerOption) *Worker {
	w := &Worker{
		in:       in,
		store:    store,
		name:     "worker", // default name
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("syncbridge"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *Worker) Run(ctx context.Context) {
	defer func() {
		close(w.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case write, ok := <-w.in:
			if !ok {
				// Channel closed, worker should stop
				return
			}

			if err := w.processWrite(ctx, write); err != nil {
				w.logger.Error(ctx, "error pushing score write", logger.Error(err))
			}
		}
	}
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

// processWrite pushes a single score write to the store.
func (w *Worker) processWrite(ctx context.Context, write Write) error {
	start := time.Now()
	defer func() {
		metrics.RecordPushWriteLatency(float64(time.Since(start).Milliseconds()))
	}()

	payload, err := scorestore.Encode(write.Record)
	if err != nil {
		metrics.RecordScorePushError()
		metrics.RecordWorkerError()
		return fmt.Errorf("failed to encode score for %s: %w", write.ParticipantID, err)
	}

	path := scorestore.PathEventScore(write.Event, write.ParticipantID)
	if write.Merge {
		err = w.store.Update(ctx, path, payload)
	} else {
		err = w.store.Set(ctx, path, payload)
	}
	if err != nil {
		metrics.RecordScorePushError()
		metrics.RecordWorkerError()
		w.logger.Error(ctx, "score write failed",
			logger.String("event", string(write.Event)),
			logger.String("participant", write.ParticipantID),
			logger.Error(err),
		)
		return fmt.Errorf("score write failed: %w", err)
	}

	metrics.RecordScorePush()
	return nil
}

// Pool manages multiple workers. Writes are partitioned across lanes by
// participant, so every write for one participant is applied in enqueue
// order; a stale snapshot can never land after a newer one.
type Pool struct {
	workers []*Worker
	lanes   []chan Write
	queue   DequeueSource

	// Shutdown control
	shutdown       chan struct{}
	dispatcherDone chan struct{}

	// Logging
	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, queue DequeueSource, store StoreWriter) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	pool := &Pool{
		workers:        make([]*Worker, workerCount),
		lanes:          make([]chan Write, workerCount),
		queue:          queue,
		shutdown:       make(chan struct{}),
		dispatcherDone: make(chan struct{}),
		logger:         logger.Get().Named("syncbridge-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.lanes[i] = make(chan Write, laneBufferSize)
		pool.workers[i] = NewWorker(
			pool.lanes[i],
			store,
			WithWorkerName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Start starts the dispatcher and all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	go p.dispatch(ctx)
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
}

// dispatch routes queued writes to lanes. Closing the queue drains the
// remaining writes and then closes every lane.
func (p *Pool) dispatch(ctx context.Context) {
	defer func() {
		for _, lane := range p.lanes {
			close(lane)
		}
		close(p.dispatcherDone)
	}()

	in := p.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case w, ok := <-in:
			if !ok {
				return
			}
			select {
			case p.lanes[p.laneFor(w)] <- w:
			case <-ctx.Done():
				return
			}
		}
	}
}

// laneFor pins all writes for one participant to the same lane.
func (p *Pool) laneFor(w Write) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(w.Event))
	_, _ = h.Write([]byte{'/'})
	_, _ = h.Write([]byte(w.ParticipantID))
	return int(h.Sum32() % uint32(len(p.lanes)))
}

// Shutdown gracefully shuts down the entire worker pool.
func (p *Pool) Shutdown(ctx context.Context) error {
	// First close the queue to stop new writes
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	close(p.shutdown)

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	// The dispatcher drains the queue and closes the lanes; workers exit
	// once their lane is empty.
	select {
	case <-p.dispatcherDone:
	case <-shutdownCtx.Done():
		p.logger.Warn(ctx, "dispatcher shutdown timed out")
	}

	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	return nil
}
