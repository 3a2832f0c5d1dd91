package syncbridge

import (
	"context"
	"sync"
	"time"

	"github.com/pixelparty/triathlon/pkg/logger"
	"github.com/pixelparty/triathlon/pkg/metrics"
	"github.com/pixelparty/triathlon/pkg/sched"
)

// DefaultThrottle is the minimum interval between pushes for one
// participant within one event.
const DefaultThrottle = 500 * time.Millisecond

// Bridge throttles score pushes per participant. The first push in a quiet
// window goes out immediately; pushes arriving inside the window coalesce
// into one trailing write carrying the latest state, so the final value of
// a burst is never lost.
type Bridge struct {
	ctx      context.Context
	queue    Queue
	throttle time.Duration
	log      logger.Logger

	mu    sync.Mutex
	gates map[string]*gate
}

// gate is the per-participant throttle state. Guarded by the bridge mutex.
type gate struct {
	lastSent time.Time
	pending  *Write
	timer    sched.Handle
}

// NewBridge constructs a bridge feeding the given queue.
func NewBridge(ctx context.Context, queue Queue, opts ...BridgeOption) *Bridge {
	b := &Bridge{
		ctx:      ctx,
		queue:    queue,
		throttle: DefaultThrottle,
		log:      logger.Named("syncbridge"),
		gates:    make(map[string]*gate),
	}

	// Apply all options
	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Push submits a score write. Returns immediately; delivery happens through
// the queue and worker pool. Writes are fire and forget from the caller's
// point of view.
func (b *Bridge) Push(w Write) {
	key := gateKey(w)
	now := time.Now()

	b.mu.Lock()
	g, ok := b.gates[key]
	if !ok {
		g = &gate{}
		b.gates[key] = g
	}

	if g.timer == nil && now.Sub(g.lastSent) >= b.throttle {
		// Leading edge: the window is quiet, send right away.
		g.lastSent = now
		b.mu.Unlock()

		metrics.RecordThrottleLeading()
		b.enqueue(w)
		return
	}

	// Inside the window: coalesce onto the trailing write. Only the most
	// recent state matters since every record is a full snapshot.
	if g.pending != nil {
		metrics.RecordThrottleSuppressed()
	} else {
		metrics.RecordThrottleCoalesced()
	}
	g.pending = &w

	if g.timer == nil {
		remaining := b.throttle - now.Sub(g.lastSent)
		if remaining <= 0 {
			remaining = time.Millisecond
		}
		g.timer = sched.After(remaining, func() { b.fireTrailing(key) })
	}
	b.mu.Unlock()
}

// fireTrailing sends the coalesced write once the window closes.
func (b *Bridge) fireTrailing(key string) {
	b.mu.Lock()
	g, ok := b.gates[key]
	if !ok || g.pending == nil {
		if ok {
			g.timer = nil
		}
		b.mu.Unlock()
		return
	}
	w := *g.pending
	g.pending = nil
	g.timer = nil
	g.lastSent = time.Now()
	b.mu.Unlock()

	b.enqueue(w)
}

// Flush pushes any pending write for the participant immediately,
// bypassing the window. Used when an event finishes so the final record
// lands without the trailing delay.
func (b *Bridge) Flush(w Write) {
	key := gateKey(w)

	b.mu.Lock()
	g, ok := b.gates[key]
	if ok {
		if g.timer != nil {
			g.timer.Stop()
			g.timer = nil
		}
		g.pending = nil
		g.lastSent = time.Now()
	} else {
		b.gates[key] = &gate{lastSent: time.Now()}
	}
	b.mu.Unlock()

	b.enqueue(w)
}

// Close stops all trailing timers, delivering any pending writes first.
func (b *Bridge) Close() {
	b.mu.Lock()
	var final []Write
	for _, g := range b.gates {
		if g.timer != nil {
			g.timer.Stop()
			g.timer = nil
		}
		if g.pending != nil {
			final = append(final, *g.pending)
			g.pending = nil
		}
	}
	b.gates = make(map[string]*gate)
	b.mu.Unlock()

	for _, w := range final {
		b.enqueue(w)
	}
}

func (b *Bridge) enqueue(w Write) {
	if !b.queue.Enqueue(b.ctx, w) {
		metrics.RecordScorePushError()
		b.log.Warn(b.ctx, "write queue rejected score push",
			logger.String("event", string(w.Event)),
			logger.String("participant", w.ParticipantID))
	}
}

func gateKey(w Write) string {
	return string(w.Event) + "/" + w.ParticipantID
}
