// Package progress implements the per-participant event progress state
// machine: elapsed time, speed, distance accumulation, and the trigger
// token that forces the next mini-game to be selected.
package progress

import (
	"math/rand"
	"sync"
	"time"

	"github.com/pixelparty/triathlon/pkg/metrics"
	"github.com/pixelparty/triathlon/pkg/sched"
)

// Speed and distance constants. Speed moves in discrete steps and is
// clamped at both bounds; adjustments beyond a bound are no-ops.
const (
	MinSpeed     = 50
	MaxSpeed     = 150
	SpeedStep    = 25
	InitialSpeed = 100

	// DefaultTotalDistance is the distance at which an event completes.
	DefaultTotalDistance = 1000.0

	// Tick cadence: time advances in 0.1s ticks, distance every 500ms.
	defaultTimeTick     = 100 * time.Millisecond
	defaultDistanceTick = 500 * time.Millisecond

	triggerFloor = 1000
	triggerSpan  = 1000
)

// Snapshot is an immutable view of the tracker state.
type Snapshot struct {
	Started          bool
	Finished         bool
	Time             int64 // ticks of 0.1s
	FinishTime       int64
	Speed            int
	DistanceTraveled float64
	TotalDistance    float64
	Trigger          int
}

// Complete reports whether the event is complete for this participant.
// Reaching the total distance completes the event regardless of the
// finished flag.
func (s Snapshot) Complete() bool {
	return s.Finished || s.DistanceTraveled >= s.TotalDistance
}

// Tracker is the event progress state machine for one participant. All
// mutations are serialized internally; timer callbacks, input handlers and
// subscription callbacks may call in concurrently.
type Tracker struct {
	mu         sync.Mutex
	started    bool
	finished   bool
	timeTicks  int64
	finishTime int64
	speed      int
	distance   float64
	total      float64
	trigger    int

	timeTick     time.Duration
	distanceTick time.Duration
	timers       *sched.Registry
	rng          *rand.Rand

	onChange  func(Snapshot)
	onTrigger func(trigger int)
}

// New constructs a tracker in its initial state. The trigger starts at a
// random token so the first selection is already seeded.
func New(opts ...Option) *Tracker {
	t := &Tracker{
		speed:        InitialSpeed,
		total:        DefaultTotalDistance,
		timeTick:     defaultTimeTick,
		distanceTick: defaultDistanceTick,
		timers:       sched.NewRegistry(),
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // game token, not security-sensitive
	}

	// Apply all options
	for _, opt := range opts {
		opt(t)
	}

	t.trigger = triggerFloor + t.rng.Intn(triggerSpan)

	return t
}

// Start flips the started flag and begins the time and distance timers.
// Calling Start on an already started tracker is a no-op.
func (t *Tracker) Start() {
	t.mu.Lock()
	if t.started {
		t.mu.Unlock()
		return
	}
	t.started = true
	t.timers.Repeat(t.timeTick, t.tickTime)
	t.timers.Repeat(t.distanceTick, t.tickDistance)
	snap := t.snapshotLocked()
	t.mu.Unlock()

	t.notify(snap)
}

// tickTime advances elapsed time while the event is live.
func (t *Tracker) tickTime() {
	t.mu.Lock()
	if !t.started || t.finished {
		t.mu.Unlock()
		return
	}
	t.timeTicks++
	snap := t.snapshotLocked()
	t.mu.Unlock()

	t.notify(snap)
}

// tickDistance advances distance as a function of the current speed.
func (t *Tracker) tickDistance() {
	t.mu.Lock()
	if !t.started || t.finished {
		t.mu.Unlock()
		return
	}
	t.setDistanceLocked(t.distance + 1 + bonusFor(t.speed))
	snap := t.snapshotLocked()
	t.mu.Unlock()

	t.notify(snap)
}

// bonusFor maps a speed step to its per-tick distance bonus.
func bonusFor(speed int) float64 {
	switch speed {
	case MinSpeed:
		return 0
	case 75:
		return 1
	case 100:
		return 2
	case 125:
		return 3
	default:
		return 5
	}
}

// Finish marks the event finished and captures the finish time. Idempotent:
// a second call leaves finishTime at its first value.
func (t *Tracker) Finish() {
	t.mu.Lock()
	changed := t.finishLocked()
	snap := t.snapshotLocked()
	t.mu.Unlock()

	if changed {
		t.notify(snap)
	}
}

func (t *Tracker) finishLocked() bool {
	if t.finished {
		return false
	}
	if !t.started {
		// finished implies started
		t.started = true
	}
	t.finished = true
	t.finishTime = t.timeTicks
	t.timers.StopAll()
	metrics.RecordEventFinished()
	return true
}

// SpeedIncrease raises speed one step, clamped at MaxSpeed.
func (t *Tracker) SpeedIncrease() {
	t.adjustSpeed(SpeedStep)
}

// SpeedDecrease lowers speed one step, clamped at MinSpeed.
func (t *Tracker) SpeedDecrease() {
	t.adjustSpeed(-SpeedStep)
}

func (t *Tracker) adjustSpeed(delta int) {
	t.mu.Lock()
	next := t.speed + delta
	if next < MinSpeed || next > MaxSpeed {
		t.mu.Unlock()
		return
	}
	t.speed = next
	snap := t.snapshotLocked()
	t.mu.Unlock()

	t.notify(snap)
}

// SetDistanceTraveled sets the accumulator directly. The state layer
// enforces monotonicity: decreasing values are dropped, and values beyond
// the total distance are clamped. Reaching the total finishes the event.
func (t *Tracker) SetDistanceTraveled(d float64) {
	t.mu.Lock()
	if d <= t.distance {
		t.mu.Unlock()
		return
	}
	t.setDistanceLocked(d)
	snap := t.snapshotLocked()
	t.mu.Unlock()

	t.notify(snap)
}

func (t *Tracker) setDistanceLocked(d float64) {
	if d > t.total {
		d = t.total
	}
	if d <= t.distance {
		return
	}
	t.distance = d
	if t.distance >= t.total {
		t.finishLocked()
	}
}

// RequestReseed rotates the trigger token, forcing the selector to pick
// the next mini-game. The new token always differs from the current one.
func (t *Tracker) RequestReseed() {
	t.mu.Lock()
	next := t.trigger
	for next == t.trigger {
		next = triggerFloor + t.rng.Intn(triggerSpan)
	}
	t.trigger = next
	cb := t.onTrigger
	t.mu.Unlock()

	metrics.RecordTriggerReseed()
	if cb != nil {
		cb(next)
	}
}

// Reset returns the tracker to its full initial state: flags, time, speed
// and distance. One consistent contract for all event types.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.timers.StopAll()
	t.timers = sched.NewRegistry()
	t.started = false
	t.finished = false
	t.timeTicks = 0
	t.finishTime = 0
	t.speed = InitialSpeed
	t.distance = 0
	snap := t.snapshotLocked()
	t.mu.Unlock()

	t.notify(snap)
}

// Stop releases the tracker's timers. Called on session teardown; the
// tracker keeps its state so a final snapshot can still be read.
func (t *Tracker) Stop() {
	t.mu.Lock()
	t.timers.StopAll()
	t.mu.Unlock()
}

// Snapshot returns a consistent copy of the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() Snapshot {
	return Snapshot{
		Started:          t.started,
		Finished:         t.finished,
		Time:             t.timeTicks,
		FinishTime:       t.finishTime,
		Speed:            t.speed,
		DistanceTraveled: t.distance,
		TotalDistance:    t.total,
		Trigger:          t.trigger,
	}
}

// notify runs the change callback outside the lock so it may call back
// into the tracker.
func (t *Tracker) notify(snap Snapshot) {
	if t.onChange != nil {
		t.onChange(snap)
	}
}
