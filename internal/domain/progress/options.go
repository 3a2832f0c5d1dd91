package progress

import (
	"math/rand"
	"time"
)

// Option applies a configuration option to the Tracker.
type Option func(*Tracker)

// WithTotalDistance overrides the distance at which the event completes.
func WithTotalDistance(total float64) Option {
	return func(t *Tracker) {
		if total > 0 {
			t.total = total
		}
	}
}

// WithTickIntervals overrides the time and distance tick cadence. Tests use
// short intervals to keep wall time down.
func WithTickIntervals(timeTick, distanceTick time.Duration) Option {
	return func(t *Tracker) {
		if timeTick > 0 {
			t.timeTick = timeTick
		}
		if distanceTick > 0 {
			t.distanceTick = distanceTick
		}
	}
}

// WithOnChange registers the callback invoked after every state mutation.
// The sync bridge hangs off this hook.
func WithOnChange(fn func(Snapshot)) Option {
	return func(t *Tracker) {
		t.onChange = fn
	}
}

// WithOnTrigger registers the callback invoked when the trigger token
// rotates.
func WithOnTrigger(fn func(trigger int)) Option {
	return func(t *Tracker) {
		t.onTrigger = fn
	}
}

// WithRandSource seeds the trigger generator deterministically.
func WithRandSource(seed int64) Option {
	return func(t *Tracker) {
		t.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic test seeding
	}
}
