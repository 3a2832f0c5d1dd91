package selector

import "math/rand"

// Option applies a configuration option to the Selector.
type Option func(*Selector)

// WithRandSource seeds the draw generator deterministically.
func WithRandSource(seed int64) Option {
	return func(s *Selector) {
		s.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic test seeding
	}
}
