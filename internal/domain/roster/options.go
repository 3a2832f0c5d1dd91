// Package roster tracks which identity keys are already claimed.
package roster

// Option applies a configuration option to the InMemoryRoster.
type Option func(*inMemoryRoster)

// WithCapacityHint pre-sizes the claims map for an expected number of
// participants.
func WithCapacityHint(n int) Option {
	return func(r *inMemoryRoster) {
		if n > 0 {
			r.claims = make(map[string]string, n)
		}
	}
}
