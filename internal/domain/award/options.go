// Package award converts final rankings into prize points.
package award

// Option applies a configuration option to the TableAwarder.
type Option func(*TableAwarder)

// WithBands replaces the points schedule. Bands must be ordered by
// Through ascending, with an optional zero Through as the open tail.
// The slice is copied to avoid external modifications.
func WithBands(bands []Band) Option {
	return func(a *TableAwarder) {
		if len(bands) == 0 {
			return
		}
		a.bands = make([]Band, len(bands))
		copy(a.bands, bands)
	}
}
