// Package scorestore defines the shared realtime score store contract and
// its implementations.
package scorestore

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithJournal attaches a write-through journal. Existing journal entries
// are replayed into the store before it accepts traffic.
func WithJournal(j Journal) Option {
	return func(s *MemoryStore) {
		if j != nil {
			s.journal = j
		}
	}
}

// WithNotifyBuffer sets the dispatcher channel depth.
func WithNotifyBuffer(size int) Option {
	return func(s *MemoryStore) {
		if size > 0 {
			s.notifyBuffer = size
		}
	}
}
