// Package roster tracks which identity keys are already claimed.
package roster

import (
	"context"
	"sync"
	"sync/atomic"
)

// Roster records claimed keys so each one belongs to at most one owner.
type Roster interface {
	// Claim atomically checks whether key is taken and claims it for
	// owner if not. Returns false when the key already has an owner.
	Claim(ctx context.Context, key, owner string) bool

	// Release frees a claimed key, allowing it to be claimed again.
	// This should only be used when a claim was recorded but the owner
	// could not be fully registered.
	Release(ctx context.Context, key string)

	// Owner reports who holds key.
	Owner(ctx context.Context, key string) (string, bool)

	Size() int64
}

// inMemoryRoster implements Roster with a mutex-guarded map. Claims are
// never evicted: a key stays taken for the lifetime of the process.
type inMemoryRoster struct {
	mu     sync.RWMutex
	claims map[string]string // key -> owner
	size   atomic.Int64
}

// NewInMemoryRoster creates a new in-memory roster with configuration options.
func NewInMemoryRoster(opts ...Option) Roster {
	r := &inMemoryRoster{}

	// Apply all options
	for _, opt := range opts {
		opt(r)
	}

	if r.claims == nil {
		r.claims = make(map[string]string)
	}

	return r
}

// Claim atomically checks whether key is taken and claims it if not.
func (r *inMemoryRoster) Claim(ctx context.Context, key, owner string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.claims[key]; taken {
		return false
	}
	r.claims[key] = owner
	r.size.Add(1)
	return true
}

// Release frees a claimed key.
func (r *inMemoryRoster) Release(ctx context.Context, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.claims[key]; taken {
		delete(r.claims, key)
		r.size.Add(-1)
	}
}

// Owner reports who holds key.
func (r *inMemoryRoster) Owner(ctx context.Context, key string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owner, ok := r.claims[key]
	return owner, ok
}

// Size returns the current number of claims.
func (r *inMemoryRoster) Size() int64 {
	return r.size.Load()
}
