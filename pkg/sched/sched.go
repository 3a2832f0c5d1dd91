// Package sched provides cancellable timers with exactly-once release
// semantics. Every operation that starts a timer returns a Handle, and a
// Registry collects the handles acquired for one scope (a round, a session)
// so the scope can release all of them exactly once on exit.
package sched

import (
	"sync"
	"time"
)

// Handle represents a cancellable resource such as a running timer or a
// subscription. Stop is safe to call multiple times; only the first call
// has an effect.
type Handle interface {
	Stop()
}

// HandleFunc adapts a plain function to a Handle with exactly-once semantics.
type HandleFunc func()

type funcHandle struct {
	once sync.Once
	fn   func()
}

func (h *funcHandle) Stop() {
	h.once.Do(h.fn)
}

// NewHandle wraps fn so it runs at most once regardless of how many times
// Stop is invoked.
func NewHandle(fn func()) Handle {
	return &funcHandle{fn: fn}
}

// Repeat invokes fn every interval until the returned Handle is stopped.
// The first invocation happens one interval after the call, matching
// time.Ticker semantics.
func Repeat(interval time.Duration, fn func()) Handle {
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
	return NewHandle(func() { close(stop) })
}

// After invokes fn once after d unless the returned Handle is stopped first.
func After(d time.Duration, fn func()) Handle {
	t := time.AfterFunc(d, fn)
	return NewHandle(func() { t.Stop() })
}

// Registry collects handles acquired within one scope. StopAll releases
// every tracked handle exactly once; handles added after release are
// stopped immediately so a racing acquisition cannot leak.
type Registry struct {
	mu       sync.Mutex
	handles  []Handle
	released bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add tracks h and returns it for convenience.
func (r *Registry) Add(h Handle) Handle {
	r.mu.Lock()
	if r.released {
		r.mu.Unlock()
		h.Stop()
		return h
	}
	r.handles = append(r.handles, h)
	r.mu.Unlock()
	return h
}

// Repeat starts a repeating timer tracked by the registry.
func (r *Registry) Repeat(interval time.Duration, fn func()) Handle {
	return r.Add(Repeat(interval, fn))
}

// After starts a one-shot timer tracked by the registry.
func (r *Registry) After(d time.Duration, fn func()) Handle {
	return r.Add(After(d, fn))
}

// StopAll releases every tracked handle. Subsequent calls are no-ops.
func (r *Registry) StopAll() {
	r.mu.Lock()
	if r.released {
		r.mu.Unlock()
		return
	}
	r.released = true
	handles := r.handles
	r.handles = nil
	r.mu.Unlock()

	for _, h := range handles {
		h.Stop()
	}
}

// Len returns the number of currently tracked handles.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}
