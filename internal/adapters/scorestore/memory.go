package scorestore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/pixelparty/triathlon/pkg/metrics"
	"github.com/pixelparty/triathlon/pkg/sched"
)

// Default store configuration constants.
const (
	defaultNotifyBuffer = 1024
)

// MemoryStore implements Store over an in-process document tree with
// subscription fan-out. A single dispatcher goroutine delivers
// notifications, so every subscriber observes writes to one path in the
// order the store accepted them.
type MemoryStore struct {
	mu      sync.RWMutex
	root    map[string]any
	subs    map[int]*subscription
	nextSub int
	closed  bool

	journal Journal

	notifyCh     chan notification
	notifyBuffer int
	stopChan     chan struct{}
	wg           sync.WaitGroup
}

type subscription struct {
	id     int
	path   []string
	fn     func(value any, ok bool)
	listFn func(children []Child)
}

type notification struct {
	sub      *subscription
	value    any
	ok       bool
	children []Child
}

// NewMemoryStore constructs a memory store, replays the journal when one is
// configured, and starts the notification dispatcher.
func NewMemoryStore(ctx context.Context, opts ...Option) (*MemoryStore, error) {
	s := &MemoryStore{
		root:         make(map[string]any),
		subs:         make(map[int]*subscription),
		notifyBuffer: defaultNotifyBuffer,
		stopChan:     make(chan struct{}),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	if s.journal != nil {
		err := s.journal.Replay(func(path string, value any, merge bool) error {
			if merge {
				partial, ok := value.(map[string]any)
				if !ok {
					return ErrCorruptJournal
				}
				s.mergeLocked(splitPath(path), partial)
				return nil
			}
			s.setLocked(splitPath(path), value)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	s.notifyCh = make(chan notification, s.notifyBuffer)
	s.wg.Add(1)
	go s.dispatch()

	return s, nil
}

// dispatch delivers queued notifications in acceptance order.
func (s *MemoryStore) dispatch() {
	defer s.wg.Done()
	for {
		select {
		case <-s.stopChan:
			return
		case n := <-s.notifyCh:
			if n.sub.listFn != nil {
				n.sub.listFn(n.children)
			} else {
				n.sub.fn(n.value, n.ok)
			}
			metrics.RecordStoreNotify()
		}
	}
}

// Get returns the value at path.
func (s *MemoryStore) Get(ctx context.Context, path string) (any, bool, error) {
	metrics.RecordStoreOp("get")

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, false, ErrClosed
	}
	v, ok := lookup(s.root, splitPath(path))
	if !ok {
		return nil, false, nil
	}
	return clone(v), true, nil
}

// Set replaces the value at path. Replace drops fields absent from value;
// callers that must preserve existing fields use Update.
func (s *MemoryStore) Set(ctx context.Context, path string, value any) error {
	metrics.RecordStoreOp("set")

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.journal != nil {
		if err := s.journal.Append(path, value, false); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	segs := splitPath(path)
	s.setLocked(segs, value)
	pending := s.collectLocked(segs)
	s.mu.Unlock()

	s.enqueue(pending)
	return nil
}

// Update merges partial into the document at path.
func (s *MemoryStore) Update(ctx context.Context, path string, partial map[string]any) error {
	metrics.RecordStoreOp("update")

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.journal != nil {
		if err := s.journal.Append(path, partial, true); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	segs := splitPath(path)
	s.mergeLocked(segs, partial)
	pending := s.collectLocked(segs)
	s.mu.Unlock()

	s.enqueue(pending)
	return nil
}

// Subscribe registers fn for path and queues the immediate initial delivery.
func (s *MemoryStore) Subscribe(ctx context.Context, path string, fn func(value any, ok bool)) (sched.Handle, error) {
	return s.subscribe(path, fn, nil)
}

// SubscribeList registers fn for the keyed children of path.
func (s *MemoryStore) SubscribeList(ctx context.Context, path string, fn func(children []Child)) (sched.Handle, error) {
	return s.subscribe(path, nil, fn)
}

func (s *MemoryStore) subscribe(path string, fn func(any, bool), listFn func([]Child)) (sched.Handle, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	s.nextSub++
	sub := &subscription{
		id:     s.nextSub,
		path:   splitPath(path),
		fn:     fn,
		listFn: listFn,
	}
	s.subs[sub.id] = sub
	initial := s.snapshotLocked(sub)
	metrics.UpdateStoreSubscribers(len(s.subs))
	s.mu.Unlock()

	s.enqueue([]notification{initial})

	id := sub.id
	return sched.NewHandle(func() {
		s.mu.Lock()
		delete(s.subs, id)
		metrics.UpdateStoreSubscribers(len(s.subs))
		s.mu.Unlock()
	}), nil
}

// Close cancels all subscriptions and stops the dispatcher.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.subs = make(map[int]*subscription)
	s.mu.Unlock()

	close(s.stopChan)
	s.wg.Wait()

	if s.journal != nil {
		return s.journal.Close()
	}
	return nil
}

// enqueue hands notifications to the dispatcher, dropping them when the
// store is shutting down.
func (s *MemoryStore) enqueue(pending []notification) {
	for _, n := range pending {
		select {
		case s.notifyCh <- n:
		case <-s.stopChan:
			return
		}
	}
}

// collectLocked snapshots every subscription affected by a write at segs.
// A subscription is affected when its path is an ancestor of, equal to, or
// a descendant of the written path.
func (s *MemoryStore) collectLocked(segs []string) []notification {
	var pending []notification
	for _, sub := range s.subs {
		if !related(sub.path, segs) {
			continue
		}
		pending = append(pending, s.snapshotLocked(sub))
	}
	// Deterministic delivery order across subscribers.
	sort.Slice(pending, func(i, j int) bool { return pending[i].sub.id < pending[j].sub.id })
	return pending
}

// snapshotLocked captures the current value (or child list) at sub's path.
func (s *MemoryStore) snapshotLocked(sub *subscription) notification {
	v, ok := lookup(s.root, sub.path)
	if sub.listFn != nil {
		return notification{sub: sub, children: childrenOf(v)}
	}
	if !ok {
		return notification{sub: sub}
	}
	return notification{sub: sub, value: clone(v), ok: true}
}

func (s *MemoryStore) setLocked(segs []string, value any) {
	if len(segs) == 0 {
		if m, ok := value.(map[string]any); ok {
			s.root = clone(m).(map[string]any)
		}
		return
	}
	parent := s.ensureParents(segs)
	parent[segs[len(segs)-1]] = clone(value)
}

func (s *MemoryStore) mergeLocked(segs []string, partial map[string]any) {
	parent := s.ensureParents(segs)
	key := segs[len(segs)-1]
	existing, ok := parent[key].(map[string]any)
	if !ok {
		existing = make(map[string]any)
		parent[key] = existing
	}
	for k, v := range partial {
		existing[k] = clone(v)
	}
}

// ensureParents walks to the parent of segs, replacing any non-map
// intermediate with a fresh map.
func (s *MemoryStore) ensureParents(segs []string) map[string]any {
	node := s.root
	for _, seg := range segs[:len(segs)-1] {
		child, ok := node[seg].(map[string]any)
		if !ok {
			child = make(map[string]any)
			node[seg] = child
		}
		node = child
	}
	return node
}

// lookup walks the tree; ok is false when any segment is absent.
func lookup(root map[string]any, segs []string) (any, bool) {
	var cur any = root
	for _, seg := range segs {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// childrenOf lists the keyed children of a collection node in ascending key
// order, which keeps the logical ordering identical for every subscriber.
func childrenOf(v any) []Child {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	children := make([]Child, 0, len(keys))
	for _, k := range keys {
		children = append(children, Child{Key: k, Value: clone(m[k])})
	}
	return children
}

// related reports whether a and b lie on one root-to-leaf line.
func related(a, b []string) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// clone deep-copies document values so callers can never alias store state.
func clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = clone(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = clone(val)
		}
		return out
	default:
		return v
	}
}
