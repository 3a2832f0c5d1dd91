// Package selector picks the next mini-game from an event's catalog.
package selector

import (
	"math/rand"
	"sync"
	"time"

	"github.com/pixelparty/triathlon/internal/domain/model"
)

// Selector draws mini-games from a fixed catalog with the guarantee that
// consecutive draws never repeat. Draws from timer callbacks and admin
// paths can overlap, so the selector serializes its own state.
type Selector struct {
	mu      sync.Mutex
	catalog []model.GameType
	rng     *rand.Rand
	last    model.GameType
	drawn   bool
}

// New validates the catalog and returns a selector over it. Catalogs with
// fewer than two games cannot honor the no-repeat guarantee and are
// rejected outright rather than discovered mid-event.
func New(catalog []model.GameType, opts ...Option) (*Selector, error) {
	if len(catalog) == 0 {
		return nil, ErrEmptyCatalog
	}
	if len(catalog) == 1 {
		return nil, ErrSingletonCatalog
	}

	s := &Selector{
		catalog: append([]model.GameType(nil), catalog...),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // game selection, not security-sensitive
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// ForEvent returns a selector over the event's default catalog.
func ForEvent(event model.EventType, opts ...Option) (*Selector, error) {
	return New(model.DefaultCatalog(event), opts...)
}

// Next draws the next game. The first draw is uniform over the catalog;
// every later draw redraws until it differs from the previous result.
func (s *Selector) Next() model.GameType {
	s.mu.Lock()
	defer s.mu.Unlock()

	pick := s.catalog[s.rng.Intn(len(s.catalog))]
	for s.drawn && pick == s.last {
		pick = s.catalog[s.rng.Intn(len(s.catalog))]
	}
	s.last = pick
	s.drawn = true
	return pick
}

// Last returns the most recent draw, if any.
func (s *Selector) Last() (model.GameType, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.last, s.drawn
}
