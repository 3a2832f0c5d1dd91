package minigame

import (
	"math/rand"
	"time"

	"github.com/pixelparty/triathlon/internal/domain/model"
)

// Factory builds fresh game instances. One factory lives per session so
// session-scoped state, like the trivia deck's non-repeat guarantee, holds
// across rounds.
type Factory struct {
	rng  *rand.Rand
	deck *triviaDeck
}

// NewFactory constructs a factory with the built-in trivia bank.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // game content, not security-sensitive
	}

	// Apply all options
	for _, opt := range opts {
		opt(f)
	}

	if f.deck == nil {
		f.deck = newTriviaDeck(defaultTriviaBank)
	}
	f.deck.rng = f.rng

	return f
}

// New builds a fresh instance of the given game, ready for one round.
func (f *Factory) New(t model.GameType) (Game, error) {
	switch t {
	case model.GameWhackAKey:
		return newWhackAKey(f.rng), nil
	case model.GameTargetShooting:
		return newTargetShooting(f.rng), nil
	case model.GameTrivia:
		return newTrivia(f.deck), nil
	case model.GameQuickMath:
		return newQuickMath(f.rng), nil
	case model.GameSequenceMemory:
		return newSequenceMemory(f.rng), nil
	case model.GameColorMatch:
		return newColorMatch(f.rng), nil
	default:
		return nil, ErrUnknownGame
	}
}
