package minigame

import (
	"math/rand"
	"time"

	"github.com/pixelparty/triathlon/internal/domain/model"
)

// RoundOption applies a configuration option to a Round.
type RoundOption func(*Round)

// WithTimeout overrides the round countdown.
func WithTimeout(d time.Duration) RoundOption {
	return func(r *Round) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithOnResolved registers a hook invoked after the round resolves.
func WithOnResolved(fn func(game model.GameType, outcome Outcome)) RoundOption {
	return func(r *Round) {
		r.onResolved = fn
	}
}

// FactoryOption applies a configuration option to a Factory.
type FactoryOption func(*Factory)

// WithFactoryRandSource seeds game generation deterministically.
func WithFactoryRandSource(seed int64) FactoryOption {
	return func(f *Factory) {
		f.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic test seeding
	}
}

// WithTriviaBank replaces the built-in trivia questions.
func WithTriviaBank(bank []TriviaQuestion) FactoryOption {
	return func(f *Factory) {
		if len(bank) > 0 {
			f.deck = newTriviaDeck(bank)
		}
	}
}
