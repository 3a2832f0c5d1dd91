package minigame

import (
	"math/rand"

	"github.com/pixelparty/triathlon/internal/domain/model"
)

const (
	whackPassTarget = 10
	whackFailLimit  = 3
)

// whackMoleKeys is the pool of keys a mole can surface on.
var whackMoleKeys = []string{"a", "s", "d", "f", "j", "k", "l"}

// whackAKey surfaces a mole on a random key; pressing the matching key
// scores a hit, anything else is a miss. Ten hits pass the round, three
// misses fail it.
type whackAKey struct {
	rng       *rand.Rand
	current   string
	correct   int
	incorrect int
}

func newWhackAKey(rng *rand.Rand) *whackAKey {
	g := &whackAKey{rng: rng}
	g.current = g.nextKey("")
	return g
}

func (g *whackAKey) Type() model.GameType { return model.GameWhackAKey }

func (g *whackAKey) Prompt() map[string]any {
	return map[string]any{
		"moleKey":   g.current,
		"correct":   g.correct,
		"incorrect": g.incorrect,
		"target":    whackPassTarget,
	}
}

func (g *whackAKey) Apply(in Input) Outcome {
	if in.Action != "press" {
		return OutcomeNone
	}
	if in.Value == g.current {
		g.correct++
		g.current = g.nextKey(g.current)
		if g.correct >= whackPassTarget {
			return OutcomePassed
		}
		return OutcomeNone
	}
	g.incorrect++
	if g.incorrect >= whackFailLimit {
		return OutcomeFailed
	}
	return OutcomeNone
}

// nextKey draws a key different from the previous one so consecutive moles
// never land on the same spot.
func (g *whackAKey) nextKey(prev string) string {
	key := whackMoleKeys[g.rng.Intn(len(whackMoleKeys))]
	for key == prev {
		key = whackMoleKeys[g.rng.Intn(len(whackMoleKeys))]
	}
	return key
}
