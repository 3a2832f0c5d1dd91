package minigame

import (
	"math/rand"

	"github.com/pixelparty/triathlon/internal/domain/model"
)

const (
	colorMatchPassGoal  = 6
	colorMatchFailLimit = 2
)

var colorNames = []string{"red", "green", "blue", "yellow"}

// colorMatch shows a color word rendered in some ink color; the player
// calls whether word and ink agree. Six correct calls pass the round, two
// wrong calls fail it.
type colorMatch struct {
	rng     *rand.Rand
	word    string
	ink     string
	correct int
	wrong   int
}

func newColorMatch(rng *rand.Rand) *colorMatch {
	g := &colorMatch{rng: rng}
	g.next()
	return g
}

func (g *colorMatch) Type() model.GameType { return model.GameColorMatch }

func (g *colorMatch) Prompt() map[string]any {
	return map[string]any{
		"word":    g.word,
		"ink":     g.ink,
		"correct": g.correct,
		"wrong":   g.wrong,
		"goal":    colorMatchPassGoal,
	}
}

func (g *colorMatch) Apply(in Input) Outcome {
	if in.Action != "call" {
		return OutcomeNone
	}
	matches := g.word == g.ink
	called := in.Value == "match"
	if matches == called {
		g.correct++
		if g.correct >= colorMatchPassGoal {
			return OutcomePassed
		}
		g.next()
		return OutcomeNone
	}
	g.wrong++
	if g.wrong >= colorMatchFailLimit {
		return OutcomeFailed
	}
	g.next()
	return OutcomeNone
}

// next draws a fresh prompt, biased so matches and mismatches both show up.
func (g *colorMatch) next() {
	g.word = colorNames[g.rng.Intn(len(colorNames))]
	if g.rng.Intn(2) == 0 {
		g.ink = g.word
		return
	}
	g.ink = colorNames[g.rng.Intn(len(colorNames))]
}
