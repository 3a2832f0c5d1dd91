package minigame

import (
	"math/rand"
	"strconv"

	"github.com/pixelparty/triathlon/internal/domain/model"
)

const (
	targetGridSize  = 9
	targetPassGoal  = 8
	targetMissLimit = 3
)

// targetShooting lights one cell of a 3x3 grid at a time; shooting the lit
// cell scores. Eight hits pass the round, three misses fail it.
type targetShooting struct {
	rng     *rand.Rand
	current int
	hits    int
	misses  int
}

func newTargetShooting(rng *rand.Rand) *targetShooting {
	g := &targetShooting{rng: rng, current: -1}
	g.current = g.nextTarget()
	return g
}

func (g *targetShooting) Type() model.GameType { return model.GameTargetShooting }

func (g *targetShooting) Prompt() map[string]any {
	return map[string]any{
		"target": g.current,
		"hits":   g.hits,
		"misses": g.misses,
		"goal":   targetPassGoal,
	}
}

func (g *targetShooting) Apply(in Input) Outcome {
	if in.Action != "shoot" {
		return OutcomeNone
	}
	cell, err := strconv.Atoi(in.Value)
	if err == nil && cell == g.current {
		g.hits++
		g.current = g.nextTarget()
		if g.hits >= targetPassGoal {
			return OutcomePassed
		}
		return OutcomeNone
	}
	g.misses++
	if g.misses >= targetMissLimit {
		return OutcomeFailed
	}
	return OutcomeNone
}

func (g *targetShooting) nextTarget() int {
	cell := g.rng.Intn(targetGridSize)
	for cell == g.current {
		cell = g.rng.Intn(targetGridSize)
	}
	return cell
}
