package minigame

import (
	"fmt"
	"math/rand"
	"strconv"

	"github.com/pixelparty/triathlon/internal/domain/model"
)

// quickMath flashes one arithmetic prompt; the first answer decides the
// round.
type quickMath struct {
	prompt string
	answer int
}

func newQuickMath(rng *rand.Rand) *quickMath {
	a := 2 + rng.Intn(18)
	b := 2 + rng.Intn(18)
	g := &quickMath{}
	switch rng.Intn(3) {
	case 0:
		g.prompt = fmt.Sprintf("%d + %d", a, b)
		g.answer = a + b
	case 1:
		g.prompt = fmt.Sprintf("%d - %d", a, b)
		g.answer = a - b
	default:
		g.prompt = fmt.Sprintf("%d x %d", a, b)
		g.answer = a * b
	}
	return g
}

func (g *quickMath) Type() model.GameType { return model.GameQuickMath }

func (g *quickMath) Prompt() map[string]any {
	return map[string]any{"expression": g.prompt}
}

func (g *quickMath) Apply(in Input) Outcome {
	if in.Action != "answer" {
		return OutcomeNone
	}
	n, err := strconv.Atoi(in.Value)
	if err == nil && n == g.answer {
		return OutcomePassed
	}
	return OutcomeFailed
}
