package minigame

import (
	"math/rand"

	"github.com/pixelparty/triathlon/internal/domain/model"
)

const sequenceLength = 5

var sequenceSymbols = []string{"up", "down", "left", "right"}

// sequenceMemory shows a symbol sequence once and asks the player to
// replay it in order. A full replay passes; the first wrong entry fails.
type sequenceMemory struct {
	sequence []string
	pos      int
}

func newSequenceMemory(rng *rand.Rand) *sequenceMemory {
	seq := make([]string, sequenceLength)
	for i := range seq {
		seq[i] = sequenceSymbols[rng.Intn(len(sequenceSymbols))]
	}
	return &sequenceMemory{sequence: seq}
}

func (g *sequenceMemory) Type() model.GameType { return model.GameSequenceMemory }

func (g *sequenceMemory) Prompt() map[string]any {
	return map[string]any{
		"sequence": g.sequence,
		"position": g.pos,
	}
}

func (g *sequenceMemory) Apply(in Input) Outcome {
	if in.Action != "recall" {
		return OutcomeNone
	}
	if g.pos < len(g.sequence) && in.Value == g.sequence[g.pos] {
		g.pos++
		if g.pos == len(g.sequence) {
			return OutcomePassed
		}
		return OutcomeNone
	}
	return OutcomeFailed
}
