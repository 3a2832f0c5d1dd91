package simulate

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/pixelparty/triathlon/pkg/logger"
)

// pollInterval paces each simulated participant's input loop.
const pollInterval = 150 * time.Millisecond

var whackKeys = []string{"a", "s", "d", "f", "j", "k", "l"}

// player drives one logged-in participant until the run finishes or the
// context is cancelled.
type player struct {
	client *client
	id     string
	name   string
	skill  float64
	rng    *rand.Rand
	stats  *Stats
}

func (p *player) run(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		prog, err := p.client.progress(ctx, p.id)
		if err != nil {
			continue
		}
		if prog.Finished {
			return
		}
		if !prog.Started {
			continue
		}

		round, err := p.client.round(ctx, p.id)
		if err != nil || round == nil {
			continue
		}
		p.answer(ctx, round)
	}
}

// answer submits one step toward the open round. Memory rounds replay
// the whole sequence in a burst since the prompt does not advance.
func (p *player) answer(ctx context.Context, round *roundState) {
	sharp := p.rng.Float64() < p.skill

	switch round.Game {
	case "whackAKey":
		key, _ := round.Prompt["moleKey"].(string)
		if !sharp {
			key = p.wrongKey(key)
		}
		p.submit(ctx, "press", key)

	case "targetShooting":
		cell := promptInt(round.Prompt, "target")
		if !sharp {
			cell = (cell + 1) % 9
		}
		p.submit(ctx, "shoot", strconv.Itoa(cell))

	case "triviaGame":
		options, _ := round.Prompt["options"].([]any)
		if len(options) == 0 {
			return
		}
		p.submit(ctx, "answer", strconv.Itoa(p.rng.Intn(len(options))))

	case "quickMathReflex":
		expr, _ := round.Prompt["expression"].(string)
		result, ok := evalExpression(expr)
		if !ok {
			return
		}
		if !sharp {
			result++
		}
		p.submit(ctx, "answer", strconv.Itoa(result))

	case "sequenceMemory":
		seq, _ := round.Prompt["sequence"].([]any)
		if !sharp && len(seq) > 0 {
			sym, _ := seq[0].(string)
			p.submit(ctx, "recall", p.wrongSymbol(sym))
			return
		}
		for _, raw := range seq {
			sym, _ := raw.(string)
			if !p.submit(ctx, "recall", sym) {
				return
			}
		}

	case "colorMatch":
		word, _ := round.Prompt["word"].(string)
		ink, _ := round.Prompt["ink"].(string)
		call := "noMatch"
		if word == ink {
			call = "match"
		}
		if !sharp {
			if call == "match" {
				call = "noMatch"
			} else {
				call = "match"
			}
		}
		p.submit(ctx, "call", call)

	default:
		logger.Get().Debug(ctx, "unknown game in round", logger.String("game", round.Game))
	}
}

func (p *player) submit(ctx context.Context, action, value string) bool {
	accepted, err := p.client.submitInput(ctx, p.id, action, value)
	if err != nil {
		return false
	}
	if !accepted {
		atomic.AddInt64(&p.stats.InputsRejected, 1)
		return false
	}
	atomic.AddInt64(&p.stats.RoundsAnswered, 1)
	return true
}

func (p *player) wrongKey(right string) string {
	for {
		k := whackKeys[p.rng.Intn(len(whackKeys))]
		if k != right {
			return k
		}
	}
}

func (p *player) wrongSymbol(right string) string {
	symbols := []string{"up", "down", "left", "right"}
	for {
		s := symbols[p.rng.Intn(len(symbols))]
		if s != right {
			return s
		}
	}
}

func promptInt(prompt map[string]any, key string) int {
	switch v := prompt[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

// evalExpression computes "a op b" arithmetic prompts.
func evalExpression(expr string) (int, bool) {
	var a, b int
	var op string
	if _, err := fmt.Sscanf(expr, "%d %s %d", &a, &op, &b); err != nil {
		return 0, false
	}
	switch op {
	case "+":
		return a + b, true
	case "-":
		return a - b, true
	case "x":
		return a * b, true
	default:
		return 0, false
	}
}
