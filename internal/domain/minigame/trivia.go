package minigame

import (
	"math/rand"
	"strconv"

	"github.com/pixelparty/triathlon/internal/domain/model"
)

// TriviaQuestion is one multiple-choice question. Answer indexes into
// Options.
type TriviaQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   int      `json:"-"`
}

// defaultTriviaBank ships enough questions that a session never repeats
// one until the deck is exhausted.
var defaultTriviaBank = []TriviaQuestion{
	{Question: "Which stroke is swum face-up?", Options: []string{"Butterfly", "Backstroke", "Breaststroke", "Freestyle"}, Answer: 1},
	{Question: "How many events make up a triathlon?", Options: []string{"Two", "Three", "Four", "Five"}, Answer: 1},
	{Question: "A marathon is roughly how many kilometers?", Options: []string{"21", "42", "50", "100"}, Answer: 1},
	{Question: "Which of these is a cycling grand tour?", Options: []string{"Tour de France", "Wimbledon", "The Ashes", "Ryder Cup"}, Answer: 0},
	{Question: "In athletics, a false start in a sprint means?", Options: []string{"Extra lap", "Disqualification risk", "Bonus points", "Free restart"}, Answer: 1},
	{Question: "Which muscle group does cycling work most?", Options: []string{"Forearms", "Neck", "Legs", "Jaw"}, Answer: 2},
	{Question: "Olympic pools are how long?", Options: []string{"25m", "50m", "75m", "100m"}, Answer: 1},
	{Question: "Drafting in cycling saves energy by?", Options: []string{"Reducing wind resistance", "Lowering gravity", "Cooling the rider", "Adding momentum"}, Answer: 0},
	{Question: "The 100m sprint world record is closest to?", Options: []string{"8.6s", "9.6s", "10.6s", "11.6s"}, Answer: 1},
	{Question: "Which equipment is required for open water swimming events?", Options: []string{"Flippers", "Swim cap", "Snorkel", "Paddles"}, Answer: 1},
}

// triviaDeck deals questions in shuffled order without repeats, reshuffling
// once the bank is exhausted.
type triviaDeck struct {
	rng   *rand.Rand
	bank  []TriviaQuestion
	order []int
	pos   int
}

func newTriviaDeck(bank []TriviaQuestion) *triviaDeck {
	return &triviaDeck{bank: append([]TriviaQuestion(nil), bank...)}
}

func (d *triviaDeck) deal() TriviaQuestion {
	if d.pos >= len(d.order) {
		d.order = d.rng.Perm(len(d.bank))
		d.pos = 0
	}
	q := d.bank[d.order[d.pos]]
	d.pos++
	return q
}

// trivia asks a single question; the answer decides the round outright.
type trivia struct {
	question TriviaQuestion
}

func newTrivia(deck *triviaDeck) *trivia {
	return &trivia{question: deck.deal()}
}

func (g *trivia) Type() model.GameType { return model.GameTrivia }

func (g *trivia) Prompt() map[string]any {
	return map[string]any{
		"question": g.question.Question,
		"options":  g.question.Options,
	}
}

func (g *trivia) Apply(in Input) Outcome {
	if in.Action != "answer" {
		return OutcomeNone
	}
	choice, err := strconv.Atoi(in.Value)
	if err == nil && choice == g.question.Answer {
		return OutcomePassed
	}
	return OutcomeFailed
}
