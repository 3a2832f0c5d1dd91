package minigame_test

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/pixelparty/triathlon/internal/domain/minigame"
	"github.com/pixelparty/triathlon/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

// recorder captures progress callbacks for assertions.
type recorder struct {
	mu        sync.Mutex
	increases int
	decreases int
	reseeds   int
}

func (r *recorder) SpeedIncrease() { r.mu.Lock(); r.increases++; r.mu.Unlock() }
func (r *recorder) SpeedDecrease() { r.mu.Lock(); r.decreases++; r.mu.Unlock() }
func (r *recorder) RequestReseed() { r.mu.Lock(); r.reseeds++; r.mu.Unlock() }

func (r *recorder) counts() (int, int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.increases, r.decreases, r.reseeds
}

// newTriviaRound builds an active trivia round with a known answer.
func newTriviaRound(t *testing.T, cb minigame.Callbacks, opts ...minigame.RoundOption) *minigame.Round {
	t.Helper()
	f := minigame.NewFactory(
		minigame.WithFactoryRandSource(1),
		minigame.WithTriviaBank([]minigame.TriviaQuestion{
			{Question: "q1", Options: []string{"a", "b"}, Answer: 1},
			{Question: "q2", Options: []string{"a", "b"}, Answer: 0},
		}),
	)
	g, err := f.New(model.GameTrivia)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	r := minigame.NewRound(g, cb, opts...)
	r.Begin()
	return r
}

func TestRoundResolution(t *testing.T) {
	convey.Convey("Given an active trivia round", t, func() {
		cb := &recorder{}
		r := newTriviaRound(t, cb)

		answer := correctAnswer(r)

		convey.Convey("When the correct answer arrives", func() {
			convey.So(r.Input(minigame.Input{Action: "answer", Value: answer}), convey.ShouldBeNil)

			convey.Convey("Then the round passes and speed rises exactly once", func() {
				phase, outcome := r.State()
				convey.So(phase, convey.ShouldEqual, minigame.PhaseResolved)
				convey.So(outcome, convey.ShouldEqual, minigame.OutcomePassed)

				inc, dec, reseeds := cb.counts()
				convey.So(inc, convey.ShouldEqual, 1)
				convey.So(dec, convey.ShouldEqual, 0)
				convey.So(reseeds, convey.ShouldEqual, 1)
			})

			convey.Convey("Then later inputs are dropped without touching the result", func() {
				err := r.Input(minigame.Input{Action: "answer", Value: "0"})
				convey.So(err, convey.ShouldEqual, minigame.ErrRoundResolved)

				_, outcome := r.State()
				convey.So(outcome, convey.ShouldEqual, minigame.OutcomePassed)

				inc, _, reseeds := cb.counts()
				convey.So(inc, convey.ShouldEqual, 1)
				convey.So(reseeds, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When a wrong answer arrives", func() {
			wrong := "0"
			if answer == "0" {
				wrong = "1"
			}
			convey.So(r.Input(minigame.Input{Action: "answer", Value: wrong}), convey.ShouldBeNil)

			convey.Convey("Then the round fails and speed drops", func() {
				_, outcome := r.State()
				convey.So(outcome, convey.ShouldEqual, minigame.OutcomeFailed)

				inc, dec, reseeds := cb.counts()
				convey.So(inc, convey.ShouldEqual, 0)
				convey.So(dec, convey.ShouldEqual, 1)
				convey.So(reseeds, convey.ShouldEqual, 1)
			})
		})
	})
}

func TestRoundLifecycleGuards(t *testing.T) {
	convey.Convey("Given a round that has not begun", t, func() {
		cb := &recorder{}
		f := minigame.NewFactory(minigame.WithFactoryRandSource(1))
		g, err := f.New(model.GameQuickMath)
		convey.So(err, convey.ShouldBeNil)
		r := minigame.NewRound(g, cb)

		convey.Convey("When an input arrives early", func() {
			err := r.Input(minigame.Input{Action: "answer", Value: "1"})

			convey.Convey("Then it is rejected", func() {
				convey.So(err, convey.ShouldEqual, minigame.ErrRoundNotStarted)
			})
		})

		convey.Convey("When Begin is called twice", func() {
			r.Begin()
			r.Begin()

			convey.Convey("Then the round is simply active", func() {
				phase, _ := r.State()
				convey.So(phase, convey.ShouldEqual, minigame.PhaseActive)
			})
		})
	})
}

func TestRoundTimeout(t *testing.T) {
	convey.Convey("Given a round with a short countdown", t, func() {
		cb := &recorder{}
		r := newTriviaRound(t, cb, minigame.WithTimeout(5*time.Millisecond))

		convey.Convey("When the countdown expires with no input", func() {
			waitFor(t, func() bool {
				phase, _ := r.State()
				return phase == minigame.PhaseResolved
			})

			convey.Convey("Then the round fails", func() {
				_, outcome := r.State()
				convey.So(outcome, convey.ShouldEqual, minigame.OutcomeFailed)

				_, dec, reseeds := cb.counts()
				convey.So(dec, convey.ShouldEqual, 1)
				convey.So(reseeds, convey.ShouldEqual, 1)
			})
		})
	})
}

func TestRoundCancel(t *testing.T) {
	convey.Convey("Given an active round", t, func() {
		cb := &recorder{}
		r := newTriviaRound(t, cb)

		convey.Convey("When the round is canceled", func() {
			r.Cancel()

			convey.Convey("Then it resolves with no outcome and no speed change", func() {
				phase, outcome := r.State()
				convey.So(phase, convey.ShouldEqual, minigame.PhaseResolved)
				convey.So(outcome, convey.ShouldEqual, minigame.OutcomeNone)

				inc, dec, reseeds := cb.counts()
				convey.So(inc, convey.ShouldEqual, 0)
				convey.So(dec, convey.ShouldEqual, 0)
				convey.So(reseeds, convey.ShouldEqual, 0)
			})
		})
	})
}

// correctAnswer digs the right option index out of the round prompt by
// replaying the bank used in newTriviaRound.
func correctAnswer(r *minigame.Round) string {
	prompt := r.Prompt()
	if prompt["question"] == "q1" {
		return strconv.Itoa(1)
	}
	return strconv.Itoa(0)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
