// Package minigame implements the mini-game round lifecycle and the games
// themselves. A round moves idle -> active -> resolved exactly once; the
// resolution feeds back into event progress through the Callbacks hook.
package minigame

import (
	"sync"
	"time"

	"github.com/pixelparty/triathlon/internal/domain/model"
	"github.com/pixelparty/triathlon/pkg/metrics"
	"github.com/pixelparty/triathlon/pkg/sched"
)

// DefaultRoundTimeout bounds how long a round stays open before it is
// resolved as failed.
const DefaultRoundTimeout = 30 * time.Second

// Phase is the round lifecycle state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseActive
	PhaseResolved
)

// Outcome is the round result.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomePassed
	OutcomeFailed
)

// Input is one player action within a round. Games interpret Action and
// Value themselves.
type Input struct {
	Action string `json:"action"`
	Value  string `json:"value"`
}

// Game is one playable mini-game instance, valid for a single round.
type Game interface {
	// Type identifies the game.
	Type() model.GameType

	// Prompt returns the client-facing round state.
	Prompt() map[string]any

	// Apply processes one input. It returns OutcomeNone while the round
	// remains undecided.
	Apply(in Input) Outcome
}

// Callbacks is the progress surface a resolved round feeds into. Pass
// raises speed, fail lowers it, and either way the trigger reseeds so the
// next game gets selected.
type Callbacks interface {
	SpeedIncrease()
	SpeedDecrease()
	RequestReseed()
}

// Round drives one game through its lifecycle. Resolution happens exactly
// once, whether it comes from an input or from the countdown expiring;
// inputs after resolution are dropped.
type Round struct {
	mu      sync.Mutex
	phase   Phase
	game    Game
	cb      Callbacks
	timeout time.Duration
	timer   sched.Handle
	result  Outcome

	onResolved func(game model.GameType, outcome Outcome)
}

// NewRound wraps a game with lifecycle management.
func NewRound(game Game, cb Callbacks, opts ...RoundOption) *Round {
	r := &Round{
		phase:   PhaseIdle,
		game:    game,
		cb:      cb,
		timeout: DefaultRoundTimeout,
	}

	// Apply all options
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Begin activates the round and arms the countdown. Beginning an already
// active or resolved round is a no-op.
func (r *Round) Begin() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseIdle {
		return
	}
	r.phase = PhaseActive
	r.timer = sched.After(r.timeout, r.expire)
}

// Input feeds one player action into the game. Inputs outside the active
// phase are rejected so late or duplicate actions cannot flip a result.
func (r *Round) Input(in Input) error {
	r.mu.Lock()
	switch r.phase {
	case PhaseIdle:
		r.mu.Unlock()
		return ErrRoundNotStarted
	case PhaseResolved:
		r.mu.Unlock()
		return ErrRoundResolved
	}

	outcome := r.game.Apply(in)
	if outcome == OutcomeNone {
		r.mu.Unlock()
		return nil
	}
	r.resolveLocked(outcome)
	return nil
}

// expire resolves the round as failed when the countdown runs out.
func (r *Round) expire() {
	r.mu.Lock()
	if r.phase != PhaseActive {
		r.mu.Unlock()
		return
	}
	r.resolveLocked(OutcomeFailed)
}

// resolveLocked finalizes the round. The mutex is held on entry and
// released here so callbacks run outside the lock.
func (r *Round) resolveLocked(outcome Outcome) {
	r.phase = PhaseResolved
	r.result = outcome
	if r.timer != nil {
		r.timer.Stop()
	}
	game := r.game.Type()
	cb := r.cb
	hook := r.onResolved
	r.mu.Unlock()

	metrics.RecordRoundResolved(string(game), outcome == OutcomePassed)
	if cb != nil {
		if outcome == OutcomePassed {
			cb.SpeedIncrease()
		} else {
			cb.SpeedDecrease()
		}
		cb.RequestReseed()
	}
	if hook != nil {
		hook(game, outcome)
	}
}

// Cancel tears the round down without touching speed or the trigger.
// Used on session teardown; a resolved round stays resolved.
func (r *Round) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase == PhaseResolved {
		return
	}
	r.phase = PhaseResolved
	r.result = OutcomeNone
	if r.timer != nil {
		r.timer.Stop()
	}
}

// State returns the current phase and result.
func (r *Round) State() (Phase, Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase, r.result
}

// Game returns the game type being played.
func (r *Round) Game() model.GameType {
	return r.game.Type()
}

// Prompt returns the client-facing state of the underlying game.
func (r *Round) Prompt() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.game.Prompt()
}
