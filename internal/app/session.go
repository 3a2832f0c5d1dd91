package service

import (
	"sync"

	"github.com/pixelparty/triathlon/internal/domain/minigame"
	"github.com/pixelparty/triathlon/internal/domain/model"
	"github.com/pixelparty/triathlon/internal/domain/progress"
	"github.com/pixelparty/triathlon/internal/domain/selector"
	"github.com/pixelparty/triathlon/pkg/logger"
)

// session is one participant's live run through an event: their progress
// tracker, the game selector and whichever round is currently open.
type session struct {
	svc         *Service
	participant model.Participant
	event       model.EventType
	tracker     *progress.Tracker
	sel         *selector.Selector
	factory     *minigame.Factory

	mu    sync.Mutex
	round *minigame.Round
}

// newSession wires a fresh session. The tracker feeds the sync bridge on
// every change and rolls the next round whenever the trigger rotates.
func (s *Service) newSession(p model.Participant, event model.EventType) (*session, error) {
	sel, err := selector.ForEvent(event)
	if err != nil {
		return nil, err
	}

	sess := &session{
		svc:         s,
		participant: p,
		event:       event,
		sel:         sel,
		factory:     minigame.NewFactory(),
	}
	sess.tracker = progress.New(
		progress.WithTotalDistance(s.totalDistance),
		progress.WithOnChange(sess.onProgress),
		progress.WithOnTrigger(func(int) { sess.startRound() }),
	)

	return sess, nil
}

// onProgress pushes the latest state through the throttled bridge. The
// finishing write bypasses the window so the final record lands at once.
func (sess *session) onProgress(snap progress.Snapshot) {
	w := model.ScoreWrite{
		Event:         sess.event,
		ParticipantID: sess.participant.ID,
		Record: model.ScoreRecord{
			FinishTime:       snap.FinishTime,
			DistanceTraveled: snap.DistanceTraveled,
		},
		Merge: true,
	}
	if snap.Finished {
		sess.svc.bridge.Flush(w)
		return
	}
	sess.svc.bridge.Push(w)
}

// start begins the run: timers first, then the opening round.
func (sess *session) start() {
	sess.tracker.Start()
	sess.startRound()
}

// startRound selects and opens the next round. No-op once the run is done.
func (sess *session) startRound() {
	if sess.tracker.Snapshot().Complete() {
		return
	}

	// Selection and game construction share the session rng state, so
	// they stay under the session lock along with the round swap.
	sess.mu.Lock()
	game, err := sess.factory.New(sess.sel.Next())
	if err != nil {
		sess.mu.Unlock()
		sess.svc.logger.Error(sess.svc.ctx, "failed to build mini-game",
			logger.String("participant", sess.participant.ID),
			logger.Error(err))
		return
	}

	round := minigame.NewRound(game, sess.tracker,
		minigame.WithTimeout(sess.svc.roundTimeout))

	if sess.round != nil {
		sess.round.Cancel()
	}
	sess.round = round
	sess.mu.Unlock()

	round.Begin()
}

// input forwards one player action to the open round.
func (sess *session) input(in minigame.Input) error {
	sess.mu.Lock()
	round := sess.round
	sess.mu.Unlock()

	if round == nil {
		return ErrNoActiveRound
	}
	return round.Input(in)
}

// roundState reports the open round's game and prompt.
func (sess *session) roundState() (model.GameType, map[string]any, error) {
	sess.mu.Lock()
	round := sess.round
	sess.mu.Unlock()

	if round == nil {
		return "", nil, ErrNoActiveRound
	}
	return round.Game(), round.Prompt(), nil
}

// finish ends the run, capturing the finish time.
func (sess *session) finish() {
	sess.tracker.Finish()
}

// reset cancels any open round and restores the initial run state.
func (sess *session) reset() {
	sess.mu.Lock()
	if sess.round != nil {
		sess.round.Cancel()
		sess.round = nil
	}
	sess.mu.Unlock()
	sess.tracker.Reset()
}

// stop tears the session down without emitting further writes.
func (sess *session) stop() {
	sess.mu.Lock()
	if sess.round != nil {
		sess.round.Cancel()
		sess.round = nil
	}
	sess.mu.Unlock()
	sess.tracker.Stop()
}
