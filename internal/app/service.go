// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/pixelparty/triathlon/internal/adapters/identity"
	"github.com/pixelparty/triathlon/internal/adapters/scorestore"
	"github.com/pixelparty/triathlon/internal/adapters/syncbridge"
	"github.com/pixelparty/triathlon/internal/adapters/ws"
	"github.com/pixelparty/triathlon/internal/domain/leaderboard"
	"github.com/pixelparty/triathlon/internal/domain/minigame"
	"github.com/pixelparty/triathlon/internal/domain/model"
	"github.com/pixelparty/triathlon/internal/domain/progress"
	"github.com/pixelparty/triathlon/internal/domain/roster"
	"github.com/pixelparty/triathlon/internal/domain/types"
	"github.com/pixelparty/triathlon/pkg/logger"
	"github.com/pixelparty/triathlon/pkg/metrics"
	"github.com/pixelparty/triathlon/pkg/sched"
)

// Default service configuration constants.
const (
	defaultQueueSize          = 4096
	defaultWorkerCount        = 4
	defaultRoundTimeout       = 30 * time.Second
	defaultBroadcastInterval  = time.Second
	defaultMaxLeaderboardSize = 100
	maxDisplayNameLength      = 20
)

// events every deployment serves.
var allEvents = []model.EventType{model.EventSprint, model.EventSwimming, model.EventCycling}

// Service is the game coordinator: it owns the score store, the sync
// bridge write path, the leaderboard projections and every live session.
type Service struct {
	mu sync.RWMutex

	// Core components
	store       scorestore.Store
	queue       syncbridge.Queue
	pool        *syncbridge.Pool
	bridge      *syncbridge.Bridge
	hub         *ws.Hub
	idp         identity.Provider
	projections map[model.EventType]*leaderboard.Projection
	timers      *sched.Registry

	// Participant registry
	sessions map[string]*session // participant id -> session
	emails   roster.Roster       // normalized email -> participant id

	// Configuration
	queueSize         int
	workerCount       int
	throttle          time.Duration
	totalDistance     float64
	roundTimeout      time.Duration
	broadcastInterval time.Duration
	maxLeaderboard    int
	journalPath       string

	// State
	started bool
	ctx     context.Context
	cancel  context.CancelFunc

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		projections:       make(map[model.EventType]*leaderboard.Projection),
		sessions:          make(map[string]*session),
		emails:            roster.NewInMemoryRoster(),
		queueSize:         defaultQueueSize,
		workerCount:       defaultWorkerCount,
		throttle:          syncbridge.DefaultThrottle,
		totalDistance:     progress.DefaultTotalDistance,
		roundTimeout:      defaultRoundTimeout,
		broadcastInterval: defaultBroadcastInterval,
		maxLeaderboard:    defaultMaxLeaderboardSize,
		timers:            sched.NewRegistry(),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.logger.Info(ctx, "starting triathlon service...")

	// Score store, optionally journaled for restart durability.
	if s.store == nil {
		var storeOpts []scorestore.Option
		if s.journalPath != "" {
			journal, err := scorestore.OpenSQLiteJournal(s.journalPath)
			if err != nil {
				return err
			}
			storeOpts = append(storeOpts, scorestore.WithJournal(journal))
			s.logger.Info(ctx, "journaling score writes", logger.String("path", s.journalPath))
		}
		store, err := scorestore.NewMemoryStore(s.ctx, storeOpts...)
		if err != nil {
			return err
		}
		s.store = store
	}

	// Write path: throttle -> queue -> worker pool -> store.
	s.queue = syncbridge.NewInMemoryQueue(
		syncbridge.WithCapacity(s.queueSize),
		syncbridge.WithBufferSize(s.queueSize),
	)
	s.pool = syncbridge.NewPool(s.workerCount, s.queue, s.store)
	s.pool.Start(s.ctx)
	s.bridge = syncbridge.NewBridge(s.ctx, s.queue, syncbridge.WithThrottle(s.throttle))

	// Read path: one live projection per event.
	for _, event := range allEvents {
		p, err := leaderboard.NewProjection(s.ctx, s.store, event)
		if err != nil {
			return err
		}
		s.projections[event] = p
	}

	if s.idp == nil {
		s.idp = identity.NewAnonymous()
	}

	// Spectator fan-out.
	s.hub = ws.NewHub()
	go s.hub.Run(s.ctx)
	s.timers.Repeat(s.broadcastInterval, s.broadcastBoards)

	// A journaled store may already hold identities from a previous run.
	if err := s.restoreParticipants(s.ctx); err != nil {
		return err
	}

	s.started = true
	s.logger.Info(ctx, "triathlon service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Duration("throttle", s.throttle),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping triathlon service...")

	s.timers.StopAll()

	for _, sess := range s.sessions {
		sess.stop()
	}

	// Deliver pending throttled writes, then drain the queue.
	s.bridge.Close()
	_ = s.pool.Shutdown(ctx)

	for _, p := range s.projections {
		p.Close()
	}

	if s.store != nil {
		_ = s.store.Close()
	}

	s.cancel()
	s.started = false
	s.logger.Info(ctx, "triathlon service stopped")
}

// restoreParticipants rebuilds the email registry from persisted identity
// records.
func (s *Service) restoreParticipants(ctx context.Context) error {
	value, ok, err := s.store.Get(ctx, scorestore.PathUsers())
	if err != nil || !ok {
		return err
	}
	users, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	for uid, raw := range users {
		var p model.Participant
		doc, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if email, ok := doc["email"].(string); ok {
			p.Email = email
		}
		if p.Email == "" {
			continue
		}
		s.emails.Claim(ctx, normalizeEmail(p.Email), uid)
	}
	metrics.UpdateParticipants(int(s.emails.Size()))
	return nil
}

// Login validates an invite and registers a participant for an event.
// Rejected once the event is live so nobody joins a race mid-flight.
func (s *Service) Login(ctx context.Context, event model.EventType, inviteCode, name, email string) (model.Participant, error) {
	if err := s.ensureStarted(); err != nil {
		return model.Participant{}, err
	}
	if !event.Valid() {
		metrics.RecordLoginAttempt("unknown_event")
		return model.Participant{}, ErrUnknownEvent
	}

	live, err := s.eventStarted(ctx, event)
	if err != nil {
		return model.Participant{}, err
	}
	if live {
		metrics.RecordLoginAttempt("event_live")
		return model.Participant{}, ErrEventAlreadyLive
	}

	if err := s.checkInviteCode(ctx, inviteCode); err != nil {
		metrics.RecordLoginAttempt("bad_code")
		return model.Participant{}, err
	}

	name = strings.TrimSpace(name)
	if !validName(name) {
		metrics.RecordLoginAttempt("bad_name")
		return model.Participant{}, ErrInvalidName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return model.Participant{}, ErrNotStarted
	}

	uid, err := s.idp.SignInAnonymously(ctx)
	if err != nil {
		metrics.RecordLoginAttempt("identity_error")
		return model.Participant{}, err
	}

	key := normalizeEmail(email)
	if !s.emails.Claim(ctx, key, uid) {
		metrics.RecordLoginAttempt("email_taken")
		return model.Participant{}, ErrEmailTaken
	}

	p := model.Participant{
		ID:         uid,
		Email:      email,
		Name:       name,
		InviteCode: inviteCode,
		LoggedInAt: time.Now(),
	}

	if err := s.store.Set(ctx, scorestore.PathUser(uid), map[string]any{
		"email":      p.Email,
		"userName":   p.Name,
		"inviteCode": p.InviteCode,
		"loggedInAt": p.LoggedInAt.UTC().Format(time.RFC3339),
	}); err != nil {
		s.emails.Release(ctx, key)
		return model.Participant{}, err
	}

	// Seed the zero score with identity riding along; later pushes merge
	// over it without touching these fields.
	seed, err := scorestore.Encode(model.ScoreRecord{
		Email:    p.Email,
		UserName: p.Name,
	})
	if err != nil {
		s.emails.Release(ctx, key)
		return model.Participant{}, err
	}
	if err := s.store.Set(ctx, scorestore.PathEventScore(event, uid), seed); err != nil {
		s.emails.Release(ctx, key)
		return model.Participant{}, err
	}

	sess, err := s.newSession(p, event)
	if err != nil {
		s.emails.Release(ctx, key)
		return model.Participant{}, err
	}

	s.sessions[uid] = sess

	metrics.RecordLoginAttempt("ok")
	metrics.UpdateParticipants(int(s.emails.Size()))
	metrics.UpdateActiveSessions(len(s.sessions))

	s.logger.Info(ctx, "participant logged in",
		logger.String("participant", uid),
		logger.String("event", string(event)),
		logger.String("name", name),
	)

	return p, nil
}

// checkInviteCode matches the submitted code against the current valid
// code document. Missing or inactive documents reject everyone.
func (s *Service) checkInviteCode(ctx context.Context, code string) error {
	value, ok, err := s.store.Get(ctx, scorestore.PathValidCode())
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidInviteCode
	}

	var current struct {
		Active bool   `json:"active"`
		Code   string `json:"code"`
	}
	if err := scorestore.Decode(value, &current); err != nil {
		return err
	}
	if !current.Active || !strings.EqualFold(strings.TrimSpace(code), current.Code) {
		return ErrInvalidInviteCode
	}
	return nil
}

// SetInviteCode rotates the invite code participants must present.
func (s *Service) SetInviteCode(ctx context.Context, code string, active bool) error {
	if err := s.ensureStarted(); err != nil {
		return err
	}
	return s.store.Set(ctx, scorestore.PathValidCode(), map[string]any{
		"active": active,
		"code":   code,
	})
}

// StartEvent flips the event live, after an optional countdown, and starts
// every registered run.
func (s *Service) StartEvent(ctx context.Context, event model.EventType, countdown time.Duration) error {
	if err := s.ensureStarted(); err != nil {
		return err
	}
	if !event.Valid() {
		return ErrUnknownEvent
	}
	live, err := s.eventStarted(ctx, event)
	if err != nil {
		return err
	}
	if live {
		return ErrEventAlreadyLive
	}

	if countdown > 0 {
		s.logger.Info(ctx, "event starting after countdown",
			logger.String("event", string(event)),
			logger.Duration("countdown", countdown))
		s.timers.After(countdown, func() { s.startEventNow(event) })
		return nil
	}

	s.startEventNow(event)
	return nil
}

func (s *Service) startEventNow(event model.EventType) {
	ctx := s.ctx
	if err := s.store.Set(ctx, scorestore.PathEventStarted(event), true); err != nil {
		s.logger.Error(ctx, "failed to mark event started",
			logger.String("event", string(event)), logger.Error(err))
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sess := range s.sessions {
		if sess.event == event {
			sess.start()
		}
	}
	s.logger.Info(ctx, "event started", logger.String("event", string(event)))
}

// FinishEvent ends the event: every open run captures its finish time and
// the event is flagged finished in the store.
func (s *Service) FinishEvent(ctx context.Context, event model.EventType) error {
	if err := s.ensureStarted(); err != nil {
		return err
	}
	if !event.Valid() {
		return ErrUnknownEvent
	}
	live, err := s.eventStarted(ctx, event)
	if err != nil {
		return err
	}
	if !live {
		return ErrEventNotLive
	}

	s.mu.RLock()
	for _, sess := range s.sessions {
		if sess.event == event {
			sess.finish()
		}
	}
	s.mu.RUnlock()

	if err := s.store.Set(ctx, scorestore.PathEventFinished(event), true); err != nil {
		return err
	}
	s.logger.Info(ctx, "event finished", logger.String("event", string(event)))
	return nil
}

// ResetEvent restores the event and every registered run to the initial
// state: flags down, zero time, zero distance, initial speed.
func (s *Service) ResetEvent(ctx context.Context, event model.EventType) error {
	if err := s.ensureStarted(); err != nil {
		return err
	}
	if !event.Valid() {
		return ErrUnknownEvent
	}

	if err := s.store.Set(ctx, scorestore.PathEventStarted(event), false); err != nil {
		return err
	}
	if err := s.store.Set(ctx, scorestore.PathEventFinished(event), false); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sess := range s.sessions {
		if sess.event == event {
			sess.reset()
		}
	}
	s.logger.Info(ctx, "event reset", logger.String("event", string(event)))
	return nil
}

func (s *Service) ensureStarted() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

func (s *Service) eventStarted(ctx context.Context, event model.EventType) (bool, error) {
	value, ok, err := s.store.Get(ctx, scorestore.PathEventStarted(event))
	if err != nil || !ok {
		return false, err
	}
	started, _ := value.(bool)
	return started, nil
}

// RoundInput forwards one player action to the participant's open round.
func (s *Service) RoundInput(ctx context.Context, participantID string, in model.RoundInput) error {
	sess, err := s.session(participantID)
	if err != nil {
		return err
	}
	return sess.input(minigameInput(in))
}

// RoundState reports the participant's open round.
func (s *Service) RoundState(ctx context.Context, participantID string) (model.GameType, map[string]any, error) {
	sess, err := s.session(participantID)
	if err != nil {
		return "", nil, err
	}
	return sess.roundState()
}

// Progress returns the participant's current run state.
func (s *Service) Progress(ctx context.Context, participantID string) (progress.Snapshot, error) {
	sess, err := s.session(participantID)
	if err != nil {
		return progress.Snapshot{}, err
	}
	return sess.tracker.Snapshot(), nil
}

func (s *Service) session(participantID string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	sess, ok := s.sessions[participantID]
	if !ok {
		return nil, ErrUnknownParticipant
	}
	return sess, nil
}

// TopN returns the best n leaderboard entries for an event.
func (s *Service) TopN(ctx context.Context, event model.EventType, n int) ([]types.Entry, error) {
	p, err := s.projection(event)
	if err != nil {
		return nil, err
	}
	if n <= 0 || n > s.maxLeaderboard {
		n = s.maxLeaderboard
	}
	return p.TopN(n), nil
}

// Rank returns one participant's leaderboard entry for an event.
func (s *Service) Rank(ctx context.Context, event model.EventType, participantID string) (types.Entry, error) {
	p, err := s.projection(event)
	if err != nil {
		return types.Entry{}, err
	}
	entry, ok := p.Rank(participantID)
	if !ok {
		return types.Entry{}, ErrUnknownParticipant
	}
	return entry, nil
}

// Standings returns the event's final standings with prize points.
func (s *Service) Standings(ctx context.Context, event model.EventType) ([]types.Standing, error) {
	p, err := s.projection(event)
	if err != nil {
		return nil, err
	}
	return p.Standings(), nil
}

func (s *Service) projection(event model.EventType) (*leaderboard.Projection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	p, ok := s.projections[event]
	if !ok {
		return nil, ErrUnknownEvent
	}
	return p, nil
}

// Hub exposes the spectator fan-out for the HTTP layer.
func (s *Service) Hub() *ws.Hub {
	return s.hub
}

// broadcastBoards pushes every event's current top ten to spectators.
func (s *Service) broadcastBoards() {
	s.mu.RLock()
	if !s.started {
		s.mu.RUnlock()
		return
	}
	boards := make(map[string]any, len(s.projections))
	for event, p := range s.projections {
		boards[string(event)] = p.TopN(10)
	}
	hub := s.hub
	ctx := s.ctx
	s.mu.RUnlock()

	hub.Broadcast(ctx, boards)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":      s.started,
		"workerCount":  s.workerCount,
		"queueSize":    s.queueSize,
		"throttleMs":   s.throttle.Milliseconds(),
		"participants": s.emails.Size(),
		"sessions":     len(s.sessions),
	}

	if s.started {
		stats["queueLength"] = s.queue.Len(context.Background())
		boards := make(map[string]int, len(s.projections))
		for event, p := range s.projections {
			boards[string(event)] = p.Size()
		}
		stats["boards"] = boards

		metrics.UpdateActiveSessions(len(s.sessions))
		metrics.UpdateParticipants(int(s.emails.Size()))
	}

	return stats
}

// validName accepts trimmed names up to twenty runes containing at least
// one letter.
func validName(name string) bool {
	if name == "" || len([]rune(name)) > maxDisplayNameLength {
		return false
	}
	for _, r := range name {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// minigameInput converts the transport-level action into the round input.
func minigameInput(in model.RoundInput) minigame.Input {
	return minigame.Input{Action: in.Action, Value: in.Value}
}
