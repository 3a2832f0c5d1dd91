// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	service "github.com/pixelparty/triathlon/internal/app"
	"github.com/pixelparty/triathlon/internal/domain/model"
	"github.com/pixelparty/triathlon/internal/domain/progress"
	"github.com/pixelparty/triathlon/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Login(ctx context.Context, event model.EventType, inviteCode, name, email string) (model.Participant, error)
	SetInviteCode(ctx context.Context, code string, active bool) error

	StartEvent(ctx context.Context, event model.EventType, countdown time.Duration) error
	FinishEvent(ctx context.Context, event model.EventType) error
	ResetEvent(ctx context.Context, event model.EventType) error

	RoundInput(ctx context.Context, participantID string, in model.RoundInput) error
	RoundState(ctx context.Context, participantID string) (model.GameType, map[string]any, error)
	Progress(ctx context.Context, participantID string) (progress.Snapshot, error)

	TopN(ctx context.Context, event model.EventType, n int) ([]Entry, error)
	Rank(ctx context.Context, event model.EventType, participantID string) (Entry, error)
	Standings(ctx context.Context, event model.EventType) ([]types.Standing, error)
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// WSHandler serves spectator websocket upgrades.
type WSHandler interface {
	ServeWS(w http.ResponseWriter, r *http.Request)
}

// Server wires HTTP routes for the business API.
type Server struct {
	loginHandler       *LoginHandler
	eventsHandler      *EventsHandler
	roundsHandler      *RoundsHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
	inviteHandler      *InviteHandler
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	hub                WSHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, hub WSHandler, opts ...Option) *Server {
	s := &Server{
		loginHandler:       NewLoginHandler(deps),
		eventsHandler:      NewEventsHandler(deps),
		roundsHandler:      NewRoundsHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps),
		rankHandler:        NewRankHandler(deps),
		inviteHandler:      NewInviteHandler(),
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		hub:                hub,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("/login", MetricsMiddleware(s.loginHandler.HandleLogin, "login"))
	mux.HandleFunc("/events/", MetricsMiddleware(s.eventsHandler.HandleEvent, "events"))
	mux.HandleFunc("/admin/invite", MetricsMiddleware(s.eventsHandler.HandleInviteCode, "admin_invite"))
	mux.HandleFunc("/rounds/", MetricsMiddleware(s.roundsHandler.HandleRound, "rounds"))
	mux.HandleFunc("/progress/", MetricsMiddleware(s.roundsHandler.HandleProgress, "progress"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/standings", MetricsMiddleware(s.leaderboardHandler.HandleGetStandings, "standings"))
	mux.HandleFunc("/rank/", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
	mux.HandleFunc("/invite/qr", MetricsMiddleware(s.inviteHandler.HandleQR, "invite_qr"))

	if s.hub != nil {
		mux.HandleFunc("/ws", s.hub.ServeWS)
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates service sentinels onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownEvent),
		errors.Is(err, service.ErrUnknownParticipant):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrInvalidInviteCode):
		writeError(w, http.StatusForbidden, "invalid_invite_code", err)
	case errors.Is(err, service.ErrInvalidName):
		writeError(w, http.StatusBadRequest, "invalid_name", err)
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrEventAlreadyLive),
		errors.Is(err, service.ErrEventNotLive):
		writeError(w, http.StatusConflict, "conflict", err)
	case errors.Is(err, service.ErrNoActiveRound):
		writeError(w, http.StatusConflict, "no_active_round", err)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
