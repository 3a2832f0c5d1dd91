// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pixelparty/triathlon/internal/domain/model"
)

// RoundsHandler handles mini-game round interaction.
type RoundsHandler struct {
	deps Dependencies
}

// NewRoundsHandler creates a new rounds handler.
func NewRoundsHandler(deps Dependencies) *RoundsHandler {
	return &RoundsHandler{deps: deps}
}

type roundStateResponse struct {
	Game   string         `json:"game"`
	Prompt map[string]any `json:"prompt"`
}

// HandleRound handles GET and POST /rounds/{participant_id} requests. GET
// reports the open round; POST submits one input toward it.
func (h *RoundsHandler) HandleRound(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/rounds/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		game, prompt, err := h.deps.RoundState(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, roundStateResponse{Game: string(game), Prompt: prompt})

	case http.MethodPost:
		var in model.RoundInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Action == "" {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		if err := h.deps.RoundInput(r.Context(), id, in); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})

	default:
		http.NotFound(w, r)
	}
}

type progressResponse struct {
	Started          bool    `json:"started"`
	Finished         bool    `json:"finished"`
	Time             int64   `json:"time"`
	TimeDisplay      string  `json:"timeDisplay"`
	FinishTime       int64   `json:"finishTime"`
	Speed            int     `json:"speed"`
	DistanceTraveled float64 `json:"distanceTraveled"`
	TotalDistance    float64 `json:"totalDistance"`
}

// HandleProgress handles GET /progress/{participant_id} requests.
func (h *RoundsHandler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/progress/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	snap, err := h.deps.Progress(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	display := snap.Time
	if snap.Finished {
		display = snap.FinishTime
	}
	writeJSON(w, http.StatusOK, progressResponse{
		Started:          snap.Started,
		Finished:         snap.Finished,
		Time:             snap.Time,
		TimeDisplay:      model.FormatTicks(display),
		FinishTime:       snap.FinishTime,
		Speed:            snap.Speed,
		DistanceTraveled: snap.DistanceTraveled,
		TotalDistance:    snap.TotalDistance,
	})
}
