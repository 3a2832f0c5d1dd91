// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pixelparty/triathlon/internal/domain/model"
)

// EventsHandler handles event lifecycle administration.
type EventsHandler struct {
	deps Dependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps Dependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

type startEventRequest struct {
	CountdownMs int64 `json:"countdownMs"`
}

type eventActionResponse struct {
	Event  string `json:"event"`
	Status string `json:"status"`
}

// HandleEvent handles POST /events/{event}/{action} requests where action
// is start, finish or reset.
func (h *EventsHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/events/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	event := model.EventType(parts[0])

	var err error
	switch parts[1] {
	case "start":
		var req startEventRequest
		if r.Body != nil {
			// Absent or empty bodies mean an immediate start.
			_ = json.NewDecoder(r.Body).Decode(&req)
		}
		err = h.deps.StartEvent(r.Context(), event, time.Duration(req.CountdownMs)*time.Millisecond)
	case "finish":
		err = h.deps.FinishEvent(r.Context(), event)
	case "reset":
		err = h.deps.ResetEvent(r.Context(), event)
	default:
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, eventActionResponse{Event: parts[0], Status: parts[1]})
}

type inviteCodeRequest struct {
	Code   string `json:"code"`
	Active bool   `json:"active"`
}

// HandleInviteCode handles POST /admin/invite requests that rotate the
// current valid code.
func (h *EventsHandler) HandleInviteCode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req inviteCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Code) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	if err := h.deps.SetInviteCode(r.Context(), req.Code, req.Active); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"active": req.Active})
}
