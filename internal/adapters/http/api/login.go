// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pixelparty/triathlon/internal/domain/model"
)

// loginRequest mirrors the join form participants submit.
type loginRequest struct {
	Event      string `json:"event"`
	InviteCode string `json:"inviteCode"`
	Name       string `json:"name"`
	Email      string `json:"email"`
}

func (l loginRequest) validate() error {
	switch {
	case strings.TrimSpace(l.Event) == "":
		return errors.New("missing event")
	case strings.TrimSpace(l.InviteCode) == "":
		return errors.New("missing inviteCode")
	case strings.TrimSpace(l.Email) == "":
		return errors.New("missing email")
	}
	return nil
}

type loginResponse struct {
	ParticipantID string `json:"participantId"`
	Name          string `json:"name"`
	Event         string `json:"event"`
}

// LoginHandler handles participant registration.
type LoginHandler struct {
	deps Dependencies
}

// NewLoginHandler creates a new login handler.
func NewLoginHandler(deps Dependencies) *LoginHandler {
	return &LoginHandler{deps: deps}
}

// HandleLogin handles POST /login requests.
func (h *LoginHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	p, err := h.deps.Login(r.Context(), model.EventType(req.Event), req.InviteCode, req.Name, req.Email)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, loginResponse{
		ParticipantID: p.ID,
		Name:          p.Name,
		Event:         req.Event,
	})
}
