package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pixelparty/triathlon/internal/domain/types"
)

// client wraps http.Client with the handful of service calls the
// simulator needs.
type client struct {
	base string
	hc   *http.Client
}

func newClient(base string, timeout time.Duration) *client {
	return &client{
		base: base,
		hc:   &http.Client{Timeout: timeout},
	}
}

type loginRequest struct {
	Event      string `json:"event"`
	InviteCode string `json:"inviteCode"`
	Name       string `json:"name"`
	Email      string `json:"email"`
}

type loginResponse struct {
	ParticipantID string `json:"participantId"`
	Name          string `json:"name"`
	Event         string `json:"event"`
}

type roundState struct {
	Game   string         `json:"game"`
	Prompt map[string]any `json:"prompt"`
}

type progressState struct {
	Started          bool    `json:"started"`
	Finished         bool    `json:"finished"`
	Time             int64   `json:"time"`
	TimeDisplay      string  `json:"timeDisplay"`
	FinishTime       int64   `json:"finishTime"`
	Speed            int     `json:"speed"`
	DistanceTraveled float64 `json:"distanceTraveled"`
	TotalDistance    float64 `json:"totalDistance"`
}

func (c *client) get(ctx context.Context, path string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()
	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func (c *client) post(ctx context.Context, path string, body, out any) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.hc.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()
	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func (c *client) health(ctx context.Context) error {
	status, err := c.get(ctx, "/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", status)
	}
	return nil
}

func (c *client) rotateInvite(ctx context.Context, code string) error {
	status, err := c.post(ctx, "/admin/invite", map[string]any{"code": code, "active": true}, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("invite rotation failed with status: %d", status)
	}
	return nil
}

func (c *client) login(ctx context.Context, req loginRequest) (*loginResponse, error) {
	var out loginResponse
	status, err := c.post(ctx, "/login", req, &out)
	if err != nil {
		return nil, err
	}
	if status != http.StatusCreated {
		return nil, fmt.Errorf("login rejected with status: %d", status)
	}
	return &out, nil
}

func (c *client) startEvent(ctx context.Context, event string, countdown time.Duration) error {
	body := map[string]any{"countdownMs": countdown.Milliseconds()}
	status, err := c.post(ctx, "/events/"+event+"/start", body, nil)
	if err != nil {
		return err
	}
	if status >= 300 {
		return fmt.Errorf("event start failed with status: %d", status)
	}
	return nil
}

func (c *client) finishEvent(ctx context.Context, event string) error {
	status, err := c.post(ctx, "/events/"+event+"/finish", map[string]any{}, nil)
	if err != nil {
		return err
	}
	if status >= 300 {
		return fmt.Errorf("event finish failed with status: %d", status)
	}
	return nil
}

// round returns the open round, or (nil, nil) when no round is live.
func (c *client) round(ctx context.Context, participantID string) (*roundState, error) {
	var out roundState
	status, err := c.get(ctx, "/rounds/"+participantID, &out)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
		return &out, nil
	case http.StatusConflict:
		return nil, nil
	default:
		return nil, fmt.Errorf("round lookup failed with status: %d", status)
	}
}

// submitInput returns true when the input was accepted.
func (c *client) submitInput(ctx context.Context, participantID, action, value string) (bool, error) {
	body := map[string]string{"action": action, "value": value}
	status, err := c.post(ctx, "/rounds/"+participantID, body, nil)
	if err != nil {
		return false, err
	}
	return status == http.StatusAccepted, nil
}

func (c *client) progress(ctx context.Context, participantID string) (*progressState, error) {
	var out progressState
	status, err := c.get(ctx, "/progress/"+participantID, &out)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("progress lookup failed with status: %d", status)
	}
	return &out, nil
}

func (c *client) leaderboard(ctx context.Context, event string, limit int) ([]types.Entry, error) {
	path := fmt.Sprintf("/leaderboard?event=%s&limit=%d", event, limit)
	var out []types.Entry
	status, err := c.get(ctx, path, &out)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("leaderboard lookup failed with status: %d", status)
	}
	return out, nil
}

func (c *client) standings(ctx context.Context, event string) ([]types.Standing, error) {
	var out []types.Standing
	status, err := c.get(ctx, "/standings?event="+event, &out)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("standings lookup failed with status: %d", status)
	}
	return out, nil
}
