// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"net/url"

	qrcode "github.com/skip2/go-qrcode"
)

const defaultQRSize = 256

// InviteHandler renders the join URL as a QR code for the party screen.
type InviteHandler struct {
	baseURL string
}

// NewInviteHandler creates a new invite handler.
func NewInviteHandler() *InviteHandler {
	return &InviteHandler{baseURL: "http://localhost:8080/"}
}

// HandleQR handles GET /invite/qr?code=C requests, returning a PNG that
// encodes the join URL with the invite code attached.
func (h *InviteHandler) HandleQR(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	target := joinURL(h.baseURL, r.URL.Query().Get("code"))

	png, err := qrcode.Encode(target, qrcode.Medium, defaultQRSize)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// joinURL attaches the invite code to the join address as an escaped
// query parameter.
func joinURL(base, code string) string {
	if code == "" {
		return base
	}
	q := url.Values{}
	q.Set("code", code)
	return base + "?" + q.Encode()
}
