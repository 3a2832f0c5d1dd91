// Package ws broadcasts live leaderboard frames to spectator clients over
// websockets. Spectators are read-only; anything a client sends is
// discarded.
package ws

import (
	"context"
	"encoding/json"

	"github.com/pixelparty/triathlon/pkg/logger"
	"github.com/pixelparty/triathlon/pkg/metrics"
)

// Hub fans broadcast frames out to every connected client. Slow clients
// are dropped rather than allowed to stall the fan-out.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	log        logger.Logger
}

// NewHub constructs an idle hub. Run must be called for traffic to flow.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		log:        logger.Named("ws"),
	}
}

// Run owns the client set until the context is canceled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			metrics.UpdateWSClients(0)
			return
		case c := <-h.register:
			h.clients[c] = true
			metrics.UpdateWSClients(len(h.clients))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				metrics.UpdateWSClients(len(h.clients))
			}
		case frame := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- frame:
				default:
					delete(h.clients, c)
					close(c.send)
				}
			}
			metrics.RecordWSBroadcast()
		}
	}
}

// Broadcast queues one frame for every connected client. Frames are
// dropped when the hub is saturated; the next frame carries fresh state.
func (h *Hub) Broadcast(ctx context.Context, v any) {
	frame, err := json.Marshal(v)
	if err != nil {
		h.log.Error(ctx, "failed to encode broadcast frame", logger.Error(err))
		return
	}
	select {
	case h.broadcast <- frame:
	default:
	}
}
