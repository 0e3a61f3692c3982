package websocket

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/sketchroom/internal"
)

// =============================================================================
// HUB
// =============================================================================

// Hub maps player ids to their connections and fans room messages out to
// them. It is the game's Broadcaster.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
}

// unregister removes the client and closes its send queue, which stops its
// write pump.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.id] != c {
		return
	}
	delete(h.clients, c.id)
	close(c.send)
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Send encodes msg once and queues it for every listed player. A client
// whose queue is full misses the message rather than stalling the room.
func (h *Hub) Send(playerIDs []string, msg internal.Message[any]) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("type", msg.Type).Msg("[Send] failed to encode message")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, id := range playerIDs {
		c, ok := h.clients[id]
		if !ok {
			continue
		}
		select {
		case c.send <- data:
		default:
			log.Warn().Str("player", id).Str("type", msg.Type).Msg("[Send] send queue full, dropping message")
		}
	}
}
