/*
Package chat contains the core logic for presence tracking and message broadcasting
in the single shared room.

This file defines the Hub, the production Gateway implementation. It tracks every
live WebSocket client keyed by connection id and delivers events by enqueueing a
JSON envelope onto each client's buffered send channel. Delivery is fire-and-forget:
a client whose queue is full or whose connection is gone is skipped.
*/
package chat

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"tinychat/internal/pkg/logx"
)

// envelope is the wire frame for every outbound event.
type envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// Hub implements Gateway over the set of live WebSocket clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  zerolog.Logger
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logx.Logger().With().Str("component", "Hub").Logger(),
	}
}

// Register adds a connected client to the hub, making it addressable by the
// gateway primitives. It must happen before the client's join is processed.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c.ConnID] = c

	h.logger.Info().
		Str("conn_id", c.ConnID).
		Int("total_conns", len(h.clients)).
		Msg("Client connected.")
}

// Unregister removes the client and closes its send queue. Safe to call more
// than once for the same connection.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[connID]
	if !ok {
		return
	}

	delete(h.clients, connID)
	c.closeSend()

	h.logger.Info().
		Str("conn_id", connID).
		Int("total_conns", len(h.clients)).
		Msg("Client disconnected.")
}

// SendToOne delivers an event to a single connection, if it is still live.
func (h *Hub) SendToOne(connID, event string, payload any) {
	data, ok := h.marshal(event, payload)
	if !ok {
		return
	}

	h.mu.RLock()
	c := h.clients[connID]
	h.mu.RUnlock()

	if c != nil {
		c.enqueue(data)
	}
}

// SendToRoom delivers an event to every live connection.
func (h *Hub) SendToRoom(event string, payload any) {
	h.sendToRoom("", event, payload)
}

// SendToRoomExcept delivers an event to every live connection except one.
func (h *Hub) SendToRoomExcept(connID, event string, payload any) {
	h.sendToRoom(connID, event, payload)
}

func (h *Hub) sendToRoom(exceptConnID, event string, payload any) {
	data, ok := h.marshal(event, payload)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, c := range h.clients {
		if id == exceptConnID {
			continue
		}
		c.enqueue(data)
	}
}

// marshal encodes the envelope once per event, shared across recipients.
func (h *Hub) marshal(event string, payload any) ([]byte, bool) {
	data, err := json.Marshal(envelope{Event: event, Payload: payload})
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("Failed to encode outbound event.")
		return nil, false
	}
	return data, true
}

// Close shuts down every remaining client at process shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, c := range h.clients {
		c.closeSend()
		delete(h.clients, id)
	}

	h.logger.Info().Msg("Hub closed.")
}
