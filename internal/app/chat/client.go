/*
Package chat contains the core logic for presence tracking and message broadcasting
in the single shared room.

This file defines the Client struct, representing an active WebSocket connection.
It manages the connection lifecycle, the message pumps (ReadPump and WritePump),
and dispatches inbound events to the Coordinator.
*/
package chat

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"tinychat/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxMessageSize = 8192

	// capacity of the per-client outbound queue.
	sendQueueSize = 256
)

// Client represents one active WebSocket connection. Identity is established
// only after the connection's join event has been processed; until then the
// connection has no session and most inbound events are dropped.
type Client struct {
	// ConnID is the server-assigned identifier for this connection.
	ConnID string

	hub         *Hub
	coordinator *Coordinator
	conn        *websocket.Conn

	// send queues outbound frames for WritePump. closeSendOnce guards the
	// close so hub shutdown and connection teardown cannot race.
	send          chan []byte
	closeSendOnce sync.Once

	logger zerolog.Logger
}

// NewClient wraps an upgraded WebSocket connection.
func NewClient(connID string, hub *Hub, coordinator *Coordinator, conn *websocket.Conn) *Client {
	return &Client{
		ConnID:      connID,
		hub:         hub,
		coordinator: coordinator,
		conn:        conn,
		send:        make(chan []byte, sendQueueSize),
		logger:      logx.Logger().With().Str("conn_id", connID).Logger(),
	}
}

// ReadPump reads frames from the WebSocket connection until it closes.
// It handles heartbeats (Pong), event dispatch, and performs cleanup when
// the connection goes away.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Connection closed unexpectedly")
			}
			break
		}

		c.dispatch(frame)
	}
}

// cleanupOnDisconnect tears the connection down: it is removed from the hub
// first so it can never receive its own departure notice, then the
// coordinator runs the disconnect protocol.
func (c *Client) cleanupOnDisconnect() {
	c.hub.Unregister(c.ConnID)
	c.coordinator.Disconnect(c.ConnID)

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Connection close error")
	}
}

// dispatch parses an inbound envelope and routes it to the coordinator.
// Unknown events are logged and ignored.
func (c *Client) dispatch(frame []byte) {
	var inbound struct {
		Event   string          `json:"event"`
		Payload json.RawMessage `json:"payload"`
	}

	if err := json.Unmarshal(frame, &inbound); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid JSON")
		return
	}

	switch inbound.Event {
	case EventJoin:
		var p JoinPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			c.logger.Warn().Err(err).Msg("Client sent invalid join payload")
			return
		}
		c.coordinator.Join(c.ConnID, p)

	case EventSendMessage:
		var p SendMessagePayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			c.logger.Warn().Err(err).Msg("Client sent invalid sendMessage payload")
			return
		}
		c.coordinator.SendMessage(c.ConnID, p)

	case EventTyping:
		var p TypingPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			c.logger.Warn().Err(err).Msg("Client sent invalid typing payload")
			return
		}
		c.coordinator.Typing(c.ConnID, p)

	default:
		c.logger.Warn().Str("event", inbound.Event).Msg("Client sent unsupported event")
	}
}

// WritePump writes queued frames to the WebSocket connection and keeps the
// heartbeat alive. It exits when the send queue is closed or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error in WritePump")
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline")
				return
			}

			if !ok {
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug().Err(err).Msg("Error writing close message")
				}
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Warn().Err(err).Msg("Error writing frame")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Warn().Err(err).Msg("Error writing ping")
				return
			}
		}
	}
}

// enqueue places a frame on the outbound queue. A full queue means the
// client cannot keep up; the frame is dropped rather than blocking the room.
func (c *Client) enqueue(frame []byte) {
	defer func() {
		// The queue may have been closed by a concurrent teardown; a dropped
		// frame to a dying connection is acceptable.
		if r := recover(); r != nil {
			c.logger.Debug().Msg("Dropped frame for closed connection")
		}
	}()

	select {
	case c.send <- frame:
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Send queue full, dropping frame")
	}
}

// closeSend closes the outbound queue exactly once, ending WritePump.
func (c *Client) closeSend() {
	c.closeSendOnce.Do(func() {
		close(c.send)
	})
}
