/*
Package handler provides the HTTP handlers and routing setup for the chat server.

This file contains the HandleWebSocket function, which is responsible for rate
limiting, upgrading the HTTP connection to WebSocket, and starting the client
lifecycle. Identity is not established here: the connection announces itself
with a join event once the socket is open.
*/
package handler

import (
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"tinychat/internal/app/chat"
	"tinychat/internal/pkg/errs"
	"tinychat/internal/pkg/limiter"
	"tinychat/internal/pkg/logx"
	"tinychat/internal/pkg/randx"
	"tinychat/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if ip == "" {
			ip = "unknown_ip"
		}

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		connID := randx.NewID()
		client := chat.NewClient(connID, deps.Hub, deps.Coordinator, conn)

		// The client must be addressable by the gateway before its join
		// event can be processed.
		deps.Hub.Register(client)

		go client.WritePump()

		logx.Info("WebSocket connection established", "conn_id", connID)

		client.ReadPump()
	}
}
