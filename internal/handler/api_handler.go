/*
Package handler provides the HTTP handlers and routing setup for the chat server.

This file contains the read-only HTTP surface: recent messages, the online-user
snapshot, and the health endpoint. All are pure projections of store and registry
state with no side effects.
*/
package handler

import (
	"net/http"
	"strconv"
	"time"

	"tinychat/internal/app/store"
	"tinychat/internal/pkg/errs"
	"tinychat/internal/pkg/resp"
)

const defaultHistoryLimit = 50

var startedAt = time.Now()

// HandleRecentMessages serves the most recent messages, oldest first.
// The limit query parameter defaults to 50 and is capped at the history size.
func HandleRecentMessages(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultHistoryLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
				return
			}
			limit = parsed
		}

		if limit > store.MaxHistory {
			limit = store.MaxHistory
		}

		resp.RespondSuccess(w, r, deps.Store.RecentMessages(limit))
	}
}

// HandleOnlineUsers serves the current online-user snapshot.
func HandleOnlineUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, deps.Coordinator.OnlineUsers())
	}
}

// HandleHealth serves basic liveness and counter information.
func HandleHealth(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]any{
			"status":        "ok",
			"service":       "tinychat",
			"uptimeSeconds": int64(time.Since(startedAt).Seconds()),
			"onlineUsers":   deps.Registry.Len(),
			"totalUsers":    deps.Store.CountUsers(),
			"totalMessages": deps.Store.CountMessages(),
		})
	}
}
