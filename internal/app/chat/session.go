/*
Package chat contains the core logic for presence tracking and message broadcasting
in the single shared room.

This file defines the Session struct, the ephemeral binding between a live transport
connection and a user identity. A session exists only in memory and is gone on disconnect.
*/
package chat

import (
	"time"

	"tinychat/internal/app/user"
)

// Session is the live binding between a connection and a user. The embedded
// User is a snapshot taken at join time; it is not kept in sync with later
// profile updates. Presence in the registry means online; absence means offline.
type Session struct {

	// ConnID is the transport connection identifier the session is keyed by.
	ConnID string `json:"connId"`

	// User is the identity snapshot captured when the session was created.
	User user.User `json:"user"`

	// JoinedAt records when the session was registered.
	JoinedAt time.Time `json:"joinedAt"`
}
