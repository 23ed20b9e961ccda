/*
Package user contains the core data structures related to chat participant identity.

It defines the durable representation of a user within the chat system (the User struct),
used for persistence, for passing identity internally, and for serialization to clients.
*/
package user

import "time"

// User represents the durable identity record of a chat participant.
// Fields use JSON tags for both on-disk persistence and WebSocket serialization.
type User struct {

	// ID is the opaque unique identifier assigned at creation. Immutable.
	ID string `json:"id"`

	// Username is the display name chosen at first join. Unique among users,
	// case-sensitive, and immutable after creation.
	Username string `json:"username"`

	// Avatar is an opaque avatar reference (typically a URL). Mutable on every join.
	Avatar string `json:"avatar,omitempty"`

	// IsOnline reports whether the user currently holds a live session.
	// Authoritative only in combination with the session registry; forced to
	// false when records are loaded from disk.
	IsOnline bool `json:"isOnline"`

	// LastSeen is updated on every online/offline transition.
	LastSeen time.Time `json:"lastSeen"`

	// CreatedAt is set once when the record is created. Immutable.
	CreatedAt time.Time `json:"createdAt"`
}
