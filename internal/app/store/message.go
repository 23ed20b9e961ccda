/*
Package store implements the durable store for users and chat messages.

This file defines the Message record, the message type enumeration, and the
MessageSpec input used to create new messages.
*/
package store

import (
	"time"

	"tinychat/internal/app/user"
)

// MessageType identifies the kind of content a message carries.
type MessageType string

const (
	// TypeText is a plain text message. Content must be non-empty after trimming.
	TypeText MessageType = "text"

	// TypeFile is a message carrying a generic file reference. Content is optional.
	TypeFile MessageType = "file"

	// TypeImage is a message carrying an image reference. Content is optional.
	TypeImage MessageType = "image"
)

// IsValid reports whether t is one of the recognized message types.
func (t MessageType) IsValid() bool {
	switch t {
	case TypeText, TypeFile, TypeImage:
		return true
	}
	return false
}

// Message is an immutable chat event. Once created it is never mutated, only
// pruned by retention. The Sender field is a snapshot of the sending user
// captured at creation time and is deliberately not kept in sync with later
// profile updates.
type Message struct {
	ID      string      `json:"id"`
	Content string      `json:"content"`
	Type    MessageType `json:"type"`

	// UserID references the sending User. It is guaranteed to resolve at the
	// moment of creation.
	UserID string `json:"userId"`

	// Sender is the denormalized snapshot of the sending user.
	Sender user.User `json:"user"`

	// File reference fields, present for TypeFile and TypeImage messages.
	FileURL      string `json:"fileUrl,omitempty"`
	FileName     string `json:"fileName,omitempty"`
	FileSize     int64  `json:"fileSize,omitempty"`
	FileMimeType string `json:"fileMimeType,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// FileInfo is the opaque file descriptor attached to file and image messages,
// as returned by the upload endpoint.
type FileInfo struct {
	URL      string `json:"url"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
}

// MessageSpec describes a message to be created. It is the canonical internal
// message intent produced by normalizing the loose inbound payload.
type MessageSpec struct {
	Content string
	Type    MessageType
	UserID  string
	File    *FileInfo
}
