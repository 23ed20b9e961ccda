/*
Package chat contains the core logic for presence tracking and message broadcasting
in the single shared room.

This file defines the inbound event payloads accepted from clients and the
normalization step that turns the loose send-message shape into a canonical
store.MessageSpec.
*/
package chat

import (
	"unicode/utf8"

	"tinychat/internal/app/store"
	"tinychat/internal/app/user"
	"tinychat/internal/pkg/errs"
)

// Inbound event names raised by the transport.
const (
	// EventJoin announces presence: {username, avatar}.
	EventJoin = "join"

	// EventSendMessage submits a message: {content|text, type, file?}.
	EventSendMessage = "sendMessage"

	// EventTyping reports typing state: {isTyping}.
	EventTyping = "typing"
)

// JoinPayload is the inbound payload of a join event.
type JoinPayload struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// TypingPayload is the inbound payload of a typing event.
type TypingPayload struct {
	IsTyping bool `json:"isTyping"`
}

// MaxContentLength caps the text content of a single message, in runes.
// It sits well under the transport's frame size limit.
const MaxContentLength = 2000

// SendMessagePayload is the loose inbound shape of a send-message event.
// Historic clients send the text either under "content" or under "text";
// both are accepted and reconciled during normalization.
type SendMessagePayload struct {
	Content *string         `json:"content"`
	Text    *string         `json:"text"`
	Type    string          `json:"type"`
	File    *store.FileInfo `json:"file,omitempty"`
}

// Normalize produces the canonical message spec for the given sender. An
// unrecognized or missing type defaults to text. A payload that matches
// neither the content nor the text shape and carries no file is rejected,
// as is content longer than MaxContentLength.
func (p SendMessagePayload) Normalize(userID string) (store.MessageSpec, *errs.CustomError) {
	var content string
	switch {
	case p.Content != nil:
		content = *p.Content
	case p.Text != nil:
		content = *p.Text
	case p.File == nil:
		return store.MessageSpec{}, errs.NewError(errs.ErrMessageInvalid)
	}

	if utf8.RuneCountInString(content) > MaxContentLength {
		return store.MessageSpec{}, errs.NewError(errs.ErrMessageContentTooLong)
	}

	msgType := store.MessageType(p.Type)
	if !msgType.IsValid() {
		msgType = store.TypeText
	}

	if msgType != store.TypeText && p.File == nil {
		return store.MessageSpec{}, errs.NewError(errs.ErrMessageInvalid)
	}

	return store.MessageSpec{
		Content: content,
		Type:    msgType,
		UserID:  userID,
		File:    p.File,
	}, nil
}

// JoinSuccessPayload bundles everything a freshly joined connection needs:
// its own identity, the history it was just sent, and the online snapshot
// that already counts it.
type JoinSuccessPayload struct {
	User        user.User        `json:"user"`
	Messages    []*store.Message `json:"messages"`
	OnlineUsers []user.User      `json:"onlineUsers"`
}

// PresencePayload accompanies userJoined and userLeft notices.
type PresencePayload struct {
	Session     *Session    `json:"session"`
	OnlineUsers []user.User `json:"onlineUsers"`
}

// TypingNotice is broadcast to everyone except the typist.
type TypingNotice struct {
	User     user.User `json:"user"`
	IsTyping bool      `json:"isTyping"`
}

// ErrorPayload is the body of joinError and messageError events.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
