/*
Package chat contains the core logic for presence tracking and message broadcasting
in the single shared room.

This file defines the Gateway interface, the narrow delivery abstraction between the
coordinator and the transport, and the event name constants of the wire protocol.
*/
package chat

// Outbound event names delivered through the gateway.
const (
	// EventRecentMessages carries the recent history to a joining connection.
	EventRecentMessages = "recentMessages"

	// EventOnlineUsers carries the current online-user snapshot.
	EventOnlineUsers = "onlineUsers"

	// EventJoinSuccess confirms a completed join to the joining connection only.
	EventJoinSuccess = "joinSuccess"

	// EventJoinError reports a failed join to the joining connection only.
	EventJoinError = "joinError"

	// EventUserJoined notifies the rest of the room about a new session.
	EventUserJoined = "userJoined"

	// EventUserLeft notifies remaining connections about a departed session.
	EventUserLeft = "userLeft"

	// EventNewMessage broadcasts a stored message to the whole room, sender included.
	EventNewMessage = "newMessage"

	// EventMessageError reports a rejected message to the sender only.
	EventMessageError = "messageError"

	// EventUserTyping broadcasts a typing-state notice to everyone but the typist.
	EventUserTyping = "userTyping"
)

// Gateway delivers events to connections. Delivery is fire-and-forget: the
// gateway never reports per-connection failure back to the caller, a
// connection that has already gone away is simply skipped, and there is no
// retry or buffering beyond the transport's own send queues.
type Gateway interface {
	// SendToOne delivers an event to a single connection.
	SendToOne(connID, event string, payload any)

	// SendToRoom delivers an event to every live connection in the room.
	SendToRoom(event string, payload any)

	// SendToRoomExcept delivers an event to every live connection except one.
	SendToRoomExcept(connID, event string, payload any)
}
