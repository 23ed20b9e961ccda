/*
Package chat contains the core logic for presence tracking and message broadcasting
in the single shared room.

This file defines the Coordinator, which orchestrates the join, send-message, typing,
and disconnect flows. It is the only component that talks to both the store and the
registry for a given request, and it applies them in a fixed order per operation so
the delivery-ordering guarantees hold.
*/
package chat

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tinychat/internal/app/store"
	"tinychat/internal/app/user"
	"tinychat/internal/pkg/errs"
	"tinychat/internal/pkg/logx"
)

// HistoryLimit is the number of recent messages delivered to a joining connection.
const HistoryLimit = 50

// Coordinator serializes all presence and message flows. Each protocol runs
// as a single critical section under mu: in particular, the lookup-or-create
// step of Join is atomic with respect to other joins, so two concurrent first
// joins for the same username cannot create two user records. Gateway sends
// are non-blocking enqueues, so no network I/O happens inside the lock.
type Coordinator struct {
	mu       sync.Mutex
	store    *store.Store
	registry *Registry
	gateway  Gateway
	logger   zerolog.Logger
}

// NewCoordinator constructs a Coordinator around the given collaborators.
// The registry is owned by the coordinator; it is injected rather than
// reached through package state so the lock boundary stays testable.
func NewCoordinator(st *store.Store, registry *Registry, gateway Gateway) *Coordinator {
	return &Coordinator{
		store:    st,
		registry: registry,
		gateway:  gateway,
		logger:   logx.Logger().With().Str("component", "Coordinator").Logger(),
	}
}

// Join resolves the username to a user record (creating one on first sight),
// registers the session, and delivers, strictly in order: recent history,
// the online snapshot, and a join confirmation to the joining connection,
// followed by a userJoined notice to everyone else. A failure anywhere is
// reported to the joining connection only, leaves no session behind, and
// triggers no broadcast.
func (c *Coordinator) Join(connID string, p JoinPayload) {
	c.mu.Lock()
	defer c.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().
				Str("conn_id", connID).
				Interface("panic", r).
				Msg("Join sequence panicked.")
			c.registry.Remove(connID)
			c.sendError(connID, EventJoinError, errs.NewError(errs.ErrJoinFailed))
		}
	}()

	if p.Username == "" {
		c.sendError(connID, EventJoinError, errs.NewError(errs.ErrInvalidParams))
		return
	}

	now := time.Now()

	u := c.store.FindUserByUsername(p.Username)
	if u == nil {
		created, err := c.store.CreateUser(p.Username, p.Avatar)
		if err != nil {
			c.logger.Error().Err(err).Str("username", p.Username).Msg("Join failed: could not create user.")
			c.sendError(connID, EventJoinError, errs.NewError(errs.ErrJoinFailed))
			return
		}
		u = created
	} else {
		online := true
		u = c.store.UpdateUser(u.ID, store.UserPatch{
			Avatar:   &p.Avatar,
			IsOnline: &online,
			LastSeen: &now,
		})
		if u == nil {
			c.sendError(connID, EventJoinError, errs.NewError(errs.ErrJoinFailed))
			return
		}
	}

	session := &Session{
		ConnID:   connID,
		User:     *u,
		JoinedAt: now,
	}
	c.registry.Put(connID, session)

	// Snapshots are taken after registration so the joining connection sees
	// itself already counted.
	online := c.onlineSnapshot()
	history := c.store.RecentMessages(HistoryLimit)

	c.gateway.SendToOne(connID, EventRecentMessages, history)
	c.gateway.SendToOne(connID, EventOnlineUsers, online)
	c.gateway.SendToOne(connID, EventJoinSuccess, JoinSuccessPayload{
		User:        *u,
		Messages:    history,
		OnlineUsers: online,
	})
	c.gateway.SendToRoomExcept(connID, EventUserJoined, PresencePayload{
		Session:     session,
		OnlineUsers: online,
	})

	c.logger.Info().
		Str("conn_id", connID).
		Str("user_id", u.ID).
		Str("username", u.Username).
		Int("online", len(online)).
		Msg("User joined.")
}

// SendMessage validates and stores an inbound message, then broadcasts the
// canonical stored record to the whole room, sender included. A send from a
// connection without a session is silently dropped: it usually means the
// message raced the join or the disconnect, which is expected.
func (c *Coordinator) SendMessage(connID string, p SendMessagePayload) {
	c.mu.Lock()
	defer c.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().
				Str("conn_id", connID).
				Interface("panic", r).
				Msg("Send sequence panicked.")
			c.sendError(connID, EventMessageError, errs.NewError(errs.ErrUnknown))
		}
	}()

	session := c.registry.Get(connID)
	if session == nil {
		return
	}

	spec, customErr := p.Normalize(session.User.ID)
	if customErr != nil {
		c.sendError(connID, EventMessageError, customErr)
		return
	}

	msg, err := c.store.CreateMessage(spec)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrEmptyContent):
			c.sendError(connID, EventMessageError, errs.NewError(errs.ErrEmptyMessage))
		default:
			c.logger.Error().Err(err).Str("conn_id", connID).Msg("Message rejected by store.")
			c.sendError(connID, EventMessageError, errs.NewError(errs.ErrMessageNotStored))
		}
		return
	}

	// The sender's own copy comes from the stored record too, so every
	// client renders the server-assigned id and timestamp.
	c.gateway.SendToRoom(EventNewMessage, msg)
}

// Typing broadcasts a best-effort typing notice to everyone except the
// typist. No persistence, no acknowledgment; without a session it is a no-op.
func (c *Coordinator) Typing(connID string, p TypingPayload) {
	c.mu.Lock()
	defer c.mu.Unlock()

	session := c.registry.Get(connID)
	if session == nil {
		return
	}

	c.gateway.SendToRoomExcept(connID, EventUserTyping, TypingNotice{
		User:     session.User,
		IsTyping: p.IsTyping,
	})
}

// Disconnect removes the session for the connection, marks the user offline,
// and notifies the remaining room. Removal is atomic, so a second disconnect
// for the same id is a no-op and produces no broadcast.
func (c *Coordinator) Disconnect(connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().
				Str("conn_id", connID).
				Interface("panic", r).
				Msg("Disconnect sequence panicked.")
		}
	}()

	session := c.registry.Remove(connID)
	if session == nil {
		return
	}

	now := time.Now()
	offline := false
	c.store.UpdateUser(session.User.ID, store.UserPatch{
		IsOnline: &offline,
		LastSeen: &now,
	})

	c.gateway.SendToRoom(EventUserLeft, PresencePayload{
		Session:     session,
		OnlineUsers: c.onlineSnapshot(),
	})

	c.logger.Info().
		Str("conn_id", connID).
		Str("user_id", session.User.ID).
		Str("username", session.User.Username).
		Msg("User left.")
}

// OnlineUsers returns the current online snapshot, for the read-only HTTP surface.
func (c *Coordinator) OnlineUsers() []user.User {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.onlineSnapshot()
}

// onlineSnapshot derives the online-user list from the registry. The list is
// sorted by username so the snapshot is stable for clients and tests;
// registry iteration order itself carries no meaning.
func (c *Coordinator) onlineSnapshot() []user.User {
	sessions := c.registry.ListAll()

	users := make([]user.User, 0, len(sessions))
	for _, s := range sessions {
		users = append(users, s.User)
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].Username < users[j].Username
	})

	return users
}

// sendError delivers a structured error event to a single connection.
func (c *Coordinator) sendError(connID, event string, customErr *errs.CustomError) {
	c.gateway.SendToOne(connID, event, ErrorPayload{
		Code:    customErr.Code,
		Message: customErr.Message,
	})
}
