/*
Package chat contains the core logic for presence tracking and message broadcasting
in the single shared room.

This file defines the Registry, the in-memory mapping from connection identifier to
Session. It is the only place where "who is online right now" is computed. The
registry is derived state: never persisted, rebuilt from nothing on restart.
*/
package chat

import "sync"

// Registry maps live connection identifiers to their sessions. It holds no
// business logic and performs no I/O; all operations are plain map operations
// under a read-write mutex. Iteration order of ListAll is unspecified.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// Put stores the session under the given connection id, replacing any
// previous entry for that id.
func (r *Registry) Put(connID string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[connID] = s
}

// Get returns the session for the connection id, or nil.
func (r *Registry) Get(connID string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sessions[connID]
}

// Remove deletes and returns the session for the connection id. The lookup
// and deletion happen under one lock so a second Remove for the same id
// returns nil, making disconnect handling idempotent.
func (r *Registry) Remove(connID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[connID]
	if !ok {
		return nil
	}

	delete(r.sessions, connID)
	return s
}

// ListAll returns a snapshot of every live session, in no particular order.
func (r *Registry) ListAll() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}
