/*
Package store implements the durable store for users and chat messages.

This file defines the Store struct, which owns the on-disk layout and retention
policy. State is held in memory and persisted as full-collection JSON snapshots:
three independent files (users, messages, rooms), each rewritten atomically on
every mutation. A mutation is durable before the call returns.
*/
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tinychat/internal/app/user"
	"tinychat/internal/pkg/logx"
	"tinychat/internal/pkg/randx"
)

const (
	usersFile    = "users.json"
	messagesFile = "messages.json"
	roomsFile    = "rooms.json"

	// MaxHistory caps the message history, in memory and on disk. Oldest
	// entries are dropped first, independent of the age-based sweep.
	MaxHistory = 1000

	// RetentionAge is the maximum age of a message before the retention
	// sweep removes it.
	RetentionAge = 7 * 24 * time.Hour

	// DefaultRoomName names the single shared room record.
	DefaultRoomName = "general"
)

// Room is the persisted record of the single shared broadcast scope. The
// system supports exactly one room; the record exists so the on-disk layout
// stays self-describing and forward-compatible.
type Room struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserPatch holds the mutable user fields for UpdateUser. Nil fields are left
// unchanged.
type UserPatch struct {
	Avatar   *string
	IsOnline *bool
	LastSeen *time.Time
}

// Store is the durable store for users, messages, and the room record.
// All operations, including the retention sweep, are serialized by a single
// mutex. Persistence writes are local file operations performed synchronously
// inside that critical section.
type Store struct {
	mu  sync.Mutex
	dir string

	users    []*user.User
	messages []*Message
	rooms    []*Room

	// now is the clock used for timestamps and the retention cutoff.
	now func() time.Time

	logger zerolog.Logger
}

// New opens the store rooted at dir, creating the directory if needed, and
// loads any persisted state. Every loaded user is marked offline: online
// status is never trusted across a restart because the session registry,
// which is the real authority, starts empty.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}

	s := &Store{
		dir:    dir,
		now:    time.Now,
		logger: logx.Logger().With().Str("component", "Store").Logger(),
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("dir", dir).
		Int("users", len(s.users)).
		Int("messages", len(s.messages)).
		Msg("Store loaded.")

	return s, nil
}

// load reads the three collection files. A missing file means an empty
// collection; a corrupt file is a startup failure.
func (s *Store) load() error {
	if err := readCollection(filepath.Join(s.dir, usersFile), &s.users); err != nil {
		return err
	}
	if err := readCollection(filepath.Join(s.dir, messagesFile), &s.messages); err != nil {
		return err
	}
	if err := readCollection(filepath.Join(s.dir, roomsFile), &s.rooms); err != nil {
		return err
	}

	for _, u := range s.users {
		u.IsOnline = false
	}

	if len(s.rooms) == 0 {
		s.rooms = append(s.rooms, &Room{
			ID:        randx.NewID(),
			Name:      DefaultRoomName,
			CreatedAt: s.now(),
		})
		if err := s.persist(roomsFile, s.rooms); err != nil {
			return err
		}
	}

	// Persist the forced-offline state so a crash before the first join
	// does not resurrect stale online flags.
	if len(s.users) > 0 {
		if err := s.persist(usersFile, s.users); err != nil {
			return err
		}
	}

	return nil
}

func readCollection(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return nil
}

// persist writes a full snapshot of one collection, using a temp file and
// rename so a crash mid-write never leaves a truncated document behind.
func (s *Store) persist(name string, collection any) error {
	data, err := json.MarshalIndent(collection, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file for %s: %w", name, err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}

	return nil
}

// FindUserByUsername returns the first user whose username matches exactly
// (case-sensitive), or nil. Linear scan; fine at hundreds-of-users scale.
func (s *Store) FindUserByUsername(username string) *user.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.findUserByUsernameLocked(username)
}

func (s *Store) findUserByUsernameLocked(username string) *user.User {
	for _, u := range s.users {
		if u.Username == username {
			return u
		}
	}
	return nil
}

func (s *Store) findUserByIDLocked(id string) *user.User {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// CreateUser creates and persists a new user record with a fresh id,
// IsOnline=true, and CreatedAt=LastSeen=now. Username uniqueness is enforced
// by the coordinator's lookup-or-create critical section, not here.
func (s *Store) CreateUser(username, avatar string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	u := &user.User{
		ID:        randx.NewID(),
		Username:  username,
		Avatar:    avatar,
		IsOnline:  true,
		LastSeen:  now,
		CreatedAt: now,
	}

	s.users = append(s.users, u)

	if err := s.persist(usersFile, s.users); err != nil {
		s.logger.Error().Err(err).Str("username", username).Msg("Failed to persist users after create.")
		return nil, err
	}

	return u, nil
}

// UpdateUser merges the patch into the existing record and persists. Returns
// nil if the id is unknown; never creates a record. A persistence failure is
// logged and reported but the in-memory record stays mutated: an accepted
// inconsistency window.
func (s *Store) UpdateUser(id string, patch UserPatch) *user.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findUserByIDLocked(id)
	if u == nil {
		return nil
	}

	if patch.Avatar != nil {
		u.Avatar = *patch.Avatar
	}
	if patch.IsOnline != nil {
		u.IsOnline = *patch.IsOnline
	}
	if patch.LastSeen != nil {
		u.LastSeen = *patch.LastSeen
	}

	if err := s.persist(usersFile, s.users); err != nil {
		s.logger.Error().Err(err).Str("user_id", id).Msg("Failed to persist users after update.")
	}

	return u
}

// CreateMessage validates the spec, snapshots the resolved sending user,
// assigns an id and creation time, appends to history, truncates to the most
// recent MaxHistory entries, and persists. Text messages with empty trimmed
// content and unresolved user ids fail without side effects.
func (s *Store) CreateMessage(spec MessageSpec) (*Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	content := strings.TrimSpace(spec.Content)
	if spec.Type == TypeText && content == "" {
		return nil, ErrEmptyContent
	}

	sender := s.findUserByIDLocked(spec.UserID)
	if sender == nil {
		return nil, ErrUnknownUser
	}

	m := &Message{
		ID:        randx.NewID(),
		Content:   content,
		Type:      spec.Type,
		UserID:    sender.ID,
		Sender:    *sender,
		CreatedAt: s.now(),
	}

	if spec.File != nil {
		m.FileURL = spec.File.URL
		m.FileName = spec.File.Name
		m.FileSize = spec.File.Size
		m.FileMimeType = spec.File.MimeType
	}

	s.messages = append(s.messages, m)
	if len(s.messages) > MaxHistory {
		s.messages = s.messages[len(s.messages)-MaxHistory:]
	}

	if err := s.persist(messagesFile, s.messages); err != nil {
		s.logger.Error().Err(err).Str("message_id", m.ID).Msg("Failed to persist messages after create.")
		return nil, err
	}

	return m, nil
}

// RecentMessages returns the most recent limit messages in chronological
// (oldest-first) order. If fewer exist, all are returned. Non-destructive.
func (s *Store) RecentMessages(limit int) []*Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit < 0 {
		limit = 0
	}

	start := len(s.messages) - limit
	if start < 0 {
		start = 0
	}

	out := make([]*Message, len(s.messages)-start)
	copy(out, s.messages[start:])
	return out
}

// Cleanup removes all messages older than RetentionAge from memory and disk.
// Users are never touched. It takes the same lock as interactive operations.
func (s *Store) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-RetentionAge)

	kept := s.messages[:0]
	for _, m := range s.messages {
		if m.CreatedAt.After(cutoff) {
			kept = append(kept, m)
		}
	}

	removed := len(s.messages) - len(kept)
	s.messages = kept

	if removed == 0 {
		return
	}

	if err := s.persist(messagesFile, s.messages); err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist messages after retention sweep.")
	}

	s.logger.Info().
		Int("removed", removed).
		Int("remaining", len(s.messages)).
		Msg("Retention sweep completed.")
}

// CountUsers returns the number of persisted user records.
func (s *Store) CountUsers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// CountMessages returns the number of messages currently in history.
func (s *Store) CountMessages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}
