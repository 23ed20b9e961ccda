package chat

import (
	"testing"
	"time"

	"tinychat/internal/app/user"
)

func testSession(connID, username string) *Session {
	return &Session{
		ConnID:   connID,
		User:     user.User{ID: "u-" + username, Username: username, IsOnline: true},
		JoinedAt: time.Now(),
	}
}

func TestRegistryPutGet(t *testing.T) {
	r := NewRegistry()

	if got := r.Get("c1"); got != nil {
		t.Error("Get on an empty registry should return nil")
	}

	s := testSession("c1", "alice")
	r.Put("c1", s)

	if got := r.Get("c1"); got != s {
		t.Error("Get should return the stored session")
	}
	if r.Len() != 1 {
		t.Errorf("Expected 1 session, got %d", r.Len())
	}
}

func TestRegistryPutReplaces(t *testing.T) {
	r := NewRegistry()

	first := testSession("c1", "alice")
	second := testSession("c1", "alice")

	r.Put("c1", first)
	r.Put("c1", second)

	if r.Len() != 1 {
		t.Errorf("Replacing a session must not grow the registry, got %d entries", r.Len())
	}
	if got := r.Get("c1"); got != second {
		t.Error("Put should replace the previous session for the same connection id")
	}
}

func TestRegistryRemoveIsIdempotent(t *testing.T) {
	r := NewRegistry()

	s := testSession("c1", "alice")
	r.Put("c1", s)

	if got := r.Remove("c1"); got != s {
		t.Error("Remove should return the removed session")
	}
	if got := r.Remove("c1"); got != nil {
		t.Error("A second Remove for the same id should return nil")
	}
	if r.Len() != 0 {
		t.Errorf("Expected empty registry, got %d entries", r.Len())
	}
}

func TestRegistryListAll(t *testing.T) {
	r := NewRegistry()

	r.Put("c1", testSession("c1", "alice"))
	r.Put("c2", testSession("c2", "bob"))
	r.Put("c3", testSession("c3", "carol"))

	all := r.ListAll()
	if len(all) != 3 {
		t.Fatalf("Expected 3 sessions, got %d", len(all))
	}

	seen := make(map[string]bool)
	for _, s := range all {
		seen[s.ConnID] = true
	}
	for _, id := range []string{"c1", "c2", "c3"} {
		if !seen[id] {
			t.Errorf("ListAll should include %s", id)
		}
	}
}
