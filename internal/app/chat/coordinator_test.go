package chat

import (
	"sync"
	"testing"

	"tinychat/internal/app/store"
)

// recordedEvent is one delivery captured by the fake gateway.
type recordedEvent struct {
	// Scope is "one", "room", or "except".
	Scope   string
	ConnID  string
	Event   string
	Payload any
}

// fakeGateway records every delivery in global order.
type fakeGateway struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (g *fakeGateway) SendToOne(connID, event string, payload any) {
	g.record(recordedEvent{Scope: "one", ConnID: connID, Event: event, Payload: payload})
}

func (g *fakeGateway) SendToRoom(event string, payload any) {
	g.record(recordedEvent{Scope: "room", Event: event, Payload: payload})
}

func (g *fakeGateway) SendToRoomExcept(connID, event string, payload any) {
	g.record(recordedEvent{Scope: "except", ConnID: connID, Event: event, Payload: payload})
}

func (g *fakeGateway) record(e recordedEvent) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.events = append(g.events, e)
}

func (g *fakeGateway) all() []recordedEvent {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]recordedEvent, len(g.events))
	copy(out, g.events)
	return out
}

func (g *fakeGateway) reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.events = nil
}

// eventsFor filters deliveries addressed to a single connection.
func (g *fakeGateway) eventsFor(connID string) []recordedEvent {
	var out []recordedEvent
	for _, e := range g.all() {
		switch e.Scope {
		case "one":
			if e.ConnID == connID {
				out = append(out, e)
			}
		case "room":
			out = append(out, e)
		case "except":
			if e.ConnID != connID {
				out = append(out, e)
			}
		}
	}
	return out
}

func newTestCoordinator(t *testing.T) (*Coordinator, *fakeGateway, *Registry, *store.Store) {
	t.Helper()

	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("store.New should succeed: %v", err)
	}

	gw := &fakeGateway{}
	reg := NewRegistry()
	return NewCoordinator(st, reg, gw), gw, reg, st
}

func strptr(s string) *string { return &s }

func TestJoinCreatesUserAndSession(t *testing.T) {
	c, gw, reg, st := newTestCoordinator(t)

	c.Join("c1", JoinPayload{Username: "alice", Avatar: "a.png"})

	u := st.FindUserByUsername("alice")
	if u == nil {
		t.Fatal("Join with a new username should create a user")
	}
	if !u.IsOnline {
		t.Error("Joined user should be online")
	}

	session := reg.Get("c1")
	if session == nil {
		t.Fatal("Join should register a session")
	}
	if session.User.ID != u.ID {
		t.Error("Session should snapshot the resolved user")
	}

	for _, e := range gw.all() {
		if e.Event == EventJoinError {
			t.Fatalf("Unexpected joinError: %+v", e.Payload)
		}
	}
}

func TestJoinDeterminism(t *testing.T) {
	c, _, _, st := newTestCoordinator(t)

	c.Join("c1", JoinPayload{Username: "alice"})
	first := st.FindUserByUsername("alice")

	c.Disconnect("c1")

	c.Join("c2", JoinPayload{Username: "alice"})
	second := st.FindUserByUsername("alice")

	if first == nil || second == nil {
		t.Fatal("User should exist after both joins")
	}
	if first.ID != second.ID {
		t.Errorf("Rejoining with the same username must reuse the same id: %s vs %s", first.ID, second.ID)
	}
	if st.CountUsers() != 1 {
		t.Errorf("Expected exactly one user record, got %d", st.CountUsers())
	}
}

func TestJoinOrdering(t *testing.T) {
	c, gw, _, _ := newTestCoordinator(t)

	c.Join("b", JoinPayload{Username: "bob"})
	gw.reset()

	c.Join("a", JoinPayload{Username: "alice"})

	// The joining connection must see, in order: history, online snapshot,
	// confirmation. Everyone else is told afterwards.
	joinerEvents := gw.eventsFor("a")
	if len(joinerEvents) < 3 {
		t.Fatalf("Expected at least 3 events for the joiner, got %d", len(joinerEvents))
	}
	wantOrder := []string{EventRecentMessages, EventOnlineUsers, EventJoinSuccess}
	for i, want := range wantOrder {
		if joinerEvents[i].Event != want {
			t.Errorf("Joiner event %d: expected %s, got %s", i, want, joinerEvents[i].Event)
		}
	}

	var joinSuccessIdx, userJoinedIdx = -1, -1
	for i, e := range gw.all() {
		if e.Event == EventJoinSuccess {
			joinSuccessIdx = i
		}
		if e.Event == EventUserJoined {
			userJoinedIdx = i
		}
	}
	if userJoinedIdx == -1 {
		t.Fatal("Other connections should receive userJoined")
	}
	if userJoinedIdx < joinSuccessIdx {
		t.Error("userJoined must never precede the joiner's joinSuccess")
	}

	// The broadcast must exclude the joiner.
	for _, e := range gw.all() {
		if e.Event == EventUserJoined && (e.Scope != "except" || e.ConnID != "a") {
			t.Errorf("userJoined should be sent to everyone except the joiner, got scope=%s conn=%s", e.Scope, e.ConnID)
		}
	}
}

func TestJoinSnapshotCountsJoiner(t *testing.T) {
	c, gw, _, _ := newTestCoordinator(t)

	c.Join("a", JoinPayload{Username: "alice"})

	for _, e := range gw.eventsFor("a") {
		if e.Event == EventJoinSuccess {
			payload, ok := e.Payload.(JoinSuccessPayload)
			if !ok {
				t.Fatalf("Unexpected joinSuccess payload type %T", e.Payload)
			}
			if len(payload.OnlineUsers) != 1 || payload.OnlineUsers[0].Username != "alice" {
				t.Error("The joiner must see itself in the online snapshot")
			}
			return
		}
	}
	t.Fatal("joinSuccess was not delivered")
}

func TestJoinRejectsEmptyUsername(t *testing.T) {
	c, gw, reg, _ := newTestCoordinator(t)

	c.Join("c1", JoinPayload{Username: ""})

	if reg.Get("c1") != nil {
		t.Error("A failed join must not leave a session behind")
	}

	events := gw.all()
	if len(events) != 1 || events[0].Event != EventJoinError || events[0].Scope != "one" {
		t.Fatalf("Expected a single joinError to the joiner, got %+v", events)
	}
}

func TestSendMessageRoundTrip(t *testing.T) {
	c, gw, _, st := newTestCoordinator(t)

	c.Join("a", JoinPayload{Username: "alice", Avatar: "a.png"})
	c.Join("b", JoinPayload{Username: "bob"})
	gw.reset()

	c.SendMessage("a", SendMessagePayload{Content: strptr("hi"), Type: "text"})

	events := gw.all()
	if len(events) != 1 {
		t.Fatalf("Expected exactly one broadcast, got %d", len(events))
	}
	e := events[0]
	if e.Event != EventNewMessage || e.Scope != "room" {
		t.Fatalf("Expected newMessage to the whole room (sender included), got %+v", e)
	}

	msg, ok := e.Payload.(*store.Message)
	if !ok {
		t.Fatalf("Unexpected payload type %T", e.Payload)
	}
	if msg.Content != "hi" || msg.ID == "" {
		t.Error("Broadcast message should be the canonical stored record")
	}
	if msg.Sender.Username != "alice" || msg.Sender.Avatar != "a.png" {
		t.Error("Broadcast message should carry the sender snapshot")
	}

	stored := st.RecentMessages(1)
	if len(stored) != 1 || stored[0].ID != msg.ID {
		t.Error("The broadcast message should appear in recent history")
	}
}

func TestSendMessageAcceptsLegacyTextField(t *testing.T) {
	c, gw, _, _ := newTestCoordinator(t)

	c.Join("a", JoinPayload{Username: "alice"})
	gw.reset()

	c.SendMessage("a", SendMessagePayload{Text: strptr("hello"), Type: "bogus"})

	events := gw.all()
	if len(events) != 1 || events[0].Event != EventNewMessage {
		t.Fatalf("Expected a newMessage broadcast, got %+v", events)
	}
	msg := events[0].Payload.(*store.Message)
	if msg.Content != "hello" || msg.Type != store.TypeText {
		t.Error("The text field should be accepted and the bogus type should default to text")
	}
}

func TestSendMessageEmptyContentRejection(t *testing.T) {
	c, gw, _, st := newTestCoordinator(t)

	c.Join("a", JoinPayload{Username: "alice"})
	c.Join("b", JoinPayload{Username: "bob"})
	gw.reset()

	c.SendMessage("a", SendMessagePayload{Content: strptr("   "), Type: "text"})

	if st.CountMessages() != 0 {
		t.Error("Rejected message must not be stored")
	}

	events := gw.all()
	if len(events) != 1 {
		t.Fatalf("Expected exactly one event, got %d", len(events))
	}
	if events[0].Event != EventMessageError || events[0].Scope != "one" || events[0].ConnID != "a" {
		t.Errorf("The error must go to the sender only, got %+v", events[0])
	}
}

func TestSendMessageWithoutSessionIsDropped(t *testing.T) {
	c, gw, _, st := newTestCoordinator(t)

	c.SendMessage("stranger", SendMessagePayload{Content: strptr("hi"), Type: "text"})

	if len(gw.all()) != 0 {
		t.Error("A send without a session must produce no events at all")
	}
	if st.CountMessages() != 0 {
		t.Error("A send without a session must store nothing")
	}
}

func TestTypingBroadcastExcludesTypist(t *testing.T) {
	c, gw, _, _ := newTestCoordinator(t)

	c.Join("a", JoinPayload{Username: "alice"})
	c.Join("b", JoinPayload{Username: "bob"})
	gw.reset()

	c.Typing("a", TypingPayload{IsTyping: true})

	events := gw.all()
	if len(events) != 1 {
		t.Fatalf("Expected exactly one typing broadcast, got %d", len(events))
	}
	e := events[0]
	if e.Event != EventUserTyping || e.Scope != "except" || e.ConnID != "a" {
		t.Errorf("Typing should be broadcast to everyone except the typist, got %+v", e)
	}

	notice := e.Payload.(TypingNotice)
	if notice.User.Username != "alice" || !notice.IsTyping {
		t.Error("Typing notice should carry the typist and the typing state")
	}
}

func TestTypingWithoutSessionIsDropped(t *testing.T) {
	c, gw, _, _ := newTestCoordinator(t)

	c.Typing("stranger", TypingPayload{IsTyping: true})

	if len(gw.all()) != 0 {
		t.Error("Typing without a session must produce no events")
	}
}

func TestDisconnectIdempotence(t *testing.T) {
	c, gw, reg, st := newTestCoordinator(t)

	c.Join("a", JoinPayload{Username: "alice"})
	c.Join("b", JoinPayload{Username: "bob"})
	gw.reset()

	c.Disconnect("a")
	c.Disconnect("a")

	var userLeftCount int
	for _, e := range gw.all() {
		if e.Event == EventUserLeft {
			userLeftCount++
		}
	}
	if userLeftCount != 1 {
		t.Errorf("Expected exactly one userLeft broadcast, got %d", userLeftCount)
	}

	if reg.Get("a") != nil {
		t.Error("Session should be gone after disconnect")
	}

	u := st.FindUserByUsername("alice")
	if u == nil || u.IsOnline {
		t.Error("User should be marked offline after disconnect")
	}
	if u != nil && u.LastSeen.IsZero() {
		t.Error("LastSeen should be updated on the offline transition")
	}
}

func TestDisconnectUnknownConnIsNoOp(t *testing.T) {
	c, gw, _, _ := newTestCoordinator(t)

	c.Disconnect("ghost")

	if len(gw.all()) != 0 {
		t.Error("Disconnecting an unknown connection must produce no broadcast")
	}
}

func TestOnlineSnapshotIsSorted(t *testing.T) {
	c, _, _, _ := newTestCoordinator(t)

	c.Join("c1", JoinPayload{Username: "zoe"})
	c.Join("c2", JoinPayload{Username: "adam"})
	c.Join("c3", JoinPayload{Username: "mia"})

	online := c.OnlineUsers()
	if len(online) != 3 {
		t.Fatalf("Expected 3 online users, got %d", len(online))
	}
	for i, want := range []string{"adam", "mia", "zoe"} {
		if online[i].Username != want {
			t.Errorf("Expected %q at position %d, got %q", want, i, online[i].Username)
		}
	}
}

func TestSecondJoinSameUsernameOrphansOldSession(t *testing.T) {
	c, _, reg, st := newTestCoordinator(t)

	c.Join("old", JoinPayload{Username: "alice"})
	c.Join("new", JoinPayload{Username: "alice"})

	if reg.Get("old") == nil || reg.Get("new") == nil {
		t.Fatal("Both connections keep their sessions until their own disconnect")
	}
	if st.CountUsers() != 1 {
		t.Errorf("Both sessions should share one user record, got %d", st.CountUsers())
	}

	// The orphaned session is cleared only by its own disconnect.
	c.Disconnect("old")
	if reg.Get("old") != nil {
		t.Error("Old session should be gone after its own disconnect")
	}
	if reg.Get("new") == nil {
		t.Error("New session must survive the old connection's disconnect")
	}
}
