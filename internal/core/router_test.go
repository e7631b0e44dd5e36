package core

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sochat/sochat-server/internal/store/memory"
)

// newTestRouter builds a router on the volatile store with three seeded
// users: alice (1), bob (2), carol (3).
func newTestRouter(t *testing.T) (*Router, *Registry, *Presence, *memory.MemoryStore) {
	t.Helper()

	st := memory.New()
	ctx := context.Background()
	for _, name := range []string{"alice", "bob", "carol"} {
		if _, err := st.CreateUser(ctx, name, "hash"); err != nil {
			t.Fatalf("seed user %s: %v", name, err)
		}
	}

	logger := zerolog.Nop()
	registry := NewRegistry()
	presence := NewPresence(st, &logger)
	router := NewRouter(registry, presence, st, &logger, 1000)
	return router, registry, presence, st
}

func attach(t *testing.T, router *Router, id string, userID int64, username string) *Session {
	t.Helper()

	s := NewSession(id, userID, username)
	router.Attach(s)
	t.Cleanup(func() {
		defer func() { recover() }() // double close when the test already disconnected
		close(s.Commands)
	})
	return s
}

func joinAndWait(t *testing.T, registry *Registry, room string, want int, sessions ...*Session) {
	t.Helper()

	for _, s := range sessions {
		s.Commands <- &Command{Kind: CommandJoinRoom, Room: room}
	}
	waitFor(t, func() bool { return len(registry.Members(room)) == want }, "room membership")
}

func TestRouterRoomMessageInclusiveEcho(t *testing.T) {
	router, registry, _, _ := newTestRouter(t)

	alice := attach(t, router, "a", 1, "alice")
	bob := attach(t, router, "b", 2, "bob")
	joinAndWait(t, registry, "general", 2, alice, bob)

	alice.Commands <- &Command{Kind: CommandSendRoomMessage, Room: "general", Content: "hi"}

	for _, s := range []*Session{alice, bob} {
		ev := mustEvent(t, s.Events, EventRoomMessage)
		if ev.Message.Sender != "alice" || ev.Message.Content != "hi" || ev.Message.Room != "general" {
			t.Fatalf("unexpected message event for %s: %+v", s.Username, ev)
		}
		if ev.Message.ID == 0 {
			t.Fatalf("message event missing persisted id")
		}
	}
}

func TestRouterTrimsRoomMessageContent(t *testing.T) {
	router, registry, _, _ := newTestRouter(t)

	alice := attach(t, router, "a", 1, "alice")
	joinAndWait(t, registry, "general", 1, alice)

	alice.Commands <- &Command{Kind: CommandSendRoomMessage, Room: "general", Content: "  hi there \n"}

	ev := mustEvent(t, alice.Events, EventRoomMessage)
	if ev.Message.Content != "hi there" {
		t.Fatalf("expected trimmed content, got %q", ev.Message.Content)
	}
}

func TestRouterTypingExcludesSender(t *testing.T) {
	router, registry, _, _ := newTestRouter(t)

	alice := attach(t, router, "a", 1, "alice")
	bob := attach(t, router, "b", 2, "bob")
	joinAndWait(t, registry, "general", 2, alice, bob)

	alice.Commands <- &Command{Kind: CommandTyping, Room: "general"}

	ev := mustEvent(t, bob.Events, EventTyping)
	if ev.Username != "alice" || ev.Room != "general" {
		t.Fatalf("unexpected typing event: %+v", ev)
	}
	assertNoEvent(t, alice.Events, EventTyping, 150*time.Millisecond)
}

func TestRouterPrivateMessageDelivery(t *testing.T) {
	router, _, _, st := newTestRouter(t)

	alice := attach(t, router, "a", 1, "alice")
	bob := attach(t, router, "b", 2, "bob")

	// No shared room: private delivery goes by user id, not room membership.
	alice.Commands <- &Command{Kind: CommandSendPrivateMessage, RecipientID: 2, Content: "hey"}

	ev := mustEvent(t, bob.Events, EventPrivateMessage)
	if ev.Message.Sender != "alice" || ev.Message.Content != "hey" {
		t.Fatalf("unexpected private event: %+v", ev)
	}
	assertNoEvent(t, alice.Events, EventPrivateMessage, 150*time.Millisecond)

	msgs, err := st.MessagesForPrivatePair(context.Background(), 1, 2, 10)
	if err != nil || len(msgs) != 1 {
		t.Fatalf("expected 1 persisted message, got %d (err %v)", len(msgs), err)
	}
	if msgs[0].RecipientID == nil || *msgs[0].RecipientID != 2 {
		t.Fatalf("persisted message missing recipient: %+v", msgs[0])
	}
}

func TestRouterTrimsPrivateMessageContent(t *testing.T) {
	router, _, _, st := newTestRouter(t)

	alice := attach(t, router, "a", 1, "alice")
	bob := attach(t, router, "b", 2, "bob")

	alice.Commands <- &Command{Kind: CommandSendPrivateMessage, RecipientID: 2, Content: "  psst \n"}

	ev := mustEvent(t, bob.Events, EventPrivateMessage)
	if ev.Message.Content != "psst" {
		t.Fatalf("expected trimmed delivery, got %q", ev.Message.Content)
	}

	msgs, err := st.MessagesForPrivatePair(context.Background(), 1, 2, 10)
	if err != nil || len(msgs) != 1 {
		t.Fatalf("expected 1 persisted message, got %d (err %v)", len(msgs), err)
	}
	if msgs[0].Content != "psst" {
		t.Fatalf("expected trimmed content persisted, got %q", msgs[0].Content)
	}
}

func TestRouterPrivateMessageOfflineRecipientStillPersisted(t *testing.T) {
	router, _, _, st := newTestRouter(t)

	alice := attach(t, router, "a", 1, "alice")

	// carol has no live session; the message is stored, nothing delivered.
	alice.Commands <- &Command{Kind: CommandSendPrivateMessage, RecipientID: 3, Content: "you there?"}

	waitFor(t, func() bool {
		msgs, err := st.MessagesForPrivatePair(context.Background(), 1, 3, 10)
		return err == nil && len(msgs) == 1
	}, "message persisted for offline recipient")
	assertNoEvent(t, alice.Events, EventError, 150*time.Millisecond)
}

func TestRouterRejectsEmptyContent(t *testing.T) {
	router, registry, _, st := newTestRouter(t)

	alice := attach(t, router, "a", 1, "alice")
	joinAndWait(t, registry, "general", 1, alice)

	alice.Commands <- &Command{Kind: CommandSendRoomMessage, Room: "general", Content: "   \t "}

	ev := mustEvent(t, alice.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeValidation {
		t.Fatalf("expected validation error, got %+v", ev)
	}

	msgs, _ := st.MessagesForRoom(context.Background(), "general", 10)
	if len(msgs) != 0 {
		t.Fatalf("rejected message must not be persisted, got %d", len(msgs))
	}
}

func TestRouterRejectsOversizedContent(t *testing.T) {
	router, registry, _, _ := newTestRouter(t)

	alice := attach(t, router, "a", 1, "alice")
	joinAndWait(t, registry, "general", 1, alice)

	alice.Commands <- &Command{
		Kind:    CommandSendRoomMessage,
		Room:    "general",
		Content: strings.Repeat("a", 1001),
	}

	ev := mustEvent(t, alice.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeValidation {
		t.Fatalf("expected validation error, got %+v", ev)
	}
}

func TestRouterContentBoundIsCharactersNotBytes(t *testing.T) {
	router, registry, _, _ := newTestRouter(t)

	alice := attach(t, router, "a", 1, "alice")
	joinAndWait(t, registry, "general", 1, alice)

	// 600 Cyrillic characters are 1200 bytes; under the 1000-character
	// bound they must go through.
	alice.Commands <- &Command{
		Kind:    CommandSendRoomMessage,
		Room:    "general",
		Content: strings.Repeat("ж", 600),
	}

	ev := mustEvent(t, alice.Events, EventRoomMessage)
	if ev.Message.Content != strings.Repeat("ж", 600) {
		t.Fatalf("expected multibyte message delivered intact, got %d bytes", len(ev.Message.Content))
	}

	// 1001 characters is over the bound regardless of encoding width.
	alice.Commands <- &Command{
		Kind:    CommandSendRoomMessage,
		Room:    "general",
		Content: strings.Repeat("ж", 1001),
	}

	errEv := mustEvent(t, alice.Events, EventError)
	if errEv.Error == nil || errEv.Error.Code != ErrCodeValidation {
		t.Fatalf("expected validation error, got %+v", errEv)
	}
}

func TestRouterReadReceiptGoesToIssuerOnly(t *testing.T) {
	router, _, _, st := newTestRouter(t)

	room := "general"
	msg, err := st.CreateMessage(context.Background(), 1, "hi", &room, nil)
	if err != nil {
		t.Fatalf("seed message: %v", err)
	}

	alice := attach(t, router, "a", 1, "alice")
	bob := attach(t, router, "b", 2, "bob")

	// bob reads alice's message; the ack goes to bob's session, not to
	// the original sender.
	bob.Commands <- &Command{Kind: CommandMarkRead, MessageID: msg.ID}

	ev := mustEvent(t, bob.Events, EventReadReceipt)
	if ev.MessageID != msg.ID {
		t.Fatalf("unexpected receipt: %+v", ev)
	}
	assertNoEvent(t, alice.Events, EventReadReceipt, 150*time.Millisecond)

	msgs, _ := st.MessagesForRoom(context.Background(), room, 10)
	if len(msgs) != 1 || !msgs[0].Read {
		t.Fatalf("expected message marked read, got %+v", msgs)
	}
}

func TestRouterMarkReadUnknownIDStillAcks(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	bob := attach(t, router, "b", 2, "bob")
	bob.Commands <- &Command{Kind: CommandMarkRead, MessageID: 999}

	ev := mustEvent(t, bob.Events, EventReadReceipt)
	if ev.MessageID != 999 {
		t.Fatalf("unexpected receipt: %+v", ev)
	}
}

func TestRouterLeaveUnknownRoomProducesError(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	alice := attach(t, router, "a", 1, "alice")
	alice.Commands <- &Command{Kind: CommandLeaveRoom, Room: "ghost"}

	ev := mustEvent(t, alice.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeNotInRoom {
		t.Fatalf("expected not_in_room error, got %+v", ev)
	}
}

func TestRouterDisconnectCleansUp(t *testing.T) {
	router, registry, presence, _ := newTestRouter(t)

	alice := NewSession("a", 1, "alice")
	router.Attach(alice)
	bob := attach(t, router, "b", 2, "bob")
	joinAndWait(t, registry, "general", 2, alice, bob)

	waitFor(t, func() bool { return presence.IsOnline(1) }, "alice online")

	close(alice.Commands)

	waitFor(t, func() bool { return len(registry.Members("general")) == 1 }, "alice removed from room")
	waitFor(t, func() bool { return !presence.IsOnline(1) }, "alice offline")

	if !presence.IsOnline(2) {
		t.Fatalf("bob must stay online")
	}
}
