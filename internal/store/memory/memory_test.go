package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUserLifecycle(t *testing.T) {
	st := New()
	ctx := context.Background()

	alice, err := st.CreateUser(ctx, "alice", "hash-a")
	require.NoError(t, err)
	require.Equal(t, int64(1), alice.ID)
	require.False(t, alice.Online)

	_, err = st.CreateUser(ctx, "alice", "hash-b")
	require.Error(t, err, "duplicate username must be rejected")

	byName, err := st.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, alice.ID, byName.ID)

	_, err = st.GetUserByID(ctx, 42)
	require.Error(t, err)

	require.NoError(t, st.SetUserOnline(ctx, alice.ID, true))
	users, err := st.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.True(t, users[0].Online)
	require.False(t, users[0].LastSeen.IsZero())

	require.Error(t, st.SetUserOnline(ctx, 42, true))
}

func TestRoomMessageOrderAndLimit(t *testing.T) {
	st := New()
	ctx := context.Background()
	_, err := st.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)

	room := "general"
	for i := 1; i <= 5; i++ {
		msg, err := st.CreateMessage(ctx, 1, fmt.Sprintf("msg-%d", i), &room, nil)
		require.NoError(t, err)
		require.Equal(t, int64(i), msg.ID)
		require.Equal(t, "alice", msg.Sender)
		require.False(t, msg.Read)
	}

	// The newest three, presented oldest first.
	msgs, err := st.MessagesForRoom(ctx, room, 3)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	require.Equal(t, "msg-3", msgs[0].Content)
	require.Equal(t, "msg-5", msgs[2].Content)

	msgs, err = st.MessagesForRoom(ctx, "other", 10)
	require.NoError(t, err)
	require.Empty(t, msgs)
}

func TestMarkReadIdempotentAndUnknownNoop(t *testing.T) {
	st := New()
	ctx := context.Background()
	_, err := st.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)

	room := "general"
	msg, err := st.CreateMessage(ctx, 1, "hi", &room, nil)
	require.NoError(t, err)

	require.NoError(t, st.MarkRead(ctx, msg.ID))
	require.NoError(t, st.MarkRead(ctx, msg.ID), "second mark must not error")
	require.NoError(t, st.MarkRead(ctx, 999), "unknown id is a silent no-op")

	msgs, err := st.MessagesForRoom(ctx, room, 10)
	require.NoError(t, err)
	require.True(t, msgs[0].Read)
}

func TestPrivatePairEitherDirection(t *testing.T) {
	st := New()
	ctx := context.Background()
	_, err := st.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)
	_, err = st.CreateUser(ctx, "bob", "hash")
	require.NoError(t, err)
	_, err = st.CreateUser(ctx, "carol", "hash")
	require.NoError(t, err)

	bob := int64(2)
	alice := int64(1)
	carol := int64(3)
	_, err = st.CreateMessage(ctx, alice, "a->b", nil, &bob)
	require.NoError(t, err)
	_, err = st.CreateMessage(ctx, bob, "b->a", nil, &alice)
	require.NoError(t, err)
	_, err = st.CreateMessage(ctx, alice, "a->c", nil, &carol)
	require.NoError(t, err)

	msgs, err := st.MessagesForPrivatePair(ctx, alice, bob, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, "a->b", msgs[0].Content)
	require.Equal(t, "b->a", msgs[1].Content)

	// Same pair queried from the other side.
	msgs, err = st.MessagesForPrivatePair(ctx, bob, alice, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
}

func TestReturnedRecordsDoNotAliasStoreState(t *testing.T) {
	st := New()
	ctx := context.Background()
	_, err := st.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)

	room := "general"
	msg, err := st.CreateMessage(ctx, 1, "hi", &room, nil)
	require.NoError(t, err)

	msg.Content = "mutated"
	*msg.Room = "mutated"

	msgs, err := st.MessagesForRoom(ctx, room, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "hi", msgs[0].Content)
}
