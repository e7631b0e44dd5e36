// Package memory is the volatile persistence backend. It satisfies the same
// contract as the sqlite store but keeps everything in process maps, so all
// state is lost on restart. It is selected at startup only, as a degraded
// mode when the durable store cannot be opened.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sochat/sochat-server/internal/store"
)

// MemoryStore implements store.Store on in-process maps.
type MemoryStore struct {
	mu sync.RWMutex

	users      map[int64]*store.User
	byUsername map[string]int64
	messages   []*store.Message

	nextUserID    int64
	nextMessageID int64
}

// New creates an empty volatile store.
func New() *MemoryStore {
	return &MemoryStore{
		users:      make(map[int64]*store.User),
		byUsername: make(map[string]int64),
	}
}

// Close is a no-op for the volatile store.
func (s *MemoryStore) Close() error {
	return nil
}

// ==== UserStore implementation ====

// CreateUser creates a new user with hashed password.
func (s *MemoryStore) CreateUser(_ context.Context, username, passwordHash string) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUsername[username]; exists {
		return nil, fmt.Errorf("user %q already exists", username)
	}

	s.nextUserID++
	user := &store.User{
		ID:           s.nextUserID,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	s.users[user.ID] = user
	s.byUsername[username] = user.ID

	return cloneUser(user), nil
}

// GetUserByID retrieves a user by ID.
func (s *MemoryStore) GetUserByID(_ context.Context, id int64) (*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user not found: %d", id)
	}
	return cloneUser(user), nil
}

// GetUserByUsername retrieves a user by username.
func (s *MemoryStore) GetUserByUsername(_ context.Context, username string) (*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[username]
	if !ok {
		return nil, fmt.Errorf("user not found: %s", username)
	}
	return cloneUser(s.users[id]), nil
}

// SetUserOnline records the user's online flag and refreshes last_seen.
func (s *MemoryStore) SetUserOnline(_ context.Context, id int64, online bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user not found: %d", id)
	}
	user.Online = online
	user.LastSeen = time.Now()
	return nil
}

// ListUsers returns all users with their presence fields.
func (s *MemoryStore) ListUsers(_ context.Context) ([]*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*store.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, cloneUser(user))
	}
	return users, nil
}

// ==== MessageStore implementation ====

// CreateMessage persists a message, assigning its id and timestamp.
func (s *MemoryStore) CreateMessage(_ context.Context, senderID int64, content string, room *string, recipientID *int64) (*store.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sender := ""
	if user, ok := s.users[senderID]; ok {
		sender = user.Username
	}

	s.nextMessageID++
	msg := &store.Message{
		ID:        s.nextMessageID,
		SenderID:  senderID,
		Sender:    sender,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if room != nil {
		r := *room
		msg.Room = &r
	}
	if recipientID != nil {
		rid := *recipientID
		msg.RecipientID = &rid
	}
	s.messages = append(s.messages, msg)

	return cloneMessage(msg), nil
}

// MarkRead sets the message's read flag. Unknown ids are a silent no-op.
func (s *MemoryStore) MarkRead(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, msg := range s.messages {
		if msg.ID == id {
			msg.Read = true
			return nil
		}
	}
	return nil
}

// MessagesForRoom returns the latest messages for a room, oldest first.
func (s *MemoryStore) MessagesForRoom(_ context.Context, room string, limit int) ([]*store.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*store.Message, 0)
	for _, msg := range s.messages {
		if msg.Room != nil && *msg.Room == room {
			matched = append(matched, msg)
		}
	}
	return tailClone(matched, limit), nil
}

// MessagesForPrivatePair returns the latest private messages between two
// users in either direction, oldest first.
func (s *MemoryStore) MessagesForPrivatePair(_ context.Context, userA, userB int64, limit int) ([]*store.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*store.Message, 0)
	for _, msg := range s.messages {
		if msg.RecipientID == nil {
			continue
		}
		if (msg.SenderID == userA && *msg.RecipientID == userB) ||
			(msg.SenderID == userB && *msg.RecipientID == userA) {
			matched = append(matched, msg)
		}
	}
	return tailClone(matched, limit), nil
}

// tailClone keeps the newest limit entries of an oldest-first slice and
// clones them so callers never alias store-internal records.
func tailClone(msgs []*store.Message, limit int) []*store.Message {
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]*store.Message, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, cloneMessage(msg))
	}
	return out
}

func cloneUser(u *store.User) *store.User {
	c := *u
	return &c
}

func cloneMessage(m *store.Message) *store.Message {
	c := *m
	if m.Room != nil {
		r := *m.Room
		c.Room = &r
	}
	if m.RecipientID != nil {
		rid := *m.RecipientID
		c.RecipientID = &rid
	}
	return &c
}
