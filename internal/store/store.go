package store

import (
	"context"
	"time"
)

// User represents a registered account with its presence fields.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Online       bool
	LastSeen     time.Time
	CreatedAt    time.Time
}

// Message represents a persisted chat message. Exactly one of Room and
// RecipientID is set: room messages carry a room name, private messages a
// recipient user id.
type Message struct {
	ID          int64
	SenderID    int64
	Sender      string // sender username, resolved by the backend
	Content     string
	Room        *string
	RecipientID *int64
	Read        bool
	CreatedAt   time.Time
}

// UserStore handles user and presence persistence.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, username, passwordHash string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// SetUserOnline records the user's online flag and refreshes last_seen.
	SetUserOnline(ctx context.Context, id int64, online bool) error

	// ListUsers returns all users with their presence fields.
	ListUsers(ctx context.Context) ([]*User, error)
}

// MessageStore handles message persistence.
type MessageStore interface {
	// CreateMessage persists a message, assigning its id and timestamp.
	// Room and recipientID are mutually exclusive; the caller decides the
	// shape at the boundary, the store does not re-validate it.
	CreateMessage(ctx context.Context, senderID int64, content string, room *string, recipientID *int64) (*Message, error)

	// MarkRead sets the message's read flag. Unknown ids are a silent no-op;
	// the flag only ever transitions false to true.
	MarkRead(ctx context.Context, id int64) error

	// MessagesForRoom returns the latest messages for a room, capped at
	// limit, ordered oldest first.
	MessagesForRoom(ctx context.Context, room string, limit int) ([]*Message, error)

	// MessagesForPrivatePair returns the latest private messages exchanged
	// between two users in either direction, capped at limit, ordered
	// oldest first.
	MessagesForPrivatePair(ctx context.Context, userA, userB int64, limit int) ([]*Message, error)
}

// Store aggregates all storage interfaces. The durable (sqlite) and
// volatile (memory) backends satisfy the same contract and are selected
// once at startup.
type Store interface {
	UserStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
