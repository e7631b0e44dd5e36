package core

import "time"

// EventKind is a notification the core emits to sessions.
type EventKind int

const (
	// EventRoomMessage notifies sessions about a chat message in a room.
	// Delivery is inclusive: the sender's own session receives the echo.
	EventRoomMessage EventKind = iota
	// EventPrivateMessage notifies a recipient's sessions about a direct message.
	EventPrivateMessage
	// EventTyping notifies room members that a user is typing. Delivery is
	// exclusive: the typing user's own session never receives it.
	EventTyping
	// EventReadReceipt acknowledges a read command to the issuing session.
	EventReadReceipt
	// EventError notifies a session about a domain error.
	EventError
)

// Message is the domain view of a chat message carried in events.
type Message struct {
	ID        int64
	Sender    string
	Content   string
	Room      string // empty for private messages
	CreatedAt time.Time
}

// Event is sent to sessions to describe what happened in the system.
type Event struct {
	Kind      EventKind
	Room      string
	Username  string // typing sender
	Message   Message
	MessageID int64 // read receipt subject
	Error     *Error
}
