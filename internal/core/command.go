package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoinRoom subscribes the session to a room.
	CommandJoinRoom CommandKind = iota
	// CommandLeaveRoom unsubscribes the session from a room.
	CommandLeaveRoom
	// CommandSendRoomMessage delivers a chat message to room participants.
	CommandSendRoomMessage
	// CommandSendPrivateMessage delivers a chat message to one user's sessions.
	CommandSendPrivateMessage
	// CommandTyping signals that the sender is typing in a room.
	CommandTyping
	// CommandMarkRead flips a message's read flag and acks the caller.
	CommandMarkRead
)

// Command represents an action requested by a client. The destination shape
// is decided at the transport boundary: a message command is either a room
// command or a private command, never both.
type Command struct {
	Kind        CommandKind
	Room        string
	Content     string
	RecipientID int64
	MessageID   int64
}
