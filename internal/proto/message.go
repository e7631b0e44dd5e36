package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoinRoom  = "joinRoom"
	InboundTypeLeaveRoom = "leaveRoom"
	InboundTypeMessage   = "message"
	InboundTypeTyping    = "typing"
	InboundTypeRead      = "read"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventNameMessage        = "message"
	EventNamePrivateMessage = "privateMessage"
	EventNameTyping         = "typing"
	EventNameReadReceipt    = "readReceipt"
)

// RoomData addresses a room by name (joinRoom, leaveRoom, typing).
type RoomData struct {
	Room string `json:"room"`
}

// MessageData is a chat message from the client. Exactly one of Room and
// Recipient must be set.
type MessageData struct {
	Content   string `json:"content"`
	Room      string `json:"room,omitempty"`
	Recipient int64  `json:"recipient,omitempty"`
}

// ReadData identifies the message a read receipt applies to.
type ReadData struct {
	MsgID int64 `json:"msg_id"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// EventMessage is a room message delivered to every session in the room,
// the sender's included.
type EventMessage struct {
	ID      int64  `json:"id"`
	Sender  string `json:"sender"`
	Content string `json:"content"`
	Room    string `json:"room"`
	TS      int64  `json:"ts"`
}

// EventPrivateMessage is a direct message delivered to the recipient's
// sessions only.
type EventPrivateMessage struct {
	ID      int64  `json:"id"`
	Sender  string `json:"sender"`
	Content string `json:"content"`
	TS      int64  `json:"ts"`
}

// EventTyping notifies room members that a user is typing.
type EventTyping struct {
	Username string `json:"username"`
}

// EventReadReceipt acknowledges a read command back to its issuer.
type EventReadReceipt struct {
	MsgID int64 `json:"msg_id"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
