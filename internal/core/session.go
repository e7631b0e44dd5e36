package core

// Session is one authenticated live connection as seen by the core layer.
// It exists only while the connection is open and is never persisted.
type Session struct {
	ID       string
	UserID   int64
	Username string

	// Commands carries inbound client actions; the router consumes it
	// strictly sequentially, one goroutine per session. The transport
	// closes it on disconnect.
	Commands chan *Command

	// Events carries outbound deliveries. Sends are non-blocking; a full
	// buffer drops the event rather than stalling the sender's session.
	Events chan *Event

	// Rooms is the set of room names this session has explicitly joined
	// since connecting. Guarded by the registry's lock.
	Rooms map[string]struct{}
}

// NewSession constructs a session with initialized channels.
func NewSession(id string, userID int64, username string) *Session {
	return &Session{
		ID:       id,
		UserID:   userID,
		Username: username,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 16),
		Rooms:    make(map[string]struct{}),
	}
}

// send delivers an event without blocking. Slow consumers lose events.
func (s *Session) send(ev *Event) {
	select {
	case s.Events <- ev:
	default:
		// Drop if slow consumer.
	}
}
