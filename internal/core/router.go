package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/sochat/sochat-server/internal/store"
)

// storeTimeout bounds a single persistence call. Store I/O is detached from
// the session's lifetime: a disconnect does not cancel an in-flight write.
const storeTimeout = 5 * time.Second

// Router validates, persists, and fans out chat events. Each attached
// session gets its own goroutine consuming its command channel, so a
// session's events are processed strictly in order while sessions run
// concurrently with each other.
type Router struct {
	registry *Registry
	presence *Presence
	store    store.MessageStore
	log      *zerolog.Logger
	maxLen   int

	// byUser indexes live sessions by authenticated user id for private
	// delivery. One user may hold several sessions (multiple tabs).
	mu     sync.RWMutex
	byUser map[int64]map[*Session]struct{}
}

// NewRouter constructs a message router. maxLen bounds message content
// length in characters.
func NewRouter(registry *Registry, presence *Presence, messageStore store.MessageStore, logger *zerolog.Logger, maxLen int) *Router {
	return &Router{
		registry: registry,
		presence: presence,
		store:    messageStore,
		log:      logger,
		maxLen:   maxLen,
		byUser:   make(map[int64]map[*Session]struct{}),
	}
}

// Attach registers the session, marks its user online, and starts the
// session's command loop. The loop runs until the transport closes the
// session's command channel, then tears the session down.
func (r *Router) Attach(s *Session) {
	r.mu.Lock()
	sessions, ok := r.byUser[s.UserID]
	if !ok {
		sessions = make(map[*Session]struct{})
		r.byUser[s.UserID] = sessions
	}
	sessions[s] = struct{}{}
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	r.presence.SetOnline(ctx, s.UserID)
	cancel()

	go r.sessionLoop(s)
}

func (r *Router) sessionLoop(s *Session) {
	for cmd := range s.Commands {
		r.handle(s, cmd)
	}
	r.detach(s)
}

// detach runs after the last queued command: leave every room, drop the
// user index entry, and mark the user offline.
func (r *Router) detach(s *Session) {
	r.registry.LeaveAll(s)

	r.mu.Lock()
	if sessions, ok := r.byUser[s.UserID]; ok {
		delete(sessions, s)
		if len(sessions) == 0 {
			delete(r.byUser, s.UserID)
		}
	}
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	r.presence.SetOffline(ctx, s.UserID)
	cancel()

	r.log.Debug().Str("session_id", s.ID).Str("username", s.Username).Msg("session detached")
}

func (r *Router) handle(s *Session, cmd *Command) {
	switch cmd.Kind {
	case CommandJoinRoom:
		// A bare join is silent: no persistence, no broadcast.
		r.registry.Join(s, cmd.Room)
	case CommandLeaveRoom:
		if !r.registry.Leave(s, cmd.Room) {
			s.send(&Event{Kind: EventError, Error: newError(ErrCodeNotInRoom, fmt.Sprintf("not in room %q", cmd.Room))})
		}
	case CommandSendRoomMessage:
		r.handleRoomMessage(s, cmd)
	case CommandSendPrivateMessage:
		r.handlePrivateMessage(s, cmd)
	case CommandTyping:
		r.registry.BroadcastExcept(cmd.Room, s, &Event{
			Kind:     EventTyping,
			Room:     cmd.Room,
			Username: s.Username,
		})
	case CommandMarkRead:
		r.handleMarkRead(s, cmd)
	}
}

func (r *Router) handleRoomMessage(s *Session, cmd *Command) {
	content, verr := r.validateContent(cmd.Content)
	if verr != nil {
		s.send(&Event{Kind: EventError, Error: verr})
		return
	}

	msg, err := r.persistMessage(s, content, &cmd.Room, nil)
	if err != nil {
		r.log.Error().Err(err).Str("room", cmd.Room).Str("username", s.Username).Msg("failed to persist room message")
		s.send(&Event{Kind: EventError, Error: newError(ErrCodeStorage, "message could not be stored")})
		return
	}

	// Inclusive broadcast: the sender's own session receives the echo too.
	r.registry.Broadcast(cmd.Room, &Event{
		Kind: EventRoomMessage,
		Room: cmd.Room,
		Message: Message{
			ID:        msg.ID,
			Sender:    s.Username,
			Content:   content,
			Room:      cmd.Room,
			CreatedAt: msg.CreatedAt,
		},
	})
}

func (r *Router) handlePrivateMessage(s *Session, cmd *Command) {
	// Same shape as room messages: the trimmed form is what gets persisted
	// and delivered.
	content, verr := r.validateContent(cmd.Content)
	if verr != nil {
		s.send(&Event{Kind: EventError, Error: verr})
		return
	}

	msg, err := r.persistMessage(s, content, nil, &cmd.RecipientID)
	if err != nil {
		r.log.Error().Err(err).Int64("recipient_id", cmd.RecipientID).Str("username", s.Username).Msg("failed to persist private message")
		s.send(&Event{Kind: EventError, Error: newError(ErrCodeStorage, "message could not be stored")})
		return
	}

	// The message is persisted regardless of the recipient being online;
	// without a live session nothing is delivered (no offline queue).
	ev := &Event{
		Kind: EventPrivateMessage,
		Message: Message{
			ID:        msg.ID,
			Sender:    s.Username,
			Content:   content,
			CreatedAt: msg.CreatedAt,
		},
	}

	r.mu.RLock()
	for target := range r.byUser[cmd.RecipientID] {
		target.send(ev)
	}
	r.mu.RUnlock()
}

func (r *Router) handleMarkRead(s *Session, cmd *Command) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if err := r.store.MarkRead(ctx, cmd.MessageID); err != nil {
		r.log.Warn().Err(err).Int64("msg_id", cmd.MessageID).Msg("failed to mark message read")
		return
	}

	// The acknowledgment goes to the session that issued the read, not to
	// the message's original sender. Observed contract; possibly a product
	// defect, kept as-is pending clarification.
	s.send(&Event{Kind: EventReadReceipt, MessageID: cmd.MessageID})
}

func (r *Router) persistMessage(s *Session, content string, room *string, recipientID *int64) (*store.Message, error) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	return r.store.CreateMessage(ctx, s.UserID, content, room, recipientID)
}

// validateContent trims and bounds message content. Returns the trimmed
// content, or a domain error when it is empty or over the length bound.
func (r *Router) validateContent(content string) (string, *Error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", newError(ErrCodeValidation, "message content is empty")
	}
	// The bound is in characters, not bytes; multibyte content counts
	// one per rune.
	if utf8.RuneCountInString(trimmed) > r.maxLen {
		return "", newError(ErrCodeValidation, fmt.Sprintf("message content exceeds %d characters", r.maxLen))
	}
	return trimmed, nil
}
