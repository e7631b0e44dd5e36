package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/sochat/sochat-server/internal/store"
)

// maxHistoryLimit caps the per-request history bound.
const maxHistoryLimit = 500

// MessageHandlers provides HTTP handlers for message history endpoints.
type MessageHandlers struct {
	store        store.MessageStore
	log          *zerolog.Logger
	defaultLimit int
}

// NewMessageHandlers creates a new message handlers instance.
func NewMessageHandlers(st store.MessageStore, logger *zerolog.Logger, defaultLimit int) *MessageHandlers {
	return &MessageHandlers{
		store:        st,
		log:          logger,
		defaultLimit: defaultLimit,
	}
}

// MessageResponse represents a message in API responses.
type MessageResponse struct {
	ID        int64  `json:"id"`
	Sender    string `json:"sender"`
	Content   string `json:"content"`
	Room      string `json:"room,omitempty"`
	Recipient *int64 `json:"recipient,omitempty"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

// RoomHistory returns the latest messages for a room, oldest first.
// GET /api/messages/room/:room?limit=
func (h *MessageHandlers) RoomHistory(c *gin.Context) {
	room := c.Param("room")
	limit := h.parseLimit(c)

	messages, err := h.store.MessagesForRoom(c.Request.Context(), room, limit)
	if err != nil {
		h.log.Error().Err(err).Str("room", room).Msg("failed to fetch room history")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, toMessageResponses(messages))
}

// PrivateHistory returns the latest private messages between the caller and
// another user, either direction, oldest first.
// GET /api/messages/private/:userID?limit=
func (h *MessageHandlers) PrivateHistory(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		h.log.Error().Msg("user_id not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	other, err := strconv.ParseInt(c.Param("userID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return
	}

	limit := h.parseLimit(c)
	messages, err := h.store.MessagesForPrivatePair(c.Request.Context(), uid, other, limit)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", uid).Int64("other_id", other).Msg("failed to fetch private history")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, toMessageResponses(messages))
}

func (h *MessageHandlers) parseLimit(c *gin.Context) int {
	limit := h.defaultLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return limit
}

func toMessageResponses(messages []*store.Message) []MessageResponse {
	response := make([]MessageResponse, 0, len(messages))
	for _, msg := range messages {
		item := MessageResponse{
			ID:        msg.ID,
			Sender:    msg.Sender,
			Content:   msg.Content,
			Recipient: msg.RecipientID,
			Read:      msg.Read,
			CreatedAt: msg.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if msg.Room != nil {
			item.Room = *msg.Room
		}
		response = append(response, item)
	}
	return response
}
