package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/sochat/sochat-server/internal/core"
)

// UserHandlers provides HTTP handlers for user presence listings.
type UserHandlers struct {
	presence *core.Presence
	log      *zerolog.Logger
}

// NewUserHandlers creates a new user handlers instance.
func NewUserHandlers(presence *core.Presence, logger *zerolog.Logger) *UserHandlers {
	return &UserHandlers{
		presence: presence,
		log:      logger,
	}
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Online   bool   `json:"online"`
	LastSeen string `json:"last_seen,omitempty"`
}

// ListUsers returns all users with their online flag and last-seen time.
// GET /api/users
func (h *UserHandlers) ListUsers(c *gin.Context) {
	users, err := h.presence.ListUsers(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list users")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]UserResponse, 0, len(users))
	for _, u := range users {
		item := UserResponse{
			ID:       u.ID,
			Username: u.Username,
			Online:   u.Online,
		}
		if !u.LastSeen.IsZero() {
			item.LastSeen = u.LastSeen.Format(time.RFC3339)
		}
		response = append(response, item)
	}

	c.JSON(http.StatusOK, response)
}
