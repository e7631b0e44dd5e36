package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/sochat/sochat-server/internal/auth"
	"github.com/sochat/sochat-server/internal/config"
	"github.com/sochat/sochat-server/internal/core"
	"github.com/sochat/sochat-server/internal/store"
)

// NewServer builds the HTTP server: identity endpoints, history REST
// surface, and the websocket upgrade route.
func NewServer(router *core.Router, presence *core.Presence, authService *auth.Service, st store.Store, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(LoggerMiddleware(logger), gin.Recovery())

	engine.GET("/health", healthHandler)

	apiHandlers := NewAPIHandlers(authService, logger)
	engine.POST("/api/register", apiHandlers.Register)
	engine.POST("/api/login", apiHandlers.Login)

	protected := engine.Group("/api", AuthMiddleware(authService, logger))
	userHandlers := NewUserHandlers(presence, logger)
	protected.GET("/users", userHandlers.ListUsers)

	messageHandlers := NewMessageHandlers(st, logger, cfg.Chat.HistoryLimit)
	protected.GET("/messages/room/:room", messageHandlers.RoomHistory)
	protected.GET("/messages/private/:userID", messageHandlers.PrivateHistory)

	engine.GET("/ws", gin.WrapH(NewWSHandler(router, authService, logger)))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           engine,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
