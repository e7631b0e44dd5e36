package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/sochat/sochat-server/internal/auth"
	"github.com/sochat/sochat-server/internal/config"
	"github.com/sochat/sochat-server/internal/core"
	"github.com/sochat/sochat-server/internal/store"
	"github.com/sochat/sochat-server/internal/store/memory"
	"github.com/sochat/sochat-server/internal/store/sqlite"
	transporthttp "github.com/sochat/sochat-server/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	store           store.Store
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := openStore(cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(cfg.JWT.Secret),
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		TTL:      cfg.JWT.TTL,
	}
	authService := auth.NewService(st, jwtConfig)

	registry := core.NewRegistry()
	presence := core.NewPresence(st, logger)
	router := core.NewRouter(registry, presence, st, logger, cfg.Chat.MaxMessageLen)

	server := transporthttp.NewServer(router, presence, authService, st, *cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		store:           st,
		log:             logger,
	}, nil
}

// openStore opens the durable store, retrying a configured number of times.
// When every attempt fails and the volatile fallback is allowed, the
// in-memory store is selected for the rest of the process lifetime; it is
// never promoted back to durable. Otherwise retry exhaustion is fatal.
func openStore(cfg config.DatabaseConfig, logger *zerolog.Logger) (store.Store, error) {
	var lastErr error
	for attempt := 1; attempt <= cfg.ConnectRetries; attempt++ {
		st, err := sqlite.New(cfg.Path)
		if err == nil {
			logger.Info().Str("db_path", cfg.Path).Msg("durable store opened")
			return st, nil
		}
		lastErr = err
		logger.Warn().Err(err).Int("attempt", attempt).Int("retries", cfg.ConnectRetries).
			Msg("failed to open durable store")
		if attempt < cfg.ConnectRetries {
			time.Sleep(cfg.RetryDelay)
		}
	}

	if cfg.AllowVolatileFallback {
		logger.Warn().Msg("falling back to volatile in-memory store; all state is lost on restart")
		return memory.New(), nil
	}
	return nil, fmt.Errorf("open durable store after %d attempts: %w", cfg.ConnectRetries, lastErr)
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
