package core

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sochat/sochat-server/internal/store"
)

// Presence tracks user online/offline state. Transitions are written through
// to the persistence backend best-effort: a store failure is logged and never
// blocks connection establishment or teardown. Under concurrent reconnects
// the last writer for a given user wins.
type Presence struct {
	store store.UserStore
	log   *zerolog.Logger

	mu     sync.RWMutex
	online map[int64]bool
}

// NewPresence constructs a presence tracker backed by the given store.
func NewPresence(userStore store.UserStore, logger *zerolog.Logger) *Presence {
	return &Presence{
		store:  userStore,
		log:    logger,
		online: make(map[int64]bool),
	}
}

// SetOnline marks the user online. Idempotent.
func (p *Presence) SetOnline(ctx context.Context, userID int64) {
	p.set(ctx, userID, true)
}

// SetOffline marks the user offline. Idempotent.
func (p *Presence) SetOffline(ctx context.Context, userID int64) {
	p.set(ctx, userID, false)
}

func (p *Presence) set(ctx context.Context, userID int64, online bool) {
	p.mu.Lock()
	p.online[userID] = online
	p.mu.Unlock()

	if err := p.store.SetUserOnline(ctx, userID, online); err != nil {
		p.log.Warn().Err(err).Int64("user_id", userID).Bool("online", online).
			Msg("failed to persist presence")
	}
}

// IsOnline reports whether the user is currently marked online.
func (p *Presence) IsOnline(userID int64) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.online[userID]
}

// ListUsers returns all known users with their presence fields.
func (p *Presence) ListUsers(ctx context.Context) ([]*store.User, error) {
	return p.store.ListUsers(ctx)
}
