package repository

import (
	"context"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
)

// sweepInterval bounds how often Save scans for expired sessions.
const sweepInterval = time.Minute

type memoryEntry struct {
	game      entity.Game
	expiresAt time.Time
}

type memorySession struct {
	mu        sync.RWMutex
	games     map[string]memoryEntry
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

// NewMemorySessionRepository - keeps sessions in process. A session expires
// ttl after its last save, like the Redis key does; a zero ttl keeps them forever.
func NewMemorySessionRepository(ttl time.Duration) SessionRepository {
	return &memorySession{
		games: make(map[string]memoryEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (that *memorySession) Save(_ context.Context, id string, game *entity.Game) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	now := that.now()

	entry := memoryEntry{game: *game}
	if that.ttl > 0 {
		entry.expiresAt = now.Add(that.ttl)
	}
	that.games[id] = entry

	if that.ttl > 0 && now.Sub(that.lastSweep) >= sweepInterval {
		that.sweep(now)
	}

	return nil
}

func (that *memorySession) GetByID(_ context.Context, id string) (*entity.Game, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	entry, ok := that.games[id]
	if !ok || entry.expired(that.now()) {
		return nil, apperror.ErrSessionNotFound
	}

	game := entry.game

	return &game, nil
}

func (that *memorySession) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry, ok := that.games[id]
	if !ok {
		return apperror.ErrSessionNotFound
	}

	delete(that.games, id)

	if entry.expired(that.now()) {
		return apperror.ErrSessionNotFound
	}

	return nil
}

// sweep - drops expired sessions. The caller holds the write lock.
func (that *memorySession) sweep(now time.Time) {
	for id, entry := range that.games {
		if entry.expired(now) {
			delete(that.games, id)
		}
	}

	that.lastSweep = now
}

func (that memoryEntry) expired(now time.Time) bool {
	return !that.expiresAt.IsZero() && !now.Before(that.expiresAt)
}
