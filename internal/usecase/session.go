package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
	"github.com/rocketscienceinc/tictactoe-web/internal/tictactoe"
)

type sessionRepo interface {
	Save(ctx context.Context, id string, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

// SessionUseCase gives every session its own game and applies intents to it
// one at a time.
type SessionUseCase struct {
	logger      *slog.Logger
	sessionRepo sessionRepo

	locksMutex sync.Mutex
	locks      map[string]*sessionLock
}

// sessionLock is shared by every caller working on the same session.
// It is dropped from the map once refs falls to zero.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewSessionUseCase(logger *slog.Logger, sessionRepo sessionRepo) *SessionUseCase {
	return &SessionUseCase{
		logger:      logger.With("component", "session"),
		sessionRepo: sessionRepo,
		locks:       make(map[string]*sessionLock),
	}
}

// GetOrCreateSession - returns the game of the session, starting a new one if none is stored.
func (that *SessionUseCase) GetOrCreateSession(ctx context.Context, sessionID string) (*entity.Game, error) {
	if sessionID == "" {
		return nil, apperror.ErrSessionIDRequired
	}

	unlock := that.lock(sessionID)
	defer unlock()

	return that.getOrCreate(ctx, sessionID)
}

// Dispatch - applies the intent to the session's game and stores the result.
// On a rejected intent the current game is returned together with the error.
func (that *SessionUseCase) Dispatch(ctx context.Context, sessionID string, intent tictactoe.Intent) (*entity.Game, bool, error) {
	log := that.logger.With("method", "Dispatch", "session", sessionID, "intent", intent.Kind)

	if sessionID == "" {
		return nil, false, apperror.ErrSessionIDRequired
	}

	unlock := that.lock(sessionID)
	defer unlock()

	game, err := that.getOrCreate(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}

	next, redraw, err := tictactoe.Apply(*game, intent)
	if err != nil {
		log.Warn("intent rejected", "error", err)
		return game, false, fmt.Errorf("failed to apply intent: %w", err)
	}

	if err = that.sessionRepo.Save(ctx, sessionID, &next); err != nil {
		return nil, false, fmt.Errorf("failed to save session: %w", err)
	}

	if next.IsFinished() && !game.IsFinished() {
		log.Info("game finished", "status", next.Outcome.Status, "winner", next.Outcome.Winner)
	}

	return &next, redraw, nil
}

// EndSession - forgets the session's game.
func (that *SessionUseCase) EndSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return apperror.ErrSessionIDRequired
	}

	unlock := that.lock(sessionID)
	defer unlock()

	if err := that.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	that.logger.Info("session ended", "session", sessionID)

	return nil
}

func (that *SessionUseCase) getOrCreate(ctx context.Context, sessionID string) (*entity.Game, error) {
	game, err := that.sessionRepo.GetByID(ctx, sessionID)
	switch {
	case err == nil:
		validErr := game.Validate()
		if validErr == nil {
			return game, nil
		}
		// a broken snapshot is replaced rather than played on
		that.logger.Warn("stored game is invalid, starting over", "session", sessionID, "error", validErr)
	case !errors.Is(err, apperror.ErrSessionNotFound):
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	newGame := entity.NewGame()
	if err = that.sessionRepo.Save(ctx, sessionID, &newGame); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	that.logger.Info("session created", "session", sessionID)

	return &newGame, nil
}

// lock - serialises work on one session. The returned func releases the lock
// and forgets it when nobody else is waiting.
func (that *SessionUseCase) lock(sessionID string) func() {
	that.locksMutex.Lock()
	sl, ok := that.locks[sessionID]
	if !ok {
		sl = &sessionLock{}
		that.locks[sessionID] = sl
	}
	sl.refs++
	that.locksMutex.Unlock()

	sl.mu.Lock()

	return func() {
		sl.mu.Unlock()

		that.locksMutex.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(that.locks, sessionID)
		}
		that.locksMutex.Unlock()
	}
}
