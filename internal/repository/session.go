package repository

import (
	"context"

	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
)

// SessionRepository keeps the current game of every session.
// Only the latest snapshot is stored.
type SessionRepository interface {
	Save(ctx context.Context, id string, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}
