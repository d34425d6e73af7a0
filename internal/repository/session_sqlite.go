package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
)

type sqliteSession struct {
	conn *sql.DB
}

// NewSQLiteSessionRepository - expects the sessions table to exist, see storage.SQLiteStorage.Init.
func NewSQLiteSessionRepository(conn *sql.DB) SessionRepository {
	return &sqliteSession{
		conn: conn,
	}
}

func (that *sqliteSession) Save(ctx context.Context, id string, game *entity.Game) error {
	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	query := `INSERT INTO sessions (id, game, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET game = excluded.game, updated_at = excluded.updated_at`

	if _, err = that.conn.ExecContext(ctx, query, id, string(gameJSON), time.Now().UTC().UnixMilli()); err != nil {
		return fmt.Errorf("can't save session: %w", err)
	}

	return nil
}

func (that *sqliteSession) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	query := `SELECT game FROM sessions WHERE id = ?`

	var gameJSON string

	err := that.conn.QueryRowContext(ctx, query, id).Scan(&gameJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't find session: %w", err)
	}

	var game entity.Game
	if err = json.Unmarshal([]byte(gameJSON), &game); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &game, nil
}

func (that *sqliteSession) DeleteByID(ctx context.Context, id string) error {
	result, err := that.conn.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("can't delete session: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("can't count deleted sessions: %w", err)
	}

	if affected == 0 {
		return apperror.ErrSessionNotFound
	}

	return nil
}
