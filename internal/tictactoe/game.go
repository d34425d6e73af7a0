package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
)

// WinLines lists every row, then every column, then both diagonals.
var WinLines = [8][3]entity.Cell{
	{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}},
	{{Row: 1, Col: 0}, {Row: 1, Col: 1}, {Row: 1, Col: 2}},
	{{Row: 2, Col: 0}, {Row: 2, Col: 1}, {Row: 2, Col: 2}},
	{{Row: 0, Col: 0}, {Row: 1, Col: 0}, {Row: 2, Col: 0}},
	{{Row: 0, Col: 1}, {Row: 1, Col: 1}, {Row: 2, Col: 1}},
	{{Row: 0, Col: 2}, {Row: 1, Col: 2}, {Row: 2, Col: 2}},
	{{Row: 0, Col: 0}, {Row: 1, Col: 1}, {Row: 2, Col: 2}},
	{{Row: 0, Col: 2}, {Row: 1, Col: 1}, {Row: 2, Col: 0}},
}

// Apply - runs one intent against a game and returns the next state and
// whether the presentation layer has to redraw. On error the game is returned
// unchanged and no redraw is requested.
func Apply(game entity.Game, intent Intent) (entity.Game, bool, error) {
	switch intent.Kind {
	case IntentActivate:
		if err := game.Validate(); err != nil {
			return game, false, err
		}
		return activate(game, intent.Cell)
	case IntentReset:
		return entity.NewGame(), true, nil
	default:
		return game, false, fmt.Errorf("%w: %q", apperror.ErrUnknownIntent, intent.Kind)
	}
}

func activate(game entity.Game, cell entity.Cell) (entity.Game, bool, error) {
	if err := cell.Validate(); err != nil {
		return game, false, err
	}

	// A click on an occupied cell, or on any cell once the game is over,
	// starts a new game. This is the intended shortcut, not a rejected move.
	if game.Board.At(cell) != entity.MarkEmpty || game.IsFinished() {
		return entity.NewGame(), true, nil
	}

	mover := game.Turn
	game.Board[cell.Row][cell.Col] = mover.Mark()
	game.Outcome = CheckOutcome(game.Board, mover)
	game.Turn = mover.Other()

	return game, true, nil
}

// CheckOutcome - evaluates the board for the player who just moved.
// The opponent cannot complete a line on someone else's move, so only
// the mover is checked.
func CheckOutcome(board entity.Board, mover entity.Player) entity.Outcome {
	mark := mover.Mark()

	for _, line := range WinLines {
		if board.At(line[0]) == mark && board.At(line[1]) == mark && board.At(line[2]) == mark {
			return entity.Outcome{Status: entity.StatusWon, Winner: mover}
		}
	}

	if board.IsFull() {
		return entity.Outcome{Status: entity.StatusDraw}
	}

	return entity.Outcome{Status: entity.StatusOngoing}
}
