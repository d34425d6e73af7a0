package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
)

const BoardSize = 3

// Mark is the content of a single board cell.
type Mark uint8

const (
	MarkEmpty Mark = iota
	MarkFirst
	MarkSecond
)

type Status string

const (
	StatusOngoing Status = "ongoing"
	StatusWon     Status = "won"
	StatusDraw    Status = "draw"
)

// Cell addresses a board position, row-major, 0-based on both axes.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Validate - checks that the coordinates are on the board.
func (that Cell) Validate() error {
	if that.Row < 0 || that.Row >= BoardSize || that.Col < 0 || that.Col >= BoardSize {
		return fmt.Errorf("%w: row %d, col %d", apperror.ErrInvalidCell, that.Row, that.Col)
	}

	return nil
}

type Board [BoardSize][BoardSize]Mark

// At - returns the mark of a cell. The cell must be valid.
func (that *Board) At(cell Cell) Mark {
	return that[cell.Row][cell.Col]
}

// IsFull - reports whether no empty cell is left.
func (that *Board) IsFull() bool {
	for _, row := range that {
		for _, mark := range row {
			if mark == MarkEmpty {
				return false
			}
		}
	}

	return true
}

// Outcome holds the terminal status of a game. Winner is set only for StatusWon.
type Outcome struct {
	Status Status `json:"status"`
	Winner Player `json:"winner,omitempty"`
}

func (that Outcome) IsTerminal() bool {
	return that.Status == StatusWon || that.Status == StatusDraw
}

// Game is the whole game state: board, whose turn it is and the outcome.
type Game struct {
	Board   Board   `json:"board"`
	Turn    Player  `json:"turn"`
	Outcome Outcome `json:"outcome"`
}

// NewGame - returns the initial state: empty board, first player to move.
func NewGame() Game {
	return Game{
		Turn:    PlayerFirst,
		Outcome: Outcome{Status: StatusOngoing},
	}
}

func (that *Game) IsFinished() bool {
	return that.Outcome.IsTerminal()
}

// Validate - checks a snapshot that came from outside the engine, such as storage.
func (that *Game) Validate() error {
	if !that.Turn.IsValid() {
		return fmt.Errorf("%w: turn %d", apperror.ErrInvalidGame, that.Turn)
	}

	switch that.Outcome.Status {
	case StatusOngoing, StatusDraw:
	case StatusWon:
		if !that.Outcome.Winner.IsValid() {
			return fmt.Errorf("%w: winner %d", apperror.ErrInvalidGame, that.Outcome.Winner)
		}
	default:
		return fmt.Errorf("%w: status %q", apperror.ErrInvalidGame, that.Outcome.Status)
	}

	for _, row := range that.Board {
		for _, mark := range row {
			if mark > MarkSecond {
				return fmt.Errorf("%w: mark %d", apperror.ErrInvalidGame, mark)
			}
		}
	}

	return nil
}
