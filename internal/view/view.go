// Package view turns game state into what a presentation layer draws.
// It is the only place where marks and outcomes become text.
package view

import "github.com/rocketscienceinc/tictactoe-web/internal/entity"

const (
	SymbolEmpty  = " "
	SymbolFirst  = "X"
	SymbolSecond = "O"
)

type Cell struct {
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Symbol string `json:"symbol"`
}

// Board is the render model of one game.
type Board struct {
	Rows     [entity.BoardSize][entity.BoardSize]Cell `json:"rows"`
	Turn     string                                   `json:"turn"`
	Status   string                                   `json:"status"`
	Message  string                                   `json:"message"`
	Finished bool                                     `json:"finished"`
}

func New(game entity.Game) Board {
	board := Board{
		Turn:     PlayerSymbol(game.Turn),
		Status:   string(game.Outcome.Status),
		Message:  Message(game.Outcome),
		Finished: game.IsFinished(),
	}

	for row := range board.Rows {
		for col := range board.Rows[row] {
			board.Rows[row][col] = Cell{
				Row:    row,
				Col:    col,
				Symbol: Symbol(game.Board[row][col]),
			}
		}
	}

	return board
}

func Symbol(mark entity.Mark) string {
	switch mark {
	case entity.MarkFirst:
		return SymbolFirst
	case entity.MarkSecond:
		return SymbolSecond
	default:
		return SymbolEmpty
	}
}

func PlayerSymbol(player entity.Player) string {
	return Symbol(player.Mark())
}

// Message - returns the status line, blank while the game goes on.
func Message(outcome entity.Outcome) string {
	switch outcome.Status {
	case entity.StatusWon:
		return PlayerSymbol(outcome.Winner) + " wins the game!"
	case entity.StatusDraw:
		return "Draw between " + SymbolFirst + "/" + SymbolSecond
	default:
		return ""
	}
}
