package tictactoe

import "github.com/rocketscienceinc/tictactoe-web/internal/entity"

// Engine owns one game and applies intents to it one at a time.
// It is not safe for concurrent use.
type Engine struct {
	game entity.Game
}

func NewEngine() *Engine {
	return &Engine{game: entity.NewGame()}
}

// Dispatch - applies the intent and reports whether a redraw is needed.
func (that *Engine) Dispatch(intent Intent) (bool, error) {
	next, redraw, err := Apply(that.game, intent)
	if err != nil {
		return false, err
	}

	that.game = next

	return redraw, nil
}

// Activate - handles a click on the cell at row, col.
func (that *Engine) Activate(row, col int) (bool, error) {
	return that.Dispatch(Activate(row, col))
}

// Reset - restores the initial state. Always needs a redraw.
func (that *Engine) Reset() bool {
	that.game = entity.NewGame()
	return true
}

// State - returns a snapshot of the current game.
func (that *Engine) State() entity.Game {
	return that.game
}
