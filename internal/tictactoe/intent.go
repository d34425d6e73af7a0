package tictactoe

import "github.com/rocketscienceinc/tictactoe-web/internal/entity"

type IntentKind string

const (
	IntentActivate IntentKind = "activate"
	IntentReset    IntentKind = "reset"
)

// Intent is a single user action delivered by a presentation layer.
type Intent struct {
	Kind IntentKind  `json:"kind"`
	Cell entity.Cell `json:"cell"`
}

// Activate - intent for a click on the cell at row, col.
func Activate(row, col int) Intent {
	return Intent{Kind: IntentActivate, Cell: entity.Cell{Row: row, Col: col}}
}

// Reset - intent for the reset control.
func Reset() Intent {
	return Intent{Kind: IntentReset}
}
