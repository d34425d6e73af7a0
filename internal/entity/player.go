package entity

// Player identifies whose turn it is. Turn order starts with PlayerFirst.
type Player uint8

const (
	PlayerFirst Player = iota + 1
	PlayerSecond
)

// Other - returns the opponent.
func (that Player) Other() Player {
	if that == PlayerFirst {
		return PlayerSecond
	}
	return PlayerFirst
}

func (that Player) IsValid() bool {
	return that == PlayerFirst || that == PlayerSecond
}

// Mark - returns the mark this player leaves on the board.
func (that Player) Mark() Mark {
	switch that {
	case PlayerFirst:
		return MarkFirst
	case PlayerSecond:
		return MarkSecond
	default:
		return MarkEmpty
	}
}

func (that Player) String() string {
	switch that {
	case PlayerFirst:
		return "first"
	case PlayerSecond:
		return "second"
	default:
		return "none"
	}
}
