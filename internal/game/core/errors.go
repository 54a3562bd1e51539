package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDimensions = errors.New("invalid grid dimensions")
	ErrInvalidIndex      = errors.New("tile index out of bounds")
	ErrNotAdjacent       = errors.New("tiles are not adjacent")
	ErrObstacle          = errors.New("target tile is an obstacle")
	ErrNoArmy            = errors.New("no army on start tile")
	ErrInsufficientArmy  = errors.New("insufficient army to attack")
	ErrSelfMove          = errors.New("cannot move a single army onto own tile")
	ErrNotOwned          = errors.New("tile not owned by player")
	ErrGameOver          = errors.New("match is over")
	ErrInvalidPlayer     = errors.New("invalid player index")
)

// MoveError adds move context to a failed attack
type MoveError struct {
	Player     int
	Start, End int
	Err        error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("player %d: move %d -> %d: %v", e.Player, e.Start, e.End, e.Err)
}

func (e *MoveError) Unwrap() error { return e.Err }

// WrapMoveError wraps err with the move that produced it. A nil err stays nil.
func WrapMoveError(player, start, end int, err error) error {
	if err == nil {
		return nil
	}
	return &MoveError{Player: player, Start: start, End: end, Err: err}
}
