package mines

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds   = errors.New("cell out of bounds")
	ErrInvalidCell   = errors.New("invalid cell")
	ErrTooManyMines  = errors.New("too many mines")
	ErrGameOver      = errors.New("game is over")
	ErrMineAtStart   = errors.New("mine in starting cell")
	ErrInvalidParams = errors.New("invalid game params")
)

// CellError records a failed operation on a cell.
type CellError struct {
	Op  string
	Pos Position
	Err error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("%s %d:%d: %s", e.Op, e.Pos.Row, e.Pos.Col, e.Err)
}

func (e *CellError) Unwrap() error {
	return e.Err
}

func cellError(op string, row, col int, err error) error {
	return &CellError{Op: op, Pos: Position{row, col}, Err: err}
}

// AssertionError is the panic payload for violated internal preconditions.
type AssertionError struct {
	message string
}

// [AssertionError] implements [error]
func (e AssertionError) Error() string {
	return e.message
}
