package game

import (
	"errors"
	"fmt"
)

// Sentinel errors for game operations. Use these with errors.Is().
var (
	// ErrIllegalMove indicates a move that violates chess rules or text
	// that names no move.
	ErrIllegalMove = errors.New("illegal move")

	// ErrGameOver indicates a move attempted after the outcome was decided.
	ErrGameOver = errors.New("game is over")

	// ErrBadRecord indicates a saved record that does not reproduce its
	// own snapshot.
	ErrBadRecord = errors.New("bad game record")
)

// ReplayError wraps a failure while replaying history with the ply and
// step that caused it.
type ReplayError struct {
	Err  error // The underlying error
	Ply  int   // Ply at which the step was tried
	Step Step  // The step that did not apply
}

// Error returns the message with the replay context.
func (e *ReplayError) Error() string {
	return fmt.Sprintf("ply %d, move %s: %v", e.Ply, e.Step, e.Err)
}

// Unwrap returns the underlying error for errors.Is() and errors.As().
func (e *ReplayError) Unwrap() error {
	return e.Err
}
