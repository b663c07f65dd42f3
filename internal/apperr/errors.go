package apperr

import "fmt"

// InvalidModeError reports an unknown run-directory allocation mode.
type InvalidModeError struct {
	Mode string
}

func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("invalid storage mode %q", e.Mode)
}

func NewInvalidMode(mode string) *InvalidModeError {
	return &InvalidModeError{Mode: mode}
}

// ShapeMismatchError reports parallel sequences whose lengths disagree.
// It is a contract violation on the caller's side, not a recoverable condition.
type ShapeMismatchError struct {
	What string
	Want int
	Got  int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%s: want %d, got %d", e.What, e.Want, e.Got)
}

func NewShapeMismatch(what string, want, got int) *ShapeMismatchError {
	return &ShapeMismatchError{What: what, Want: want, Got: got}
}
