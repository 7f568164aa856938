package piecetree

import "errors"

// Errors returned by tree and builder operations.
var (
	// ErrOffsetOutOfRange indicates an offset or length outside the valid
	// document range.
	ErrOffsetOutOfRange = errors.New("offset out of range")

	// ErrLineOutOfRange indicates a line number at or past the line count.
	ErrLineOutOfRange = errors.New("line out of range")

	// ErrInvalidPhase indicates a builder method was called out of order:
	// receiving after Finish, finishing twice, or creating before Finish.
	ErrInvalidPhase = errors.New("builder phase violation")
)
