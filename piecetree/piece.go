package piecetree

import "fmt"

// BufferPosition addresses a byte within one text buffer as a 0-indexed
// line plus a byte column from that line's start. Pieces store their
// endpoints in this form so that per-line reads can be answered from the
// buffer's line start index without rescanning text.
type BufferPosition struct {
	Line   int
	Column int
}

// String returns a human-readable representation of the position.
func (p BufferPosition) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Column)
}

// Piece names a half-open slice [Start, End) of one text buffer. Pieces are
// immutable values; edits replace a node's piece rather than mutating it.
type Piece struct {
	BufferIndex int
	Start       BufferPosition
	End         BufferPosition

	// Length is the byte length of the slice.
	Length int

	// LineFeeds is the number of line terminators fully contained in the
	// slice. A piece ending between the \r and \n of a \r\n pair counts
	// the \r as its own terminator.
	LineFeeds int
}

// String returns a human-readable representation of the piece.
func (p Piece) String() string {
	return fmt.Sprintf("buf%d[%v..%v) len=%d lf=%d", p.BufferIndex, p.Start, p.End, p.Length, p.LineFeeds)
}
