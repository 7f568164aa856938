package buffer

import (
	"sync/atomic"

	"github.com/dshills/piecetable/piecetree"
)

// Point represents a line and column position. Both are 0-indexed; Column
// is measured in bytes from the start of the line.
type Point = piecetree.Point

// LineEnding specifies the line ending style used for EOL handling.
type LineEnding = piecetree.LineEnding

// Line ending styles.
const (
	LineEndingLF   = piecetree.LineEndingLF
	LineEndingCRLF = piecetree.LineEndingCRLF
)

// RevisionID uniquely identifies a buffer revision. Each modification to
// the buffer creates a new revision.
type RevisionID uint64

// revisionCounter is used to generate unique revision IDs.
var revisionCounter uint64

// NewRevisionID generates a new unique revision ID.
// This is thread-safe using atomic operations.
func NewRevisionID() RevisionID {
	return RevisionID(atomic.AddUint64(&revisionCounter, 1))
}
