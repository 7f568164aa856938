package buffer

import "github.com/dshills/piecetable/piecetree"

// Snapshot provides a read-only view of a buffer at a specific point in
// time. Later edits to the buffer never disturb it: snapshots lean on the
// append-only discipline of the underlying piece buffers.
type Snapshot struct {
	snap       *piecetree.Snapshot
	revisionID RevisionID
	eol        LineEnding
}

// Text returns the captured content.
func (s *Snapshot) Text() string {
	return s.snap.Text()
}

// Read implements io.Reader over the captured content.
func (s *Snapshot) Read(p []byte) (int, error) {
	return s.snap.Read(p)
}

// Len returns the byte length of the captured content.
func (s *Snapshot) Len() int {
	return s.snap.Len()
}

// RevisionID returns the buffer revision the snapshot was taken at.
func (s *Snapshot) RevisionID() RevisionID {
	return s.revisionID
}

// EOL returns the line ending style at capture time.
func (s *Snapshot) EOL() LineEnding {
	return s.eol
}
