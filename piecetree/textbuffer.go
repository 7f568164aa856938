package piecetree

// textBuffer is one chunk of document text plus the byte offsets of its
// line starts. lineStarts[0] is always 0; every other entry is the offset
// immediately after a line terminator (\r\n, \r, or \n — a \r\n pair counts
// as a single terminator).
//
// Buffers holding original content never change after construction. The
// added buffer created by Insert grows, but growth is append-only: once
// written, a byte never changes, which is what makes pieces and snapshots
// stable across later edits.
type textBuffer struct {
	data       []byte
	lineStarts []int
}

// offset converts a (line, column) position within this buffer to an
// absolute byte offset.
func (b *textBuffer) offset(pos BufferPosition) int {
	return b.lineStarts[pos.Line] + pos.Column
}

// lineStarts holds the result of scanning a chunk for line terminators.
type lineStarts struct {
	cr, lf, crlf int
	starts       []int
}

// readLineStarts scans data and records the offset after every line
// terminator, tallying lone \r, lone \n, and \r\n occurrences separately.
func readLineStarts(data []byte) lineStarts {
	r := lineStarts{starts: []int{0}}

	for i := 0; i < len(data); i++ {
		switch data[i] {
		case charCR:
			if i+1 < len(data) && data[i+1] == charLF {
				r.crlf++
				i++
			} else {
				r.cr++
			}
			r.starts = append(r.starts, i+1)
		case charLF:
			r.lf++
			r.starts = append(r.starts, i+1)
		}
	}

	return r
}

// newTextBuffer builds a buffer from a chunk, scanning its line starts.
func newTextBuffer(data []byte) (*textBuffer, lineStarts) {
	ls := readLineStarts(data)
	return &textBuffer{data: data, lineStarts: ls.starts}, ls
}
