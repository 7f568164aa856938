package piecetree

import "strings"

// Tree is a piece-table document. It owns the chunk buffers produced at
// construction, the mutable added buffer, and every tree node. All offsets
// are byte offsets; lines are 0-indexed.
//
// A Tree is single-owner: reads are pure and may run concurrently on a
// quiescent tree, but writers need exclusive access.
type Tree struct {
	sentinel *node
	root     *node

	buffers  []*textBuffer
	addedIdx int // index of the mutable added buffer, -1 until first insert

	// end of the last text appended to the added buffer; the insert fast
	// path extends a piece in place only when it still ends here
	lastAddedPos BufferPosition

	length  int // cached total bytes
	lfCount int // cached total line terminators

	eol           LineEnding
	eolNormalized bool
}

// newTree builds a tree with one piece per non-empty chunk buffer, in
// receive order.
func newTree(buffers []*textBuffer, eol LineEnding, normalized bool) *Tree {
	s := &node{color: black}
	s.parent = s
	s.left = s
	s.right = s

	t := &Tree{
		sentinel:      s,
		root:          s,
		buffers:       buffers,
		addedIdx:      -1,
		eol:           eol,
		eolNormalized: normalized,
	}

	var last *node
	for i, buf := range buffers {
		if len(buf.data) == 0 {
			continue
		}
		lastLine := len(buf.lineStarts) - 1
		p := Piece{
			BufferIndex: i,
			Start:       BufferPosition{0, 0},
			End:         BufferPosition{lastLine, len(buf.data) - buf.lineStarts[lastLine]},
			Length:      len(buf.data),
			LineFeeds:   lastLine,
		}
		last = t.rbInsertRight(last, p)
	}

	t.recomputeTotals()
	return t
}

// New creates an empty tree with LF line endings.
func New() *Tree {
	t, _ := NewFromString("")
	return t
}

// NewFromString creates a tree from a single chunk without normalization.
func NewFromString(s string) (*Tree, error) {
	b := NewBuilder()
	if err := b.AcceptChunk(s); err != nil {
		return nil, err
	}
	if err := b.Finish(); err != nil {
		return nil, err
	}
	return b.Create(LineEndingLF, false, false)
}

// Len returns the total byte length of the document.
func (t *Tree) Len() int {
	return t.length
}

// LineCount returns the number of lines (terminators + 1).
func (t *Tree) LineCount() int {
	return t.lfCount + 1
}

// EOL returns the line ending chosen at construction. It is the target of
// normalization, not a promise about un-normalized content.
func (t *Tree) EOL() LineEnding {
	return t.eol
}

// recomputeTotals refreshes the cached document totals from the right
// spine. Called at the end of every mutation.
func (t *Tree) recomputeTotals() {
	length, lfs := 0, 0
	for x := t.root; x != t.sentinel; x = x.right {
		length += x.leftLen + x.piece.Length
		lfs += x.leftLFs + x.piece.LineFeeds
	}
	t.length = length
	t.lfCount = lfs
}

// shouldCheckCRLF reports whether edits must guard against splitting or
// double-counting \r\n pairs. Content normalized to LF contains none until an
// insert brings in a \r, which clears eolNormalized and restores the guards.
func (t *Tree) shouldCheckCRLF() bool {
	return !(t.eolNormalized && t.eol == LineEndingLF)
}

// offsetInBuffer converts a buffer position to an absolute byte offset in
// that buffer.
func (t *Tree) offsetInBuffer(bufferIndex int, pos BufferPosition) int {
	return t.buffers[bufferIndex].offset(pos)
}

// nodeAt locates the node containing the given document offset and the
// remainder within its piece. At a piece boundary the successor wins with
// remainder 0; only at end of document does it return the last node with
// remainder equal to the piece length.
func (t *Tree) nodeAt(offset int) (*node, int) {
	x := t.root
	for x != t.sentinel {
		if offset < x.leftLen {
			x = x.left
			continue
		}
		offset -= x.leftLen
		if offset < x.piece.Length || (offset == x.piece.Length && x.right == t.sentinel) {
			return x, offset
		}
		offset -= x.piece.Length
		x = x.right
	}
	return t.sentinel, 0
}

// positionInBuffer converts a byte remainder within x's piece to a
// position in the underlying buffer, by binary search over its line starts.
func (t *Tree) positionInBuffer(x *node, remainder int) BufferPosition {
	p := x.piece
	starts := t.buffers[p.BufferIndex].lineStarts
	offset := starts[p.Start.Line] + p.Start.Column + remainder

	lo, hi := p.Start.Line, p.End.Line
	mid, midStart := lo, 0
	for lo <= hi {
		mid = lo + (hi-lo)/2
		midStart = starts[mid]
		if mid == hi {
			break
		}
		midStop := starts[mid+1]
		if offset < midStart {
			hi = mid - 1
		} else if offset >= midStop {
			lo = mid + 1
		} else {
			break
		}
	}

	return BufferPosition{Line: mid, Column: offset - midStart}
}

// lineFeedCount counts the terminators fully contained in [start, end) of
// one buffer. A slice ending between the \r and \n of a \r\n pair owns the
// \r as a terminator of its own even though the buffer's line start index
// records the pair as one.
func (t *Tree) lineFeedCount(bufferIndex int, start, end BufferPosition) int {
	if end.Column == 0 {
		return end.Line - start.Line
	}

	buf := t.buffers[bufferIndex]
	if end.Line == len(buf.lineStarts)-1 {
		return end.Line - start.Line
	}

	nextStart := buf.lineStarts[end.Line+1]
	endOffset := buf.lineStarts[end.Line] + end.Column
	if nextStart > endOffset+1 {
		return end.Line - start.Line
	}
	if buf.data[endOffset-1] == charCR {
		return end.Line - start.Line + 1
	}
	return end.Line - start.Line
}

// accumulated returns the byte distance from the start of x's piece to the
// end of its index-th contained terminator (0-indexed); 0 when index < 0.
func (t *Tree) accumulated(x *node, index int) int {
	if index < 0 {
		return 0
	}
	p := x.piece
	starts := t.buffers[p.BufferIndex].lineStarts
	expected := p.Start.Line + index + 1
	if expected > p.End.Line {
		return starts[p.End.Line] + p.End.Column - starts[p.Start.Line] - p.Start.Column
	}
	return starts[expected] - starts[p.Start.Line] - p.Start.Column
}

// byteAt returns the byte at a valid document offset. Callers validate.
func (t *Tree) byteAt(offset int) byte {
	x, rem := t.nodeAt(offset)
	buf := t.buffers[x.piece.BufferIndex]
	return buf.data[buf.offset(x.piece.Start)+rem]
}

// byteInNode returns the byte at the given remainder within x's piece, or
// 0 when out of the piece's range.
func (t *Tree) byteInNode(x *node, remainder int) byte {
	if remainder < 0 || remainder >= x.piece.Length {
		return 0
	}
	buf := t.buffers[x.piece.BufferIndex]
	return buf.data[buf.offset(x.piece.Start)+remainder]
}

func (t *Tree) nodeStartsWithLF(x *node) bool {
	return x != t.sentinel && x.piece.Length > 0 && t.byteInNode(x, 0) == charLF
}

func (t *Tree) nodeEndsWithCR(x *node) bool {
	return x != t.sentinel && x.piece.Length > 0 && t.byteInNode(x, x.piece.Length-1) == charCR
}

// lineStartOffset returns the document offset of the start of line n.
// Precondition: 0 <= n < LineCount().
func (t *Tree) lineStartOffset(n int) int {
	x := t.root
	left := 0
	for x != t.sentinel {
		switch {
		case x.left != t.sentinel && x.leftLFs >= n:
			x = x.left
		case x.leftLFs+x.piece.LineFeeds >= n:
			return left + x.leftLen + t.accumulated(x, n-x.leftLFs-1)
		default:
			n -= x.leftLFs + x.piece.LineFeeds
			left += x.leftLen + x.piece.Length
			x = x.right
		}
	}
	return left
}

// OffsetAt converts a (line, column) position to an absolute offset. The
// column is clamped to the line's length (terminator excluded); the line
// must be valid.
func (t *Tree) OffsetAt(line, col int) (int, error) {
	if line < 0 || line >= t.LineCount() {
		return 0, ErrLineOutOfRange
	}
	if col < 0 {
		col = 0
	}

	start := t.lineStartOffset(line)
	if max := t.lineLength(line, start); col > max {
		col = max
	}
	return start + col, nil
}

// PositionAt converts an absolute offset to a (line, column) position,
// clamping the offset into [0, Len()].
func (t *Tree) PositionAt(offset int) Point {
	if offset < 0 {
		offset = 0
	}
	if offset > t.length {
		offset = t.length
	}

	original := offset
	x := t.root
	lfs := 0
	for x != t.sentinel {
		if x.leftLen != 0 && x.leftLen >= offset {
			x = x.left
			continue
		}
		if x.leftLen+x.piece.Length >= offset {
			index, column := t.indexOf(x, offset-x.leftLen)
			lfs += x.leftLFs + index
			if index == 0 {
				return Point{Line: lfs, Column: original - t.lineStartOffset(lfs)}
			}
			return Point{Line: lfs, Column: column}
		}
		offset -= x.leftLen + x.piece.Length
		lfs += x.leftLFs + x.piece.LineFeeds
		if x.right == t.sentinel {
			return Point{Line: lfs, Column: original - offset - t.lineStartOffset(lfs)}
		}
		x = x.right
	}

	return Point{}
}

// indexOf converts a byte remainder within x's piece to (terminators
// before it within the piece, column from the enclosing line start).
func (t *Tree) indexOf(x *node, remainder int) (int, int) {
	p := x.piece
	pos := t.positionInBuffer(x, remainder)
	lineCnt := pos.Line - p.Start.Line

	if t.offsetInBuffer(p.BufferIndex, p.End)-t.offsetInBuffer(p.BufferIndex, p.Start) == remainder {
		// piece end may sit between a \r and its \n, where the buffer's
		// line start index under-reports by one
		realLines := t.lineFeedCount(p.BufferIndex, p.Start, pos)
		if realLines != lineCnt {
			return realLines, 0
		}
	}

	return lineCnt, pos.Column
}

// ByteAt returns the byte at the given document offset.
func (t *Tree) ByteAt(offset int) (byte, error) {
	if offset < 0 || offset >= t.length {
		return 0, ErrOffsetOutOfRange
	}
	return t.byteAt(offset), nil
}

// ByteAtPosition returns the byte at the given (line, column) location.
func (t *Tree) ByteAtPosition(line, col int) (byte, error) {
	if line < 0 || line >= t.LineCount() {
		return 0, ErrLineOutOfRange
	}
	start := t.lineStartOffset(line)
	raw := t.rawLineLength(line, start)
	if col < 0 || col >= raw {
		return 0, ErrOffsetOutOfRange
	}
	return t.byteAt(start + col), nil
}

// rawLineLength returns line n's byte length including its terminator.
// start must be lineStartOffset(n).
func (t *Tree) rawLineLength(n, start int) int {
	if n == t.lfCount {
		return t.length - start
	}
	return t.lineStartOffset(n+1) - start
}

// lineLength returns line n's byte length excluding its terminator.
func (t *Tree) lineLength(n, start int) int {
	raw := t.rawLineLength(n, start)
	return raw - t.terminatorLen(start, raw)
}

// terminatorLen inspects the tail of a raw line and returns the byte
// length of its terminator (0, 1, or 2).
func (t *Tree) terminatorLen(start, rawLen int) int {
	if rawLen == 0 {
		return 0
	}
	switch t.byteAt(start + rawLen - 1) {
	case charLF:
		if rawLen >= 2 && t.byteAt(start+rawLen-2) == charCR {
			return 2
		}
		return 1
	case charCR:
		return 1
	}
	return 0
}

// LineLength returns the byte length of line n without its terminator.
func (t *Tree) LineLength(n int) (int, error) {
	if n < 0 || n >= t.LineCount() {
		return 0, ErrLineOutOfRange
	}
	return t.lineLength(n, t.lineStartOffset(n)), nil
}

// RawLineLength returns the byte length of line n with its terminator.
func (t *Tree) RawLineLength(n int) (int, error) {
	if n < 0 || n >= t.LineCount() {
		return 0, ErrLineOutOfRange
	}
	return t.rawLineLength(n, t.lineStartOffset(n)), nil
}

// RawLine returns line n including its terminator.
func (t *Tree) RawLine(n int) (string, error) {
	if n < 0 || n >= t.LineCount() {
		return "", ErrLineOutOfRange
	}
	return t.rawLine(n), nil
}

// Line returns line n with its terminator stripped. A trailing \r whose \n
// lives in the next piece is part of the terminator, never of the line.
func (t *Tree) Line(n int) (string, error) {
	if n < 0 || n >= t.LineCount() {
		return "", ErrLineOutOfRange
	}
	return trimTerminator(t.rawLine(n)), nil
}

// rawLine collects line n across pieces: descend to the node holding the
// line's start, then walk in-order until a terminator closes the line.
func (t *Tree) rawLine(n int) string {
	x := t.root
	var sb strings.Builder

	for x != t.sentinel {
		if x.left != t.sentinel && x.leftLFs >= n {
			x = x.left
			continue
		}
		if x.leftLFs+x.piece.LineFeeds > n {
			prev := t.accumulated(x, n-x.leftLFs-1)
			cur := t.accumulated(x, n-x.leftLFs)
			buf := t.buffers[x.piece.BufferIndex]
			start := buf.offset(x.piece.Start)
			return string(buf.data[start+prev : start+cur])
		}
		if x.leftLFs+x.piece.LineFeeds == n {
			// line starts in this piece's tail and continues beyond it
			prev := t.accumulated(x, n-x.leftLFs-1)
			buf := t.buffers[x.piece.BufferIndex]
			start := buf.offset(x.piece.Start)
			sb.Write(buf.data[start+prev : start+x.piece.Length])
			break
		}
		n -= x.leftLFs + x.piece.LineFeeds
		x = x.right
	}

	if x == t.sentinel {
		return sb.String()
	}

	for x = t.next(x); x != t.sentinel; x = t.next(x) {
		buf := t.buffers[x.piece.BufferIndex]
		start := buf.offset(x.piece.Start)
		if x.piece.LineFeeds > 0 {
			cur := t.accumulated(x, 0)
			sb.Write(buf.data[start : start+cur])
			return sb.String()
		}
		sb.Write(buf.data[start : start+x.piece.Length])
	}

	return sb.String()
}

// trimTerminator strips one trailing line terminator.
func trimTerminator(s string) string {
	if strings.HasSuffix(s, "\r\n") {
		return s[:len(s)-2]
	}
	if n := len(s); n > 0 && (s[n-1] == charLF || s[n-1] == charCR) {
		return s[:n-1]
	}
	return s
}

// Content returns the whole document, terminators intact.
func (t *Tree) Content() string {
	var sb strings.Builder
	sb.Grow(t.length)
	t.appendSubtree(t.root, &sb)
	return sb.String()
}

func (t *Tree) appendSubtree(x *node, sb *strings.Builder) {
	if x == t.sentinel {
		return
	}
	t.appendSubtree(x.left, sb)
	buf := t.buffers[x.piece.BufferIndex]
	start := buf.offset(x.piece.Start)
	sb.Write(buf.data[start : start+x.piece.Length])
	t.appendSubtree(x.right, sb)
}

// Lines returns every line of the document with terminators stripped.
func (t *Tree) Lines() []string {
	return splitLines(t.Content(), t.LineCount())
}

// splitLines splits on maximal \r\n | \r | \n matches.
func splitLines(s string, lineCount int) []string {
	lines := make([]string, 0, lineCount)
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case charCR:
			lines = append(lines, s[start:i])
			if i+1 < len(s) && s[i+1] == charLF {
				i++
			}
			start = i + 1
		case charLF:
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	return append(lines, s[start:])
}

// Slice returns the text in the byte range [start, end), clamped to the
// document bounds.
func (t *Tree) Slice(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > t.length {
		end = t.length
	}
	if start >= end {
		return ""
	}

	x, rem := t.nodeAt(start)
	remaining := end - start

	var sb strings.Builder
	sb.Grow(remaining)
	for x != t.sentinel && remaining > 0 {
		buf := t.buffers[x.piece.BufferIndex]
		off := buf.offset(x.piece.Start) + rem
		n := x.piece.Length - rem
		if n > remaining {
			n = remaining
		}
		sb.Write(buf.data[off : off+n])
		remaining -= n
		rem = 0
		x = t.next(x)
	}
	return sb.String()
}

// ForEach visits every piece in pre-order. The walk never observes the
// sentinel. Return false to stop early. The tree must not be mutated
// during iteration.
func (t *Tree) ForEach(fn func(Piece) bool) {
	t.preorder(t.root, fn)
}

func (t *Tree) preorder(x *node, fn func(Piece) bool) bool {
	if x == t.sentinel {
		return true
	}
	if !fn(x.piece) {
		return false
	}
	if !t.preorder(x.left, fn) {
		return false
	}
	return t.preorder(x.right, fn)
}

// Pieces returns the pieces in document order.
func (t *Tree) Pieces() []Piece {
	var ps []Piece
	for x := t.leftmostOrSentinel(); x != t.sentinel; x = t.next(x) {
		ps = append(ps, x.piece)
	}
	return ps
}

func (t *Tree) leftmostOrSentinel() *node {
	if t.root == t.sentinel {
		return t.sentinel
	}
	return t.leftmost(t.root)
}
