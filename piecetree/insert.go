package piecetree

// Insert places text so its first byte lands at offset. Empty text is a
// no-op. The text is appended to the added buffer and spliced into the
// tree as a new piece, splitting an existing piece when the offset falls
// inside one. Seams that would leave a \r and \n counted as two
// terminators are repaired before the structure settles.
func (t *Tree) Insert(offset int, text string) error {
	if offset < 0 || offset > t.length {
		return ErrOffsetOutOfRange
	}
	if len(text) == 0 {
		return nil
	}
	if t.eolNormalized {
		for i := 0; i < len(text); i++ {
			if text[i] == charCR {
				// a \r can pair with a \n again; turn the CRLF guards back on
				t.eolNormalized = false
				break
			}
		}
	}

	if t.root == t.sentinel {
		t.rbInsertRight(nil, t.appendPieceText(text))
		t.recomputeTotals()
		return nil
	}

	x, rem := t.nodeAt(offset)
	switch {
	case rem == 0:
		// offset is the boundary before x; when the predecessor still owns
		// the tail of the added buffer, extend it in place
		if prev := t.prev(x); prev != t.sentinel &&
			prev.piece.BufferIndex == t.addedIdx &&
			prev.piece.End == t.lastAddedPos {
			t.appendToNode(prev, text)
		} else {
			t.insertBefore(x, text)
		}

	case rem == x.piece.Length:
		// only reachable at end of document
		if x.piece.BufferIndex == t.addedIdx && x.piece.End == t.lastAddedPos {
			t.appendToNode(x, text)
		} else {
			t.insertAfter(x, text)
		}

	default:
		t.insertInside(x, rem, text)
	}

	t.recomputeTotals()
	return nil
}

// insertBefore splices text as the in-order predecessor of x.
func (t *Tree) insertBefore(x *node, text string) {
	var nodesToDel []*node

	if t.shouldCheckCRLF() && endsWithCR(text) && t.nodeStartsWithLF(x) {
		// x's leading \n joins the new text's trailing \r
		p := x.piece
		newStart := BufferPosition{p.Start.Line + 1, 0}
		x.piece = Piece{
			BufferIndex: p.BufferIndex,
			Start:       newStart,
			End:         p.End,
			Length:      p.Length - 1,
			LineFeeds:   t.lineFeedCount(p.BufferIndex, newStart, p.End),
		}
		text += "\n"
		t.updateMetadataUpward(x, -1, -1)
		if x.piece.Length == 0 {
			nodesToDel = append(nodesToDel, x)
		}
	}

	newNode := t.rbInsertLeft(x, t.appendPieceText(text))
	t.validateCRLFWithPrevNode(newNode)
	t.deleteNodes(nodesToDel)
}

// insertAfter splices text as the in-order successor of x.
func (t *Tree) insertAfter(x *node, text string) {
	if t.adjustCarriageReturnFromNext(text, x) {
		text += "\n"
	}

	newNode := t.rbInsertRight(x, t.appendPieceText(text))
	t.validateCRLFWithPrevNode(newNode)
}

// insertInside splits x's piece at rem into left remainder, new text, and
// right remainder.
func (t *Tree) insertInside(x *node, rem int, text string) {
	var nodesToDel []*node

	p := x.piece
	insertPos := t.positionInBuffer(x, rem)
	right := Piece{
		BufferIndex: p.BufferIndex,
		Start:       insertPos,
		End:         p.End,
		Length:      t.offsetInBuffer(p.BufferIndex, p.End) - t.offsetInBuffer(p.BufferIndex, insertPos),
		LineFeeds:   t.lineFeedCount(p.BufferIndex, insertPos, p.End),
	}

	if t.shouldCheckCRLF() && endsWithCR(text) && t.byteInNode(x, rem) == charLF {
		// shift the split so the right remainder's \n joins the new text
		newStart := BufferPosition{right.Start.Line + 1, 0}
		right = Piece{
			BufferIndex: right.BufferIndex,
			Start:       newStart,
			End:         right.End,
			Length:      right.Length - 1,
			LineFeeds:   t.lineFeedCount(right.BufferIndex, newStart, right.End),
		}
		text += "\n"
	}

	if t.shouldCheckCRLF() && startsWithLF(text) && t.byteInNode(x, rem-1) == charCR {
		// the left remainder would end in a lone \r; move it into the text
		prevPos := t.positionInBuffer(x, rem-1)
		t.deleteNodeTail(x, prevPos)
		text = "\r" + text
		if x.piece.Length == 0 {
			nodesToDel = append(nodesToDel, x)
		}
	} else {
		t.deleteNodeTail(x, insertPos)
	}

	newPiece := t.appendPieceText(text)
	if right.Length > 0 {
		t.rbInsertRight(x, right)
	}
	t.rbInsertRight(x, newPiece)
	t.deleteNodes(nodesToDel)
}

// appendPieceText appends text to the added buffer (creating it on first
// use) and returns the piece describing it. When the buffer ends with a
// lone \r terminator and the text starts with \n, a spacer byte keeps the
// raw buffer from fusing them into one terminator that the incremental
// line start bookkeeping already counted apart; no piece ever references
// the spacer.
func (t *Tree) appendPieceText(text string) Piece {
	if t.addedIdx < 0 {
		t.buffers = append(t.buffers, &textBuffer{lineStarts: []int{0}})
		t.addedIdx = len(t.buffers) - 1
		t.lastAddedPos = BufferPosition{}
	}

	buf := t.buffers[t.addedIdx]
	startOffset := len(buf.data)
	starts := readLineStarts([]byte(text)).starts
	start := t.lastAddedPos

	if last := len(buf.lineStarts) - 1; buf.lineStarts[last] == startOffset &&
		startOffset != 0 && startsWithLF(text) && buf.data[startOffset-1] == charCR {
		t.lastAddedPos = BufferPosition{t.lastAddedPos.Line, t.lastAddedPos.Column + 1}
		start = t.lastAddedPos
		for i := range starts {
			starts[i] += startOffset + 1
		}
		buf.lineStarts = append(buf.lineStarts, starts[1:]...)
		buf.data = append(buf.data, '_')
		buf.data = append(buf.data, text...)
		startOffset++
	} else {
		for i := range starts {
			starts[i] += startOffset
		}
		buf.lineStarts = append(buf.lineStarts, starts[1:]...)
		buf.data = append(buf.data, text...)
	}

	endIndex := len(buf.lineStarts) - 1
	end := BufferPosition{endIndex, len(buf.data) - buf.lineStarts[endIndex]}
	p := Piece{
		BufferIndex: t.addedIdx,
		Start:       start,
		End:         end,
		Length:      len(buf.data) - startOffset,
		LineFeeds:   t.lineFeedCount(t.addedIdx, start, end),
	}
	t.lastAddedPos = end
	return p
}

// appendToNode extends x's piece with text appended directly to the added
// buffer tail. Precondition: x's piece ends at lastAddedPos.
func (t *Tree) appendToNode(x *node, text string) {
	if t.adjustCarriageReturnFromNext(text, x) {
		text += "\n"
	}

	hitCRLF := t.shouldCheckCRLF() && startsWithLF(text) && t.nodeEndsWithCR(x)

	buf := t.buffers[t.addedIdx]
	startOffset := len(buf.data)
	starts := readLineStarts([]byte(text)).starts
	for i := range starts {
		starts[i] += startOffset
	}

	if hitCRLF {
		// the buffer's trailing lone \r now pairs with the incoming \n;
		// drop its line start so the pair counts once
		prevStart := buf.lineStarts[len(buf.lineStarts)-2]
		buf.lineStarts = buf.lineStarts[:len(buf.lineStarts)-1]
		t.lastAddedPos = BufferPosition{t.lastAddedPos.Line - 1, startOffset - prevStart}
	}

	buf.lineStarts = append(buf.lineStarts, starts[1:]...)
	buf.data = append(buf.data, text...)

	endIndex := len(buf.lineStarts) - 1
	end := BufferPosition{endIndex, len(buf.data) - buf.lineStarts[endIndex]}

	p := x.piece
	oldLFs := p.LineFeeds
	newLFs := t.lineFeedCount(p.BufferIndex, p.Start, end)
	x.piece = Piece{
		BufferIndex: p.BufferIndex,
		Start:       p.Start,
		End:         end,
		Length:      p.Length + len(text),
		LineFeeds:   newLFs,
	}
	t.lastAddedPos = end
	t.updateMetadataUpward(x, len(text), newLFs-oldLFs)
}

// adjustCarriageReturnFromNext reports whether text ending in \r should
// absorb a \n from the node after x, removing that \n from its piece. The
// caller appends the \n to the text.
func (t *Tree) adjustCarriageReturnFromNext(text string, x *node) bool {
	if !t.shouldCheckCRLF() || !endsWithCR(text) {
		return false
	}

	next := t.next(x)
	if !t.nodeStartsWithLF(next) {
		return false
	}

	if next.piece.Length == 1 {
		t.rbDelete(next)
		return true
	}

	p := next.piece
	newStart := BufferPosition{p.Start.Line + 1, 0}
	next.piece = Piece{
		BufferIndex: p.BufferIndex,
		Start:       newStart,
		End:         p.End,
		Length:      p.Length - 1,
		LineFeeds:   t.lineFeedCount(p.BufferIndex, newStart, p.End),
	}
	t.updateMetadataUpward(next, -1, -1)
	return true
}

// validateCRLFWithPrevNode repairs a \r / \n split between x and its
// predecessor.
func (t *Tree) validateCRLFWithPrevNode(x *node) {
	if t.shouldCheckCRLF() && t.nodeStartsWithLF(x) {
		if prev := t.prev(x); t.nodeEndsWithCR(prev) {
			t.fixCRLF(prev, x)
		}
	}
}

// validateCRLFWithNextNode repairs a \r / \n split between x and its
// successor.
func (t *Tree) validateCRLFWithNextNode(x *node) {
	if t.shouldCheckCRLF() && t.nodeEndsWithCR(x) {
		if next := t.next(x); t.nodeStartsWithLF(next) {
			t.fixCRLF(x, next)
		}
	}
}

// fixCRLF merges a \r ending prev and a \n starting next into a single
// fresh \r\n piece between them, so the pair counts as one terminator.
func (t *Tree) fixCRLF(prev, next *node) {
	var nodesToDel []*node

	// retract the \r
	p := prev.piece
	starts := t.buffers[p.BufferIndex].lineStarts
	var newEnd BufferPosition
	if p.End.Column == 0 {
		newEnd = BufferPosition{p.End.Line - 1, starts[p.End.Line] - starts[p.End.Line-1] - 1}
	} else {
		newEnd = BufferPosition{p.End.Line, p.End.Column - 1}
	}
	prev.piece = Piece{
		BufferIndex: p.BufferIndex,
		Start:       p.Start,
		End:         newEnd,
		Length:      p.Length - 1,
		LineFeeds:   p.LineFeeds - 1,
	}
	t.updateMetadataUpward(prev, -1, -1)
	if prev.piece.Length == 0 {
		nodesToDel = append(nodesToDel, prev)
	}

	// drop the \n
	q := next.piece
	newStart := BufferPosition{q.Start.Line + 1, 0}
	next.piece = Piece{
		BufferIndex: q.BufferIndex,
		Start:       newStart,
		End:         q.End,
		Length:      q.Length - 1,
		LineFeeds:   t.lineFeedCount(q.BufferIndex, newStart, q.End),
	}
	t.updateMetadataUpward(next, -1, -1)
	if next.piece.Length == 0 {
		nodesToDel = append(nodesToDel, next)
	}

	t.rbInsertRight(prev, t.appendPieceText("\r\n"))
	t.deleteNodes(nodesToDel)
}

func (t *Tree) deleteNodes(nodes []*node) {
	for _, x := range nodes {
		t.rbDelete(x)
	}
}
