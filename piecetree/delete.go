package piecetree

// Delete removes length bytes starting at offset. Zero length is a no-op.
// Pieces at the boundaries are trimmed, pieces wholly inside the range are
// removed, and a \r\n pair left straddling the seam is merged back into a
// single terminator.
func (t *Tree) Delete(offset, length int) error {
	if offset < 0 || length < 0 || offset+length > t.length {
		return ErrOffsetOutOfRange
	}
	if length == 0 {
		return nil
	}

	startNode, startRem := t.nodeAt(offset)
	endNode, endRem := t.nodeAt(offset + length)

	if startNode == endNode {
		t.deleteWithinNode(startNode, startRem, endRem, length)
		t.recomputeTotals()
		return nil
	}

	var nodesToDel []*node

	startPos := t.positionInBuffer(startNode, startRem)
	t.deleteNodeTail(startNode, startPos)
	if startNode.piece.Length == 0 {
		nodesToDel = append(nodesToDel, startNode)
	}

	endPos := t.positionInBuffer(endNode, endRem)
	t.deleteNodeHead(endNode, endPos)
	if endNode.piece.Length == 0 {
		nodesToDel = append(nodesToDel, endNode)
	}

	for x := t.next(startNode); x != t.sentinel && x != endNode; x = t.next(x) {
		nodesToDel = append(nodesToDel, x)
	}

	prev := startNode
	if startNode.piece.Length == 0 {
		prev = t.prev(startNode)
	}
	t.deleteNodes(nodesToDel)
	t.validateCRLFWithNextNode(prev)
	t.recomputeTotals()
	return nil
}

// deleteWithinNode handles a deletion contained in a single piece.
func (t *Tree) deleteWithinNode(x *node, startRem, endRem, length int) {
	startPos := t.positionInBuffer(x, startRem)
	endPos := t.positionInBuffer(x, endRem)

	if startRem == 0 {
		if length == x.piece.Length {
			next := t.next(x)
			t.rbDelete(x)
			t.validateCRLFWithPrevNode(next)
			return
		}
		t.deleteNodeHead(x, endPos)
		t.validateCRLFWithPrevNode(x)
		return
	}

	if startRem+length == x.piece.Length {
		t.deleteNodeTail(x, startPos)
		t.validateCRLFWithNextNode(x)
		return
	}

	t.shrinkNode(x, startPos, endPos)
}

// deleteNodeTail retracts x's piece end to pos.
func (t *Tree) deleteNodeTail(x *node, pos BufferPosition) {
	p := x.piece
	oldLFs := p.LineFeeds
	sizeDelta := t.offsetInBuffer(p.BufferIndex, pos) - t.offsetInBuffer(p.BufferIndex, p.End)
	newLFs := t.lineFeedCount(p.BufferIndex, p.Start, pos)

	x.piece = Piece{
		BufferIndex: p.BufferIndex,
		Start:       p.Start,
		End:         pos,
		Length:      p.Length + sizeDelta,
		LineFeeds:   newLFs,
	}
	t.updateMetadataUpward(x, sizeDelta, newLFs-oldLFs)
}

// deleteNodeHead advances x's piece start to pos.
func (t *Tree) deleteNodeHead(x *node, pos BufferPosition) {
	p := x.piece
	oldLFs := p.LineFeeds
	sizeDelta := t.offsetInBuffer(p.BufferIndex, p.Start) - t.offsetInBuffer(p.BufferIndex, pos)
	newLFs := t.lineFeedCount(p.BufferIndex, pos, p.End)

	x.piece = Piece{
		BufferIndex: p.BufferIndex,
		Start:       pos,
		End:         p.End,
		Length:      p.Length + sizeDelta,
		LineFeeds:   newLFs,
	}
	t.updateMetadataUpward(x, sizeDelta, newLFs-oldLFs)
}

// shrinkNode cuts [start, end) out of the middle of x's piece: x keeps the
// prefix and a new node carries the suffix.
func (t *Tree) shrinkNode(x *node, start, end BufferPosition) {
	p := x.piece
	oldEnd := p.End
	oldLength := p.Length
	oldLFs := p.LineFeeds

	newLFs := t.lineFeedCount(p.BufferIndex, p.Start, start)
	newLength := t.offsetInBuffer(p.BufferIndex, start) - t.offsetInBuffer(p.BufferIndex, p.Start)
	x.piece = Piece{
		BufferIndex: p.BufferIndex,
		Start:       p.Start,
		End:         start,
		Length:      newLength,
		LineFeeds:   newLFs,
	}
	t.updateMetadataUpward(x, newLength-oldLength, newLFs-oldLFs)

	suffix := Piece{
		BufferIndex: p.BufferIndex,
		Start:       end,
		End:         oldEnd,
		Length:      t.offsetInBuffer(p.BufferIndex, oldEnd) - t.offsetInBuffer(p.BufferIndex, end),
		LineFeeds:   t.lineFeedCount(p.BufferIndex, end, oldEnd),
	}
	newNode := t.rbInsertRight(x, suffix)
	t.validateCRLFWithPrevNode(newNode)
}
