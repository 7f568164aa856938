package piecetree

// Red-black rebalancing with aggregate maintenance. The invariant enforced
// here: every rotation recomputes the aggregates of exactly the two rotated
// nodes, and every structural change propagates deltas to the ancestors
// whose left subtree contains the change.

// rotateLeft rotates x with its right child. The rotated child absorbs x's
// span into its left aggregates; no other node's aggregates change.
func (t *Tree) rotateLeft(x *node) {
	y := x.right

	y.leftLen += x.leftLen + x.piece.Length
	y.leftLFs += x.leftLFs + x.piece.LineFeeds

	x.right = y.left
	if y.left != t.sentinel {
		y.left.parent = x
	}
	y.parent = x.parent
	switch {
	case x.parent == t.sentinel:
		t.root = y
	case x == x.parent.left:
		x.parent.left = y
	default:
		x.parent.right = y
	}
	y.left = x
	x.parent = y
}

// rotateRight rotates y with its left child.
func (t *Tree) rotateRight(y *node) {
	x := y.left

	y.left = x.right
	if x.right != t.sentinel {
		x.right.parent = y
	}
	x.parent = y.parent

	y.leftLen -= x.leftLen + x.piece.Length
	y.leftLFs -= x.leftLFs + x.piece.LineFeeds

	switch {
	case y.parent == t.sentinel:
		t.root = x
	case y == y.parent.right:
		y.parent.right = x
	default:
		y.parent.left = x
	}
	x.right = y
	y.parent = x
}

// updateMetadataUpward adds delta/lfDelta to the aggregates of every
// ancestor whose left subtree contains x.
func (t *Tree) updateMetadataUpward(x *node, delta, lfDelta int) {
	for x != t.root && x != t.sentinel {
		if x.parent.left == x {
			x.parent.leftLen += delta
			x.parent.leftLFs += lfDelta
		}
		x = x.parent
	}
}

// recomputeMetadataUpward repairs aggregates after x's subtree changed
// shape: it climbs to the first ancestor whose left subtree was affected,
// recomputes that ancestor exactly, then pushes the delta to the root.
func (t *Tree) recomputeMetadataUpward(x *node) {
	if x == t.root {
		return
	}
	for x != t.root && x == x.parent.right {
		x = x.parent
	}
	if x == t.root {
		return
	}
	x = x.parent

	delta := t.subtreeLen(x.left) - x.leftLen
	lfDelta := t.subtreeLFs(x.left) - x.leftLFs
	x.leftLen += delta
	x.leftLFs += lfDelta

	for x != t.root && (delta != 0 || lfDelta != 0) {
		if x.parent.left == x {
			x.parent.leftLen += delta
			x.parent.leftLFs += lfDelta
		}
		x = x.parent
	}
}

// rbInsertRight splices a new node carrying p as the in-order successor of
// x (or as the root when the tree is empty) and rebalances.
func (t *Tree) rbInsertRight(x *node, p Piece) *node {
	z := t.newNode(p)

	switch {
	case t.root == t.sentinel:
		t.root = z
		z.color = black
	case x.right == t.sentinel:
		x.right = z
		z.parent = x
	default:
		succ := t.leftmost(x.right)
		succ.left = z
		z.parent = succ
	}

	t.fixInsert(z)
	return z
}

// rbInsertLeft splices a new node carrying p as the in-order predecessor of
// x (or as the root when the tree is empty) and rebalances.
func (t *Tree) rbInsertLeft(x *node, p Piece) *node {
	z := t.newNode(p)

	switch {
	case t.root == t.sentinel:
		t.root = z
		z.color = black
	case x.left == t.sentinel:
		x.left = z
		z.parent = x
	default:
		pred := t.rightmost(x.left)
		pred.right = z
		z.parent = pred
	}

	t.fixInsert(z)
	return z
}

func (t *Tree) fixInsert(x *node) {
	t.recomputeMetadataUpward(x)

	for x != t.root && x.parent.color == red {
		if x.parent == x.parent.parent.left {
			y := x.parent.parent.right
			if y.color == red {
				x.parent.color = black
				y.color = black
				x.parent.parent.color = red
				x = x.parent.parent
			} else {
				if x == x.parent.right {
					x = x.parent
					t.rotateLeft(x)
				}
				x.parent.color = black
				x.parent.parent.color = red
				t.rotateRight(x.parent.parent)
			}
		} else {
			y := x.parent.parent.left
			if y.color == red {
				x.parent.color = black
				y.color = black
				x.parent.parent.color = red
				x = x.parent.parent
			} else {
				if x == x.parent.left {
					x = x.parent
					t.rotateRight(x)
				}
				x.parent.color = black
				x.parent.parent.color = red
				t.rotateLeft(x.parent.parent)
			}
		}
	}

	t.root.color = black
}

// rbDelete unlinks z, transplanting its successor when both children exist,
// repairs aggregates along the affected paths, and rebalances. The removed
// node is returned to the pool.
func (t *Tree) rbDelete(z *node) {
	var x, y *node

	switch {
	case z.left == t.sentinel:
		y = z
		x = y.right
	case z.right == t.sentinel:
		y = z
		x = y.left
	default:
		y = t.leftmost(z.right)
		x = y.right
	}

	if y == t.root {
		t.root = x
		x.color = black
		t.freeNode(z)
		t.resetSentinel()
		t.root.parent = t.sentinel
		return
	}

	yWasRed := y.color == red

	if y == y.parent.left {
		y.parent.left = x
	} else {
		y.parent.right = x
	}

	if y == z {
		x.parent = y.parent
		t.recomputeMetadataUpward(x)
	} else {
		if y.parent == z {
			x.parent = y
		} else {
			x.parent = y.parent
		}

		// x's ancestry changes before y moves into z's place, so repair
		// the aggregates on its path first.
		t.recomputeMetadataUpward(x)

		y.left = z.left
		y.right = z.right
		y.parent = z.parent
		y.color = z.color

		if z == t.root {
			t.root = y
		} else if z == z.parent.left {
			z.parent.left = y
		} else {
			z.parent.right = y
		}

		if y.left != t.sentinel {
			y.left.parent = y
		}
		if y.right != t.sentinel {
			y.right.parent = y
		}

		y.leftLen = z.leftLen
		y.leftLFs = z.leftLFs
		t.recomputeMetadataUpward(y)
	}

	t.freeNode(z)

	if x.parent.left == x {
		newLen := t.subtreeLen(x)
		newLFs := t.subtreeLFs(x)
		if newLen != x.parent.leftLen || newLFs != x.parent.leftLFs {
			delta := newLen - x.parent.leftLen
			lfDelta := newLFs - x.parent.leftLFs
			x.parent.leftLen = newLen
			x.parent.leftLFs = newLFs
			t.updateMetadataUpward(x.parent, delta, lfDelta)
		}
	}

	t.recomputeMetadataUpward(x.parent)

	if yWasRed {
		t.resetSentinel()
		return
	}

	t.fixDelete(x)
	t.resetSentinel()
}

func (t *Tree) fixDelete(x *node) {
	for x != t.root && x.color == black {
		if x == x.parent.left {
			w := x.parent.right
			if w.color == red {
				w.color = black
				x.parent.color = red
				t.rotateLeft(x.parent)
				w = x.parent.right
			}
			if w.left.color == black && w.right.color == black {
				w.color = red
				x = x.parent
			} else {
				if w.right.color == black {
					w.left.color = black
					w.color = red
					t.rotateRight(w)
					w = x.parent.right
				}
				w.color = x.parent.color
				x.parent.color = black
				w.right.color = black
				t.rotateLeft(x.parent)
				x = t.root
			}
		} else {
			w := x.parent.left
			if w.color == red {
				w.color = black
				x.parent.color = red
				t.rotateRight(x.parent)
				w = x.parent.left
			}
			if w.right.color == black && w.left.color == black {
				w.color = red
				x = x.parent
			} else {
				if w.left.color == black {
					w.right.color = black
					w.color = red
					t.rotateLeft(w)
					w = x.parent.left
				}
				w.color = x.parent.color
				x.parent.color = black
				w.left.color = black
				t.rotateRight(x.parent)
				x = t.root
			}
		}
	}
	x.color = black
}

// resetSentinel clears any parent link the delete path wrote through the
// sentinel.
func (t *Tree) resetSentinel() {
	t.sentinel.parent = t.sentinel
}
