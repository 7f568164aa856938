package piecetree

import "sync"

// nodePool recycles tree nodes across edits. Heavy edit sessions churn
// nodes quickly (every split allocates, every merge releases), so pooling
// keeps GC pressure down. The sentinel is never pooled.
var nodePool = sync.Pool{
	New: func() interface{} {
		return new(node)
	},
}

// newNode draws a node from the pool, fully reset and linked to the
// sentinel. New nodes start red; rbInsertRight/Left recolor as needed.
func (t *Tree) newNode(p Piece) *node {
	z := nodePool.Get().(*node)
	z.parent = t.sentinel
	z.left = t.sentinel
	z.right = t.sentinel
	z.color = red
	z.piece = p
	z.leftLen = 0
	z.leftLFs = 0
	return z
}

// freeNode detaches a removed node and returns it to the pool. The node
// must already be unlinked from the tree.
func (t *Tree) freeNode(z *node) {
	z.parent = nil
	z.left = nil
	z.right = nil
	z.piece = Piece{}
	z.leftLen = 0
	z.leftLFs = 0
	nodePool.Put(z)
}
