// Package piecetree provides a piece-table text buffer indexed by a
// red-black tree for efficient text storage and manipulation.
//
// The document is represented as a sequence of pieces, each naming a slice
// of an immutable text buffer. Original content lives in buffers produced
// at construction time; inserted text is appended to a single mutable
// "added" buffer. A red-black tree orders the pieces by document position,
// and every node carries the total byte length and line terminator count of
// its left subtree, so both offset-based and line-based lookups descend the
// tree in O(log n).
//
// Key features:
//   - O(log n) insertion, deletion, and random access by offset or (line, column)
//   - Per-line reads without materializing the whole document
//   - CRLF-aware line counting: \r\n, \r, and \n are each one terminator,
//     and a \r\n pair is never split by an edit
//   - Chunked construction with end-of-line detection and normalization
//   - Point-in-time snapshots backed by the immutability of piece buffers
//
// Basic usage:
//
//	t, _ := piecetree.NewFromString("hello world")
//	_ = t.Insert(5, ",")            // "hello, world"
//	_ = t.Delete(0, 7)              // "world"
//	text := t.Content()             // "world"
//
// A Tree is a single-owner structure: concurrent readers of a quiescent
// tree are safe, but any mutation requires exclusive access. The buffer
// package layers locking, revisions, and edit plumbing on top.
package piecetree
