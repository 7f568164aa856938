// Package buffer wraps a piece-table tree with editor-facing
// functionality: thread safety, buffer identity, revision tracking,
// edit application, and reader-based construction.
//
// All methods are safe for concurrent use; reads share an RLock while
// writes take exclusive access, matching the single-owner contract of the
// underlying tree.
package buffer
