package buffer

import (
	"errors"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/piecetable/piecetree"
)

// Errors returned by buffer operations.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrRangeInvalid     = errors.New("invalid range")
	ErrEditsOverlap     = errors.New("edits overlap or are not in reverse order")
)

// Buffer wraps a piece tree with additional editor functionality.
// It provides the primary interface for text manipulation.
// All methods are thread-safe.
type Buffer struct {
	mu         sync.RWMutex
	id         uuid.UUID
	tree       *piecetree.Tree
	revisionID RevisionID
}

// New creates a new empty buffer.
func New(opts ...Option) *Buffer {
	b, err := build(nil, opts)
	if err != nil {
		// an empty build cannot fail; a failure here is a bug
		panic("buffer: " + err.Error())
	}
	return b
}

// NewFromString creates a buffer with initial content.
func NewFromString(s string, opts ...Option) (*Buffer, error) {
	return build([]string{s}, opts)
}

// NewFromReader creates a buffer from an io.Reader. Content is fed to the
// tree builder in fixed-size blocks; terminators and multi-byte characters
// split across block boundaries are repaired as they arrive.
func NewFromReader(r io.Reader, opts ...Option) (*Buffer, error) {
	cfg := defaultConfig(opts)
	tb := piecetree.NewBuilder()

	buf := make([]byte, 64*1024) // 64KB read buffer
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if aerr := tb.AcceptChunk(string(buf[:n])); aerr != nil {
				return nil, aerr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	return finish(tb, cfg)
}

func defaultConfig(opts []Option) config {
	cfg := config{defaultEOL: LineEndingLF}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func build(chunks []string, opts []Option) (*Buffer, error) {
	cfg := defaultConfig(opts)
	tb := piecetree.NewBuilder()
	for _, chunk := range chunks {
		if err := tb.AcceptChunk(chunk); err != nil {
			return nil, err
		}
	}
	return finish(tb, cfg)
}

func finish(tb *piecetree.Builder, cfg config) (*Buffer, error) {
	if err := tb.Finish(); err != nil {
		return nil, err
	}
	tree, err := tb.Create(cfg.defaultEOL, cfg.normalize, cfg.force)
	if err != nil {
		return nil, err
	}
	return &Buffer{
		id:         uuid.New(),
		tree:       tree,
		revisionID: NewRevisionID(),
	}, nil
}

// Read Operations

// ID returns the buffer's stable identity.
func (b *Buffer) ID() uuid.UUID {
	return b.id
}

// Text returns the full buffer content as a string.
// For large buffers, prefer using TextRange or a snapshot.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tree.Content()
}

// TextRange returns text in the given byte range, clamped to the buffer.
func (b *Buffer) TextRange(start, end int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tree.Slice(start, end)
}

// Len returns the total byte length of the buffer.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tree.Len()
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tree.LineCount()
}

// LineText returns the text of a specific line (without terminator).
func (b *Buffer) LineText(line int) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tree.Line(line)
}

// RawLineText returns the text of a specific line including its terminator.
func (b *Buffer) RawLineText(line int) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tree.RawLine(line)
}

// Lines returns every line of the buffer with terminators stripped.
func (b *Buffer) Lines() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tree.Lines()
}

// LineLen returns the length of a specific line in bytes (without
// terminator).
func (b *Buffer) LineLen(line int) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tree.LineLength(line)
}

// ByteAt returns the byte at the given offset.
func (b *Buffer) ByteAt(offset int) (byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tree.ByteAt(offset)
}

// EOL returns the buffer's line ending style chosen at construction.
func (b *Buffer) EOL() LineEnding {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tree.EOL()
}

// IsEmpty returns true if the buffer is empty.
func (b *Buffer) IsEmpty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tree.Len() == 0
}

// Coordinate Conversion

// OffsetToPoint converts a byte offset to line/column, clamping the offset
// into the buffer.
func (b *Buffer) OffsetToPoint(offset int) Point {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tree.PositionAt(offset)
}

// PointToOffset converts line/column to a byte offset. The column is
// clamped to the line length.
func (b *Buffer) PointToOffset(point Point) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tree.OffsetAt(point.Line, point.Column)
}

// Write Operations

// Insert inserts text at the given offset.
// Returns the end position of the inserted text.
func (b *Buffer) Insert(offset int, text string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.tree.Insert(offset, text); err != nil {
		return 0, ErrOffsetOutOfRange
	}
	b.revisionID = NewRevisionID()
	return offset + len(text), nil
}

// Delete removes text in the given range.
func (b *Buffer) Delete(start, end int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if start < 0 || start > end || end > b.tree.Len() {
		return ErrRangeInvalid
	}
	if err := b.tree.Delete(start, end-start); err != nil {
		return ErrRangeInvalid
	}
	b.revisionID = NewRevisionID()
	return nil
}

// Replace replaces text in the given range with new text.
// Returns the end position of the replacement text.
func (b *Buffer) Replace(start, end int, text string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	newEnd, err := b.replaceLocked(start, end, text)
	if err != nil {
		return 0, err
	}
	b.revisionID = NewRevisionID()
	return newEnd, nil
}

// replaceLocked performs a delete+insert pair under the caller's lock.
func (b *Buffer) replaceLocked(start, end int, text string) (int, error) {
	if start < 0 || start > end || end > b.tree.Len() {
		return 0, ErrRangeInvalid
	}
	if end > start {
		if err := b.tree.Delete(start, end-start); err != nil {
			return 0, ErrRangeInvalid
		}
	}
	if len(text) > 0 {
		if err := b.tree.Insert(start, text); err != nil {
			return 0, ErrOffsetOutOfRange
		}
	}
	return start + len(text), nil
}

// ApplyEdit applies a single edit to the buffer.
func (b *Buffer) ApplyEdit(edit Edit) (EditResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	r := edit.Range
	if r.Start < 0 || r.Start > r.End || r.End > b.tree.Len() {
		return EditResult{}, ErrRangeInvalid
	}

	oldText := b.tree.Slice(r.Start, r.End)
	newEnd, err := b.replaceLocked(r.Start, r.End, edit.NewText)
	if err != nil {
		return EditResult{}, err
	}
	b.revisionID = NewRevisionID()

	return EditResult{
		OldRange: r,
		NewRange: Range{Start: r.Start, End: newEnd},
		OldText:  oldText,
		Delta:    len(edit.NewText) - r.Len(),
	}, nil
}

// ApplyEdits applies multiple edits atomically.
// Edits must be in reverse order (highest offset first) to maintain
// validity.
func (b *Buffer) ApplyEdits(edits []Edit) error {
	if len(edits) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// Validate edits are in reverse order and non-overlapping
	for i := 1; i < len(edits); i++ {
		if edits[i].Range.End > edits[i-1].Range.Start {
			return ErrEditsOverlap
		}
	}

	// Validate all ranges
	total := b.tree.Len()
	for _, edit := range edits {
		if edit.Range.Start < 0 || edit.Range.Start > edit.Range.End || edit.Range.End > total {
			return ErrRangeInvalid
		}
	}

	// Apply edits in reverse order
	for _, edit := range edits {
		if _, err := b.replaceLocked(edit.Range.Start, edit.Range.End, edit.NewText); err != nil {
			return err
		}
	}

	b.revisionID = NewRevisionID()
	return nil
}

// Buffer State

// RevisionID returns the current revision ID.
func (b *Buffer) RevisionID() RevisionID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revisionID
}

// Snapshot returns a read-only snapshot of the current buffer state.
// Safe for concurrent access from other goroutines as long as the buffer
// itself outlives it.
func (b *Buffer) Snapshot() *Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return &Snapshot{
		snap:       b.tree.Snapshot(),
		revisionID: b.revisionID,
		eol:        b.tree.EOL(),
	}
}
