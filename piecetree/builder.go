package piecetree

import "strings"

// LineEnding specifies a line ending style for EOL normalization.
type LineEnding uint8

const (
	LineEndingLF   LineEnding = iota // Unix: \n
	LineEndingCRLF                   // Windows: \r\n
)

// Sequence returns the actual line ending characters.
func (le LineEnding) Sequence() string {
	if le == LineEndingCRLF {
		return "\r\n"
	}
	return "\n"
}

// String returns the string representation of the line ending.
func (le LineEnding) String() string {
	if le == LineEndingCRLF {
		return "\\r\\n"
	}
	return "\\n"
}

// builderPhase tracks the one-way receive → finish → create life cycle.
type builderPhase uint8

const (
	phaseReceiving builderPhase = iota
	phaseBuilt
	phaseCreated
)

// Builder assembles a Tree from an ordered sequence of text chunks. Chunk
// boundaries are repaired as content arrives: a trailing \r is withheld in
// case its \n opens the next chunk, and a trailing incomplete UTF-8
// sequence is withheld until its continuation bytes arrive. Call
// AcceptChunk any number of times, then Finish once, then Create once.
type Builder struct {
	phase  builderPhase
	chunks []*textBuffer

	// withheld bytes: either a single \r or the lead of a split UTF-8
	// sequence, never both
	pending []byte

	cr, lf, crlf int
}

// NewBuilder creates a builder in the receiving phase.
func NewBuilder() *Builder {
	return &Builder{}
}

// AcceptChunk adds the next chunk of content. Returns ErrInvalidPhase once
// Finish has been called.
func (b *Builder) AcceptChunk(chunk string) error {
	if b.phase != phaseReceiving {
		return ErrInvalidPhase
	}
	if len(chunk) == 0 && len(b.pending) == 0 {
		return nil
	}

	data := make([]byte, 0, len(b.pending)+len(chunk))
	data = append(data, b.pending...)
	data = append(data, chunk...)
	b.pending = nil

	if n := len(data); n > 0 && data[n-1] == charCR {
		b.pending = []byte{charCR}
		data = data[:n-1]
	} else if tail := incompleteTailLen(data); tail > 0 {
		b.pending = append([]byte(nil), data[len(data)-tail:]...)
		data = data[:len(data)-tail]
	}

	if len(data) == 0 {
		return nil
	}

	buf, ls := newTextBuffer(data)
	b.chunks = append(b.chunks, buf)
	b.cr += ls.cr
	b.lf += ls.lf
	b.crlf += ls.crlf
	return nil
}

// Finish flushes any withheld bytes and seals the content. When nothing
// was received, a single empty chunk keeps the document well formed.
// Returns ErrInvalidPhase when called twice or after Create.
func (b *Builder) Finish() error {
	if b.phase != phaseReceiving {
		return ErrInvalidPhase
	}
	b.phase = phaseBuilt

	if len(b.pending) > 0 {
		pending := b.pending
		b.pending = nil
		if len(b.chunks) == 0 {
			buf, ls := newTextBuffer(pending)
			b.chunks = append(b.chunks, buf)
			b.cr += ls.cr
			b.lf += ls.lf
			b.crlf += ls.crlf
		} else {
			last := b.chunks[len(b.chunks)-1]
			last.data = append(last.data, pending...)
			if pending[0] == charCR {
				last.lineStarts = append(last.lineStarts, len(last.data))
				b.cr++
			}
		}
	}

	if len(b.chunks) == 0 {
		buf, _ := newTextBuffer(nil)
		b.chunks = append(b.chunks, buf)
	}
	return nil
}

// Create chooses the document's end-of-line style and instantiates the
// tree. With force set, or when the content has no terminators, defaultEOL
// wins; otherwise the majority rules: CRLF when carriage returns outnumber
// half of all terminators. With normalize set, every chunk is rewritten so
// all terminators match the chosen style. Returns ErrInvalidPhase before
// Finish or when called twice.
func (b *Builder) Create(defaultEOL LineEnding, normalize, force bool) (*Tree, error) {
	if b.phase != phaseBuilt {
		return nil, ErrInvalidPhase
	}
	b.phase = phaseCreated

	eol := defaultEOL
	totalCR := b.cr + b.crlf
	totalEOL := totalCR + b.lf
	if !force && totalEOL > 0 {
		if 2*totalCR > totalEOL {
			eol = LineEndingCRLF
		} else {
			eol = LineEndingLF
		}
	}

	if normalize {
		for i, chunk := range b.chunks {
			normalized := normalizeEOL(string(chunk.data), eol)
			buf, _ := newTextBuffer([]byte(normalized))
			b.chunks[i] = buf
		}
	}

	tree := newTree(b.chunks, eol, normalize)
	b.chunks = nil
	return tree, nil
}

// normalizeEOL replaces every maximal \r\n, \r, or \n match with the
// chosen line ending.
func normalizeEOL(s string, eol LineEnding) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	if eol == LineEndingCRLF {
		s = strings.ReplaceAll(s, "\n", "\r\n")
	}
	return s
}
