package piecetree

import (
	"strings"
	"testing"
)

// mustTree builds a tree from chunks with the given EOL handling, failing
// the test on any builder error.
func mustTree(t *testing.T, chunks []string, eol LineEnding, normalize, force bool) *Tree {
	t.Helper()
	b := NewBuilder()
	for _, c := range chunks {
		if err := b.AcceptChunk(c); err != nil {
			t.Fatalf("AcceptChunk(%q): %v", c, err)
		}
	}
	if err := b.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	tree, err := b.Create(eol, normalize, force)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return tree
}

func mustFromString(t *testing.T, s string) *Tree {
	t.Helper()
	tree, err := NewFromString(s)
	if err != nil {
		t.Fatalf("NewFromString(%q): %v", s, err)
	}
	return tree
}

// countTerminators counts maximal \r\n | \r | \n matches.
func countTerminators(data []byte) int {
	n := 0
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case '\r':
			if i+1 < len(data) && data[i+1] == '\n' {
				i++
			}
			n++
		case '\n':
			n++
		}
	}
	return n
}

// checkInvariants verifies the red-black properties, the per-node
// aggregates, the per-piece bookkeeping, and the cached totals.
func checkInvariants(t *testing.T, tr *Tree) {
	t.Helper()

	s := tr.sentinel
	if s.color != black {
		t.Fatal("sentinel must be black")
	}
	if s.leftLen != 0 || s.leftLFs != 0 {
		t.Fatal("sentinel aggregates must be zero")
	}
	if tr.root != s && tr.root.color != black {
		t.Fatal("root must be black")
	}

	var walk func(x *node) (blackHeight, length, lfs int)
	walk = func(x *node) (int, int, int) {
		if x == s {
			return 1, 0, 0
		}

		if x.color == red && (x.left.color == red || x.right.color == red) {
			t.Fatalf("red node %v has a red child", x.piece)
		}
		if x.left != s && x.left.parent != x {
			t.Fatalf("broken parent link at %v", x.piece)
		}
		if x.right != s && x.right.parent != x {
			t.Fatalf("broken parent link at %v", x.piece)
		}

		lb, llen, llfs := walk(x.left)
		rb, rlen, rlfs := walk(x.right)
		if lb != rb {
			t.Fatalf("black height mismatch at %v: %d vs %d", x.piece, lb, rb)
		}
		if x.leftLen != llen || x.leftLFs != llfs {
			t.Fatalf("aggregate mismatch at %v: got (%d,%d), want (%d,%d)",
				x.piece, x.leftLen, x.leftLFs, llen, llfs)
		}

		p := x.piece
		if p.Length <= 0 {
			t.Fatalf("empty piece in tree: %v", p)
		}
		buf := tr.buffers[p.BufferIndex]
		startOff := buf.offset(p.Start)
		endOff := buf.offset(p.End)
		if endOff-startOff != p.Length {
			t.Fatalf("piece length mismatch: %v spans %d bytes", p, endOff-startOff)
		}
		if got := countTerminators(buf.data[startOff:endOff]); got != p.LineFeeds {
			t.Fatalf("piece terminator mismatch: %v contains %d", p, got)
		}

		bh := lb
		if x.color == black {
			bh++
		}
		return bh, llen + p.Length + rlen, llfs + p.LineFeeds + rlfs
	}

	_, length, lfs := walk(tr.root)
	if length != tr.length {
		t.Fatalf("cached length %d, tree holds %d", tr.length, length)
	}
	if lfs != tr.lfCount {
		t.Fatalf("cached terminator count %d, tree holds %d", tr.lfCount, lfs)
	}
	if tr.LineCount() != lfs+1 {
		t.Fatalf("LineCount() = %d, want %d", tr.LineCount(), lfs+1)
	}
	if got := len(splitLines(tr.Content(), 0)); got != tr.LineCount() {
		t.Fatalf("content splits into %d lines, LineCount() = %d", got, tr.LineCount())
	}
}

// modelInsert and modelDelete mirror tree edits on a plain string.
func modelInsert(s string, offset int, text string) string {
	return s[:offset] + text + s[offset:]
}

func modelDelete(s string, offset, length int) string {
	return s[:offset] + s[offset+length:]
}

// checkAgainstModel compares the tree's content and line reads to the
// naive string model.
func checkAgainstModel(t *testing.T, tr *Tree, want string) {
	t.Helper()

	if got := tr.Content(); got != want {
		t.Fatalf("Content() = %q, want %q", got, want)
	}
	if tr.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", tr.Len(), len(want))
	}

	wantLines := splitLines(want, 0)
	if tr.LineCount() != len(wantLines) {
		t.Fatalf("LineCount() = %d, want %d", tr.LineCount(), len(wantLines))
	}
	if got := tr.Lines(); !equalStrings(got, wantLines) {
		t.Fatalf("Lines() = %q, want %q", got, wantLines)
	}
	for i, wl := range wantLines {
		got, err := tr.Line(i)
		if err != nil {
			t.Fatalf("Line(%d): %v", i, err)
		}
		if got != wl {
			t.Fatalf("Line(%d) = %q, want %q", i, got, wl)
		}
		n, err := tr.LineLength(i)
		if err != nil || n != len(wl) {
			t.Fatalf("LineLength(%d) = %d (%v), want %d", i, n, err, len(wl))
		}
	}

	// raw lines must concatenate back to the content
	var raw strings.Builder
	for i := 0; i < tr.LineCount(); i++ {
		line, err := tr.RawLine(i)
		if err != nil {
			t.Fatalf("RawLine(%d): %v", i, err)
		}
		raw.WriteString(line)
	}
	if raw.String() != want {
		t.Fatalf("raw lines concatenate to %q, want %q", raw.String(), want)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
