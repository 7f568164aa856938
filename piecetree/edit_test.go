package piecetree

import (
	"strings"
	"testing"
)

func TestInsertSequence(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		edits   []struct {
			offset int
			text   string
		}
		want string
	}{
		{
			"insert at start", "world",
			[]struct {
				offset int
				text   string
			}{{0, "hello "}},
			"hello world",
		},
		{
			"insert at end", "hello",
			[]struct {
				offset int
				text   string
			}{{5, " world"}},
			"hello world",
		},
		{
			"successive appends", "",
			[]struct {
				offset int
				text   string
			}{{0, "a"}, {1, "b"}, {2, "c"}, {3, "d"}},
			"abcd",
		},
		{
			"successive typing interior", "()",
			[]struct {
				offset int
				text   string
			}{{1, "a"}, {2, "b"}, {3, "c"}},
			"(abc)",
		},
		{
			"multiline insert", "ab",
			[]struct {
				offset int
				text   string
			}{{1, "1\n2\n3"}},
			"a1\n2\n3b",
		},
		{
			"boundary between pieces", "ab",
			[]struct {
				offset int
				text   string
			}{{1, "x"}, {1, "y"}, {3, "z"}},
			"ayxzb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := mustFromString(t, tt.initial)
			model := tt.initial
			for _, e := range tt.edits {
				if err := tr.Insert(e.offset, e.text); err != nil {
					t.Fatalf("Insert(%d, %q): %v", e.offset, e.text, err)
				}
				model = modelInsert(model, e.offset, e.text)
				checkInvariants(t, tr)
			}
			if model != tt.want {
				t.Fatalf("test case is inconsistent: model %q, want %q", model, tt.want)
			}
			checkAgainstModel(t, tr, tt.want)
		})
	}
}

func TestDeleteSequence(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		offset  int
		length  int
	}{
		{"from start", "hello world", 0, 6},
		{"from end", "hello world", 5, 6},
		{"from middle", "hello world", 2, 5},
		{"everything", "hello", 0, 5},
		{"single byte", "hello", 2, 1},
		{"across lines", "one\ntwo\nthree", 2, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := mustFromString(t, tt.initial)
			if err := tr.Delete(tt.offset, tt.length); err != nil {
				t.Fatalf("Delete(%d, %d): %v", tt.offset, tt.length, err)
			}
			checkAgainstModel(t, tr, modelDelete(tt.initial, tt.offset, tt.length))
			checkInvariants(t, tr)
		})
	}
}

func TestDeleteAcrossPieces(t *testing.T) {
	tr := mustTree(t, []string{"aaa", "bbb", "ccc", "ddd"}, LineEndingLF, false, false)
	model := "aaabbbcccddd"

	// spans all four pieces
	if err := tr.Delete(2, 8); err != nil {
		t.Fatal(err)
	}
	model = modelDelete(model, 2, 8)
	checkAgainstModel(t, tr, model)
	checkInvariants(t, tr)

	// exact piece boundaries
	tr = mustTree(t, []string{"aaa", "bbb", "ccc"}, LineEndingLF, false, false)
	if err := tr.Delete(3, 3); err != nil {
		t.Fatal(err)
	}
	checkAgainstModel(t, tr, "aaaccc")
	checkInvariants(t, tr)
}

func TestInsertDeleteRoundTrip(t *testing.T) {
	contents := []string{
		"hello world",
		"a\nb\nc",
		"line1\r\nline2\r\n",
		"",
	}
	inserts := []string{"x", "two\nlines", "\r\n", "tail\r"}

	for _, content := range contents {
		tr := mustFromString(t, content)
		for _, text := range inserts {
			for _, offset := range []int{0, tr.Len() / 2, tr.Len()} {
				if err := tr.Insert(offset, text); err != nil {
					t.Fatalf("Insert(%d, %q): %v", offset, text, err)
				}
				if err := tr.Delete(offset, len(text)); err != nil {
					t.Fatalf("Delete(%d, %d): %v", offset, len(text), err)
				}
				checkAgainstModel(t, tr, content)
				checkInvariants(t, tr)
			}
		}
	}
}

func TestCRLFMergeOnDelete(t *testing.T) {
	// deleting "\ncd\r" leaves a \r and \n that must merge into one terminator
	tr := mustFromString(t, "ab\r\ncd\r\nef")
	if err := tr.Delete(3, 4); err != nil {
		t.Fatal(err)
	}
	if got := tr.Content(); got != "ab\r\nef" {
		t.Errorf("Content() = %q, want %q", got, "ab\r\nef")
	}
	if tr.LineCount() != 2 {
		t.Errorf("LineCount() = %d, want 2", tr.LineCount())
	}
	if got := tr.Lines(); !equalStrings(got, []string{"ab", "ef"}) {
		t.Errorf("Lines() = %q", got)
	}
	checkInvariants(t, tr)
}

func TestDeleteLeavingLoneCR(t *testing.T) {
	// deleting "\ncd" leaves "ab\r" + "\r\nef": the lone \r is its own
	// terminator, the \r\n another
	tr := mustFromString(t, "ab\r\ncd\r\nef")
	if err := tr.Delete(3, 3); err != nil {
		t.Fatal(err)
	}
	checkAgainstModel(t, tr, "ab\r\r\nef")
	if tr.LineCount() != 3 {
		t.Errorf("LineCount() = %d, want 3", tr.LineCount())
	}
	checkInvariants(t, tr)
}

func TestCRLFSeamOnInsert(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		offset  int
		text    string
	}{
		{"text ends with CR before LF", "ab\ncd", 2, "x\r"},
		{"text starts with LF after CR", "ab\rcd", 3, "\nx"},
		{"text is bare CRLF interior", "ab\ncd", 2, "\r\n"},
		{"CR typed at end", "ab", 2, "\r"},
		{"join around piece boundary", "a\r", 2, "\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := mustFromString(t, tt.initial)
			if err := tr.Insert(tt.offset, tt.text); err != nil {
				t.Fatalf("Insert: %v", err)
			}
			checkAgainstModel(t, tr, modelInsert(tt.initial, tt.offset, tt.text))
			checkInvariants(t, tr)
		})
	}
}

func TestCRThenLFTyped(t *testing.T) {
	// typing \r then \n must end up as one terminator, not two
	tr := mustFromString(t, "")
	if err := tr.Insert(0, "a\r"); err != nil {
		t.Fatal(err)
	}
	if err := tr.Insert(2, "\nb"); err != nil {
		t.Fatal(err)
	}
	checkAgainstModel(t, tr, "a\r\nb")
	if tr.LineCount() != 2 {
		t.Errorf("LineCount() = %d, want 2", tr.LineCount())
	}
	checkInvariants(t, tr)
}

func TestInsertCRBeforeLFPiece(t *testing.T) {
	// inserting text ending in \r right before a piece starting with \n
	tr := mustTree(t, []string{"a", "\nb"}, LineEndingLF, false, false)
	if err := tr.Insert(1, "x\r"); err != nil {
		t.Fatal(err)
	}
	checkAgainstModel(t, tr, "ax\r\nb")
	if tr.LineCount() != 2 {
		t.Errorf("LineCount() = %d, want 2", tr.LineCount())
	}
	checkInvariants(t, tr)
}

func TestManySmallEdits(t *testing.T) {
	tr := mustFromString(t, "")
	model := ""

	words := []string{"alpha ", "beta\n", "gamma\r\n", "delta", "\r", "\n", "x"}
	for i := 0; i < 200; i++ {
		w := words[i%len(words)]
		offset := (i * 37) % (len(model) + 1)
		if err := tr.Insert(offset, w); err != nil {
			t.Fatalf("Insert(%d, %q) at step %d: %v", offset, w, i, err)
		}
		model = modelInsert(model, offset, w)

		if i%3 == 2 && len(model) > 4 {
			del := (i * 13) % (len(model) / 2)
			offset = (i * 7) % (len(model) - del)
			if err := tr.Delete(offset, del); err != nil {
				t.Fatalf("Delete(%d, %d) at step %d: %v", offset, del, i, err)
			}
			model = modelDelete(model, offset, del)
		}
	}

	checkAgainstModel(t, tr, model)
	checkInvariants(t, tr)
}

func TestLargeInsert(t *testing.T) {
	big := strings.Repeat("0123456789\n", 2000)
	tr := mustFromString(t, "start\nend")
	if err := tr.Insert(6, big); err != nil {
		t.Fatal(err)
	}
	want := "start\n" + big + "end"
	if tr.Content() != want {
		t.Fatal("large insert content mismatch")
	}
	if tr.LineCount() != 2002 {
		t.Errorf("LineCount() = %d, want 2002", tr.LineCount())
	}
	checkInvariants(t, tr)
}
