package piecetree

import "testing"

// FuzzBuildFromChunks tests construction from arbitrary chunk splits.
func FuzzBuildFromChunks(f *testing.F) {
	f.Add("hello\nworld", 3)
	f.Add("a\r\nb\rc\nd", 1)
	f.Add("", 0)
	f.Add("日本語\nテスト", 4)
	f.Add("line1\r\nline2\r\n", 6)

	f.Fuzz(func(t *testing.T, s string, split int) {
		b := NewBuilder()
		if split < 0 {
			split = -split
		}
		if len(s) > 0 {
			split %= len(s) + 1
		} else {
			split = 0
		}

		if err := b.AcceptChunk(s[:split]); err != nil {
			t.Fatal(err)
		}
		if err := b.AcceptChunk(s[split:]); err != nil {
			t.Fatal(err)
		}
		if err := b.Finish(); err != nil {
			t.Fatal(err)
		}
		tr, err := b.Create(LineEndingLF, false, false)
		if err != nil {
			t.Fatal(err)
		}

		if got := tr.Content(); got != s {
			t.Errorf("content mismatch: got %q, want %q", got, s)
		}
		if tr.Len() != len(s) {
			t.Errorf("Len() = %d, want %d", tr.Len(), len(s))
		}
		checkInvariants(t, tr)
	})
}

// FuzzInsertDelete drives an insert/delete pair against the model.
func FuzzInsertDelete(f *testing.F) {
	f.Add("hello", 2, "x\r\ny", 1, 3)
	f.Add("a\r\nb", 1, "\n", 0, 2)
	f.Add("", 0, "text", 0, 0)
	f.Add("line\r", 5, "\nmore", 2, 4)

	f.Fuzz(func(t *testing.T, initial string, insOff int, text string, delOff, delLen int) {
		tr, err := NewFromString(initial)
		if err != nil {
			t.Fatal(err)
		}
		model := initial

		if insOff < 0 {
			insOff = -insOff
		}
		insOff %= len(model) + 1
		if err := tr.Insert(insOff, text); err != nil {
			t.Fatalf("Insert(%d, %q): %v", insOff, text, err)
		}
		model = modelInsert(model, insOff, text)
		if tr.Content() != model {
			t.Fatalf("after insert: got %q, want %q", tr.Content(), model)
		}
		checkInvariants(t, tr)

		if len(model) > 0 {
			if delOff < 0 {
				delOff = -delOff
			}
			if delLen < 0 {
				delLen = -delLen
			}
			delOff %= len(model)
			delLen %= len(model) - delOff + 1
			if err := tr.Delete(delOff, delLen); err != nil {
				t.Fatalf("Delete(%d, %d): %v", delOff, delLen, err)
			}
			model = modelDelete(model, delOff, delLen)
			if tr.Content() != model {
				t.Fatalf("after delete: got %q, want %q", tr.Content(), model)
			}
			checkInvariants(t, tr)
		}
	})
}
