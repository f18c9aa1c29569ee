package capture

import "testing"

func TestBufferAppendCopies(t *testing.T) {
	buf := NewBuffer()

	chunk := []int16{1, 2, 3}
	buf.Append(chunk)

	// Device layers reuse their delivery slice; the buffer must not see it.
	chunk[0] = 99
	chunk[1] = 99
	chunk[2] = 99

	got := buf.Concat()
	want := []int16{1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d mutated after append: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestBufferConcatPreservesArrivalOrder(t *testing.T) {
	buf := NewBuffer()
	buf.Append([]int16{1, 2})
	buf.Append([]int16{3})
	buf.Append([]int16{4, 5, 6})

	got := buf.Concat()
	want := []int16{1, 2, 3, 4, 5, 6}

	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestBufferCounts(t *testing.T) {
	buf := NewBuffer()

	if buf.Len() != 0 || buf.Chunks() != 0 {
		t.Fatal("new buffer should be empty")
	}

	buf.Append([]int16{1, 2, 3})
	buf.Append(nil) // empty deliveries are ignored
	buf.Append([]int16{4})

	if buf.Len() != 4 {
		t.Errorf("expected 4 samples, got %d", buf.Len())
	}
	if buf.Chunks() != 2 {
		t.Errorf("expected 2 chunks, got %d", buf.Chunks())
	}
}
