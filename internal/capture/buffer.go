package capture

import "sync"

// Buffer accumulates the PCM chunks of one recording session in arrival
// order. Append stores a copy of each chunk because the device layer may
// reuse its delivery slice after the call returns. All chunks are assumed
// mono; a mixed-shape chunk is a caller bug (the device configuration must
// not change mid-session).
type Buffer struct {
	mu      sync.Mutex
	chunks  [][]int16
	samples int
}

// NewBuffer creates an empty buffer
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append adds a copy of chunk to the buffer
func (b *Buffer) Append(chunk []int16) {
	if len(chunk) == 0 {
		return
	}

	cp := make([]int16, len(chunk))
	copy(cp, chunk)

	b.mu.Lock()
	b.chunks = append(b.chunks, cp)
	b.samples += len(cp)
	b.mu.Unlock()
}

// Len returns the total number of samples buffered
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.samples
}

// Chunks returns the number of chunks buffered
func (b *Buffer) Chunks() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.chunks)
}

// Concat joins all chunks into one contiguous sample sequence, preserving
// arrival order.
func (b *Buffer) Concat() []int16 {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]int16, 0, b.samples)
	for _, c := range b.chunks {
		out = append(out, c...)
	}
	return out
}
