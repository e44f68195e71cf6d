package pointdata

// Buffer is a reusable scratch area for node payloads. It grows to fit
// the largest payload fetched into it and never shrinks. A Buffer must not
// be shared between concurrent fetches.
type Buffer struct {
	data []byte
}

// NewBuffer returns a buffer presized to size bytes.
func NewBuffer(size int) *Buffer {
	return &Buffer{data: make([]byte, max(size, 0))}
}

// Extend grows the buffer to at least size bytes. Existing contents are
// preserved.
func (b *Buffer) Extend(size int) {
	if size <= len(b.data) {
		return
	}
	grown := make([]byte, size)
	copy(grown, b.data)
	b.data = grown
}

// Len returns the current buffer size.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Bytes returns the whole buffer.
func (b *Buffer) Bytes() []byte {
	return b.data
}
