package offload

import "sync/atomic"

// Buffer is a single-owner carrier for the position slice handed to a
// channel. Construction takes the slice as-is; from that point the buffer
// owns it and the caller must not read or write it again.
type Buffer struct {
	positions []float64
	moved     atomic.Bool
}

// NewBuffer wraps positions for transfer without copying.
func NewBuffer(positions []float64) *Buffer {
	return &Buffer{positions: positions}
}

// Len returns the number of positions, 0 after the buffer has moved.
func (b *Buffer) Len() int {
	if b == nil || b.moved.Load() {
		return 0
	}
	return len(b.positions)
}

// take transfers ownership of the slice out of the buffer. Exactly one
// take can succeed.
func (b *Buffer) take() ([]float64, error) {
	if b == nil || len(b.positions) == 0 {
		return nil, ErrEmptyBuffer
	}
	if b.moved.Swap(true) {
		return nil, ErrBufferMoved
	}
	positions := b.positions
	b.positions = nil
	return positions, nil
}
