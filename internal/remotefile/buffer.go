package remotefile

import (
	"fmt"
	"io"
)

// Buffer is the local File variant: an in-memory image with position
// clamping on seek, matching what the update dialogue relies on. Writes
// past the end extend the image.
type Buffer struct {
	data []byte
	pos  int
}

var _ File = (*Buffer)(nil)

func NewBuffer(data []byte) *Buffer {
	b := &Buffer{}
	if len(data) > 0 {
		b.data = append(b.data, data...)
	}
	return b
}

func (b *Buffer) Read(p []byte) (int, error) {
	n := copy(p, b.data[b.pos:])
	b.pos += n
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (b *Buffer) Write(p []byte) (int, error) {
	end := b.pos + len(p)
	if end > len(b.data) {
		b.data = append(b.data, make([]byte, end-len(b.data))...)
	}
	copy(b.data[b.pos:end], p)
	b.pos = end
	return len(p), nil
}

// Seek clamps the resulting position into [0, Len]. An unknown whence
// is an error; the Host loop reports it as status -1.
func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = int64(b.pos) + offset
	case io.SeekEnd:
		pos = int64(len(b.data)) + offset
	default:
		return -1, fmt.Errorf("%w: whence %d", ErrBadRequest, whence)
	}
	if pos < 0 {
		pos = 0
	}
	if pos > int64(len(b.data)) {
		pos = int64(len(b.data))
	}
	b.pos = int(pos)
	return pos, nil
}

func (b *Buffer) Close() error { return nil }

// Bytes returns the backing image.
func (b *Buffer) Bytes() []byte { return b.data }

func (b *Buffer) Len() int { return len(b.data) }

func (b *Buffer) Pos() int { return b.pos }
