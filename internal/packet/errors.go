package packet

import "errors"

var (
	// ErrFraming reports a terminator byte at the wrong distance. The
	// decoder has already reset; the next read starts at the next frame.
	ErrFraming = errors.New("packet: terminator at wrong distance")

	// ErrShortWrite reports a byte stream that accepted zero bytes
	// without failing.
	ErrShortWrite = errors.New("packet: short write")
)
