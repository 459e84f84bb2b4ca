package packet

import (
	"fmt"
	"io"
)

// maxRun is one overhead byte plus up to 254 payload bytes. A run never
// grows past this before it is flushed.
const maxRun = 255

// Stream frames packets over one byte stream. Payload zeros are
// stuffed out of the encoding, so the only literal zero on the wire is
// the frame terminator and a receiver can always resynchronize on the
// next terminator it sees.
//
// A Stream owns its encoder and decoder state exclusively and must not
// be shared across byte streams or concurrent callers.
type Stream struct {
	rw io.ReadWriter

	txBuf [maxRun + 2]byte
	txPos int

	rxNextZero int
	rxNextPad  bool

	fmtBuf [120]byte
}

func NewStream(rw io.ReadWriter) *Stream {
	s := &Stream{rw: rw}
	s.Reset()
	return s
}

// Reset returns both codec states to the start-of-frame position. It is
// only needed after a transport error, which leaves the decoder
// mid-frame; ReadPacket resets itself on every terminator, valid or not.
func (s *Stream) Reset() {
	s.txBuf[0] = 0
	s.txPos = 1
	s.rxNextZero = 1
	s.rxNextPad = true
}

// WritePacket encodes p as one terminated frame and writes it to the
// byte stream. A write failure is fatal to this packet: the encoder
// still resets so the next packet starts on a clean run, but the peer
// may have seen a truncated frame.
func (s *Stream) WritePacket(p []byte) error {
	var firstErr error
	flush := func(n int) {
		if err := s.writeFull(s.txBuf[:n]); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for _, b := range p {
		// 254 payload bytes without a zero force a boundary run.
		// Overhead 255 means "no removed zero implied here".
		if s.txPos >= maxRun {
			s.txBuf[0] = byte(s.txPos)
			flush(s.txPos)
			s.txPos = 0
			s.txBuf[s.txPos] = 0
			s.txPos++
		}

		// A literal zero closes the run. The overhead byte is the run
		// length (1..255) and stands in for the removed zero.
		if b == 0 {
			s.txBuf[0] = byte(s.txPos)
			flush(s.txPos)
			s.txPos = 0
		}

		s.txBuf[s.txPos] = b
		s.txPos++
	}

	s.txBuf[0] = byte(s.txPos)
	// Delimiter zero, not itself part of the stuffing scheme.
	s.txBuf[s.txPos] = 0
	s.txPos++
	flush(s.txPos)

	s.txBuf[0] = 0
	s.txPos = 1
	return firstErr
}

// ReadPacket reads and decodes exactly one frame, blocking until its
// terminator arrives. Decoded bytes beyond len(p) are discarded but the
// frame is always consumed in full, and the returned count is the true
// decoded length, so the wire stays synchronized regardless of the
// caller's buffer size.
//
// A malformed frame returns ErrFraming with the decoder already reset:
// the stream position is the start of the next frame. A transport error
// is returned wrapped and leaves the decoder mid-frame; the caller must
// Reset (or reconnect) before reading again.
func (s *Stream) ReadPacket(p []byte) (int, error) {
	pos := 0
	for {
		b, err := s.readByte()
		if err != nil {
			return 0, err
		}
		s.rxNextZero--

		// Terminator. Valid only when the distance accounting lands
		// exactly here.
		if b == 0 {
			valid := s.rxNextZero == 0
			s.rxNextZero = 1
			s.rxNextPad = true
			if !valid {
				return 0, ErrFraming
			}
			return pos, nil
		}

		// Overhead byte: distance to the next marker, plus whether a
		// removed zero sits at this position. After a forced-boundary
		// marker (255) there is no implied zero, so nothing is emitted.
		if s.rxNextZero == 0 {
			wasPad := s.rxNextPad
			s.rxNextZero = int(b)
			s.rxNextPad = b == 255
			if wasPad {
				continue
			}
			b = 0
		}

		if pos < len(p) {
			p[pos] = b
		}
		pos++
	}
}

func (s *Stream) readByte() (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(s.rw, b[:]); err != nil {
		return 0, fmt.Errorf("packet: read: %w", err)
	}
	return b[0], nil
}

func (s *Stream) writeFull(p []byte) error {
	for len(p) != 0 {
		n, err := s.rw.Write(p)
		if err != nil {
			return fmt.Errorf("packet: write: %w", err)
		}
		if n == 0 {
			return ErrShortWrite
		}
		p = p[n:]
	}
	return nil
}
