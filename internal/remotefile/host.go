package remotefile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/danmuck/fixturectl/internal/packet"
)

// Progress reports transfer position against the known image size.
type Progress func(pos, size int)

const (
	hostRequestLen = 64
	// hostDataLen bounds one incoming data frame. Fixture firmware
	// writes in chunks far below this.
	hostDataLen = 4096
)

// Host answers the peer's read/write/seek/close requests against buf
// until the peer closes the file, then returns the final image. This is
// the host side of a dump or update dialogue: the fixture drives the
// file, the host serves it.
func Host(s *packet.Stream, buf *Buffer, progress Progress) ([]byte, error) {
	if progress == nil {
		progress = func(int, int) {}
	}
	progress(buf.Pos(), buf.Len())

	req := make([]byte, hostRequestLen)
	data := make([]byte, hostDataLen)
	for {
		n, err := s.ReadPacket(req)
		if err != nil {
			return nil, err
		}
		if n > len(req) {
			n = len(req)
		}
		parts := strings.Split(string(req[:n]), ",")

		switch parts[0] {
		case "read":
			if len(parts) != 2 {
				return nil, fmt.Errorf("%w: %q", ErrBadRequest, req[:n])
			}
			size, err := strconv.Atoi(parts[1])
			if err != nil || size < 0 {
				return nil, fmt.Errorf("%w: read size %q", ErrBadRequest, parts[1])
			}
			if size > len(data) {
				size = len(data)
			}
			count, _ := buf.Read(data[:size])
			if err := s.WritePacket(data[:count]); err != nil {
				return nil, err
			}
			progress(buf.Pos(), buf.Len())

		case "write":
			count, err := s.ReadPacket(data)
			if err != nil {
				return nil, err
			}
			if count > len(data) {
				return nil, fmt.Errorf("%w: data frame of %d bytes", ErrBadRequest, count)
			}
			written, _ := buf.Write(data[:count])
			if err := s.Printf("%d", written); err != nil {
				return nil, err
			}
			progress(buf.Pos(), buf.Len())

		case "seek":
			if len(parts) != 3 {
				return nil, fmt.Errorf("%w: %q", ErrBadRequest, req[:n])
			}
			offset, offErr := strconv.ParseInt(parts[1], 10, 64)
			whence, whErr := strconv.Atoi(parts[2])
			if offErr != nil || whErr != nil {
				return nil, fmt.Errorf("%w: %q", ErrBadRequest, req[:n])
			}
			pos, err := buf.Seek(offset, whence)
			if err != nil {
				pos = -1
			}
			if err := s.Printf("%d", pos); err != nil {
				return nil, err
			}

		case "close":
			progress(buf.Len(), buf.Len())
			if err := s.Printf("%d", 0); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil

		default:
			return nil, fmt.Errorf("%w: %q", ErrBadRequest, req[:n])
		}
	}
}
