package remotefile

import (
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/fixturectl/internal/packet"
)

var (
	// ErrRejected reports a negative status from the peer.
	ErrRejected = errors.New("remotefile: operation rejected by peer")

	// ErrBadRequest reports a malformed request in the Host loop.
	ErrBadRequest = errors.New("remotefile: malformed request")
)

// File is the handle shape both ends of the bridge speak. Remote is the
// bridged implementation; Buffer is the local one.
type File interface {
	io.ReadWriteSeeker
	io.Closer
}

// Remote issues each file call as one request/response exchange over
// the packet stream. Calls are synchronous and blocking.
type Remote struct {
	stream *packet.Stream
}

var _ File = (*Remote)(nil)

func NewRemote(s *packet.Stream) *Remote {
	return &Remote{stream: s}
}

// Read requests up to len(p) bytes; the peer answers with one raw data
// frame of at most that size. An empty data frame means end of data.
func (r *Remote) Read(p []byte) (int, error) {
	if err := r.stream.Printf("read,%d", len(p)); err != nil {
		return 0, err
	}
	n, err := r.stream.ReadPacket(p)
	if err != nil {
		return 0, err
	}
	if n > len(p) {
		n = len(p)
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Write announces the write, sends p as one raw data frame, then reads
// the peer's integer status: bytes accepted, or negative on failure.
func (r *Remote) Write(p []byte) (int, error) {
	if err := r.stream.Printf("write"); err != nil {
		return 0, err
	}
	if err := r.stream.WritePacket(p); err != nil {
		return 0, err
	}
	status, err := r.readStatus()
	if err != nil {
		return 0, err
	}
	if status < 0 {
		return 0, fmt.Errorf("%w: write status %d", ErrRejected, status)
	}
	return status, nil
}

func (r *Remote) Seek(offset int64, whence int) (int64, error) {
	if err := r.stream.Printf("seek,%d,%d", offset, whence); err != nil {
		return 0, err
	}
	status, err := r.readStatus()
	if err != nil {
		return 0, err
	}
	if status < 0 {
		return 0, fmt.Errorf("%w: seek status %d", ErrRejected, status)
	}
	return int64(status), nil
}

func (r *Remote) Close() error {
	if err := r.stream.Printf("close"); err != nil {
		return err
	}
	status, err := r.readStatus()
	if err != nil {
		return err
	}
	if status != 0 {
		return fmt.Errorf("%w: close status %d", ErrRejected, status)
	}
	return nil
}

func (r *Remote) readStatus() (int, error) {
	var status int
	if _, err := r.stream.Scanf("%d", &status); err != nil {
		return 0, err
	}
	return status, nil
}
