package remotefile

import (
	"bytes"
	"errors"
	"io"
	"net"
	"testing"

	"github.com/danmuck/fixturectl/internal/packet"
	"github.com/danmuck/fixturectl/internal/testutil/streamtest"
)

// frames encodes each payload as one frame and concatenates the wire
// bytes, for scripting peer responses.
func frames(t *testing.T, payloads ...[]byte) []byte {
	t.Helper()
	fixed := streamtest.NewFixed(nil)
	s := packet.NewStream(fixed)
	for _, p := range payloads {
		if err := s.WritePacket(p); err != nil {
			t.Fatalf("encode script frame: %v", err)
		}
	}
	return fixed.Written()
}

func TestRemoteReadRequestAndData(t *testing.T) {
	fixed := streamtest.NewFixed(frames(t, []byte{0xDE, 0xAD, 0xBE}))
	r := NewRemote(packet.NewStream(fixed))

	buf := make([]byte, 8)
	n, err := r.Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != 3 || !bytes.Equal(buf[:3], []byte{0xDE, 0xAD, 0xBE}) {
		t.Fatalf("read data mismatch: n=%d buf=%x", n, buf[:n])
	}
	want := frames(t, []byte("read,8"))
	if !bytes.Equal(fixed.Written(), want) {
		t.Fatalf("request frame mismatch:\n got  %x\n want %x", fixed.Written(), want)
	}
}

func TestRemoteReadEmptyDataIsEOF(t *testing.T) {
	fixed := streamtest.NewFixed(frames(t, nil))
	r := NewRemote(packet.NewStream(fixed))
	if _, err := r.Read(make([]byte, 8)); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestRemoteWriteDialogue(t *testing.T) {
	fixed := streamtest.NewFixed(frames(t, []byte("4")))
	r := NewRemote(packet.NewStream(fixed))

	n, err := r.Write([]byte{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if n != 4 {
		t.Fatalf("accepted %d bytes, want 4", n)
	}
	want := frames(t, []byte("write"), []byte{1, 2, 3, 4})
	if !bytes.Equal(fixed.Written(), want) {
		t.Fatalf("write dialogue mismatch:\n got  %x\n want %x", fixed.Written(), want)
	}
}

func TestRemoteWriteNegativeStatus(t *testing.T) {
	fixed := streamtest.NewFixed(frames(t, []byte("-1")))
	r := NewRemote(packet.NewStream(fixed))
	if _, err := r.Write([]byte{1}); !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
}

func TestRemoteSeekAndClose(t *testing.T) {
	fixed := streamtest.NewFixed(frames(t, []byte("128"), []byte("0")))
	r := NewRemote(packet.NewStream(fixed))

	pos, err := r.Seek(128, io.SeekStart)
	if err != nil {
		t.Fatalf("seek: %v", err)
	}
	if pos != 128 {
		t.Fatalf("seek pos %d, want 128", pos)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	want := frames(t, []byte("seek,128,0"), []byte("close"))
	if !bytes.Equal(fixed.Written(), want) {
		t.Fatalf("request frames mismatch:\n got  %x\n want %x", fixed.Written(), want)
	}
}

func TestBufferSeekClamps(t *testing.T) {
	b := NewBuffer([]byte{1, 2, 3, 4})

	pos, err := b.Seek(-10, io.SeekCurrent)
	if err != nil || pos != 0 {
		t.Fatalf("seek before start: pos=%d err=%v", pos, err)
	}
	pos, err = b.Seek(100, io.SeekStart)
	if err != nil || pos != 4 {
		t.Fatalf("seek past end: pos=%d err=%v", pos, err)
	}
	pos, err = b.Seek(-1, io.SeekEnd)
	if err != nil || pos != 3 {
		t.Fatalf("seek from end: pos=%d err=%v", pos, err)
	}
	if _, err = b.Seek(0, 9); err == nil {
		t.Fatal("expected error on bad whence")
	}
}

func TestBufferWriteExtends(t *testing.T) {
	b := NewBuffer(nil)
	if _, err := b.Write([]byte{1, 2, 3}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := b.Seek(1, io.SeekStart); err != nil {
		t.Fatalf("seek: %v", err)
	}
	if _, err := b.Write([]byte{9, 9, 9, 9}); err != nil {
		t.Fatalf("overlapping write: %v", err)
	}
	if !bytes.Equal(b.Bytes(), []byte{1, 9, 9, 9, 9}) {
		t.Fatalf("buffer contents %x", b.Bytes())
	}
}

// TestHostRemoteDialogue runs a full bridged exchange: the remote end
// seeks, writes, reads back, and closes, while Host serves a Buffer on
// the other side of an in-process pipe.
func TestHostRemoteDialogue(t *testing.T) {
	hostConn, remoteConn := net.Pipe()
	defer hostConn.Close()
	defer remoteConn.Close()

	type hostResult struct {
		data []byte
		err  error
	}
	done := make(chan hostResult, 1)
	go func() {
		data, err := Host(packet.NewStream(hostConn), NewBuffer([]byte("seed")), nil)
		done <- hostResult{data, err}
	}()

	r := NewRemote(packet.NewStream(remoteConn))

	if pos, err := r.Seek(0, io.SeekEnd); err != nil || pos != 4 {
		t.Fatalf("seek end: pos=%d err=%v", pos, err)
	}
	if n, err := r.Write([]byte("-extra")); err != nil || n != 6 {
		t.Fatalf("write: n=%d err=%v", n, err)
	}
	if pos, err := r.Seek(0, io.SeekStart); err != nil || pos != 0 {
		t.Fatalf("rewind: pos=%d err=%v", pos, err)
	}

	var out bytes.Buffer
	chunk := make([]byte, 3)
	for {
		n, err := r.Read(chunk)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		out.Write(chunk[:n])
	}
	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	res := <-done
	if res.err != nil {
		t.Fatalf("host: %v", res.err)
	}
	if string(res.data) != "seed-extra" {
		t.Fatalf("host image %q", res.data)
	}
	if out.String() != "seed-extra" {
		t.Fatalf("remote readback %q", out.String())
	}
}

func TestHostRejectsUnknownRequest(t *testing.T) {
	fixed := streamtest.NewFixed(frames(t, []byte("bogus")))
	_, err := Host(packet.NewStream(fixed), NewBuffer(nil), nil)
	if !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}
}
