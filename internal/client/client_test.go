package client

import (
	"bytes"
	"context"
	"errors"
	"net"
	"testing"

	"github.com/danmuck/fixturectl/internal/dispatch"
	"github.com/danmuck/fixturectl/internal/fixture"
	"github.com/danmuck/fixturectl/internal/packet"
	"github.com/danmuck/fixturectl/internal/testutil/streamtest"
	"github.com/danmuck/fixturectl/internal/testutil/testlog"
)

// frames encodes each payload as one frame and concatenates the wire
// bytes, for scripting fixture responses.
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

// startFixture runs a simulated fixture on one end of a pipe and
// returns a client stream for the other end.
func startFixture(t *testing.T, version int, image []byte) (*packet.Stream, *Client) {
	t.Helper()
	log := testlog.Start(t)

	hostConn, devConn := net.Pipe()
	t.Cleanup(func() {
		hostConn.Close()
		devConn.Close()
	})

	tester := fixture.NewTester(version, image, log)
	d := dispatch.New(packet.NewStream(devConn), fixture.Commands(tester, nil), log)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() {
		// Returns with a transport error when the pipe closes.
		_ = d.Run(ctx)
	}()

	stream := packet.NewStream(hostConn)
	return stream, New(stream, log)
}

func TestClientFixtureEndToEnd(t *testing.T) {
	c0 := []byte("factory-image")
	_, c := startFixture(t, 7, c0)

	if err := c.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	v, err := c.Version()
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if v != 7 {
		t.Fatalf("version %d, want 7", v)
	}

	// Image larger than one transfer chunk, with embedded zeros.
	image := make([]byte, 700)
	for i := range image {
		image[i] = byte(i % 5)
	}

	if err := c.Update(image, nil); err != nil {
		t.Fatalf("update: %v", err)
	}

	// Staged only: the running image is still the factory one.
	running, err := c.Dump(nil)
	if err != nil {
		t.Fatalf("dump before reload: %v", err)
	}
	if !bytes.Equal(running, c0) {
		t.Fatalf("running image changed before reload: %q", running)
	}

	if err := c.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	running, err = c.Dump(nil)
	if err != nil {
		t.Fatalf("dump after reload: %v", err)
	}
	if !bytes.Equal(running, image) {
		t.Fatalf("running image mismatch after reload: %d bytes", len(running))
	}

	flash, err := c.DumpAll(nil)
	if err != nil {
		t.Fatalf("dump_all: %v", err)
	}
	if !bytes.Equal(flash, image) {
		t.Fatalf("flash mismatch: %d bytes", len(flash))
	}
}

func TestClientStatsCountsUnknownCommands(t *testing.T) {
	stream, c := startFixture(t, 1, nil)

	if err := stream.WritePacket([]byte("frobnicate")); err != nil {
		t.Fatalf("send unknown command: %v", err)
	}
	st, err := c.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.UnknownCommands != 1 {
		t.Fatalf("unknown commands %d, want 1", st.UnknownCommands)
	}
	if st.EncodingErrors != 0 {
		t.Fatalf("encoding errors %d, want 0", st.EncodingErrors)
	}
}

func TestClientBaudWithoutRateSetterFails(t *testing.T) {
	_, c := startFixture(t, 1, nil)
	if err := c.Baud(115200); !errors.Is(err, ErrFixture) {
		t.Fatalf("expected ErrFixture, got %v", err)
	}
}

func TestClientUpdateProgressReaches(t *testing.T) {
	_, c := startFixture(t, 1, nil)

	image := make([]byte, 600)
	var last int
	progress := func(pos, size int) { last = pos }
	if err := c.Update(image, progress); err != nil {
		t.Fatalf("update: %v", err)
	}
	if last != len(image) {
		t.Fatalf("final progress %d, want %d", last, len(image))
	}
}

func TestDumpSendsCommandNameVerbatim(t *testing.T) {
	// Script the fixture side of an empty dump: it closes the file
	// immediately, then reports the result.
	fixed := streamtest.NewFixed(frames(t, []byte("close"), []byte("ok")))
	c := New(packet.NewStream(fixed), testlog.Start(t))

	if _, err := c.Dump(nil); err != nil {
		t.Fatalf("dump: %v", err)
	}

	// Request frame carries the literal command bytes, followed by the
	// close status. Formatting verbs in a command name must not be
	// interpreted.
	want := frames(t, []byte("dump"), []byte("0"))
	if !bytes.Equal(fixed.Written(), want) {
		t.Fatalf("wire bytes %x, want %x", fixed.Written(), want)
	}
}
